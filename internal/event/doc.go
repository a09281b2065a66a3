// Package event provides a synchronous pub-sub bus that decouples the
// bridge's producers of host notifications from their consumers.
//
// The inbox watcher publishes [ActivationReceivedEvent] without knowing
// that the share tracker consumes it; the dispatcher publishes
// [CommandDispatchedEvent] for whoever wants to log or count commands.
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - activation.received
//   - app.resumed
//   - share.captured, share.consumed
//   - launch.completed
//   - command.dispatched
//
// # Thread Safety
//
// [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is recovered and logged and
// does not stop delivery to the remaining handlers.
package event
