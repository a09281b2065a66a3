// Package bridge routes commands from the UI process to host services.
//
// A [Dispatcher] holds one [Handler] per channel. A command is addressed by
// channel name and method name and carries an untyped argument bag ([Args]).
// Every dispatch produces exactly one [Response] with one of three statuses:
//
//   - success: the handler returned a result (which may be nil).
//   - error: argument validation failed (code INVALID_ARGUMENT) or the
//     handler failed outright (code INTERNAL).
//   - not_implemented: no handler exists for the channel or method.
//
// Handlers validate their arguments with the [Args] accessors before they
// call into a service, so a rejected command never reaches the service.
// [Methods] builds a channel handler from a fixed method vocabulary.
//
// Lifecycle:
//
//	d := bridge.New(bridge.WithLogger(logger))
//	_ = d.Register("com.example.calllog/share", bridge.Methods(map[string]bridge.Handler{
//	    "getSharedText": shareHandler,
//	}))
//	resp := d.Dispatch(ctx, "com.example.calllog/share", "getSharedText", nil)
package bridge
