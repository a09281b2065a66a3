package event

import (
	"time"

	"github.com/Iron-Ham/callbridge/internal/intent"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns the "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// Event type identifiers.
const (
	TypeActivationReceived = "activation.received"
	TypeAppResumed         = "app.resumed"
	TypeShareCaptured      = "share.captured"
	TypeShareConsumed      = "share.consumed"
	TypeLaunchCompleted    = "launch.completed"
	TypeCommandDispatched  = "command.dispatched"
)

// -----------------------------------------------------------------------------
// Lifecycle Events
// -----------------------------------------------------------------------------

// ActivationReceivedEvent is emitted when an external actor activates the
// process with an intent (e.g. a share from another application).
type ActivationReceivedEvent struct {
	baseEvent
	ActivationID string
	Intent       intent.Intent
	Source       string // where the activation came from, e.g. "inbox"
}

// NewActivationReceivedEvent creates an ActivationReceivedEvent.
func NewActivationReceivedEvent(id string, in intent.Intent, source string) ActivationReceivedEvent {
	return ActivationReceivedEvent{
		baseEvent:    newBaseEvent(TypeActivationReceived),
		ActivationID: id,
		Intent:       in,
		Source:       source,
	}
}

// AppResumedEvent is emitted on every transition of the process to the
// foreground.
type AppResumedEvent struct {
	baseEvent
	Reason string // e.g. "client-connected", "startup"
}

// NewAppResumedEvent creates an AppResumedEvent.
func NewAppResumedEvent(reason string) AppResumedEvent {
	return AppResumedEvent{baseEvent: newBaseEvent(TypeAppResumed), Reason: reason}
}

// -----------------------------------------------------------------------------
// Share Events
// -----------------------------------------------------------------------------

// ShareCapturedEvent is emitted when text is placed in the share cell.
type ShareCapturedEvent struct {
	baseEvent
	ActivationID string
	Length       int
	Replaced     bool // an unread value was overwritten
}

// NewShareCapturedEvent creates a ShareCapturedEvent.
func NewShareCapturedEvent(activationID string, length int, replaced bool) ShareCapturedEvent {
	return ShareCapturedEvent{
		baseEvent:    newBaseEvent(TypeShareCaptured),
		ActivationID: activationID,
		Length:       length,
		Replaced:     replaced,
	}
}

// ShareConsumedEvent is emitted when the UI reads the share cell.
type ShareConsumedEvent struct {
	baseEvent
	Present bool
}

// NewShareConsumedEvent creates a ShareConsumedEvent.
func NewShareConsumedEvent(present bool) ShareConsumedEvent {
	return ShareConsumedEvent{baseEvent: newBaseEvent(TypeShareConsumed), Present: present}
}

// -----------------------------------------------------------------------------
// Launch and Dispatch Events
// -----------------------------------------------------------------------------

// LaunchCompletedEvent is emitted after every launch attempt.
type LaunchCompletedEvent struct {
	baseEvent
	ApplicationID string
	Strategy      string // strategy that started the app; empty on failure
	Launched      bool
}

// NewLaunchCompletedEvent creates a LaunchCompletedEvent.
func NewLaunchCompletedEvent(appID, strategy string, launched bool) LaunchCompletedEvent {
	return LaunchCompletedEvent{
		baseEvent:     newBaseEvent(TypeLaunchCompleted),
		ApplicationID: appID,
		Strategy:      strategy,
		Launched:      launched,
	}
}

// CommandDispatchedEvent is emitted once per dispatched command.
type CommandDispatchedEvent struct {
	baseEvent
	Channel  string
	Method   string
	Status   string
	Duration time.Duration
}

// NewCommandDispatchedEvent creates a CommandDispatchedEvent.
func NewCommandDispatchedEvent(channel, method, status string, d time.Duration) CommandDispatchedEvent {
	return CommandDispatchedEvent{
		baseEvent: newBaseEvent(TypeCommandDispatched),
		Channel:   channel,
		Method:    method,
		Status:    status,
		Duration:  d,
	}
}
