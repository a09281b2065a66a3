package share

import (
	"sync"
	"time"

	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/intent"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

// Activation is one inbound activation of the process.
type Activation struct {
	ID         string
	Intent     intent.Intent
	ReceivedAt time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the tracker logger.
func WithLogger(logger *logging.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithBus publishes share.captured and share.consumed events on bus.
func WithBus(bus *event.Bus) Option {
	return func(t *Tracker) {
		t.bus = bus
	}
}

// WithMimeTypes sets the MIME types accepted as shared text.
func WithMimeTypes(types ...string) Option {
	return func(t *Tracker) {
		if len(types) > 0 {
			t.mimeTypes = append([]string(nil), types...)
		}
	}
}

// WithReplayOnResume controls whether Resume re-offers an activation whose
// text was already offered once. Enabled by default.
func WithReplayOnResume(replay bool) Option {
	return func(t *Tracker) {
		t.replay = replay
	}
}

// Tracker feeds a Cell from process activations.
type Tracker struct {
	cell      *Cell
	logger    *logging.Logger
	bus       *event.Bus
	mimeTypes []string
	replay    bool

	mu      sync.Mutex
	latest  *Activation
	offered bool
}

// NewTracker creates a Tracker writing into cell. cell must be non-nil.
func NewTracker(cell *Cell, opts ...Option) *Tracker {
	if cell == nil {
		panic("share: Cell must not be nil")
	}

	t := &Tracker{
		cell:      cell,
		logger:    logging.NopLogger(),
		mimeTypes: []string{intent.MimeTextPlain},
		replay:    true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent("share")
	return t
}

// Cell returns the cell the tracker writes into.
func (t *Tracker) Cell() *Cell {
	return t.cell
}

// NewActivation records a as the most recent activation and checks it.
func (t *Tracker) NewActivation(a Activation) {
	if a.ReceivedAt.IsZero() {
		a.ReceivedAt = time.Now()
	}

	t.mu.Lock()
	t.latest = &a
	t.offered = false
	t.mu.Unlock()

	t.logger.Debug("activation recorded", "activation_id", a.ID, "intent", a.Intent.String())
	t.checkLatest(false)
}

// Resume is called on every transition to the foreground. It re-checks
// the most recent activation.
func (t *Tracker) Resume() {
	t.checkLatest(true)
}

// Latest returns the most recent activation, if any.
func (t *Tracker) Latest() (Activation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.latest == nil {
		return Activation{}, false
	}
	return *t.latest, true
}

// Take drains the cell.
func (t *Tracker) Take() (string, bool) {
	text, ok := t.cell.Take()
	t.publish(event.NewShareConsumedEvent(ok))
	return text, ok
}

// checkLatest offers the text of the most recent activation to the cell.
// The offer happens under t.mu so a superseded activation can never
// overwrite a newer one. On resume an already offered activation is
// skipped unless replay is enabled.
func (t *Tracker) checkLatest(resuming bool) {
	t.mu.Lock()
	if t.latest == nil || (resuming && t.offered && !t.replay) {
		t.mu.Unlock()
		return
	}
	a := *t.latest
	text, ok := a.Intent.Text(t.mimeTypes)
	if !ok {
		t.mu.Unlock()
		return
	}
	replaced := t.cell.Offer(text)
	t.offered = true
	t.mu.Unlock()

	t.logger.Info("shared text captured",
		"activation_id", a.ID,
		"length", len(text),
		"replaced", replaced)
	t.publish(event.NewShareCapturedEvent(a.ID, len(text), replaced))
}

func (t *Tracker) publish(e event.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}

// Attach subscribes the tracker to activation.received and app.resumed on
// bus. The returned function removes both subscriptions.
func (t *Tracker) Attach(bus *event.Bus) (detach func()) {
	activations := bus.Subscribe(event.TypeActivationReceived, func(e event.Event) {
		if ae, ok := e.(event.ActivationReceivedEvent); ok {
			t.NewActivation(Activation{ID: ae.ActivationID, Intent: ae.Intent, ReceivedAt: ae.Timestamp()})
		}
	})
	resumes := bus.Subscribe(event.TypeAppResumed, func(event.Event) {
		t.Resume()
	})

	return func() {
		bus.Unsubscribe(activations)
		bus.Unsubscribe(resumes)
	}
}
