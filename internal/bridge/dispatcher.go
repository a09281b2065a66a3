package bridge

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

// Dispatcher routes commands to channel handlers. It keeps no state beyond
// its registry and is safe for concurrent use.
type Dispatcher struct {
	logger *logging.Logger
	bus    *event.Bus

	mu       sync.RWMutex
	handlers map[string]Handler
}

// New creates an empty Dispatcher.
func New(opts ...Option) *Dispatcher {
	cfg := &config{logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NopLogger()
	}

	return &Dispatcher{
		logger:   cfg.logger.WithComponent("dispatcher"),
		bus:      cfg.bus,
		handlers: make(map[string]Handler),
	}
}

// Register installs the handler for channel. Registering a channel twice
// is an error.
func (d *Dispatcher) Register(channel string, h Handler) error {
	if h == nil {
		return fmt.Errorf("bridge: nil handler for channel %q", channel)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[channel]; exists {
		return fmt.Errorf("bridge: channel %q already registered", channel)
	}
	d.handlers[channel] = h
	return nil
}

// Unregister removes the handler for channel, reporting whether one existed.
func (d *Dispatcher) Unregister(channel string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.handlers[channel]
	delete(d.handlers, channel)
	return ok
}

// Channels returns the registered channel names, sorted.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Dispatch runs one command and always returns a Response. An unknown
// channel is reported as not implemented.
func (d *Dispatcher) Dispatch(ctx context.Context, channel, method string, args Args) (resp Response) {
	log := d.logger.WithChannel(channel).WithMethod(method)
	start := time.Now()

	defer func() {
		if d.bus != nil {
			d.bus.Publish(event.NewCommandDispatchedEvent(channel, method, string(resp.Status), time.Since(start)))
		}
	}()

	d.mu.RLock()
	h, ok := d.handlers[channel]
	d.mu.RUnlock()

	if !ok {
		log.Debug("no handler registered for channel")
		return NotImplemented()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "panic", fmt.Sprint(r))
			resp = Failure(CodeInternal, "internal error", nil)
		}
	}()

	result, err := h(ctx, Call{Channel: channel, Method: method, Args: args})
	resp = toResponse(result, err)

	switch resp.Status {
	case StatusError:
		log.Warn("command failed", "code", resp.Error.Code, "error", err.Error())
	case StatusNotImplemented:
		log.Debug("method not implemented")
	default:
		log.Debug("command served", "duration_ms", time.Since(start).Milliseconds())
	}
	return resp
}

func toResponse(result any, err error) Response {
	if err == nil {
		return Success(result)
	}
	if errors.Is(err, ErrNotImplemented) {
		return NotImplemented()
	}

	var ce *CallError
	if errors.As(err, &ce) {
		return Failure(ce.Code, ce.Message, ce.Details)
	}

	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		return Failure(CodeInvalidArgument, ve.Message(), nil)
	}

	if errors.IsUserFacing(err) {
		return Failure(CodeInternal, err.Error(), nil)
	}
	return Failure(CodeInternal, "internal error", nil)
}

// Methods builds a channel Handler from a fixed method vocabulary.
// Methods outside the table are not implemented.
func Methods(table map[string]Handler) Handler {
	return func(ctx context.Context, call Call) (any, error) {
		h, ok := table[call.Method]
		if !ok {
			return nil, ErrNotImplemented
		}
		return h(ctx, call)
	}
}
