package bridge

import (
	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

// Option configures a Dispatcher.
type Option func(*config)

type config struct {
	logger *logging.Logger
	bus    *event.Bus
}

// WithLogger sets the logger for the dispatcher.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithBus publishes a command.dispatched event for every dispatch.
func WithBus(bus *event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}
