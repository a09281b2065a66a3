// Package host owns the bridge process: it builds the services from
// configuration, registers their channels on one dispatcher, runs the
// share inbox and the transport, and tears everything down again.
package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Iron-Ham/callbridge/internal/bridge"
	"github.com/Iron-Ham/callbridge/internal/calllog"
	"github.com/Iron-Ham/callbridge/internal/calllog/sqlitestore"
	"github.com/Iron-Ham/callbridge/internal/config"
	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/event"
	"github.com/Iron-Ham/callbridge/internal/launcher"
	"github.com/Iron-Ham/callbridge/internal/launcher/desktop"
	"github.com/Iron-Ham/callbridge/internal/logging"
	"github.com/Iron-Ham/callbridge/internal/share"
	"github.com/Iron-Ham/callbridge/internal/share/inbox"
	"github.com/Iron-Ham/callbridge/internal/transport"
)

const shutdownTimeout = 5 * time.Second

// Resume reasons.
const (
	ReasonStartup         = "startup"
	ReasonClientConnected = "client-connected"
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the root logger.
func WithLogger(logger *logging.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCallStore replaces the SQLite call store.
func WithCallStore(store calllog.Store) Option {
	return func(h *Host) {
		h.callStore = store
	}
}

// WithPlatform replaces the desktop launch platform.
func WithPlatform(p launcher.Platform) Option {
	return func(h *Host) {
		h.platform = p
	}
}

// Host is a running bridge.
type Host struct {
	cfg    *config.Config
	logger *logging.Logger

	bus        *event.Bus
	dispatcher *bridge.Dispatcher

	callStore calllog.Store
	sqlite    *sqlitestore.Store
	platform  launcher.Platform

	calls    *calllog.Service
	tracker  *share.Tracker
	launcher *launcher.Service

	inbox  *inbox.Watcher
	server *transport.Server

	detach   func()
	stopOnce sync.Once
}

// New builds a host from cfg. Nothing runs until Start.
func New(cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	h := &Host{cfg: cfg, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(h)
	}

	h.bus = event.NewBus(h.logger)
	h.dispatcher = bridge.New(bridge.WithLogger(h.logger), bridge.WithBus(h.bus))
	h.bus.SubscribeAll(h.logEvent)

	if h.callStore == nil {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath()), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		store, err := sqlitestore.Open(cfg.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("open call store: %w", err)
		}
		h.sqlite = store
		h.callStore = store
	}
	h.calls = calllog.NewService(h.callStore, calllog.WithLogger(h.logger))

	h.tracker = share.NewTracker(share.NewCell(),
		share.WithLogger(h.logger),
		share.WithBus(h.bus),
		share.WithMimeTypes(cfg.Share.MimeTypes...),
		share.WithReplayOnResume(cfg.Share.ReplayOnResume))
	h.detach = h.tracker.Attach(h.bus)

	policy, err := launcher.NewPolicy(cfg.Launcher.Allow, cfg.Launcher.Deny)
	if err != nil {
		_ = h.closeStore()
		return nil, err
	}
	if h.platform == nil {
		h.platform = desktop.New(cfg.Launcher.ApplicationDirs, desktop.WithLogger(h.logger))
	}
	h.launcher = launcher.NewService(h.platform,
		launcher.WithLogger(h.logger),
		launcher.WithBus(h.bus),
		launcher.WithPolicy(policy))

	channels := []struct {
		name    string
		handler bridge.Handler
	}{
		{calllog.ChannelName, h.calls.Handler()},
		{share.ChannelName, h.tracker.Handler()},
		{launcher.ChannelName, h.launcher.Handler()},
	}
	for _, c := range channels {
		if err := h.dispatcher.Register(cfg.ChannelName(c.name), c.handler); err != nil {
			_ = h.closeStore()
			return nil, err
		}
	}

	return h, nil
}

// Config returns the host configuration.
func (h *Host) Config() *config.Config { return h.cfg }

// Bus returns the host event bus.
func (h *Host) Bus() *event.Bus { return h.bus }

// Dispatcher returns the dispatcher with every channel registered.
func (h *Host) Dispatcher() *bridge.Dispatcher { return h.dispatcher }

// Tracker returns the share tracker.
func (h *Host) Tracker() *share.Tracker { return h.tracker }

// Server returns the websocket server, or nil before Start or in stdio
// mode.
func (h *Host) Server() *transport.Server { return h.server }

// Dispatch routes one command by its unprefixed channel name.
func (h *Host) Dispatch(ctx context.Context, channel, method string, args bridge.Args) bridge.Response {
	return h.dispatcher.Dispatch(ctx, h.cfg.ChannelName(channel), method, args)
}

// Resume signals a transition of the process to the foreground.
func (h *Host) Resume(reason string) {
	h.bus.Publish(event.NewAppResumedEvent(reason))
}

// Start starts the inbox watcher and, in websocket mode, the server.
func (h *Host) Start() error {
	w, err := inbox.New(h.cfg.InboxDir(), h.bus, inbox.WithLogger(h.logger))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	h.inbox = w

	if h.cfg.Transport.Mode == config.TransportWebsocket {
		h.server = transport.NewServer(h.dispatcher,
			transport.WithListenAddr(h.cfg.Transport.ListenAddr),
			transport.WithPath(h.cfg.Transport.Path),
			transport.WithLogger(h.logger),
			transport.WithConnectHook(func(string) { h.Resume(ReasonClientConnected) }))
		if err := h.server.Start(); err != nil {
			w.Stop()
			return fmt.Errorf("start websocket server: %w", err)
		}
	}

	h.Resume(ReasonStartup)
	h.logger.Info("bridge started",
		"mode", h.cfg.Transport.Mode,
		"channels", h.dispatcher.Channels())
	return nil
}

// Stop shuts everything down. It is safe to call more than once.
func (h *Host) Stop(ctx context.Context) error {
	var errs []error
	h.stopOnce.Do(func() {
		if h.server != nil {
			if err := h.server.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if h.inbox != nil {
			h.inbox.Stop()
		}
		if h.detach != nil {
			h.detach()
		}
		if err := h.closeStore(); err != nil {
			errs = append(errs, err)
		}
		h.logger.Info("bridge stopped")
	})
	return errors.Join(errs...)
}

func (h *Host) closeStore() error {
	if h.sqlite == nil {
		return nil
	}
	err := h.sqlite.Close()
	h.sqlite = nil
	return err
}

// Run starts the host and serves until ctx is done or, in stdio mode,
// until in is exhausted.
func (h *Host) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := h.Start(); err != nil {
		_ = h.Stop(context.Background())
		return err
	}

	var runErr error
	if h.cfg.Transport.Mode == config.TransportStdio {
		done := make(chan error, 1)
		go func() { done <- transport.ServeStream(ctx, h.dispatcher, in, out, h.logger) }()
		select {
		case runErr = <-done:
		case <-ctx.Done():
		}
	} else {
		<-ctx.Done()
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, h.Stop(stopCtx))
}

func (h *Host) logEvent(e event.Event) {
	h.logger.Debug("event", "event_type", e.EventType())
}
