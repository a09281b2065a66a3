package transport

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Iron-Ham/callbridge/internal/errors"
	"github.com/Iron-Ham/callbridge/internal/logging"
)

// Defaults for the websocket server.
const (
	DefaultListenAddr = "127.0.0.1:7341"
	DefaultPath       = "/bridge"

	writeTimeout = 10 * time.Second
)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithListenAddr sets the TCP address to listen on.
func WithListenAddr(addr string) ServerOption {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithPath sets the HTTP path that accepts websocket upgrades.
func WithPath(path string) ServerOption {
	return func(s *Server) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConnectHook registers fn to run whenever a client connects.
func WithConnectHook(fn func(connID string)) ServerOption {
	return func(s *Server) {
		s.onConnect = fn
	}
}

// Server serves bridge requests over websocket connections. Each
// connection is read on its own goroutine and its requests are answered in
// order.
type Server struct {
	addr       string
	path       string
	dispatcher Dispatcher
	logger     *logging.Logger
	onConnect  func(connID string)
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
	conns    map[string]*websocket.Conn
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a websocket server routing to d.
func NewServer(d Dispatcher, opts ...ServerOption) *Server {
	if d == nil {
		panic("transport: Dispatcher must not be nil")
	}

	s := &Server{
		addr:       DefaultListenAddr,
		path:       DefaultPath,
		dispatcher: d,
		logger:     logging.NopLogger(),
		conns:      make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("websocket")
	return s
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, s)

	s.mu.Lock()
	s.listener = ln
	s.http = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	srv := s.http
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("websocket server stopped", "error", err.Error())
		}
	}()

	s.logger.Info("websocket server listening", "addr", ln.Addr().String(), "path", s.path)
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// URL returns the websocket URL clients should dial.
func (s *Server) URL() string {
	return "ws://" + s.Addr() + s.path
}

// Shutdown stops accepting connections, closes open ones and waits for
// their goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.http
	for _, c := range s.conns {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = c.Close()
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// ServeHTTP upgrades the request and serves the connection until the peer
// goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err.Error())
		return
	}

	connID := uuid.NewString()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conns[connID] = conn
	s.wg.Add(1)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, connID)
		s.mu.Unlock()
		_ = conn.Close()
		s.wg.Done()
	}()

	logger := s.logger.With("conn_id", connID)
	logger.Info("client connected", "remote", r.RemoteAddr)
	if s.onConnect != nil {
		s.onConnect(connID)
	}

	ctx := r.Context()
	for {
		msgType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("connection closed unexpectedly", "error", err.Error())
			} else {
				logger.Info("client disconnected")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp, req, elapsed := handleFrame(ctx, s.dispatcher, frame)
		logger.Debug("request served",
			"channel", req.Channel,
			"method", req.Method,
			"status", string(resp.Status),
			"duration_ms", elapsed.Milliseconds())

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("write response failed", "error", err.Error())
			return
		}
	}
}
