// Package devtools serves a live view of engine activity for debugging.
//
// The server exposes three endpoints:
//   - GET /ws       WebSocket stream of timeline entries as they happen
//   - GET /timeline JSON snapshot of the recorder's ring buffer
//   - GET /metrics  Prometheus metrics
//
// It is meant to run inside a development build of the host application:
//
//	rec := timeline.NewRecorder(4096)
//	e := reactive.NewEngine(reactive.WithObserver(rec))
//
//	dt := devtools.NewServer(rec)
//	go dt.ListenAndServe("localhost:6380")
package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/timeline"
)

// Config configures the devtools server.
type Config struct {
	// Logger for connection lifecycle events (default: slog.Default).
	Logger *slog.Logger

	// CheckOrigin validates WebSocket upgrade origins.
	// Default accepts every origin; the server is a dev tool.
	CheckOrigin func(r *http.Request) bool

	// SendBuffer is the per-client outgoing entry buffer (default: 256).
	// Clients that fall behind are disconnected.
	SendBuffer int
}

// Option configures the devtools server.
type Option func(*Config)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

// WithSendBuffer sets the per-client send buffer size.
func WithSendBuffer(n int) Option {
	return func(c *Config) {
		c.SendBuffer = n
	}
}

// Server streams a recorder's entries to WebSocket clients.
type Server struct {
	rec      *timeline.Recorder
	logger   *slog.Logger
	upgrader websocket.Upgrader
	buffer   int

	mu      sync.Mutex
	clients map[*client]struct{}

	httpServer *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan timeline.Entry
}

// NewServer creates a devtools server over rec and taps its entry stream.
func NewServer(rec *timeline.Recorder, opts ...Option) *Server {
	config := Config{
		Logger:     slog.Default().With("component", "devtools"),
		SendBuffer: 256,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = func(*http.Request) bool { return true }
	}

	s := &Server{
		rec:    rec,
		logger: config.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		buffer:  config.SendBuffer,
		clients: make(map[*client]struct{}),
	}
	rec.Tap(s.broadcast)
	return s
}

// Handler returns the server's routes for mounting in an external router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWS)
	r.Get("/timeline", s.handleTimeline)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ListenAndServe serves the devtools endpoints on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("devtools listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server and disconnects all stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rec.Tap(nil)

	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ClientCount reports the number of connected stream clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.rec.Snapshot()); err != nil {
		s.logger.Error("snapshot encode error", "error", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", apperrors.New("E040").Wrap(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan timeline.Entry, s.buffer),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("client connected", "remote", conn.RemoteAddr())

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop drains control frames until the client goes away.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for entry := range c.send {
		if err := c.conn.WriteJSON(entry); err != nil {
			s.drop(c)
			return
		}
	}
	c.conn.Close()
}

func (s *Server) broadcast(e timeline.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- e:
		default:
			// Slow consumer; disconnect rather than stall the engine.
			close(c.send)
			delete(s.clients, c)
			s.logger.Warn("dropping slow client",
				"remote", c.conn.RemoteAddr(),
				"error", apperrors.New("E041"))
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()
	c.conn.Close()
}
