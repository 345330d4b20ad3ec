// Package live serves a running layout over HTTP.
//
// A [Server] exposes the latest snapshot and engine statistics as JSON,
// accepts pause, resume, restart and reload commands, and streams every
// published frame to WebSocket subscribers:
//
//	GET  /               minimal canvas viewer
//	GET  /api/snapshot   latest snapshot
//	GET  /api/stats      engine statistics
//	POST /api/pause      stop stepping, keep state
//	POST /api/resume     continue stepping
//	POST /api/restart    re-place nodes (?seed=N)
//	POST /api/reload     re-read the input and reset the layout
//	GET  /ws             one JSON snapshot per frame
//
// Each subscriber has a small send buffer. When it is full the frame is
// dropped for that subscriber only, so a slow browser never stalls the
// simulation or other subscribers.
package live

import (
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
	"github.com/pmwhite/gexf-viewer/pkg/observability"
)

//go:embed index.html
var indexHTML []byte

const (
	// sendBuffer is the number of frames queued per subscriber.
	sendBuffer = 4

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Simulation is the view of a scheduler the server drives.
type Simulation interface {
	Latest() layout.Snapshot
	Stats() layout.Stats
	Pause()
	Resume()
	Paused() bool
	Restart(seed uint64) error
}

// Reloader re-reads the input and replaces the running graph.
type Reloader func(ctx context.Context) error

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for connection and command events.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithReloader enables POST /api/reload.
func WithReloader(r Reloader) Option { return func(s *Server) { s.reload = r } }

// Server publishes a Simulation over HTTP and WebSocket.
type Server struct {
	sim      Simulation
	reload   Reloader
	logger   *log.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	frames int
}

// New returns a Server for sim. Call [Server.Publish] for every frame, for
// example by subscribing it to the scheduler.
func New(sim Simulation, opts ...Option) *Server {
	s := &Server{
		sim:     sim,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleStream)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/stats", s.handleStats)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Post("/restart", s.handleRestart)
		r.Post("/reload", s.handleReload)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Clients returns the number of connected stream subscribers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Publish queues snap for every subscriber. It never blocks.
func (s *Server) Publish(snap layout.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("encode frame", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.send <- data:
			c.frames++
		default:
			observability.Stream().OnFrameDropped(context.Background(), c.id, snap.Tick)
		}
	}
}

// Close disconnects every subscriber.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		close(c.send)
		delete(s.clients, id)
	}
}

// register adds c and queues the current snapshot as its first frame, so a
// subscriber never waits for the next tick to draw.
func (s *Server) register(c *client) {
	data, err := json.Marshal(s.sim.Latest())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
	if err == nil {
		c.send <- data
		c.frames++
	}
}

// unregister removes c and reports how many frames it was sent. It is a
// no-op when Close already removed c.
func (s *Server) unregister(c *client) (frames int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.id]; !ok {
		return c.frames, false
	}
	delete(s.clients, c.id)
	close(c.send)
	return c.frames, true
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Latest())
}

type statsResponse struct {
	layout.Stats
	Paused  bool `json:"paused"`
	Clients int  `json:"clients"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Stats:   s.sim.Stats(),
		Paused:  s.sim.Paused(),
		Clients: s.Clients(),
	})
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.sim.Pause()
	s.logger.Info("simulation paused")
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.sim.Resume()
	s.logger.Info("simulation resumed")
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	seed := s.sim.Stats().Seed + 1
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid seed %q", v))
			return
		}
		seed = n
	}
	if err := s.sim.Restart(seed); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("layout restarted", "seed", seed)
	writeJSON(w, http.StatusOK, s.sim.Latest())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "reload is not configured"))
		return
	}
	if err := s.reload(r.Context()); err != nil {
		s.logger.Warn("reload failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sim.Latest())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	s.register(c)
	ctx := context.WithoutCancel(r.Context())
	observability.Stream().OnClientConnect(ctx, c.id)
	s.logger.Debug("stream client connected", "client", c.id, "remote", r.RemoteAddr)

	go s.writePump(c)
	s.readPump(c)

	if frames, ok := s.unregister(c); ok {
		observability.Stream().OnClientDisconnect(ctx, c.id, frames)
		s.logger.Debug("stream client disconnected", "client", c.id, "frames", frames)
	}
}

// readPump discards client messages and returns when the connection closes.
func (s *Server) readPump(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("stream read error", "client", c.id, "error", err)
			}
			return
		}
	}
}

// writePump sends queued frames and pings until the send channel closes.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Code:    errors.GetCode(err),
		Message: errors.UserMessage(err),
	})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeDuplicateID, errors.ErrCodeUnknownNodeReference, errors.ErrCodeCyclicGraph:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidState:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
