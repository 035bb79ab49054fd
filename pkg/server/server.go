package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Server serves the diff API and streams patch scripts to websocket
// sessions.
type Server struct {
	config   Config
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	sessions   map[string]*Session // nil value: reserved, not yet upgraded
	closed     bool
	active     sync.WaitGroup
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	config = config.withDefaults()

	s := &Server{
		config:   config,
		logger:   config.Logger.With("component", "server"),
		sessions: make(map[string]*Session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.config.Metrics != nil {
		r.Method(http.MethodGet, s.config.MetricsPath, s.config.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/diff", s.handleDiff)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleRenderSession)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/tree", s.handleSessionTree)
			r.Get("/ws", s.HandleWebSocket)
		})
	})
	return r
}

// logRequests logs every request at debug level with its request ID.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.httpServer = hs
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server, waiting at most
// ShutdownTimeout. The snapshot store is left open; it belongs to the
// caller.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closed = true
	hs := s.httpServer
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess != nil {
			sessions = append(sessions, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	var err error
	if hs != nil {
		err = hs.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	if err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// ActiveSessions returns the number of connected sessions.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess != nil {
			n++
		}
	}
	return n
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// reserve claims id for a connection that is about to be upgraded.
func (s *Server) reserve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	if _, ok := s.sessions[id]; ok {
		return ErrSessionBusy
	}
	s.sessions[id] = nil
	s.active.Add(1)
	return nil
}

// attach records the session for a reserved id. It fails when the server
// began shutting down after the reservation.
func (s *Server) attach(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[sess.ID] = sess
	return true
}

// release frees a reserved id.
func (s *Server) release(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.active.Done()
}
