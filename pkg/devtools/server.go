package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Config configures the devtools server.
type Config struct {
	// Address is the listen address (default: "localhost:7070").
	Address string

	// Gatherer serves /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// WriteTimeout bounds each websocket write (default: 5s).
	WriteTimeout time.Duration

	// RequestTimeout bounds how long /graph waits for the driver
	// (default: 5s).
	RequestTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration

	// Logger receives request and connection logs.
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         "localhost:7070",
		WriteTimeout:    5 * time.Second,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server exposes a driven runtime over HTTP:
//
//	GET /healthz          liveness
//	GET /metrics          Prometheus metrics
//	GET /graph            graph snapshot (?format=json|text)
//	GET /graph/{handle}   one node
//	GET /events           websocket stream of Hub events
type Server struct {
	config   *Config
	driver   *Driver
	hub      *Hub
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	httpServer *http.Server

	// closing ends websocket streams on shutdown.
	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates a devtools server. A nil config uses DefaultConfig.
func NewServer(driver *Driver, hub *Hub, config *Config) *Server {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = defaults.RequestTimeout
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  config,
		driver:  driver,
		hub:     hub,
		logger:  logger.With("component", "devtools"),
		closing: make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local tooling only
			},
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/graph", s.handleGraph)
	r.Get("/graph/{handle}", s.handleNode)
	r.Get("/events", s.handleEvents)
	return r
}

// Handler returns the server's http.Handler, for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) snapshot(r *http.Request) (reactive.Graph, error) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()
	return s.driver.Snapshot(ctx)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.snapshot(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, g)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := RenderText(w, g); err != nil {
			s.logger.Warn("render graph", "error", err)
		}
	default:
		http.Error(w, "unknown format "+strconv.Quote(format), http.StatusBadRequest)
	}
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	h, err := strconv.ParseUint(chi.URLParam(r, "handle"), 10, 64)
	if err != nil {
		http.Error(w, "invalid handle", http.StatusBadRequest)
		return
	}
	g, err := s.snapshot(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	n, ok := g.Node(reactive.Handle(h))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so that a client never
	// misses events sent right after it connects.
	sub := s.hub.Subscribe()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Unsubscribe()
		return
	}
	defer conn.Close()
	s.logger.Debug("events client connected", "remote", r.RemoteAddr)

	// The reader only notices disconnects.
	go func() {
		defer sub.Unsubscribe()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer sub.Unsubscribe()
stream:
	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				break stream
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				break stream
			}
		case <-s.closing:
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
				time.Now().Add(time.Second),
			)
			break stream
		}
	}
	s.logger.Debug("events client disconnected", "remote", r.RemoteAddr, "dropped", sub.Dropped())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.HasCode(err, "S002"):
		status = http.StatusServiceUnavailable
	case err == context.DeadlineExceeded:
		status = http.StatusGatewayTimeout
	}
	s.logger.Warn("devtools request failed", "error", err)
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devtools listening", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.New("S001").Wrap(err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.closeOnce.Do(func() { close(s.closing) })
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return errors.New("S001").Wrap(err)
		}
	}
	s.logger.Info("devtools shutdown complete")
	return nil
}
