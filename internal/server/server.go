package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-runtime/internal/sandbox"
)

// StatusSource provides sandbox status snapshots
type StatusSource interface {
	Status(ctx context.Context) sandbox.RuntimeStatus
}

// Config holds status server configuration
type Config struct {
	// ListenAddr is the address to listen on (e.g., "127.0.0.1:9420")
	ListenAddr string

	// Source is queried on every /healthz and /status request
	Source StatusSource

	// Metrics serves /metrics. The route is omitted when nil.
	Metrics http.Handler

	// Logger for request logging
	Logger *slog.Logger

	// Now replaces time.Now for uptime calculation
	Now func() time.Time
}

// Handler serves read-only sandbox status over HTTP
type Handler struct {
	config *Config
	router *mux.Router
}

// NewHandler creates the status router
func NewHandler(cfg *Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	h := &Handler{config: cfg, router: mux.NewRouter()}
	h.RegisterRoutes(h.router)
	return h
}

// RegisterRoutes adds the status routes to r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	if h.config.Metrics != nil {
		r.Handle("/metrics", h.config.Metrics).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	start := time.Now()

	h.router.ServeHTTP(lw, r)

	h.config.Logger.Debug("status request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", lw.statusCode,
		"duration", time.Since(start))
}

// Health reports the health verdict; 200 for healthy or degraded, 503 otherwise
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	result := health.Check(h.config.Source.Status(r.Context()), h.config.Now())
	writeJSON(w, result.Status.HTTPStatus(), result)
}

// Status returns the full status snapshot
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.config.Source.Status(r.Context()))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lw *loggingResponseWriter) WriteHeader(code int) {
	lw.statusCode = code
	lw.ResponseWriter.WriteHeader(code)
}

// Server wraps the handler with lifecycle management
type Server struct {
	handler *Handler
	server  *http.Server
}

// New creates a status server
func New(cfg *Config) *Server {
	h := NewHandler(cfg)
	return &Server{
		handler: h,
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Serve accepts connections on l until Shutdown. It returns nil after a
// clean shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.handler.config.Logger.Info("serving status", "addr", l.Addr().String())
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves until Shutdown
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
