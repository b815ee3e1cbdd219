package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/agbru/basketmc/internal/logging"
	"github.com/agbru/basketmc/internal/platform"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	// Addr is the TCP address to listen on, e.g. ":9090" or "127.0.0.1:0".
	Addr string
	// Logger receives lifecycle and error events. Nil disables logging.
	Logger logging.Logger
	// Security overrides DefaultSecurityConfig when non-nil.
	Security *SecurityConfig
}

// ProgressFunc reports the unit counters shown by /healthz.
type ProgressFunc func() platform.Progress

// Server exposes /metrics and /healthz for a running session.
type Server struct {
	addr     string
	logger   logging.Logger
	metrics  *Metrics
	security SecurityConfig

	mu         sync.Mutex
	progress   ProgressFunc
	listener   net.Listener
	httpServer *http.Server
}

// New creates a server. It does not listen until Listen is called.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	security := DefaultSecurityConfig()
	if cfg.Security != nil {
		security = *cfg.Security
	}
	s := &Server{
		addr:     cfg.Addr,
		logger:   logger,
		metrics:  NewMetrics(),
		security: security,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          logging.NewStdLogger(logger, "metrics server"),
	}
	return s
}

// Metrics returns the server's registry owner.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// SetProgress attaches the session whose counters /healthz reports.
func (s *Server) SetProgress(fn ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = fn
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.wrap("/metrics", s.handleMetrics))
	mux.HandleFunc("/healthz", s.wrap("/healthz", s.handleHealth))
	return mux
}

func (s *Server) wrap(path string, h http.HandlerFunc) http.HandlerFunc {
	return s.metricsMiddleware(path, SecurityMiddleware(s.security, h))
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("metrics server listening", logging.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Serve handles requests until ctx is canceled, then shuts down gracefully.
// Listen must have been called.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server: Serve called before Listen")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("metrics server shutdown", err)
			return err
		}
		return nil
	}
}

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(path, rec.code)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.WritePrometheus(w, r)
}

type healthResponse struct {
	Status string             `json:"status"`
	Units  *platform.Progress `json:"units,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	s.mu.Lock()
	progress := s.progress
	s.mu.Unlock()
	if progress != nil {
		p := progress()
		resp.Units = &p
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode health response", err)
	}
}
