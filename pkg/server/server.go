/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: server.go
Description: HTTP adapter for the STL decoder. Accepts an STL body on POST /v1/stats,
streams it through the parser into a statistics consumer and answers with a JSON report.
Exposes /healthz and prometheus /metrics on a chi router.
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kleascm/stlstream/pkg/monitoring"
	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the per-request identifier
const RequestIDHeader = "X-Request-ID"

// Config holds server settings
type Config struct {
	ListenAddr      string
	MaxBodyBytes    int64
	MaxTriangles    uint32
	MaxLineLength   int
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the server defaults
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		MaxBodyBytes:    256 << 20,
		MaxLineLength:   stl.DefaultMaxLineLength,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Line  int    `json:"line,omitempty"`
	Index uint32 `json:"index,omitempty"`
}

// Server serves parse reports over HTTP
type Server struct {
	config   Config
	logger   logrus.FieldLogger
	metrics  *monitoring.MetricsCollector
	gatherer prometheus.Gatherer
	router   chi.Router
}

// New creates a server registering its metrics with a fresh registry
func New(config Config, logger logrus.FieldLogger) (*Server, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	reg := prometheus.NewRegistry()
	metrics, err := monitoring.NewMetricsCollector(reg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s := &Server{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		gatherer: reg,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok\n")); err != nil {
			s.logger.WithError(err).Debug("Response write failed")
		}
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Post("/v1/stats", s.handleStats)

	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", ln.Addr().String()).Info("Server listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// handleStats parses the request body and returns a statistics report
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("request_id", w.Header().Get(RequestIDHeader))

	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	opts := []stl.Option{stl.WithLogger(log)}
	if r.ContentLength > 0 {
		opts = append(opts, stl.WithSizeHint(r.ContentLength))
	}
	if s.config.MaxTriangles > 0 {
		opts = append(opts, stl.WithMaxTriangles(s.config.MaxTriangles))
	}
	if s.config.MaxLineLength > 0 {
		opts = append(opts, stl.WithMaxLineLength(s.config.MaxLineLength))
	}

	stats := sinks.NewStats()
	if err := s.metrics.Parse(stl.New(opts...), body, stats); err != nil {
		status, resp := errorResponse(err)
		log.WithError(err).WithField("status", status).Warn("Request rejected")
		s.writeJSON(w, status, resp)
		return
	}

	s.writeJSON(w, http.StatusOK, stats.Report())
}

// errorResponse maps a parse failure onto a status code and body
func errorResponse(err error) (int, ErrorResponse) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
		}
	}

	resp := ErrorResponse{Error: err.Error()}
	var pe *stl.ParseError
	if errors.As(err, &pe) {
		resp.Kind = pe.Kind.String()
		resp.Line = pe.Line
		resp.Index = pe.Index
		if pe.Kind == stl.KindIO {
			return http.StatusBadRequest, resp
		}
	}
	return http.StatusUnprocessableEntity, resp
}

// writeJSON writes v as the response body with the given status
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).WithField("status", status).Debug("Response write failed")
	}
}

// requestID tags every response with a request identifier
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// logRequests logs each request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"request_id": ww.Header().Get(RequestIDHeader),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
		}).Debug("Request served")
	})
}
