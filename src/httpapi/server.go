// Package httpapi serves weekly reports over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"devpulse-agent/src/contracts"
	"devpulse-agent/src/logger"
	"devpulse-agent/src/report"
)

// Reporter builds a report synchronously. *report.Reporter implements it.
type Reporter interface {
	Weekly(ctx context.Context, owner, repo, user, token string) (*report.Report, error)
}

// Queue accepts report requests for asynchronous processing.
// pipeline.Pipeline implements it.
type Queue interface {
	Submit(ctx context.Context, owner, repo, user string, days int) (string, error)
	Status(ctx context.Context, requestID string) (*contracts.RequestStatus, error)
	List(ctx context.Context, limit int) ([]contracts.RequestStatus, error)
}

// Server represents the HTTP API server.
type Server struct {
	router   *http.ServeMux
	server   *http.Server
	addr     string
	logger   logger.Logger
	reporter Reporter
	queue    Queue
	days     int
}

// NewServer creates a new HTTP server instance. queue may be nil, in which
// case only the synchronous report endpoint is served.
func NewServer(addr string, reporter Reporter, queue Queue, days int, log logger.Logger) *Server {
	s := &Server{
		addr:     addr,
		logger:   log,
		reporter: reporter,
		queue:    queue,
		days:     days,
		router:   http.NewServeMux(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.applyMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("[HTTP] Listening on %s", s.addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("[HTTP] Shutting down")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with recovery and request logging.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	handler = recoveryMiddleware(s.logger)(handler)
	handler = loggingMiddleware(s.logger)(handler)
	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("[HTTP] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
		})
	}
}

func recoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("[HTTP] Panic serving %s: %v", r.URL.Path, err)
					http.Error(w, "internal error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
