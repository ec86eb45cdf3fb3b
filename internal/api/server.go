// Package api serves gate reports over HTTP for an external rendering
// surface (dashboard, signage controller).
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/estimator"
	"github.com/e7canasta/crowd-gate/internal/emitter"
)

// DefaultMaxCrowd is the upper bound for user-supplied counts
const DefaultMaxCrowd = 200

// Options configures a Server
type Options struct {
	Engine    *crowdgate.Engine
	Estimates *estimator.Cache
	Limits    crowdgate.DisplayLimits
	MaxCrowd  int

	// Publisher receives reports requested with /evaluation?publish=true (optional)
	Publisher emitter.Publisher
	// AccessLog receives Apache-style access lines (optional)
	AccessLog io.Writer
	// Now overrides the clock, for tests
	Now func() time.Time
}

// Server is the HTTP rendering API
type Server struct {
	engine    *crowdgate.Engine
	estimates *estimator.Cache
	limits    crowdgate.DisplayLimits
	maxCrowd  int
	publisher emitter.Publisher
	metrics   *Metrics
	now       func() time.Time

	handler http.Handler
}

// NewServer validates opts and builds the router
func NewServer(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if opts.Estimates == nil {
		return nil, errors.New("api: estimate cache is required")
	}
	if opts.MaxCrowd == 0 {
		opts.MaxCrowd = DefaultMaxCrowd
	}
	if opts.MaxCrowd < 0 {
		return nil, fmt.Errorf("api: max crowd must be >= 0, got %d", opts.MaxCrowd)
	}
	if opts.Limits == (crowdgate.DisplayLimits{}) {
		opts.Limits = crowdgate.DefaultDisplayLimits()
	}
	if opts.Publisher == nil {
		opts.Publisher = &emitter.NopEmitter{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		engine:    opts.Engine,
		estimates: opts.Estimates,
		limits:    opts.Limits,
		maxCrowd:  opts.MaxCrowd,
		publisher: opts.Publisher,
		metrics:   NewMetrics(),
		now:       opts.Now,
	}

	r := s.routes()
	if opts.AccessLog != nil {
		s.handler = handlers.LoggingHandler(opts.AccessLog, r)
	} else {
		s.handler = r
	}
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/evaluation", s.handleEvaluation).Methods(http.MethodGet)
	r.HandleFunc("/mode", s.handleMode).Methods(http.MethodGet)
	r.HandleFunc("/estimate", s.handleEstimate).Methods(http.MethodGet)
	r.HandleFunc("/estimate/invalidate", s.handleInvalidate).Methods(http.MethodPost)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves on addr until ctx is cancelled, then shuts down within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("api: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("api: server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("api: shutting down gracefully", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown failed: %w", err)
	}
	slog.Info("api: stopped")
	return nil
}
