// Package server exposes the routing pipeline over HTTP.
//
//	POST /v1/route     route a circuit, returns the routed program and artifacts
//	POST /v1/topology  describe (and optionally render) a device
//	GET  /v1/devices   list built-in presets
//	GET  /healthz      liveness and build info
//	GET  /metrics      Prometheus metrics
//
// Errors are JSON objects carrying the codes of pkg/errors; the status is
// derived from the code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/qroute/pkg/pipeline"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":8090"

// maxBodyBytes bounds request bodies. Circuits of a few thousand gates are
// well below it.
const maxBodyBytes = 4 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig sets the defaults applied to every request.
func WithConfig(cfg pipeline.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithGatherer serves g on /metrics. Without it /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithDeviceFiles lets requests name device files relative to the working
// directory. By default only presets and inline device specs are accepted.
func WithDeviceFiles() Option {
	return func(s *Server) { s.deviceFiles = true }
}

// WithTimeout bounds the time spent on one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// Server is the HTTP API.
type Server struct {
	runner      *pipeline.Runner
	cfg         pipeline.Config
	logger      *log.Logger
	gatherer    prometheus.Gatherer
	deviceFiles bool
	timeout     time.Duration
	handler     http.Handler
}

// New builds the API around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
		timeout: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.withRecovery)
	r.Use(s.withObservability)
	r.Use(withSecureHeaders)

	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Get("/devices", s.handleDevices)
		r.Post("/route", s.handleRoute)
		r.Post("/topology", s.handleTopology)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("METHOD_NOT_ALLOWED", r.Method+" not allowed", nil))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}
