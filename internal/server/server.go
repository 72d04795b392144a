// Package server serves axnarrate over HTTP.
//
// Routes:
//
//	GET  /                 paste form, prefilled with the latest saved tree
//	POST /render           form field "tree" → HTML page with the narration
//	POST /api/render       JSON tree body → one artifact (?format=text|ansi|html|json|dot|svg|png)
//	POST /api/trees        JSON tree body → saved session entry
//	GET  /api/trees/{id}   narration of a saved tree ("latest" for the newest)
//	GET  /healthz          liveness probe
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/matzehuels/axnarrate/pkg/observability"
	"github.com/matzehuels/axnarrate/pkg/pipeline"
	"github.com/matzehuels/axnarrate/pkg/session"
)

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 10 << 20

// Options configures a [Server].
type Options struct {
	Runner *pipeline.Runner

	// Sessions stores pasted trees. When nil, nothing is saved and the
	// /api/trees routes answer 404.
	Sessions   session.Store
	SessionTTL time.Duration

	Logger       *log.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Server is the HTTP front end.
type Server struct {
	runner   *pipeline.Runner
	sessions session.Store
	ttl      time.Duration
	logger   *log.Logger
	origins  []string
	maxBody  int64
}

// New creates a server. A nil Runner gets an uncached one.
func New(opts Options) *Server {
	s := &Server{
		runner:   opts.Runner,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		logger:   opts.Logger,
		origins:  opts.CORSOrigins,
		maxBody:  opts.MaxBodyBytes,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("server")
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(s.recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/render", s.handleRenderForm)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRenderAPI)
		r.Post("/trees", s.handleSaveTree)
		r.Get("/trees/{id}", s.handleGetTree)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
		ExposedHeaders: []string{headerTreeHash, headerCache, headerErrors, headerSession},
	})
	return c.Handler(r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe logs every request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", d)
	})
}

// recoverer turns a panic into a 500 response.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("panic recovered", "error", v, "path", r.URL.Path, "method", r.Method)
				respondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
