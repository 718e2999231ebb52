// Package api exposes a project's dependency report over HTTP.
//
// The server is read-mostly: every request for /dependencies loads a fresh
// snapshot of the project, while latest-version lookups go through the
// shared resolver so concurrent clients hit the proxy once per TTL.
//
// # Routes
//
//	GET    /healthz
//	GET    /version
//	GET    /dependencies            ?updates=1 &unused=1
//	GET    /modules/latest          ?path=
//	GET    /modules/versions        ?path=
//	GET    /compare                 ?a= &b=
//	POST   /cache/clear
//	GET    /snapshots               ?module=
//	POST   /snapshots
//	GET    /snapshots/{id}
//	GET    /snapshots/{id}/diff     ?against=
//	DELETE /snapshots/{id}
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/gomodwatch/pkg/deps"
	"github.com/matzehuels/gomodwatch/pkg/snapshot"
)

// DefaultRequestTimeout bounds a single request, including source lookups.
const DefaultRequestTimeout = 60 * time.Second

// Loader produces a fresh snapshot of the project in dir.
type Loader interface {
	Load(ctx context.Context, dir string) (*deps.Snapshot, error)
}

// Resolver answers latest-version and version-list queries.
type Resolver interface {
	Latest(ctx context.Context, key string) (string, bool)
	Versions(ctx context.Context, key string) []string
	ClearCache()
}

// Config holds the collaborators of a Server.
type Config struct {
	Dir            string         // Project directory served
	Project        Loader         // Required
	Resolver       Resolver       // Required
	Store          snapshot.Store // Snapshot history (optional; routes return 404 without it)
	Logger         *log.Logger    // Request logging (optional)
	RequestTimeout time.Duration  // Per-request timeout (default: 60s)
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	router chi.Router
}

// New builds a Server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/dependencies", s.handleDependencies)
	r.Route("/modules", func(r chi.Router) {
		r.Get("/latest", s.handleLatest)
		r.Get("/versions", s.handleVersions)
	})
	r.Get("/compare", s.handleCompare)
	r.Post("/cache/clear", s.handleClearCache)
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Post("/", s.handleSaveSnapshot)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSnapshot)
			r.Delete("/", s.handleDeleteSnapshot)
			r.Get("/diff", s.handleDiffSnapshot)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
