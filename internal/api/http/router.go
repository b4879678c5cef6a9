package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/selfcheck/internal/auth/middleware"
	"github.com/mind-engage/selfcheck/internal/catalogue"
	"github.com/mind-engage/selfcheck/internal/metrics"
	"github.com/mind-engage/selfcheck/internal/session"
	"github.com/mind-engage/selfcheck/internal/storage"
)

// Deps is everything the router needs. Metrics, Blobs and Ready are
// optional.
type Deps struct {
	Catalogue   catalogue.Source
	Pages       *session.Store
	Auth        *auth.AuthService
	Metrics     *metrics.Metrics
	Blobs       storage.BlobStore
	CORSOrigins []string
	Ready       func(context.Context) error
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/sets", ListSetsHandler(d.Catalogue))
	r.Get("/sets/{setID}", GetSetHandler(d.Catalogue))

	r.Route("/pages", func(pr chi.Router) {
		pr.Post("/", MountPageHandler(d.Pages, d.Auth))
		pr.Route("/{pageID}", func(pg chi.Router) {
			pg.Use(auth.PageMiddleware(d.Auth, func(r *http.Request) string { return chi.URLParam(r, "pageID") }))
			pg.Get("/", GetPageHandler(d.Pages))
			pg.Delete("/", UnmountPageHandler(d.Pages))
			pg.Post("/reset", ResetPageHandler(d.Pages))
			pg.Post("/questions/{name}/submit", SubmitHandler(d.Pages))
		})
	})

	if d.Blobs != nil {
		r.Route("/assets", func(ar chi.Router) { MountAssets(ar, d.Blobs) })
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	return r
}
