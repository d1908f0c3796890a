// Package server exposes the scrape service over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/scrape-playground/internal/scrape"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	// StaticDir is served under /static/ when set.
	StaticDir string
}

// Handler serves the playground API.
type Handler struct {
	svc  *scrape.Service
	opts Options
}

// New creates a Handler for svc.
func New(svc *scrape.Service, opts Options) *Handler {
	return &Handler{svc: svc, opts: opts}
}

// Router builds the chi router with middleware and all routes attached.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	origins := h.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	h.Attach(r)
	return r
}

// Attach registers the API routes on r.
func (h *Handler) Attach(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/health", h.handleHealth)
	r.Get("/providers/{name}/schema", h.handleSchema)
	r.Post("/scrape", h.handleScrape)

	if h.opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(h.opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}
}
