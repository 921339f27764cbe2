package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"bookdoc/internal/httpx"
	"bookdoc/internal/resource"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries everything NewRouter wires together. Metrics and
// RateLimiter are optional.
type RouterConfig struct {
	Service      BookService
	Presenters   map[resource.Version]resource.Presenter
	DB           Pinger
	Logger       *zap.Logger
	Metrics      *httpx.Metrics
	RateLimiter  *httpx.RateLimiter
	CORSOrigins  []string
	EnableHSTS   bool
	TrustProxy   bool
	MaxBodyBytes int64
}

const readyTimeout = 500 * time.Millisecond

// NewRouter mounts the book routes once per API version under /v1, /v2 and
// /v3, and the latest version again at the root.
func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()

	router.Use(httpx.RequestIDMiddleware)
	if cfg.TrustProxy {
		router.Use(chimiddleware.RealIP)
	}
	router.Use(chimiddleware.CleanPath)
	router.Use(httpx.AccessLogMiddleware(cfg.Logger))
	router.Use(httpx.RecoveryMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
	}
	router.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Unversioned paths, including unknown ones, speak the latest version.
	latest := NewBookHandler(cfg.Service, cfg.Presenters[resource.Latest], cfg.Logger)
	router.NotFound(latest.RouteNotFound)
	router.MethodNotAllowed(latest.MethodNotAllowed)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", readinessHandler(cfg.DB))
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.MaxBodyBytes > 0 {
			r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
		}

		for _, v := range []resource.Version{resource.V1, resource.V2, resource.V3} {
			h := NewBookHandler(cfg.Service, cfg.Presenters[v], cfg.Logger)
			r.Route("/"+v.String(), func(r chi.Router) {
				r.NotFound(h.RouteNotFound)
				r.MethodNotAllowed(h.MethodNotAllowed)
				registerBookRoutes(r, h)
			})
		}
		registerBookRoutes(r, latest)
	})

	return router
}

func registerBookRoutes(r chi.Router, h *BookHandler) {
	r.Get("/List_Of_Books", h.ListBooks)
	r.Get("/Sort_books", h.SortBooks)
	r.Get("/Find_Book", h.FindBook)
	r.Post("/Create_Book", h.CreateBook)
	r.Patch("/Update_Book", h.UpdateBook)
	r.Delete("/Delete_Book", h.DeleteBook)
}

func readinessHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
