package rest

import (
	"net/http"

	"investigation-canvas/interfaces/http/rest/handlers"
	"investigation-canvas/interfaces/http/rest/middleware"
	appErrors "investigation-canvas/pkg/errors"
	"investigation-canvas/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions toggles optional middleware
type RouterOptions struct {
	EnableCORS     bool
	AllowedOrigins []string
	// RateLimiter, if set, throttles /api/v1 per client
	RateLimiter *middleware.RateLimiter
}

// Router creates and configures the HTTP router
type Router struct {
	canvas  *handlers.CanvasHandler
	catalog *handlers.CatalogHandler
	metrics *observability.Collector
	errors  *appErrors.ErrorHandler
	options RouterOptions
	logger  *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	canvas *handlers.CanvasHandler,
	catalog *handlers.CatalogHandler,
	metrics *observability.Collector,
	errorHandler *appErrors.ErrorHandler,
	options RouterOptions,
	logger *zap.Logger,
) *Router {
	if len(options.AllowedOrigins) == 0 {
		options.AllowedOrigins = []string{"http://localhost:3000"}
	}
	return &Router{
		canvas:  canvas,
		catalog: catalog,
		metrics: metrics,
		errors:  errorHandler,
		options: options,
		logger:  logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errors.Middleware)
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.options.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if rt.options.RateLimiter != nil {
			r.Use(rt.options.RateLimiter.Handler)
		}
		r.Get("/sessions", rt.canvas.ListSessions)

		r.Route("/investigations/{investigationID}/canvas", func(r chi.Router) {
			r.Post("/", rt.canvas.OpenCanvas)
			r.Get("/", rt.canvas.GetCanvas)
			r.Delete("/", rt.canvas.CloseCanvas)

			r.Post("/pointer", rt.canvas.Pointer)
			r.Post("/nodes", rt.canvas.AddNode)
			r.Delete("/connections/selected", rt.canvas.DeleteSelectedConnection)
			r.Post("/clear", rt.canvas.ClearCanvas)
			r.Post("/save", rt.canvas.SaveCanvas)
			r.Put("/size", rt.canvas.ResizeCanvas)
			r.Get("/frame.png", rt.canvas.GetFrame)

			r.Get("/prompts", rt.canvas.ListPrompts)
			r.Post("/prompts/{promptID}", rt.canvas.ResolvePrompt)
			r.Get("/notices", rt.canvas.ListNotices)
			r.Delete("/notices", rt.canvas.ClearNotices)
		})

		r.Route("/canvases", func(r chi.Router) {
			r.Get("/", rt.catalog.ListCanvases)
			r.Get("/{investigationID}", rt.catalog.GetCanvas)
			r.Delete("/{investigationID}", rt.catalog.DeleteCanvas)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
