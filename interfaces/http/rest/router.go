package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"loopsite/application/commands/bus"
	"loopsite/application/ports"
	querybus "loopsite/application/queries/bus"
	"loopsite/interfaces/http/rest/handlers"
	"loopsite/interfaces/http/rest/middleware"
	"loopsite/interfaces/web"
	"loopsite/pkg/auth"
	apperrors "loopsite/pkg/errors"
	"loopsite/pkg/observability"
)

// Options toggles the optional parts of the router
type Options struct {
	EnableCORS     bool
	CORSOrigins    []string
	EnableWriteAPI bool
	WriteAPIToken  string
	// WriteRateLimit is the number of write requests allowed per client IP per minute
	WriteRateLimit int
	// TracingName names the X-Ray segment of each request when tracing is enabled
	TracingName string
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus     *bus.CommandBus
	queryBus       *querybus.QueryBus
	layout         *web.Layout
	health         ports.HealthChecker
	metrics        observability.Recorder
	metricsHandler http.Handler
	tracer         *observability.Tracer
	errorHandler   *apperrors.ErrorHandler
	options        Options
	logger         *zap.Logger
}

// NewRouter creates a new router instance. A nil health checker always
// reports ready and a nil metrics handler leaves /metrics unmounted.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	layout *web.Layout,
	health ports.HealthChecker,
	metrics observability.Recorder,
	metricsHandler http.Handler,
	tracer *observability.Tracer,
	errorHandler *apperrors.ErrorHandler,
	options Options,
	logger *zap.Logger,
) *Router {
	if metrics == nil {
		metrics = observability.Noop{}
	}
	return &Router{
		commandBus:     commandBus,
		queryBus:       queryBus,
		layout:         layout,
		health:         health,
		metrics:        metrics,
		metricsHandler: metricsHandler,
		tracer:         tracer,
		errorHandler:   errorHandler,
		options:        options,
		logger:         logger,
	}
}

// Setup returns the HTTP handler, wrapped in an X-Ray segment per request
// when tracing is enabled
func (rt *Router) Setup() http.Handler {
	mux := rt.Mux()
	if rt.tracer.Enabled() {
		return xray.Handler(xray.NewFixedSegmentNamer(rt.options.TracingName), mux)
	}
	return mux
}

// Mux configures all routes and middleware. The Lambda runtime opens its
// own segment, so the Lambda adapter uses the bare mux.
func (rt *Router) Mux() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.options.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", rt.metricsHandler)
	}

	pageHandler := handlers.NewPageHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)

	router.Route("/api/v2", func(r chi.Router) {
		r.Use(rt.errorHandler.Middleware)

		r.Get("/pages", pageHandler.ListPages)
		r.Get("/pages/*", pageHandler.GetPage)
		r.Get("/render/*", pageHandler.RenderPage)
		r.Post("/sections/validate", pageHandler.ValidateSections)

		if rt.options.EnableWriteAPI {
			limiter := auth.NewIPRateLimiter(rt.options.WriteRateLimit)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireToken(rt.options.WriteAPIToken, rt.logger))
				r.Use(middleware.RateLimit(limiter))
				r.Put("/pages/*", pageHandler.SavePage)
				r.Delete("/pages/*", pageHandler.DeletePage)
				r.Put("/slots/*", pageHandler.SaveSlots)
			})
		}

		r.NotFound(func(w http.ResponseWriter, req *http.Request) {
			rt.errorHandler.HandleStatus(w, req, http.StatusNotFound, "Route not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
			rt.errorHandler.HandleStatus(w, req, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	siteHandler := handlers.NewSiteHandler(rt.queryBus, rt.layout, rt.errorHandler, rt.logger)
	router.Get("/*", siteHandler.ServePage)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports whether page storage is reachable
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	if rt.health != nil {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := rt.health.Ping(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
