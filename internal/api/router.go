package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insafe-lab/internal/api/handlers"
	apimiddleware "insafe-lab/internal/api/middleware"
	"insafe-lab/internal/config"
	"insafe-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	limiter  apimiddleware.RateLimitStore
	gatherer prometheus.Gatherer
	logger   *logger.Logger
}

// NewRouter creates a new Router instance. limiter may be nil, which
// disables rate limiting; gatherer defaults to the global registry.
func NewRouter(cfg config.Config, h *handlers.Handlers, limiter apimiddleware.RateLimitStore, gatherer prometheus.Gatherer, log *logger.Logger) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		config:   cfg,
		handlers: h,
		limiter:  limiter,
		gatherer: gatherer,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Probes, metrics and the websocket feed sit outside the timeout and rate limit
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)
	router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	router.Get("/ws", r.handlers.Streaming.HandleWebSocket)

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		if r.config.RateLimit.Enabled && r.limiter != nil {
			api.Use(apimiddleware.RateLimiter(r.limiter, r.config.RateLimit, r.logger))
		}

		// Scanning
		api.Route("/scan", func(scan chi.Router) {
			scan.Post("/url", r.handlers.Scan.URL)
			scan.Post("/sms", r.handlers.Scan.SMS)
			scan.Post("/qr", r.handlers.Scan.QR)
			scan.Post("/apk", r.handlers.Scan.APK)
			scan.Post("/call", r.handlers.Scan.Call)
			scan.Post("/phone", r.handlers.Scan.Phone)
		})

		// Scan history
		api.Route("/scans", func(scans chi.Router) {
			scans.Get("/", r.handlers.Scan.List)
			scans.Get("/recent", r.handlers.Scan.Recent)
			scans.Get("/{id}", r.handlers.Scan.Get)
		})

		// Stats
		api.Get("/stats", r.handlers.Stats.Get)
		api.Get("/stats/learning", r.handlers.Stats.Learning)
		api.Get("/streaming/stats", r.handlers.Streaming.GetStats)

		// Community reports
		api.Route("/reports", func(reports chi.Router) {
			reports.Get("/", r.handlers.Reports.List)
			reports.Post("/", r.handlers.Reports.Create)
		})

		// Pattern catalog
		api.Route("/patterns", func(patterns chi.Router) {
			patterns.Get("/", r.handlers.Patterns.List)
			patterns.With(apimiddleware.AdminAuth(r.config.Admin.APIKeys)).Post("/", r.handlers.Patterns.Add)
		})

		// Adaptive learning
		api.Route("/ai", func(ai chi.Router) {
			ai.Get("/status", r.handlers.Learning.Status)
			ai.Post("/learn", r.handlers.Learning.Learn)
			ai.Post("/predict", r.handlers.Learning.Predict)
			ai.Post("/feedback", r.handlers.Learning.Feedback)
			ai.With(apimiddleware.AdminAuth(r.config.Admin.APIKeys)).Post("/retrain", r.handlers.Learning.Retrain)
		})

		// Phone intelligence
		api.Route("/intel", func(intel chi.Router) {
			intel.Get("/phone/{number}", r.handlers.Intel.Phone)
			intel.Get("/status", r.handlers.Intel.Status)
		})

		// Admin endpoints
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(apimiddleware.AdminAuth(r.config.Admin.APIKeys))

			admin.Get("/jobs", r.handlers.Admin.Jobs)
			admin.Post("/jobs/{name}/run", r.handlers.Admin.RunJob)
		})
	})

	return router
}
