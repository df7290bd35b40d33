package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"insafe-lab/internal/api"
	"insafe-lab/internal/api/handlers"
	apimiddleware "insafe-lab/internal/api/middleware"
	"insafe-lab/internal/config"
	"insafe-lab/internal/domain/services"
	"insafe-lab/internal/domain/services/ai"
	grpchealth "insafe-lab/internal/grpc/health"
	"insafe-lab/internal/infrastructure/cache"
	"insafe-lab/internal/infrastructure/database"
	"insafe-lab/internal/infrastructure/database/repository"
	"insafe-lab/internal/streaming"
	"insafe-lab/pkg/logger"
)

// stores groups the persistence backends the services run on
type stores struct {
	scans    services.ScanStore
	reports  services.ReportStore
	patterns services.PatternStore
}

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("INSAFE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting INSAFE Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure. Every backend is optional.
	db := initDatabase(ctx, cfg, log)
	if db != nil {
		defer db.Close()
	}
	redisCache := initRedis(ctx, cfg, log)
	if redisCache != nil {
		defer redisCache.Close()
	}

	st := initStores(db, log)

	// Streaming
	var natsPublisher *streaming.NATSPublisher
	if cfg.NATS.Enabled {
		natsPublisher, err = streaming.NewNATSPublisher(ctx, cfg.NATS, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing with local streaming only")
			natsPublisher = nil
		}
	}
	eventBus := streaming.NewEventBus(natsPublisher, log)
	defer eventBus.Close()

	wsHub := streaming.NewWebSocketHub(log)
	go wsHub.Run(ctx)

	publisher := streaming.NewEventBusPublisher(eventBus, wsHub)

	// Scoring core
	detector, err := newDetector(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scoring configuration")
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)

	// Optional Redis-backed collaborators stay nil interfaces without Redis
	var (
		jsonCache services.JSONCache
		counter   services.ScanCounter
		locker    services.Locker
		limiter   apimiddleware.RateLimitStore
	)
	if redisCache != nil {
		jsonCache, counter, locker, limiter = redisCache, redisCache, redisCache, redisCache
	}

	classifier := services.NewClassifier(cfg.Classifier, jsonCache, log)

	var verification *services.VerificationService
	if cfg.Verification.Enabled {
		verification = services.NewVerificationService([]services.Verifier{
			services.NewCyberCrimePortalSource(),
			services.NewTelecomBlacklistSource(),
			services.NewRBIFraudSource(),
			services.NewCommunitySource(st.reports),
		}, st.scans, cfg.Verification.Timeout, log)
	}

	learning := services.NewLearningService(detector, cfg.Learning.Enabled, publisher, metrics, log)
	scanService := services.NewScanService(detector, st.scans, services.ScanServiceDeps{
		Classifier: classifier,
		Verifier:   verification,
		Learning:   learning,
		Publisher:  publisher,
		Counter:    counter,
		Metrics:    metrics,
	}, log)
	reportService := services.NewReportService(st.reports, publisher, metrics, log)

	patternService := services.NewPatternService(detector.Catalog(), st.patterns, log)
	if n, err := patternService.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to restore custom patterns")
	} else if n > 0 {
		log.Info().Int("patterns", n).Msg("restored custom patterns")
	}

	scheduler := services.NewScheduler(locker, metrics, log)
	scheduler.RegisterDefaultJobs(learning, verification, cfg.Learning.RetrainInterval, cfg.Verification.RefreshInterval)

	// Dependency probes for /ready and gRPC health
	checks := map[string]handlers.Pinger{}
	grpcDeps := map[string]grpchealth.Pinger{}
	if db != nil {
		checks["postgres"], grpcDeps["postgres"] = db, db
	}
	if redisCache != nil {
		checks["redis"], grpcDeps["redis"] = redisCache, redisCache
	}

	h := handlers.NewHandlers(handlers.Dependencies{
		Scans:        scanService,
		Learning:     learning,
		Patterns:     patternService,
		Reports:      reportService,
		Verification: verification,
		Scheduler:    scheduler,
		WSHub:        wsHub,
		EventBus:     eventBus,
		Checks:       checks,
		Version:      cfg.App.Version,
		Logger:       log,
	})

	// Create router
	router := api.NewRouter(*cfg, h, limiter, prometheus.DefaultGatherer, log)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server (health only)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthChecker := grpchealth.RegisterHealthServer(grpcServer, grpcDeps, log)
	go healthChecker.Run(ctx)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Start background jobs
	go func() {
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduler stopped with error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	grpcServer.GracefulStop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop background services, then let in-flight learning drain
	cancel()
	scheduler.Stop()
	learning.Wait()

	log.Info().Msg("shutdown complete")
}

// initDatabase connects to PostgreSQL and applies the schema. Returns nil
// when the database is disabled or unreachable.
func initDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) *database.PostgresDB {
	if !cfg.Database.Enabled {
		return nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing with in-memory storage")
		return nil
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to migrate database, continuing with in-memory storage")
			db.Close()
			return nil
		}
	}
	return db
}

// initRedis connects to Redis. Returns nil when Redis is disabled or unreachable.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache, locks or rate limiting")
		return nil
	}
	return redisCache
}

func initStores(db *database.PostgresDB, log *logger.Logger) stores {
	if db != nil {
		log.Info().Msg("repositories initialized with database")
		return stores{
			scans:    repository.NewScanRepository(db.Pool()),
			reports:  repository.NewReportRepository(db.Pool()),
			patterns: repository.NewPatternRepository(db.Pool()),
		}
	}
	log.Warn().Msg("running without database - history is kept in memory")
	mem := repository.NewMemoryStore()
	return stores{
		scans:    mem.Scans(),
		reports:  mem.Reports(),
		patterns: mem.Patterns(),
	}
}

func newDetector(cfg *config.Config, log *logger.Logger) (*ai.Detector, error) {
	policy, err := ai.NewPolicy(cfg.Scoring.Blend, cfg.Scoring.DangerousThreshold, cfg.Scoring.SuspiciousThreshold)
	if err != nil {
		return nil, err
	}
	return ai.NewDetector(ai.DetectorConfig{
		Scorer: ai.ScorerConfig{
			Deterministic: cfg.Scoring.Deterministic,
			KnownScammers: cfg.Scoring.KnownScammers,
		},
		Learning: ai.LearningConfig{
			RetrainEvery: cfg.Learning.RetrainEvery,
			Window:       cfg.Learning.Window,
			MinSamples:   cfg.Learning.MinSamples,
			MaxExamples:  cfg.Learning.MaxExamples,
		},
		Policy: policy,
	}, log), nil
}
