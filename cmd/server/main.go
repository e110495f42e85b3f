package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prepwise/interview-api/internal/config"
	handler "github.com/prepwise/interview-api/internal/delivery/http"
	"github.com/prepwise/interview-api/internal/generator/gemini"
	"github.com/prepwise/interview-api/internal/generator/openai"
	"github.com/prepwise/interview-api/internal/ledger"
	"github.com/prepwise/interview-api/internal/pool"
	"github.com/prepwise/interview-api/internal/repository"
	"github.com/prepwise/interview-api/internal/repository/memory"
	"github.com/prepwise/interview-api/internal/repository/postgres"
	redisrepo "github.com/prepwise/interview-api/internal/repository/redis"
	"github.com/prepwise/interview-api/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting interview API server",
		zap.String("mode", string(cfg.Generation.Mode)),
		zap.String("provider", cfg.Generation.Provider),
		zap.String("ledger", cfg.Ledger.Backend),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Connect to PostgreSQL (document store)
	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
	}
	if err := postgres.EnsureSchema(ctx, dbPool); err != nil {
		logger.Fatal("Failed to prepare document store schema", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	healthChecks := map[string]repository.HealthChecker{
		"postgres": repository.HealthCheckFunc(dbPool.Ping),
	}

	// Optional sentinel read before each generation
	var sentinel repository.HealthChecker
	if cfg.Database.SentinelPath != "" {
		sr, err := postgres.NewSentinelReader(dbPool, cfg.Database.SentinelPath)
		if err != nil {
			logger.Fatal("Invalid DOCSTORE_SENTINEL_PATH", zap.Error(err))
		}
		sentinel = sr
		logger.Info("Document store sentinel check enabled", zap.String("path", cfg.Database.SentinelPath))
	}

	// Ledger backend
	var jobStore repository.JobStore
	switch cfg.Ledger.Backend {
	case config.LedgerRedis:
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to parse Redis URL", zap.Error(err))
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to ping Redis", zap.Error(err))
		}
		logger.Info("Connected to Redis")

		jobStore = redisrepo.NewRedisJobStore(rdb, cfg.Ledger.TTL)
		if hc, ok := jobStore.(repository.HealthChecker); ok {
			healthChecks["redis"] = hc
		}
	default:
		jobStore = memory.NewJobStore(cfg.Ledger.TTL)
	}

	// Text-generation provider
	generator, err := newGenerator(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize text generator", zap.Error(err))
	}

	// Worker pool
	workerPool := pool.NewWorkerPool(cfg.Worker.PoolSize, cfg.Worker.QueueDepth, logger)
	workerPool.Start(context.Background())

	// Initialize repository and use cases
	interviewRepo := postgres.NewPostgresInterviewRepository(dbPool, cfg.Database.Collection)
	jobLedger := ledger.New(jobStore, logger)

	generateUC := usecase.NewGenerateInterviewUsecase(interviewRepo, generator, sentinel, logger)
	submitUC := usecase.NewSubmitGenerationUsecase(cfg.Generation.Mode, jobLedger, workerPool, generateUC, logger)
	pollUC := usecase.NewPollGenerationUsecase(jobLedger, logger)
	interviewUC := usecase.NewGetInterviewUsecase(interviewRepo, logger)

	// Initialize router
	router := handler.NewRouter(handler.RouterDeps{
		SubmitUC:        submitUC,
		PollUC:          pollUC,
		InterviewUC:     interviewUC,
		HealthChecks:    healthChecks,
		Logger:          logger,
		RateLimitPerMin: cfg.Server.RateLimit,
		BodyLimit:       cfg.Server.BodyLimit,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let background generations finish and record their results.
	workerPool.Stop()

	logger.Info("API server stopped")
}

func newLogger(cfg config.ServerConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.GinMode == gin.DebugMode {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

func newGenerator(cfg *config.Config) (repository.TextGenerator, error) {
	switch cfg.Generation.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.Generation.Timeout,
		})
	default:
		return gemini.NewClient(gemini.Options{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Generation.Timeout,
		})
	}
}
