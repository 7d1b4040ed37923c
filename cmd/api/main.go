package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/trovehq/trove/internal/api/handlers"
	"github.com/trovehq/trove/internal/api/middleware"
	"github.com/trovehq/trove/internal/config"
	"github.com/trovehq/trove/internal/embeddings"
	"github.com/trovehq/trove/internal/jobs"
	"github.com/trovehq/trove/internal/observability"
	"github.com/trovehq/trove/internal/repository"
	"github.com/trovehq/trove/internal/service"
	"github.com/trovehq/trove/internal/workers"
	"github.com/trovehq/trove/pkg/cache"
	"github.com/trovehq/trove/pkg/database"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Initialize metrics (Prometheus exporter behind the OTel SDK). When
	// disabled, the meter stays nil and all metric constructors return nil,
	// which every call site treats as "skip recording".
	var (
		meterProvider  observability.MeterProviderShutdown
		metricsHandler http.Handler
		meter          metric.Meter
	)
	if cfg.MetricsEnabled {
		meterProvider, metricsHandler, meter, err = observability.NewMeterProvider(ctx, observability.MeterProviderConfig{})
		if err != nil {
			slog.Error("Failed to initialize metrics", "error", err)
			os.Exit(1)
		}
	}

	apiMetrics, err := observability.NewAPIMetrics(meter)
	if err != nil {
		slog.Error("Failed to create API metrics", "error", err)
		os.Exit(1)
	}
	embeddingMetrics, err := observability.NewEmbeddingMetrics(meter)
	if err != nil {
		slog.Error("Failed to create embedding metrics", "error", err)
		os.Exit(1)
	}
	cacheMetrics, err := observability.NewCacheMetrics(meter)
	if err != nil {
		slog.Error("Failed to create cache metrics", "error", err)
		os.Exit(1)
	}

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize embedding client; falls back to the deterministic local
	// embedder when no CLIP service is configured.
	var embeddingClient embeddings.Client
	if cfg.EmbeddingURL != "" {
		embeddingClient = embeddings.NewClipClient(embeddings.ClipClientOptions{
			BaseURL:     cfg.EmbeddingURL,
			RateLimiter: rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1),
			Metrics:     embeddingMetrics,
		})
		slog.Info("Visual matching enabled", "embedding_service", cfg.EmbeddingURL)
	} else {
		embeddingClient = embeddings.NewMockClient()
		slog.Info("Visual matching using local mock embedder (EMBEDDING_URL not set)")
	}

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	lostItemsRepo := repository.NewLostItemsRepository(db)
	foundItemsRepo := repository.NewFoundItemsRepository(db)
	embeddingsRepo := repository.NewItemEmbeddingsRepository(db)

	// Initialize River job queue if enabled
	var riverClient *river.Client[pgx.Tx]
	var jobInserter service.ItemEmbeddingInserter
	if cfg.RiverEnabled {
		riverClient, err = initRiver(ctx, db, cfg, embeddingClient, lostItemsRepo, foundItemsRepo, embeddingsRepo)
		if err != nil {
			slog.Error("Failed to initialize River job queue", "error", err)
			os.Exit(1)
		}
		jobInserter = jobs.NewRiverJobInserter(riverClient, embeddingMetrics)
		slog.Info("River job queue enabled",
			"workers", cfg.RiverWorkers,
			"max_retries", cfg.RiverMaxRetries,
			"rate_limit", cfg.EmbeddingRateLimit,
		)
	} else {
		slog.Info("River job queue disabled (RIVER_ENABLED=false), embedding items inline")
	}

	// Initialize services
	authService := service.NewAuthService(usersRepo, []byte(cfg.JWTSecret), cfg.JWTIssuer)
	lostItemsService := service.NewLostItemsServiceWithEmbeddings(lostItemsRepo, embeddingsRepo, embeddingClient, jobInserter)
	foundItemsService := service.NewFoundItemsServiceWithEmbeddings(foundItemsRepo, embeddingsRepo, embeddingClient, jobInserter)

	embeddingCache, err := cache.NewLoaderCache[uuid.UUID, []float32](
		cfg.EmbeddingCacheSize, func(id uuid.UUID) string { return id.String() })
	if err != nil {
		slog.Error("Failed to create embedding cache", "error", err)
		os.Exit(1)
	}
	matchService := service.NewMatchService(service.MatchServiceParams{
		LostItems:       lostItemsRepo,
		FoundItems:      foundItemsRepo,
		Index:           embeddingsRepo,
		EmbeddingClient: embeddingClient,
		EmbeddingCache:  embeddingCache,
		CacheMetrics:    cacheMetrics,
	})

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	lostItemsHandler := handlers.NewLostItemsHandler(lostItemsService)
	foundItemsHandler := handlers.NewFoundItemsHandler(foundItemsService)
	notificationsHandler := handlers.NewNotificationsHandler(matchService)

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)
	if metricsHandler != nil {
		publicMux.Handle("GET /metrics", metricsHandler)
	}
	publicMux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	publicMux.HandleFunc("POST /v1/auth/login", authHandler.Login)

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /v1/items/lost", lostItemsHandler.Create)
	protectedMux.HandleFunc("GET /v1/items/lost", lostItemsHandler.List)
	protectedMux.HandleFunc("PATCH /v1/items/lost/{id}", lostItemsHandler.UpdateStatus)
	protectedMux.HandleFunc("POST /v1/items/found", foundItemsHandler.Create)
	protectedMux.HandleFunc("GET /v1/items/found", foundItemsHandler.List)
	protectedMux.HandleFunc("GET /v1/notifications", notificationsHandler.List)

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(authService)(protectedHandler)

	// Combine both handlers. Auth routes are registered under /v1/ on the
	// main mux so they bypass the Auth middleware.
	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/auth/", publicMux)
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux)

	// Apply request-scoped middleware to all routes. Metrics sits outermost
	// so recorded durations cover the full request.
	var handler http.Handler = mainMux
	handler = middleware.MaxBody(cfg.MaxRequestBodyBytes, apiMetrics)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Metrics(apiMetrics)(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Stop River (waits for in-flight jobs to complete)
	if riverClient != nil {
		slog.Info("Stopping River job queue...")
		if err := riverClient.Stop(shutdownCtx); err != nil {
			slog.Error("River forced to shutdown", "error", err)
		}
		slog.Info("River job queue stopped")
	}

	// 3. Flush and shut down the meter provider
	if meterProvider != nil {
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			slog.Error("Meter provider forced to shutdown", "error", err)
		}
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := observability.NewTraceContextHandler(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(slog.New(handler))
}

// initRiver initializes the River job queue client and workers
func initRiver(
	ctx context.Context,
	db *pgxpool.Pool,
	cfg *config.Config,
	embeddingClient embeddings.Client,
	lostItemsRepo *repository.LostItemsRepository,
	foundItemsRepo *repository.FoundItemsRepository,
	embeddingsRepo *repository.ItemEmbeddingsRepository,
) (*river.Client[pgx.Tx], error) {
	// Rate limiter shared by all embedding jobs
	rateLimiter := rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)

	embeddingWorker := workers.NewItemEmbeddingWorker(workers.ItemEmbeddingWorkerDeps{
		LostItems:       lostItemsRepo,
		FoundItems:      foundItemsRepo,
		EmbeddingClient: embeddingClient,
		Index:           embeddingsRepo,
		RateLimiter:     rateLimiter,
	})

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, embeddingWorker)

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			service.EmbeddingsQueueName: {MaxWorkers: cfg.RiverWorkers},
		},
		Workers:      riverWorkers,
		ErrorHandler: &jobs.ErrorHandler{},
		JobTimeout:   60 * time.Second,
		MaxAttempts:  cfg.RiverMaxRetries,
	})
	if err != nil {
		return nil, err
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, err
	}

	return riverClient, nil
}
