package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docuchat/chat-backend/internal/api"
	chatapi "github.com/docuchat/chat-backend/internal/api/chat"
	speechapi "github.com/docuchat/chat-backend/internal/api/speech"
	"github.com/docuchat/chat-backend/internal/config"
	"github.com/docuchat/chat-backend/internal/integration/asr"
	"github.com/docuchat/chat-backend/internal/integration/generation"
	"github.com/docuchat/chat-backend/internal/integration/retrieval"
	"github.com/docuchat/chat-backend/internal/pkg/validator"
	"github.com/docuchat/chat-backend/internal/repository"
	chatuc "github.com/docuchat/chat-backend/internal/usecase/chat"
	speechuc "github.com/docuchat/chat-backend/internal/usecase/speech"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	sessionRepo := repository.NewSessionPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var retrievalConnector chatuc.RetrievalConnector
	var generationConnector chatuc.GenerationConnector
	var asrConnector speechuc.ASRConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		retrievalConnector = retrieval.NewMockConnector(logger)
		generationConnector = generation.NewMockConnector(logger)
		asrConnector = asr.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		realRetrieval := retrieval.NewConnector(cfg.RetrievalCfg, logger)
		probeRetrievalHealth(ctx, cfg, realRetrieval, logger)

		retrievalConnector = realRetrieval
		generationConnector = generation.NewConnector(cfg.GenerationCfg, logger)
		asrConnector = asr.NewConnector(cfg.GenerationCfg, logger)
	}

	// Initialize validators
	reqValidator := validator.New(cfg.MaxAudioFileSize)
	logger.Info("Validators initialized")

	// Initialize use cases
	chatUC := chatuc.NewUsecase(sessionRepo, retrievalConnector, generationConnector, logger)
	speechUC := speechuc.NewUsecase(asrConnector, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC, reqValidator)
	speechHandler := speechapi.NewHandler(speechUC, reqValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, speechHandler, cfg.JWTSecret, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// probeRetrievalHealth checks the retrieval service at startup. A failing
// probe is logged, not fatal: retrieval degrades gracefully at request time,
// and an unset URL is surfaced per request as a configuration error.
func probeRetrievalHealth(ctx context.Context, cfg *config.Config, conn *retrieval.Connector, logger *zap.Logger) {
	if cfg.RetrievalCfg.ServiceURL == "" {
		logger.Warn("Retrieval service URL is not configured; RAG queries will fail with a configuration error")
		return
	}

	err := retry.Do(func() error {
		health, err := conn.Health(ctx)
		if err != nil {
			return err
		}

		logger.Info("Retrieval service is healthy",
			zap.String("embedding_model_type", health.EmbeddingModelType),
			zap.String("embedding_model_name", health.EmbeddingModelName),
			zap.Bool("default_index_loaded", health.DefaultIndexLoaded),
		)
		return nil
	}, append(cfg.RetrievalCfg.Retry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		logger.Warn("Retrieval service is not reachable; chat turns will proceed without retrieved context", zap.Error(err))
	}
}
