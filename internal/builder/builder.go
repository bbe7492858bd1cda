package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/docqa/docqa-backend/internal/api"
	chatapi "github.com/docqa/docqa-backend/internal/api/chat"
	documentapi "github.com/docqa/docqa-backend/internal/api/document"
	tenantapi "github.com/docqa/docqa-backend/internal/api/tenant"
	"github.com/docqa/docqa-backend/internal/config"
	"github.com/docqa/docqa-backend/internal/entity"
	"github.com/docqa/docqa-backend/internal/integration/embedding"
	"github.com/docqa/docqa-backend/internal/integration/llm"
	"github.com/docqa/docqa-backend/internal/rag/generator"
	"github.com/docqa/docqa-backend/internal/repository"
	"github.com/docqa/docqa-backend/internal/telegram/bot"
	"github.com/docqa/docqa-backend/internal/tenant"
	"github.com/docqa/docqa-backend/internal/usecase/chat"
	"github.com/docqa/docqa-backend/internal/usecase/document"
	"github.com/docqa/docqa-backend/internal/usecase/tenantadmin"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Repositories
	tenantRepo := repository.NewTenantConfigPostgres(db)
	ingestionRepo := repository.NewIngestionPostgres(db)
	logger.Info("Repositories initialized")

	// Pipeline manager with shared embedding backend and per-tenant LLMs
	manager := setupManager(cfg, tenantRepo, logger)
	logger.Info("Tenant pipeline manager initialized")

	// Use cases
	chatUC := chat.NewUsecase(manager, logger)
	documentUC := document.NewUsecase(manager, ingestionRepo, logger)
	tenantUC := tenantadmin.NewUsecase(manager, tenantRepo, logger)
	logger.Info("Use cases initialized")

	// API handlers
	chatHandler := chatapi.NewHandler(chatUC)
	documentHandler := documentapi.NewHandler(documentUC)
	tenantHandler := tenantapi.NewHandler(tenantUC)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(chatHandler, documentHandler, tenantHandler, cfg.DefaultTenant, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
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

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (*bot.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
		zap.String("tenant_id", cfg.TelegramCfg.TenantID),
	)

	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup database: %w", err)
	}

	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	tenantRepo := repository.NewTenantConfigPostgres(db)
	manager := setupManager(cfg, tenantRepo, logger)

	chatUC := chat.NewUsecase(manager, logger)
	tenantUC := tenantadmin.NewUsecase(manager, tenantRepo, logger)

	b, err := bot.New(&cfg.TelegramCfg, chatUC, tenantUC, logger)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully")
	return b, logger, nil
}

// setupManager wires the embedding backend and LLM factory into the tenant
// pipeline manager.
func setupManager(cfg *config.Config, configs tenant.ConfigSource, logger *zap.Logger) *tenant.Manager {
	var embedder tenant.Embedder
	if cfg.EnableMocks {
		logger.Info("Using mock embedding backend")
		embedder = embedding.NewMockConnector(logger)
	} else {
		embedder = embedding.NewConnector(cfg.EmbeddingCfg, logger)
	}

	newLLM := func(tenantCfg entity.TenantConfig) (generator.LLM, error) {
		return llm.New(cfg, tenantCfg, logger)
	}

	return tenant.NewManager(cfg.DataDir, cfg.ChunkingCfg, configs, embedder, newLLM, logger)
}
