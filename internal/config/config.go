package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/docqa/docqa-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Root directory with one subdirectory per tenant
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Tenant used when requests carry no X-Tenant-ID header
	DefaultTenant string `env:"DEFAULT_TENANT" envDefault:"default"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Pipeline configuration
	ChunkingCfg  ChunkingConfig  `envPrefix:"CHUNK_"`
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`

	// Provider configurations
	OpenAICfg     ProviderConfig `envPrefix:"OPENAI_"`
	OpenRouterCfg ProviderConfig `envPrefix:"OPENROUTER_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// ChunkingConfig controls how documents are split before embedding.
type ChunkingConfig struct {
	Size    int `env:"SIZE" envDefault:"500"`
	Overlap int `env:"OVERLAP" envDefault:"50"`
}

// EmbeddingConfig configures the embedding backend shared by all tenants.
type EmbeddingConfig struct {
	HTTPClientConfig
	Model     string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	Dimension int                  `env:"DIMENSION" envDefault:"1536"`
	Endpoint  string               `env:"ENDPOINT" envDefault:"/embeddings"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// ProviderConfig configures one chat-completion backend.
type ProviderConfig struct {
	HTTPClientConfig
	Endpoint string               `env:"ENDPOINT" envDefault:"/chat/completions"`
	AppName  string               `env:"APP_NAME"`
	Referer  string               `env:"REFERER"`
	Retry    pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string        `env:"BOT_TOKEN,notEmpty"`
	UpdateTimeout   int           `env:"UPDATE_TIMEOUT" envDefault:"30"`
	TenantID        string        `env:"TENANT_ID" envDefault:"default"`
	HistoryWindow   int           `env:"HISTORY_WINDOW" envDefault:"10"`
	HistoryTTL      time.Duration `env:"HISTORY_TTL" envDefault:"1h"`
	ShutdownTimeout int           `env:"SHUTDOWN_TIMEOUT" envDefault:"10"` // seconds
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"API_KEY"`
	Url                   string        `env:"BASE_URL"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.ChunkingCfg.Size < 1 {
		errors = append(errors, fmt.Sprintf("CHUNK_SIZE must be positive, got %d", cfg.ChunkingCfg.Size))
	}

	if cfg.ChunkingCfg.Overlap < 0 || cfg.ChunkingCfg.Overlap >= cfg.ChunkingCfg.Size {
		errors = append(errors, fmt.Sprintf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", cfg.ChunkingCfg.Overlap))
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingCfg.Dimension))
	}

	if !cfg.EnableMocks && cfg.EmbeddingCfg.Url == "" {
		errors = append(errors, "EMBEDDING_BASE_URL is required when mocks are disabled")
	}

	if cfg.TelegramCfg.HistoryWindow < 1 || cfg.TelegramCfg.HistoryWindow > 100 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_HISTORY_WINDOW must be between 1 and 100, got %d", cfg.TelegramCfg.HistoryWindow))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
