package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	cfg := &Config{
		ServerAddr:  ":8080",
		DatabaseURL: "postgres://localhost/docqa",
		DBMaxConns:  25,
		DBMinConns:  5,
		EnableMocks: true,
	}
	cfg.ChunkingCfg.Size = 500
	cfg.ChunkingCfg.Overlap = 50
	cfg.EmbeddingCfg.Dimension = 1536
	cfg.TelegramCfg.HistoryWindow = 10
	cfg.TelegramCfg.ShutdownTimeout = 10
	return cfg
}

func TestValidateConfigAccepts(t *testing.T) {
	require.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfigReportsAllFailures(t *testing.T) {
	cfg := validTestConfig()
	cfg.ChunkingCfg.Size = 0
	cfg.EmbeddingCfg.Dimension = -1
	cfg.TelegramCfg.HistoryWindow = 0

	err := validateConfig(cfg)
	require.Error(t, err)

	// Every failure shows up in one error, not just the first.
	assert.Contains(t, err.Error(), "CHUNK_SIZE")
	assert.Contains(t, err.Error(), "EMBEDDING_DIMENSION")
	assert.Contains(t, err.Error(), "TELEGRAM_HISTORY_WINDOW")
}

func TestValidateConfigRequiresEmbeddingURLWithoutMocks(t *testing.T) {
	cfg := validTestConfig()
	cfg.EnableMocks = false
	cfg.EmbeddingCfg.Url = ""

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMBEDDING_BASE_URL")
}
