package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	var cfg TenantConfig
	cfg.Normalize()

	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.7, *cfg.Temperature)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 0.5, cfg.RAGThreshold)
}

func TestNormalizeKeepsExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	cfg := TenantConfig{Provider: ProviderMock, Temperature: &zero}
	cfg.Normalize()

	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.0, *cfg.Temperature)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsTemperatureOutOfRange(t *testing.T) {
	cfg := TenantConfig{Provider: ProviderMock}
	cfg.Normalize()
	bad := 2.5
	cfg.Temperature = &bad

	require.ErrorIs(t, cfg.Validate(), ErrInvalidTenantConfig)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := TenantConfig{Provider: "nope"}
	cfg.Normalize()

	require.ErrorIs(t, cfg.Validate(), ErrUnknownProvider)
}
