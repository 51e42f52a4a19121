package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/keyword-tagger/internal/config"
)

func TestNewConfigLoggingOptions(t *testing.T) {
	cfg, err := newConfig(Options{
		Overrides: map[string]interface{}{"llm.provider": "gemini"},
		Verbose:   true,
		JSONLog:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.GetString("llm.provider"))
	assert.Equal(t, "debug", cfg.GetString("logging.level"))
	assert.Equal(t, "json", cfg.GetString("logging.format"))
}

func TestContainersShareLoggingOptions(t *testing.T) {
	opts := Options{Verbose: true}

	batch, err := BuildContainer(opts)
	require.NoError(t, err)
	require.NoError(t, batch.Invoke(func(cfg *config.Config, logger *zap.Logger) {
		assert.Equal(t, "debug", cfg.GetString("logging.level"))
		assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	}))

	cli, err := BuildCLIContainer(opts)
	require.NoError(t, err)
	require.NoError(t, cli.Invoke(func(cfg *config.Config, logger *zap.Logger) {
		assert.Equal(t, "debug", cfg.GetString("logging.level"))
		assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	}))
}
