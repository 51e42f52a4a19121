package factory

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/mikey/keyword-tagger/internal/adapters/cache"
	"github.com/mikey/keyword-tagger/internal/adapters/notify"
	"github.com/mikey/keyword-tagger/internal/adapters/openai"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(settings map[string]interface{}) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range settings {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestLLMFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("openai", func(t *testing.T) {
		client, err := NewLLMFactory(testConfig(map[string]interface{}{"openai.api_key": "sk-test"}), logger).CreateLLMClient()
		require.NoError(t, err)
		assert.IsType(t, &openai.OpenAIClient{}, client)
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := NewLLMFactory(testConfig(nil), logger).CreateLLMClient()
		assert.ErrorIs(t, err, config.ErrMissingCredential)
	})

	t.Run("gemini without key", func(t *testing.T) {
		_, err := NewLLMFactory(testConfig(map[string]interface{}{"llm.provider": "gemini"}), logger).CreateLLMClient()
		assert.ErrorIs(t, err, config.ErrMissingCredential)
	})

	t.Run("unsupported provider", func(t *testing.T) {
		_, err := NewLLMFactory(testConfig(map[string]interface{}{"llm.provider": "ollama"}), logger).CreateLLMClient()
		assert.EqualError(t, err, "unsupported LLM provider: ollama")
	})
}

func TestCacheFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	repo, err := NewCacheFactory(testConfig(map[string]interface{}{"cache.enabled": false}), logger).CreateCacheRepository()
	require.NoError(t, err)
	assert.Nil(t, repo)

	repo, err = NewCacheFactory(testConfig(map[string]interface{}{
		"cache.enabled": true,
		"cache.type":    "memory",
	}), logger).CreateCacheRepository()
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, repo)
	require.NoError(t, repo.(io.Closer).Close())

	repo, err = NewCacheFactory(testConfig(map[string]interface{}{
		"cache.enabled":     true,
		"cache.type":        "sqlite",
		"cache.sqlite_path": filepath.Join(t.TempDir(), "nested", "cache.db"),
	}), logger).CreateCacheRepository()
	require.NoError(t, err)
	require.NoError(t, repo.(io.Closer).Close())

	_, err = NewCacheFactory(testConfig(map[string]interface{}{
		"cache.enabled": true,
		"cache.type":    "redis",
	}), logger).CreateCacheRepository()
	assert.EqualError(t, err, "unsupported cache type: redis")
}

func TestNotifierFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	n, err := NewNotifierFactory(testConfig(map[string]interface{}{"notify.enabled": false}), logger).CreateRunNotifier()
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n)
}
