package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func testEntry(key string, expiresAt time.Time) *core.CacheEntry {
	return &core.CacheEntry{
		Key: key,
		Verdict: core.Verdict{
			ContainsKeywords: true,
			Reasoning:        "第二段明确提到'商业秘密'",
			MatchedKeywords:  []string{"商业秘密"},
		},
		ModelUsed: "qwen-max",
		CreatedAt: expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zaptest.NewLogger(t), 0)
	defer cache.Close()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	entry := testEntry("k1", time.Now().Add(time.Hour))
	require.NoError(t, cache.Set(ctx, entry))

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry.Verdict, got.Verdict)
	assert.Equal(t, "qwen-max", got.ModelUsed)

	// callers get copies
	got.ModelUsed = "changed"
	again, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "qwen-max", again.ModelUsed)

	require.NoError(t, cache.Delete(ctx, "k1"))
	_, err = cache.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zaptest.NewLogger(t), 0)
	defer cache.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, testEntry("old", now.Add(-time.Minute))))
	require.NoError(t, cache.Set(ctx, testEntry("fresh", now.Add(time.Minute))))

	_, err := cache.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, cache.Cleanup(ctx))
	assert.Equal(t, 1, cache.Len())

	_, err = cache.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryCacheCloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t)

	cache := NewMemoryCache(zaptest.NewLogger(t), 5*time.Millisecond)
	require.NoError(t, cache.Set(context.Background(), testEntry("k", time.Now().Add(-time.Second))))

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}
