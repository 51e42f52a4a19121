package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := NewSQLiteCache(path, zaptest.NewLogger(t), 0)
	require.NoError(t, err)

	_, err = cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	entry := testEntry("k1", time.Now().Add(time.Hour).Truncate(time.Second))
	require.NoError(t, cache.Set(ctx, entry))

	got, err := cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, entry.Verdict, got.Verdict)
	assert.Equal(t, entry.ModelUsed, got.ModelUsed)
	assert.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))

	// Set replaces an existing key
	entry.Verdict.ContainsKeywords = false
	entry.Verdict.MatchedKeywords = nil
	require.NoError(t, cache.Set(ctx, entry))
	got, err = cache.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, got.Verdict.ContainsKeywords)
	assert.Equal(t, []string{}, got.Verdict.MatchedKeywords)

	require.NoError(t, cache.Delete(ctx, "k1"))
	_, err = cache.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cache.Close())
}

func TestSQLiteCacheExpiryAndCleanup(t *testing.T) {
	ctx := context.Background()
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zaptest.NewLogger(t), 0)
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, testEntry("old", time.Now().Add(-time.Hour))))
	require.NoError(t, cache.Set(ctx, testEntry("fresh", time.Now().Add(time.Hour))))

	_, err = cache.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	require.NoError(t, cache.Cleanup(ctx))

	var count int
	require.NoError(t, cache.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verdict_cache`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteCachePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	logger := zaptest.NewLogger(t)

	first, err := NewSQLiteCache(path, logger, 0)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, testEntry("k", time.Now().Add(time.Hour))))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(path, logger, time.Hour)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []string{"商业秘密"}, got.Verdict.MatchedKeywords)
}
