package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/keyword-tagger/internal/core"
	"go.uber.org/zap"
)

// sqlCache holds the statements shared by the SQLite and MySQL caches.
// Timestamps are stored as unix seconds so both dialects compare them the same way.
type sqlCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
}

func newSQLCache(db *sql.DB, logger *zap.Logger, cleanupFreq time.Duration) *sqlCache {
	c := &sqlCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go c.startCleanupTask()
	} else {
		close(c.done)
	}
	return c
}

// Get retrieves a cached entry by key
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var (
		entry              core.CacheEntry
		matched            string
		createdAt, expires int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT cache_key, contains_keywords, reasoning, matched_keywords, model_used, created_at, expires_at
		FROM verdict_cache
		WHERE cache_key = ?
	`, key).Scan(&entry.Key, &entry.Verdict.ContainsKeywords, &entry.Verdict.Reasoning, &matched,
		&entry.ModelUsed, &createdAt, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.ExpiresAt = time.Unix(expires, 0)
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}

	if err := json.Unmarshal([]byte(matched), &entry.Verdict.MatchedKeywords); err != nil {
		return nil, fmt.Errorf("failed to decode matched keywords: %w", err)
	}
	if entry.Verdict.MatchedKeywords == nil {
		entry.Verdict.MatchedKeywords = []string{}
	}

	return &entry, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	matched := entry.Verdict.MatchedKeywords
	if matched == nil {
		matched = []string{}
	}
	encoded, err := json.Marshal(matched)
	if err != nil {
		return fmt.Errorf("failed to encode matched keywords: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		REPLACE INTO verdict_cache (cache_key, contains_keywords, reasoning, matched_keywords, model_used, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.Key, entry.Verdict.ContainsKeywords, entry.Verdict.Reasoning, string(encoded),
		entry.ModelUsed, entry.CreatedAt.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM verdict_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM verdict_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

func (c *sqlCache) startCleanupTask() {
	defer close(c.done)
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Close stops the cleanup task and closes the database connection
func (c *sqlCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	<-c.done
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	return nil
}
