package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/keyword-tagger/internal/utils"
	"go.uber.org/zap"
)

// VerdictService is the core service for keyword verdicts
type VerdictService struct {
	llmClient     LLMClient
	cache         CacheRepository
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	cacheEnabled  bool
	cacheTTL      time.Duration
	timeout       time.Duration
	maxTextSize   int
}

// NewVerdictService creates a new verdict service
func NewVerdictService(
	llmClient LLMClient,
	cache CacheRepository,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	cacheEnabled bool,
	cacheTTL time.Duration,
	timeout time.Duration,
	maxTextSize int,
) *VerdictService {
	return &VerdictService{
		llmClient:     llmClient,
		cache:         cache,
		logger:        logger,
		textProcessor: textProcessor,
		cacheEnabled:  cacheEnabled && cache != nil,
		cacheTTL:      cacheTTL,
		timeout:       timeout,
		maxTextSize:   maxTextSize,
	}
}

// Model returns the model used by the underlying client
func (s *VerdictService) Model() string {
	return s.llmClient.Model()
}

// CacheKey derives the cache key for a model, keyword list and text
func CacheKey(model string, keywords []string, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(keywords, "\x1f")))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Check asks the model whether text mentions any of keywords
func (s *VerdictService) Check(ctx context.Context, keywords []string, text string) (*CheckResult, error) {
	processed := s.textProcessor.ProcessText(text, s.maxTextSize)

	key := CacheKey(s.llmClient.Model(), keywords, processed)
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, key); err == nil {
			s.logger.Debug("Cache hit for text", zap.String("key", key[:12]))
			return &CheckResult{
				Verdict:   entry.Verdict,
				ModelUsed: entry.ModelUsed,
				FromCache: true,
				CheckedAt: time.Now(),
			}, nil
		}
	}

	prompt := BuildPrompt(keywords, processed)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.llmClient.Invoke(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("verdict service call failed: %w", err)
	}

	verdict := ParseVerdict(raw)
	if extra := verdict.UnmatchedKeywords(keywords); len(extra) > 0 {
		s.logger.Warn("Model returned keywords outside the list", zap.Strings("keywords", extra))
	}

	result := &CheckResult{
		Verdict:     verdict,
		RawResponse: raw,
		ModelUsed:   s.llmClient.Model(),
		CheckedAt:   time.Now(),
	}

	if s.cacheEnabled {
		entry := &CacheEntry{
			Key:       key,
			Verdict:   verdict,
			ModelUsed: result.ModelUsed,
			CreatedAt: result.CheckedAt,
			ExpiresAt: result.CheckedAt.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return result, nil
}
