package factory

import (
	"fmt"

	"github.com/mikey/keyword-tagger/internal/adapters/openai"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"go.uber.org/zap"
)

// OpenAIFactory creates clients for OpenAI-compatible endpoints
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an OpenAI LLM client
func (f *OpenAIFactory) CreateLLMClient() (core.LLMClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set %s or %s_OPENAI_API_KEY",
			config.ErrMissingCredential, config.DashScopeKeyEnv, config.EnvPrefix)
	}

	f.logger.Info("Using OpenAI-compatible endpoint",
		zap.String("base_url", openaiCfg.BaseURL),
		zap.String("model", openaiCfg.ModelName),
		zap.Bool("stream", openaiCfg.Stream))
	return openai.NewOpenAIClient(openaiCfg, f.logger), nil
}
