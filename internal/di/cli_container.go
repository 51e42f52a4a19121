package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/logging"
	"github.com/mikey/keyword-tagger/internal/utils"
)

// BuildCLIContainer creates the container for the single-text checker.
// It has no cache.
func BuildCLIContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() Options { return opts }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(newConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register verdict service with no cache
	if err := container.Provide(func(
		cfg *config.Config,
		llmClient core.LLMClient,
		logger *zap.Logger,
		textProcessor *utils.TextProcessor,
	) (*core.VerdictService, error) {
		llmCfg, err := cfg.GetLLM()
		if err != nil {
			return nil, err
		}
		return core.NewVerdictService(
			llmClient,
			nil, // No cache for CLI
			logger,
			textProcessor,
			false,
			0,
			llmCfg.Timeout,
			llmCfg.MaxTextSize,
		), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
