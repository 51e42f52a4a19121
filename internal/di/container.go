package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/keyword-tagger/internal/adapters/workbook"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/factory"
	"github.com/mikey/keyword-tagger/internal/logging"
	"github.com/mikey/keyword-tagger/internal/metrics"
	"github.com/mikey/keyword-tagger/internal/pipeline"
	"github.com/mikey/keyword-tagger/internal/ports"
	"github.com/mikey/keyword-tagger/internal/utils"
)

// Options carries command line settings into a container
type Options struct {
	ConfigFile string
	// Overrides are applied over the file and environment configuration
	Overrides map[string]interface{}
	// Verbose and JSONLog override logging.level and logging.format
	Verbose bool
	JSONLog bool
}

// BuildContainer creates and configures the container for the batch job
func BuildContainer(opts Options) (*dig.Container, error) {
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

	// Register factories only the batch job needs
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}

	// Register cache repository, nil when caching is disabled
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register run notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (ports.RunNotifier, error) {
		return f.CreateRunNotifier()
	}); err != nil {
		return nil, err
	}

	// Register verdict service
	if err := container.Provide(func(
		cfg *config.Config,
		llmClient core.LLMClient,
		cacheRepo core.CacheRepository,
		logger *zap.Logger,
		textProcessor *utils.TextProcessor,
	) (*core.VerdictService, error) {
		llmCfg, err := cfg.GetLLM()
		if err != nil {
			return nil, err
		}
		cacheCfg, err := cfg.GetCache()
		if err != nil {
			return nil, err
		}
		return core.NewVerdictService(
			llmClient,
			cacheRepo,
			logger,
			textProcessor,
			cacheCfg.Enabled,
			cacheCfg.TTL,
			llmCfg.Timeout,
			llmCfg.MaxTextSize,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register workbook access
	if err := container.Provide(workbook.NewStore); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *workbook.Store) ports.WorkbookStore { return s }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) (config.PipelineConfig, error) {
		return cfg.GetPipeline()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		store *workbook.Store,
		textProcessor *utils.TextProcessor,
		pipelineCfg config.PipelineConfig,
		logger *zap.Logger,
	) ports.KeywordLoader {
		return workbook.NewKeywordLoader(store, textProcessor, pipelineCfg.KeywordColumn, logger)
	}); err != nil {
		return nil, err
	}

	// Register metrics recorder
	if err := container.Provide(metrics.NewRecorder); err != nil {
		return nil, err
	}

	// Register pipeline driver
	if err := container.Provide(func(
		service *core.VerdictService,
		store ports.WorkbookStore,
		loader ports.KeywordLoader,
		recorder *metrics.Recorder,
		pipelineCfg config.PipelineConfig,
		logger *zap.Logger,
	) *pipeline.Driver {
		return pipeline.NewDriver(service, store, loader, recorder, pipelineCfg, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers what both commands share
func provideCommon(container *dig.Container) error {
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register LLM client
	return container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	})
}

// newConfig loads the configuration and applies command line overrides
func newConfig(opts Options) (*config.Config, error) {
	cfg, err := config.New(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	v := cfg.GetViper()
	for key, value := range opts.Overrides {
		v.Set(key, value)
	}
	if opts.Verbose {
		v.Set("logging.level", "debug")
	}
	if opts.JSONLog {
		v.Set("logging.format", "json")
	}
	return cfg, nil
}
