package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/di"
	"github.com/mikey/keyword-tagger/internal/metrics"
	"github.com/mikey/keyword-tagger/internal/pipeline"
	"github.com/mikey/keyword-tagger/internal/ports"
)

var (
	configFile string
	verbose    bool
	jsonLog    bool
)

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string][]string{
	"input-dir":     {"pipeline.input_dir"},
	"data-dir":      {"pipeline.data_dir"},
	"provider":      {"llm.provider"},
	"stream":        {"openai.stream", "gemini.stream", "bedrock.stream"},
	"keyword-sheet": {"pipeline.keyword_sheets"},
	"input-sheet":   {"pipeline.input_sheets"},
	"max-retries":   {"pipeline.max_retries"},
	"metrics-file":  {"metrics.textfile_path"},
}

var rootCmd = &cobra.Command{
	Use:   "keyword-tagger",
	Short: "Annotate spreadsheet rows with LLM keyword verdicts",
	Long: `keyword-tagger reads keyword lists from the workbooks in the data directory,
asks the configured LLM whether each row of the input workbooks mentions any of
them, and writes the verdict into the column next to the subject text.

Every sheet is saved in place once all of its rows are processed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBatch,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to config file")
	flags.String("input-dir", "", "Directory of workbooks to annotate")
	flags.String("data-dir", "", "Directory of keyword workbooks")
	flags.String("provider", "", "LLM provider (openai, gemini, bedrock)")
	flags.Bool("stream", false, "Use streaming mode for LLM calls")
	flags.StringSlice("keyword-sheet", nil, "Only process these keyword sets")
	flags.StringSlice("input-sheet", nil, "Only annotate these input sheets")
	flags.Int("max-retries", 0, "Retries per row after a failed service call")
	flags.String("metrics-file", "", "Write run metrics to this textfile")
	flags.Bool("no-cache", false, "Disable the verdict cache")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "keyword-tagger: %v\n", err)
		os.Exit(1)
	}
}

// overrides collects the flags set on the command line
func overrides(cmd *cobra.Command) map[string]interface{} {
	flags := cmd.Flags()
	o := make(map[string]interface{})

	for name, keys := range flagKeys {
		if !flags.Changed(name) {
			continue
		}
		var value interface{}
		switch flags.Lookup(name).Value.Type() {
		case "bool":
			value, _ = flags.GetBool(name)
		case "int":
			value, _ = flags.GetInt(name)
		case "stringSlice":
			value, _ = flags.GetStringSlice(name)
		default:
			value, _ = flags.GetString(name)
		}
		for _, key := range keys {
			o[key] = value
		}
	}

	if noCache, _ := flags.GetBool("no-cache"); noCache {
		o["cache.enabled"] = false
	}
	return o
}

type batchDeps struct {
	dig.In

	Config    *config.Config
	Logger    *zap.Logger
	Driver    *pipeline.Driver
	Notifier  ports.RunNotifier
	Recorder  *metrics.Recorder
	LLMClient core.LLMClient
	Cache     core.CacheRepository
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.BuildContainer(di.Options{
		ConfigFile: configFile,
		Overrides:  overrides(cmd),
		Verbose:    verbose,
		JSONLog:    jsonLog,
	})
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(deps batchDeps) error {
		return run(ctx, deps)
	})
}

// run executes one batch and reports on it
func run(ctx context.Context, deps batchDeps) (err error) {
	logger := deps.Logger
	defer logger.Sync()
	defer func() {
		err = multierr.Append(err, closeResources(deps.LLMClient, deps.Cache))
	}()

	summary, runErr := deps.Driver.Run(ctx)
	if runErr != nil {
		logger.Error("Run stopped", zap.Error(runErr))
	}

	// The run context may already be cancelled
	notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if notifyErr := deps.Notifier.Notify(notifyCtx, summary); notifyErr != nil {
		logger.Error("Failed to send run report", zap.Error(notifyErr))
	}

	if path := deps.Config.GetMetrics().TextfilePath; path != "" {
		if metricsErr := deps.Recorder.WriteTextfile(path); metricsErr != nil {
			logger.Error("Failed to export metrics", zap.Error(metricsErr))
		}
	}

	return runErr
}

// closeResources closes the client and cache when they hold resources
func closeResources(resources ...interface{}) error {
	var err error
	for _, r := range resources {
		if closer, ok := r.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}
