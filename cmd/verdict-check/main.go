package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/keyword-tagger/internal/core"
	"github.com/mikey/keyword-tagger/internal/di"
	"github.com/mikey/keyword-tagger/internal/utils"
)

var (
	configFile string
	inputFile  string
	keywords   []string
	provider   string
	stream     bool
	jsonOutput bool
	verbose    bool
	jsonLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "verdict-check",
	Short: "Check one text against a keyword list",
	Long: `verdict-check sends a single text to the configured LLM and prints whether
it mentions any of the given keywords, together with the model's reasoning.

The text is read from --file, or from stdin when no file is given.`,
	Example:       `  echo "本周会议讨论了商业秘密" | verdict-check -k 商业秘密 -k 保密协议`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to config file")
	flags.StringVarP(&inputFile, "file", "f", "", "Input text file (use stdin if not specified)")
	flags.StringSliceVarP(&keywords, "keywords", "k", nil, "Keywords to look for")
	flags.StringVar(&provider, "provider", "", "LLM provider (openai, gemini, bedrock)")
	flags.BoolVar(&stream, "stream", false, "Use streaming mode")
	flags.BoolVar(&jsonOutput, "json", false, "Print the verdict as JSON")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")
	_ = rootCmd.MarkFlagRequired("keywords")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "verdict-check: %v\n", err)
		os.Exit(1)
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides := make(map[string]interface{})
	if provider != "" {
		overrides["llm.provider"] = provider
	}
	if cmd.Flags().Changed("stream") {
		for _, key := range []string{"openai.stream", "gemini.stream", "bedrock.stream"} {
			overrides[key] = stream
		}
	}

	container, err := di.BuildCLIContainer(di.Options{
		ConfigFile: configFile,
		Overrides:  overrides,
		Verbose:    verbose,
		JSONLog:    jsonLog,
	})
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(
		logger *zap.Logger,
		service *core.VerdictService,
		llmClient core.LLMClient,
		textProcessor *utils.TextProcessor,
	) error {
		defer logger.Sync()
		defer func() {
			if closer, ok := llmClient.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					logger.Error("Failed to close LLM client", zap.Error(err))
				}
			}
		}()

		keywordList := normalizeKeywords(textProcessor, keywords)
		if len(keywordList) == 0 {
			return fmt.Errorf("no usable keywords given")
		}

		text, err := readInput(logger)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("input text is empty")
		}

		start := time.Now()
		result, err := service.Check(ctx, keywordList, text)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printResult(cmd.OutOrStdout(), keywordList, text, result, time.Since(start))
		return nil
	})
}

func normalizeKeywords(tp *utils.TextProcessor, raw []string) []string {
	var out []string
	for _, k := range raw {
		if k = tp.NormalizeKeyword(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func readInput(logger *zap.Logger) (string, error) {
	var r io.Reader = os.Stdin
	if inputFile != "" {
		file, err := os.Open(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		r = file
		logger.Info("Reading text from file", zap.String("file", inputFile))
	} else {
		logger.Info("Reading text from stdin")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, result *core.CheckResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(result.Verdict)
}

func printResult(w io.Writer, keywordList []string, text string, result *core.CheckResult, elapsed time.Duration) {
	fmt.Fprintf(w, "\n=== Input ===\n")
	fmt.Fprintf(w, "Keywords: %s\n", strings.Join(keywordList, ", "))
	fmt.Fprintf(w, "Text length: %d bytes\n", len(text))

	fmt.Fprintf(w, "\n=== Verdict ===\n")
	fmt.Fprintf(w, "Contains keywords: %t\n", result.Verdict.ContainsKeywords)
	if len(result.Verdict.MatchedKeywords) > 0 {
		fmt.Fprintf(w, "Matched: %s\n", strings.Join(result.Verdict.MatchedKeywords, ", "))
	}
	fmt.Fprintf(w, "Reasoning: %s\n", result.Verdict.Reasoning)
	fmt.Fprintf(w, "Cell value: %s\n", result.Verdict.Format())
	fmt.Fprintf(w, "Model used: %s\n", result.ModelUsed)
	fmt.Fprintf(w, "Processing time: %v\n", elapsed)
}
