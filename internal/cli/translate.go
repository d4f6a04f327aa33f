package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/veilcut/veilcut/internal/subtitle"
	"github.com/veilcut/veilcut/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate an SRT file to another language using AI",
	Long: `Translate an existing SRT file to another language using AI.

The original text is preserved; the translation is what gets written
out and burned in on export. Entries the provider fails to translate
keep their original text.

Examples:
  veilcut translate video.srt --target-language japanese
  veilcut translate video.srt -t spanish --provider openai -o translated.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		StringP("language", "l", "", "Input language (optional, helps the model)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (provider default if empty)")
	translateCmd.Flags().
		String("provider", "", "Translation provider: gemini, openai, anthropic (default from config)")
	translateCmd.Flags().
		Int("concurrency", 0, "Number of parallel translation workers (default from config)")
	translateCmd.Flags().
		Int("batch-size", 0, "Number of subtitle entries per API request (default from config)")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	targetLang, _ := cmd.Flags().GetString("target-language")
	inputLang, _ := cmd.Flags().GetString("language")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	if providerStr == "" {
		providerStr = cfg.Translate.Provider
	}
	if model == "" {
		model = cfg.Translate.Model
	}
	if concurrency <= 0 {
		concurrency = cfg.Translate.Concurrency
	}
	if batchSize <= 0 {
		batchSize = cfg.Translate.BatchSize
	}

	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	provider := translate.Provider(providerStr)
	apiKey, err := resolveAPIKey(provider, apiKey)
	if err != nil {
		return err
	}

	if outputPath == "" {
		base := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = fmt.Sprintf("%s.%s.srt", base, targetLang)
	}

	entries, err := subtitle.OpenSRT(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"provider", providerStr,
		"entries", len(entries),
	)

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	items := translate.ItemsFromEntries(entries)

	var results []translate.Result
	if ct, ok := translator.(translate.ConcurrentTranslator); ok {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = translator.Translate(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	applied, unknown := translate.ApplyResults(entries, results)
	for _, id := range unknown {
		logger.Warnw("Skipping result with unknown id", "id", id)
	}

	logger.Infow("Translation complete",
		"applied", applied,
		"skipped", len(unknown),
	)

	if err := subtitle.SaveSRT(outputPath, entries); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(entries))
	fmt.Printf("  Target language: %s\n", targetLang)

	return nil
}

func resolveAPIKey(provider translate.Provider, apiKey string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}

	var envVar string
	switch provider {
	case translate.ProviderGemini:
		envVar = "GEMINI_API_KEY"
	case translate.ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	case translate.ProviderAnthropic:
		envVar = "ANTHROPIC_API_KEY"
	default:
		envVar = "API_KEY"
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}

	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}
