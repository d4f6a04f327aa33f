package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/veilcut/veilcut/internal/subtitle"
)

// Item is a single subtitle text to translate, keyed by the entry's
// stable id so results correlate with the session's subtitle list.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Result is a translated text keyed by the originating entry id.
type Result struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Translator is the interface for text translation.
type Translator interface {
	Translate(ctx context.Context, items []Item) ([]Result, error)
}

// ConcurrentTranslator is an optional interface for translators that
// support concurrent batch processing.
type ConcurrentTranslator interface {
	Translator
	TranslateWithConcurrency(
		ctx context.Context,
		items []Item,
		concurrency int,
	) ([]Result, error)
}

// Provider is a translation service provider.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
}

// Factory creates a Translator based on provider.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// ItemsFromEntries converts subtitle entries to translation items,
// preserving list order.
func ItemsFromEntries(entries []subtitle.Entry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{ID: e.ID, Text: e.OriginalText}
	}
	return items
}

// ApplyResults fills TranslatedText on the matching entries. Results with
// unknown ids are reported so callers can log and skip them.
func ApplyResults(entries []subtitle.Entry, results []Result) (applied int, unknown []string) {
	byID := make(map[string]int, len(entries))
	for i, e := range entries {
		byID[e.ID] = i
	}
	for _, r := range results {
		i, ok := byID[r.ID]
		if !ok {
			unknown = append(unknown, r.ID)
			continue
		}
		entries[i].TranslatedText = r.Text
		applied++
	}
	return applied, unknown
}

// BuildPrompt creates the translation prompt for LLM providers.
func BuildPrompt(opts Options, items []Item) string {
	var sb strings.Builder

	if opts.InputLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"Translate the following %s subtitle texts to %s.\n\n",
			opts.InputLanguage,
			opts.TargetLanguage,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"Translate the following subtitle texts to %s.\n\n",
			opts.TargetLanguage,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Translate ONLY the text content, preserving the meaning.\n",
	)
	sb.WriteString("2. Preserve line breaks in the same positions.\n")
	sb.WriteString("3. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("4. Each object must have 'id' and 'text' fields.\n")
	sb.WriteString(
		"5. The 'id' values must match the input ids exactly.\n",
	)
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Input JSON:\n")

	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the translated JSON array only:")

	return sb.String()
}
