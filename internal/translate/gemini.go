package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiTranslator implements Translator using Google Gemini.
type GeminiTranslator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiTranslator) batcher() batcher {
	return newBatcher(t.options.BatchSize, t.translateBatch)
}

func (t *GeminiTranslator) Translate(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	return t.batcher().translate(ctx, items)
}

func (t *GeminiTranslator) TranslateWithConcurrency(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	return t.batcher().translateConcurrent(ctx, items, concurrency)
}

func (t *GeminiTranslator) translateBatch(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	prompt := BuildPrompt(t.options, items)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return parseResults(responseText, len(items))
}

func (t *GeminiTranslator) Close() error {
	return nil
}
