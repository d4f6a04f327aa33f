package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAITranslator implements Translator using OpenAI Chat Completions.
type OpenAITranslator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranslator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAITranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAITranslator) batcher() batcher {
	return newBatcher(t.options.BatchSize, t.translateBatch)
}

func (t *OpenAITranslator) Translate(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	return t.batcher().translate(ctx, items)
}

func (t *OpenAITranslator) TranslateWithConcurrency(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	return t.batcher().translateConcurrent(ctx, items, concurrency)
}

func (t *OpenAITranslator) translateBatch(
	ctx context.Context,
	items []Item,
) ([]Result, error) {
	prompt := BuildPrompt(t.options, items)

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}

	return parseResults(responseText, len(items))
}

func (t *OpenAITranslator) Close() error {
	return nil
}
