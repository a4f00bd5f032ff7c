package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/m-usman198/PM-Project/internal/config"
)

// OpenAICompleter calls the OpenAI Responses API
type OpenAICompleter struct {
	client    openai.Client
	model     string
	maxTokens int64
}

// NewOpenAICompleter creates an OpenAI completer. SDK retries are disabled;
// AIService owns the retry policy.
func NewOpenAICompleter(llmConfig config.LLMConfig, opts ...option.RequestOption) *OpenAICompleter {
	opts = append([]option.RequestOption{
		option.WithAPIKey(llmConfig.APIKey),
		option.WithRequestTimeout(llmConfig.Timeout()),
		option.WithMaxRetries(0),
	}, opts...)
	return &OpenAICompleter{
		client:    openai.NewClient(opts...),
		model:     llmConfig.Model,
		maxTokens: int64(llmConfig.MaxTokens),
	}
}

// Complete sends prompt as the response input
func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(o.maxTokens),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}

	text := resp.OutputText()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
