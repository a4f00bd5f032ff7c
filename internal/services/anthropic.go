package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/m-usman198/PM-Project/internal/config"
)

// ClaudeCompleter calls the Anthropic Messages API
type ClaudeCompleter struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
}

// NewClaudeCompleter creates a Claude completer. SDK retries are disabled;
// AIService owns the retry policy.
func NewClaudeCompleter(llmConfig config.LLMConfig, opts ...option.RequestOption) *ClaudeCompleter {
	opts = append([]option.RequestOption{
		option.WithAPIKey(llmConfig.APIKey),
		option.WithRequestTimeout(llmConfig.Timeout()),
		option.WithMaxRetries(0),
	}, opts...)
	return &ClaudeCompleter{
		client:      anthropic.NewClient(opts...),
		model:       anthropic.Model(llmConfig.Model),
		maxTokens:   int64(llmConfig.MaxTokens),
		temperature: llmConfig.Temperature,
	}
}

// Complete sends prompt as a single user message
func (c *ClaudeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(prompt)},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API call failed: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
