package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/m-usman198/PM-Project/internal/config"
)

// OllamaCompleter calls a local Ollama runtime
type OllamaCompleter struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOllamaCompleter creates an Ollama completer for llmConfig.BaseURL
func NewOllamaCompleter(llmConfig config.LLMConfig) (*OllamaCompleter, error) {
	hostURL, err := url.Parse(llmConfig.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", llmConfig.BaseURL, err)
	}
	return &OllamaCompleter{
		client:      api.NewClient(hostURL, &http.Client{Timeout: llmConfig.Timeout()}),
		model:       llmConfig.Model,
		maxTokens:   llmConfig.MaxTokens,
		temperature: llmConfig.Temperature,
	}, nil
}

// Complete sends prompt as a single user message and requests JSON output
func (o *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Format:   json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": o.temperature,
			"num_predict": o.maxTokens,
		},
	}

	var response api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama chat failed: %w", err)
	}
	if response.Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return response.Message.Content, nil
}
