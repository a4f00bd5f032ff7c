package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"github.com/m-usman198/PM-Project/internal/config"
)

// analysisSchema constrains Gemini replies to the four assessment fields
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"scopePlan":          {Type: genai.TypeString, Description: "Scope management plan in markdown"},
		"requirementsMatrix": {Type: genai.TypeString, Description: "Requirements traceability matrix as a markdown table"},
		"advisoryWarnings":   {Type: genai.TypeString, Description: "Advisory warnings as a markdown list"},
		"gapAnalysis":        {Type: genai.TypeString, Description: "Gap and risk analysis in markdown"},
	},
	Required:         []string{"scopePlan", "requirementsMatrix", "advisoryWarnings", "gapAnalysis"},
	PropertyOrdering: []string{"advisoryWarnings", "scopePlan", "requirementsMatrix", "gapAnalysis"},
}

// GeminiCompleter calls the Gemini API. The genai client needs a context to
// be created, so it is built on first use.
type GeminiCompleter struct {
	apiKey      string
	model       string
	maxTokens   int32
	temperature float32
	httpClient  *http.Client

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiCompleter creates a Gemini completer
func NewGeminiCompleter(llmConfig config.LLMConfig) *GeminiCompleter {
	return &GeminiCompleter{
		apiKey:      llmConfig.APIKey,
		model:       llmConfig.Model,
		maxTokens:   int32(llmConfig.MaxTokens),
		temperature: float32(llmConfig.Temperature),
		httpClient:  &http.Client{Timeout: llmConfig.Timeout()},
	}
}

// Complete sends prompt as a single user turn and requests a JSON reply
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     g.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: g.httpClient,
		})
	})
	if g.initErr != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", g.initErr)
	}

	temperature := g.temperature
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:      &temperature,
			MaxOutputTokens:  g.maxTokens,
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema,
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if result == nil {
		return "", ErrEmptyResponse
	}

	text := result.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
