package services

import (
	"fmt"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/metrics"
	"github.com/m-usman198/PM-Project/internal/repositories"
)

// AnalyzerInfo describes the analyzer built from configuration
type AnalyzerInfo struct {
	Provider string
	Model    string
}

// NewCompleter builds the model client for an LLM provider
func NewCompleter(llmConfig config.LLMConfig) (Completer, error) {
	switch llmConfig.Provider {
	case config.ProviderGemini:
		return NewGeminiCompleter(llmConfig), nil
	case config.ProviderAnthropic:
		return NewClaudeCompleter(llmConfig), nil
	case config.ProviderOpenAI:
		return NewOpenAICompleter(llmConfig), nil
	case config.ProviderOllama:
		return NewOllamaCompleter(llmConfig)
	case config.ProviderFake:
		return NewFakeCompleter(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, llmConfig.Provider)
}

// NewAnalyzer builds the configured analysis collaborator, wrapped with
// retry and metrics. recorder may be nil.
func NewAnalyzer(cfg *config.Config, recorder *metrics.PrometheusRecorder) (Analyzer, AnalyzerInfo, error) {
	info := AnalyzerInfo{Provider: cfg.LLM.Provider, Model: cfg.LLM.Model}

	if cfg.LLM.Provider == config.ProviderRemote {
		info.Model = cfg.Remote.URL
		retry := NewRetrier(cfg.LLM.RetryCount, cfg.LLM.RetryDelay(), helpers.NewLogger("remote"))
		remote := NewRetryAnalyzer(repositories.NewAnalysisRepository(&cfg.Remote), retry)
		return NewInstrumentedAnalyzer(remote, info.Provider, "remote", recorder), info, nil
	}

	completer, err := NewCompleter(cfg.LLM)
	if err != nil {
		return nil, info, err
	}

	tokens, err := NewTokenCounter()
	if err != nil {
		helpers.NewLogger("ai").Warn("Token counting falls back to estimates: %v", err)
	}

	ai := NewAIService(completer, cfg.LLM, tokens)
	ai.OnPrompt(func(n int) {
		recorder.ObservePromptTokens(info.Provider, info.Model, n)
	})
	return NewInstrumentedAnalyzer(ai, info.Provider, info.Model, recorder), info, nil
}
