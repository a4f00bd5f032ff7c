package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/metrics"
)

func TestNewCompleterProviders(t *testing.T) {
	tests := []struct {
		provider string
		want     any
	}{
		{config.ProviderGemini, &GeminiCompleter{}},
		{config.ProviderAnthropic, &ClaudeCompleter{}},
		{config.ProviderOpenAI, &OpenAICompleter{}},
		{config.ProviderOllama, &OllamaCompleter{}},
		{config.ProviderFake, &FakeCompleter{}},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			completer, err := NewCompleter(config.LLMConfig{
				Provider:       tt.provider,
				APIKey:         "key",
				Model:          "model",
				BaseURL:        "http://localhost:11434",
				TimeoutSeconds: 5,
				MaxTokens:      100,
			})
			require.NoError(t, err)
			assert.IsType(t, tt.want, completer)
		})
	}
}

func TestNewCompleterUnknownProvider(t *testing.T) {
	_, err := NewCompleter(config.LLMConfig{Provider: "bard"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNewAnalyzerRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)

	cfg := config.Default()
	cfg.LLM.Provider = config.ProviderFake
	cfg.LLM.Model = "fake"

	analyzer, info, err := NewAnalyzer(cfg, recorder)
	require.NoError(t, err)
	assert.Equal(t, AnalyzerInfo{Provider: "fake", Model: "fake"}, info)

	_, err = analyzer.Analyze(context.Background(), sampleProject())
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "intake_analysis_requests_total", "intake_analysis_prompt_tokens")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewAnalyzerRemote(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = config.ProviderRemote
	cfg.Remote.URL = "http://127.0.0.1:1/analyze"

	analyzer, info, err := NewAnalyzer(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1/analyze", info.Model)
	assert.IsType(t, &InstrumentedAnalyzer{}, analyzer)
}

func TestFakeCompleterIsDeterministic(t *testing.T) {
	f := NewFakeCompleter()
	prompt := BuildPrompt(sampleProject())

	a, err := f.Complete(context.Background(), prompt)
	require.NoError(t, err)
	b, err := f.Complete(context.Background(), prompt)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	result, err := ParseAnalysis(a)
	require.NoError(t, err)
	assert.Contains(t, result.ScopePlan, "Student Wellness Portal")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Complete(ctx, prompt)
	assert.ErrorIs(t, err, context.Canceled)
}
