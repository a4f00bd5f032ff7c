package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/controller"
	"github.com/m-usman198/PM-Project/internal/models"
)

const validReply = `{"scopePlan":"# Plan","requirementsMatrix":"| ID |\n|----|\n| R1 |","advisoryWarnings":"- warn","gapAnalysis":"gaps"}`

func sampleProject() models.ProjectData {
	return models.ProjectData{
		Name:                "Student Wellness Portal",
		Description:         "A portal connecting students with counselling services",
		Timeline:            "16 weeks, Oct-Feb",
		Budget:              "$5,000",
		InitialRequirements: "Booking, reminders, anonymous chat",
		Constraints:         "Must use university servers",
	}
}

func testLLMConfig(retries int) config.LLMConfig {
	return config.LLMConfig{Provider: config.ProviderFake, Model: "fake", RetryCount: retries}
}

func noSleep(s *AIService) {
	s.retry.sleep = func(context.Context, time.Duration) error { return nil }
}

func TestBuildPromptContainsEveryField(t *testing.T) {
	project := sampleProject()
	prompt := BuildPrompt(project)

	for _, field := range models.Fields {
		value, err := project.Get(field)
		require.NoError(t, err)
		assert.Contains(t, prompt, value, "prompt should contain %s", field)
	}
	for _, key := range []string{"scopePlan", "requirementsMatrix", "advisoryWarnings", "gapAnalysis"} {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildPromptMarksEmptyOptionalFields(t *testing.T) {
	project := sampleProject()
	project.Budget = "  "
	project.Constraints = ""

	prompt := BuildPrompt(project)
	assert.Contains(t, prompt, "Estimated Budget/Resources: Not specified")
	assert.Contains(t, prompt, "Constraints & Assumptions: Not specified")
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"plain", validReply},
		{"json fence", "```json\n" + validReply + "\n```"},
		{"bare fence", "```\n" + validReply + "\n```"},
		{"surrounding text", "Here is the analysis:\n" + validReply + "\nThanks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseAnalysis(tt.in)
			require.NoError(t, err)
			assert.Equal(t, "# Plan", result.ScopePlan)
			assert.Equal(t, "| ID |\n|----|\n| R1 |", result.RequirementsMatrix)
			assert.Equal(t, "- warn", result.AdvisoryWarnings)
			assert.Equal(t, "gaps", result.GapAnalysis)
		})
	}
}

func TestParseAnalysisKeepsEmptyStrings(t *testing.T) {
	result, err := ParseAnalysis(`{"scopePlan":"","requirementsMatrix":"","advisoryWarnings":"","gapAnalysis":""}`)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisResult{}, result)
}

func TestParseAnalysisErrors(t *testing.T) {
	_, err := ParseAnalysis("   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ParseAnalysis("{not json}")
	require.Error(t, err)
	assert.Equal(t, "The analysis service returned a response that could not be read.", err.Error())

	_, err = ParseAnalysis(`{"scopePlan":"x","gapAnalysis":"y"}`)
	require.Error(t, err)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Err.Error(), "advisoryWarnings, requirementsMatrix")
}

func TestAIServiceAnalyze(t *testing.T) {
	var prompts []string
	completer := CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "```json\n" + validReply + "\n```", nil
	})

	var tokens []int
	svc := NewAIService(completer, testLLMConfig(1), nil)
	svc.OnPrompt(func(n int) { tokens = append(tokens, n) })

	result, err := svc.Analyze(context.Background(), sampleProject())
	require.NoError(t, err)
	assert.Equal(t, "# Plan", result.ScopePlan)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Student Wellness Portal")
	require.Len(t, tokens, 1)
	assert.Positive(t, tokens[0])
}

func TestAIServiceSingleAttemptByDefault(t *testing.T) {
	var calls atomic.Int32
	completer := CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return "", errors.New("Network timeout")
	})

	svc := NewAIService(completer, testLLMConfig(0), nil)
	_, err := svc.Analyze(context.Background(), sampleProject())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Network timeout", controller.FailureMessage(err))
}

func TestAIServiceRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	completer := CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("503 unavailable")
		}
		return validReply, nil
	})

	svc := NewAIService(completer, testLLMConfig(3), nil)
	noSleep(svc)

	result, err := svc.Analyze(context.Background(), sampleProject())
	require.NoError(t, err)
	assert.Equal(t, "gaps", result.GapAnalysis)
	assert.Equal(t, int32(3), calls.Load())
}

func TestAIServiceRetryExhausted(t *testing.T) {
	completer := CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("quota exceeded")
	})

	svc := NewAIService(completer, testLLMConfig(2), nil)
	var delays []time.Duration
	svc.retry.delay = time.Second
	svc.retry.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := svc.Analyze(context.Background(), sampleProject())
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed after 2 attempts"))
	assert.Equal(t, "quota exceeded", controller.FailureMessage(err))
	assert.Equal(t, []time.Duration{time.Second}, delays)
}

func TestAIServicePromptTokenLimit(t *testing.T) {
	var calls atomic.Int32
	completer := CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return validReply, nil
	})

	cfg := testLLMConfig(1)
	cfg.MaxPromptTokens = 10
	svc := NewAIService(completer, cfg, nil)

	_, err := svc.Analyze(context.Background(), sampleProject())
	require.Error(t, err)
	assert.Contains(t, controller.FailureMessage(err), "too long to analyze")
	assert.Zero(t, calls.Load())
}
