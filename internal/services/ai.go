package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/m-usman198/PM-Project/internal/config"
	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/models"
)

// Completer sends a single prompt to a model and returns its text reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to Completer
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f
func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// AIService handles AI-powered project analysis on top of a Completer
type AIService struct {
	completer       Completer
	provider        string
	model           string
	retry           *Retrier
	maxPromptTokens int
	tokens          *TokenCounter
	logger          *helpers.Logger
	onPrompt        func(tokens int)
}

// NewAIService creates a new AI service
func NewAIService(completer Completer, llmConfig config.LLMConfig, tokens *TokenCounter) *AIService {
	logger := helpers.NewLogger("ai")
	return &AIService{
		completer:       completer,
		provider:        llmConfig.Provider,
		model:           llmConfig.Model,
		retry:           NewRetrier(llmConfig.RetryCount, llmConfig.RetryDelay(), logger),
		maxPromptTokens: llmConfig.MaxPromptTokens,
		tokens:          tokens,
		logger:          logger,
	}
}

// OnPrompt registers a callback receiving the token size of each prompt
func (s *AIService) OnPrompt(fn func(tokens int)) {
	s.onPrompt = fn
}

// Analyze builds the intake prompt and returns the parsed assessment
func (s *AIService) Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
	prompt := BuildPrompt(project)

	tokens := s.tokens.Count(prompt)
	if s.onPrompt != nil {
		s.onPrompt(tokens)
	}
	if s.maxPromptTokens > 0 && tokens > s.maxPromptTokens {
		return models.AnalysisResult{}, &AnalysisError{
			Message: fmt.Sprintf("The project details are too long to analyze (%d tokens, limit %d).", tokens, s.maxPromptTokens),
		}
	}

	return s.ProcessWithRetry(ctx, prompt)
}

// ProcessWithRetry sends prompt with retry logic
func (s *AIService) ProcessWithRetry(ctx context.Context, prompt string) (models.AnalysisResult, error) {
	s.logger.Debug("Sending analysis request to %s/%s", s.provider, s.model)
	return s.retry.Do(ctx, func(ctx context.Context) (models.AnalysisResult, error) {
		return s.process(ctx, prompt)
	})
}

func (s *AIService) process(ctx context.Context, prompt string) (models.AnalysisResult, error) {
	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	return ParseAnalysis(text)
}

// BuildPrompt renders the analysis request for one project intake
func BuildPrompt(project models.ProjectData) string {
	return fmt.Sprintf(`You are a senior project manager applying the PMBOK® 8 Planning Performance Domain. Analyze the following project intake, focusing on Focus Area 2.1 (Plan Scope Management) and Focus Area 2.2 (Elicit & Analyze Requirements).

Project Name: %s
Project Timeline: %s
Estimated Budget/Resources: %s
Constraints & Assumptions: %s

Detailed Project Description:
%s

Initial High-Level Requirements:
%s

Please respond with a JSON object that follows this exact structure:
{
  "scopePlan": "markdown scope management plan",
  "requirementsMatrix": "markdown requirements traceability matrix",
  "advisoryWarnings": "markdown list of advisory warnings",
  "gapAnalysis": "markdown gap and risk analysis"
}

Guidelines:
- scopePlan: describe how scope will be defined, validated and controlled, including a high-level WBS
- requirementsMatrix: a markdown table with columns ID, Requirement, Source, Priority, Acceptance Criteria
- advisoryWarnings: bullet list of ambiguities, unrealistic timelines or budget risks found in the intake
- gapAnalysis: missing information, stakeholder gaps and the top risks with suggested responses
- Use only headings, bullet or numbered lists, tables, **bold**, *italic* and `+"`code`"+` in the markdown
- Treat fields marked "Not specified" as gaps to call out

Respond ONLY with valid JSON. Do not include any markdown code fences or explanations outside the JSON.`,
		orNotSpecified(project.Name),
		orNotSpecified(project.Timeline),
		orNotSpecified(project.Budget),
		orNotSpecified(project.Constraints),
		orNotSpecified(project.Description),
		orNotSpecified(project.InitialRequirements),
	)
}

func orNotSpecified(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return "Not specified"
}

// ParseAnalysis decodes a model reply into an AnalysisResult. Code fences
// and text around the JSON object are ignored; all four fields must be present.
func ParseAnalysis(text string) (models.AnalysisResult, error) {
	responseText := stripFences(text)
	if responseText == "" {
		return models.AnalysisResult{}, &AnalysisError{Err: ErrEmptyResponse}
	}

	var raw struct {
		ScopePlan          *string `json:"scopePlan"`
		RequirementsMatrix *string `json:"requirementsMatrix"`
		AdvisoryWarnings   *string `json:"advisoryWarnings"`
		GapAnalysis        *string `json:"gapAnalysis"`
	}
	if err := json.Unmarshal([]byte(responseText), &raw); err != nil {
		return models.AnalysisResult{}, &AnalysisError{
			Message: "The analysis service returned a response that could not be read.",
			Err:     fmt.Errorf("failed to parse AI response as JSON: %w", err),
		}
	}

	var missing []string
	for name, value := range map[string]*string{
		"scopePlan":          raw.ScopePlan,
		"requirementsMatrix": raw.RequirementsMatrix,
		"advisoryWarnings":   raw.AdvisoryWarnings,
		"gapAnalysis":        raw.GapAnalysis,
	} {
		if value == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return models.AnalysisResult{}, &AnalysisError{
			Message: "The analysis response was incomplete.",
			Err:     fmt.Errorf("analysis response missing fields: %s", strings.Join(missing, ", ")),
		}
	}

	return models.AnalysisResult{
		ScopePlan:          *raw.ScopePlan,
		RequirementsMatrix: *raw.RequirementsMatrix,
		AdvisoryWarnings:   *raw.AdvisoryWarnings,
		GapAnalysis:        *raw.GapAnalysis,
	}, nil
}

func stripFences(text string) string {
	responseText := strings.TrimSpace(text)
	if strings.HasPrefix(responseText, "```") {
		if nl := strings.IndexByte(responseText, '\n'); nl >= 0 {
			responseText = responseText[nl+1:]
		} else {
			responseText = strings.TrimLeft(responseText, "`")
		}
		responseText = strings.TrimSuffix(strings.TrimSpace(responseText), "```")
		responseText = strings.TrimSpace(responseText)
	}
	if !strings.HasPrefix(responseText, "{") {
		start := strings.IndexByte(responseText, '{')
		end := strings.LastIndexByte(responseText, '}')
		if start >= 0 && end > start {
			responseText = responseText[start : end+1]
		}
	}
	return responseText
}
