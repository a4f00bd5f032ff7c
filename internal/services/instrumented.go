package services

import (
	"context"
	"time"

	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/metrics"
	"github.com/m-usman198/PM-Project/internal/models"
)

// InstrumentedAnalyzer records duration and outcome of every analysis
type InstrumentedAnalyzer struct {
	next     Analyzer
	provider string
	model    string
	recorder *metrics.PrometheusRecorder
	logger   *helpers.Logger
	now      func() time.Time
}

// NewInstrumentedAnalyzer wraps next with metrics and logging
func NewInstrumentedAnalyzer(next Analyzer, provider, model string, recorder *metrics.PrometheusRecorder) *InstrumentedAnalyzer {
	return &InstrumentedAnalyzer{
		next:     next,
		provider: provider,
		model:    model,
		recorder: recorder,
		logger:   helpers.NewLogger("analysis"),
		now:      time.Now,
	}
}

// Analyze calls the wrapped analyzer
func (a *InstrumentedAnalyzer) Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
	start := a.now()
	a.logger.Info("Analyzing project %q with %s/%s", project.Name, a.provider, a.model)

	result, err := a.next.Analyze(ctx, project)
	elapsed := a.now().Sub(start)
	a.recorder.ObserveRequest(a.provider, a.model, err == nil, elapsed)

	if err != nil {
		a.logger.Error("Analysis of %q failed after %s: %v", project.Name, elapsed.Round(time.Millisecond), err)
		return models.AnalysisResult{}, err
	}
	a.logger.Info("Analysis of %q completed in %s", project.Name, elapsed.Round(time.Millisecond))
	return result, nil
}
