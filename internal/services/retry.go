package services

import (
	"context"
	"fmt"
	"time"

	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/models"
)

// Analyzer turns a project intake into an assessment
type Analyzer interface {
	Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error)
}

// Retrier repeats a failed analysis attempt. The delay doubles after every
// failed attempt; a count of 1 means a single attempt.
type Retrier struct {
	count  int
	delay  time.Duration
	logger *helpers.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier for count attempts
func NewRetrier(count int, delay time.Duration, logger *helpers.Logger) *Retrier {
	if count < 1 {
		count = 1
	}
	return &Retrier{count: count, delay: delay, logger: logger, sleep: sleepContext}
}

// Do runs attempt until it succeeds, the attempts are used up or ctx ends.
// The returned error always carries an *AnalysisError.
func (r *Retrier) Do(ctx context.Context, attempt func(ctx context.Context) (models.AnalysisResult, error)) (models.AnalysisResult, error) {
	var lastErr error
	delay := r.delay

	for n := 1; n <= r.count; n++ {
		result, err := attempt(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.logger.Warn("Attempt %d/%d failed: %v", n, r.count, err)

		if n < r.count {
			r.logger.Info("Retrying in %s...", delay)
			if err := r.sleep(ctx, delay); err != nil {
				break
			}
			delay *= 2
		}
	}

	if r.count == 1 {
		return models.AnalysisResult{}, wrapAnalysis(lastErr)
	}
	return models.AnalysisResult{}, fmt.Errorf("failed after %d attempts: %w", r.count, wrapAnalysis(lastErr))
}

// RetryAnalyzer applies a Retrier to another Analyzer
type RetryAnalyzer struct {
	next  Analyzer
	retry *Retrier
}

// NewRetryAnalyzer wraps next with retry
func NewRetryAnalyzer(next Analyzer, retry *Retrier) *RetryAnalyzer {
	return &RetryAnalyzer{next: next, retry: retry}
}

// Analyze calls the wrapped analyzer with retry
func (a *RetryAnalyzer) Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
	return a.retry.Do(ctx, func(ctx context.Context) (models.AnalysisResult, error) {
		return a.next.Analyze(ctx, project)
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
