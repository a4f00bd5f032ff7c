package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-usman198/PM-Project/internal/controller"
	"github.com/m-usman198/PM-Project/internal/models"
)

func TestRetrierDoublesDelay(t *testing.T) {
	r := NewRetrier(4, 100*time.Millisecond, nil)
	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, err := r.Do(context.Background(), func(context.Context) (models.AnalysisResult, error) {
		return models.AnalysisResult{}, errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}, delays)
}

func TestRetrierStopsWhenContextEnds(t *testing.T) {
	r := NewRetrier(5, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := r.Do(ctx, func(context.Context) (models.AnalysisResult, error) {
		calls++
		cancel()
		return models.AnalysisResult{}, context.Canceled
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryAnalyzer(t *testing.T) {
	calls := 0
	next := controller.AnalyzerFunc(func(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
		calls++
		if calls == 1 {
			return models.AnalysisResult{}, &AnalysisError{Message: "remote busy"}
		}
		return models.AnalysisResult{ScopePlan: project.Name}, nil
	})

	retry := NewRetrier(2, 0, nil)
	result, err := NewRetryAnalyzer(next, retry).Analyze(context.Background(), models.ProjectData{Name: "X"})
	require.NoError(t, err)
	assert.Equal(t, "X", result.ScopePlan)
	assert.Equal(t, 2, calls)
}

func TestAnalysisErrorMessages(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	assert.Equal(t, "custom", (&AnalysisError{Message: "custom", Err: cause}).Error())
	assert.Equal(t, "dial tcp: timeout", (&AnalysisError{Err: cause}).Error())
	assert.ErrorIs(t, &AnalysisError{Err: cause}, cause)
	assert.Equal(t, controller.FallbackErrorMessage, controller.FailureMessage(&AnalysisError{}))

	wrapped := wrapAnalysis(cause)
	var ae *AnalysisError
	require.ErrorAs(t, wrapped, &ae)
	assert.Same(t, ae, wrapAnalysis(ae))
	assert.NoError(t, wrapAnalysis(nil))
}
