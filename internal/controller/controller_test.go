package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-usman198/PM-Project/internal/models"
)

// gatedAnalyzer blocks every call until release is closed.
type gatedAnalyzer struct {
	calls   atomic.Int32
	release chan struct{}
	result  models.AnalysisResult
	err     error

	mu   sync.Mutex
	seen []models.ProjectData
}

func newGatedAnalyzer() *gatedAnalyzer {
	return &gatedAnalyzer{release: make(chan struct{})}
}

func (g *gatedAnalyzer) Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.seen = append(g.seen, project)
	g.mu.Unlock()
	select {
	case <-g.release:
	case <-ctx.Done():
		return models.AnalysisResult{}, ctx.Err()
	}
	return g.result, g.err
}

func newFilledController(t *testing.T, analyzer Analyzer, opts ...Option) *Controller {
	t.Helper()
	c := New(analyzer, opts...)
	project := completeProject()
	for _, field := range models.Fields {
		value, err := project.Get(field)
		require.NoError(t, err)
		require.NoError(t, c.Edit(field, value))
	}
	return c
}

func waitTask(t *testing.T, task *Task) (models.AnalysisResult, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded)
	return result, err
}

func TestControllerSuccessFlow(t *testing.T) {
	analyzer := newGatedAnalyzer()
	analyzer.result = models.AnalysisResult{
		ScopePlan:          "scope",
		RequirementsMatrix: "matrix",
		AdvisoryWarnings:   "warnings",
		GapAnalysis:        "gaps",
	}

	var transitions []string
	var mu sync.Mutex
	c := newFilledController(t, analyzer, WithTransitionObserver(func(from, to ViewState) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, from.String()+">"+to.String())
	}))

	task, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Analyzing, c.State().View)
	assert.Equal(t, uint64(1), task.Seq())

	close(analyzer.release)
	_, err = waitTask(t, task)
	require.NoError(t, err)

	s := c.State()
	assert.Equal(t, Result, s.View)
	require.NotNil(t, s.Result)
	assert.Equal(t, analyzer.result, *s.Result)
	assert.Equal(t, int32(1), analyzer.calls.Load())

	require.NoError(t, c.Reset())
	s = c.State()
	assert.Equal(t, Idle, s.View)
	assert.Nil(t, s.Result)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"IDLE>ANALYZING", "ANALYZING>RESULT", "RESULT>IDLE"}, transitions)
}

func TestControllerSecondSubmitIsSuppressed(t *testing.T) {
	analyzer := newGatedAnalyzer()
	c := newFilledController(t, analyzer)

	first, err := c.Submit(context.Background())
	require.NoError(t, err)

	second, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Same(t, first, second)

	close(analyzer.release)
	_, _ = waitTask(t, first)
	assert.Equal(t, int32(1), analyzer.calls.Load())
}

func TestControllerMissingFieldsDoesNotCallAnalyzer(t *testing.T) {
	analyzer := newGatedAnalyzer()
	close(analyzer.release)
	c := New(analyzer)
	require.NoError(t, c.Edit(models.FieldName, "Portal"))

	task, err := c.Submit(context.Background())
	assert.Nil(t, task)
	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{models.FieldDescription, models.FieldTimeline, models.FieldInitialRequirements}, missing.Fields)
	assert.Equal(t, Idle, c.State().View)
	assert.Equal(t, int32(0), analyzer.calls.Load())
}

func TestControllerFailureAndRetry(t *testing.T) {
	analyzer := newGatedAnalyzer()
	analyzer.err = errors.New("Network timeout")
	close(analyzer.release)
	c := newFilledController(t, analyzer)

	task, err := c.Submit(context.Background())
	require.NoError(t, err)
	_, err = waitTask(t, task)
	require.Error(t, err)

	s := c.State()
	assert.Equal(t, Error, s.View)
	assert.Equal(t, "Network timeout", s.Error)
	assert.Equal(t, completeProject(), s.Project)

	require.NoError(t, c.Edit(models.FieldBudget, "$7,500"))
	assert.Equal(t, "$7,500", c.State().Project.Budget)
	assert.Equal(t, Error, c.State().View)

	analyzer.err = nil
	analyzer.result = models.AnalysisResult{ScopePlan: "ok"}
	task, err = c.Submit(context.Background())
	require.NoError(t, err)
	_, err = waitTask(t, task)
	require.NoError(t, err)

	s = c.State()
	assert.Equal(t, Result, s.View)
	assert.Empty(t, s.Error)
	assert.Equal(t, int32(2), analyzer.calls.Load())
	assert.Equal(t, "$7,500", analyzer.seen[1].Budget)
}

func TestControllerFailureWithoutMessageUsesFallback(t *testing.T) {
	c := newFilledController(t, AnalyzerFunc(func(context.Context, models.ProjectData) (models.AnalysisResult, error) {
		return models.AnalysisResult{}, errors.New("")
	}))

	task, err := c.Submit(context.Background())
	require.NoError(t, err)
	_, _ = waitTask(t, task)
	assert.Equal(t, FallbackErrorMessage, c.State().Error)
}

func TestControllerSubmitsSnapshot(t *testing.T) {
	analyzer := newGatedAnalyzer()
	c := newFilledController(t, analyzer)

	task, err := c.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, c.Edit(models.FieldName, "Renamed"), ErrFormLocked)
	close(analyzer.release)
	_, _ = waitTask(t, task)

	require.Len(t, analyzer.seen, 1)
	assert.Equal(t, completeProject(), analyzer.seen[0])
	assert.Equal(t, completeProject().Name, c.State().Project.Name)
}

func TestControllerRequestOutlivesCallerContext(t *testing.T) {
	analyzer := newGatedAnalyzer()
	c := newFilledController(t, analyzer)

	ctx, cancel := context.WithCancel(context.Background())
	task, err := c.Submit(ctx)
	require.NoError(t, err)
	cancel()

	close(analyzer.release)
	_, err = waitTask(t, task)
	require.NoError(t, err)
	assert.Equal(t, Result, c.State().View)
}

func TestControllerCloseCancelsInFlight(t *testing.T) {
	analyzer := newGatedAnalyzer()
	c := newFilledController(t, analyzer)

	task, err := c.Submit(context.Background())
	require.NoError(t, err)

	c.Close()
	_, err = waitTask(t, task)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Edit(models.FieldName, "x"), ErrClosed)
	assert.ErrorIs(t, c.Reset(), ErrClosed)
}

func TestControllerResetOutsideResult(t *testing.T) {
	c := New(newGatedAnalyzer())
	assert.ErrorIs(t, c.Reset(), ErrNotResult)
}

func TestControllerEditUnknownField(t *testing.T) {
	c := New(newGatedAnalyzer())
	assert.ErrorIs(t, c.Edit("sponsor", "x"), models.ErrUnknownField)
}

func TestControllerWithProjectSeedsForm(t *testing.T) {
	c := New(newGatedAnalyzer(), WithProject(completeProject()))
	assert.Equal(t, completeProject(), c.State().Project)
}

func TestTaskWaitHonoursContext(t *testing.T) {
	analyzer := newGatedAnalyzer()
	c := newFilledController(t, analyzer)
	task, err := c.Submit(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-task.Done():
		t.Fatal("task finished before release")
	default:
	}
	close(analyzer.release)
	<-task.Done()
}
