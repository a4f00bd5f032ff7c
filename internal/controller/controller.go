package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/m-usman198/PM-Project/internal/helpers"
	"github.com/m-usman198/PM-Project/internal/models"
)

var (
	// ErrInFlight is returned by Submit while an analysis is already running
	ErrInFlight = errors.New("analysis already in progress")
	// ErrFormLocked is returned by Edit when the form is not editable
	ErrFormLocked = errors.New("form is not editable in the current view")
	// ErrNotResult is returned by Reset outside the result view
	ErrNotResult = errors.New("no analysis result to reset")
	// ErrClosed is returned once the controller has been closed
	ErrClosed = errors.New("controller closed")
)

// MissingFieldsError reports required fields that were empty at submission
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Analyzer is the analysis collaborator
type Analyzer interface {
	Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error)
}

// AnalyzerFunc adapts a function to Analyzer
type AnalyzerFunc func(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, project models.ProjectData) (models.AnalysisResult, error) {
	return f(ctx, project)
}

// TransitionObserver is notified after every state change
type TransitionObserver func(from, to ViewState)

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger used for transitions and failures
func WithLogger(logger *helpers.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTransitionObserver registers a callback for view changes
func WithTransitionObserver(observer TransitionObserver) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, observer)
	}
}

// WithProject seeds the form contents
func WithProject(project models.ProjectData) Option {
	return func(c *Controller) {
		c.state.Project = project
	}
}

// Controller owns one session's State and runs at most one analysis at a time
type Controller struct {
	analyzer  Analyzer
	logger    *helpers.Logger
	observers []TransitionObserver

	mu     sync.Mutex
	state  State
	task   *Task
	closed bool
}

// New creates a controller in the IDLE view with an empty form
func New(analyzer Analyzer, opts ...Option) *Controller {
	c := &Controller{
		analyzer: analyzer,
		logger:   helpers.NewLogger("controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Edit updates one form field
func (c *Controller) Edit(field, value string) error {
	if _, err := (models.ProjectData{}).Get(field); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state.View != Idle && c.state.View != Error {
		return ErrFormLocked
	}
	c.applyLocked(FieldEdited{Field: field, Value: value})
	return nil
}

// Submit starts an analysis of the current form contents. The returned
// task completes after its outcome has been applied to the state.
func (c *Controller) Submit(ctx context.Context) (*Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.state.View == Analyzing {
		return c.task, ErrInFlight
	}
	if missing := c.state.Project.MissingRequired(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	effect := c.applyLocked(Submitted{})
	start, ok := effect.(StartAnalysis)
	if !ok {
		return nil, fmt.Errorf("submit not accepted in %s view", c.state.View)
	}

	// The request outlives the caller's deadline; only Close cancels it.
	base := context.WithoutCancel(ctx)
	c.task = startTask(base, start.Seq, func(taskCtx context.Context) (models.AnalysisResult, error) {
		result, err := c.analyzer.Analyze(taskCtx, start.Project)
		c.complete(start.Seq, result, err)
		return result, err
	})
	c.logger.Info("analysis %d started for %q", start.Seq, start.Project.Name)
	return c.task, nil
}

// Reset leaves the result view
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state.View != Result {
		return ErrNotResult
	}
	c.applyLocked(ResetRequested{})
	return nil
}

// Close cancels any in-flight analysis and rejects further events
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.task != nil {
		c.task.Cancel()
	}
}

func (c *Controller) complete(seq uint64, result models.AnalysisResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn("analysis %d failed: %v", seq, err)
		c.applyLocked(AnalysisFailed{Seq: seq, Err: err})
		return
	}
	c.logger.Info("analysis %d completed", seq)
	c.applyLocked(AnalysisSucceeded{Seq: seq, Result: result})
}

func (c *Controller) applyLocked(ev Event) Effect {
	from := c.state.View
	next, effect := Reduce(c.state, ev)
	c.state = next
	if from != next.View {
		c.logger.Debug("view %s -> %s", from, next.View)
		for _, observe := range c.observers {
			observe(from, next.View)
		}
	}
	return effect
}
