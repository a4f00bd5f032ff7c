package controller

import (
	"context"
	"sync"

	"github.com/m-usman198/PM-Project/internal/models"
)

// Task is a cancellable handle on one in-flight analysis request
type Task struct {
	seq    uint64
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	result models.AnalysisResult
	err    error
}

func startTask(parent context.Context, seq uint64, run func(ctx context.Context) (models.AnalysisResult, error)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		seq:    seq,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		result, err := run(ctx)
		t.mu.Lock()
		t.result, t.err = result, err
		t.mu.Unlock()
		close(t.done)
	}()
	return t
}

// Seq returns the request sequence number this task belongs to
func (t *Task) Seq() uint64 {
	return t.seq
}

// Done is closed once the request has completed and its outcome is applied
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel cancels the context passed to the collaborator
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the task finishes or ctx is done
func (t *Task) Wait(ctx context.Context) (models.AnalysisResult, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		return models.AnalysisResult{}, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}
