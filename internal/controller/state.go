// Package controller implements the intake view-state machine.
//
// State changes are expressed as pure transitions through Reduce; the
// Controller type owns a State, applies events under a lock and runs the
// analysis effect as a single asynchronous Task.
package controller

import (
	"errors"
	"fmt"

	"github.com/m-usman198/PM-Project/internal/models"
)

// FallbackErrorMessage is shown when a failed analysis carries no message
const FallbackErrorMessage = "An error occurred during analysis."

// ViewState is the mode that decides which screen is shown
type ViewState int

const (
	Idle ViewState = iota
	// Loading is declared for parity with the intake UI but no transition enters it.
	Loading
	Analyzing
	Result
	Error
)

func (v ViewState) String() string {
	switch v {
	case Idle:
		return "IDLE"
	case Loading:
		return "LOADING"
	case Analyzing:
		return "ANALYZING"
	case Result:
		return "RESULT"
	case Error:
		return "ERROR"
	}
	return "UNKNOWN"
}

// MarshalText renders the state name in JSON payloads
func (v ViewState) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText
func (v *ViewState) UnmarshalText(text []byte) error {
	for s := Idle; s <= Error; s++ {
		if s.String() == string(text) {
			*v = s
			return nil
		}
	}
	return fmt.Errorf("unknown view state %q", text)
}

// FormVisible reports whether the intake form is shown in this state
func (v ViewState) FormVisible() bool {
	return v == Idle || v == Analyzing || v == Error
}

// State is the complete view state owned by one session
type State struct {
	View    ViewState
	Project models.ProjectData
	Result  *models.AnalysisResult
	Error   string
	// Seq identifies the most recently started analysis request.
	Seq uint64
}

// Event is an input to Reduce
type Event interface {
	isEvent()
}

// FieldEdited updates one ProjectData field by form name
type FieldEdited struct {
	Field string
	Value string
}

// Submitted asks for an analysis of the current ProjectData
type Submitted struct{}

// AnalysisSucceeded completes request Seq with a result
type AnalysisSucceeded struct {
	Seq    uint64
	Result models.AnalysisResult
}

// AnalysisFailed completes request Seq with an error
type AnalysisFailed struct {
	Seq uint64
	Err error
}

// ResetRequested returns from the result view to the form
type ResetRequested struct{}

func (FieldEdited) isEvent()       {}
func (Submitted) isEvent()         {}
func (AnalysisSucceeded) isEvent() {}
func (AnalysisFailed) isEvent()    {}
func (ResetRequested) isEvent()    {}

// Effect is work requested by a transition
type Effect interface {
	isEffect()
}

// StartAnalysis requests exactly one collaborator call with a snapshot of the project
type StartAnalysis struct {
	Seq     uint64
	Project models.ProjectData
}

func (StartAnalysis) isEffect() {}

// Reduce applies ev to s and returns the next state and an optional effect.
// Events that are not valid in the current view leave the state unchanged.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case FieldEdited:
		if s.View != Idle && s.View != Error {
			return s, nil
		}
		// Unknown field names leave the project untouched.
		_ = s.Project.Set(e.Field, e.Value)
		return s, nil

	case Submitted:
		if s.View != Idle && s.View != Error {
			return s, nil
		}
		if !s.Project.IsComplete() {
			return s, nil
		}
		s.View = Analyzing
		s.Error = ""
		s.Result = nil
		s.Seq++
		return s, StartAnalysis{Seq: s.Seq, Project: s.Project}

	case AnalysisSucceeded:
		if s.View != Analyzing || e.Seq != s.Seq {
			return s, nil
		}
		result := e.Result
		s.View = Result
		s.Result = &result
		s.Error = ""
		return s, nil

	case AnalysisFailed:
		if s.View != Analyzing || e.Seq != s.Seq {
			return s, nil
		}
		s.View = Error
		s.Result = nil
		s.Error = FailureMessage(e.Err)
		return s, nil

	case ResetRequested:
		if s.View != Result {
			return s, nil
		}
		// The form keeps the previous input so a new analysis can start from it.
		s.View = Idle
		s.Result = nil
		return s, nil
	}
	return s, nil
}

// FailureMessage extracts the message shown for a failed analysis
func FailureMessage(err error) string {
	if err == nil {
		return FallbackErrorMessage
	}
	var msgErr interface{ UserMessage() string }
	if errors.As(err, &msgErr) {
		if msg := msgErr.UserMessage(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackErrorMessage
}
