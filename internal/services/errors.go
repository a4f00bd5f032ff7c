package services

import "errors"

var (
	// ErrEmptyResponse is returned when a provider replies without text
	ErrEmptyResponse = errors.New("empty response from analysis provider")
	// ErrUnknownProvider is returned for an unsupported llm.provider value
	ErrUnknownProvider = errors.New("unknown analysis provider")
)

// AnalysisError is the failure reported by an analysis collaborator.
// Message is shown to the user as is; Err keeps the underlying cause.
type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// UserMessage returns the text intended for the error panel
func (e *AnalysisError) UserMessage() string {
	return e.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// wrapAnalysis turns err into an *AnalysisError unless it already is one
func wrapAnalysis(err error) error {
	if err == nil {
		return nil
	}
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return err
	}
	return &AnalysisError{Err: err}
}
