package parsing

import (
	"errors"
	"fmt"
)

// ErrAnalysisFailed is matched by every error returned from AnalyzeSources.
var ErrAnalysisFailed = errors.New("analysis failed")

// APICallError represents an error from the model provider
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents an error parsing the model response
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// AnalysisError is what callers of AnalyzeSources see. Its message is fixed so provider
// details never leak into responses; the underlying APICallError or ParseError is
// reachable through errors.As.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string {
	return ErrAnalysisFailed.Error()
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

func (e *AnalysisError) Is(target error) bool {
	return target == ErrAnalysisFailed
}
