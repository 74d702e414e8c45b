package ingestion

import "fmt"

// ValidationError is returned when a submitted file cannot be accepted.
type ValidationError struct {
	File    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid file %q: %s", e.File, e.Message)
}
