package engine

import "fmt"

// StatusError is a non-2xx engine response. Fatal for the triggering
// action; never masked as empty data.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("engine %s failed: status %d", e.Op, e.StatusCode)
}

// ValidationError is a recoverable 422 rejection. Detail carries the
// engine's reason text verbatim for display next to the triggering form.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// validationDetail is the engine's 422 body shape
type validationDetail struct {
	Detail string `json:"detail"`
}
