package domain

import "fmt"

// InvalidSelectionError marks malformed or contradictory request input.
// Surfaced to callers as a client-side validation failure.
type InvalidSelectionError struct {
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid selection: %s", e.Reason)
}

// InsufficientDataError is returned when the extracted dataset is too small
// to fit a seasonal model. Always carries actual vs required counts.
type InsufficientDataError struct {
	Found    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	if e.Found == 0 {
		return fmt.Sprintf("no data found for the selected filters; at least %d monthly data points are required", e.Required)
	}
	return fmt.Sprintf("insufficient data for forecast: found only %d data points but at least %d are required", e.Found, e.Required)
}

// DataAccessError wraps an underlying storage failure. The operation name
// gives log context; storage internals never reach the caller.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed during %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// ModelFitError marks a numerical failure to produce a usable fit.
type ModelFitError struct {
	Err error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("model fit failed: %v", e.Err)
}

func (e *ModelFitError) Unwrap() error { return e.Err }
