package model

import "errors"

// ErrTimeout is the canonical error string recorded on a SourceOutcome whose
// task was still in flight when the global deadline elapsed.
const ErrTimeout = "timeout"

// ErrSourceCapExceeded is the error string recorded on a SourceOutcome for a
// requested source dropped by the per-run source cap. The source is never
// dispatched, but it still gets its outcome: one per requested source, always.
const ErrSourceCapExceeded = "source cap exceeded"

// ValidationError marks malformed or missing criteria. Fails fast, never
// retried, rejected before any network activity.
type ValidationError struct {
	msg string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string { return e.msg }

// IsValidationError reports whether any error in the chain is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// SourceError marks a failure inside one collector (network, parse, quota).
// It is always recovered locally into that source's outcome and never aborts
// the orchestration.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error { return e.Err }

// ErrAggregation signals that every source failed and zero records are
// available. The orchestrator surfaces it as a degraded, empty result rather
// than a fatal error, so callers can still render "no candidates found".
var ErrAggregation = errors.New("all sources failed, no records collected")
