package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during engine execution.
//
// Runtime errors include:
//   - Invariant violation: a rewrite left the region partition broken
//   - Tick runaway: a tick exceeded its application limit
//
// RuntimeError includes structured fields for diagnostics and recovery.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Tick is the tick number the failure occurred in.
	Tick int

	// Rule identifies the rule being applied, when one was.
	Rule string

	// Err is the underlying cause, when one exists.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvariantViolation indicates a rewrite corrupted the topology.
	// Always an engine bug, never bad input; the tick is aborted and the
	// world rolled back to its last stable state.
	ErrCodeInvariantViolation RuntimeErrorCode = "INVARIANT_VIOLATION"

	// ErrCodeTickRunaway indicates a tick exceeded its application limit,
	// which almost always means the rule set never stabilizes.
	ErrCodeTickRunaway RuntimeErrorCode = "TICK_RUNAWAY"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s (tick=%d, rule=%s)", e.Code, e.Message, e.Tick, e.Rule)
	}
	return fmt.Sprintf("%s: %s (tick=%d)", e.Code, e.Message, e.Tick)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsInvariantViolation returns true if the error is a broken-topology error.
// Uses errors.As to handle wrapped errors.
func IsInvariantViolation(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvariantViolation
	}
	return false
}

// IsTickRunaway returns true if the error is an application-limit error.
func IsTickRunaway(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTickRunaway
	}
	return false
}

// NewInvariantError wraps a topology validation failure.
func NewInvariantError(tick int, ruleName string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvariantViolation,
		Message: "rewrite broke the region partition",
		Tick:    tick,
		Rule:    ruleName,
		Err:     cause,
	}
}

// NewRunawayError creates a RuntimeError for an overrunning tick.
func NewRunawayError(tick, applications, limit int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTickRunaway,
		Message: fmt.Sprintf("tick exceeded max applications (%d >= %d)", applications, limit),
		Tick:    tick,
	}
}
