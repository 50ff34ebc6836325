package application

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSlotConflict is returned when the selected instant was taken
	// between listing and commit. Expected and recoverable: the caller
	// re-fetches slots and lets the attendee choose again.
	ErrSlotConflict = errors.New("application: slot conflict")
	// ErrInvalidTransition is returned when a host action targets a booking
	// whose current status does not permit it.
	ErrInvalidTransition = errors.New("application: invalid status transition")
)

// ConfigurationError marks a defect in operator-supplied configuration
// (unknown timezone, malformed window, non-positive duration). Fatal for the
// request, never retried, surfaced to the operator rather than the attendee.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is checks.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// PolicyViolation marks a booking request that fails a scheduling policy
// (minimum notice, horizon, listing range) at commit or listing time. It is
// surfaced distinctly from a slot conflict so the caller can explain why.
type PolicyViolation struct {
	Rule    string
	Message string
}

// Error implements the error interface.
func (e *PolicyViolation) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("policy violation (%s): %s", e.Rule, e.Message)
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
