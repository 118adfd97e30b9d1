// Package finerror defines the error types surfaced by the forecasting core
// and its persistence collaborators.
package finerror

import (
	"errors"
	"fmt"
)

// ErrNoRemainingInstalments is returned when a payment is recorded against a
// plan that has already reached zero remaining instalments.
var ErrNoRemainingInstalments = errors.New("no remaining instalments")

// PlanError wraps a failure of an operation on a specific BNPL plan.
type PlanError struct {
	PlanID string
	Op     string
	Err    error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s plan %s: %v", e.Op, e.PlanID, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// ValidationError reports a record that violates an entity invariant.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

// ParseError reports a field value that could not be parsed from an external
// source (CSV row, seed file, stored column).
type ParseError struct {
	Source string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v", e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
