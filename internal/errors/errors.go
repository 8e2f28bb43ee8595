// LOCATION: internal/errors/errors.go
// VERSION: 2.0 - Consolidated error definitions for the entire project
//
// This file provides:
// - Process exit codes
// - Sentinel errors for all error conditions
// - Error category checking functions
// - ErrorToExitCode mapping
// - Error wrapping utilities

package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Process exit codes - reported by cmd/uplake
// ============================================================================

const (
	ExitOK       = 0 // every batch succeeded
	ExitFailure  = 1 // one or more batches failed
	ExitConfig   = 2 // configuration or usage error
	ExitNotReady = 3 // readiness preconditions not met
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitOK:
		return "OK"
	case ExitFailure:
		return "Failure"
	case ExitConfig:
		return "ConfigError"
	case ExitNotReady:
		return "NotReady"
	default:
		return fmt.Sprintf("Exit(%d)", code)
	}
}

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Encoding errors
	ErrSchemaMismatch = errors.New("row does not match schema")
	ErrEncoding       = errors.New("columnar encoding failed")

	// Signing errors
	ErrSigning = errors.New("request signing failed")

	// Upload errors
	ErrUploadRejected = errors.New("upload rejected by object store")
	ErrTransport      = errors.New("transport failure")

	// Readiness errors
	ErrNotReady    = errors.New("pipeline preconditions not met")
	ErrUnreachable = errors.New("object store unreachable")
	ErrClockSkew   = errors.New("wall clock not synchronized")

	// Validation errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidName   = errors.New("invalid name")
	ErrMissingField  = errors.New("missing required field")

	// State errors
	ErrRunInProgress = errors.New("run is already in progress")
	ErrRunCanceled   = errors.New("run canceled")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// IsEncodeError returns true if err occurred while building the columnar buffer.
func IsEncodeError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrEncoding)
}

// IsValidation returns true if err is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrMissingField)
}

// IsRetriable returns true if the error is potentially retriable.
//
// A rejected upload is retriable only with a fresh signature; a transport
// failure is retriable as-is. Encoding and signing errors are not, since
// the same inputs produce the same failure.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrUploadRejected) ||
		errors.Is(err, ErrTransport)
}

// IsFatal returns true if err makes the entire run pointless, not just one
// batch. Readiness failures are the only such case.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNotReady) ||
		errors.Is(err, ErrUnreachable) ||
		errors.Is(err, ErrClockSkew)
}

// ============================================================================
// Error to exit code mapping
// ============================================================================

// ErrorToExitCode maps an error to the process exit code.
func ErrorToExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch {
	case IsFatal(err):
		return ExitNotReady
	case IsValidation(err):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ============================================================================
// Error constructors with context
// ============================================================================

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewMissingField creates a missing field error.
func NewMissingField(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// NewInvalidValue creates an invalid value error.
func NewInvalidValue(field string, value interface{}, reason string) error {
	return fmt.Errorf("invalid %s '%v': %s: %w", field, value, reason, ErrInvalidConfig)
}

// NewSigning creates a signing error with context.
func NewSigning(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrSigning)
}

// ============================================================================
// Rejected uploads
// ============================================================================

// RejectedError describes a non-2xx response from the object store. Body
// holds at most a bounded prefix of the response body, captured for
// diagnostics.
type RejectedError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload rejected: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload rejected: status %d: %s", e.StatusCode, e.Body)
}

// Unwrap makes RejectedError match ErrUploadRejected via errors.Is.
func (e *RejectedError) Unwrap() error {
	return ErrUploadRejected
}

// NewRejected creates a RejectedError for a response status and body prefix.
func NewRejected(status int, body string) error {
	return &RejectedError{StatusCode: status, Body: body}
}

// ============================================================================
// Validation Errors Collection
// ============================================================================

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []error
}

// NewValidationErrors creates a new ValidationErrors collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{}
}

// Add adds an error to the collection.
func (v *ValidationErrors) Add(err error) {
	if err != nil {
		v.Errors = append(v.Errors, err)
	}
}

// AddField adds a field validation error.
func (v *ValidationErrors) AddField(field, reason string) {
	v.Errors = append(v.Errors, NewValidation(field, reason))
}

// AddMissing adds a missing field error.
func (v *ValidationErrors) AddMissing(field string) {
	v.Errors = append(v.Errors, NewMissingField(field))
}

// HasErrors returns true if there are any errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface.
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	if len(v.Errors) == 1 {
		return v.Errors[0].Error()
	}

	msg := fmt.Sprintf("validation failed with %d errors:", len(v.Errors))
	for _, err := range v.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Err returns nil if no errors, otherwise returns the ValidationErrors.
func (v *ValidationErrors) Err() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v
}

// Unwrap returns the first error for errors.Is/As support.
func (v *ValidationErrors) Unwrap() error {
	if len(v.Errors) == 0 {
		return nil
	}
	return v.Errors[0]
}
