package core

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the caller's role or ownership
	// check fails for the requested record.
	ErrPermissionDenied = errors.New("permission denied")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ConflictError reports a unique-constraint violation (duplicate code, email,
// employeeId, (allocation, week) pair, ...).
type ConflictError struct {
	msg string
}

func NewConflictError(msg string) error {
	return &ConflictError{msg}
}

func (err ConflictError) Error() string {
	return err.msg
}

// ReferentialError reports a delete blocked by dependent rows.
type ReferentialError struct {
	msg string
}

func NewReferentialError(msg string) error {
	return &ReferentialError{msg}
}

func (err ReferentialError) Error() string {
	return err.msg
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
