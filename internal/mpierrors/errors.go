// Package mpierrors implements the structured error taxonomy every core
// operation returns: a Kind tag plus a human-readable message, deliberately
// independent of any wire protocol. Mapping Kind to a transport status is
// the embedding service's job, not the core's.
package mpierrors

import (
	"errors"
	"fmt"
)

// Kind is the closed error taxonomy.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindValidationFailed   Kind = "validation_failed"
	KindUniquenessViolated Kind = "uniqueness_violated"
	KindDatabase           Kind = "database"
	KindIndex              Kind = "index"
	KindAudit              Kind = "audit"
	KindCancelled          Kind = "cancelled"
	KindInternal           Kind = "internal"
)

// Error is the structured error every core operation returns on failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func NotFound(message string) *Error              { return New(KindNotFound, message) }
func ValidationFailed(message string) *Error      { return New(KindValidationFailed, message) }
func UniquenessViolated(message string) *Error    { return New(KindUniquenessViolated, message) }
func Database(message string, cause error) *Error { return Wrap(KindDatabase, message, cause) }
func Index(message string, cause error) *Error    { return Wrap(KindIndex, message, cause) }
func Audit(message string, cause error) *Error    { return Wrap(KindAudit, message, cause) }
func Cancelled(message string) *Error             { return New(KindCancelled, message) }
func Internal(message string, cause error) *Error { return Wrap(KindInternal, message, cause) }
