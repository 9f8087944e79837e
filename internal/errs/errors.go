// Package errs provides the unified error type used across all of pgmeta.
//
// Every subsystem (catalog collector, type generator, cache, filestore, server)
// wraps its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// driver-specific packages.
//
// Usage:
//
//	// In the generator: report a fatal condition:
//	return errs.New(errs.ErrKindCircularDependency, "circular dependency on type \"a\"")
//
//	// In a handler: check error kind:
//	if errs.IsInvalidInput(err) {
//	    http.Error(w, err.Error(), http.StatusBadRequest)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown            ErrKind = iota
	ErrKindNotFound                   // no rows, no object, unknown target
	ErrKindConnectionFailed           // cannot reach the backend
	ErrKindTimeout                    // context deadline / cancellation
	ErrKindQueryFailed                // catalog query or storage operation error
	ErrKindInvalidInput               // bad arguments from the caller
	ErrKindPermissionDenied           // access denied / auth failure
	ErrKindCircularDependency         // user-defined types reference each other
	ErrKindGenerationFailed           // an emitter produced output the formatter rejected
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindCircularDependency:
		return "circular_dependency"
	case ErrKindGenerationFailed:
		return "generation_failed"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all pgmeta subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsCircularDependency reports whether generation aborted on a type cycle.
func IsCircularDependency(err error) bool {
	return KindOf(err) == ErrKindCircularDependency
}

// IsGenerationFailed reports whether the formatting stage rejected emitter output.
func IsGenerationFailed(err error) bool {
	return KindOf(err) == ErrKindGenerationFailed
}

// KindOf extracts the ErrKind from any error in the chain.
// Errors that are not *Error report ErrKindUnknown.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
