package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling at the
// handler boundary without switch-on-type sprawl.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates a malformed or contradictory request
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates the caller lacks the required role
	ForbiddenError struct {
		Message string
	}

	// MissingOrganizationError indicates the caller has no organization
	// and therefore no tenant to create chats under
	MissingOrganizationError struct {
		UserID string
	}

	// DatabaseError indicates an unexpected storage failure
	DatabaseError struct {
		Message string
		Cause   error
	}

	// InternalError is the catch-all for unclassified failures and
	// rejected background-task submissions. Detail carries the original
	// error message for the caller.
	InternalError struct {
		Message string
		Detail  string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *MissingOrganizationError) Error() string {
	return fmt.Sprintf("user %s does not belong to an organization", e.UserID)
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

func (e *InternalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int            { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int          { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int        { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int           { return http.StatusForbidden }
func (e *MissingOrganizationError) StatusCode() int { return http.StatusBadRequest }
func (e *DatabaseError) StatusCode() int            { return http.StatusInternalServerError }
func (e *InternalError) StatusCode() int            { return http.StatusInternalServerError }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Is allows errors.Is() matching against the sentinels so repositories
// and services can wrap either form interchangeably.
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ForbiddenError) Is(target error) bool  { return target == ErrForbidden }

func (e *MissingOrganizationError) Is(target error) bool { return target == ErrValidation }

// IsDomainError reports whether err is one of the typed domain errors.
// The orchestrator re-throws these unchanged and wraps everything else
// as InternalError.
func IsDomainError(err error) bool {
	var httpErr HTTPError
	return errors.As(err, &httpErr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden)
}
