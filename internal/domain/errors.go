package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// ForbiddenError indicates a request the server refuses to carry out
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string  { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *ForbiddenError) StatusCode() int  { return http.StatusForbidden }

// Is lets errors.Is match typed errors against the sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ForbiddenError) Is(target error) bool  { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")

	// ErrUnknownTemplate is returned when the classifier answers with neither template
	ErrUnknownTemplate = errors.New("unable to determine project template")

	// ErrCommandNotAllowed is returned for sandbox commands outside the allow-list
	ErrCommandNotAllowed = errors.New("command not allowed")

	// ErrUpstream wraps failures of the model provider
	ErrUpstream = errors.New("upstream provider error")
)

// ConflictError is returned when a write is based on a stale version of a resource
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

// NewVersionConflict builds the conflict returned for a stale optimistic write
func NewVersionConflict(resourceType, id string, expected int) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("%s %s was modified concurrently (expected version %d)", resourceType, id, expected),
		ResourceType: resourceType,
		ResourceID:   id,
	}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
