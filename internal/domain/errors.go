package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // catalogue, document, material...
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// TransitionError reports a status change the workflow does not allow
type TransitionError struct {
	MaterialID string
	From       string
	To         string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("material %s cannot move from %q to %q", e.MaterialID, e.From, e.To)
}

func (e *TransitionError) StatusCode() int { return http.StatusUnprocessableEntity }

// Is allows errors.Is() to match against ErrValidation
func (e *TransitionError) Is(target error) bool {
	return target == ErrValidation
}
