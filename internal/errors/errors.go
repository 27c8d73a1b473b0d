// Package errors provides sentinel errors and custom error types for pr-summary.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotFound indicates that a repository, ref or pull request does not exist upstream
	ErrNotFound = errors.New("not found")

	// ErrTransport indicates a network failure or a non-2xx response from the forge
	ErrTransport = errors.New("transport failure")

	// ErrAmbiguousAuthor indicates a commit with neither a login nor an author name
	ErrAmbiguousAuthor = errors.New("ambiguous commit author")

	// ErrRangeExhausted indicates the pull request scan stopped at its ceiling
	// before leaving the range of interest
	ErrRangeExhausted = errors.New("pull request range exhausted")
)

// NotFoundError represents a missing upstream object
type NotFoundError struct {
	Kind string // "repository", "ref", "pull request"
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.Name)
}

// Is returns true if the target error is ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, name string, err error) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name, Err: err}
}

// TransportError represents a failed call to the forge
type TransportError struct {
	Op     string
	Status int // HTTP status when one was received, 0 otherwise
	Err    error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Op)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Is returns true if the target error is ErrTransport
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(op string, status int, err error) *TransportError {
	return &TransportError{Op: op, Status: status, Err: err}
}

// AmbiguousAuthorError is reported for a commit that cannot be credited to anyone
type AmbiguousAuthorError struct {
	SHA string
}

func (e *AmbiguousAuthorError) Error() string {
	return fmt.Sprintf("commit %s has no login and no author name", e.SHA)
}

// Is returns true if the target error is ErrAmbiguousAuthor
func (e *AmbiguousAuthorError) Is(target error) bool {
	return target == ErrAmbiguousAuthor
}

// NewAmbiguousAuthorError creates a new AmbiguousAuthorError
func NewAmbiguousAuthorError(sha string) *AmbiguousAuthorError {
	return &AmbiguousAuthorError{SHA: sha}
}

// RangeExhaustedWarning is a non-fatal condition: the candidate scan fetched
// Limit pull requests without seeing the end of the range, so the result may be
// incomplete.
type RangeExhaustedWarning struct {
	Fetched int
	Limit   int
}

func (e *RangeExhaustedWarning) Error() string {
	return fmt.Sprintf("stopped after %d pull requests (limit %d) before the end of the range; the pull request list may be incomplete", e.Fetched, e.Limit)
}

// Is returns true if the target error is ErrRangeExhausted
func (e *RangeExhaustedWarning) Is(target error) bool {
	return target == ErrRangeExhausted
}

// NewRangeExhaustedWarning creates a new RangeExhaustedWarning
func NewRangeExhaustedWarning(fetched, limit int) *RangeExhaustedWarning {
	return &RangeExhaustedWarning{Fetched: fetched, Limit: limit}
}
