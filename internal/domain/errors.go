package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the requested account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrFetchFailed means a resource could not be retrieved; callers may retry.
	ErrFetchFailed = errors.New("fetch failed")
)

// FetchError describes a failed retrieval of a single resource.
// It matches its Kind with errors.Is and unwraps to the underlying cause.
type FetchError struct {
	Kind     error
	Resource string
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Err)
	}
	return e.Message
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewNotFoundError creates a NotFound error for the given resource.
func NewNotFoundError(resource, message string) *FetchError {
	return &FetchError{Kind: ErrNotFound, Resource: resource, Message: message}
}

// NewFetchFailedError creates a FetchFailed error for the given resource.
func NewFetchFailedError(resource, message string, err error) *FetchError {
	return &FetchError{Kind: ErrFetchFailed, Resource: resource, Message: message, Err: err}
}

// IsNotFound reports whether err is, or wraps, a NotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFetchFailed reports whether err is, or wraps, a FetchFailed error.
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}
