package api

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated indicates the server rejected the bearer credential.
// The quiz flow cannot proceed until the identity collaborator supplies a
// fresh token.
type ErrUnauthenticated struct {
	Err error
}

func (e *ErrUnauthenticated) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not authenticated: %v", e.Err)
	}
	return "not authenticated"
}

func (e *ErrUnauthenticated) Unwrap() error { return e.Err }

// ErrConflict indicates the resource already exists (HTTP 409). The answer
// submitter uses it to fall back from create to update for text answers.
type ErrConflict struct {
	Err error
}

func (e *ErrConflict) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resource already exists: %v", e.Err)
	}
	return "resource already exists"
}

func (e *ErrConflict) Unwrap() error { return e.Err }

// RequestError is any other non-success HTTP outcome from the quiz API.
type RequestError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("quiz api: %s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("quiz api: %s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// IsUnauthenticated reports whether err is an authentication failure.
func IsUnauthenticated(err error) bool {
	var ue *ErrUnauthenticated
	return errors.As(err, &ue)
}

// IsConflict reports whether err is an already-exists conflict.
func IsConflict(err error) bool {
	var ce *ErrConflict
	return errors.As(err, &ce)
}
