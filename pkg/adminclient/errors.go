package adminclient

import (
	"errors"
	"fmt"
)

// AuthenticationError signals a rejected or expired credential. After it is
// returned the stored session has already been cleared.
type AuthenticationError struct {
	Detail string
}

func (e *AuthenticationError) Error() string {
	if e.Detail == "" {
		return "adminclient: authentication failed"
	}
	return "adminclient: " + e.Detail
}

// ValidationError signals that the server rejected the request payload,
// including duplicate usernames, emails, and role or privilege names.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "adminclient: validation failed"
	}
	return "adminclient: " + e.Detail
}

// ConflictError signals that a mutation violated a server-side guard, such as
// deleting a system role or a privilege still assigned to roles.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return "adminclient: conflict"
	}
	return "adminclient: " + e.Detail
}

// TransportError wraps a network-level failure: the request never produced
// an HTTP response, so the stored session is left untouched.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "adminclient: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError carries any other non-2xx response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("adminclient: server returned %d: %s", e.Status, e.Detail)
}

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("adminclient: not found")

// ErrNotAuthenticated is returned by operations that require a stored session
// when none is present.
var ErrNotAuthenticated = errors.New("adminclient: no active session")

// ErrSelfRoleChange is returned before any request is made when the caller
// attempts to change their own role assignment.
var ErrSelfRoleChange = errors.New("adminclient: cannot change own role")

// IsAuthentication reports whether err represents a credential failure.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsValidation reports whether err represents a rejected payload.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsConflict reports whether err represents a guarded-state conflict.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
