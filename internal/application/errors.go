package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when the caller has no usable login session.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSessionExpired is returned when a login session outlived its TTL.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a login session was ended by logout.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrInvalidTransition is returned when a wizard or dialogue operation is not available in the current state.
	ErrInvalidTransition = errors.New("application: invalid transition")
	// ErrSessionBusy is returned when a companion submission arrives while a reply is still pending.
	ErrSessionBusy = errors.New("application: companion is awaiting a response")
	// ErrSessionNotReady is returned when the companion dialogue has not been started.
	ErrSessionNotReady = errors.New("application: companion session not started")
	// ErrCapabilityUnavailable is returned by capability adapters that have no backend configured.
	ErrCapabilityUnavailable = errors.New("application: capability unavailable")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

func fieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}
