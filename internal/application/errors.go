package application

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when attempting to create a resource that already exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidTransition is returned when a meeting status transition is not allowed by the status machine.
	ErrInvalidTransition = errors.New("application: invalid status transition")
	// ErrRoomUnavailable is returned when a meeting is proposed against a room marked unavailable.
	ErrRoomUnavailable = errors.New("application: room unavailable")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// SchedulingException is raised when the lifecycle monitor refuses a delete
// because it would otherwise leave an ERROR or CRITICAL violation
// unresolved (spec §4.3 deleteMeeting, §7).
type SchedulingException struct {
	Violations []string
}

// Error implements the error interface.
func (e *SchedulingException) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "scheduling exception"
	}
	return "scheduling exception: " + strings.Join(e.Violations, "; ")
}
