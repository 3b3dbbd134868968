package services

import (
	"fmt"
	"strings"
)

// ValidationFailureError carries every unmet completeness requirement so the
// instructor sees all problems at once.
type ValidationFailureError struct {
	Reasons []string
}

func (e *ValidationFailureError) Error() string {
	return fmt.Sprintf("submission validation failed: %s", strings.Join(e.Reasons, "; "))
}

// PermissionDeniedError means the actor lacks the role or assignment the
// action requires. Never retried automatically.
type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string {
	return e.Message
}

// StateConflictError means the action was attempted from a status that does
// not permit it, including a lost compare-and-set race. CurrentStatus lets the
// caller refresh and retry.
type StateConflictError struct {
	CurrentStatus string
	Message       string
}

func (e *StateConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("action not allowed from status %s", e.CurrentStatus)
}

// NotFoundError means the referenced folder, assignment or record does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func permissionDenied(format string, args ...interface{}) error {
	return &PermissionDeniedError{Message: fmt.Sprintf(format, args...)}
}

func stateConflict(current, format string, args ...interface{}) error {
	return &StateConflictError{CurrentStatus: current, Message: fmt.Sprintf(format, args...)}
}
