// Package apperror defines the failure classes the review site
// distinguishes: a missing hostel, user or backup (not found), a bad form
// submission (validation), a duplicate signup (conflict), and a non-admin
// hitting the maintenance surface (forbidden).
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes. Repositories and services
// wrap these; the HTTP layer maps them to status codes with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that no resource matched the given key. The key is
// whatever the caller looked up by: an id, an email, a backup name.
func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("no %s matching %q", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation, e.g. a signup with an email
// that already has an account.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// MaintenanceUnsupported reports that a migrate/backup/restore operation
// was attempted against a backend that has no maintenance surface. Only
// the workbook backend supports those; sqlite manages its own schema.
func MaintenanceUnsupported() *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "maintenance operations require the workbook backend",
		Field:   "backend",
	}
}
