// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package models

import (
	"errors"
	"fmt"
)

// Domain errors. Callers test them with errors.Is.
var (
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")

	// ErrNotAvailable means a backup is not in SUCCESS status.
	ErrNotAvailable = errors.New("backup not available")

	// ErrFileMissing means a SUCCESS backup has no file in storage.
	ErrFileMissing = errors.New("backup file missing")

	// ErrReferencedEntityProtected means an establishment still references the location.
	ErrReferencedEntityProtected = errors.New("referenced entity protected")

	// ErrExternalToolFailure wraps dump and restore tool errors.
	ErrExternalToolFailure = errors.New("external tool failure")
)

// ValidationError reports bad input. Nothing has been mutated when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ProtectedError names the referencing records that blocked a delete.
type ProtectedError struct {
	Entity     string
	Code       string
	References int
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s %s is referenced by %d establishment record(s)", e.Entity, e.Code, e.References)
}

// Is makes errors.Is(err, ErrReferencedEntityProtected) true.
func (e *ProtectedError) Is(target error) bool {
	return target == ErrReferencedEntityProtected
}
