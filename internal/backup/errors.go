package backup

import (
	"fmt"
)

// BackupError represents errors that occur while reading backup artifacts
// of a completed migration run.
type BackupError struct {
	Type    BackupErrorType        `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *BackupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause error
func (e *BackupError) Unwrap() error {
	return e.Cause
}

// BackupErrorType represents different types of backup read errors
type BackupErrorType string

const (
	BackupErrorTypeManifest    BackupErrorType = "MANIFEST_ERROR"
	BackupErrorTypeValidation  BackupErrorType = "VALIDATION_ERROR"
	BackupErrorTypeSnapshot    BackupErrorType = "SNAPSHOT_ERROR"
	BackupErrorTypeCompression BackupErrorType = "COMPRESSION_ERROR"
	BackupErrorTypeEncryption  BackupErrorType = "ENCRYPTION_ERROR"
	BackupErrorTypeStorage     BackupErrorType = "STORAGE_ERROR"
	BackupErrorTypeNotFound    BackupErrorType = "NOT_FOUND_ERROR"
)

// NewBackupError creates a new BackupError
func NewBackupError(errorType BackupErrorType, message string, cause error) *BackupError {
	return &BackupError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *BackupError) WithContext(key string, value interface{}) *BackupError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common error constructors

func NewManifestError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeManifest, message, cause)
}

func NewValidationError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeValidation, message, cause)
}

func NewSnapshotError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeSnapshot, message, cause)
}

func NewCompressionError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeCompression, message, cause)
}

func NewEncryptionError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeEncryption, message, cause)
}

func NewStorageError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeStorage, message, cause)
}

func NewNotFoundError(message string, cause error) *BackupError {
	return NewBackupError(BackupErrorTypeNotFound, message, cause)
}

// ValidationErrors aggregates per-field validation failures.
type ValidationErrors []FieldError

// FieldError names one invalid manifest field.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Add appends a field error.
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, FieldError{Field: field, Message: message, Value: value})
}

// HasErrors reports whether any field errors were recorded.
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return fmt.Sprintf("validation failed: %v", msgs)
}
