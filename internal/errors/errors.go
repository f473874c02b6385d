package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tome error code.
type ErrorCode string

const (
	ErrAmbiguousAddressing ErrorCode = "AMBIGUOUS_ADDRESSING" // 400
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound        ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrFileTooLarge        ErrorCode = "FILE_TOO_LARGE"       // 413
	ErrCancelled           ErrorCode = "CANCELLED"            // 499
	ErrInternal            ErrorCode = "INTERNAL"             // 500
	ErrStorageUnavailable  ErrorCode = "STORAGE_UNAVAILABLE"  // 503
)

// TomeError represents a structured error with code, status, and details.
type TomeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *TomeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *TomeError) Unwrap() error {
	return e.cause
}

// NewAmbiguousAddressing creates a 400 error for when both key and id are provided.
func NewAmbiguousAddressing() *TomeError {
	return &TomeError{
		Code:    ErrAmbiguousAddressing,
		Status:  400,
		Message: "cannot specify both key and id; use one addressing mode",
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TomeError {
	return &TomeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an entry cannot be found.
func NewNotFound(identifier string) *TomeError {
	return &TomeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("entry not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import or dataset file.
func NewFileNotFound(path string) *TomeError {
	return &TomeError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewFileTooLarge creates a 413 error when an import file exceeds the size limit.
func NewFileTooLarge(maxBytes, actualBytes int64) *TomeError {
	return &TomeError{
		Code:    ErrFileTooLarge,
		Status:  413,
		Message: fmt.Sprintf("file exceeds maximum size: %d bytes (max %d)", actualBytes, maxBytes),
		Details: map[string]any{"max_bytes": maxBytes, "actual_bytes": actualBytes},
	}
}

// NewCancelled creates a 499 error for an operation stopped by its context.
func NewCancelled(op string) *TomeError {
	return &TomeError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewStorageUnavailable creates a 503 error when the bookmark store rejects a write.
// The in-memory bookmark set is left unchanged.
func NewStorageUnavailable(err error) *TomeError {
	msg := "bookmark storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &TomeError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TomeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TomeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if err (or anything it wraps) is a TomeError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TomeError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}

// As reports whether err wraps a TomeError and returns it.
func As(err error) (*TomeError, bool) {
	var tErr *TomeError
	if stderrors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}
