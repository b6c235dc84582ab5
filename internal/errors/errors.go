package errors

import (
	stderrors "errors"
	"fmt"

	"gpgam/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an inner
// AppError or classifying domain errors otherwise
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code, the code implied by a domain
// sentinel, or CodeInternalError
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case core.IsNotFoundError(err):
		return CodeNotFound
	case core.IsShapeError(err):
		return CodeShape
	case core.IsEmptyDatasetError(err):
		return CodeEmptyDataset
	case core.IsFitError(err):
		return CodeFit
	}
	return CodeInternalError
}

// Predefined error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeNotFound      = "NOT_FOUND"
	CodeShape         = "SHAPE_ERROR"
	CodeEmptyDataset  = "EMPTY_DATASET"
	CodeFit           = "FIT_ERROR"
	CodeLedgerError   = "LEDGER_ERROR"
	CodeSubprocess    = "SUBPROCESS_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func LedgerError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeLedgerError,
		Message: message,
		Cause:   cause,
	}
}

func SubprocessError(command string, cause error) *AppError {
	return &AppError{
		Code:    CodeSubprocess,
		Message: fmt.Sprintf("command failed: %s", command),
		Cause:   cause,
	}
}
