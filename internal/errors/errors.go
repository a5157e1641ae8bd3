package errors

import (
	stderrors "errors"
	"fmt"

	"goetl/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Stage   string
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

// Format prints the cause's stack trace with %+v
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') && e.Cause != nil {
			fmt.Fprintf(s, "[%s] %s: %+v", e.Code, e.Message, e.Cause)
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, classifying it by its domain kind
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Stage:   appErr.Stage,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    Classify(err),
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

// InStage tags an error with the pipeline stage that raised it
func InStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    Classify(err),
		Stage:   stage,
		Message: fmt.Sprintf("%s stage failed", stage),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise classifies it
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return Classify(err)
}

// GetStage returns the stage recorded on the error, if any
func GetStage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}

// Predefined error codes
const (
	CodeNotFound        = "NOT_FOUND"
	CodeLoadError       = "LOAD_ERROR"
	CodeEmptyInput      = "EMPTY_INPUT"
	CodeNoUsableColumns = "NO_USABLE_COLUMNS"
	CodeTransformError  = "TRANSFORM_ERROR"
	CodeSaveError       = "SAVE_ERROR"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Classify maps a domain error onto its code
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	case stderrors.Is(err, core.ErrLoad):
		return CodeLoadError
	case stderrors.Is(err, core.ErrEmptyInput):
		return CodeEmptyInput
	case stderrors.Is(err, core.ErrNoUsableColumns):
		return CodeNoUsableColumns
	case stderrors.Is(err, core.ErrTransform):
		return CodeTransformError
	case stderrors.Is(err, core.ErrSave):
		return CodeSaveError
	case stderrors.Is(err, core.ErrInvalidConfig):
		return CodeConfigInvalid
	}
	return CodeInternalError
}

var exitCodes = map[string]int{
	CodeInternalError:   1,
	CodeNotFound:        2,
	CodeLoadError:       3,
	CodeEmptyInput:      4,
	CodeNoUsableColumns: 5,
	CodeTransformError:  6,
	CodeSaveError:       7,
	CodeConfigInvalid:   8,
}

// ExitCode returns the process exit status for an error; 0 for nil
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[GetCode(err)]; ok {
		return code
	}
	return 1
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return &AppError{
		Code:    CodeConfigInvalid,
		Message: message,
		Cause:   core.ErrInvalidConfig,
	}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}
