package core

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Domain errors - one sentinel per failure kind of the pipeline
var (
	// Extraction errors
	ErrNotFound = stderrors.New("input not found")
	ErrLoad     = stderrors.New("input could not be loaded")

	// Transformation errors
	ErrEmptyInput       = stderrors.New("input dataset is empty")
	ErrNoUsableColumns  = stderrors.New("no numerical or categorical columns to process")
	ErrTransform        = stderrors.New("transformation failed")
	ErrUnknownCategory  = fmt.Errorf("%w: unknown category", ErrTransform)
	ErrMissingColumn    = fmt.Errorf("%w: fitted column missing from input", ErrTransform)
	ErrNonFiniteValue   = fmt.Errorf("%w: non-finite numerical value", ErrTransform)
	ErrNothingToImpute  = fmt.Errorf("%w: column has no observed values", ErrTransform)
	ErrIncompatibleType = fmt.Errorf("%w: incompatible column type", ErrTransform)

	// Load errors
	ErrSave = stderrors.New("output could not be saved")

	// Configuration errors
	ErrInvalidConfig = stderrors.New("invalid configuration")
)

// Error constructors with context. All of them record a stack trace.
func NewNotFoundError(path string) error {
	return errors.WithStack(fmt.Errorf("%w: the file '%s' does not exist", ErrNotFound, path))
}

func NewLoadError(path string, cause error) error {
	return errors.WithStack(fmt.Errorf("%w: %s: %w", ErrLoad, path, cause))
}

func NewSaveError(path string, cause error) error {
	return errors.WithStack(fmt.Errorf("%w: %s: %w", ErrSave, path, cause))
}

func NewTransformError(column string, kind error, detail string) error {
	return errors.WithStack(fmt.Errorf("%w (column %q): %s", kind, column, detail))
}

func NewConfigError(field string, reason string) error {
	return errors.WithStack(fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason))
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return stderrors.Is(err, ErrNotFound) ||
		stderrors.Is(err, ErrLoad) ||
		stderrors.Is(err, ErrEmptyInput)
}

func IsTransformError(err error) bool {
	return stderrors.Is(err, ErrTransform) ||
		stderrors.Is(err, ErrNoUsableColumns)
}
