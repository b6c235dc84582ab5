package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSampleNotFound   = fmt.Errorf("%w: LHC sample file", ErrNotFound)
	ErrResponseNotFound = fmt.Errorf("%w: GP emulation file", ErrNotFound)

	// Data shape errors
	ErrShape        = errors.New("malformed matrix")
	ErrEmptyDataset = errors.New("no finite rows remain after cleaning X/y")

	// Model errors
	ErrFit = errors.New("additive model fit failed")

	// Output errors
	ErrRecordLength = errors.New("sensitivity record has wrong length")
)

// Error constructors with context
func NewNotFoundError(base error, path string) error {
	return fmt.Errorf("%w: %s", base, path)
}

func NewShapeError(path string, reason string) error {
	return fmt.Errorf("%w in %s: %s", ErrShape, path, reason)
}

func NewFitError(reason string) error {
	return fmt.Errorf("%w: %s", ErrFit, reason)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrShape) || errors.Is(err, ErrRecordLength)
}

func IsEmptyDatasetError(err error) bool {
	return errors.Is(err, ErrEmptyDataset)
}

func IsFitError(err error) bool {
	return errors.Is(err, ErrFit)
}
