package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors, raised at load time
	ErrEmptyDataset         = errors.New("dataset is empty")
	ErrNegativeCount        = errors.New("negative outcome count")
	ErrNonPositivePop       = errors.New("non-positive population")
	ErrInterventionReverted = errors.New("intervention indicator reverted to zero")
	ErrNonMonotonicTime     = errors.New("time index not strictly increasing")
	ErrInvalidMonth         = errors.New("month outside 1..12")

	// Fitting errors
	ErrRankDeficient = errors.New("design matrix is rank deficient")
	ErrNoConvergence = errors.New("iterative fit did not converge")

	// Comparison errors
	ErrNotNested = errors.New("models are not nested")

	// Diagnostics errors
	ErrConstantSeries = errors.New("series has zero variance")
	ErrLagTooLarge    = errors.New("lag exceeds series length")
)

// Error constructors with context
func NewObservationError(row int, cause error) error {
	return fmt.Errorf("observation %d: %w", row, cause)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewFitError(modelName string, cause error) error {
	return fmt.Errorf("fit %s: %w", modelName, cause)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrNegativeCount) ||
		errors.Is(err, ErrNonPositivePop) ||
		errors.Is(err, ErrInterventionReverted) ||
		errors.Is(err, ErrNonMonotonicTime) ||
		errors.Is(err, ErrInvalidMonth)
}

func IsFitError(err error) bool {
	return errors.Is(err, ErrRankDeficient) ||
		errors.Is(err, ErrNoConvergence)
}
