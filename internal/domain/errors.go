package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation           = errors.New("validation failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDataUnavailable      = errors.New("data source unavailable")
	ErrStorageNotConfigured = errors.New("export storage not configured")
)

// Date range validation errors. All of them match ErrValidation.
var (
	ErrDateRangeBoundMissing = fmt.Errorf("%w: start and end dates are both required", ErrValidation)
	ErrInvalidDate           = fmt.Errorf("%w: date must use the YYYY-MM-DD format", ErrValidation)
	ErrDateRangeInverted     = fmt.Errorf("%w: start date is after end date", ErrValidation)
)

// Transaction validation errors. All of them match ErrValidation.
var (
	ErrInvalidTransactionType = fmt.Errorf("%w: transaction type must be INGRESO or GASTO", ErrValidation)
	ErrCategoryRequired       = fmt.Errorf("%w: category is required", ErrValidation)
	ErrDescriptionTooShort    = fmt.Errorf("%w: description is too short", ErrValidation)
	ErrNegativeAmount         = fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	ErrNameRequired           = fmt.Errorf("%w: name is required", ErrValidation)
)

// DataUnavailableError reports a failed fetch from an external data source.
// It matches ErrDataUnavailable with errors.Is.
type DataUnavailableError struct {
	Source string
	Err    error
}

// NewDataUnavailableError wraps err as a failure of the named source.
// An error that already is a *DataUnavailableError is returned as is.
func NewDataUnavailableError(source string, err error) error {
	var existing *DataUnavailableError
	if errors.As(err, &existing) {
		return err
	}
	return &DataUnavailableError{Source: source, Err: err}
}

func (e *DataUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, ErrDataUnavailable)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, ErrDataUnavailable, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDataUnavailable
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}
