// internal/domain/payday/errors.go
package payday

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the root of every configuration error. Use errors.Is.
	ErrValidation = errors.New("invalid payday configuration")

	// ErrCalculation marks an unknown frequency or monthly rule reaching the resolver,
	// or an advancement loop that never found an acceptable date.
	ErrCalculation = errors.New("payday calculation failed")

	// ErrHolidaySourceDegraded is logged when holidays could not be fetched and an empty
	// set was used instead. It is never returned from a computation.
	ErrHolidaySourceDegraded = errors.New("holiday source degraded")
)

// ValidationError reports a missing or semantically invalid recurrence parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CalculationError reports a configuration the resolver cannot interpret.
type CalculationError struct {
	Reason string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCalculation, e.Reason)
}

func (e *CalculationError) Unwrap() error {
	return ErrCalculation
}

func validationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func calculationError(format string, args ...any) error {
	return &CalculationError{Reason: fmt.Sprintf(format, args...)}
}
