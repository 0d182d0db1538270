package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidConfig is matched by every ValidationError via errors.Is.
	ErrInvalidConfig = errors.New("invalid chit fund configuration")

	// ErrUndefinedRate marks results whose cashflows admit no positive real IRR.
	ErrUndefinedRate = errors.New("rate of return is undefined for this cashflow")

	// ErrNoOptimalScenario is returned when no swept scenario satisfies the objective.
	ErrNoOptimalScenario = errors.New("no scenario satisfies the objective")
)

// ValidationError reports the first configuration invariant that failed.
type ValidationError struct {
	Field      string
	Constraint string
	Value      any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Constraint)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Constraint, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(field, constraint string, value any) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint, Value: value}
}

// ScenarioError records a single failed bid inside a sweep. The sweep keeps going.
type ScenarioError struct {
	Index int
	Bid   decimal.Decimal
	Err   error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("scenario %d (bid %s): %v", e.Index, e.Bid.String(), e.Err)
}

func (e *ScenarioError) Unwrap() error { return e.Err }

// CalculationError is a genuine numeric failure, e.g. the IRR solver not converging.
type CalculationError struct {
	Op     string
	Reason string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
