package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Data preparation errors
	ErrMissingComponent = errors.New("risk component column not found")
	ErrTypeMismatch     = errors.New("risk component value is not numeric")
	ErrNoRiskMatch      = errors.New("no risk assessment row for species")
	ErrEmptyTable       = errors.New("analysis table is empty")

	// Sampler errors
	ErrInsufficientData = errors.New("insufficient data for sampling")
	ErrBadOptions       = errors.New("invalid sampler options")
	ErrChainDiverged    = errors.New("chain produced non-finite state")
	ErrNotConverged     = errors.New("run did not converge")

	// Posterior analysis errors
	ErrUnknownParam        = errors.New("parameter not monitored in run")
	ErrDegenerateDeviance  = errors.New("null deviance is zero; deviance explained undefined")
	ErrNoIncludedDraws     = errors.New("component was never included in any retained draw")
	ErrDimensionMismatch   = errors.New("draw and data dimensions disagree")
	ErrUnknownContrastCase = errors.New("contrast references unknown case name")

	// Determinism errors
	ErrSeedMismatch = errors.New("seed mismatch")
)

// Error constructors with context
func NewMissingComponentError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingComponent, column)
}

func NewTypeMismatchError(column string, value any) error {
	return fmt.Errorf("%w: %s=%v", ErrTypeMismatch, column, value)
}

func NewChainDivergedError(chain, step int) error {
	return fmt.Errorf("%w: chain %d at step %d", ErrChainDiverged, chain, step)
}

func NewUnknownParamError(name ParamName) error {
	return fmt.Errorf("%w: %s", ErrUnknownParam, name)
}

// Error checking helpers
func IsMissingComponent(err error) bool {
	return errors.Is(err, ErrMissingComponent)
}

func IsDegenerateDeviance(err error) bool {
	return errors.Is(err, ErrDegenerateDeviance)
}
