package domain

import (
	"errors"
	"fmt"
)

var (
	// A depth or distance outside the valid range of a model, grid or envelope.
	ErrDomain = errors.New("domain error")

	// The travel-time solver failed (bad phase name, transport failure, ...).
	// A solver failure is fatal to the current phase only.
	ErrSolver = errors.New("solver error")

	// A malformed velocity-model file or table file.
	ErrParse = errors.New("parse error")

	// Inconsistent configuration. Fatal before any computation starts.
	ErrConfig = errors.New("config error")
)

// DomainError reports a single sample outside a valid range.
type DomainError struct {
	Quantity string
	Value    float64
	Min, Max float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s %g outside [%g, %g]", e.Quantity, e.Value, e.Min, e.Max)
}

func (e *DomainError) Unwrap() error { return ErrDomain }

// SolverError wraps an oracle failure with the cell it happened on.
// A negative DistanceDeg means the whole depth row.
type SolverError struct {
	Phase       string
	DepthKm     float64
	DistanceDeg float64
	Err         error
}

func (e *SolverError) Error() string {
	if e.DistanceDeg < 0 {
		return fmt.Sprintf("solver failed phase=%s depth=%g: %v", e.Phase, e.DepthKm, e.Err)
	}
	return fmt.Sprintf(
		"solver failed phase=%s depth=%g distance=%g: %v",
		e.Phase, e.DepthKm, e.DistanceDeg, e.Err,
	)
}

func (e *SolverError) Is(target error) bool { return target == ErrSolver }

func (e *SolverError) Unwrap() error { return e.Err }

// ParseError points at the offending line of an input file.
type ParseError struct {
	Source string
	Line   int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse %s: %s", e.Source, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// ConfigErrorf builds an error matching ErrConfig.
func ConfigErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
