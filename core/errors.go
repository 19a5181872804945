package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is wrapped by every parameter validation failure.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrGenerationAborted is returned when a generation is cancelled
	// before it completes, usually because newer parameters arrived.
	ErrGenerationAborted = errors.New("generation aborted")

	// ErrNumericDegenerate marks displacements large enough to fold the
	// surface. It is reported as a warning, the mesh is still produced.
	ErrNumericDegenerate = errors.New("numeric degenerate displacement")
)

// ParamError describes a single rejected generation parameter.
type ParamError struct {
	Field  string
	Reason string
	Value  any
}

func (e *ParamError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// DegenerateError summarises vertices whose total displacement exceeded the
// sanity bound during one generation.
type DegenerateError struct {
	Count  int     // Vertices over the bound
	MaxAbs float64 // Largest absolute displacement on the unit sphere
	Bound  float64
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("%d vertices displaced beyond %.3f (max %.4f)", e.Count, e.Bound, e.MaxAbs)
}

func (e *DegenerateError) Unwrap() error { return ErrNumericDegenerate }
