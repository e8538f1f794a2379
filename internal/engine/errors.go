package engine

import (
	"errors"
	"fmt"

	"github.com/nao1215/firesweep/internal/model"
)

var (
	// ErrInvocation indicates the engine could not be started, was killed
	// by a timeout or cancellation, or exited with a nonzero status.
	ErrInvocation = errors.New("engine invocation failed")

	// ErrParse indicates the engine exited cleanly but stdout did not hold
	// a recognizable number.
	ErrParse = errors.New("engine output not parseable")
)

// SampleError describes why a single sample produced no value.
// It wraps ErrInvocation or ErrParse so callers can use errors.Is.
type SampleError struct {
	// Point is the sample that failed.
	Point model.SamplePoint

	// Kind classifies the failure.
	Kind model.FailureKind

	// Detail is the raw text behind the failure: captured stderr for
	// invocation failures, captured stdout for parse failures.
	Detail string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SampleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Point, e.Err)
}

// Unwrap returns the underlying error.
func (e *SampleError) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error into the structured record emitted to the
// observability channel.
func (e *SampleError) Diagnostic() model.Diagnostic {
	return model.Diagnostic{Point: e.Point, Kind: e.Kind, Detail: e.Detail}
}
