package model

import (
	"fmt"
	"strconv"
)

// SamplePoint is one (grid size, density) pair submitted to the engine.
// Index is the point's position in the parameter space; it is what the
// curve assembler uses to restore ordering regardless of completion order.
type SamplePoint struct {
	Index   int     `json:"index"`
	Size    int     `json:"size"`
	Density float64 `json:"density"`
}

// String returns a compact identity such as "size=20 density=0.45".
func (p SamplePoint) String() string {
	return fmt.Sprintf("size=%d density=%s", p.Size, FormatDensity(p.Density))
}

// FormatDensity renders a density using the shortest representation that
// round-trips, so 0.5 becomes "0.5" and 1.0 becomes "1".
func FormatDensity(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// FailureKind classifies why a sample produced no value.
type FailureKind int

const (
	// FailureInvocation means the engine could not be started, timed out,
	// or exited with a nonzero status.
	FailureInvocation FailureKind = iota + 1

	// FailureParse means the engine exited cleanly but its stdout did not
	// contain a recognizable number.
	FailureParse
)

// String returns a human-readable representation of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureInvocation:
		return "invocation"
	case FailureParse:
		return "parse"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *FailureKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "invocation":
		*k = FailureInvocation
	case "parse":
		*k = FailureParse
	default:
		return fmt.Errorf("unknown failure kind %q", text)
	}
	return nil
}

// SampleFailure explains why a sample has no value.
type SampleFailure struct {
	Kind  FailureKind `json:"kind"`
	Cause string      `json:"cause"`
}

// SampleResult is the outcome of evaluating one SamplePoint.
// Exactly one of Value (when Failure is nil) or Failure is meaningful.
type SampleResult struct {
	Point   SamplePoint    `json:"point"`
	Value   float64        `json:"value"`
	Failure *SampleFailure `json:"failure,omitempty"`
}

// NewSuccess returns a result carrying the burned-area percentage v.
func NewSuccess(p SamplePoint, v float64) SampleResult {
	return SampleResult{Point: p, Value: v}
}

// NewFailure returns a result marking p as failed for the given reason.
func NewFailure(p SamplePoint, kind FailureKind, cause string) SampleResult {
	return SampleResult{
		Point:   p,
		Failure: &SampleFailure{Kind: kind, Cause: cause},
	}
}

// OK reports whether the sample produced a value.
func (r SampleResult) OK() bool {
	return r.Failure == nil
}

// Diagnostic is a structured record describing a failed sample.
// It is emitted exactly once, by the component that detected the failure.
type Diagnostic struct {
	Point  SamplePoint `json:"point"`
	Kind   FailureKind `json:"kind"`
	Detail string      `json:"detail"`
}
