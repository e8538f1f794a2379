package model

import (
	"encoding/json"
	"testing"
)

func TestFormatDensity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "zero is passed through", in: 0, want: "0"},
		{name: "one is passed through", in: 1.0, want: "1"},
		{name: "half uses the shortest form", in: 0.5, want: "0.5"},
		{name: "fine steps are not padded", in: 0.41, want: "0.41"},
		{name: "out of range values are not clamped", in: 1.5, want: "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatDensity(tt.in); got != tt.want {
				t.Errorf("FormatDensity(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSampleResult(t *testing.T) {
	t.Parallel()

	p := SamplePoint{Index: 3, Size: 20, Density: 0.45}

	t.Run("success carries the value", func(t *testing.T) {
		t.Parallel()
		r := NewSuccess(p, 12.5)
		if !r.OK() || r.Value != 12.5 {
			t.Errorf("unexpected result %+v", r)
		}
	})

	t.Run("failure carries kind and cause", func(t *testing.T) {
		t.Parallel()
		r := NewFailure(p, FailureParse, "not a number")
		if r.OK() {
			t.Fatal("expected failure")
		}
		if r.Failure.Kind != FailureParse || r.Failure.Cause != "not a number" {
			t.Errorf("unexpected failure %+v", r.Failure)
		}
	})

	t.Run("point identity is readable", func(t *testing.T) {
		t.Parallel()
		if got := p.String(); got != "size=20 density=0.45" {
			t.Errorf("unexpected identity %q", got)
		}
	})

	t.Run("failure kind is written as text", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(NewFailure(p, FailureInvocation, "exit status 1"))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		var back SampleResult
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if back.Failure == nil || back.Failure.Kind != FailureInvocation {
			t.Errorf("expected invocation failure after decoding %s", data)
		}
	})

	t.Run("unknown failure kind is rejected", func(t *testing.T) {
		t.Parallel()
		var k FailureKind
		if err := k.UnmarshalText([]byte("segfault")); err == nil {
			t.Error("expected error for unknown kind")
		}
	})
}
