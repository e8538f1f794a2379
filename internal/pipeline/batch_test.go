package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/firesweep/internal/model"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(constant(1))
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(constant(1), WithConcurrency(8))
		if bp.concurrency != 8 {
			t.Errorf("expected concurrency 8, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(constant(1), WithConcurrency(-1))
		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	exp := model.NewExperimentConfig([]int{10, 20, 30}, []float64{0.1, 0.2, 0.3, 0.4}, 1, model.BurnPatternMoore, "engine")
	points := ParameterSpace(exp)

	t.Run("returns results in point order despite completion order", func(t *testing.T) {
		t.Parallel()

		// Later points finish first.
		inv := &fakeInvoker{result: func(_ context.Context, p model.SamplePoint) model.SampleResult {
			time.Sleep(time.Duration(len(points)-p.Index) * time.Millisecond)
			return model.NewSuccess(p, float64(p.Index))
		}}

		results, err := NewBatchProcessor(inv, WithConcurrency(6), WithBatchLogger(quietLogger())).
			ProcessBatch(context.Background(), points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != len(points) {
			t.Fatalf("got %d results, want %d", len(results), len(points))
		}
		for i, r := range results {
			if r.Point != points[i] || r.Value != float64(i) {
				t.Errorf("result %d = %+v", i, r)
			}
		}
	})

	t.Run("never exceeds the concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		inv := &fakeInvoker{result: func(_ context.Context, p model.SamplePoint) model.SampleResult {
			n := inFlight.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return model.NewSuccess(p, 1)
		}}

		_, err := NewBatchProcessor(inv, WithConcurrency(3), WithBatchLogger(quietLogger())).
			ProcessBatch(context.Background(), points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 3 {
			t.Errorf("peak concurrency %d exceeds limit 3", peak.Load())
		}
	})

	t.Run("keeps failures in the results", func(t *testing.T) {
		t.Parallel()

		inv := byDensity(5, func(d float64) model.FailureKind {
			if d == 0.3 {
				return model.FailureParse
			}
			return 0
		})

		results, err := NewBatchProcessor(inv, WithBatchLogger(quietLogger())).ProcessBatch(context.Background(), points)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		failed := 0
		for _, r := range results {
			if !r.OK() {
				failed++
			}
		}
		if len(results) != len(points) || failed != 3 {
			t.Errorf("got %d results with %d failures, want %d with 3", len(results), failed, len(points))
		}
	})

	t.Run("skips everything when already cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		inv := constant(1)
		results, err := NewBatchProcessor(inv, WithBatchLogger(quietLogger())).ProcessBatch(ctx, points)
		if err == nil {
			t.Error("expected context error")
		}
		if len(results) != 0 || len(inv.Calls()) != 0 {
			t.Errorf("expected no work, got %d results and %d calls", len(results), len(inv.Calls()))
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests the callback variant.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	exp := model.NewExperimentConfig([]int{10, 20}, []float64{0.25, 0.75}, 1, model.BurnPatternVonNeumann, "engine")
	points := ParameterSpace(exp)

	var mu sync.Mutex
	seen := make(map[int]bool)

	_, err := NewBatchProcessor(constant(3), WithConcurrency(2), WithBatchLogger(quietLogger())).
		ProcessBatchWithCallback(context.Background(), points, func(r model.SampleResult, index int) {
			mu.Lock()
			defer mu.Unlock()
			if r.Point.Index != index {
				t.Errorf("callback index %d does not match point index %d", index, r.Point.Index)
			}
			seen[index] = true
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != len(points) {
		t.Errorf("callback called for %d points, want %d", len(seen), len(points))
	}
}
