package pipeline

import (
	"context"
	"sync"

	"github.com/nao1215/firesweep/internal/model"
)

// fakeInvoker is an engine.Invoker driven by a function, recording every
// point it is asked to evaluate.
type fakeInvoker struct {
	mu     sync.Mutex
	calls  []model.SamplePoint
	diags  []model.Diagnostic
	result func(ctx context.Context, p model.SamplePoint) model.SampleResult
}

// Invoke implements engine.Invoker.
func (f *fakeInvoker) Invoke(ctx context.Context, p model.SamplePoint) model.SampleResult {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()

	r := f.result(ctx, p)
	if !r.OK() {
		f.mu.Lock()
		f.diags = append(f.diags, model.Diagnostic{Point: p, Kind: r.Failure.Kind, Detail: r.Failure.Cause})
		f.mu.Unlock()
	}
	return r
}

func (f *fakeInvoker) Calls() []model.SamplePoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SamplePoint(nil), f.calls...)
}

func (f *fakeInvoker) Diagnostics() []model.Diagnostic {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Diagnostic(nil), f.diags...)
}

// constant returns an invoker that always succeeds with v.
func constant(v float64) *fakeInvoker {
	return &fakeInvoker{result: func(_ context.Context, p model.SamplePoint) model.SampleResult {
		return model.NewSuccess(p, v)
	}}
}

// byDensity returns an invoker that succeeds with v except where fail
// returns a failure kind for the density.
func byDensity(v float64, fail func(d float64) model.FailureKind) *fakeInvoker {
	return &fakeInvoker{result: func(_ context.Context, p model.SamplePoint) model.SampleResult {
		if kind := fail(p.Density); kind != 0 {
			return model.NewFailure(p, kind, "stub failure")
		}
		return model.NewSuccess(p, v)
	}}
}

// curveLike is a deterministic stand-in for a percolation curve.
func curveLike() *fakeInvoker {
	return &fakeInvoker{result: func(_ context.Context, p model.SamplePoint) model.SampleResult {
		return model.NewSuccess(p, p.Density*100-float64(p.Size)/1000)
	}}
}
