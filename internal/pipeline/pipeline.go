package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/firesweep/internal/engine"
	"github.com/nao1215/firesweep/internal/model"
)

// Sweeper runs every sample of an experiment and assembles the curves.
type Sweeper struct {
	// invoker evaluates a single sample.
	invoker engine.Invoker

	// workers is the number of samples evaluated at once. One means the
	// strictly sequential, size-major order.
	workers int

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// progress receives human-facing progress lines. Nil disables them.
	progress io.Writer

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

// Option is a function that configures a Sweeper.
type Option func(*Sweeper)

// WithLogger sets a custom logger for the sweeper.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// WithWorkers sets how many samples run concurrently.
// Values below one are ignored.
func WithWorkers(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress sets the writer that receives per-size progress lines.
func WithProgress(w io.Writer) Option {
	return func(s *Sweeper) {
		s.progress = w
	}
}

// New creates a Sweeper that evaluates samples with invoker.
func New(invoker engine.Invoker, opts ...Option) *Sweeper {
	s := &Sweeper{
		invoker: invoker,
		workers: 1,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Run evaluates every point of exp's parameter space and returns the sweep.
//
// Sample failures are recorded in the sweep and never stop it. If ctx is
// cancelled, Run stops issuing samples and returns the partial sweep,
// marked cancelled, together with an error wrapping the context error.
func (s *Sweeper) Run(ctx context.Context, exp model.ExperimentConfig) (*model.Sweep, error) {
	points := ParameterSpace(exp)
	sweep := &model.Sweep{
		StartedAt:  s.now(),
		Experiment: exp,
	}

	s.logger.Info("starting sweep",
		"sizes", exp.Sizes(),
		"densities", len(exp.Densities()),
		"repeats", exp.Repeats(),
		"burn_pattern", exp.BurnPattern(),
		"samples", len(points),
		"workers", s.workers,
	)

	var (
		results []model.SampleResult
		err     error
	)
	if s.workers > 1 {
		results, err = s.runConcurrent(ctx, exp, points)
	} else {
		results, err = s.runSequential(ctx, points)
	}

	sweep.Results = results
	sweep.Attempted = len(results)
	for _, r := range results {
		if !r.OK() {
			sweep.Failed++
		}
	}
	sweep.Curves = AssembleCurves(exp, results)
	sweep.Duration = s.now().Sub(sweep.StartedAt)

	if err != nil {
		sweep.Cancelled = true
		s.logger.Warn("sweep cancelled",
			"completed", sweep.Attempted,
			"total", len(points),
			"reason", err,
		)
		return sweep, fmt.Errorf("sweep cancelled after %d of %d samples: %w", sweep.Attempted, len(points), err)
	}

	s.logger.Info("sweep complete",
		"samples", sweep.Attempted,
		"failed", sweep.Failed,
		"elapsed", sweep.Duration,
	)

	return sweep, nil
}

// runSequential issues samples one at a time in parameter-space order.
func (s *Sweeper) runSequential(ctx context.Context, points []model.SamplePoint) ([]model.SampleResult, error) {
	results := make([]model.SampleResult, 0, len(points))

	for i, point := range points {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if i == 0 || points[i-1].Size != point.Size {
			s.announce(point.Size)
		}

		result := s.invoker.Invoke(ctx, point)
		if !result.OK() && ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, result)
	}

	return results, nil
}

// runConcurrent hands the whole parameter space to a BatchProcessor.
// Progress is announced once per size up front, since sizes interleave.
func (s *Sweeper) runConcurrent(ctx context.Context, exp model.ExperimentConfig, points []model.SamplePoint) ([]model.SampleResult, error) {
	for _, size := range exp.Sizes() {
		s.announce(size)
	}

	bp := NewBatchProcessor(s.invoker,
		WithConcurrency(s.workers),
		WithBatchLogger(s.logger),
	)
	return bp.ProcessBatch(ctx, points)
}

// announce reports that samples for size are about to run.
func (s *Sweeper) announce(size int) {
	s.logger.Info("running simulations", "size", size)
	if s.progress != nil {
		fmt.Fprintf(s.progress, "Running simulations for grid size %d...\n", size) //nolint:errcheck // progress output is best effort
	}
}
