package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/firesweep/internal/engine"
	"github.com/nao1215/firesweep/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor evaluates many sample points concurrently.
// It uses errgroup to bound the number of engine processes in flight.
type BatchProcessor struct {
	// invoker evaluates a single sample.
	invoker engine.Invoker

	// concurrency is the maximum number of samples evaluated at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent samples.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor around invoker.
func NewBatchProcessor(invoker engine.Invoker, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		invoker:     invoker,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch evaluates points concurrently and returns the results in the
// order of points, regardless of completion order.
//
// Samples never fail the group: failures are carried in the results. If ctx
// is cancelled, samples not yet started are skipped and left out of the
// returned slice, and the context error is returned alongside the results
// that did complete.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, points []model.SamplePoint) ([]model.SampleResult, error) {
	return bp.ProcessBatchWithCallback(ctx, points, nil)
}

// ProcessBatchWithCallback is ProcessBatch with a callback invoked for each
// completed sample. The callback runs on the worker goroutine that finished
// the sample, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	points []model.SamplePoint,
	callback func(result model.SampleResult, index int),
) ([]model.SampleResult, error) {
	bp.logger.Info("starting batch processing",
		"total_samples", len(points),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine writes only its own slot, so no lock is needed.
	slots := make([]model.SampleResult, len(points))
	done := make([]bool, len(points))

	g := new(errgroup.Group)
	g.SetLimit(bp.concurrency)

	for i, point := range points {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			result := bp.invoker.Invoke(ctx, point)

			// A sample killed by cancellation is not a measurement.
			if !result.OK() && ctx.Err() != nil {
				return nil
			}

			slots[i] = result
			done[i] = true

			if callback != nil {
				callback(result, i)
			}
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	results := make([]model.SampleResult, 0, len(points))
	for i := range slots {
		if done[i] {
			results = append(results, slots[i])
		}
	}

	bp.logger.Info("batch processing complete",
		"total_samples", len(points),
		"completed", len(results),
		"elapsed", time.Since(startTime),
	)

	return results, ctx.Err()
}
