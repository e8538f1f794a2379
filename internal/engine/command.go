package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/firesweep/internal/model"
	"golang.org/x/time/rate"
)

// waitDelay bounds how long Run waits for the engine's output pipes to close
// after the process has been killed by a timeout or cancellation.
const waitDelay = 5 * time.Second

// Invoker evaluates one sample. Implementations must not return partial
// results: every call yields either a value or a failure for point.
type Invoker interface {
	Invoke(ctx context.Context, point model.SamplePoint) model.SampleResult
}

// Command invokes the external engine once per sample.
// It is safe for concurrent use; every call starts its own process.
type Command struct {
	// path is the engine executable.
	path string

	// repeats is passed as -c.
	repeats int

	// pattern is passed as -b.
	pattern model.BurnPattern

	// timeout bounds a single invocation. Zero disables it.
	timeout time.Duration

	// limiter paces process launches. Nil means unlimited.
	limiter *rate.Limiter

	// logger receives warnings for failed samples.
	logger *slog.Logger

	// onDiagnostic, if set, receives one Diagnostic per failed sample.
	onDiagnostic func(model.Diagnostic)
}

// Option configures a Command.
type Option func(*Command)

// WithTimeout bounds each engine invocation. A non-positive duration
// disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Command) {
		if d > 0 {
			c.timeout = d
		} else {
			c.timeout = 0
		}
	}
}

// WithSpawnRate limits how many engine processes are started per second.
// A non-positive rate means unlimited.
func WithSpawnRate(perSecond float64) Option {
	return func(c *Command) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets the logger that receives failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Command) {
		c.logger = logger
	}
}

// WithDiagnostics registers a callback that receives one Diagnostic per
// failed sample. The callback may be invoked from several goroutines when
// the sweep runs with more than one worker.
func WithDiagnostics(fn func(model.Diagnostic)) Option {
	return func(c *Command) {
		c.onDiagnostic = fn
	}
}

// NewCommand creates a Command for the engine, repeat count and burn pattern
// of exp.
func NewCommand(exp model.ExperimentConfig, opts ...Option) *Command {
	c := &Command{
		path:    exp.EnginePath(),
		repeats: exp.Repeats(),
		pattern: exp.BurnPattern(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Args returns the engine arguments for point. Density and size are passed
// through exactly as configured; boundary values such as 0 and 1 are not
// adjusted.
func (c *Command) Args(point model.SamplePoint) []string {
	return []string{
		"--graphics-off",
		"--quiet",
		"-d", model.FormatDensity(point.Density),
		"-c", strconv.Itoa(c.repeats),
		"-s", strconv.Itoa(point.Size),
		"-b", c.pattern.String(),
	}
}

// Run executes the engine for point and returns the parsed percentage.
// Failures are returned as *SampleError wrapping ErrInvocation or ErrParse.
// Run does not log or emit diagnostics; Invoke does.
func (c *Command) Run(ctx context.Context, point model.SamplePoint) (float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, &SampleError{
				Point: point,
				Kind:  model.FailureInvocation,
				Err:   fmt.Errorf("%w: not started: %v", ErrInvocation, err),
			}
		}
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.path, c.Args(point)...) //nolint:gosec // engine path is user configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		return 0, &SampleError{
			Point:  point,
			Kind:   model.FailureInvocation,
			Detail: stderr.String(),
			Err:    c.classify(ctx, runCtx, err, stderr.String()),
		}
	}

	value, err := ParseOutput(stdout.String())
	if err != nil {
		return 0, &SampleError{
			Point:  point,
			Kind:   model.FailureParse,
			Detail: stdout.String(),
			Err:    err,
		}
	}

	return value, nil
}

// classify turns an exec error into an ErrInvocation-wrapping error that
// says whether the engine timed out, was cancelled, exited nonzero or
// never started.
func (c *Command) classify(parent, runCtx context.Context, err error, stderr string) error {
	switch {
	case parent.Err() != nil:
		return fmt.Errorf("%w: cancelled: %v", ErrInvocation, parent.Err())
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: timed out after %s", ErrInvocation, c.timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := firstLine(stderr)
		if msg == "" {
			return fmt.Errorf("%w: exit status %d", ErrInvocation, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: exit status %d: %s", ErrInvocation, exitErr.ExitCode(), msg)
	}

	return fmt.Errorf("%w: %v", ErrInvocation, err)
}

// Invoke executes the engine for point and never fails: errors become a
// failed SampleResult after being reported once through the logger and the
// diagnostics callback. Samples interrupted by ctx are returned as failures
// without a report.
func (c *Command) Invoke(ctx context.Context, point model.SamplePoint) model.SampleResult {
	start := time.Now()

	value, err := c.Run(ctx, point)
	if err == nil {
		c.logger.Debug("sample completed",
			"size", point.Size,
			"density", point.Density,
			"value", value,
			"elapsed", time.Since(start),
		)
		return model.NewSuccess(point, value)
	}

	var sampleErr *SampleError
	if !errors.As(err, &sampleErr) {
		sampleErr = &SampleError{Point: point, Kind: model.FailureInvocation, Err: err}
	}

	// A sample killed by cancellation is not a measurement failure.
	if ctx.Err() == nil {
		c.report(sampleErr)
	}
	return model.NewFailure(point, sampleErr.Kind, sampleErr.Err.Error())
}

// report emits the diagnostic for a failed sample.
func (c *Command) report(e *SampleError) {
	switch e.Kind {
	case model.FailureParse:
		c.logger.Warn("engine output not parseable",
			"size", e.Point.Size,
			"density", e.Point.Density,
			"raw", e.Detail,
		)
	default:
		c.logger.Warn("engine invocation failed",
			"size", e.Point.Size,
			"density", e.Point.Density,
			"error", e.Err,
			"stderr", e.Detail,
		)
	}

	if c.onDiagnostic != nil {
		c.onDiagnostic(e.Diagnostic())
	}
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
