package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/firesweep/internal/model"
)

// The tests below that execute stub scripts do not call t.Parallel:
// writing an executable while another test forks can fail with ETXTBSY.

// writeEngine writes a shell script that stands in for the engine.
func writeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub engine requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "engine.sh")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o700); err != nil { //nolint:gosec // test stub must be executable
		t.Fatalf("failed to write stub engine: %v", err)
	}
	return path
}

func newExperiment(t *testing.T, enginePath string) model.ExperimentConfig {
	t.Helper()
	return model.NewExperimentConfig([]int{10}, []float64{0, 0.5, 1}, 5, model.BurnPatternMoore, enginePath)
}

// collector records diagnostics safely across goroutines.
type collector struct {
	mu    sync.Mutex
	diags []model.Diagnostic
}

func (c *collector) add(d model.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

func (c *collector) all() []model.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Diagnostic(nil), c.diags...)
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	exp := model.NewExperimentConfig([]int{20}, []float64{0.45}, 100, model.BurnPatternVonNeumann, "/bin/engine")
	cmd := NewCommand(exp)

	tests := []struct {
		name  string
		point model.SamplePoint
		want  []string
	}{
		{
			name:  "typical point",
			point: model.SamplePoint{Size: 20, Density: 0.45},
			want:  []string{"--graphics-off", "--quiet", "-d", "0.45", "-c", "100", "-s", "20", "-b", "vonneumann"},
		},
		{
			name:  "density zero is passed unchanged",
			point: model.SamplePoint{Size: 20, Density: 0},
			want:  []string{"--graphics-off", "--quiet", "-d", "0", "-c", "100", "-s", "20", "-b", "vonneumann"},
		},
		{
			name:  "density one is passed unchanged",
			point: model.SamplePoint{Size: 1280, Density: 1},
			want:  []string{"--graphics-off", "--quiet", "-d", "1", "-c", "100", "-s", "1280", "-b", "vonneumann"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := cmd.Args(tt.point)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommandInvoke(t *testing.T) {
	t.Run("returns the printed percentage", func(t *testing.T) {
		path := writeEngine(t, `echo "37.5"`)
		diags := &collector{}
		cmd := NewCommand(newExperiment(t, path), WithDiagnostics(diags.add))

		point := model.SamplePoint{Index: 1, Size: 10, Density: 0.5}
		got := cmd.Invoke(context.Background(), point)
		if !got.OK() {
			t.Fatalf("Invoke() failed: %+v", got.Failure)
		}
		if got.Value != 37.5 {
			t.Errorf("Value = %v, want 37.5", got.Value)
		}
		if got.Point != point {
			t.Errorf("Point = %+v, want %+v", got.Point, point)
		}
		if n := len(diags.all()); n != 0 {
			t.Errorf("expected no diagnostics, got %d", n)
		}
	})

	t.Run("passes boundary densities to the engine exactly", func(t *testing.T) {
		dir := t.TempDir()
		record := filepath.Join(dir, "args.txt")
		path := writeEngine(t, `echo "$@" >> "`+record+`"; echo 1`)
		cmd := NewCommand(newExperiment(t, path))

		for i, d := range []float64{0, 1} {
			res := cmd.Invoke(context.Background(), model.SamplePoint{Index: i, Size: 10, Density: d})
			if !res.OK() {
				t.Fatalf("Invoke() failed: %+v", res.Failure)
			}
		}

		data, err := os.ReadFile(record) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read recorded args: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		want := []string{
			"--graphics-off --quiet -d 0 -c 5 -s 10 -b moore",
			"--graphics-off --quiet -d 1 -c 5 -s 10 -b moore",
		}
		if len(lines) != len(want) {
			t.Fatalf("recorded %d invocations, want %d", len(lines), len(want))
		}
		for i := range want {
			if lines[i] != want[i] {
				t.Errorf("invocation %d args = %q, want %q", i, lines[i], want[i])
			}
		}
	})

	t.Run("nonzero exit becomes an invocation failure with one diagnostic", func(t *testing.T) {
		path := writeEngine(t, `echo "grid too large" >&2; exit 3`)
		diags := &collector{}
		var logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))
		cmd := NewCommand(newExperiment(t, path), WithDiagnostics(diags.add), WithLogger(logger))

		point := model.SamplePoint{Index: 0, Size: 10, Density: 0.5}
		got := cmd.Invoke(context.Background(), point)
		if got.OK() {
			t.Fatal("expected failure")
		}
		if got.Failure.Kind != model.FailureInvocation {
			t.Errorf("Kind = %v, want invocation", got.Failure.Kind)
		}
		if !strings.Contains(got.Failure.Cause, "exit status 3") {
			t.Errorf("Cause = %q, want exit status", got.Failure.Cause)
		}

		all := diags.all()
		if len(all) != 1 {
			t.Fatalf("expected exactly one diagnostic, got %d", len(all))
		}
		if all[0].Point != point || all[0].Kind != model.FailureInvocation {
			t.Errorf("diagnostic = %+v", all[0])
		}
		if !strings.Contains(all[0].Detail, "grid too large") {
			t.Errorf("Detail = %q, want stderr text", all[0].Detail)
		}
		if c := strings.Count(logs.String(), `msg="engine invocation failed"`); c != 1 {
			t.Errorf("expected one warning log line, got %d:\n%s", c, logs.String())
		}
	})

	t.Run("unparseable stdout becomes a parse failure", func(t *testing.T) {
		path := writeEngine(t, `echo "garbage"`)
		diags := &collector{}
		cmd := NewCommand(newExperiment(t, path), WithDiagnostics(diags.add), WithLogger(slog.New(slog.DiscardHandler)))

		got := cmd.Invoke(context.Background(), model.SamplePoint{Size: 10, Density: 0.5})
		if got.OK() {
			t.Fatal("expected failure")
		}
		if got.Failure.Kind != model.FailureParse {
			t.Errorf("Kind = %v, want parse", got.Failure.Kind)
		}
		all := diags.all()
		if len(all) != 1 || all[0].Kind != model.FailureParse {
			t.Fatalf("diagnostics = %+v, want one parse diagnostic", all)
		}
		if strings.TrimSpace(all[0].Detail) != "garbage" {
			t.Errorf("Detail = %q, want raw stdout", all[0].Detail)
		}
	})

	t.Run("missing executable becomes an invocation failure", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "does-not-exist")
		cmd := NewCommand(newExperiment(t, missing), WithLogger(slog.New(slog.DiscardHandler)))

		got := cmd.Invoke(context.Background(), model.SamplePoint{Size: 10, Density: 0.5})
		if got.OK() || got.Failure.Kind != model.FailureInvocation {
			t.Fatalf("result = %+v, want invocation failure", got)
		}
	})

	t.Run("hung engine is killed by the timeout", func(t *testing.T) {
		path := writeEngine(t, `exec sleep 30`)
		cmd := NewCommand(newExperiment(t, path),
			WithTimeout(100*time.Millisecond),
			WithLogger(slog.New(slog.DiscardHandler)),
		)

		start := time.Now()
		got := cmd.Invoke(context.Background(), model.SamplePoint{Size: 10, Density: 0.5})
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Errorf("Invoke took %s, timeout not enforced", elapsed)
		}
		if got.OK() || got.Failure.Kind != model.FailureInvocation {
			t.Fatalf("result = %+v, want invocation failure", got)
		}
		if !strings.Contains(got.Failure.Cause, "timed out") {
			t.Errorf("Cause = %q, want timeout", got.Failure.Cause)
		}
	})

	t.Run("cancelled sample is not reported", func(t *testing.T) {
		path := writeEngine(t, `echo 1`)
		diags := &collector{}
		var logs bytes.Buffer
		cmd := NewCommand(newExperiment(t, path),
			WithDiagnostics(diags.add),
			WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := cmd.Invoke(ctx, model.SamplePoint{Size: 10, Density: 0.5})
		if got.OK() || got.Failure.Kind != model.FailureInvocation {
			t.Fatalf("result = %+v, want invocation failure", got)
		}
		if n := len(diags.all()); n != 0 {
			t.Errorf("expected no diagnostics, got %d", n)
		}
		if logs.Len() != 0 {
			t.Errorf("expected no log output, got:\n%s", logs.String())
		}
	})
}

func TestCommandRun(t *testing.T) {
	t.Run("cancelled context is reported as cancellation", func(t *testing.T) {
		path := writeEngine(t, `echo 1`)
		cmd := NewCommand(newExperiment(t, path))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := cmd.Run(ctx, model.SamplePoint{Size: 10, Density: 0.5})
		if !errors.Is(err, ErrInvocation) {
			t.Fatalf("Run() error = %v, want ErrInvocation", err)
		}
		var sampleErr *SampleError
		if !errors.As(err, &sampleErr) {
			t.Fatalf("Run() error is %T, want *SampleError", err)
		}
		if !strings.Contains(err.Error(), "cancelled") {
			t.Errorf("error = %q, want cancellation", err)
		}
	})

	t.Run("spawn rate limiter honours cancellation", func(t *testing.T) {
		path := writeEngine(t, `echo 1`)
		cmd := NewCommand(newExperiment(t, path), WithSpawnRate(0.001))

		if _, err := cmd.Run(context.Background(), model.SamplePoint{Size: 10}); err != nil {
			t.Fatalf("first Run() unexpected error: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := cmd.Run(ctx, model.SamplePoint{Size: 10})
		if !errors.Is(err, ErrInvocation) {
			t.Fatalf("Run() error = %v, want ErrInvocation", err)
		}
	})
}

func TestSampleError(t *testing.T) {
	t.Parallel()

	point := model.SamplePoint{Index: 3, Size: 40, Density: 0.25}
	err := &SampleError{Point: point, Kind: model.FailureParse, Detail: "oops", Err: ErrParse}

	if !errors.Is(err, ErrParse) {
		t.Error("SampleError should unwrap to ErrParse")
	}
	if got := err.Error(); !strings.HasPrefix(got, "size=40 density=0.25") {
		t.Errorf("Error() = %q", got)
	}
	d := err.Diagnostic()
	if d.Point != point || d.Kind != model.FailureParse || d.Detail != "oops" {
		t.Errorf("Diagnostic() = %+v", d)
	}
}
