package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/firesweep/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SweepDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newTestSweep creates a sweep whose middle size has no successful points.
func newTestSweep(pattern model.BurnPattern, started time.Time) *model.Sweep {
	exp := model.NewExperimentConfig([]int{20, 40, 80}, []float64{0.3, 0.4, 0.5}, 50, pattern, "/opt/engine")
	return &model.Sweep{
		StartedAt:  started,
		Duration:   2500 * time.Millisecond,
		Experiment: exp,
		Results: []model.SampleResult{
			model.NewSuccess(model.SamplePoint{Index: 0, Size: 20, Density: 0.3}, 12.5),
		},
		Curves: []model.SizeCurve{
			{Size: 20, Points: []model.CurvePoint{{Density: 0.3, Value: 12.5}, {Density: 0.4, Value: 48}, {Density: 0.5, Value: 91}}},
			{Size: 40, Points: nil},
			{Size: 80, Points: []model.CurvePoint{{Density: 0.3, Value: 3}, {Density: 0.5, Value: 99}}},
		},
		Attempted: 9,
		Failed:    4,
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveAndGetSweep tests the round trip of a sweep through the database.
func TestSaveAndGetSweep(t *testing.T) {
	t.Parallel()

	t.Run("restores experiment, counts and curves", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		started := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
		sweep := newTestSweep(model.BurnPatternVonNeumann, started)

		id, err := db.SaveSweep(ctx, sweep)
		if err != nil {
			t.Fatalf("SaveSweep() error: %v", err)
		}
		if id == 0 || sweep.ID != id {
			t.Fatalf("SaveSweep() id = %d, sweep.ID = %d", id, sweep.ID)
		}

		got, err := db.GetSweep(ctx, id)
		if err != nil {
			t.Fatalf("GetSweep() error: %v", err)
		}

		if !got.StartedAt.Equal(started) || got.Duration != sweep.Duration {
			t.Errorf("times = %v / %v, want %v / %v", got.StartedAt, got.Duration, started, sweep.Duration)
		}
		if got.Attempted != 9 || got.Failed != 4 || got.Cancelled {
			t.Errorf("counts = %d/%d/%v", got.Attempted, got.Failed, got.Cancelled)
		}
		if got.Experiment.BurnPattern() != model.BurnPatternVonNeumann || got.Experiment.Repeats() != 50 {
			t.Errorf("experiment = %+v", got.Experiment)
		}
		if got.Results != nil {
			t.Error("per-sample results must not be stored")
		}

		if len(got.Curves) != 3 {
			t.Fatalf("got %d curves, want 3", len(got.Curves))
		}
		for i, want := range sweep.Curves {
			c := got.Curves[i]
			if c.Size != want.Size || c.Len() != want.Len() {
				t.Fatalf("curve %d = %+v, want %+v", i, c, want)
			}
			for j := range want.Points {
				if c.Points[j] != want.Points[j] {
					t.Errorf("curve %d point %d = %+v, want %+v", i, j, c.Points[j], want.Points[j])
				}
			}
		}
	})

	t.Run("stores cancellation", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		sweep := newTestSweep(model.BurnPatternMoore, time.Now())
		sweep.Cancelled = true

		id, err := db.SaveSweep(context.Background(), sweep)
		if err != nil {
			t.Fatal(err)
		}
		got, err := db.GetSweep(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Cancelled {
			t.Error("expected cancelled sweep")
		}
	})

	t.Run("missing sweep returns ErrSweepNotFound", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if _, err := db.GetSweep(context.Background(), 42); !errors.Is(err, ErrSweepNotFound) {
			t.Errorf("GetSweep() error = %v, want ErrSweepNotFound", err)
		}
	})
}

// TestListSweeps tests history listing.
func TestListSweeps(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 4 {
		pattern := model.BurnPatternMoore
		if i%2 == 1 {
			pattern = model.BurnPatternVonNeumann
		}
		if _, err := db.SaveSweep(ctx, newTestSweep(pattern, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("SaveSweep() error: %v", err)
		}
	}

	t.Run("lists newest first", func(t *testing.T) {
		t.Parallel()

		got, err := db.ListSweeps(ctx, 0)
		if err != nil {
			t.Fatalf("ListSweeps() error: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("got %d sweeps, want 4", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].ID <= got[i].ID {
				t.Errorf("sweeps not newest first: %d before %d", got[i-1].ID, got[i].ID)
			}
		}
		if got[0].CurvePoints != 5 {
			t.Errorf("CurvePoints = %d, want 5", got[0].CurvePoints)
		}
		if got[0].Experiment.BurnPattern() != model.BurnPatternVonNeumann {
			t.Errorf("newest pattern = %s", got[0].Experiment.BurnPattern())
		}
	})

	t.Run("honours the limit", func(t *testing.T) {
		t.Parallel()

		got, err := db.ListSweeps(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("got %d sweeps, want 2", len(got))
		}
	})

	t.Run("loads the latest full sweeps", func(t *testing.T) {
		t.Parallel()

		got, err := db.LatestSweeps(ctx, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID <= got[1].ID {
			t.Fatalf("LatestSweeps() = %d sweeps", len(got))
		}
		if len(got[0].Curves) != 3 {
			t.Errorf("expected curves to be loaded")
		}
	})
}

// TestDeleteSweep tests removing a sweep.
func TestDeleteSweep(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveSweep(ctx, newTestSweep(model.BurnPatternMoore, time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteSweep(ctx, id); err != nil {
		t.Fatalf("DeleteSweep() error: %v", err)
	}
	if _, err := db.GetSweep(ctx, id); !errors.Is(err, ErrSweepNotFound) {
		t.Errorf("GetSweep() after delete error = %v", err)
	}
	if err := db.DeleteSweep(ctx, id); !errors.Is(err, ErrSweepNotFound) {
		t.Errorf("second DeleteSweep() error = %v, want ErrSweepNotFound", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		zero  bool
	}{
		{input: "2026-01-02T03:04:05.123456789Z"},
		{input: "2026-01-02 03:04:05"},
		{input: "2026-01-02T03:04:05"},
		{input: "not a time", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
