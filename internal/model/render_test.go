package model

import (
	"slices"
	"testing"
)

// TestAxisTicks verifies tick generation without floating-point drift.
func TestAxisTicks(t *testing.T) {
	t.Parallel()

	t.Run("coarse density axis", func(t *testing.T) {
		t.Parallel()

		a := Axis{Min: 0, Max: 1, MajorStep: 0.1, MinorStep: 0.05}
		major := a.MajorTicks()
		want := []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}
		if !slices.Equal(major, want) {
			t.Errorf("expected %v, got %v", want, major)
		}

		minor := a.MinorTicks()
		if len(minor) != 10 {
			t.Fatalf("expected 10 minor ticks, got %d: %v", len(minor), minor)
		}
		if minor[0] != 0.05 || minor[9] != 0.95 {
			t.Errorf("unexpected minor ticks %v", minor)
		}
	})

	t.Run("window not aligned to zero", func(t *testing.T) {
		t.Parallel()

		a := Axis{Min: 0.3, Max: 0.5, MajorStep: 0.05, MinorStep: 0.01}
		major := a.MajorTicks()
		want := []float64{0.3, 0.35, 0.4, 0.45, 0.5}
		if !slices.Equal(major, want) {
			t.Errorf("expected %v, got %v", want, major)
		}
		if n := len(a.MinorTicks()); n != 16 {
			t.Errorf("expected 16 minor ticks, got %d", n)
		}
	})

	t.Run("burned area axis with headroom", func(t *testing.T) {
		t.Parallel()

		a := Axis{Min: 0, Max: 105, MajorStep: 10, MinorStep: 5}
		major := a.MajorTicks()
		if major[len(major)-1] != 100 {
			t.Errorf("expected last major tick 100, got %v", major[len(major)-1])
		}
		minor := a.MinorTicks()
		if minor[len(minor)-1] != 105 {
			t.Errorf("expected last minor tick 105, got %v", minor[len(minor)-1])
		}
	})

	t.Run("non-positive step yields no ticks", func(t *testing.T) {
		t.Parallel()

		a := Axis{Min: 0, Max: 1}
		if ticks := a.MajorTicks(); ticks != nil {
			t.Errorf("expected nil ticks, got %v", ticks)
		}
	})
}

// TestParseTickRegime verifies regime names.
func TestParseTickRegime(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"coarse", "fine", "auto"} {
		if _, err := ParseTickRegime(name); err != nil {
			t.Errorf("expected %q to parse, got %v", name, err)
		}
	}
	if _, err := ParseTickRegime("medium"); err == nil {
		t.Error("expected error for unknown regime")
	}
}
