package pipeline

import (
	"testing"

	"github.com/nao1215/firesweep/internal/model"
)

func TestParameterSpace(t *testing.T) {
	t.Parallel()

	t.Run("is the size-major cross product in configuration order", func(t *testing.T) {
		t.Parallel()

		exp := model.NewExperimentConfig([]int{40, 20}, []float64{0.1, 0.2, 0.3}, 5, model.BurnPatternMoore, "engine")
		got := ParameterSpace(exp)

		want := []model.SamplePoint{
			{Index: 0, Size: 40, Density: 0.1},
			{Index: 1, Size: 40, Density: 0.2},
			{Index: 2, Size: 40, Density: 0.3},
			{Index: 3, Size: 20, Density: 0.1},
			{Index: 4, Size: 20, Density: 0.2},
			{Index: 5, Size: 20, Density: 0.3},
		}
		if len(got) != len(want) {
			t.Fatalf("got %d points, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("passes out of range values through", func(t *testing.T) {
		t.Parallel()

		exp := model.NewExperimentConfig([]int{-5}, []float64{-0.5, 1.5}, 1, model.BurnPatternMoore, "engine")
		got := ParameterSpace(exp)
		if len(got) != 2 || got[0].Size != -5 || got[0].Density != -0.5 || got[1].Density != 1.5 {
			t.Errorf("ParameterSpace() = %+v", got)
		}
	})

	t.Run("is empty when there are no sizes", func(t *testing.T) {
		t.Parallel()

		exp := model.NewExperimentConfig(nil, []float64{0.5}, 1, model.BurnPatternMoore, "engine")
		if got := ParameterSpace(exp); len(got) != 0 {
			t.Errorf("expected no points, got %d", len(got))
		}
	})
}
