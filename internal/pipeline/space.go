package pipeline

import "github.com/nao1215/firesweep/internal/model"

// ParameterSpace returns the cross-product of exp's grid sizes and
// densities, outer-ordered by size and inner-ordered by density, both in
// configuration order. Each point's Index is its position in the result.
//
// Values are not range-checked; whatever the configuration holds is passed
// on to the engine.
func ParameterSpace(exp model.ExperimentConfig) []model.SamplePoint {
	sizes := exp.Sizes()
	densities := exp.Densities()

	points := make([]model.SamplePoint, 0, len(sizes)*len(densities))
	for _, size := range sizes {
		for _, density := range densities {
			points = append(points, model.SamplePoint{
				Index:   len(points),
				Size:    size,
				Density: density,
			})
		}
	}
	return points
}
