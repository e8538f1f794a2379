package pipeline

import "github.com/nao1215/firesweep/internal/model"

// AssembleCurves builds one SizeCurve per configured grid size from results.
//
// Results are placed by SamplePoint.Index, so their order in the slice does
// not matter and the same size may appear twice in the configuration. Each
// curve walks its densities in configuration order and keeps only
// successful samples; failed or missing samples leave a gap. Failures were
// already reported by the invoker and are not reported again here.
func AssembleCurves(exp model.ExperimentConfig, results []model.SampleResult) []model.SizeCurve {
	sizes := exp.Sizes()
	densities := exp.Densities()

	slots := make([]*model.SampleResult, len(sizes)*len(densities))
	for i := range results {
		idx := results[i].Point.Index
		if idx < 0 || idx >= len(slots) {
			continue
		}
		slots[idx] = &results[i]
	}

	curves := make([]model.SizeCurve, 0, len(sizes))
	for s, size := range sizes {
		curve := model.SizeCurve{Size: size}
		for d, density := range densities {
			r := slots[s*len(densities)+d]
			if r == nil || !r.OK() {
				continue
			}
			curve.Points = append(curve.Points, model.CurvePoint{
				Density: density,
				Value:   r.Value,
			})
		}
		curves = append(curves, curve)
	}
	return curves
}
