package plot

import (
	"math"

	"github.com/nao1215/firesweep/internal/model"
)

const (
	// LegendTitle heads the legend of grid sizes.
	LegendTitle = "Grid Size"

	// XAxisLabel labels the density axis.
	XAxisLabel = "Tree Density (fraction)"

	// YAxisLabel labels the burned-area axis.
	YAxisLabel = "Average Burned Trees (%)"

	// YAxisMax leaves 5 units of headroom above 100%.
	YAxisMax = 105.0

	// AutoFineSpan is the widest density window that RegimeAuto still
	// renders with fine ticks.
	AutoFineSpan = 0.25
)

// Options controls the parts of the chart that are not derived from the
// curves themselves.
type Options struct {
	Title    string
	Subtitle string
	Regime   model.TickRegime
	Width    int
	Height   int
}

// regimeStyle is the tick and marker geometry of one regime.
type regimeStyle struct {
	major, minor float64
	marker       float64
	line         float64
}

var regimeStyles = map[model.TickRegime]regimeStyle{
	model.RegimeCoarse: {major: 0.1, minor: 0.05, marker: 3, line: 1.5},
	model.RegimeFine:   {major: 0.05, minor: 0.01, marker: 1.5, line: 1},
}

// ResolveRegime turns RegimeAuto into a concrete regime for a density
// window. Any other regime is returned unchanged.
func ResolveRegime(r model.TickRegime, lo, hi float64) model.TickRegime {
	if r != model.RegimeAuto {
		return r
	}
	if hi-lo <= AutoFineSpan {
		return model.RegimeFine
	}
	return model.RegimeCoarse
}

// fineWindow widens [lo, hi] outward to multiples of step so the axis
// carries at least two major ticks. The result stays inside [0, 1].
func fineWindow(lo, hi, step float64) (float64, float64) {
	minX := math.Floor(snapEpsilon(lo/step)) * step
	maxX := math.Ceil(snapEpsilon(hi/step)) * step
	if maxX-minX < step {
		minX -= step / 2
		maxX += step / 2
		minX = math.Floor(snapEpsilon(minX/step)) * step
		maxX = math.Ceil(snapEpsilon(maxX/step)) * step
	}
	minX, maxX = snapEpsilon(minX), snapEpsilon(maxX)

	switch {
	case minX < 0:
		minX, maxX = 0, math.Max(maxX, step)
	case maxX > 1:
		minX, maxX = math.Min(minX, snapEpsilon(1-step)), 1
	}
	return minX, maxX
}

// snapEpsilon rounds v to 9 decimal places so that quotients such as
// 0.35/0.05 land on whole numbers.
func snapEpsilon(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// Configure builds the chart description for curves.
//
// The coarse regime spans the full [0,1] density range; the fine regime
// spans exp's density window, widened to whole major ticks. Curves with no points are left out of both
// the series and the legend. Configure performs no I/O.
func Configure(exp model.ExperimentConfig, curves []model.SizeCurve, opts Options) model.RenderSpec {
	lo, hi := exp.DensitySpan()
	regime := ResolveRegime(opts.Regime, lo, hi)
	style, ok := regimeStyles[regime]
	if !ok {
		regime = model.RegimeCoarse
		style = regimeStyles[regime]
	}

	x := model.Axis{
		Label:     XAxisLabel,
		Min:       0,
		Max:       1,
		MajorStep: style.major,
		MinorStep: style.minor,
	}
	if regime == model.RegimeFine {
		x.Min, x.Max = fineWindow(lo, hi, style.major)
	}

	spec := model.RenderSpec{
		Title:    opts.Title,
		Subtitle: opts.Subtitle,
		X:        x,
		Y: model.Axis{
			Label:     YAxisLabel,
			Min:       0,
			Max:       YAxisMax,
			MajorStep: 10,
			MinorStep: 5,
		},
		Regime:      regime,
		LegendTitle: LegendTitle,
		MajorGrid:   true,
		MinorGrid:   true,
		Width:       opts.Width,
		Height:      opts.Height,
	}

	for _, c := range curves {
		if c.Len() == 0 {
			continue
		}
		spec.Series = append(spec.Series, model.Series{
			Key:        c.Label(),
			Size:       c.Size,
			X:          c.Densities(),
			Y:          c.Values(),
			ColorIndex: len(spec.Series),
			LineWidth:  style.line,
			MarkerSize: style.marker,
		})
		spec.LegendKeys = append(spec.LegendKeys, c.Label())
	}

	return spec
}
