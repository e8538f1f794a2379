package model

import "fmt"

// ThresholdLevel is the burned-area percentage used to locate the
// percolation threshold on a curve.
const ThresholdLevel = 50.0

// CurvePoint is one successful (density, burned percentage) measurement.
type CurvePoint struct {
	Density float64 `json:"density"`
	Value   float64 `json:"value"`
}

// SizeCurve holds the successful measurements for one grid size, ordered by
// the configured density order. Failed samples are absent, not zero.
type SizeCurve struct {
	Size   int          `json:"size"`
	Points []CurvePoint `json:"points"`
}

// Label returns the area notation used as the legend key, e.g. "20²".
func (c SizeCurve) Label() string {
	return fmt.Sprintf("%d²", c.Size)
}

// Len returns the number of points on the curve.
func (c SizeCurve) Len() int {
	return len(c.Points)
}

// Densities returns the x values of the curve in order.
func (c SizeCurve) Densities() []float64 {
	xs := make([]float64, len(c.Points))
	for i, p := range c.Points {
		xs[i] = p.Density
	}
	return xs
}

// Values returns the y values of the curve in order.
func (c SizeCurve) Values() []float64 {
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		ys[i] = p.Value
	}
	return ys
}

// ValueAt returns the value measured at density d, if present.
func (c SizeCurve) ValueAt(d float64) (float64, bool) {
	for _, p := range c.Points {
		if p.Density == d {
			return p.Value, true
		}
	}
	return 0, false
}

// Crossing returns the density at which the curve first reaches level,
// linearly interpolating between the two bracketing points. The second
// return value is false when the curve never reaches level.
//
// With level = ThresholdLevel this gives a simple estimate of the
// percolation threshold for the curve's grid size.
func (c SizeCurve) Crossing(level float64) (float64, bool) {
	for i, p := range c.Points {
		if p.Value < level {
			continue
		}
		if i == 0 {
			return p.Density, true
		}
		prev := c.Points[i-1]
		if p.Value == prev.Value {
			return p.Density, true
		}
		frac := (level - prev.Value) / (p.Value - prev.Value)
		return prev.Density + frac*(p.Density-prev.Density), true
	}
	return 0, false
}
