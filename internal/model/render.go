package model

import (
	"fmt"
	"math"
)

// TickRegime selects the tick granularity of the density axis.
type TickRegime string

const (
	// RegimeCoarse scans the full density range with wide ticks.
	RegimeCoarse TickRegime = "coarse"

	// RegimeFine inspects the neighborhood of the percolation threshold
	// with dense ticks over the configured density window.
	RegimeFine TickRegime = "fine"

	// RegimeAuto picks RegimeFine for narrow density windows and
	// RegimeCoarse otherwise.
	RegimeAuto TickRegime = "auto"
)

// ParseTickRegime converts a user-supplied name into a TickRegime.
func ParseTickRegime(s string) (TickRegime, error) {
	switch r := TickRegime(s); r {
	case RegimeCoarse, RegimeFine, RegimeAuto:
		return r, nil
	default:
		return "", fmt.Errorf("unknown tick regime %q (use 'coarse', 'fine' or 'auto')", s)
	}
}

// Axis describes one chart axis: its label, fixed range and tick spacing.
type Axis struct {
	Label     string  `json:"label"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	MajorStep float64 `json:"major_step"`
	MinorStep float64 `json:"minor_step"`
}

// MajorTicks returns the major tick positions within [Min, Max].
func (a Axis) MajorTicks() []float64 {
	return ticks(a.Min, a.Max, a.MajorStep)
}

// MinorTicks returns the minor tick positions within [Min, Max] that do not
// coincide with a major tick.
func (a Axis) MinorTicks() []float64 {
	major := make(map[float64]bool)
	for _, v := range a.MajorTicks() {
		major[v] = true
	}
	var minor []float64
	for _, v := range ticks(a.Min, a.Max, a.MinorStep) {
		if !major[v] {
			minor = append(minor, v)
		}
	}
	return minor
}

// ticks returns multiples of step in [lo, hi], rounded to suppress
// floating-point drift (0.1*3 is reported as 0.3, not 0.30000000000000004).
func ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	first := math.Ceil(roundTick(lo/step)) * step
	var out []float64
	for i := 0; ; i++ {
		v := roundTick(first + float64(i)*step)
		if v > hi+step*1e-9 {
			break
		}
		out = append(out, v)
	}
	return out
}

// roundTick rounds v to 9 decimal places.
func roundTick(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}

// Series is one plotted line. Key is the legend label.
type Series struct {
	Key        string    `json:"key"`
	Size       int       `json:"size"`
	X          []float64 `json:"x"`
	Y          []float64 `json:"y"`
	ColorIndex int       `json:"color_index"`
	LineWidth  float64   `json:"line_width"`
	MarkerSize float64   `json:"marker_size"`
}

// RenderSpec is a complete, backend-neutral chart description. Any charting
// backend can draw it without knowing how the curves were produced.
type RenderSpec struct {
	Title       string     `json:"title"`
	Subtitle    string     `json:"subtitle,omitempty"`
	Series      []Series   `json:"series"`
	X           Axis       `json:"x"`
	Y           Axis       `json:"y"`
	Regime      TickRegime `json:"regime"`
	LegendTitle string     `json:"legend_title"`
	LegendKeys  []string   `json:"legend_keys"`
	MajorGrid   bool       `json:"major_grid"`
	MinorGrid   bool       `json:"minor_grid"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
}
