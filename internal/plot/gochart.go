package plot

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/firesweep/internal/model"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoSeries is returned when a chart has nothing to draw.
var ErrNoSeries = errors.New("chart has no series with data")

// palette holds the series colours, cycled by Series.ColorIndex.
var palette = []string{
	"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd",
	"8c564b", "e377c2", "7f7f7f", "bcbd22", "17becf",
}

var (
	majorGridColor = drawing.ColorFromHex("b0b0b0")
	minorGridColor = drawing.ColorFromHex("e0e0e0")
)

// colorSlot maps a series colour index onto the palette.
func colorSlot(i int) int {
	if i < 0 {
		i = -i
	}
	return i % len(palette)
}

// seriesColor returns the palette colour for index i.
func seriesColor(i int) drawing.Color {
	return drawing.ColorFromHex(palette[colorSlot(i)])
}

// ChartRenderer draws a RenderSpec with go-chart.
type ChartRenderer struct {
	format Format
}

// Render implements Renderer.
func (r *ChartRenderer) Render(w io.Writer, spec model.RenderSpec) error {
	if len(spec.Series) == 0 {
		return ErrNoSeries
	}

	ch := buildChart(spec)

	provider := chart.PNG
	if r.format == FormatSVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("go-chart: %w", err)
	}
	return nil
}

// buildChart maps spec onto a go-chart Chart.
func buildChart(spec model.RenderSpec) chart.Chart {
	series := make([]chart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		col := seriesColor(s.ColorIndex)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Key,
			XValues: s.X,
			YValues: s.Y,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: s.LineWidth,
				DotColor:    col,
				DotWidth:    s.MarkerSize,
			},
		})
	}

	ch := chart.Chart{
		Title:      spec.Title,
		Width:      spec.Width,
		Height:     spec.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           spec.X.Label,
			Range:          &chart.ContinuousRange{Min: spec.X.Min, Max: spec.X.Max},
			Ticks:          axisTicks(spec.X),
			GridMajorStyle: gridStyle(majorGridColor, 1),
			GridMinorStyle: gridStyle(minorGridColor, 0.5),
			GridLines:      gridLines(spec.X, spec.MajorGrid, spec.MinorGrid),
		},
		YAxis: chart.YAxis{
			Name:           spec.Y.Label,
			Range:          &chart.ContinuousRange{Min: spec.Y.Min, Max: spec.Y.Max},
			Ticks:          axisTicks(spec.Y),
			GridMajorStyle: gridStyle(majorGridColor, 1),
			GridMinorStyle: gridStyle(minorGridColor, 0.5),
			GridLines:      gridLines(spec.Y, spec.MajorGrid, spec.MinorGrid),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch
}

// axisTicks labels the major ticks of a.
func axisTicks(a model.Axis) []chart.Tick {
	major := a.MajorTicks()
	ticks := make([]chart.Tick, 0, len(major))
	for _, v := range major {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return ticks
}

// gridLines lists the grid lines of a, minor lines first so majors draw on
// top of them.
func gridLines(a model.Axis, major, minor bool) []chart.GridLine {
	var lines []chart.GridLine
	if minor {
		for _, v := range a.MinorTicks() {
			lines = append(lines, chart.GridLine{IsMinor: true, Value: v})
		}
	}
	if major {
		for _, v := range a.MajorTicks() {
			lines = append(lines, chart.GridLine{Value: v})
		}
	}
	return lines
}

func gridStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: width,
	}
}
