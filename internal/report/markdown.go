package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/firesweep/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	// title heads the mermaid line chart.
	title string
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithChartTitle sets the title of the embedded mermaid chart.
func WithChartTitle(title string) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.title = title
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      "Burned area by tree density",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the sweep in Markdown format.
func (w *MarkdownWriter) Write(sweep *model.Sweep) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, sweep)
	w.writeSummary(md, sweep)
	w.writeThresholds(md, sweep)
	w.writeCurves(md, sweep)
	w.writeFailures(md, sweep)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with sweep information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, sweep *model.Sweep) {
	exp := sweep.Experiment

	md.H1("Firesweep Report")
	md.PlainText("")

	rows := [][]string{
		{"Burn Pattern", fmt.Sprintf("%s (%d neighbors)", exp.BurnPattern().DisplayName(), exp.BurnPattern().Neighbors())},
		{"Repeats", strconv.Itoa(exp.Repeats())},
		{"Grid Sizes", joinSizes(exp.Sizes())},
		{"Densities", densitySummary(exp)},
		{"Duration", sweep.Duration.String()},
		{"Status", w.getStatusText(sweep)},
	}
	if exp.EnginePath() != "" {
		rows = append([][]string{{"Engine", "`" + exp.EnginePath() + "`"}}, rows...)
	}
	if !sweep.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", sweep.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if sweep.ID != 0 {
		rows = append([][]string{{"Sweep ID", strconv.FormatInt(sweep.ID, 10)}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on sweep state.
func (w *MarkdownWriter) getStatusText(sweep *model.Sweep) string {
	switch {
	case sweep.Cancelled:
		return "⚠️ " + statusText(sweep)
	case sweep.Failed > 0:
		return "❌ " + statusText(sweep)
	default:
		return "✅ " + statusText(sweep)
	}
}

// writeSummary writes the sample counts with a pie chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, sweep *model.Sweep) {
	md.H2("Samples")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Succeeded", strconv.Itoa(sweep.Succeeded())},
			{"Failed", strconv.Itoa(sweep.Failed)},
			{"**Attempted**", "**" + strconv.Itoa(sweep.Attempted) + "**"},
		},
	})
	md.PlainText("")

	if sweep.Failed > 0 {
		w.writePieChart(md, sweep)
	}
	w.writeAlert(md, sweep)
}

// writePieChart writes a mermaid pie chart of sample outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, sweep *model.Sweep) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Sample Outcomes"),
		piechart.WithShowData(true),
	)
	if sweep.Succeeded() > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(sweep.Succeeded())) //nolint:gosec // count is non-negative
	}
	chart.LabelAndIntValue("Failed", uint64(sweep.Failed)) //nolint:gosec // count is non-negative

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching how the sweep ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, sweep *model.Sweep) {
	switch {
	case sweep.Attempted > 0 && sweep.Failed == sweep.Attempted:
		md.Caution("Every sample failed. Check the engine path and its arguments.")
	case sweep.Cancelled:
		md.Warningf("The sweep was cancelled after %d samples. Curves are partial.", sweep.Attempted)
	case sweep.Failed > 0:
		md.Importantf("%d sample(s) failed and are missing from the curves.", sweep.Failed)
	default:
		md.Tip("Every sample produced a value.")
	}
	md.PlainText("")
}

// writeThresholds writes the 50% crossing per grid size.
func (w *MarkdownWriter) writeThresholds(md *markdown.Markdown, sweep *model.Sweep) {
	md.H2("Threshold Estimates")
	md.PlainText("")
	md.PlainText("Density at which each curve first reaches 50% burned, linearly interpolated.")
	md.PlainText("")

	rows := make([][]string, 0, len(sweep.Curves))
	for _, c := range sweep.Curves {
		rows = append(rows, []string{c.Label(), strconv.Itoa(c.Len()), crossingText(c)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Grid Size", "Points", "Density at 50%"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCurves writes a mermaid line chart and the curve table.
func (w *MarkdownWriter) writeCurves(md *markdown.Markdown, sweep *model.Sweep) {
	md.H2("Curves")
	md.PlainText("")

	densities := sweep.Experiment.Densities()
	if chart, skipped := xyChart(w.title, densities, sweep.Curves); chart != "" {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart)
		md.PlainText("")
		if len(skipped) > 0 {
			md.Note("Curves with gaps are omitted from the chart: " + strings.Join(skipped, ", "))
			md.PlainText("")
		}
	}

	header := []string{"Density"}
	for _, c := range sweep.Curves {
		header = append(header, c.Label())
	}
	rows := make([][]string, 0, len(densities))
	for _, d := range densities {
		row := []string{model.FormatDensity(d)}
		for _, c := range sweep.Curves {
			if v, ok := c.ValueAt(d); ok {
				row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

// xyChart renders complete curves as a mermaid xychart. Mermaid line series
// cannot have gaps, so curves missing any density are returned as skipped.
// The chart is empty when no curve is complete.
func xyChart(title string, densities []float64, curves []model.SizeCurve) (string, []string) {
	var (
		lines   []string
		skipped []string
	)
	for _, c := range curves {
		if c.Len() != len(densities) {
			skipped = append(skipped, c.Label())
			continue
		}
		values := make([]string, c.Len())
		for i, p := range c.Points {
			values[i] = strconv.FormatFloat(p.Value, 'f', 2, 64)
		}
		lines = append(lines, "    line ["+strings.Join(values, ", ")+"]")
	}
	if len(lines) == 0 {
		return "", skipped
	}

	xs := make([]string, len(densities))
	for i, d := range densities {
		xs[i] = `"` + model.FormatDensity(d) + `"`
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	fmt.Fprintf(&sb, "    title %q\n", title)
	fmt.Fprintf(&sb, "    x-axis \"Tree Density\" [%s]\n", strings.Join(xs, ", "))
	sb.WriteString("    y-axis \"Average Burned Trees (%)\" 0 --> 105\n")
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String(), skipped
}

// writeFailures writes the failed samples with their causes.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, sweep *model.Sweep) {
	failures := sweep.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failed Samples")
	md.PlainText("")

	rows := make([][]string, len(failures))
	for i, f := range failures {
		rows[i] = []string{
			strconv.Itoa(f.Point.Size),
			model.FormatDensity(f.Point.Density),
			f.Failure.Kind.String(),
			truncateString(f.Failure.Cause, 80),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Size", "Density", "Kind", "Cause"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by firesweep*")
}
