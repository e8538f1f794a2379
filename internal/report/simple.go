package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/firesweep/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SimpleWriter outputs human-readable text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// printer formats counts with thousands separators.
	printer *message.Printer

	// verbose adds the per-size curve tables.
	verbose bool

	// maxFailures caps the listed failed samples. Zero lists all.
	maxFailures int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the full curve values.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMaxFailures caps how many failed samples are listed.
func WithMaxFailures(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if n >= 0 {
			w.maxFailures = n
		}
	}
}

// WithLanguage sets the language used for number formatting.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		printer:     message.NewPrinter(language.English),
		maxFailures: 20,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the sweep in human-readable format.
func (w *SimpleWriter) Write(sweep *model.Sweep) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, sweep)
	w.writeThresholds(&sb, sweep)
	if w.verbose {
		w.writeCurves(&sb, sweep)
	}
	w.writeFailures(&sb, sweep)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// section writes a section title between rules.
func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with sweep information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, sweep *model.Sweep) {
	exp := sweep.Experiment

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          FIRESWEEP REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if sweep.ID != 0 {
		fmt.Fprintf(sb, "Sweep ID:      %d\n", sweep.ID)
	}
	if exp.EnginePath() != "" {
		fmt.Fprintf(sb, "Engine:        %s\n", exp.EnginePath())
	}
	fmt.Fprintf(sb, "Burn Pattern:  %s (%d neighbors)\n", exp.BurnPattern().DisplayName(), exp.BurnPattern().Neighbors())
	sb.WriteString(w.printer.Sprintf("Repeats:       %d\n", exp.Repeats()))
	fmt.Fprintf(sb, "Grid Sizes:    %s\n", joinSizes(exp.Sizes()))
	fmt.Fprintf(sb, "Densities:     %s\n", densitySummary(exp))
	if !sweep.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:       %s\n", sweep.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "Duration:      %s\n", sweep.Duration.Round(time.Millisecond))
	sb.WriteString(w.printer.Sprintf("Samples:       %d attempted, %d succeeded, %d failed\n",
		sweep.Attempted, sweep.Succeeded(), sweep.Failed))
	fmt.Fprintf(sb, "Status:        %s\n", statusText(sweep))
	sb.WriteString("\n")
}

// writeThresholds writes one line per curve with its 50% crossing.
func (w *SimpleWriter) writeThresholds(sb *strings.Builder, sweep *model.Sweep) {
	section(sb, "THRESHOLD ESTIMATES (density at 50% burned)")

	fmt.Fprintf(sb, "  %-12s %8s   %s\n", "Grid Size", "Points", "Density at 50%")
	for _, c := range sweep.Curves {
		fmt.Fprintf(sb, "  %-12s %8d   %s\n", c.Label(), c.Len(), crossingText(c))
	}
	sb.WriteString("\n")
}

// writeCurves writes the values of every curve.
func (w *SimpleWriter) writeCurves(sb *strings.Builder, sweep *model.Sweep) {
	section(sb, "CURVES")

	for _, c := range sweep.Curves {
		fmt.Fprintf(sb, "[%s]\n", c.Label())
		if c.Len() == 0 {
			sb.WriteString("  No successful samples\n\n")
			continue
		}
		for _, p := range c.Points {
			fmt.Fprintf(sb, "  %-8s %6.2f%%\n", model.FormatDensity(p.Density), p.Value)
		}
		sb.WriteString("\n")
	}
}

// writeFailures lists failed samples, if any are known.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, sweep *model.Sweep) {
	if sweep.Failed == 0 {
		return
	}

	section(sb, "FAILED SAMPLES")

	failures := sweep.Failures()
	if len(failures) == 0 {
		sb.WriteString(w.printer.Sprintf("  %d samples failed (details not stored)\n\n", sweep.Failed))
		return
	}

	for i, f := range failures {
		if w.maxFailures > 0 && i == w.maxFailures {
			sb.WriteString(w.printer.Sprintf("  ... and %d more\n", len(failures)-i))
			break
		}
		fmt.Fprintf(sb, "  [%s] %s: %s\n", f.Failure.Kind, f.Point, truncateString(f.Failure.Cause, 120))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
