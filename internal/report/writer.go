package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/firesweep/internal/model"
)

// Writer defines the interface for report output.
// Implementations write sweep results in various formats.
type Writer interface {
	// Write outputs the sweep to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(sweep *model.Sweep) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the sweep to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(sweep *model.Sweep) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(sweep)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how the sweep ended.
func statusText(sweep *model.Sweep) string {
	switch {
	case sweep.Cancelled:
		return "Cancelled (partial results)"
	case sweep.Attempted > 0 && sweep.Failed == sweep.Attempted:
		return "Failed (no sample produced a value)"
	case sweep.Failed > 0:
		return "Complete with failures"
	default:
		return "Complete"
	}
}

// joinSizes renders grid sizes as a comma-separated list.
func joinSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ", ")
}

// densitySummary renders the density sweep as "21 (0 to 1)".
func densitySummary(exp model.ExperimentConfig) string {
	densities := exp.Densities()
	if len(densities) == 0 {
		return "none"
	}
	return fmt.Sprintf("%d (%s to %s)",
		len(densities),
		model.FormatDensity(densities[0]),
		model.FormatDensity(densities[len(densities)-1]),
	)
}

// crossingText formats the 50% crossing of a curve, or "-" if it has none.
func crossingText(c model.SizeCurve) string {
	d, ok := c.Crossing(model.ThresholdLevel)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.4f", d)
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
