package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/firesweep/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the sweep in JSON format.
func (w *JSONWriter) Write(sweep *model.Sweep) (int, error) {
	return w.writeJSON(sweep)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// Threshold is the 50% crossing estimate for one grid size.
type Threshold struct {
	Size     int      `json:"size"`
	Points   int      `json:"points"`
	Crossing *float64 `json:"crossing"`
}

// Thresholds returns the crossing estimate of every curve of sweep.
// Crossing is nil for curves that never reach 50%.
func Thresholds(sweep *model.Sweep) []Threshold {
	out := make([]Threshold, 0, len(sweep.Curves))
	for _, c := range sweep.Curves {
		th := Threshold{Size: c.Size, Points: c.Len()}
		if d, ok := c.Crossing(model.ThresholdLevel); ok {
			th.Crossing = &d
		}
		out = append(out, th)
	}
	return out
}

// JSONReport wraps a sweep with the tool version and derived summary data.
type JSONReport struct {
	// Version is the firesweep version that produced this report.
	Version string `json:"version"`

	// Status describes how the sweep ended.
	Status string `json:"status"`

	// Sweep is the full sweep, including per-sample results when known.
	Sweep *model.Sweep `json:"sweep"`

	// Thresholds are the 50% crossing estimates per grid size.
	Thresholds []Threshold `json:"thresholds"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(sweep *model.Sweep, version string) *JSONReport {
	return &JSONReport{
		Version:    version,
		Status:     statusText(sweep),
		Sweep:      sweep,
		Thresholds: Thresholds(sweep),
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the firesweep version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the sweep wrapped with metadata.
func (w *FullJSONWriter) Write(sweep *model.Sweep) (int, error) {
	return w.writeJSON(NewJSONReport(sweep, w.version))
}
