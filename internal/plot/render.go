package plot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/firesweep/internal/model"
)

// Format is an output format for a rendered chart.
type Format string

const (
	// FormatPNG is a raster image.
	FormatPNG Format = "png"

	// FormatSVG is a vector image.
	FormatSVG Format = "svg"

	// FormatHTML is a standalone page embedding the SVG chart.
	FormatHTML Format = "html"
)

// ErrUnsupportedFormat is returned for output paths whose extension is not
// .png, .svg, .html or .htm.
var ErrUnsupportedFormat = errors.New("unsupported chart format")

// FormatFromPath picks the output format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q (use .png, .svg or .html)", ErrUnsupportedFormat, path)
	}
}

// Renderer draws a RenderSpec in one output format.
type Renderer interface {
	Render(w io.Writer, spec model.RenderSpec) error
}

// NewRenderer returns the Renderer for format.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatPNG:
		return &ChartRenderer{format: FormatPNG}, nil
	case FormatSVG:
		return &ChartRenderer{format: FormatSVG}, nil
	case FormatHTML:
		return &HTMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile renders spec to path in the format implied by its extension.
func WriteFile(path string, spec model.RenderSpec) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	r, err := NewRenderer(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // output path is user configuration
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := r.Render(f, spec); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", format, err)
	}
	return nil
}
