package plot

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/nao1215/firesweep/internal/model"
)

// templates contains the embedded HTML templates.
//
//go:embed templates/*
var templates embed.FS

// htmlTemplateData holds data passed to the HTML template.
// SVG is produced by go-chart from numeric data and series keys only.
type htmlTemplateData struct {
	Title       string
	Subtitle    string
	SVG         template.HTML
	LegendTitle string
	Regime      model.TickRegime
	Legend      []legendRow
}

// legendRow is one grid size in the table under the chart.
type legendRow struct {
	Key    string
	Color  template.CSS
	Points int
	Range  string
}

// HTMLRenderer wraps the SVG chart in a standalone page with a legend
// table, suitable for opening in a browser.
type HTMLRenderer struct{}

// Render implements Renderer.
func (r *HTMLRenderer) Render(w io.Writer, spec model.RenderSpec) error {
	var svg bytes.Buffer
	if err := (&ChartRenderer{format: FormatSVG}).Render(&svg, spec); err != nil {
		return err
	}

	tmplBytes, err := templates.ReadFile("templates/chart.html.tmpl")
	if err != nil {
		return fmt.Errorf("read HTML template: %w", err)
	}

	tmpl, err := template.New("chart").Parse(string(tmplBytes))
	if err != nil {
		return fmt.Errorf("parse HTML template: %w", err)
	}

	data := htmlTemplateData{
		Title:       spec.Title,
		Subtitle:    spec.Subtitle,
		SVG:         template.HTML(svg.String()), // #nosec G203
		LegendTitle: spec.LegendTitle,
		Regime:      spec.Regime,
	}
	for _, s := range spec.Series {
		row := legendRow{
			Key:    s.Key,
			Color:  template.CSS(palette[colorSlot(s.ColorIndex)]), // #nosec G203
			Points: len(s.X),
		}
		if len(s.X) > 0 {
			row.Range = fmt.Sprintf("%s to %s", model.FormatDensity(s.X[0]), model.FormatDensity(s.X[len(s.X)-1]))
		}
		data.Legend = append(data.Legend, row)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute HTML template: %w", err)
	}
	return nil
}
