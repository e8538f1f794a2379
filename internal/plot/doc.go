// Package plot turns assembled curves into a chart.
//
// Configure is a pure step: it maps the curves of a sweep onto a
// model.RenderSpec, choosing the density-axis tick regime, fixing the
// burned-area axis to [0,105], and assigning each grid size its own colour
// and legend key. Nothing in Configure depends on a charting library.
//
// Render draws a RenderSpec with go-chart as PNG or SVG, or wraps the SVG in
// a standalone HTML page. OpenBrowser shows a rendered file on screen.
package plot
