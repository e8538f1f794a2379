// Package report writes sweep results for people and tools.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables, alerts and mermaid charts
//
// Writers implement the Writer interface, so they can be used
// interchangeably and composed with MultiWriter.
package report
