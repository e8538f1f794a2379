package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaxDetailLength is the maximum number of bytes of engine output kept in a
// single log attribute.
const MaxDetailLength = 512

// TruncationMarker is appended to engine output that exceeded MaxDetailLength.
const TruncationMarker = "...(truncated)"

// detailKeys contains attribute keys whose values carry captured engine
// output. Invocation errors quote the engine's stderr, so "error" is included.
var detailKeys = map[string]bool{
	"error":  true,
	"stderr": true,
	"stdout": true,
	"raw":    true,
	"detail": true,
	"output": true,
}

// ansiPattern matches CSI and OSC terminal escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07]*\x07`)

// whitespacePattern matches runs of whitespace including newlines.
var whitespacePattern = regexp.MustCompile(`\s+`)

// DiagnosticHandler wraps an slog.Handler and cleans engine output carried
// in log attributes before passing records to the underlying handler.
type DiagnosticHandler struct {
	// handler is the underlying slog handler that receives cleaned records.
	handler slog.Handler
}

// NewDiagnosticHandler creates a new DiagnosticHandler wrapping the given handler.
// If handler is nil, the returned handler uses slog.Default().Handler().
func NewDiagnosticHandler(handler slog.Handler) *DiagnosticHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &DiagnosticHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *DiagnosticHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle cleans the record's attributes and passes it to the underlying handler.
func (h *DiagnosticHandler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(h.cleanAttr(a))
		return true
	})

	return h.handler.Handle(ctx, cleaned)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *DiagnosticHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleanedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleanedAttrs[i] = h.cleanAttr(a)
	}
	return &DiagnosticHandler{handler: h.handler.WithAttrs(cleanedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *DiagnosticHandler) WithGroup(name string) slog.Handler {
	return &DiagnosticHandler{handler: h.handler.WithGroup(name)}
}

// cleanAttr cleans a single attribute, recursively handling groups.
func (h *DiagnosticHandler) cleanAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		cleanedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			cleanedAttrs[i] = h.cleanAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleanedAttrs...)}
	}

	if !detailKeys[strings.ToLower(a.Key)] {
		return a
	}

	return slog.String(a.Key, CleanDetail(a.Value.String()))
}

// CleanDetail strips terminal escapes from s, collapses whitespace and
// truncates the result to MaxDetailLength bytes without splitting a rune.
func CleanDetail(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))

	if len(s) <= MaxDetailLength {
		return s
	}

	cut := MaxDetailLength
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + TruncationMarker
}

// isRuneStart reports whether b can begin a UTF-8 encoded rune.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// NewLogger creates a new slog.Logger that writes human-readable text and
// cleans engine output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewDiagnosticHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a new slog.Logger that writes JSON lines and cleans
// engine output. Useful when sweep diagnostics are collected by other tools.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewDiagnosticHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

// handlerOptions returns the handler options for the given verbosity.
func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
