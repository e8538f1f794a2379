package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseOutput interprets the engine's stdout as the burned-area percentage.
// Surrounding whitespace is ignored. Anything other than exactly one finite
// number returns an error wrapping ErrParse.
//
// The value is not range-checked; the engine is trusted to report a
// percentage in [0,100].
func ParseOutput(stdout string) (float64, error) {
	text := strings.TrimSpace(stdout)
	if text == "" {
		return 0, fmt.Errorf("%w: empty output", ErrParse)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrParse, shorten(text))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrParse, text)
	}

	return v, nil
}

// maxQuoted is the longest stdout excerpt embedded in an error message.
// The full text is kept in the diagnostic detail.
const maxQuoted = 64

// shorten trims s to maxQuoted bytes for inclusion in error messages.
func shorten(s string) string {
	if len(s) <= maxQuoted {
		return s
	}
	return s[:maxQuoted] + "..."
}
