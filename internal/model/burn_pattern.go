package model

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BurnPattern selects the neighborhood adjacency rule the engine uses when
// fire spreads from a burning tree to its neighbors.
type BurnPattern string

const (
	// BurnPatternMoore spreads fire to all 8 surrounding cells.
	BurnPatternMoore BurnPattern = "moore"

	// BurnPatternVonNeumann spreads fire to the 4 orthogonal cells only.
	BurnPatternVonNeumann BurnPattern = "vonneumann"
)

// BurnPatterns returns every burn pattern the engine accepts, in display order.
func BurnPatterns() []BurnPattern {
	return []BurnPattern{BurnPatternMoore, BurnPatternVonNeumann}
}

// ParseBurnPattern converts a user-supplied name into a BurnPattern.
// Matching is case-insensitive and ignores surrounding whitespace, which is
// how the engine itself reads its -b argument.
func ParseBurnPattern(s string) (BurnPattern, error) {
	normalized := BurnPattern(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range BurnPatterns() {
		if p == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown burn pattern %q (use 'moore' or 'vonneumann')", s)
}

// Valid reports whether p is one of the known burn patterns.
func (p BurnPattern) Valid() bool {
	return slices.Contains(BurnPatterns(), p)
}

// Neighbors returns the number of cells a burning tree can ignite.
func (p BurnPattern) Neighbors() int {
	switch p {
	case BurnPatternMoore:
		return 8
	case BurnPatternVonNeumann:
		return 4
	default:
		return 0
	}
}

// DisplayName returns a title-cased name suitable for chart titles,
// e.g. "Moore" or "Von Neumann".
func (p BurnPattern) DisplayName() string {
	switch p {
	case BurnPatternVonNeumann:
		return "Von Neumann"
	default:
		return cases.Title(language.English).String(string(p))
	}
}

// String returns the engine-facing value of the burn pattern.
func (p BurnPattern) String() string {
	return string(p)
}
