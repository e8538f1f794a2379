package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/nao1215/firesweep/internal/model"
)

// densityDecimals is the number of decimal places generated densities are
// rounded to. It keeps 0.3 + 7*0.01 from turning into 0.37000000000000005.
const densityDecimals = 1e10

// DensityRange generates an inclusive, evenly stepped density sweep.
// The YAML form is {from: 0.0, to: 1.0, step: 0.05}.
type DensityRange struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`
}

// Values returns From, From+Step, ... up to and including To when it is
// reached within rounding. Each value is computed from its index rather than
// by repeated addition, so the sweep does not drift.
func (r DensityRange) Values() ([]float64, error) {
	if r.Step <= 0 {
		return nil, fmt.Errorf("%w: density step must be positive, got %v", ErrInvalidRange, r.Step)
	}
	if r.To < r.From {
		return nil, fmt.Errorf("%w: density range end %v is below start %v", ErrInvalidRange, r.To, r.From)
	}

	n := int(math.Floor((r.To-r.From)/r.Step + 1e-9))
	values := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		values = append(values, roundDensity(r.From+float64(i)*r.Step))
	}
	return values, nil
}

// roundDensity rounds d to densityDecimals precision.
func roundDensity(d float64) float64 {
	return math.Round(d*densityDecimals) / densityDecimals
}

// SizeSpace generates geometrically spaced grid sizes between From and To.
// The YAML form is {from: 20, to: 10000, count: 15}. Generated sizes are
// rounded to integers and duplicates are removed, so fewer than Count sizes
// may be returned for narrow ranges.
type SizeSpace struct {
	From  int `yaml:"from"`
	To    int `yaml:"to"`
	Count int `yaml:"count"`
}

// Values returns the generated grid sizes in increasing order.
func (s SizeSpace) Values() ([]int, error) {
	if s.From <= 0 || s.To <= 0 {
		return nil, fmt.Errorf("%w: size space bounds must be positive, got %d..%d", ErrInvalidRange, s.From, s.To)
	}
	if s.To < s.From {
		return nil, fmt.Errorf("%w: size space end %d is below start %d", ErrInvalidRange, s.To, s.From)
	}
	if s.Count < 1 {
		return nil, fmt.Errorf("%w: size space count must be at least 1, got %d", ErrInvalidRange, s.Count)
	}
	if s.Count == 1 {
		return []int{s.From}, nil
	}

	ratio := float64(s.To) / float64(s.From)
	sizes := make([]int, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		exp := float64(i) / float64(s.Count-1)
		size := int(math.Round(float64(s.From) * math.Pow(ratio, exp)))
		if !slices.Contains(sizes, size) {
			sizes = append(sizes, size)
		}
	}
	return sizes, nil
}

// Preset bundles a density sweep and tick regime that suit a common study.
type Preset struct {
	// Name is the value accepted by --preset.
	Name string

	// Description is shown in help output.
	Description string

	// Densities is the density sweep the preset runs.
	Densities DensityRange

	// Regime is the tick granularity suited to the sweep.
	Regime model.TickRegime

	// BurnPattern, when set, overrides the configured burn pattern.
	BurnPattern model.BurnPattern
}

// presets lists the built-in presets. The close-up windows bracket the
// percolation thresholds observed for each neighborhood rule.
var presets = []Preset{
	{
		Name:        "general",
		Description: "full density range 0..1 in 5% steps",
		Densities:   DensityRange{From: 0, To: 1, Step: 0.05},
		Regime:      model.RegimeCoarse,
	},
	{
		Name:        "moore-closeup",
		Description: "densities 0.30..0.50 in 1% steps with the Moore neighborhood",
		Densities:   DensityRange{From: 0.3, To: 0.5, Step: 0.01},
		Regime:      model.RegimeFine,
		BurnPattern: model.BurnPatternMoore,
	},
	{
		Name:        "vonneumann-closeup",
		Description: "densities 0.50..0.70 in 1% steps with the von Neumann neighborhood",
		Densities:   DensityRange{From: 0.5, To: 0.7, Step: 0.01},
		Regime:      model.RegimeFine,
		BurnPattern: model.BurnPatternVonNeumann,
	},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, error) {
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
}

// PresetNames returns the names of all built-in presets.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
