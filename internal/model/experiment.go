package model

import (
	"encoding/json"
	"slices"
)

// ExperimentConfig describes one parameter sweep: which grid sizes and
// densities to evaluate, how many trials the engine averages per sample,
// which burn pattern it uses, and where the engine binary lives.
//
// The value is immutable once constructed. Fields are unexported and every
// accessor returning a slice hands out a copy, so an ExperimentConfig can be
// passed to concurrent workers without synchronization.
type ExperimentConfig struct {
	sizes       []int
	densities   []float64
	repeats     int
	burnPattern BurnPattern
	enginePath  string
}

// NewExperimentConfig builds an ExperimentConfig from the given values.
// The slices are copied; later changes by the caller are not observed.
// No range validation happens here; see config.Config.Validate.
func NewExperimentConfig(sizes []int, densities []float64, repeats int, pattern BurnPattern, enginePath string) ExperimentConfig {
	return ExperimentConfig{
		sizes:       slices.Clone(sizes),
		densities:   slices.Clone(densities),
		repeats:     repeats,
		burnPattern: pattern,
		enginePath:  enginePath,
	}
}

// Sizes returns the grid sizes in configuration order.
func (e ExperimentConfig) Sizes() []int {
	return slices.Clone(e.sizes)
}

// Densities returns the densities in configuration order.
func (e ExperimentConfig) Densities() []float64 {
	return slices.Clone(e.densities)
}

// Repeats returns how many independent trials the engine averages per sample.
func (e ExperimentConfig) Repeats() int {
	return e.repeats
}

// BurnPattern returns the neighborhood rule passed to the engine.
func (e ExperimentConfig) BurnPattern() BurnPattern {
	return e.burnPattern
}

// EnginePath returns the path of the external simulation engine.
func (e ExperimentConfig) EnginePath() string {
	return e.enginePath
}

// SampleCount returns the number of samples a sweep over e attempts.
func (e ExperimentConfig) SampleCount() int {
	return len(e.sizes) * len(e.densities)
}

// DensitySpan returns the smallest and largest configured density.
// Both are zero when no densities are configured.
func (e ExperimentConfig) DensitySpan() (lo, hi float64) {
	if len(e.densities) == 0 {
		return 0, 0
	}
	return slices.Min(e.densities), slices.Max(e.densities)
}

// experimentJSON is the serialized form of ExperimentConfig.
type experimentJSON struct {
	Sizes       []int       `json:"sizes"`
	Densities   []float64   `json:"densities"`
	Repeats     int         `json:"repeats"`
	BurnPattern BurnPattern `json:"burn_pattern"`
	EnginePath  string      `json:"engine_path"`
}

// MarshalJSON implements json.Marshaler.
func (e ExperimentConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(experimentJSON{
		Sizes:       e.sizes,
		Densities:   e.densities,
		Repeats:     e.repeats,
		BurnPattern: e.burnPattern,
		EnginePath:  e.enginePath,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExperimentConfig) UnmarshalJSON(data []byte) error {
	var raw experimentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = NewExperimentConfig(raw.Sizes, raw.Densities, raw.Repeats, raw.BurnPattern, raw.EnginePath)
	return nil
}
