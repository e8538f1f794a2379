package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/firesweep/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "firesweep"

	// DefaultRepeats is the number of independent trials the engine averages
	// per sample. 100 keeps the curve smooth for grids up to a few hundred
	// cells per side without making large grids prohibitively slow.
	DefaultRepeats = 100

	// DefaultBurnPattern is the neighborhood rule used when none is configured.
	// It matches the engine's own default.
	DefaultBurnPattern = model.BurnPatternMoore

	// DefaultRegime is the tick granularity used when none is configured.
	DefaultRegime = model.RegimeCoarse

	// DefaultTimeout bounds a single engine invocation. A hung engine would
	// otherwise stall the whole sweep. Set to 0 to disable.
	DefaultTimeout = 30 * time.Minute

	// DefaultWorkers is the number of engine processes run at once.
	// 1 reproduces strictly sequential size-major, density-minor execution.
	DefaultWorkers = 1

	// DefaultChartWidth is the rendered chart width in pixels.
	DefaultChartWidth = 1000

	// DefaultChartHeight is the rendered chart height in pixels.
	DefaultChartHeight = 600

	// DefaultChartTitle is the chart title used when none is configured.
	DefaultChartTitle = "Impact of Tree Density and Forest Size on Burned Area"

	// DefaultChartFile is where the chart is written when no output is
	// configured, relative to the working directory.
	DefaultChartFile = "firesweep.png"
)

// DefaultSizes is the grid size sweep used when none is configured.
var DefaultSizes = []int{20, 40, 80, 160, 320, 640, 1280}

// DefaultDensityRange is the density sweep used when none is configured.
var DefaultDensityRange = DensityRange{From: 0, To: 1, Step: 0.05}

// Config holds all configuration options for firesweep.
// It is populated from the configuration file and CLI flags and passed
// through the application explicitly rather than living in global state.
// The experiment portion is frozen into a model.ExperimentConfig by
// Experiment() before the sweep begins.
type Config struct {
	// EnginePath is the path of the external simulation engine executable.
	EnginePath string

	// Sizes is the ordered list of grid sizes (cells per side).
	Sizes []int

	// Densities is the ordered, strictly increasing list of tree densities.
	Densities []float64

	// Repeats is the number of independent trials the engine averages per sample.
	Repeats int

	// BurnPattern is the neighborhood rule passed to the engine.
	BurnPattern model.BurnPattern

	// Regime selects the chart tick granularity.
	Regime model.TickRegime

	// Timeout bounds each engine invocation. 0 disables the timeout.
	Timeout time.Duration

	// Workers is the number of engine processes run concurrently.
	Workers int

	// SpawnRate limits engine launches per second. 0 means unlimited.
	SpawnRate float64

	// ChartTitle is the chart title.
	ChartTitle string

	// ChartWidth and ChartHeight are the chart dimensions in pixels.
	ChartWidth  int
	ChartHeight int

	// ChartFile is where the chart is written. The extension selects the
	// format (.png, .svg or .html). Empty means no chart file; --show then
	// renders a temporary page instead.
	ChartFile string

	// Show opens the chart in the default browser after the sweep.
	Show bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONReport selects JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .firesweep is searched in the current and home directories.
	ConfigFilePath string

	// DBDir is the directory holding the sweep history database.
	DBDir string

	// SaveToDB indicates whether the sweep is saved to the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// The engine path has no default and must be provided.
func NewConfig() *Config {
	densities, _ := DefaultDensityRange.Values() //nolint:errcheck // constant range is valid

	return &Config{
		Sizes:       append([]int(nil), DefaultSizes...),
		Densities:   densities,
		Repeats:     DefaultRepeats,
		BurnPattern: DefaultBurnPattern,
		Regime:      DefaultRegime,
		Timeout:     DefaultTimeout,
		Workers:     DefaultWorkers,
		ChartTitle:  DefaultChartTitle,
		ChartWidth:  DefaultChartWidth,
		ChartHeight: DefaultChartHeight,
		ChartFile:   DefaultChartFile,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for firesweep.
// On Linux: ~/.local/share/firesweep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for firesweep.
// On Linux: ~/.config/firesweep
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for firesweep.
// Charts opened with --show are written here.
// On Linux: ~/.cache/firesweep
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ApplyFile merges values from a configuration file into c.
// Only values present in the file are applied. Explicit lists win over
// generators: sizes over sizeSpace, densities over densityRange.
func (c *Config) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}

	if f.Engine != "" {
		c.EnginePath = f.Engine
	}

	switch {
	case len(f.Sizes) > 0:
		c.Sizes = append([]int(nil), f.Sizes...)
	case f.SizeSpace != nil:
		sizes, err := f.SizeSpace.Values()
		if err != nil {
			return fmt.Errorf("sizeSpace: %w", err)
		}
		c.Sizes = sizes
	}

	switch {
	case len(f.Densities) > 0:
		c.Densities = append([]float64(nil), f.Densities...)
	case f.DensityRange != nil:
		densities, err := f.DensityRange.Values()
		if err != nil {
			return fmt.Errorf("densityRange: %w", err)
		}
		c.Densities = densities
	}

	if f.Repeats != 0 {
		c.Repeats = f.Repeats
	}

	if f.BurnPattern != "" {
		pattern, err := model.ParseBurnPattern(f.BurnPattern)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBurnPattern, err)
		}
		c.BurnPattern = pattern
	}

	if f.Regime != "" {
		regime, err := model.ParseTickRegime(f.Regime)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRegime, err)
		}
		c.Regime = regime
	}

	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.SpawnRate != 0 {
		c.SpawnRate = f.SpawnRate
	}

	if f.Chart.Title != "" {
		c.ChartTitle = f.Chart.Title
	}
	if f.Chart.Width != 0 {
		c.ChartWidth = f.Chart.Width
	}
	if f.Chart.Height != 0 {
		c.ChartHeight = f.Chart.Height
	}
	if f.Chart.Output != "" {
		c.ChartFile = f.Chart.Output
	}

	return nil
}

// ApplyPreset replaces the density sweep and regime with those of p and,
// when the preset names one, the burn pattern.
func (c *Config) ApplyPreset(p Preset) error {
	densities, err := p.Densities.Values()
	if err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	c.Densities = densities
	c.Regime = p.Regime
	if p.BurnPattern != "" {
		c.BurnPattern = p.BurnPattern
	}
	return nil
}

// Validate checks if the configuration is valid and returns the first
// problem found. It is called once after the file and flags are merged,
// before any engine process is started.
//
// Validate does not reject densities outside [0,1] or non-positive sizes;
// the engine is the authority on those. See RangeWarnings.
func (c *Config) Validate() error {
	if c.EnginePath == "" {
		return ErrNoEngine
	}
	if len(c.Sizes) == 0 {
		return ErrNoSizes
	}
	if len(c.Densities) == 0 {
		return ErrNoDensities
	}
	for i := 1; i < len(c.Densities); i++ {
		if c.Densities[i] <= c.Densities[i-1] {
			return fmt.Errorf("%w: %v follows %v", ErrDensitiesNotIncreasing, c.Densities[i], c.Densities[i-1])
		}
	}
	if c.Repeats < 1 {
		return ErrInvalidRepeats
	}
	if !c.BurnPattern.Valid() {
		return ErrInvalidBurnPattern
	}
	if _, err := model.ParseTickRegime(string(c.Regime)); err != nil {
		return ErrInvalidRegime
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.SpawnRate < 0 {
		return ErrInvalidSpawnRate
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return ErrInvalidChartSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// RangeWarnings describes configured values the engine is likely to reject:
// densities outside [0,1] and non-positive grid sizes. The harness passes
// them through unchanged; the warnings only let the caller say so up front.
func (c *Config) RangeWarnings() []string {
	var warnings []string
	for _, d := range c.Densities {
		if d < 0 || d > 1 {
			warnings = append(warnings, fmt.Sprintf("density %s is outside [0,1]", model.FormatDensity(d)))
		}
	}
	for _, s := range c.Sizes {
		if s <= 0 {
			warnings = append(warnings, fmt.Sprintf("grid size %d is not positive", s))
		}
	}
	return warnings
}

// Experiment freezes the experiment portion of c into an immutable value.
func (c *Config) Experiment() model.ExperimentConfig {
	return model.NewExperimentConfig(c.Sizes, c.Densities, c.Repeats, c.BurnPattern, c.EnginePath)
}
