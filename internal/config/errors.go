package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration. Callers can use
// errors.Is() to test for a particular problem.
var (
	// ErrNoEngine is returned when no engine executable path is configured.
	ErrNoEngine = errors.New("no engine specified: set 'engine' in the config file or use --engine")

	// ErrNoSizes is returned when the sweep has no grid sizes.
	ErrNoSizes = errors.New("no grid sizes specified: set 'sizes' or 'sizeSpace', or use --sizes")

	// ErrNoDensities is returned when the sweep has no densities.
	ErrNoDensities = errors.New("no densities specified: set 'densities' or 'densityRange', or use --densities")

	// ErrDensitiesNotIncreasing is returned when densities are not strictly increasing.
	// Curves are plotted in configuration order, so duplicates or reversals
	// would produce a self-overlapping line.
	ErrDensitiesNotIncreasing = errors.New("invalid densities: must be strictly increasing")

	// ErrInvalidRepeats is returned when the repeat count is less than one.
	ErrInvalidRepeats = errors.New("invalid repeat count: must be at least 1")

	// ErrInvalidBurnPattern is returned when the burn pattern is not one the engine accepts.
	ErrInvalidBurnPattern = errors.New("invalid burn pattern: use 'moore' or 'vonneumann'")

	// ErrInvalidRegime is returned when the tick regime is unknown.
	ErrInvalidRegime = errors.New("invalid tick regime: use 'coarse', 'fine' or 'auto'")

	// ErrInvalidTimeout is returned when the per-sample timeout is negative.
	// Use 0 to disable the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be at least 1")

	// ErrInvalidSpawnRate is returned when the spawn rate is negative.
	// Use 0 for unlimited.
	ErrInvalidSpawnRate = errors.New("invalid spawn rate: must be non-negative")

	// ErrInvalidChartSize is returned when the chart width or height is not positive.
	ErrInvalidChartSize = errors.New("invalid chart size: width and height must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRange is returned when a density range or size space generator is malformed.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnknownPreset is returned when --preset names no known preset.
	ErrUnknownPreset = errors.New("unknown preset")
)
