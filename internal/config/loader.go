package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".firesweep"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// ChartFile holds the chart section of the configuration file.
type ChartFile struct {
	// Title overrides the chart title.
	Title string `yaml:"title,omitempty"`

	// Width and Height set the chart dimensions in pixels.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	// Output is the chart file path; the extension selects the format.
	Output string `yaml:"output,omitempty"`
}

// File represents the structure of the .firesweep configuration file.
type File struct {
	// Engine is the path of the simulation engine executable.
	Engine string `yaml:"engine,omitempty"`

	// Sizes lists grid sizes explicitly, in sweep order.
	Sizes []int `yaml:"sizes,omitempty"`

	// SizeSpace generates geometrically spaced sizes when Sizes is empty.
	SizeSpace *SizeSpace `yaml:"sizeSpace,omitempty"`

	// Densities lists densities explicitly, in sweep order.
	Densities []float64 `yaml:"densities,omitempty"`

	// DensityRange generates a stepped density sweep when Densities is empty.
	DensityRange *DensityRange `yaml:"densityRange,omitempty"`

	// Repeats is the number of trials the engine averages per sample.
	Repeats int `yaml:"repeats,omitempty"`

	// BurnPattern is "moore" or "vonneumann".
	BurnPattern string `yaml:"burnPattern,omitempty"`

	// Regime is "coarse", "fine" or "auto".
	Regime string `yaml:"regime,omitempty"`

	// Timeout bounds each engine invocation, e.g. "30m". "0s" disables it.
	Timeout *time.Duration `yaml:"timeout,omitempty"`

	// Workers is the number of concurrent engine processes.
	Workers int `yaml:"workers,omitempty"`

	// SpawnRate limits engine launches per second.
	SpawnRate float64 `yaml:"spawnRate,omitempty"`

	// Chart configures chart rendering.
	Chart ChartFile `yaml:"chart,omitempty"`
}

// LoadConfigFile loads an experiment configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Unknown keys
// are rejected so that a misspelled option does not silently fall back to
// its default.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes configuration file content. name only labels errors.
func ParseConfig(data []byte, name string) (*File, error) {
	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .firesweep in the current directory
// 3. Look for .firesweep in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
