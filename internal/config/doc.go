// Package config provides configuration structures and utilities for firesweep.
// It defines the experiment options (grid sizes, densities, repeat count,
// burn pattern, engine path), execution settings (timeout, workers, spawn
// pacing), chart preferences, and report output options.
package config
