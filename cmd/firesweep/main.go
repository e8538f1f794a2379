// Package main provides the entry point for the firesweep CLI.
//
// firesweep drives an external forest-fire simulation engine across a grid of
// forest sizes and tree densities, assembles the burned-area measurements into
// one curve per size, and renders them as a percolation chart.
//
// Usage:
//
//	firesweep run --engine ./project_forest_fire
//	firesweep run --preset moore-closeup -o closeup.png
//
// See --help for all available options.
package main

// main is the entry point for firesweep.
func main() {
	Execute()
}
