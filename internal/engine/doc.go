// Package engine runs the external forest-fire simulation engine and turns
// its output into sample results.
//
// Each sample is one process: the engine is started with graphics disabled
// and quiet output, is told the density, repeat count, grid size and burn
// pattern, and prints a single number, the mean burned-area percentage over
// the requested trials. Command handles starting the process, bounding it
// with a timeout, and classifying what went wrong; ParseOutput validates
// what it printed.
//
// Failures never escape as errors from Invoke. They are reported once, as a
// structured Diagnostic and a warning log line, and returned as a failed
// model.SampleResult so the sweep can continue with the next sample.
package engine
