// Package model defines the core data structures used throughout firesweep.
//
// This package contains the following main types:
//   - ExperimentConfig: The immutable description of one parameter sweep
//   - SamplePoint and SampleResult: One (grid size, density) evaluation and its outcome
//   - SizeCurve: The collated density/burned-area curve for one grid size
//   - Sweep: A completed run with its curves and bookkeeping
//   - RenderSpec: A backend-neutral chart description built from curves
//
// Models live in their own package so the engine, pipeline, plot, report and
// database packages can share them without import cycles. All models are
// serializable to JSON for report output and history storage.
package model
