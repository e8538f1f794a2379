// Package pipeline runs a parameter sweep against the simulation engine.
//
// A sweep walks the cross-product of grid sizes and densities, asks an
// engine.Invoker for one result per point, and collates the successful
// results into one curve per grid size:
//
//	ParameterSpace -> Invoker (per point) -> AssembleCurves
//
// By default samples run one at a time, size-major and density-minor, so the
// engine sees exactly the order of the configuration. With more than one
// worker the BatchProcessor runs samples on a bounded errgroup pool; results
// land in a slot keyed by the point's index, so the curves are identical to
// a sequential run no matter in which order samples finish.
//
// A failing sample never stops a sweep. Cancelling the context does: the
// sweep stops issuing samples, keeps what already completed, and is marked
// cancelled.
package pipeline
