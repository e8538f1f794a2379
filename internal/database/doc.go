// Package database provides SQLite-based storage for sweep history.
//
// SweepDB keeps one record per sweep: the experiment it ran with, the
// attempted and failed sample counts, and the assembled curves. Per-sample
// results are not stored; a sweep loaded from history carries curves and
// counts only.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// history file works wherever the binary does.
package database
