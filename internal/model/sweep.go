package model

import "time"

// Sweep is the record of one harness run.
//
// Results holds every SampleResult in parameter-space order and is only
// populated for sweeps produced in this process; sweeps loaded from history
// carry curves and counts but no per-sample records.
type Sweep struct {
	// ID identifies the sweep in the history database. Zero until saved.
	ID int64 `json:"id,omitempty"`

	// StartedAt is when the first sample was issued.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the whole sweep.
	Duration time.Duration `json:"duration"`

	// Experiment is the configuration the sweep ran with.
	Experiment ExperimentConfig `json:"experiment"`

	// Results are the per-sample outcomes in parameter-space order. A
	// cancelled sweep holds only the samples that completed.
	Results []SampleResult `json:"results,omitempty"`

	// Curves holds one curve per configured grid size, in configuration order.
	Curves []SizeCurve `json:"curves"`

	// Attempted is the number of samples submitted to the engine.
	Attempted int `json:"attempted"`

	// Failed is the number of attempted samples that produced no value.
	Failed int `json:"failed"`

	// Cancelled is true when the sweep was interrupted before every sample ran.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Succeeded returns the number of samples that produced a value.
func (s *Sweep) Succeeded() int {
	return s.Attempted - s.Failed
}

// Failures returns the failed results in parameter-space order.
func (s *Sweep) Failures() []SampleResult {
	var failed []SampleResult
	for _, r := range s.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Curve returns the first curve for the given grid size.
func (s *Sweep) Curve(size int) (SizeCurve, bool) {
	for _, c := range s.Curves {
		if c.Size == size {
			return c, true
		}
	}
	return SizeCurve{}, false
}
