// Package trace provides per-step outcome recording for post-run analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// StepRecord captures a single Monte Carlo step.
// HasMove is false when the lattice held no particles; the coordinate
// fields are then zero and meaningless.
type StepRecord struct {
	Step        int64
	Accepted    bool
	Reason      string
	HasMove     bool
	Spin        int
	SourceX     int
	SourceY     int
	TargetX     int
	TargetY     int
	Biased      bool
	DeltaEnergy float64
}
