// Derives acceptance and flux statistics from a stream of MoveOutcomes.

package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Metrics aggregates statistics over a stream of step outcomes for final
// reporting. Only the outcomes and the lattice size are needed.
type Metrics struct {
	Size int `json:"size"`

	Attempts           int64 `json:"attempts"`
	Accepted           int64 `json:"accepted"`
	RejectedExclusion  int64 `json:"rejected_exclusion"`
	RejectedMetropolis int64 `json:"rejected_metropolis"`
	EmptySteps         int64 `json:"empty_steps"`
	BiasedProposals    int64 `json:"biased_proposals"`

	// Accepted moves that wrapped across the x = N-1 / x = 0 boundary.
	RightCrossings int64 `json:"right_crossings"` // x = N-1 -> 0
	LeftCrossings  int64 `json:"left_crossings"`  // x = 0 -> N-1
	Flux           int64 `json:"flux"`            // RightCrossings - LeftCrossings

	// Every proposal, accepted or not, compared by raw target/source x.
	// A wrapped +x hop therefore counts as leftward here.
	ProposedRight int64 `json:"proposed_right"`
	ProposedLeft  int64 `json:"proposed_left"`
}

// NewMetrics returns empty Metrics for an N×N lattice.
func NewMetrics(size int) *Metrics {
	return &Metrics{Size: size}
}

// Observe folds one outcome into the running totals.
func (m *Metrics) Observe(o MoveOutcome) {
	m.Attempts++
	switch o.Reason {
	case ReasonAccepted:
		m.Accepted++
	case ReasonExcluded:
		m.RejectedExclusion++
	case ReasonMetropolisRejected:
		m.RejectedMetropolis++
	case ReasonNoOccupiedSites:
		m.EmptySteps++
	}
	if o.Move == nil {
		return
	}

	mv := o.Move
	if mv.Biased {
		m.BiasedProposals++
	}
	switch {
	case mv.Target.X > mv.Source.X:
		m.ProposedRight++
	case mv.Target.X < mv.Source.X:
		m.ProposedLeft++
	}

	if !o.Accepted || m.Size < 2 {
		return
	}
	last := m.Size - 1
	switch {
	case mv.Direction.DX > 0 && mv.Source.X == last && mv.Target.X == 0:
		m.RightCrossings++
		m.Flux++
	case mv.Direction.DX < 0 && mv.Source.X == 0 && mv.Target.X == last:
		m.LeftCrossings++
		m.Flux--
	}
}

// Rejected returns all attempts that did not move a particle.
func (m *Metrics) Rejected() int64 {
	return m.Attempts - m.Accepted
}

// AcceptanceRate returns Accepted / Attempts, or 0 before any attempt.
func (m *Metrics) AcceptanceRate() float64 {
	if m.Attempts == 0 {
		return 0
	}
	return float64(m.Accepted) / float64(m.Attempts)
}

// FluxPercentage returns 100·Flux / (RightCrossings + LeftCrossings), or 0 if
// nothing has crossed the boundary.
func (m *Metrics) FluxPercentage() float64 {
	crossings := m.RightCrossings + m.LeftCrossings
	if crossings == 0 {
		return 0
	}
	return 100 * float64(m.Flux) / float64(crossings)
}

// Print writes a human-readable summary.
func (m *Metrics) Print(w io.Writer, c PairingCounters) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Attempted Steps      : %d\n", m.Attempts)
	fmt.Fprintf(w, "Successful Steps     : %d\n", m.Accepted)
	fmt.Fprintf(w, "Failed Steps         : %d (exclusion %d, metropolis %d, empty %d)\n",
		m.Rejected(), m.RejectedExclusion, m.RejectedMetropolis, m.EmptySteps)
	fmt.Fprintf(w, "Acceptance Rate      : %.4f\n", m.AcceptanceRate())
	fmt.Fprintf(w, "Biased Proposals     : %d\n", m.BiasedProposals)
	fmt.Fprintf(w, "Flux                 : %d (right %d, left %d, %.2f%%)\n",
		m.Flux, m.RightCrossings, m.LeftCrossings, m.FluxPercentage())
	fmt.Fprintf(w, "Proposed Left/Right  : %d / %d\n", m.ProposedLeft, m.ProposedRight)
	fmt.Fprintf(w, "Electrons            : %d placed of %d requested\n", c.TotalElectrons, c.RequestedElectrons)
	fmt.Fprintf(w, "Paired Electrons     : %d\n", c.TotalPaired)
	fmt.Fprintf(w, "Pairing / Unpairing  : %d / %d\n", c.PairingEvents, c.UnpairingEvents)
}

// RunSummary is the JSON document written by SaveResults.
type RunSummary struct {
	Policy         InitPolicy      `json:"policy"`
	Config         summaryConfig   `json:"config"`
	Metrics        *Metrics        `json:"metrics"`
	AcceptanceRate float64         `json:"acceptance_rate"`
	FluxPercentage float64         `json:"flux_percentage"`
	Counters       PairingCounters `json:"counters"`
}

type summaryConfig struct {
	Size               int     `json:"size"`
	U                  float64 `json:"u"`
	T                  float64 `json:"t"`
	RequestedElectrons int     `json:"requested_electrons"`
	FieldStrength      float64 `json:"field_strength"`
	Seed               *int64  `json:"seed,omitempty"`
}

// NewRunSummary bundles the final state of a run.
func NewRunSummary(policy InitPolicy, cfg SimulationConfig, m *Metrics, c PairingCounters) RunSummary {
	return RunSummary{
		Policy: policy,
		Config: summaryConfig{
			Size:               cfg.Size,
			U:                  cfg.U,
			T:                  cfg.T,
			RequestedElectrons: cfg.RequestedElectrons,
			FieldStrength:      cfg.FieldStrength,
			Seed:               cfg.Seed,
		},
		Metrics:        m,
		AcceptanceRate: m.AcceptanceRate(),
		FluxPercentage: m.FluxPercentage(),
		Counters:       c,
	}
}

// SaveResults writes the summary as indented JSON to fileName.
func SaveResults(fileName string, s RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("creating %s: %w", fileName, err)
	}
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(append(data, '\n')); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", fileName, err)
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flushing %s: %w", fileName, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", fileName, err)
	}
	logrus.Debugf("Successfully wrote to '%s'", fileName)
	return nil
}
