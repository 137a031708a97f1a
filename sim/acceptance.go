package sim

import "math"

// OutcomeReason classifies how a step ended.
type OutcomeReason string

const (
	ReasonAccepted           OutcomeReason = "accepted"
	ReasonExcluded           OutcomeReason = "excluded"            // same-spin target already occupied
	ReasonMetropolisRejected OutcomeReason = "metropolis_rejected" // lost the exp(-ΔE/T) draw
	ReasonNoOccupiedSites    OutcomeReason = "no_occupied_sites"
)

// evaluation is the AcceptanceEvaluator's verdict on a proposed move.
type evaluation struct {
	accepted        bool
	reason          OutcomeReason
	deltaEnergy     float64
	companionStart  bool // opposite spin present at the source
	companionTarget bool // opposite spin present at the target
}

// evaluateMove applies hard-core exclusion and the Metropolis rule.
// ΔE = -U if the source was paired, +U if the target will be paired.
// ΔE < 0 accepts without drawing; otherwise one Float64 is drawn and the
// move is accepted when it falls below exp(-ΔE/T), so ΔE == 0 always accepts.
func evaluateMove(l *Lattice, m Move, u, t float64, rng RandomSource) evaluation {
	if l.Occupied(m.Spin, m.Target.X, m.Target.Y) {
		return evaluation{reason: ReasonExcluded}
	}

	other := m.Spin.Opposite()
	ev := evaluation{
		companionStart:  l.Occupied(other, m.Source.X, m.Source.Y),
		companionTarget: l.Occupied(other, m.Target.X, m.Target.Y),
	}
	if ev.companionStart {
		ev.deltaEnergy -= u
	}
	if ev.companionTarget {
		ev.deltaEnergy += u
	}

	if ev.deltaEnergy < 0 || rng.Float64() < math.Exp(-ev.deltaEnergy/t) {
		ev.accepted = true
		ev.reason = ReasonAccepted
	} else {
		ev.reason = ReasonMetropolisRejected
	}
	return ev
}

// applyMove relocates the particle. Callers must only pass accepted moves.
func applyMove(l *Lattice, m Move) {
	l.Clear(m.Spin, m.Source.X, m.Source.Y)
	l.Set(m.Spin, m.Target.X, m.Target.Y)
}
