package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMove_SameSpinAtTarget_ExcludedWithoutDraw(t *testing.T) {
	l := newTestLattice(2, up(0, 0), up(0, 1), down(0, 0))
	src := &scriptedSource{t: t}
	m := Move{Source: Site{0, 0}, Spin: SpinUp, Target: Site{0, 1}}

	ev := evaluateMove(l, m, 1, 1, src)

	assert.False(t, ev.accepted)
	assert.Equal(t, ReasonExcluded, ev.reason)
	assert.Zero(t, ev.deltaEnergy)
}

func TestEvaluateMove_NegativeDelta_AcceptedWithoutDraw(t *testing.T) {
	// GIVEN a paired source and an unpaired target: ΔE = -U
	l := newTestLattice(2, up(0, 0), down(0, 0))
	src := &scriptedSource{t: t} // any draw fails the test
	m := Move{Source: Site{0, 0}, Spin: SpinUp, Target: Site{0, 1}}

	ev := evaluateMove(l, m, 3.5, 0.01, src)

	assert.True(t, ev.accepted)
	assert.Equal(t, -3.5, ev.deltaEnergy)
	assert.True(t, ev.companionStart)
	assert.False(t, ev.companionTarget)
}

func TestEvaluateMove_PositiveDelta_MetropolisThreshold(t *testing.T) {
	// GIVEN an unpaired source and a target holding the opposite spin: ΔE = +U
	l := newTestLattice(2, up(0, 0), down(0, 1))
	m := Move{Source: Site{0, 0}, Spin: SpinUp, Target: Site{0, 1}}
	threshold := math.Exp(-1.0)

	tests := []struct {
		draw float64
		want bool
	}{
		{0.5, false},
		{0.2, true},
		{threshold - 1e-9, true},
		{threshold, false},
	}
	for _, tt := range tests {
		src := &scriptedSource{t: t, floats: []float64{tt.draw}}
		ev := evaluateMove(l, m, 1, 1, src)
		assert.Equal(t, tt.want, ev.accepted, "draw %v", tt.draw)
		assert.Equal(t, 1.0, ev.deltaEnergy)
		assert.True(t, src.exhausted(), "exactly one acceptance draw")
		if !tt.want {
			assert.Equal(t, ReasonMetropolisRejected, ev.reason)
		}
	}
}

func TestEvaluateMove_ZeroDelta_AlwaysAccepted(t *testing.T) {
	tests := []struct {
		name    string
		lattice *Lattice
	}{
		{"no companions", newTestLattice(2, up(0, 0))},
		{"companions at both ends", newTestLattice(2, up(0, 0), down(0, 0), down(0, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedSource{t: t, floats: []float64{0.9999999}}
			m := Move{Source: Site{0, 0}, Spin: SpinUp, Target: Site{0, 1}}
			ev := evaluateMove(tt.lattice, m, 1, 1, src)
			assert.True(t, ev.accepted)
			assert.Zero(t, ev.deltaEnergy)
			assert.True(t, src.exhausted(), "ΔE == 0 still consumes the acceptance draw")
		})
	}
}

func TestEvaluateMove_TemperatureScalesAcceptance(t *testing.T) {
	l := newTestLattice(2, up(0, 0), down(0, 1))
	m := Move{Source: Site{0, 0}, Spin: SpinUp, Target: Site{0, 1}}

	// exp(-1/10) ≈ 0.905: a draw of 0.8 passes at high T, fails at low T
	hot := evaluateMove(l, m, 1, 10, &scriptedSource{t: t, floats: []float64{0.8}})
	cold := evaluateMove(l, m, 1, 0.1, &scriptedSource{t: t, floats: []float64{0.8}})
	assert.True(t, hot.accepted)
	assert.False(t, cold.accepted)
}
