package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Uninitialized_OperationsFail(t *testing.T) {
	e := NewEngine()

	_, err := e.Step()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = e.Lattice()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, _, err = e.VerifyPairing()
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, e.SetFieldStrength(0.5), ErrNotInitialized)
	assert.Zero(t, e.Config().FieldStrength)

	assert.Equal(t, PairingCounters{}, e.Counters())
}

func TestEngine_PairedSourceToEmptyTarget_UnconditionalAccept(t *testing.T) {
	// GIVEN N=2, U=1, T=1 with a pair at (0,0)
	l := newTestLattice(2, up(0, 0), down(0, 0))
	// occupied[0] = up(0,0); field draw 0.9 (no bias at field 0); direction 0 = (0,+1)
	src := &scriptedSource{t: t, ints: []int{0, 0}, floats: []float64{0.9}}
	e := newReadyEngine(testConfig(), l, src)
	require.Equal(t, 2, e.Counters().TotalPaired)

	// WHEN the up electron is proposed to hop to (0,1)
	o, err := e.Step()
	require.NoError(t, err)

	// THEN ΔE = -1 and the move is accepted without an acceptance draw
	assert.True(t, src.exhausted())
	assert.True(t, o.Accepted)
	assert.Equal(t, ReasonAccepted, o.Reason)
	assert.Equal(t, -1.0, o.DeltaEnergy)
	require.NotNil(t, o.Move)
	assert.Equal(t, Site{0, 0}, o.Move.Source)
	assert.Equal(t, Site{0, 1}, o.Move.Target)
	assert.Equal(t, SpinUp, o.Move.Spin)

	assert.False(t, l.Occupied(SpinUp, 0, 0))
	assert.True(t, l.Occupied(SpinUp, 0, 1))
	c := e.Counters()
	assert.Equal(t, 1, c.UnpairingEvents)
	assert.Equal(t, 0, c.PairingEvents)
	assert.Equal(t, 0, c.TotalPaired)
}

func TestEngine_UnpairedSourceToCompanionTarget_Metropolis(t *testing.T) {
	tests := []struct {
		name       string
		draw       float64
		wantAccept bool
	}{
		{"draw 0.5 above exp(-1)", 0.5, false},
		{"draw 0.2 below exp(-1)", 0.2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN up at (0,0) and down at (0,1): moving up to (0,1) costs U
			l := newTestLattice(2, up(0, 0), down(0, 1))
			src := &scriptedSource{t: t, ints: []int{0, 0}, floats: []float64{0.9, tt.draw}}
			e := newReadyEngine(testConfig(), l, src)
			before := LatticeView{l: l}.Snapshot()

			// WHEN stepped
			o, err := e.Step()
			require.NoError(t, err)

			// THEN ΔE = +1 and acceptance follows exp(-1) ≈ 0.3679
			assert.True(t, src.exhausted())
			assert.Equal(t, 1.0, o.DeltaEnergy)
			assert.Equal(t, tt.wantAccept, o.Accepted)
			c := e.Counters()
			if tt.wantAccept {
				assert.True(t, l.DoublyOccupied(0, 1))
				assert.Equal(t, 1, c.PairingEvents)
				assert.Equal(t, 2, c.TotalPaired)
			} else {
				assert.Equal(t, ReasonMetropolisRejected, o.Reason)
				assert.Equal(t, before, LatticeView{l: l}.Snapshot(), "rejected move leaves lattice unchanged")
				assert.Equal(t, PairingCounters{TotalElectrons: 2, RequestedElectrons: 2}, c)
			}
		})
	}
}

func TestEngine_PairToPair_BothCountersApplied(t *testing.T) {
	// GIVEN a pair at (0,0) and a lone down at (0,1)
	l := newTestLattice(2, up(0, 0), down(0, 0), down(0, 1))
	src := &scriptedSource{t: t, ints: []int{0, 0}, floats: []float64{0.9, 0.5}}
	e := newReadyEngine(testConfig(), l, src)

	// WHEN up moves from (0,0) to (0,1): ΔE = -U + U = 0
	o, err := e.Step()
	require.NoError(t, err)

	// THEN it is accepted and both events are recorded independently
	assert.True(t, o.Accepted)
	c := e.Counters()
	assert.Equal(t, 1, c.UnpairingEvents)
	assert.Equal(t, 1, c.PairingEvents)
	assert.Equal(t, 2, c.TotalPaired)
	scanned, ok, err := e.VerifyPairing()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, scanned)
}

func TestEngine_Excluded_NoAcceptanceDraw(t *testing.T) {
	l := newTestLattice(2, up(0, 0), up(0, 1))
	src := &scriptedSource{t: t, ints: []int{0, 0}, floats: []float64{0.9}}
	e := newReadyEngine(testConfig(), l, src)

	o, err := e.Step()
	require.NoError(t, err)
	assert.True(t, src.exhausted())
	assert.False(t, o.Accepted)
	assert.Equal(t, ReasonExcluded, o.Reason)
	assert.Equal(t, 2, l.Count())
}

func TestEngine_ZeroOccupiedSites_EmptyOutcomeNotError(t *testing.T) {
	// GIVEN a random init with zero electrons
	e := NewEngine()
	require.NoError(t, e.InitializeRandom(NewSimulationConfig(3, 1, 1, 0, Int64Ptr(1))))

	// WHEN stepped
	o, err := e.Step()

	// THEN the outcome is rejected with no coordinates
	require.NoError(t, err)
	assert.False(t, o.Accepted)
	assert.Nil(t, o.Move)
	assert.Equal(t, ReasonNoOccupiedSites, o.Reason)
	assert.EqualValues(t, 1, e.Steps())
}

func TestEngine_FieldStrength_MutableWithoutReinit(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeLocalized(NewSimulationConfig(4, 1, 1, 0, Int64Ptr(3))))
	view, _ := e.Lattice()
	before := view.Snapshot()

	require.NoError(t, e.SetFieldStrength(0.75))
	assert.Equal(t, 0.75, e.Config().FieldStrength)
	assert.Equal(t, before, view.Snapshot())

	err := e.SetFieldStrength(1.01)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, 0.75, e.Config().FieldStrength, "rejected value must not be applied")
	assert.Error(t, e.SetFieldStrength(math.NaN()))
	assert.Error(t, e.SetFieldStrength(-0.1))
}

func TestEngine_LongRun_InvariantsHold(t *testing.T) {
	policies := []struct {
		policy InitPolicy
		cfg    SimulationConfig
	}{
		{InitRandom, SimulationConfig{Size: 6, U: 1, T: 0.5, RequestedElectrons: 40, FieldStrength: 0.3, Seed: Int64Ptr(17)}},
		{InitAntiferromagnetic, SimulationConfig{Size: 4, U: 4, T: 1, FieldStrength: 0.9, Seed: Int64Ptr(18)}},
		{InitLocalized, SimulationConfig{Size: 5, U: 0.5, T: 2, Seed: Int64Ptr(19)}},
	}
	for _, p := range policies {
		t.Run(string(p.policy), func(t *testing.T) {
			e := NewEngine()
			require.NoError(t, e.Initialize(p.policy, p.cfg))
			view, _ := e.Lattice()
			electrons := e.Counters().TotalElectrons

			for i := 0; i < 5000; i++ {
				before := view.Snapshot()
				o, err := e.Step()
				require.NoError(t, err)

				if o.Move != nil && o.Accepted {
					m := o.Move
					// exclusion: source occupied → empty, target empty → occupied
					require.True(t, before[m.Spin][m.Source.X][m.Source.Y])
					require.False(t, before[m.Spin][m.Target.X][m.Target.Y])
					require.False(t, view.Occupied(m.Spin, m.Source.X, m.Source.Y))
					require.True(t, view.Occupied(m.Spin, m.Target.X, m.Target.Y))
				} else {
					require.Equal(t, before, view.Snapshot(), "rejected step %d mutated the lattice", i)
				}
				if o.DeltaEnergy < 0 {
					require.True(t, o.Accepted, "ΔE < 0 must always be accepted")
				}

				_, ok, err := e.VerifyPairing()
				require.NoError(t, err)
				require.True(t, ok, "step %d: incremental TotalPaired diverged from rescan", i)
				require.Equal(t, electrons, view.Count(), "particle number is conserved")
			}

			c := e.Counters()
			assert.Equal(t, c.TotalPaired, countPaired(e.lattice))
			assert.GreaterOrEqual(t, c.PairingEvents, 0)
			assert.GreaterOrEqual(t, c.UnpairingEvents, 0)
		})
	}
}

func TestEngine_FieldStrength_FromConfigSurvivesInit(t *testing.T) {
	// GIVEN a field strength supplied through the config
	cfg := NewSimulationConfig(4, 1, 1, 0, Int64Ptr(5))
	cfg.FieldStrength = 0.6
	e := NewEngine()

	// WHEN initialized
	require.NoError(t, e.InitializeLocalized(cfg))

	// THEN the value is active and can be changed afterwards
	assert.Equal(t, 0.6, e.Config().FieldStrength)
	require.NoError(t, e.SetFieldStrength(0.1))
	assert.Equal(t, 0.1, e.Config().FieldStrength)
}

func TestEngine_SameSeed_IdenticalOutcomeStreams(t *testing.T) {
	cfg := SimulationConfig{Size: 5, U: 1, T: 1, RequestedElectrons: 20, FieldStrength: 0.4, Seed: Int64Ptr(123)}
	e1, e2 := NewEngine(), NewEngine()
	require.NoError(t, e1.InitializeRandom(cfg))
	require.NoError(t, e2.InitializeRandom(cfg))

	for i := 0; i < 1000; i++ {
		o1, err := e1.Step()
		require.NoError(t, err)
		o2, err := e2.Step()
		require.NoError(t, err)
		require.Equal(t, o1, o2, "step %d diverged", i)
	}
	assert.Equal(t, e1.Counters(), e2.Counters())
}

func TestEngine_Reinitialize_ResetsCounters(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.InitializeLocalized(NewSimulationConfig(4, 1, 1, 0, Int64Ptr(8))))
	for i := 0; i < 200; i++ {
		_, err := e.Step()
		require.NoError(t, err)
	}
	require.NotZero(t, e.Counters().UnpairingEvents)

	require.NoError(t, e.InitializeAntiferromagnetic(NewSimulationConfig(4, 1, 1, 0, Int64Ptr(8))))
	c := e.Counters()
	assert.Zero(t, c.PairingEvents)
	assert.Zero(t, c.UnpairingEvents)
	assert.Zero(t, c.TotalPaired)
	assert.Zero(t, e.Steps())
}
