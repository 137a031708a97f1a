// sim/engine.go
package sim

import (
	"github.com/sirupsen/logrus"
)

// MoveOutcome is the result of one Step. Move is nil when the lattice held no
// particles; DeltaEnergy is only meaningful when Reason is accepted or
// metropolis_rejected.
type MoveOutcome struct {
	Accepted    bool          `json:"accepted"`
	Move        *Move         `json:"move,omitempty"`
	Reason      OutcomeReason `json:"reason"`
	DeltaEnergy float64       `json:"delta_energy"`
}

// EngineOption customizes an Engine at construction.
type EngineOption func(*Engine)

// WithRandomSource pins the engine's RandomSource. Initializers then reuse it
// instead of seeding a fresh one from SimulationConfig.Seed.
func WithRandomSource(rs RandomSource) EngineOption {
	return func(e *Engine) { e.pinned = rs }
}

// Engine owns one lattice, its configuration, and its pairing counters.
// The engine is UNINITIALIZED until an Initialize* call succeeds and READY
// afterwards; Step keeps it READY.
//
// Thread-safety: NOT thread-safe. Run independent engines for parallel chains.
type Engine struct {
	config   SimulationConfig
	lattice  *Lattice // nil while uninitialized
	counters PairingCounters
	rng      RandomSource
	pinned   RandomSource
	steps    int64
}

// NewEngine returns an uninitialized engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitializeRandom fills the lattice with min(RequestedElectrons, 2·N²)
// randomly placed particles.
func (e *Engine) InitializeRandom(cfg SimulationConfig) error {
	return e.initialize(InitRandom, cfg)
}

// InitializeAntiferromagnetic fills the lattice with a checkerboard of single
// spins. Returns a *ConfigurationError for odd N and leaves the engine as it was.
func (e *Engine) InitializeAntiferromagnetic(cfg SimulationConfig) error {
	return e.initialize(InitAntiferromagnetic, cfg)
}

// InitializeLocalized doubly occupies the left half of the lattice.
func (e *Engine) InitializeLocalized(cfg SimulationConfig) error {
	return e.initialize(InitLocalized, cfg)
}

// Initialize dispatches to the initializer named by policy.
func (e *Engine) Initialize(policy InitPolicy, cfg SimulationConfig) error {
	return e.initialize(policy, cfg)
}

func (e *Engine) initialize(policy InitPolicy, cfg SimulationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	rng := e.pinned
	if rng == nil {
		rng = NewRandomSource(cfg.Seed)
	}
	l, err := buildLattice(policy, cfg.Size, cfg.RequestedElectrons, rng)
	if err != nil {
		return err
	}
	if policy != InitRandom {
		cfg.RequestedElectrons = cfg.Size * cfg.Size
	}

	e.config = cfg
	e.lattice = l
	e.rng = rng
	e.counters = newPairingCounters(l, cfg.RequestedElectrons)
	e.steps = 0
	logrus.Debugf("initialized %s lattice: size=%d electrons=%d paired=%d",
		policy, cfg.Size, e.counters.TotalElectrons, e.counters.TotalPaired)
	return nil
}

// Initialized reports whether an initializer has succeeded.
func (e *Engine) Initialized() bool { return e.lattice != nil }

// Config returns the active configuration.
func (e *Engine) Config() SimulationConfig { return e.config }

// SetFieldStrength updates the biased-proposal probability without touching
// the lattice. Values outside [0,1] are rejected. Before initialization it
// returns ErrNotInitialized; pass the value in SimulationConfig instead.
func (e *Engine) SetFieldStrength(v float64) error {
	if e.lattice == nil {
		return ErrNotInitialized
	}
	if err := validateFieldStrength(v); err != nil {
		return err
	}
	e.config.FieldStrength = v
	return nil
}

// Lattice returns a read-only view of the occupation grid.
func (e *Engine) Lattice() (LatticeView, error) {
	if e.lattice == nil {
		return LatticeView{}, ErrNotInitialized
	}
	return LatticeView{l: e.lattice}, nil
}

// Counters returns a copy of the pairing counters.
func (e *Engine) Counters() PairingCounters { return e.counters }

// Steps returns the number of Step calls since the last initialization.
func (e *Engine) Steps() int64 { return e.steps }

// Step performs one Metropolis single-particle hop attempt:
// proposal, evaluation, and on acceptance the lattice and counter update.
func (e *Engine) Step() (MoveOutcome, error) {
	if e.lattice == nil {
		return MoveOutcome{}, ErrNotInitialized
	}
	e.steps++

	m, ok := proposeMove(e.lattice, e.rng, e.config.FieldStrength)
	if !ok {
		logrus.Tracef("[step %07d] no occupied sites", e.steps)
		return MoveOutcome{Reason: ReasonNoOccupiedSites}, nil
	}

	ev := evaluateMove(e.lattice, m, e.config.U, e.config.T, e.rng)
	if ev.accepted {
		applyMove(e.lattice, m)
		e.counters.record(ev)
	}
	logrus.Tracef("[step %07d] %s %v -> %v: %s (dE=%v)", e.steps, m.Spin, m.Source, m.Target, ev.reason, ev.deltaEnergy)

	return MoveOutcome{
		Accepted:    ev.accepted,
		Move:        &m,
		Reason:      ev.reason,
		DeltaEnergy: ev.deltaEnergy,
	}, nil
}

// VerifyPairing rescans the lattice and reports whether the incrementally
// maintained TotalPaired matches. Returns the rescanned value.
func (e *Engine) VerifyPairing() (int, bool, error) {
	if e.lattice == nil {
		return 0, false, ErrNotInitialized
	}
	scanned := countPaired(e.lattice)
	return scanned, scanned == e.counters.TotalPaired, nil
}
