package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"
)

// === RandomSource ===

// RandomSource supplies the uniform draws consumed by initialization and
// stepping. Choices among a small fixed list are drawn with Intn(len(list)).
//
// Thread-safety: implementations need not be thread-safe. Each Engine owns
// its own RandomSource.
type RandomSource interface {
	// Intn returns a uniform integer in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a uniform real in [0, 1).
	Float64() float64
}

// NewRandomSource returns the SubsystemLattice stream for *seed, or a
// wall-clock seeded source when seed is nil.
func NewRandomSource(seed *int64) RandomSource {
	if seed == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return NewPartitionedRNG(NewSimulationKey(*seed)).ForSubsystem(SubsystemLattice)
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two engines with the same SimulationKey and identical configuration
// MUST produce identical outcome streams.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

// SubsystemLattice is the RNG subsystem driving a single engine.
// Uses the master seed directly so that --seed reproduces a standalone run.
const SubsystemLattice = "lattice"

// SubsystemReplica returns the subsystem name for ensemble replica N.
func SubsystemReplica(id int) string {
	return fmt.Sprintf("replica_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG derives deterministic, isolated seeds per subsystem.
//
// Derivation formula:
//   - For SubsystemLattice: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// SeedFor returns the derived seed for the named subsystem.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	if name == SubsystemLattice {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SeedFor(name)))
	p.subsystems[name] = rng
	return rng
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
