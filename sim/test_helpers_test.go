package sim

import (
	"testing"
)

// scriptedSource replays fixed draws and fails the test if a draw is
// requested that was not scripted.
type scriptedSource struct {
	t      *testing.T
	ints   []int
	floats []float64
}

func (s *scriptedSource) Intn(n int) int {
	s.t.Helper()
	if len(s.ints) == 0 {
		s.t.Fatalf("unexpected Intn(%d) draw", n)
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 || v >= n {
		s.t.Fatalf("scripted Intn value %d out of range [0,%d)", v, n)
	}
	return v
}

func (s *scriptedSource) Float64() float64 {
	s.t.Helper()
	if len(s.floats) == 0 {
		s.t.Fatal("unexpected Float64 draw")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// exhausted reports whether every scripted draw was consumed.
func (s *scriptedSource) exhausted() bool {
	return len(s.ints) == 0 && len(s.floats) == 0
}

// newTestLattice builds an N×N lattice with the given particles set.
func newTestLattice(size int, particles ...Particle) *Lattice {
	l := NewLattice(size)
	for _, p := range particles {
		l.Set(p.Spin, p.Site.X, p.Site.Y)
	}
	return l
}

func up(x, y int) Particle   { return Particle{Spin: SpinUp, Site: Site{X: x, Y: y}} }
func down(x, y int) Particle { return Particle{Spin: SpinDown, Site: Site{X: x, Y: y}} }

// newReadyEngine returns a READY engine over l driven by src, bypassing the
// initializers so tests can start from an arbitrary configuration.
func newReadyEngine(cfg SimulationConfig, l *Lattice, src RandomSource) *Engine {
	e := NewEngine(WithRandomSource(src))
	e.config = cfg
	e.lattice = l
	e.rng = src
	e.counters = newPairingCounters(l, l.Count())
	return e
}

// testConfig is the N=2, U=1, T=1 configuration used by the worked examples.
func testConfig() SimulationConfig {
	return NewSimulationConfig(2, 1.0, 1.0, 0, Int64Ptr(42))
}
