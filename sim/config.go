package sim

// SimulationConfig groups the physical and run parameters of one engine.
// Everything except FieldStrength is fixed for the lifetime of a lattice.
type SimulationConfig struct {
	Size               int     // lattice edge N (must be >= 1)
	U                  float64 // on-site repulsion
	T                  float64 // hopping/temperature scale (must be > 0)
	RequestedElectrons int     // target particle count for random init (must be >= 0)
	FieldStrength      float64 // per-step probability of a rightward-biased proposal, in [0,1]
	Seed               *int64  // nil = seed from the wall clock
}

// NewSimulationConfig builds a SimulationConfig with zero field strength.
func NewSimulationConfig(size int, u, t float64, requestedElectrons int, seed *int64) SimulationConfig {
	return SimulationConfig{
		Size:               size,
		U:                  u,
		T:                  t,
		RequestedElectrons: requestedElectrons,
		Seed:               seed,
	}
}

// Capacity returns the maximum number of particles the lattice can hold (2·N²).
func (c SimulationConfig) Capacity() int {
	return 2 * c.Size * c.Size
}

// Validate checks the parameters shared by all initializers.
func (c SimulationConfig) Validate() error {
	if c.Size < 1 {
		return configErrorf("size", "must be >= 1, got %d", c.Size)
	}
	if !(c.T > 0) {
		return configErrorf("T", "must be > 0, got %v", c.T)
	}
	if c.RequestedElectrons < 0 {
		return configErrorf("requested electrons", "must be >= 0, got %d", c.RequestedElectrons)
	}
	return validateFieldStrength(c.FieldStrength)
}

func validateFieldStrength(v float64) error {
	if !(v >= 0 && v <= 1) {
		return configErrorf("field strength", "must be in [0,1], got %v", v)
	}
	return nil
}

// Int64Ptr is a convenience for populating SimulationConfig.Seed.
func Int64Ptr(v int64) *int64 { return &v }
