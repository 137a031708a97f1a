package sim

// Direction is a unit hop (dx, dy) on the lattice.
type Direction struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

var (
	unbiasedDirections = [4]Direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	// +x appears twice, doubling its weight.
	biasedDirections = [4]Direction{{0, 1}, {0, -1}, {1, 0}, {1, 0}}
)

// Move is a proposed hop of one particle to a neighboring site.
type Move struct {
	Source    Site      `json:"source"`
	Spin      Spin      `json:"spin"`
	Target    Site      `json:"target"`
	Direction Direction `json:"direction"`
	Biased    bool      `json:"biased"` // the field branch selected the neighbor list
}

// wrap maps v into [0, n).
func wrap(v, n int) int {
	return ((v % n) + n) % n
}

// neighbor returns the periodic neighbor of s in direction d.
func neighbor(s Site, d Direction, n int) Site {
	return Site{X: wrap(s.X+d.DX, n), Y: wrap(s.Y+d.DY, n)}
}

// proposeMove picks a uniformly random occupied cell and a neighbor of it.
// Draw order: occupied index, field-branch real, direction index.
// Returns ok=false when the lattice holds no particles; nothing is drawn then.
func proposeMove(l *Lattice, rng RandomSource, fieldStrength float64) (Move, bool) {
	occupied := l.OccupiedParticles()
	if len(occupied) == 0 {
		return Move{}, false
	}
	p := occupied[rng.Intn(len(occupied))]

	directions := unbiasedDirections
	biased := rng.Float64() < fieldStrength
	if biased {
		directions = biasedDirections
	}
	d := directions[rng.Intn(len(directions))]

	return Move{
		Source:    p.Site,
		Spin:      p.Spin,
		Target:    neighbor(p.Site, d, l.Size()),
		Direction: d,
		Biased:    biased,
	}, true
}
