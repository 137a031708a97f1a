package sim

import "fmt"

// Spin labels one of the two occupation layers.
type Spin int

const (
	SpinUp   Spin = 0
	SpinDown Spin = 1
)

// Opposite returns the other spin layer.
func (s Spin) Opposite() Spin { return 1 - s }

func (s Spin) String() string {
	switch s {
	case SpinUp:
		return "up"
	case SpinDown:
		return "down"
	}
	return fmt.Sprintf("Spin(%d)", int(s))
}

// Site is one (x, y) cell of the periodic lattice.
type Site struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Particle addresses one occupation cell: a spin layer at a site.
type Particle struct {
	Spin Spin
	Site Site
}

// Lattice is the N×N occupation grid, one binary plane per spin layer.
// Each (spin, x, y) cell holds 0 or 1 occupants.
type Lattice struct {
	size  int
	cells [2][]bool // indexed [spin][x*size+y]
}

// NewLattice allocates an empty N×N lattice.
func NewLattice(size int) *Lattice {
	return &Lattice{
		size:  size,
		cells: [2][]bool{make([]bool, size*size), make([]bool, size*size)},
	}
}

// Size returns N.
func (l *Lattice) Size() int { return l.size }

func (l *Lattice) index(x, y int) int { return x*l.size + y }

// Contains reports whether (x, y) lies on the lattice.
func (l *Lattice) Contains(x, y int) bool {
	return x >= 0 && x < l.size && y >= 0 && y < l.size
}

// Occupied reports whether the given spin layer is occupied at (x, y).
func (l *Lattice) Occupied(spin Spin, x, y int) bool {
	return l.cells[spin][l.index(x, y)]
}

// Set marks (spin, x, y) occupied.
func (l *Lattice) Set(spin Spin, x, y int) { l.cells[spin][l.index(x, y)] = true }

// Clear marks (spin, x, y) empty.
func (l *Lattice) Clear(spin Spin, x, y int) { l.cells[spin][l.index(x, y)] = false }

// DoublyOccupied reports whether both layers are occupied at (x, y).
func (l *Lattice) DoublyOccupied(x, y int) bool {
	i := l.index(x, y)
	return l.cells[SpinUp][i] && l.cells[SpinDown][i]
}

// OccupiedParticles lists every occupied cell in (spin, x, y) row-major order.
func (l *Lattice) OccupiedParticles() []Particle {
	var out []Particle
	for spin := SpinUp; spin <= SpinDown; spin++ {
		for x := 0; x < l.size; x++ {
			for y := 0; y < l.size; y++ {
				if l.Occupied(spin, x, y) {
					out = append(out, Particle{Spin: spin, Site: Site{X: x, Y: y}})
				}
			}
		}
	}
	return out
}

// Count returns the number of occupied cells across both layers.
func (l *Lattice) Count() int {
	n := 0
	for spin := range l.cells {
		for _, occ := range l.cells[spin] {
			if occ {
				n++
			}
		}
	}
	return n
}

// LatticeView is a read-only handle on an engine's lattice.
// It reflects subsequent steps; use Snapshot for a frozen copy.
// Coordinates outside [0, N) read as empty.
type LatticeView struct {
	l *Lattice
}

func (v LatticeView) Size() int                     { return v.l.Size() }
func (v LatticeView) Contains(x, y int) bool        { return v.l.Contains(x, y) }
func (v LatticeView) Count() int                    { return v.l.Count() }
func (v LatticeView) OccupiedParticles() []Particle { return v.l.OccupiedParticles() }

// Occupied reports whether spin occupies (x, y); false off the lattice.
func (v LatticeView) Occupied(spin Spin, x, y int) bool {
	return v.l.Contains(x, y) && v.l.Occupied(spin, x, y)
}

// DoublyOccupied reports whether (x, y) holds both spins; false off the lattice.
func (v LatticeView) DoublyOccupied(x, y int) bool {
	return v.l.Contains(x, y) && v.l.DoublyOccupied(x, y)
}

// Snapshot returns an independent copy of the grid as [spin][x][y].
func (v LatticeView) Snapshot() [2][][]bool {
	var out [2][][]bool
	n := v.l.size
	for spin := range out {
		out[spin] = make([][]bool, n)
		for x := 0; x < n; x++ {
			out[spin][x] = make([]bool, n)
			for y := 0; y < n; y++ {
				out[spin][x][y] = v.l.Occupied(Spin(spin), x, y)
			}
		}
	}
	return out
}

// String renders the grid one row per x, using the glyphs ↑, ↓, ↑↓ and '.'.
func (v LatticeView) String() string {
	var b []byte
	n := v.l.size
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			if y > 0 {
				b = append(b, ' ')
			}
			up, down := v.l.Occupied(SpinUp, x, y), v.l.Occupied(SpinDown, x, y)
			switch {
			case up && down:
				b = append(b, "↑↓"...)
			case up:
				b = append(b, "↑ "...)
			case down:
				b = append(b, "↓ "...)
			default:
				b = append(b, ". "...)
			}
		}
		b = append(b, '\n')
	}
	return string(b)
}
