package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// InitPolicy names one of the three lattice initialization schemes.
type InitPolicy string

const (
	InitRandom            InitPolicy = "random"
	InitAntiferromagnetic InitPolicy = "af"
	InitLocalized         InitPolicy = "localized"
)

// validInitPolicies maps accepted policy strings.
var validInitPolicies = map[InitPolicy]bool{
	InitRandom:            true,
	InitAntiferromagnetic: true,
	InitLocalized:         true,
}

// IsValidInitPolicy returns true if name is a recognized initialization policy.
func IsValidInitPolicy(name string) bool {
	return validInitPolicies[InitPolicy(name)]
}

// fillRandom places min(requested, 2·N²) particles by rejection sampling:
// draw x, y, then spin; occupy the cell if empty, otherwise redraw.
// The target never exceeds capacity, so the loop always terminates.
func fillRandom(size, requested int, rng RandomSource) *Lattice {
	l := NewLattice(size)
	target := min(requested, 2*size*size)
	if target < requested {
		logrus.Warnf("requested %d electrons exceeds lattice capacity; placing %d", requested, target)
	}
	for placed := 0; placed < target; {
		x := rng.Intn(size)
		y := rng.Intn(size)
		spin := Spin(rng.Intn(2))
		if !l.Occupied(spin, x, y) {
			l.Set(spin, x, y)
			placed++
		}
	}
	return l
}

// fillAntiferromagnetic singly occupies every site with spin (x+y) mod 2.
// N must be even so the checkerboard closes across the periodic boundary.
func fillAntiferromagnetic(size int) (*Lattice, error) {
	if size%2 != 0 {
		return nil, configErrorf("size", "must be even for antiferromagnetic initialization, got %d", size)
	}
	l := NewLattice(size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			l.Set(Spin((x+y)%2), x, y)
		}
	}
	return l, nil
}

// fillLocalized doubly occupies columns y in [0, N/2) for every row x and
// leaves the rest empty.
func fillLocalized(size int) *Lattice {
	l := NewLattice(size)
	mid := size / 2
	for x := 0; x < size; x++ {
		for y := 0; y < mid; y++ {
			l.Set(SpinUp, x, y)
			l.Set(SpinDown, x, y)
		}
	}
	return l
}

// buildLattice dispatches on policy. requested is only consulted by InitRandom.
func buildLattice(policy InitPolicy, size, requested int, rng RandomSource) (*Lattice, error) {
	switch policy {
	case InitRandom:
		return fillRandom(size, requested, rng), nil
	case InitAntiferromagnetic:
		return fillAntiferromagnetic(size)
	case InitLocalized:
		return fillLocalized(size), nil
	}
	return nil, fmt.Errorf("unknown init policy %q", policy)
}
