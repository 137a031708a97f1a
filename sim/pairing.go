package sim

// PairingCounters tracks double occupancy for the current lattice.
// Between steps TotalPaired == 2 × (number of doubly occupied sites).
type PairingCounters struct {
	TotalPaired        int `json:"total_paired"`        // electrons sitting on a doubly occupied site
	PairingEvents      int `json:"pairing_events"`      // accepted moves that formed a pair
	UnpairingEvents    int `json:"unpairing_events"`    // accepted moves that broke a pair
	TotalElectrons     int `json:"total_electrons"`     // particles actually placed
	RequestedElectrons int `json:"requested_electrons"` // particles asked for at init
}

// countPaired rescans the lattice and returns 2 × doubly occupied sites.
func countPaired(l *Lattice) int {
	n := 0
	for x := 0; x < l.Size(); x++ {
		for y := 0; y < l.Size(); y++ {
			if l.DoublyOccupied(x, y) {
				n += 2
			}
		}
	}
	return n
}

// newPairingCounters builds fresh counters from a full scan of l.
func newPairingCounters(l *Lattice, requested int) PairingCounters {
	return PairingCounters{
		TotalPaired:        countPaired(l),
		TotalElectrons:     l.Count(),
		RequestedElectrons: requested,
	}
}

// record applies an accepted move's pairing effects. Breaking the source pair
// and forming a target pair are independent and may both happen in one move.
func (c *PairingCounters) record(ev evaluation) {
	if ev.companionStart {
		c.UnpairingEvents++
		c.TotalPaired -= 2
	}
	if ev.companionTarget {
		c.PairingEvents++
		c.TotalPaired += 2
	}
}
