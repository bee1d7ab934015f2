package engine

// AtomID is a unique identifier for an atom.
type AtomID string

// Atom is a single particle in the world. Bonds own the atom-to-atom
// relationship; the atom only keeps a weak back-reference map (bond id to
// bond order) that the store rebuilds from the bond map every tick.
type Atom struct {
	ID      AtomID
	Symbol  Symbol
	Pos     Vec2
	Vel     Vec2
	element Element

	// force accumulates during the current tick and is cleared on integration.
	force Vec2

	// bonds maps bond id to bond order. Maintained by the store; the bond
	// map is the source of truth and this is rebuilt by the sync step.
	bonds map[BondID]int

	// Molecule is the aggregate this atom currently belongs to, or "".
	Molecule MoleculeID

	// Sealed atoms belong to a polymer and refuse external bonds.
	Sealed bool

	// avoid suppresses re-bonding against specific atoms for a few ticks
	// after a decay release. Keyed by atom id, value is ticks remaining.
	avoid map[AtomID]int

	// Pure UI state, stored but never interpreted by the engine.
	Selected    bool
	Highlighted bool
}

func newAtom(id AtomID, e Element, pos Vec2) *Atom {
	return &Atom{
		ID:      id,
		Symbol:  e.Symbol,
		Pos:     pos,
		element: e,
		bonds:   make(map[BondID]int),
		avoid:   make(map[AtomID]int),
	}
}

// BondOrderSum is the total bond order this atom currently carries.
// A double bond consumes two valence slots.
func (a *Atom) BondOrderSum() int {
	sum := 0
	for _, order := range a.bonds {
		sum += order
	}
	return sum
}

// AvailableValence is the number of unused bond slots.
func (a *Atom) AvailableValence() int {
	return a.element.MaxValence - a.BondOrderSum()
}

// BondCount is the number of distinct bonds, regardless of order.
func (a *Atom) BondCount() int {
	return len(a.bonds)
}

// satisfaction is the fraction of valence currently closed, used by the
// decay model to pick the most weakly bonded atom.
func (a *Atom) satisfaction() float64 {
	if a.element.MaxValence == 0 {
		return 1
	}
	return float64(a.BondOrderSum()) / float64(a.element.MaxValence)
}

// avoids reports whether bonding with the given atom is currently suppressed.
func (a *Atom) avoids(id AtomID) bool {
	return a.avoid[id] > 0
}
