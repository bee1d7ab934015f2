package engine

import "fmt"

// PolymerID is a unique identifier for a polymer.
type PolymerID string

// PolymerRole is the closed enumeration of biological roles a polymer can
// take, derived from the elemental composition of its monomers.
type PolymerRole int

const (
	RoleGeneric PolymerRole = iota
	RoleStructural
	RoleGenetic
)

func (r PolymerRole) String() string {
	switch r {
	case RoleStructural:
		return "structural"
	case RoleGenetic:
		return "genetic"
	default:
		return "generic"
	}
}

// Polymer is an ordered, sealed chain of stable monomers. Membership is
// immutable once sealed; member atoms are barred from external bonding for
// the polymer's lifetime.
type Polymer struct {
	ID       PolymerID
	Monomers []MoleculeID
	Role     PolymerRole

	// Chain is the cumulative chain level shared across a joined set of
	// polymers; it grows each time two compatible polymers link.
	Chain int

	// links records polymers this one has already chained with, so the
	// per-tick chaining pass doesn't recount the same pair.
	links map[PolymerID]bool

	Selected bool
}

// classifyRole derives the biological role from element presence:
// phosphorus plus nitrogen reads as genetic, nitrogen alone as structural.
func classifyRole(counts map[Symbol]int) PolymerRole {
	hasN := counts["N"] > 0
	hasP := counts["P"] > 0
	switch {
	case hasP && hasN:
		return RoleGenetic
	case hasN:
		return RoleStructural
	default:
		return RoleGeneric
	}
}

// complementaryRoles reports whether two roles form a recognized pair that
// may chain across types.
func complementaryRoles(a, b PolymerRole) bool {
	return (a == RoleStructural && b == RoleGenetic) ||
		(a == RoleGenetic && b == RoleStructural)
}

// isMonomer reports whether a molecule is polymer-eligible: Stable AND
// matching a reactive template, not merely any stable molecule.
func (w *World) isMonomer(m *Molecule) bool {
	if m.state != Stable || m.Polymer != "" {
		return false
	}
	tmpl, ok := w.templates.ForFormula(m.formula)
	return ok && tmpl.Reactive
}

// FormPolymer assembles the given monomers, in order, into a sealed polymer.
// Every molecule must currently be a stable monomer and not already sealed.
func (w *World) formPolymer(monomers []MoleculeID) (*Polymer, error) {
	if len(monomers) < 2 {
		return nil, fmt.Errorf("polymer needs at least 2 monomers, got %d", len(monomers))
	}
	s := w.store

	counts := make(map[Symbol]int)
	mols := make([]*Molecule, 0, len(monomers))
	for _, id := range monomers {
		m, ok := s.molecules[id]
		if !ok {
			return nil, fmt.Errorf("molecule %s does not exist", id)
		}
		if !w.isMonomer(m) {
			return nil, fmt.Errorf("molecule %s (%s) is not a stable monomer", id, m.formula)
		}
		for sym, n := range s.elementCounts(m) {
			counts[sym] += n
		}
		mols = append(mols, m)
	}

	p := &Polymer{
		ID:       PolymerID(NewRandomID()),
		Monomers: append([]MoleculeID(nil), monomers...),
		Role:     classifyRole(counts),
		links:    make(map[PolymerID]bool),
	}
	for _, m := range mols {
		m.Polymer = p.ID
		for _, aid := range m.Atoms {
			if a, ok := s.atoms[aid]; ok {
				a.Sealed = true
			}
		}
	}
	s.polymers[p.ID] = p

	w.emit(Event{
		Kind:      EventPolymerFormed,
		PolymerID: p.ID,
		Formula:   mols[0].formula,
		Role:      p.Role.String(),
	})
	return p, nil
}

// chainPolymers links sealed polymers whose centroids sit within the chain
// radius and whose roles are identical or a complementary pair. Each link
// bumps the cumulative chain counter shared by the whole joined set.
func (w *World) chainPolymers() {
	polymers := w.store.orderedPolymers()
	for i := 0; i < len(polymers); i++ {
		for j := i + 1; j < len(polymers); j++ {
			a, b := polymers[i], polymers[j]
			if a.links[b.ID] {
				continue
			}
			if a.Role != b.Role && !complementaryRoles(a.Role, b.Role) {
				continue
			}
			ca, okA := w.polymerCentroid(a)
			cb, okB := w.polymerCentroid(b)
			if !okA || !okB || ca.Distance(cb) > w.cfg.Physics.ChainRadius {
				continue
			}
			level := a.Chain + b.Chain + 1
			a.links[b.ID] = true
			b.links[a.ID] = true
			// The counter is shared across the whole joined set, not just
			// the linking pair.
			for _, p := range w.linkedSet(a) {
				p.Chain = level
			}
			w.emit(Event{
				Kind:      EventPolymersChained,
				PolymerID: a.ID,
				PartnerID: b.ID,
				Chain:     level,
			})
		}
	}
}

// linkedSet walks the link graph from p, returning every transitively
// joined polymer, p included.
func (w *World) linkedSet(p *Polymer) []*Polymer {
	visited := map[PolymerID]bool{p.ID: true}
	queue := []*Polymer{p}
	set := make([]*Polymer, 0, 4)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		set = append(set, cur)
		for id := range cur.links {
			if visited[id] {
				continue
			}
			visited[id] = true
			if next, ok := w.store.polymers[id]; ok {
				queue = append(queue, next)
			}
		}
	}
	return set
}

// polymerCentroid averages the centers of mass of the member monomers.
func (w *World) polymerCentroid(p *Polymer) (Vec2, bool) {
	var sum Vec2
	n := 0
	for _, id := range p.Monomers {
		if m, ok := w.store.molecules[id]; ok {
			sum = sum.Add(w.store.CenterOfMass(m))
			n++
		}
	}
	if n == 0 {
		return Vec2{}, false
	}
	return sum.Scale(1 / float64(n)), true
}
