package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
)

// NewRandomID returns a short random hex identifier.
func NewRandomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Store is the sole owner of all entities, addressed by id. Every other
// component holds ids and resolves them through the store, so entities can be
// destroyed and recreated without dangling references.
//
// Atoms and bonds additionally keep an insertion-order slice so per-tick
// iteration is deterministic under a seeded random source.
type Store struct {
	elements *ElementTable

	atoms     map[AtomID]*Atom
	atomOrder []AtomID

	bonds     map[BondID]*Bond
	bondOrder []BondID

	molecules  map[MoleculeID]*Molecule
	polymers   map[PolymerID]*Polymer
	intentions map[IntentionID]*Intention
}

func newStore(elements *ElementTable) *Store {
	return &Store{
		elements:   elements,
		atoms:      make(map[AtomID]*Atom),
		bonds:      make(map[BondID]*Bond),
		molecules:  make(map[MoleculeID]*Molecule),
		polymers:   make(map[PolymerID]*Polymer),
		intentions: make(map[IntentionID]*Intention),
	}
}

// Atom resolves an atom id.
func (s *Store) Atom(id AtomID) (*Atom, bool) {
	a, ok := s.atoms[id]
	return a, ok
}

// Bond resolves a bond id.
func (s *Store) Bond(id BondID) (*Bond, bool) {
	b, ok := s.bonds[id]
	return b, ok
}

// Molecule resolves a molecule id.
func (s *Store) Molecule(id MoleculeID) (*Molecule, bool) {
	m, ok := s.molecules[id]
	return m, ok
}

// AddAtom creates an atom of the given element at a position.
// Rejects unknown element symbols.
func (s *Store) AddAtom(sym Symbol, pos Vec2) (*Atom, error) {
	e, ok := s.elements.Lookup(sym)
	if !ok {
		return nil, fmt.Errorf("unknown element symbol %q", sym)
	}
	a := newAtom(AtomID(NewRandomID()), e, pos)
	s.atoms[a.ID] = a
	s.atomOrder = append(s.atomOrder, a.ID)
	return a, nil
}

// RemoveAtom deletes an atom and cascades removal of every bond touching it.
func (s *Store) RemoveAtom(id AtomID) error {
	a, ok := s.atoms[id]
	if !ok {
		return fmt.Errorf("atom %s does not exist", id)
	}
	for bid := range a.bonds {
		s.removeBond(bid, Vec2{})
	}
	delete(s.atoms, id)
	s.atomOrder = removeID(s.atomOrder, id)
	return nil
}

// AddBond creates a bond between two existing atoms. Rejects duplicate
// bonds, self-bonds, sealed atoms, and bonds that would exceed either atom's
// valence. Valence conservation is enforced here and nowhere else.
func (s *Store) AddBond(aID, bID AtomID, order int) (*Bond, error) {
	if aID == bID {
		return nil, fmt.Errorf("cannot bond atom %s to itself", aID)
	}
	if order < 1 || order > 3 {
		return nil, fmt.Errorf("invalid bond order %d", order)
	}
	a, ok := s.atoms[aID]
	if !ok {
		return nil, fmt.Errorf("atom %s does not exist", aID)
	}
	b, ok := s.atoms[bID]
	if !ok {
		return nil, fmt.Errorf("atom %s does not exist", bID)
	}
	if a.Sealed || b.Sealed {
		return nil, fmt.Errorf("cannot bond sealed atoms %s, %s", aID, bID)
	}
	if s.bonded(aID, bID) {
		return nil, fmt.Errorf("atoms %s and %s are already bonded", aID, bID)
	}
	if a.AvailableValence() < order || b.AvailableValence() < order {
		return nil, fmt.Errorf("bond order %d exceeds available valence of %s or %s", order, aID, bID)
	}

	bond := &Bond{ID: BondID(NewRandomID()), A: aID, B: bID, Order: order}
	s.bonds[bond.ID] = bond
	s.bondOrder = append(s.bondOrder, bond.ID)
	a.bonds[bond.ID] = order
	b.bonds[bond.ID] = order
	return bond, nil
}

// RemoveBond deletes a bond and deregisters it from both atoms.
func (s *Store) RemoveBond(id BondID) error {
	if _, ok := s.bonds[id]; !ok {
		return fmt.Errorf("bond %s does not exist", id)
	}
	s.removeBond(id, Vec2{})
	return nil
}

// removeBond deletes a bond, optionally imparting separation velocity along
// the bond axis (used by decay releases).
func (s *Store) removeBond(id BondID, separation Vec2) {
	bond, ok := s.bonds[id]
	if !ok {
		return
	}
	if a, ok := s.atoms[bond.A]; ok {
		delete(a.bonds, id)
		a.Vel = a.Vel.Sub(separation)
	}
	if b, ok := s.atoms[bond.B]; ok {
		delete(b.bonds, id)
		b.Vel = b.Vel.Add(separation)
	}
	delete(s.bonds, id)
	s.bondOrder = removeID(s.bondOrder, id)
}

// bonded reports whether a bond already connects the two atoms.
func (s *Store) bonded(aID, bID AtomID) bool {
	a, ok := s.atoms[aID]
	if !ok {
		return false
	}
	for bid := range a.bonds {
		if bond, ok := s.bonds[bid]; ok && bond.touches(bID) {
			return true
		}
	}
	return false
}

// bondsOf returns the bonds touching an atom, sorted by id for determinism.
func (s *Store) bondsOf(a *Atom) []*Bond {
	out := make([]*Bond, 0, len(a.bonds))
	for bid := range a.bonds {
		if bond, ok := s.bonds[bid]; ok {
			out = append(out, bond)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// orderedAtoms returns atoms in insertion order.
func (s *Store) orderedAtoms() []*Atom {
	out := make([]*Atom, 0, len(s.atomOrder))
	for _, id := range s.atomOrder {
		if a, ok := s.atoms[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// orderedBonds returns bonds in insertion order.
func (s *Store) orderedBonds() []*Bond {
	out := make([]*Bond, 0, len(s.bondOrder))
	for _, id := range s.bondOrder {
		if b, ok := s.bonds[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// orderedMolecules returns molecules sorted by id for deterministic ticks.
func (s *Store) orderedMolecules() []*Molecule {
	out := make([]*Molecule, 0, len(s.molecules))
	for _, m := range s.molecules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// orderedPolymers returns polymers sorted by id.
func (s *Store) orderedPolymers() []*Polymer {
	out := make([]*Polymer, 0, len(s.polymers))
	for _, p := range s.polymers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// orderedIntentions returns intentions sorted by id.
func (s *Store) orderedIntentions() []*Intention {
	out := make([]*Intention, 0, len(s.intentions))
	for _, in := range s.intentions {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sync is the per-tick self-healing pass: the bond map is the source of
// truth, so prune bonds whose atoms are gone, rebuild every atom's weak bond
// set from it, clear aggregate membership of bondless atoms, and age out
// re-bond suppression tags.
func (s *Store) sync() {
	for _, id := range append([]BondID(nil), s.bondOrder...) {
		bond := s.bonds[id]
		_, okA := s.atoms[bond.A]
		_, okB := s.atoms[bond.B]
		if !okA || !okB {
			s.removeBond(id, Vec2{})
		}
	}

	for _, a := range s.atoms {
		for bid := range a.bonds {
			if _, ok := s.bonds[bid]; !ok {
				delete(a.bonds, bid)
			}
		}
	}
	for _, b := range s.bonds {
		s.atoms[b.A].bonds[b.ID] = b.Order
		s.atoms[b.B].bonds[b.ID] = b.Order
	}

	for _, a := range s.atoms {
		if len(a.bonds) == 0 {
			a.Molecule = ""
		}
		for id, ticks := range a.avoid {
			if ticks <= 1 {
				delete(a.avoid, id)
			} else {
				a.avoid[id] = ticks - 1
			}
		}
	}
}

func removeID[T comparable](s []T, v T) []T {
	for i := range s {
		if s[i] == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
