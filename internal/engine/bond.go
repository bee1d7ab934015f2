package engine

// BondID is a unique identifier for a bond.
type BondID string

// Bond owns the relationship between exactly two atoms. Order 1/2/3 means
// single/double/triple; a bond of order n consumes n valence slots on each
// side. Registration and release go through the store so both atoms' weak
// back-references stay consistent.
type Bond struct {
	ID    BondID
	A     AtomID
	B     AtomID
	Order int
}

// Other returns the partner of the given atom in this bond.
// Returns "" when the atom is not part of the bond.
func (b *Bond) Other(id AtomID) AtomID {
	switch id {
	case b.A:
		return b.B
	case b.B:
		return b.A
	}
	return ""
}

// touches reports whether the bond involves the given atom.
func (b *Bond) touches(id AtomID) bool {
	return b.A == id || b.B == id
}
