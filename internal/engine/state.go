package engine

import "fmt"

// AtomState is a copied, serializable view of one atom. It doubles as the
// wire shape for the HTTP API and the snapshot format.
type AtomState struct {
	ID          AtomID     `json:"id"`
	Symbol      Symbol     `json:"symbol"`
	Pos         Vec2       `json:"pos"`
	Vel         Vec2       `json:"vel"`
	Molecule    MoleculeID `json:"molecule,omitempty"`
	Sealed      bool       `json:"sealed,omitempty"`
	MaxValence  int        `json:"max_valence"`
	UsedValence int        `json:"used_valence"`
	Selected    bool       `json:"selected,omitempty"`
	Highlighted bool       `json:"highlighted,omitempty"`
}

// BondState is a copied, serializable view of one bond.
type BondState struct {
	ID    BondID `json:"id"`
	A     AtomID `json:"a"`
	B     AtomID `json:"b"`
	Order int    `json:"order"`
}

// MoleculeState is a copied, serializable view of one molecule.
type MoleculeState struct {
	ID               MoleculeID `json:"id"`
	Atoms            []AtomID   `json:"atoms"`
	Formula          string     `json:"formula"`
	Name             string     `json:"name,omitempty"`
	State            string     `json:"state"`
	GeometryVerified bool       `json:"geometry_verified"`
	ReshapeProgress  float64    `json:"reshape_progress,omitempty"`
	Polymer          PolymerID  `json:"polymer,omitempty"`
	Center           Vec2       `json:"center"`
	Selected         bool       `json:"selected,omitempty"`
	Highlighted      bool       `json:"highlighted,omitempty"`
}

// PolymerState is a copied, serializable view of one polymer.
type PolymerState struct {
	ID       PolymerID    `json:"id"`
	Monomers []MoleculeID `json:"monomers"`
	Role     string       `json:"role"`
	Chain    int          `json:"chain"`
	Selected bool         `json:"selected,omitempty"`
}

// IntentionState is a copied, serializable view of one intention.
type IntentionState struct {
	ID             IntentionID `json:"id"`
	Kind           string      `json:"kind"`
	Pos            Vec2        `json:"pos"`
	Radius         float64     `json:"radius"`
	TargetFormula  string      `json:"target_formula,omitempty"`
	MonomerFormula string      `json:"monomer_formula,omitempty"`
	MonomerCount   int         `json:"monomer_count,omitempty"`
	Progress       float64     `json:"progress"`
}

// WorldState is a full copied view of everything in a world at one tick,
// served by the state endpoint.
type WorldState struct {
	WorldID    WorldID          `json:"world_id"`
	Tick       int64            `json:"tick"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Atoms      []AtomState      `json:"atoms"`
	Bonds      []BondState      `json:"bonds"`
	Molecules  []MoleculeState  `json:"molecules"`
	Polymers   []PolymerState   `json:"polymers"`
	Intentions []IntentionState `json:"intentions"`
}

func (w *World) atomState(a *Atom) AtomState {
	return AtomState{
		ID:          a.ID,
		Symbol:      a.Symbol,
		Pos:         a.Pos,
		Vel:         a.Vel,
		Molecule:    a.Molecule,
		Sealed:      a.Sealed,
		MaxValence:  a.element.MaxValence,
		UsedValence: a.BondOrderSum(),
		Selected:    a.Selected,
		Highlighted: a.Highlighted,
	}
}

func (w *World) moleculeState(m *Molecule) MoleculeState {
	return MoleculeState{
		ID:               m.ID,
		Atoms:            append([]AtomID(nil), m.Atoms...),
		Formula:          m.formula,
		Name:             m.Name,
		State:            m.state.String(),
		GeometryVerified: m.geometryVerified,
		ReshapeProgress:  m.ReshapeProgress(),
		Polymer:          m.Polymer,
		Center:           w.store.CenterOfMass(m),
		Selected:         m.Selected,
		Highlighted:      m.Highlighted,
	}
}

func polymerState(p *Polymer) PolymerState {
	return PolymerState{
		ID:       p.ID,
		Monomers: append([]MoleculeID(nil), p.Monomers...),
		Role:     p.Role.String(),
		Chain:    p.Chain,
		Selected: p.Selected,
	}
}

func intentionState(in *Intention) IntentionState {
	return IntentionState{
		ID:             in.ID,
		Kind:           in.Kind.String(),
		Pos:            in.Pos,
		Radius:         in.Radius,
		TargetFormula:  in.TargetFormula,
		MonomerFormula: in.MonomerFormula,
		MonomerCount:   in.MonomerCount,
		Progress:       in.Progress,
	}
}

// Atoms returns a copied view of every atom, in insertion order.
func (w *World) Atoms() []AtomState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]AtomState, 0, len(w.store.atoms))
	for _, a := range w.store.orderedAtoms() {
		out = append(out, w.atomState(a))
	}
	return out
}

// Atom returns a copied view of one atom.
func (w *World) Atom(id AtomID) (AtomState, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.store.Atom(id)
	if !ok {
		return AtomState{}, fmt.Errorf("atom %s does not exist", id)
	}
	return w.atomState(a), nil
}

// Bonds returns a copied view of every bond, in insertion order.
func (w *World) Bonds() []BondState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]BondState, 0, len(w.store.bonds))
	for _, b := range w.store.orderedBonds() {
		out = append(out, BondState{ID: b.ID, A: b.A, B: b.B, Order: b.Order})
	}
	return out
}

// Molecules returns a copied view of every molecule, sorted by id.
func (w *World) Molecules() []MoleculeState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]MoleculeState, 0, len(w.store.molecules))
	for _, m := range w.store.orderedMolecules() {
		out = append(out, w.moleculeState(m))
	}
	return out
}

// Molecule returns a copied view of one molecule.
func (w *World) Molecule(id MoleculeID) (MoleculeState, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	m, ok := w.store.Molecule(id)
	if !ok {
		return MoleculeState{}, fmt.Errorf("molecule %s does not exist", id)
	}
	return w.moleculeState(m), nil
}

// Polymers returns a copied view of every polymer, sorted by id.
func (w *World) Polymers() []PolymerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]PolymerState, 0, len(w.store.polymers))
	for _, p := range w.store.orderedPolymers() {
		out = append(out, polymerState(p))
	}
	return out
}

// Intentions returns a copied view of every intention, sorted by id.
func (w *World) Intentions() []IntentionState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]IntentionState, 0, len(w.store.intentions))
	for _, in := range w.store.orderedIntentions() {
		out = append(out, intentionState(in))
	}
	return out
}

// State returns a full copied view of the world.
func (w *World) State() WorldState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := WorldState{
		WorldID: w.id,
		Tick:    w.tick,
		Width:   w.cfg.Width,
		Height:  w.cfg.Height,
	}
	for _, a := range w.store.orderedAtoms() {
		st.Atoms = append(st.Atoms, w.atomState(a))
	}
	for _, b := range w.store.orderedBonds() {
		st.Bonds = append(st.Bonds, BondState{ID: b.ID, A: b.A, B: b.B, Order: b.Order})
	}
	for _, m := range w.store.orderedMolecules() {
		st.Molecules = append(st.Molecules, w.moleculeState(m))
	}
	for _, p := range w.store.orderedPolymers() {
		st.Polymers = append(st.Polymers, polymerState(p))
	}
	for _, in := range w.store.orderedIntentions() {
		st.Intentions = append(st.Intentions, intentionState(in))
	}
	return st
}

// Stats is a light summary of the world for list endpoints.
type Stats struct {
	WorldID       WorldID `json:"world_id"`
	Tick          int64   `json:"tick"`
	AtomCount     int     `json:"atom_count"`
	BondCount     int     `json:"bond_count"`
	MoleculeCount int     `json:"molecule_count"`
	StableCount   int     `json:"stable_count"`
	PolymerCount  int     `json:"polymer_count"`
	Intentions    int     `json:"intentions"`
	Running       bool    `json:"running"`
}

// Stats returns a count summary of the world.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	stable := 0
	for _, m := range w.store.molecules {
		if m.state == Stable {
			stable++
		}
	}
	return Stats{
		WorldID:       w.id,
		Tick:          w.tick,
		AtomCount:     len(w.store.atoms),
		BondCount:     len(w.store.bonds),
		MoleculeCount: len(w.store.molecules),
		StableCount:   stable,
		PolymerCount:  len(w.store.polymers),
		Intentions:    len(w.store.intentions),
		Running:       w.isRunning,
	}
}
