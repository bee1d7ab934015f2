package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is a point-in-time capture of a world. Atoms, bonds, intentions,
// and polymers are authoritative; molecules are included so that stability
// state survives a restore, but membership itself is re-derived from the
// bond graph.
type Snapshot struct {
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

// ValidateSnapshot checks a snapshot for internal consistency:
//   - atom ids are non-empty and unique
//   - atom symbols exist in the element table (when one is provided)
//   - bonds reference existing atoms with orders in 1..3
//   - no atom's total bond order exceeds its valence
//
// A nil element table skips the symbol and valence checks.
func ValidateSnapshot(snapshot Snapshot, elements *ElementTable) error {
	seen := make(map[AtomID]struct{}, len(snapshot.Atoms))
	valence := make(map[AtomID]int, len(snapshot.Atoms))
	for i, a := range snapshot.Atoms {
		if a.ID == "" {
			return fmt.Errorf("atom at index %d has empty ID", i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate atom ID: %s", a.ID)
		}
		seen[a.ID] = struct{}{}
		if elements != nil {
			e, ok := elements.Lookup(a.Symbol)
			if !ok {
				return fmt.Errorf("atom %s has unknown element symbol: %s", a.ID, a.Symbol)
			}
			valence[a.ID] = e.MaxValence
		}
	}

	seenBonds := make(map[BondID]struct{}, len(snapshot.Bonds))
	used := make(map[AtomID]int)
	for i, b := range snapshot.Bonds {
		if b.ID == "" {
			return fmt.Errorf("bond at index %d has empty ID", i)
		}
		if _, dup := seenBonds[b.ID]; dup {
			return fmt.Errorf("duplicate bond ID: %s", b.ID)
		}
		seenBonds[b.ID] = struct{}{}
		if b.Order < 1 || b.Order > 3 {
			return fmt.Errorf("bond %s has invalid order %d", b.ID, b.Order)
		}
		if _, ok := seen[b.A]; !ok {
			return fmt.Errorf("bond %s references missing atom %s", b.ID, b.A)
		}
		if _, ok := seen[b.B]; !ok {
			return fmt.Errorf("bond %s references missing atom %s", b.ID, b.B)
		}
		if b.A == b.B {
			return fmt.Errorf("bond %s bonds atom %s to itself", b.ID, b.A)
		}
		used[b.A] += b.Order
		used[b.B] += b.Order
	}
	if elements != nil {
		for id, u := range used {
			if u > valence[id] {
				return fmt.Errorf("atom %s carries bond order %d above its valence %d", id, u, valence[id])
			}
		}
	}
	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}

// Snapshot captures the world's current state.
func (w *World) Snapshot() Snapshot {
	st := w.State()
	return Snapshot{
		WorldID:    st.WorldID,
		Tick:       st.Tick,
		Width:      st.Width,
		Height:     st.Height,
		Atoms:      st.Atoms,
		Bonds:      st.Bonds,
		Molecules:  st.Molecules,
		Polymers:   st.Polymers,
		Intentions: st.Intentions,
	}
}

// WriteSnapshotFile captures the world and writes it as JSON to the given
// path.
func (w *World) WriteSnapshotFile(path string) error {
	data, err := EncodeSnapshotJSON(w.Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// writeSnapshotLocked writes a periodic snapshot into dir. Called from the
// tick loop with the world lock already held.
func (w *World) writeSnapshotLocked(dir string) error {
	snapshot := Snapshot{
		WorldID: w.id,
		Tick:    w.tick,
		Width:   w.cfg.Width,
		Height:  w.cfg.Height,
	}
	for _, a := range w.store.orderedAtoms() {
		snapshot.Atoms = append(snapshot.Atoms, w.atomState(a))
	}
	for _, b := range w.store.orderedBonds() {
		snapshot.Bonds = append(snapshot.Bonds, BondState{ID: b.ID, A: b.A, B: b.B, Order: b.Order})
	}
	for _, m := range w.store.orderedMolecules() {
		snapshot.Molecules = append(snapshot.Molecules, w.moleculeState(m))
	}
	for _, p := range w.store.orderedPolymers() {
		snapshot.Polymers = append(snapshot.Polymers, polymerState(p))
	}
	for _, in := range w.store.orderedIntentions() {
		snapshot.Intentions = append(snapshot.Intentions, intentionState(in))
	}

	data, err := EncodeSnapshotJSON(snapshot)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%d-%d.json", w.id, w.tick, time.Now().UnixMilli())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Restore replaces the world's contents with the snapshot's. Atoms, bonds,
// and intentions are restored verbatim; molecules are re-derived from the
// restored bond graph and then matched back to the snapshot's molecules by
// membership, so stability state and names carry over. Polymers are rebuilt
// from their monomers the same way.
func (w *World) Restore(snapshot Snapshot) error {
	if err := ValidateSnapshot(snapshot, w.cfg.Elements); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.store = newStore(w.cfg.Elements)
	w.index = newSpatialIndex(w.cfg.Physics.CellSize)
	w.tick = snapshot.Tick

	for _, as := range snapshot.Atoms {
		e, _ := w.cfg.Elements.Lookup(as.Symbol)
		a := newAtom(as.ID, e, as.Pos)
		a.Vel = as.Vel
		a.Sealed = as.Sealed
		a.Selected = as.Selected
		a.Highlighted = as.Highlighted
		w.store.atoms[a.ID] = a
		w.store.atomOrder = append(w.store.atomOrder, a.ID)
		w.index.Insert(a.ID, a.Pos)
	}

	// Bonds are inserted directly: AddBond refuses sealed atoms, but a
	// snapshot's sealed atoms legitimately carry their polymer-internal
	// bonds.
	for _, bs := range snapshot.Bonds {
		b := &Bond{ID: bs.ID, A: bs.A, B: bs.B, Order: bs.Order}
		w.store.bonds[b.ID] = b
		w.store.bondOrder = append(w.store.bondOrder, b.ID)
	}
	w.store.sync()

	w.reconcileAggregates()

	// Match re-derived molecules back to the snapshot's by membership.
	byKey := make(map[string]*Molecule, len(w.store.molecules))
	for _, m := range w.store.molecules {
		byKey[m.membershipKey] = m
	}
	oldToNew := make(map[MoleculeID]MoleculeID, len(snapshot.Molecules))
	for _, ms := range snapshot.Molecules {
		m, ok := byKey[membershipKeyFor(ms.Atoms)]
		if !ok {
			continue
		}
		oldToNew[ms.ID] = m.ID
		m.Name = ms.Name
		m.Selected = ms.Selected
		m.Highlighted = ms.Highlighted
		// Reshaping state is not serialized; anything mid-flight restores
		// as unstable and is re-evaluated on the next tick.
		if ms.State == Stable.String() {
			m.state = Stable
			m.geometryVerified = ms.GeometryVerified
		}
	}

	for _, ps := range snapshot.Polymers {
		p := &Polymer{
			ID:       ps.ID,
			Role:     parsePolymerRole(ps.Role),
			Chain:    ps.Chain,
			links:    make(map[PolymerID]bool),
			Selected: ps.Selected,
		}
		for _, oldID := range ps.Monomers {
			newID, ok := oldToNew[oldID]
			if !ok {
				continue
			}
			p.Monomers = append(p.Monomers, newID)
			if m, ok := w.store.molecules[newID]; ok {
				m.Polymer = p.ID
			}
		}
		if len(p.Monomers) == 0 {
			continue
		}
		w.store.polymers[p.ID] = p
	}

	for _, is := range snapshot.Intentions {
		in := &Intention{
			ID:             is.ID,
			Pos:            is.Pos,
			Radius:         is.Radius,
			TargetFormula:  is.TargetFormula,
			MonomerFormula: is.MonomerFormula,
			MonomerCount:   is.MonomerCount,
			Progress:       is.Progress,
			exclude:        make(map[string]struct{}),
		}
		switch is.Kind {
		case IntentPolymer.String():
			in.Kind = IntentPolymer
		default:
			in.Kind = IntentMolecule
			required, err := parseFormula(is.TargetFormula)
			if err != nil {
				return fmt.Errorf("intention %s has invalid formula %q: %w", is.ID, is.TargetFormula, err)
			}
			in.required = required
		}
		// Exclusion sets are not serialized. Excluding everything present
		// at restore time keeps the original meaning: an intention never
		// claims structures that predate it.
		for id := range w.store.molecules {
			in.exclude[string(id)] = struct{}{}
		}
		for id := range w.store.polymers {
			in.exclude[string(id)] = struct{}{}
		}
		w.store.intentions[in.ID] = in
	}

	w.log.Infof("world %s restored from snapshot at tick %d: %d atoms, %d bonds", w.id, snapshot.Tick, len(snapshot.Atoms), len(snapshot.Bonds))
	return nil
}

func parsePolymerRole(s string) PolymerRole {
	switch s {
	case RoleStructural.String():
		return RoleStructural
	case RoleGenetic.String():
		return RoleGenetic
	default:
		return RoleGeneric
	}
}
