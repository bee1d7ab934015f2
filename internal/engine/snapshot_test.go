package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateSnapshot(t *testing.T) {
	elements := NewElementTable(DefaultElements()...)

	valid := Snapshot{
		Atoms: []AtomState{
			{ID: "a1", Symbol: "O"},
			{ID: "a2", Symbol: "H"},
		},
		Bonds: []BondState{{ID: "b1", A: "a1", B: "a2", Order: 1}},
	}
	if err := ValidateSnapshot(valid, elements); err != nil {
		t.Errorf("Expected valid snapshot, got %v", err)
	}

	tests := []struct {
		name     string
		snapshot Snapshot
	}{
		{"empty atom id", Snapshot{Atoms: []AtomState{{ID: "", Symbol: "H"}}}},
		{"duplicate atom id", Snapshot{Atoms: []AtomState{{ID: "a", Symbol: "H"}, {ID: "a", Symbol: "H"}}}},
		{"unknown symbol", Snapshot{Atoms: []AtomState{{ID: "a", Symbol: "Zz"}}}},
		{"empty bond id", Snapshot{
			Atoms: []AtomState{{ID: "a", Symbol: "H"}, {ID: "b", Symbol: "H"}},
			Bonds: []BondState{{ID: "", A: "a", B: "b", Order: 1}},
		}},
		{"duplicate bond id", Snapshot{
			Atoms: []AtomState{{ID: "a", Symbol: "O"}, {ID: "b", Symbol: "H"}, {ID: "c", Symbol: "H"}},
			Bonds: []BondState{
				{ID: "x", A: "a", B: "b", Order: 1},
				{ID: "x", A: "a", B: "c", Order: 1},
			},
		}},
		{"bad order", Snapshot{
			Atoms: []AtomState{{ID: "a", Symbol: "H"}, {ID: "b", Symbol: "H"}},
			Bonds: []BondState{{ID: "x", A: "a", B: "b", Order: 4}},
		}},
		{"missing atom ref", Snapshot{
			Atoms: []AtomState{{ID: "a", Symbol: "H"}},
			Bonds: []BondState{{ID: "x", A: "a", B: "ghost", Order: 1}},
		}},
		{"self bond", Snapshot{
			Atoms: []AtomState{{ID: "a", Symbol: "O"}},
			Bonds: []BondState{{ID: "x", A: "a", B: "a", Order: 1}},
		}},
		{"valence exceeded", Snapshot{
			Atoms: []AtomState{{ID: "a", Symbol: "H"}, {ID: "b", Symbol: "O"}},
			Bonds: []BondState{{ID: "x", A: "a", B: "b", Order: 2}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSnapshot(tt.snapshot, elements); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}

func TestValidateSnapshot_NilTableSkipsElementChecks(t *testing.T) {
	snapshot := Snapshot{Atoms: []AtomState{{ID: "a", Symbol: "Zz"}}}
	if err := ValidateSnapshot(snapshot, nil); err != nil {
		t.Errorf("Expected element checks skipped with nil table, got %v", err)
	}
}

func TestEncodeDecodeSnapshotJSON(t *testing.T) {
	in := Snapshot{
		WorldID: "w",
		Tick:    42,
		Width:   800,
		Height:  600,
		Atoms:   []AtomState{{ID: "a", Symbol: "H", Pos: Vec2{X: 1, Y: 2}}},
	}
	data, err := EncodeSnapshotJSON(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := DecodeSnapshotJSON(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.WorldID != "w" || out.Tick != 42 || len(out.Atoms) != 1 {
		t.Errorf("Roundtrip mismatch: %+v", out)
	}
	if out.Atoms[0].Pos.X != 1 || out.Atoms[0].Pos.Y != 2 {
		t.Errorf("Atom position lost: %+v", out.Atoms[0])
	}
}

func TestDecodeSnapshotJSON_Invalid(t *testing.T) {
	if _, err := DecodeSnapshotJSON([]byte("{not json")); err == nil {
		t.Error("Expected decode error for malformed JSON")
	}
}

func TestSnapshotRestore_Roundtrip(t *testing.T) {
	w := newTestWorld(t)
	stable := buildStable(t, w, "H2O", Vec2{X: 300, Y: 300})
	free := mustAddAtom(t, w, "C", Vec2{X: 700, Y: 500})
	if _, err := w.AddMoleculeIntention(Vec2{X: 900, Y: 600}, 150, "CO2"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}
	w.Step(1.0 / 30.0)

	snapshot := w.Snapshot()

	w2 := NewWorld("restored", Config{Seed: 2})
	if err := w2.Restore(snapshot); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if w2.Tick() != w.Tick() {
		t.Errorf("Expected tick %d restored, got %d", w.Tick(), w2.Tick())
	}
	if len(w2.Atoms()) != len(w.Atoms()) {
		t.Errorf("Expected %d atoms, got %d", len(w.Atoms()), len(w2.Atoms()))
	}
	if len(w2.Bonds()) != len(w.Bonds()) {
		t.Errorf("Expected %d bonds, got %d", len(w.Bonds()), len(w2.Bonds()))
	}

	// Stability state and name carried over via membership matching.
	mols := w2.Molecules()
	if len(mols) != 1 {
		t.Fatalf("Expected 1 molecule, got %d", len(mols))
	}
	if mols[0].State != "stable" {
		t.Errorf("Expected stable state restored, got %s", mols[0].State)
	}
	if mols[0].Name != stable.Name {
		t.Errorf("Expected name %q restored, got %q", stable.Name, mols[0].Name)
	}
	if !mols[0].GeometryVerified {
		t.Error("Expected geometry verification restored")
	}

	if _, err := w2.Atom(free); err != nil {
		t.Errorf("Expected free atom restored: %v", err)
	}
	if got := len(w2.Intentions()); got != 1 {
		t.Errorf("Expected 1 intention restored, got %d", got)
	}
}

func TestSnapshotRestore_Polymer(t *testing.T) {
	w := newTestWorld(t)
	m1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 200})
	m2 := buildStable(t, w, "H3N", Vec2{X: 320, Y: 200})
	if _, err := w.formPolymer([]MoleculeID{m1.ID, m2.ID}); err != nil {
		t.Fatalf("formPolymer failed: %v", err)
	}

	w2 := NewWorld("restored", Config{Seed: 2})
	if err := w2.Restore(w.Snapshot()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	polymers := w2.Polymers()
	if len(polymers) != 1 {
		t.Fatalf("Expected 1 polymer, got %d", len(polymers))
	}
	if len(polymers[0].Monomers) != 2 {
		t.Errorf("Expected 2 monomers, got %d", len(polymers[0].Monomers))
	}
	if polymers[0].Role != "structural" {
		t.Errorf("Expected structural role restored, got %s", polymers[0].Role)
	}
	for _, a := range w2.Atoms() {
		if !a.Sealed {
			t.Errorf("Expected atom %s sealed after restore", a.ID)
		}
	}
}

func TestSnapshotRestore_RejectsInvalid(t *testing.T) {
	w := newTestWorld(t)
	bad := Snapshot{Atoms: []AtomState{{ID: "a", Symbol: "Zz"}}}
	if err := w.Restore(bad); err == nil {
		t.Error("Expected restore rejected for invalid snapshot")
	}
}

func TestWriteSnapshotFile(t *testing.T) {
	w := newTestWorld(t)
	mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})

	path := filepath.Join(t.TempDir(), "world.json")
	if err := w.WriteSnapshotFile(path); err != nil {
		t.Fatalf("WriteSnapshotFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	snapshot, err := DecodeSnapshotJSON(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(snapshot.Atoms) != 1 {
		t.Errorf("Expected 1 atom in snapshot file, got %d", len(snapshot.Atoms))
	}
}

func TestPeriodicSnapshots(t *testing.T) {
	w := newTestWorld(t)
	dir := t.TempDir()
	w.SetSnapshotDir(dir)
	w.SetSnapshotEveryNTicks(2)

	for i := 0; i < 4; i++ {
		w.Step(1.0 / 30.0)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 periodic snapshots, got %d", len(entries))
	}
}
