package engine

import "testing"

func TestAttemptBonds_BondsCloseAtoms(t *testing.T) {
	w := newTestWorld(t)
	a := mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})
	b := mustAddAtom(t, w, "H", Vec2{X: 105, Y: 100})

	// The draw is probabilistic; with the pair this close the per-pass
	// chance is ~0.26, so a couple hundred passes are plenty.
	for i := 0; i < 200 && len(w.store.bonds) == 0; i++ {
		w.attemptBonds()
	}
	if len(w.store.bonds) != 1 {
		t.Fatalf("Expected 1 bond, got %d", len(w.store.bonds))
	}
	bond := w.store.orderedBonds()[0]
	if !bond.touches(a) || !bond.touches(b) {
		t.Error("Expected the bond to connect the two placed atoms")
	}

	// Valence is fully consumed; further passes must not add bonds.
	for i := 0; i < 50; i++ {
		w.attemptBonds()
	}
	if len(w.store.bonds) != 1 {
		t.Errorf("Expected no duplicate bonds, got %d", len(w.store.bonds))
	}
}

func TestScenario_HHBondsToStableH2(t *testing.T) {
	w := newTestWorld(t)
	a := mustAddAtom(t, w, "H", Vec2{X: 1000, Y: 600})
	mustAddAtom(t, w, "H", Vec2{X: 1030, Y: 600})

	// Two lone hydrogens drift, attract, bond, and settle into the
	// dihydrogen template under full ticks.
	var m *Molecule
	for i := 0; i < 2000; i++ {
		w.Step(1.0 / 30.0)
		aAtom, _ := w.store.Atom(a)
		if aAtom.Molecule == "" {
			continue
		}
		if mol, ok := w.store.Molecule(aAtom.Molecule); ok && mol.State() == Stable {
			m = mol
			break
		}
	}
	if m == nil {
		t.Fatal("Expected the hydrogens to bond and stabilize")
	}

	if m.Formula() != "H2" {
		t.Errorf("Expected formula H2, got %q", m.Formula())
	}
	if m.Name != "Dihydrogen" {
		t.Errorf("Expected template name Dihydrogen, got %q", m.Name)
	}
	if !m.GeometryVerified() {
		t.Error("Expected geometry verified for the stable pair")
	}
	if len(w.store.bonds) != 1 {
		t.Fatalf("Expected exactly 1 bond, got %d", len(w.store.bonds))
	}
	if b := w.store.orderedBonds()[0]; b.Order != 1 {
		t.Errorf("Expected a single-order bond, got order %d", b.Order)
	}
}

func TestAttemptBonds_RespectsDistance(t *testing.T) {
	w := newTestWorld(t)
	mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})
	mustAddAtom(t, w, "H", Vec2{X: 400, Y: 100})

	for i := 0; i < 100; i++ {
		w.attemptBonds()
	}
	if len(w.store.bonds) != 0 {
		t.Errorf("Expected no bonds outside the bonding radius, got %d", len(w.store.bonds))
	}
}

func TestAttemptBonds_RespectsSuppression(t *testing.T) {
	w := newTestWorld(t)
	a := mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})
	b := mustAddAtom(t, w, "H", Vec2{X: 105, Y: 100})

	aAtom, _ := w.store.Atom(a)
	aAtom.avoid[b] = 1000

	for i := 0; i < 100; i++ {
		w.attemptBonds()
	}
	if len(w.store.bonds) != 0 {
		t.Errorf("Expected suppression to block bonding, got %d bonds", len(w.store.bonds))
	}
}

func TestAttemptBonds_SkipsSealedAtoms(t *testing.T) {
	w := newTestWorld(t)
	a := mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})
	mustAddAtom(t, w, "H", Vec2{X: 105, Y: 100})

	aAtom, _ := w.store.Atom(a)
	aAtom.Sealed = true

	for i := 0; i < 100; i++ {
		w.attemptBonds()
	}
	if len(w.store.bonds) != 0 {
		t.Errorf("Expected sealed atom never bonded, got %d bonds", len(w.store.bonds))
	}
}

func TestAttemptBonds_ConservesValence(t *testing.T) {
	w := newTestWorld(t)
	// A tight cluster with more neighbors than valence allows.
	mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	mustAddAtom(t, w, "H", Vec2{X: 110, Y: 100})
	mustAddAtom(t, w, "H", Vec2{X: 90, Y: 100})
	mustAddAtom(t, w, "H", Vec2{X: 100, Y: 110})
	mustAddAtom(t, w, "H", Vec2{X: 100, Y: 90})

	for i := 0; i < 300; i++ {
		w.attemptBonds()
	}
	for _, a := range w.store.orderedAtoms() {
		if a.AvailableValence() < 0 {
			t.Errorf("Atom %s (%s) exceeded its valence: sum %d", a.ID, a.Symbol, a.BondOrderSum())
		}
	}
}
