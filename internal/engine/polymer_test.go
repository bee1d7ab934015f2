package engine

import "testing"

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		counts map[Symbol]int
		want   PolymerRole
	}{
		{map[Symbol]int{"N": 1, "P": 1, "H": 6}, RoleGenetic},
		{map[Symbol]int{"N": 2, "H": 6}, RoleStructural},
		{map[Symbol]int{"C": 2, "H": 8}, RoleGeneric},
		{map[Symbol]int{"P": 1, "H": 3}, RoleGeneric},
	}
	for _, tt := range tests {
		if got := classifyRole(tt.counts); got != tt.want {
			t.Errorf("classifyRole(%v) = %s, want %s", tt.counts, got, tt.want)
		}
	}
}

func TestComplementaryRoles(t *testing.T) {
	if !complementaryRoles(RoleStructural, RoleGenetic) || !complementaryRoles(RoleGenetic, RoleStructural) {
		t.Error("Expected structural and genetic to be complementary")
	}
	if complementaryRoles(RoleGeneric, RoleStructural) {
		t.Error("Expected generic never complementary")
	}
	if complementaryRoles(RoleStructural, RoleStructural) {
		t.Error("Expected identical roles not reported as complementary pair")
	}
}

func TestIsMonomer(t *testing.T) {
	w := newTestWorld(t)

	water := buildStable(t, w, "H2O", Vec2{X: 200, Y: 200})
	if w.isMonomer(water) {
		t.Error("Expected stable water not a monomer: its template is not reactive")
	}

	ammonia := buildStable(t, w, "H3N", Vec2{X: 600, Y: 200})
	if !w.isMonomer(ammonia) {
		t.Error("Expected stable ammonia to be a monomer")
	}

	ammonia.Polymer = "already-sealed"
	if w.isMonomer(ammonia) {
		t.Error("Expected sealed molecule not a monomer")
	}
}

func TestFormPolymer(t *testing.T) {
	w := newTestWorld(t)
	m1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 200})
	m2 := buildStable(t, w, "H3N", Vec2{X: 400, Y: 200})

	p, err := w.formPolymer([]MoleculeID{m1.ID, m2.ID})
	if err != nil {
		t.Fatalf("formPolymer failed: %v", err)
	}
	if len(p.Monomers) != 2 {
		t.Errorf("Expected 2 monomers, got %d", len(p.Monomers))
	}
	if p.Role != RoleStructural {
		t.Errorf("Expected structural role for nitrogen monomers, got %s", p.Role)
	}
	if m1.Polymer != p.ID || m2.Polymer != p.ID {
		t.Error("Expected monomers back-linked to the polymer")
	}
	for _, m := range []*Molecule{m1, m2} {
		for _, id := range m.Atoms {
			a, _ := w.store.Atom(id)
			if !a.Sealed {
				t.Errorf("Expected atom %s sealed into the polymer", id)
			}
		}
	}
}

func TestFormPolymer_Rejections(t *testing.T) {
	w := newTestWorld(t)
	m1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 200})

	if _, err := w.formPolymer([]MoleculeID{m1.ID}); err == nil {
		t.Error("Expected error for fewer than 2 monomers")
	}
	if _, err := w.formPolymer([]MoleculeID{m1.ID, "missing"}); err == nil {
		t.Error("Expected error for missing molecule")
	}

	water := buildStable(t, w, "H2O", Vec2{X: 400, Y: 400})
	if _, err := w.formPolymer([]MoleculeID{m1.ID, water.ID}); err == nil {
		t.Error("Expected error including a non-monomer")
	}

	m2 := buildStable(t, w, "H3N", Vec2{X: 600, Y: 200})
	if _, err := w.formPolymer([]MoleculeID{m1.ID, m2.ID}); err != nil {
		t.Fatalf("formPolymer failed: %v", err)
	}
	m3 := buildStable(t, w, "H3N", Vec2{X: 800, Y: 200})
	if _, err := w.formPolymer([]MoleculeID{m1.ID, m3.ID}); err == nil {
		t.Error("Expected error reusing an already sealed monomer")
	}
}

func TestFormPolymer_MixedCompositionRole(t *testing.T) {
	w := newTestWorld(t)
	ammonia := buildStable(t, w, "H3N", Vec2{X: 200, Y: 200})
	phosphine := buildStable(t, w, "H3P", Vec2{X: 400, Y: 200})

	p, err := w.formPolymer([]MoleculeID{ammonia.ID, phosphine.ID})
	if err != nil {
		t.Fatalf("formPolymer failed: %v", err)
	}
	if p.Role != RoleGenetic {
		t.Errorf("Expected genetic role for N+P composition, got %s", p.Role)
	}
}

func TestChainPolymers(t *testing.T) {
	w := newTestWorld(t)
	a1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 200})
	a2 := buildStable(t, w, "H3N", Vec2{X: 300, Y: 200})
	b1 := buildStable(t, w, "H3N", Vec2{X: 220, Y: 300})
	b2 := buildStable(t, w, "H3N", Vec2{X: 320, Y: 300})

	pa, err := w.formPolymer([]MoleculeID{a1.ID, a2.ID})
	if err != nil {
		t.Fatalf("formPolymer failed: %v", err)
	}
	pb, err := w.formPolymer([]MoleculeID{b1.ID, b2.ID})
	if err != nil {
		t.Fatalf("formPolymer failed: %v", err)
	}

	w.chainPolymers()
	if pa.Chain != 1 || pb.Chain != 1 {
		t.Errorf("Expected chain level 1 on both, got %d and %d", pa.Chain, pb.Chain)
	}

	// The pass never recounts an already linked pair.
	w.chainPolymers()
	if pa.Chain != 1 || pb.Chain != 1 {
		t.Errorf("Expected chain level unchanged on repeat, got %d and %d", pa.Chain, pb.Chain)
	}
}

func TestChainPolymers_LevelSharedAcrossJoinedSet(t *testing.T) {
	w := newTestWorld(t)
	a1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 150})
	a2 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 250})
	pa, _ := w.formPolymer([]MoleculeID{a1.ID, a2.ID})

	b1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 280})
	b2 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 380})
	pb, _ := w.formPolymer([]MoleculeID{b1.ID, b2.ID})

	c1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 410})
	c2 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 510})
	pc, _ := w.formPolymer([]MoleculeID{c1.ID, c2.ID})

	// Centroids sit ~130 apart in a line: the ends only reach the middle,
	// yet both links join one set, so all three carry the same level.
	w.chainPolymers()
	for _, p := range []*Polymer{pa, pb, pc} {
		if p.Chain != 2 {
			t.Errorf("Expected chain level 2 shared across the joined set, got %d on %s", p.Chain, p.ID)
		}
	}
}

func TestChainPolymers_RoleAndDistanceGates(t *testing.T) {
	w := newTestWorld(t)

	// Structural pair far beyond the chain radius: no link.
	a1 := buildStable(t, w, "H3N", Vec2{X: 100, Y: 100})
	a2 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 100})
	pa, _ := w.formPolymer([]MoleculeID{a1.ID, a2.ID})

	b1 := buildStable(t, w, "H3N", Vec2{X: 1500, Y: 1000})
	b2 := buildStable(t, w, "H3N", Vec2{X: 1600, Y: 1000})
	pb, _ := w.formPolymer([]MoleculeID{b1.ID, b2.ID})

	w.chainPolymers()
	if pa.Chain != 0 || pb.Chain != 0 {
		t.Errorf("Expected no chaining across the world, got %d and %d", pa.Chain, pb.Chain)
	}

	// A generic polymer next to a structural one: roles gate the link.
	c1 := buildStable(t, w, "CH4", Vec2{X: 150, Y: 180})
	c2 := buildStable(t, w, "CH4", Vec2{X: 250, Y: 180})
	pc, _ := w.formPolymer([]MoleculeID{c1.ID, c2.ID})

	w.chainPolymers()
	if pc.Chain != 0 {
		t.Errorf("Expected generic polymer not chained with structural, got %d", pc.Chain)
	}
	if pa.Chain != 0 {
		t.Errorf("Expected structural polymer unaffected, got %d", pa.Chain)
	}
}

func TestChainPolymers_ComplementaryPair(t *testing.T) {
	w := newTestWorld(t)
	n1 := buildStable(t, w, "H3N", Vec2{X: 200, Y: 200})
	n2 := buildStable(t, w, "H3N", Vec2{X: 280, Y: 200})
	structural, _ := w.formPolymer([]MoleculeID{n1.ID, n2.ID})

	g1 := buildStable(t, w, "H3N", Vec2{X: 220, Y: 280})
	g2 := buildStable(t, w, "H3P", Vec2{X: 300, Y: 280})
	genetic, _ := w.formPolymer([]MoleculeID{g1.ID, g2.ID})

	if structural.Role != RoleStructural || genetic.Role != RoleGenetic {
		t.Fatalf("Unexpected roles: %s and %s", structural.Role, genetic.Role)
	}

	w.chainPolymers()
	if structural.Chain != 1 || genetic.Chain != 1 {
		t.Errorf("Expected complementary pair chained, got %d and %d", structural.Chain, genetic.Chain)
	}
}
