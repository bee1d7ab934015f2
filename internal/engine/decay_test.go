package engine

import "testing"

// decayWorld uses a near-immediate decay countdown so tests don't loop
// hundreds of ticks.
func decayWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld("test", Config{Seed: 1, Physics: PhysicsConfig{DecayBaseTicks: 1}})
}

func TestStepDecay_ReleasesLeastSatisfiedAtom(t *testing.T) {
	w := decayWorld(t)
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	mustAddBond(t, w, o, h, 1)
	w.reconcileAggregates()

	for i := 0; i < 20 && len(w.store.bonds) > 0; i++ {
		w.updateMolecules()
	}
	if len(w.store.bonds) != 0 {
		t.Fatal("Expected decay to break the bond")
	}

	// O has the lower satisfaction (1/2 vs 1/1), so it was the victim and
	// carries re-bond suppression against its former partner.
	oAtom, _ := w.store.Atom(o)
	if !oAtom.avoids(h) {
		t.Error("Expected victim tagged against immediate re-bonding")
	}
	hAtom, _ := w.store.Atom(h)
	if !hAtom.avoids(o) {
		t.Error("Expected former partner tagged symmetrically")
	}
	if oAtom.Vel.Length() == 0 {
		t.Error("Expected separation velocity imparted to the victim")
	}
	if oAtom.Molecule != "" {
		t.Errorf("Expected victim membership cleared, got %q", oAtom.Molecule)
	}
}

func TestScenario_ThreeAtomDecayReleasesOneAtom(t *testing.T) {
	w := decayWorld(t)
	c := mustAddAtom(t, w, "C", Vec2{X: 500, Y: 500})
	h1 := mustAddAtom(t, w, "H", Vec2{X: 528, Y: 500})
	h2 := mustAddAtom(t, w, "H", Vec2{X: 472, Y: 500})
	mustAddBond(t, w, c, h1, 1)
	mustAddBond(t, w, c, h2, 1)

	// CH2 cannot close its valence; the countdown expires and exactly one
	// bond breaks.
	for i := 0; i < 20 && len(w.store.bonds) == 2; i++ {
		w.reconcileAggregates()
		w.updateMolecules()
	}
	if len(w.store.bonds) != 1 {
		t.Fatalf("Expected exactly one bond broken by decay, got %d bonds", len(w.store.bonds))
	}
	w.reconcileAggregates()

	free := 0
	for _, a := range w.store.orderedAtoms() {
		if len(a.bonds) != 0 {
			continue
		}
		free++
		if a.Molecule != "" {
			t.Errorf("Expected released atom %s without membership, got %q", a.ID, a.Molecule)
		}
	}
	if free != 1 {
		t.Errorf("Expected exactly 1 released atom, got %d", free)
	}

	if len(w.store.molecules) != 1 {
		t.Fatalf("Expected 1 surviving molecule, got %d", len(w.store.molecules))
	}
	for _, m := range w.store.molecules {
		if len(m.Atoms) != 2 {
			t.Errorf("Expected the surviving aggregate to hold 2 atoms, got %d", len(m.Atoms))
		}
	}
}

func TestStepDecay_ClosenessExtendsCountdown(t *testing.T) {
	w := NewWorld("test", Config{Seed: 1, Physics: PhysicsConfig{DecayBaseTicks: 100, DecayClosenessBonus: 2}})
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	mustAddBond(t, w, o, h, 1)
	w.reconcileAggregates()

	a, _ := w.store.Atom(o)
	m, _ := w.store.Molecule(a.Molecule)
	w.updateMolecules()

	// Closeness is 2/3, so the seeded timer is 100 * (1 + 2*2/3), about 233,
	// minus the tick already consumed.
	if m.decayTimer < 200 {
		t.Errorf("Expected closeness-extended countdown, got %g", m.decayTimer)
	}
}

func TestStepDecay_StableMoleculeNeverDecays(t *testing.T) {
	w := decayWorld(t)
	m := buildStable(t, w, "H2O", Vec2{X: 300, Y: 300})

	for i := 0; i < 30; i++ {
		w.updateMolecules()
	}
	if m.State() != Stable {
		t.Errorf("Expected molecule to stay stable, got %s", m.State())
	}
	if len(w.store.bonds) != 2 {
		t.Errorf("Expected bonds intact, got %d", len(w.store.bonds))
	}
}

func TestStepDecay_HeldTogetherByIntentionDemand(t *testing.T) {
	w := decayWorld(t)
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	mustAddBond(t, w, o, h, 1)
	w.reconcileAggregates()

	// An intention that needs exactly one H and one O suppresses decay
	// entirely while the aggregate is in range.
	if _, err := w.AddMoleculeIntention(Vec2{X: 114, Y: 100}, 300, "HO"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}

	for i := 0; i < 30; i++ {
		w.updateMolecules()
	}
	if len(w.store.bonds) != 1 {
		t.Errorf("Expected intention demand to hold the bond, got %d bonds", len(w.store.bonds))
	}
}

func TestPickDecayVictim_PrefersIntentionExcess(t *testing.T) {
	w := decayWorld(t)
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	mustAddBond(t, w, o, h, 1)
	w.reconcileAggregates()

	a, _ := w.store.Atom(o)
	m, _ := w.store.Molecule(a.Molecule)

	// Without an excess set the least satisfied atom (O) is picked; when H
	// is marked excess the preference flips despite its full satisfaction.
	if v := w.pickDecayVictim(m, nil); v == nil || v.ID != o {
		t.Errorf("Expected O picked as victim, got %v", v)
	}
	if v := w.pickDecayVictim(m, map[AtomID]bool{h: true}); v == nil || v.ID != h {
		t.Errorf("Expected excess H picked as victim, got %v", v)
	}
}

func TestIntentionDemand_ReportsExcess(t *testing.T) {
	w := decayWorld(t)
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h1 := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	h2 := mustAddAtom(t, w, "H", Vec2{X: 72, Y: 100})
	mustAddBond(t, w, o, h1, 1)
	mustAddBond(t, w, o, h2, 1)
	w.reconcileAggregates()

	// The intention only wants one hydrogen; the second is excess.
	if _, err := w.AddMoleculeIntention(Vec2{X: 100, Y: 100}, 300, "HO"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}

	a, _ := w.store.Atom(o)
	m, _ := w.store.Molecule(a.Molecule)
	excess, allNeeded := w.intentionDemand(m)
	if allNeeded {
		t.Fatal("Expected excess atoms reported, not full demand")
	}
	if len(excess) != 1 {
		t.Fatalf("Expected 1 excess atom, got %d", len(excess))
	}
	if !excess[h1] && !excess[h2] {
		t.Error("Expected one of the hydrogens marked excess")
	}
}

func TestIntentionDemand_AnyFullDemandSuppresses(t *testing.T) {
	w := decayWorld(t)
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h1 := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	h2 := mustAddAtom(t, w, "H", Vec2{X: 72, Y: 100})
	mustAddBond(t, w, o, h1, 1)
	mustAddBond(t, w, o, h2, 1)
	w.reconcileAggregates()

	// The HO intention reports a hydrogen as excess, but the H2O intention
	// needs every atom the aggregate holds; full demand wins.
	if _, err := w.AddMoleculeIntention(Vec2{X: 100, Y: 100}, 300, "HO"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}
	if _, err := w.AddMoleculeIntention(Vec2{X: 100, Y: 100}, 300, "H2O"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}

	a, _ := w.store.Atom(o)
	m, _ := w.store.Molecule(a.Molecule)
	excess, allNeeded := w.intentionDemand(m)
	if !allNeeded {
		t.Error("Expected decay suppressed while any intention needs everything")
	}
	if len(excess) != 0 {
		t.Errorf("Expected no excess under full demand, got %d", len(excess))
	}
}

func TestIntentionDemand_ExcessNeedsAgreement(t *testing.T) {
	w := decayWorld(t)
	o := mustAddAtom(t, w, "O", Vec2{X: 100, Y: 100})
	h1 := mustAddAtom(t, w, "H", Vec2{X: 128, Y: 100})
	h2 := mustAddAtom(t, w, "H", Vec2{X: 72, Y: 100})
	mustAddBond(t, w, o, h1, 1)
	mustAddBond(t, w, o, h2, 1)
	w.reconcileAggregates()

	// HO calls one hydrogen excess, H2 calls the oxygen excess: no atom is
	// excess to both, so nothing may be released preferentially.
	if _, err := w.AddMoleculeIntention(Vec2{X: 100, Y: 100}, 300, "HO"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}
	if _, err := w.AddMoleculeIntention(Vec2{X: 100, Y: 100}, 300, "H2"); err != nil {
		t.Fatalf("AddMoleculeIntention failed: %v", err)
	}

	a, _ := w.store.Atom(o)
	m, _ := w.store.Molecule(a.Molecule)
	excess, allNeeded := w.intentionDemand(m)
	if allNeeded {
		t.Error("Expected decay not fully suppressed: no single intention needs everything")
	}
	if len(excess) != 0 {
		t.Errorf("Expected empty excess intersection, got %v", excess)
	}
}
