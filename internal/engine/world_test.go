package engine

import (
	"testing"
	"time"
)

// newTestWorld builds a seeded world so bonding draws are reproducible.
func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld("test", Config{Seed: 1})
}

// mustAddAtom adds an atom or fails the test.
func mustAddAtom(t *testing.T, w *World, sym Symbol, pos Vec2) AtomID {
	t.Helper()
	id, err := w.AddAtom(sym, pos)
	if err != nil {
		t.Fatalf("AddAtom(%s) failed: %v", sym, err)
	}
	return id
}

// mustAddBond adds a bond or fails the test.
func mustAddBond(t *testing.T, w *World, a, b AtomID, order int) BondID {
	t.Helper()
	id, err := w.AddBond(a, b, order)
	if err != nil {
		t.Fatalf("AddBond failed: %v", err)
	}
	return id
}

// buildFromTemplate places atoms exactly on a template's slot positions
// around base, wires the template's bonds, and reconciles. The returned
// molecule is still Unstable until evaluated.
func buildFromTemplate(t *testing.T, w *World, formula string, base Vec2) *Molecule {
	t.Helper()
	tmpl, ok := w.templates.ForFormula(formula)
	if !ok {
		t.Fatalf("no template for formula %s", formula)
	}
	ids := make([]AtomID, len(tmpl.Slots))
	for i, slot := range tmpl.Slots {
		ids[i] = mustAddAtom(t, w, slot.Symbol, base.Add(slot.Pos))
	}
	for _, b := range tmpl.Bonds {
		mustAddBond(t, w, ids[b.A], ids[b.B], b.Order)
	}
	w.reconcileAggregates()

	a, _ := w.store.Atom(ids[0])
	m, ok := w.store.Molecule(a.Molecule)
	if !ok {
		t.Fatalf("reconciliation did not produce a molecule for %s", formula)
	}
	return m
}

// buildStable builds a template molecule and drives it to Stable.
func buildStable(t *testing.T, w *World, formula string, base Vec2) *Molecule {
	t.Helper()
	m := buildFromTemplate(t, w, formula, base)
	w.evaluateStability(m)
	if m.State() != Stable {
		t.Fatalf("expected %s at template geometry to stabilize, got %s", formula, m.State())
	}
	return m
}

func TestNewWorld_Defaults(t *testing.T) {
	w := NewWorld("w1", Config{})
	if w.ID() != "w1" {
		t.Errorf("Expected ID w1, got %s", w.ID())
	}
	if w.Seed() == 0 {
		t.Error("Expected a derived non-zero seed")
	}
	if w.Tick() != 0 {
		t.Errorf("Expected initial tick 0, got %d", w.Tick())
	}
	if w.cfg.Width != 2000 || w.cfg.Height != 1200 {
		t.Errorf("Expected default bounds 2000x1200, got %gx%g", w.cfg.Width, w.cfg.Height)
	}
}

func TestNewWorld_KeepsExplicitSeed(t *testing.T) {
	w := NewWorld("w1", Config{Seed: 99})
	if w.Seed() != 99 {
		t.Errorf("Expected seed 99, got %d", w.Seed())
	}
}

func TestWorld_StepAdvancesTick(t *testing.T) {
	w := newTestWorld(t)
	for i := 0; i < 5; i++ {
		w.Step(1.0 / 30.0)
	}
	if w.Tick() != 5 {
		t.Errorf("Expected tick 5, got %d", w.Tick())
	}
}

func TestWorld_StepReconcilesNewBondsBeforeStability(t *testing.T) {
	w := newTestWorld(t)
	rec := &recordingNotifier{id: "rec"}
	nm := NewNotificationManager()
	if err := nm.RegisterNotifier(rec); err != nil {
		t.Fatalf("RegisterNotifier failed: %v", err)
	}
	w.SetNotificationManager(nm)
	w.SetNotifierIDs([]string{"rec"})

	// One tick with an open-valence H-O pair registers the HO aggregate.
	o := mustAddAtom(t, w, "O", Vec2{X: 1000, Y: 600})
	h1 := mustAddAtom(t, w, "H", Vec2{X: 1028, Y: 600})
	mustAddBond(t, w, o, h1, 1)
	w.Step(1.0 / 30.0)

	// A second O-H bond lands between ticks and closes the valence. The
	// next tick must judge the grown H2O component, never the stale HO.
	h2 := mustAddAtom(t, w, "H", Vec2{X: 972, Y: 600})
	mustAddBond(t, w, o, h2, 1)
	w.Step(1.0 / 30.0)
	nm.Close()

	for _, e := range rec.Events() {
		if e.Kind == EventMoleculeStabilized {
			t.Errorf("Expected no stabilization for a freshly grown aggregate, got formula %q", e.Formula)
		}
	}

	a, _ := w.store.Atom(o)
	m, ok := w.store.Molecule(a.Molecule)
	if !ok {
		t.Fatal("Expected a molecule containing O")
	}
	if m.Formula() != "H2O" {
		t.Errorf("Expected formula H2O after reconciliation, got %q", m.Formula())
	}
	if m.State() == Stable {
		t.Errorf("Expected collinear H2O not yet stable, got %s", m.State())
	}
}

func TestWorld_RunAndStop(t *testing.T) {
	w := newTestWorld(t)
	w.Run(time.Millisecond, 1.0/30.0)
	if !w.IsRunning() {
		t.Error("Expected world running after Run")
	}

	deadline := time.Now().Add(time.Second)
	for w.Tick() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if w.Tick() == 0 {
		t.Fatal("Expected ticks to advance while running")
	}

	w.Stop()
	deadline = time.Now().Add(time.Second)
	for w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if w.IsRunning() {
		t.Error("Expected world stopped after Stop")
	}

	// Run must be restartable after a stop.
	w.Run(time.Millisecond, 1.0/30.0)
	if !w.IsRunning() {
		t.Error("Expected world restartable after Stop")
	}
	w.Stop()
}

func TestWorld_AddAtomUnknownElement(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.AddAtom("Zz", Vec2{}); err == nil {
		t.Error("Expected error for unknown element")
	}
}

func TestWorld_RemoveAtom(t *testing.T) {
	w := newTestWorld(t)
	id := mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})

	if err := w.RemoveAtom(id); err != nil {
		t.Fatalf("RemoveAtom failed: %v", err)
	}
	if err := w.RemoveAtom(id); err == nil {
		t.Error("Expected error removing a missing atom")
	}
}

func TestWorld_RemoveAtom_SealedRejected(t *testing.T) {
	w := newTestWorld(t)
	id := mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})
	a, _ := w.store.Atom(id)
	a.Sealed = true

	if err := w.RemoveAtom(id); err == nil {
		t.Error("Expected error removing a sealed atom")
	}
}

func TestWorld_AddRemoveBond(t *testing.T) {
	w := newTestWorld(t)
	a := mustAddAtom(t, w, "H", Vec2{X: 100, Y: 100})
	b := mustAddAtom(t, w, "H", Vec2{X: 124, Y: 100})

	bid := mustAddBond(t, w, a, b, 1)
	if len(w.Bonds()) != 1 {
		t.Fatalf("Expected 1 bond, got %d", len(w.Bonds()))
	}
	if err := w.RemoveBond(bid); err != nil {
		t.Fatalf("RemoveBond failed: %v", err)
	}
	if len(w.Bonds()) != 0 {
		t.Errorf("Expected 0 bonds, got %d", len(w.Bonds()))
	}
}

func TestWorld_SelectionCascades(t *testing.T) {
	w := newTestWorld(t)
	m := buildStable(t, w, "H2O", Vec2{X: 300, Y: 300})

	if err := w.SetMoleculeSelected(m.ID, true); err != nil {
		t.Fatalf("SetMoleculeSelected failed: %v", err)
	}
	for _, id := range m.Atoms {
		a, _ := w.store.Atom(id)
		if !a.Selected {
			t.Errorf("Expected atom %s selected via molecule cascade", id)
		}
	}

	if err := w.SetMoleculeHighlighted(m.ID, true); err != nil {
		t.Fatalf("SetMoleculeHighlighted failed: %v", err)
	}
	if !m.Highlighted {
		t.Error("Expected molecule highlighted")
	}

	if err := w.SetMoleculeSelected("missing", true); err == nil {
		t.Error("Expected error selecting a missing molecule")
	}
}

func TestWorld_SetAtomFlags(t *testing.T) {
	w := newTestWorld(t)
	id := mustAddAtom(t, w, "C", Vec2{X: 50, Y: 50})

	if err := w.SetAtomSelected(id, true); err != nil {
		t.Fatalf("SetAtomSelected failed: %v", err)
	}
	if err := w.SetAtomHighlighted(id, true); err != nil {
		t.Fatalf("SetAtomHighlighted failed: %v", err)
	}
	st, err := w.Atom(id)
	if err != nil {
		t.Fatalf("Atom lookup failed: %v", err)
	}
	if !st.Selected || !st.Highlighted {
		t.Error("Expected selected and highlighted flags set")
	}
}

func TestWorld_StateAndStats(t *testing.T) {
	w := newTestWorld(t)
	buildStable(t, w, "H2O", Vec2{X: 300, Y: 300})
	mustAddAtom(t, w, "C", Vec2{X: 600, Y: 600})

	st := w.State()
	if st.WorldID != "test" {
		t.Errorf("Expected world id test, got %s", st.WorldID)
	}
	if len(st.Atoms) != 4 {
		t.Errorf("Expected 4 atoms, got %d", len(st.Atoms))
	}
	if len(st.Molecules) != 1 {
		t.Errorf("Expected 1 molecule, got %d", len(st.Molecules))
	}

	stats := w.Stats()
	if stats.AtomCount != 4 || stats.BondCount != 2 {
		t.Errorf("Expected 4 atoms / 2 bonds, got %d / %d", stats.AtomCount, stats.BondCount)
	}
	if stats.StableCount != 1 {
		t.Errorf("Expected 1 stable molecule, got %d", stats.StableCount)
	}
}

func TestWorldManager(t *testing.T) {
	wm := NewWorldManager()

	w, err := wm.CreateWorld("a", Config{Seed: 1})
	if err != nil {
		t.Fatalf("CreateWorld failed: %v", err)
	}
	if w.ID() != "a" {
		t.Errorf("Expected world id a, got %s", w.ID())
	}
	if _, err := wm.CreateWorld("a", Config{Seed: 1}); err == nil {
		t.Error("Expected error creating a duplicate world")
	}

	if _, ok := wm.GetWorld("a"); !ok {
		t.Error("Expected to retrieve world a")
	}
	if _, ok := wm.GetWorld("missing"); ok {
		t.Error("Expected missing world not found")
	}

	wm.CreateWorld("b", Config{Seed: 2})
	ids := wm.ListWorlds()
	if len(ids) != 2 {
		t.Errorf("Expected 2 worlds, got %d", len(ids))
	}

	if err := wm.DeleteWorld("a"); err != nil {
		t.Fatalf("DeleteWorld failed: %v", err)
	}
	if err := wm.DeleteWorld("a"); err == nil {
		t.Error("Expected error deleting a missing world")
	}
	wm.StopAll()
}
