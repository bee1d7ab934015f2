package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// WorldID is a unique identifier for a world.
type WorldID string

// World is one isolated simulation: a bounded 2D region of atoms that drift,
// collide, bond into molecules, stabilize into template geometries, decay,
// and polymerize. All mutation happens inside Tick or through the command
// methods, both guarded by the world lock.
type World struct {
	mu sync.RWMutex

	id   WorldID
	cfg  Config
	log  Logger
	rng  *rand.Rand
	seed int64

	store     *Store
	index     *spatialIndex
	templates *TemplateLibrary
	noise     opensimplex.Noise

	tick    int64
	elapsed float64

	notifMgr    *NotificationManager
	notifierIDs []string

	snapshotDir   string
	snapshotEvery int

	stopCh    chan struct{}
	isRunning bool
}

// NewWorld creates a world from the given configuration. Zero-valued config
// fields are filled with defaults; a zero Seed derives one from the clock.
func NewWorld(id WorldID, cfg Config) *World {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &World{
		id:        id,
		cfg:       cfg,
		log:       cfg.Logger,
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		store:     newStore(cfg.Elements),
		index:     newSpatialIndex(cfg.Physics.CellSize),
		templates: cfg.Templates,
		noise:     opensimplex.New(seed),
		stopCh:    make(chan struct{}),
	}
}

// ID returns the world's identifier.
func (w *World) ID() WorldID { return w.id }

// Seed returns the seed the world's random source was created with.
func (w *World) Seed() int64 { return w.seed }

// Tick returns the number of completed steps.
func (w *World) Tick() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// SetNotificationManager attaches a notification manager; events raised
// during ticks are enqueued to it.
func (w *World) SetNotificationManager(nm *NotificationManager) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifMgr = nm
}

// SetNotifierIDs selects which registered notifiers receive this world's
// events.
func (w *World) SetNotifierIDs(ids []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifierIDs = append([]string(nil), ids...)
}

// SetSnapshotDir enables periodic snapshot persistence into the given
// directory.
func (w *World) SetSnapshotDir(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshotDir = dir
}

// SetSnapshotEveryNTicks sets how often a periodic snapshot is written.
// Values below 1 disable periodic snapshots.
func (w *World) SetSnapshotEveryNTicks(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshotEvery = n
}

// emit hands a simulation event to the attached notification manager.
// Called with the world lock held; delivery is asynchronous.
func (w *World) emit(event Event) {
	event.WorldID = w.id
	event.Tick = w.tick
	event.Timestamp = time.Now().UnixMilli()
	w.log.Debugf("event kind=%s tick=%d", event.Kind, event.Tick)
	if w.notifMgr == nil || len(w.notifierIDs) == 0 {
		return
	}
	w.notifMgr.Enqueue(event, w.notifierIDs)
}

// Step advances the world by one tick of fixed duration.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step(dt)
}

// step runs one full simulation tick. The phase order is fixed: bookkeeping
// sync, force accumulation, integration, then the discrete chemistry passes.
// Aggregation runs after bond formation and before the molecule lifecycle,
// so stability is always judged against this tick's membership and formula.
func (w *World) step(dt float64) {
	w.tick++

	w.store.sync()

	w.applyBoundaryForces()
	w.applyPairwiseForces()
	w.applyIntentionForces()
	w.applyBondSprings()
	w.applyJitter()
	w.integrate(dt)

	w.attemptBonds()
	w.reconcileAggregates()
	w.updateMolecules()
	w.updateIntentions()
	w.chainPolymers()

	if w.snapshotDir != "" && w.snapshotEvery > 0 && w.tick%int64(w.snapshotEvery) == 0 {
		if err := w.writeSnapshotLocked(w.snapshotDir); err != nil {
			w.log.Errorf("periodic snapshot failed: %v", err)
		}
	}
}

// Run starts the world in a goroutine with its own ticker, stepping at the
// given interval until Stop is called. It can be called again after
// stopping.
func (w *World) Run(interval time.Duration, dt float64) {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.stopCh = make(chan struct{})
	w.isRunning = true
	w.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.Step(dt)
			case <-w.stopCh:
				w.mu.Lock()
				w.isRunning = false
				w.mu.Unlock()
				return
			}
		}
	}()
}

// Stop signals the run goroutine to exit. After stopping, Run can be called
// again.
func (w *World) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isRunning {
		return
	}
	close(w.stopCh)
}

// IsRunning reports whether the world's ticker goroutine is active.
func (w *World) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.isRunning
}

// AddAtom spawns an atom of the given element at a position.
func (w *World) AddAtom(sym Symbol, pos Vec2) (AtomID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, err := w.store.AddAtom(sym, pos)
	if err != nil {
		return "", err
	}
	w.index.Insert(a.ID, a.Pos)
	w.log.Debugf("atom %s (%s) added at (%.1f, %.1f)", a.ID, sym, pos.X, pos.Y)
	return a.ID, nil
}

// RemoveAtom deletes an atom and every bond touching it. Atoms sealed into
// a polymer cannot be removed.
func (w *World) RemoveAtom(id AtomID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.store.Atom(id)
	if !ok {
		return fmt.Errorf("atom %s does not exist", id)
	}
	if a.Sealed {
		return fmt.Errorf("atom %s is sealed into a polymer", id)
	}
	if err := w.store.RemoveAtom(id); err != nil {
		return err
	}
	w.index.Remove(id)
	return nil
}

// AddBond creates a manual bond between two atoms, subject to the same
// valence rules as spontaneous bonding.
func (w *World) AddBond(aID, bID AtomID, order int) (BondID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, err := w.store.AddBond(aID, bID, order)
	if err != nil {
		return "", err
	}
	return b.ID, nil
}

// RemoveBond breaks a bond. The aggregate split, if any, is picked up by
// the next tick's reconciliation.
func (w *World) RemoveBond(id BondID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.RemoveBond(id)
}

// AddMoleculeIntention registers a goal region that biases the simulation
// toward assembling a molecule of the target formula. Molecules that
// already exist when the intention is registered never satisfy it.
func (w *World) AddMoleculeIntention(pos Vec2, radius float64, formula string) (IntentionID, error) {
	if radius <= 0 {
		return "", fmt.Errorf("intention radius must be positive, got %g", radius)
	}
	required, err := parseFormula(formula)
	if err != nil {
		return "", err
	}
	for sym := range required {
		if _, ok := w.cfg.Elements.Lookup(sym); !ok {
			return "", fmt.Errorf("formula %q uses unknown element %q", formula, sym)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	in := &Intention{
		ID:            IntentionID(NewRandomID()),
		Kind:          IntentMolecule,
		Pos:           pos,
		Radius:        radius,
		TargetFormula: formula,
		required:      required,
		exclude:       w.existingEntityIDs(),
	}
	w.store.intentions[in.ID] = in
	w.log.Infof("molecule intention %s registered: %s within %.0f of (%.0f, %.0f)", in.ID, formula, radius, pos.X, pos.Y)
	return in.ID, nil
}

// AddPolymerIntention registers a goal region that consumes count stable
// monomers of the given formula into a polymer.
func (w *World) AddPolymerIntention(pos Vec2, radius float64, monomerFormula string, count int) (IntentionID, error) {
	if radius <= 0 {
		return "", fmt.Errorf("intention radius must be positive, got %g", radius)
	}
	if count < 2 {
		return "", fmt.Errorf("polymer intention needs at least 2 monomers, got %d", count)
	}
	if _, err := parseFormula(monomerFormula); err != nil {
		return "", err
	}
	tmpl, ok := w.templates.ForFormula(monomerFormula)
	if !ok || !tmpl.Reactive {
		return "", fmt.Errorf("formula %q is not a reactive monomer", monomerFormula)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	in := &Intention{
		ID:             IntentionID(NewRandomID()),
		Kind:           IntentPolymer,
		Pos:            pos,
		Radius:         radius,
		MonomerFormula: monomerFormula,
		MonomerCount:   count,
		exclude:        w.existingEntityIDs(),
	}
	w.store.intentions[in.ID] = in
	w.log.Infof("polymer intention %s registered: %d x %s within %.0f of (%.0f, %.0f)", in.ID, count, monomerFormula, radius, pos.X, pos.Y)
	return in.ID, nil
}

// existingEntityIDs collects the ids of all current molecules and polymers.
// Called with the world lock held.
func (w *World) existingEntityIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(w.store.molecules)+len(w.store.polymers))
	for id := range w.store.molecules {
		out[string(id)] = struct{}{}
	}
	for id := range w.store.polymers {
		out[string(id)] = struct{}{}
	}
	return out
}

// RemoveIntention cancels an intention before it is fulfilled.
func (w *World) RemoveIntention(id IntentionID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.store.intentions[id]; !ok {
		return fmt.Errorf("intention %s does not exist", id)
	}
	delete(w.store.intentions, id)
	return nil
}

// SetAtomSelected flags or unflags an atom as selected. Selection is pure
// UI state; the engine stores it and nothing more.
func (w *World) SetAtomSelected(id AtomID, selected bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.store.Atom(id)
	if !ok {
		return fmt.Errorf("atom %s does not exist", id)
	}
	a.Selected = selected
	return nil
}

// SetAtomHighlighted flags or unflags an atom as highlighted.
func (w *World) SetAtomHighlighted(id AtomID, highlighted bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	a, ok := w.store.Atom(id)
	if !ok {
		return fmt.Errorf("atom %s does not exist", id)
	}
	a.Highlighted = highlighted
	return nil
}

// SetMoleculeSelected flags or unflags a molecule and its member atoms.
func (w *World) SetMoleculeSelected(id MoleculeID, selected bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.store.Molecule(id)
	if !ok {
		return fmt.Errorf("molecule %s does not exist", id)
	}
	m.Selected = selected
	for _, aid := range m.Atoms {
		if a, ok := w.store.Atom(aid); ok {
			a.Selected = selected
		}
	}
	return nil
}

// SetMoleculeHighlighted flags or unflags a molecule and its member atoms.
func (w *World) SetMoleculeHighlighted(id MoleculeID, highlighted bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	m, ok := w.store.Molecule(id)
	if !ok {
		return fmt.Errorf("molecule %s does not exist", id)
	}
	m.Highlighted = highlighted
	for _, aid := range m.Atoms {
		if a, ok := w.store.Atom(aid); ok {
			a.Highlighted = highlighted
		}
	}
	return nil
}

// SetPolymerSelected flags or unflags a polymer, its monomers, and their
// atoms.
func (w *World) SetPolymerSelected(id PolymerID, selected bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.store.polymers[id]
	if !ok {
		return fmt.Errorf("polymer %s does not exist", id)
	}
	p.Selected = selected
	for _, mid := range p.Monomers {
		if m, ok := w.store.Molecule(mid); ok {
			m.Selected = selected
			for _, aid := range m.Atoms {
				if a, ok := w.store.Atom(aid); ok {
					a.Selected = selected
				}
			}
		}
	}
	return nil
}
