package engine

import (
	"fmt"
	"sort"
	"unicode"
)

// IntentionID is a unique identifier for an intention.
type IntentionID string

// IntentionKind is the closed set of intention variants. Each variant
// carries only the data it needs and dispatches attract/progress/fulfill
// behavior through a single switch per operation.
type IntentionKind int

const (
	// IntentMolecule targets a molecule blueprint: a required elemental
	// composition pulled together and bonded until the formula exists.
	IntentMolecule IntentionKind = iota
	// IntentPolymer targets a polymer blueprint: a required monomer formula
	// times a count, consumed into a sealed polymer on fulfillment.
	IntentPolymer
)

func (k IntentionKind) String() string {
	switch k {
	case IntentMolecule:
		return "molecule"
	case IntentPolymer:
		return "polymer"
	}
	return "unknown"
}

// Intention is a goal region biasing the stochastic process toward a target
// structure without scripting it: needed entities are attracted, unrelated
// stable entities repelled, and fulfillment is detected each tick.
type Intention struct {
	ID     IntentionID
	Kind   IntentionKind
	Pos    Vec2
	Radius float64

	// Molecule target.
	TargetFormula string
	required      map[Symbol]int

	// Polymer target.
	MonomerFormula string
	MonomerCount   int

	// Progress is the fraction of the requirement currently present inside
	// the capture radius, recomputed each tick.
	Progress float64

	// exclude holds ids of molecules and polymers that predate the
	// intention, so pre-existing matches never trivially satisfy it.
	exclude map[string]struct{}
}

// captureRadius is the inner radius inside which presence counts toward
// progress and fulfillment.
func (in *Intention) captureRadius(frac float64) float64 {
	return in.Radius * frac
}

// excluded reports whether an entity id was present before the intention
// was registered.
func (in *Intention) excluded(id string) bool {
	_, ok := in.exclude[id]
	return ok
}

// parseFormula expands a formula string such as "H2O" into element counts.
func parseFormula(formula string) (map[Symbol]int, error) {
	counts := make(map[Symbol]int)
	runes := []rune(formula)
	i := 0
	for i < len(runes) {
		if !unicode.IsUpper(runes[i]) {
			return nil, fmt.Errorf("invalid formula %q at position %d", formula, i)
		}
		j := i + 1
		for j < len(runes) && unicode.IsLower(runes[j]) {
			j++
		}
		sym := string(runes[i:j])
		n := 0
		for j < len(runes) && unicode.IsDigit(runes[j]) {
			n = n*10 + int(runes[j]-'0')
			j++
		}
		if n == 0 {
			n = 1
		}
		counts[Symbol(sym)] += n
		i = j
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("empty formula %q", formula)
	}
	return counts, nil
}

// requiredTotal sums the required composition of a molecule intention.
func (in *Intention) requiredTotal() int {
	total := 0
	for _, n := range in.required {
		total += n
	}
	return total
}

// applyIntentionForces applies the per-tick goal forces of every active
// intention: needed free atoms (and matching monomers, for polymer targets)
// are pulled in with force scaling with (1 - d/radius); unrelated stable
// molecules are pushed out; reshaping molecules and already-matching
// molecules are left alone.
func (w *World) applyIntentionForces() {
	for _, in := range w.store.orderedIntentions() {
		switch in.Kind {
		case IntentMolecule:
			w.applyMoleculeIntentionForces(in)
		case IntentPolymer:
			w.applyPolymerIntentionForces(in)
		}
	}
}

func (w *World) applyMoleculeIntentionForces(in *Intention) {
	strength := w.cfg.Physics.IntentionStrength
	w.index.QueryRadius(in.Pos, in.Radius, func(id AtomID) {
		a, ok := w.store.atoms[id]
		if !ok || a.Sealed {
			return
		}
		d := a.Pos.Distance(in.Pos)
		if d == 0 {
			return
		}
		scale := strength * (1 - d/in.Radius)
		toward := in.Pos.Sub(a.Pos).Scale(1 / d)

		if a.Molecule == "" {
			if in.required[a.Symbol] > 0 {
				a.force = a.force.Add(toward.Scale(scale))
			}
			return
		}

		m, ok := w.store.molecules[a.Molecule]
		if !ok || m.state == Reshaping || m.formula == in.TargetFormula {
			return
		}
		if m.state == Stable {
			a.force = a.force.Sub(toward.Scale(scale))
		}
	})
}

func (w *World) applyPolymerIntentionForces(in *Intention) {
	strength := w.cfg.Physics.IntentionStrength
	w.index.QueryRadius(in.Pos, in.Radius, func(id AtomID) {
		a, ok := w.store.atoms[id]
		if !ok || a.Molecule == "" || a.Sealed {
			return
		}
		m, ok := w.store.molecules[a.Molecule]
		if !ok || m.state != Stable {
			return
		}
		d := a.Pos.Distance(in.Pos)
		if d == 0 {
			return
		}
		scale := strength * (1 - d/in.Radius)
		toward := in.Pos.Sub(a.Pos).Scale(1 / d)
		if m.formula == in.MonomerFormula && w.isMonomer(m) && !in.excluded(string(m.ID)) {
			a.force = a.force.Add(toward.Scale(scale))
		} else {
			a.force = a.force.Sub(toward.Scale(scale))
		}
	})
}

// updateIntentions recomputes progress and checks fulfillment for every
// active intention, after the reconciler has refreshed membership.
// Fulfilled intentions are removed from the active set.
func (w *World) updateIntentions() {
	for _, in := range w.store.orderedIntentions() {
		fulfilled := false
		switch in.Kind {
		case IntentMolecule:
			fulfilled = w.updateMoleculeIntention(in)
		case IntentPolymer:
			fulfilled = w.updatePolymerIntention(in)
		}
		if fulfilled {
			delete(w.store.intentions, in.ID)
			w.emit(Event{
				Kind:        EventIntentionFulfilled,
				IntentionID: in.ID,
				Formula:     in.TargetFormula,
				Name:        in.Kind.String(),
			})
		}
	}
}

// updateMoleculeIntention measures progress as the fraction of required
// atoms present inside the capture radius, then checks fulfillment: a new
// stable molecule of the target formula satisfies directly; otherwise, once
// enough free atoms are inside the full radius, they are bonded together in
// a heaviest-first star and fulfillment waits for the resulting aggregate to
// stabilize on a later tick.
func (w *World) updateMoleculeIntention(in *Intention) bool {
	capture := in.captureRadius(w.cfg.Physics.CaptureRadiusFrac)

	// Progress: needed atoms inside the capture radius, capped per element.
	have := make(map[Symbol]int)
	w.index.QueryRadius(in.Pos, capture, func(id AtomID) {
		a, ok := w.store.atoms[id]
		if !ok || a.Sealed {
			return
		}
		if a.Molecule != "" && in.excluded(string(a.Molecule)) {
			return
		}
		have[a.Symbol]++
	})
	got, want := 0, in.requiredTotal()
	for sym, n := range in.required {
		if have[sym] < n {
			got += have[sym]
		} else {
			got += n
		}
	}
	if want > 0 {
		in.Progress = float64(got) / float64(want)
	}

	// Direct claim: a non-excluded stable molecule of the target formula
	// inside the capture radius.
	for _, m := range w.store.orderedMolecules() {
		if m.state != Stable || m.formula != in.TargetFormula || in.excluded(string(m.ID)) {
			continue
		}
		if w.store.CenterOfMass(m).Distance(in.Pos) <= capture {
			return true
		}
	}

	// Otherwise try to assemble from free atoms inside the full radius.
	w.assembleFromFreeAtoms(in)
	return false
}

// assembleFromFreeAtoms gathers free atoms matching the required
// composition and wires them into a star topology around the heaviest atom.
// Bonds are created through the store, so valence limits still hold; the
// new aggregate is judged by the ordinary stability machinery afterwards.
func (w *World) assembleFromFreeAtoms(in *Intention) {
	free := make([]*Atom, 0)
	w.index.QueryRadius(in.Pos, in.Radius, func(id AtomID) {
		a, ok := w.store.atoms[id]
		if ok && a.Molecule == "" && !a.Sealed && len(a.bonds) == 0 {
			free = append(free, a)
		}
	})

	// Pick atoms per required element; give up if any element is short.
	picked := make([]*Atom, 0, in.requiredTotal())
	for _, sym := range sortedSymbols(in.required) {
		need := in.required[sym]
		for _, a := range free {
			if need == 0 {
				break
			}
			if a.Symbol == sym {
				picked = append(picked, a)
				need--
			}
		}
		if need > 0 {
			return
		}
	}

	// Heaviest first: the hub is the heaviest atom, everyone else bonds to
	// the hub while it has valence, then to earlier-placed atoms.
	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].element.Mass != picked[j].element.Mass {
			return picked[i].element.Mass > picked[j].element.Mass
		}
		return picked[i].ID < picked[j].ID
	})

	placed := []*Atom{picked[0]}
	for _, a := range picked[1:] {
		bonded := false
		for _, host := range placed {
			if host.AvailableValence() > 0 && a.AvailableValence() > 0 {
				if _, err := w.store.AddBond(host.ID, a.ID, 1); err == nil {
					bonded = true
					break
				}
			}
		}
		if bonded {
			placed = append(placed, a)
		}
	}
}

// updatePolymerIntention measures matching monomers inside the capture
// radius and, once enough are present, consumes them into a new polymer
// immediately.
func (w *World) updatePolymerIntention(in *Intention) bool {
	capture := in.captureRadius(w.cfg.Physics.CaptureRadiusFrac)

	matching := make([]MoleculeID, 0, in.MonomerCount)
	for _, m := range w.store.orderedMolecules() {
		if !w.isMonomer(m) || m.formula != in.MonomerFormula || in.excluded(string(m.ID)) {
			continue
		}
		if w.store.CenterOfMass(m).Distance(in.Pos) <= capture {
			matching = append(matching, m.ID)
		}
	}

	if in.MonomerCount > 0 {
		in.Progress = float64(len(matching)) / float64(in.MonomerCount)
		if in.Progress > 1 {
			in.Progress = 1
		}
	}

	if len(matching) < in.MonomerCount {
		return false
	}
	if _, err := w.formPolymer(matching[:in.MonomerCount]); err != nil {
		w.log.Warnf("polymer intention %s could not form polymer: %v", in.ID, err)
		return false
	}
	return true
}

func sortedSymbols(m map[Symbol]int) []Symbol {
	out := make([]Symbol, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
