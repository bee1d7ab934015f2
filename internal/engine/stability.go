package engine

// updateMolecules drives each aggregate's stability state machine for one
// tick: reshaping molecules advance their animation, everything else is
// re-judged, and aggregates that stay unstable accumulate decay.
func (w *World) updateMolecules() {
	for _, m := range w.store.orderedMolecules() {
		if m.state == Reshaping {
			w.stepReshape(m)
			continue
		}
		w.evaluateStability(m)
		if m.state == Unstable {
			w.stepDecay(m)
		}
	}
}

// evaluateStability judges a molecule: unstable while valence is open;
// once closed, stable outright when no template applies, stable when the
// geometry already verified or currently matching, otherwise a reshape
// toward the matched template begins.
func (w *World) evaluateStability(m *Molecule) {
	s := w.store

	if !s.valenceClosed(m) {
		m.state = Unstable
		m.geometryVerified = false
		return
	}

	tmpl, ok := w.templates.ForFormula(m.formula)
	if !ok {
		// No known shape for this formula: valence closure alone decides.
		w.markStable(m, "")
		return
	}

	if m.geometryVerified {
		// Re-running the match on a verified molecule never re-triggers a
		// reshape; only a membership change clears the flag.
		m.state = Stable
		return
	}

	assignment, ok := w.assignSlots(m, tmpl)
	if !ok {
		// Atom-count mismatch between molecule and template: treated as
		// "no template applies", not an error.
		w.markStable(m, "")
		return
	}

	if w.geometryMatches(m, tmpl, assignment) && w.bondOrdersMatch(m, tmpl) {
		m.geometryVerified = true
		w.markStable(m, tmpl.Name)
		return
	}

	w.startReshape(m, tmpl, assignment)
}

// markStable transitions a molecule to Stable, resets decay, and announces
// the stabilization once per stable spell.
func (w *World) markStable(m *Molecule, name string) {
	already := m.state == Stable
	m.state = Stable
	m.decayArmed = false
	m.decayTimer = 0
	if name != "" {
		m.Name = name
	}
	if !already {
		w.emit(Event{
			Kind:        EventMoleculeStabilized,
			MoleculeID:  m.ID,
			Formula:     m.formula,
			Fingerprint: w.store.Fingerprint(m),
			Name:        m.Name,
		})
	}
}

// assignSlots maps member atoms onto template slots nearest-first: the
// template is translated onto the molecule's center of mass, then each slot
// (in template order) takes the closest unassigned atom of its symbol.
// Returns false when atom counts per symbol don't line up.
func (w *World) assignSlots(m *Molecule, tmpl *StableTemplate) (map[AtomID]int, bool) {
	if len(m.Atoms) != len(tmpl.Slots) {
		return nil, false
	}
	com := w.store.CenterOfMass(m)
	assigned := make(map[AtomID]int, len(m.Atoms))
	used := make(map[AtomID]bool, len(m.Atoms))

	for slotIdx, slot := range tmpl.Slots {
		target := com.Add(slot.Pos)
		var best *Atom
		bestDist := 0.0
		for _, id := range m.Atoms {
			a, ok := w.store.atoms[id]
			if !ok || used[id] || a.Symbol != slot.Symbol {
				continue
			}
			d := a.Pos.DistanceSq(target)
			if best == nil || d < bestDist {
				best = a
				bestDist = d
			}
		}
		if best == nil {
			return nil, false // symbol counts don't match the template
		}
		used[best.ID] = true
		assigned[best.ID] = slotIdx
	}
	return assigned, true
}

// geometryMatches checks every assigned atom against its slot target within
// the template tolerance.
func (w *World) geometryMatches(m *Molecule, tmpl *StableTemplate, assignment map[AtomID]int) bool {
	com := w.store.CenterOfMass(m)
	tol := tmpl.tolerance()
	for id, slotIdx := range assignment {
		a, ok := w.store.atoms[id]
		if !ok {
			return false
		}
		if a.Pos.Distance(com.Add(tmpl.Slots[slotIdx].Pos)) > tol {
			return false
		}
	}
	return true
}

// bondOrdersMatch compares the molecule's bond topology against the
// template's, grouped by canonical symbol pair and order.
func (w *World) bondOrdersMatch(m *Molecule, tmpl *StableTemplate) bool {
	s := w.store
	member := make(map[AtomID]bool, len(m.Atoms))
	for _, id := range m.Atoms {
		member[id] = true
	}
	actual := make(map[string]int)
	for _, b := range s.orderedBonds() {
		if !member[b.A] || !member[b.B] {
			continue
		}
		actual[bondPairKey(s.atoms[b.A].Symbol, s.atoms[b.B].Symbol, b.Order)]++
	}
	want := tmpl.bondCounts()
	if len(actual) != len(want) {
		return false
	}
	for k, n := range want {
		if actual[k] != n {
			return false
		}
	}
	return true
}

// startReshape freezes the slot assignment and target positions and begins
// the fixed-duration convergence. The assignment is never recomputed after
// atoms start moving, so they cannot drift onto the wrong slots.
func (w *World) startReshape(m *Molecule, tmpl *StableTemplate, assignment map[AtomID]int) {
	com := w.store.CenterOfMass(m)
	targets := make(map[AtomID]Vec2, len(assignment))
	for id, slotIdx := range assignment {
		targets[id] = com.Add(tmpl.Slots[slotIdx].Pos)
	}
	m.state = Reshaping
	m.reshape = &reshapeState{
		template:  tmpl,
		remaining: w.cfg.Physics.ReshapeTicks,
		total:     w.cfg.Physics.ReshapeTicks,
		slots:     assignment,
		targets:   targets,
	}
	w.emit(Event{
		Kind:       EventReshapeStarted,
		MoleculeID: m.ID,
		Formula:    m.formula,
		Name:       tmpl.Name,
	})
}

// stepReshape nudges every mapped atom toward its target with a blend factor
// that accelerates over the run, then on expiry performs the authoritative
// rewrite: snap positions, zero velocities, and rebuild the bond topology
// exactly as the template specifies.
func (w *World) stepReshape(m *Molecule) {
	r := m.reshape
	if r == nil {
		m.state = Unstable
		return
	}
	p := w.cfg.Physics

	r.remaining--
	progress := 1 - float64(r.remaining)/float64(r.total)
	blend := p.ReshapeBlendMin + (p.ReshapeBlendMax-p.ReshapeBlendMin)*progress*progress

	for id, target := range r.targets {
		a, ok := w.store.atoms[id]
		if !ok {
			// Membership broke mid-reshape; the reconciler will retire this
			// molecule at the end of the tick.
			continue
		}
		delta := target.Sub(a.Pos)
		a.Vel = a.Vel.Add(delta.Scale(p.SpringStiffness * 0.05))
		a.Pos = a.Pos.Add(delta.Scale(blend))
	}

	if r.remaining > 0 {
		return
	}
	w.finishReshape(m)
}

// finishReshape snaps atoms onto their targets and rewrites bonds from the
// slot mapping fixed at reshape start. Physical convergence alone cannot
// guarantee the exact topology, so the rewrite is atomic and authoritative.
func (w *World) finishReshape(m *Molecule) {
	s := w.store
	r := m.reshape
	tmpl := r.template

	bySlot := make(map[int]AtomID, len(r.slots))
	for id, slotIdx := range r.slots {
		if _, ok := s.atoms[id]; !ok {
			// An atom vanished mid-reshape; abandon and let the next tick
			// re-judge whatever remains.
			m.reshape = nil
			m.state = Unstable
			return
		}
		bySlot[slotIdx] = id
	}

	for id, target := range r.targets {
		a := s.atoms[id]
		a.Pos = target
		a.Vel = Vec2{}
		w.index.Update(a.ID, a.Pos)
	}

	// Destroy all existing bonds inside the aggregate, then recreate the
	// template's topology through the slot mapping.
	member := make(map[AtomID]bool, len(m.Atoms))
	for _, id := range m.Atoms {
		member[id] = true
	}
	for _, b := range s.orderedBonds() {
		if member[b.A] && member[b.B] {
			s.removeBond(b.ID, Vec2{})
		}
	}
	for _, tb := range tmpl.Bonds {
		if _, err := s.AddBond(bySlot[tb.A], bySlot[tb.B], tb.Order); err != nil {
			w.log.Errorf("reshape bond rewrite failed for %s: %v", m.ID, err)
		}
	}

	m.reshape = nil
	m.geometryVerified = true
	w.markStable(m, tmpl.Name)
	w.emit(Event{
		Kind:       EventReshapeCompleted,
		MoleculeID: m.ID,
		Formula:    m.formula,
		Name:       tmpl.Name,
	})
}
