package engine

// stepDecay advances the decay countdown of an unstable, non-reshaping
// molecule. The countdown is seeded once per unstable spell, proportional to
// valence closeness: aggregates nearly closed get more time to finish. On
// expiry the single worst-satisfied atom is released, unless an active
// intention still needs everything this aggregate holds.
func (w *World) stepDecay(m *Molecule) {
	s := w.store
	p := w.cfg.Physics

	if !m.decayArmed {
		closeness := s.valenceCloseness(m)
		m.decayTimer = p.DecayBaseTicks * (1 + p.DecayClosenessBonus*closeness)
		m.decayArmed = true
	}

	excess, allNeeded := w.intentionDemand(m)
	if allNeeded {
		// Every held atom is wanted by an in-range intention: hold the
		// aggregate together so it can keep trying to stabilize.
		return
	}

	m.decayTimer--
	if m.decayTimer > 0 {
		return
	}

	victim := w.pickDecayVictim(m, excess)
	if victim == nil {
		m.decayArmed = false
		return
	}
	w.releaseAtom(m, victim)
	m.decayArmed = false
}

// pickDecayVictim chooses the atom with the lowest valence-satisfaction
// ratio, preferring intention-excess atoms when any exist.
func (w *World) pickDecayVictim(m *Molecule, excess map[AtomID]bool) *Atom {
	candidates := m.Atoms
	if len(excess) > 0 {
		filtered := make([]AtomID, 0, len(excess))
		for _, id := range m.Atoms {
			if excess[id] {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	var victim *Atom
	best := 0.0
	for _, id := range candidates {
		a, ok := w.store.atoms[id]
		if !ok || len(a.bonds) == 0 {
			continue
		}
		ratio := a.satisfaction()
		if victim == nil || ratio < best || (ratio == best && a.ID < victim.ID) {
			victim = a
			best = ratio
		}
	}
	return victim
}

// releaseAtom breaks the victim's weakest bond, imparts outward separation
// velocity from the aggregate's center of mass, tags the victim against
// immediate re-bonding with its former partners, and clears its membership.
func (w *World) releaseAtom(m *Molecule, victim *Atom) {
	s := w.store
	p := w.cfg.Physics

	var weakest *Bond
	for _, b := range s.bondsOf(victim) {
		if weakest == nil || b.Order < weakest.Order {
			weakest = b
		}
	}
	if weakest == nil {
		return
	}

	outward := victim.Pos.Sub(s.CenterOfMass(m)).Normalize()
	if outward.LengthSq() == 0 {
		outward = Vec2{X: 1, Y: 0}
	}
	s.removeBond(weakest.ID, Vec2{})
	victim.Vel = victim.Vel.Add(outward.Scale(p.ReleaseSpeed))

	for _, id := range m.Atoms {
		if id == victim.ID {
			continue
		}
		victim.avoid[id] = p.SuppressionTicks
		if other, ok := s.atoms[id]; ok {
			other.avoid[victim.ID] = p.SuppressionTicks
		}
	}
	victim.Molecule = ""

	w.emit(Event{
		Kind:       EventDecayRelease,
		MoleculeID: m.ID,
		Formula:    m.formula,
		AtomID:     victim.ID,
	})
}

// intentionDemand consults every active in-range molecule intention. Any
// single intention that needs everything the aggregate holds suppresses
// decay entirely; otherwise an atom counts as excess only when every
// in-range intention agrees it is beyond demand.
func (w *World) intentionDemand(m *Molecule) (excess map[AtomID]bool, allNeeded bool) {
	s := w.store
	com := s.CenterOfMass(m)

	var over map[AtomID]bool
	for _, in := range s.orderedIntentions() {
		if in.Kind != IntentMolecule {
			continue
		}
		if com.Distance(in.Pos) > in.Radius {
			continue
		}
		cur := make(map[AtomID]bool)
		remaining := make(map[Symbol]int, len(in.required))
		for sym, n := range in.required {
			remaining[sym] = n
		}
		// Walk members in stable order; atoms beyond the needed count of
		// their element are excess for this intention.
		for _, id := range m.Atoms {
			a, ok := s.atoms[id]
			if !ok {
				continue
			}
			if remaining[a.Symbol] > 0 {
				remaining[a.Symbol]--
			} else {
				cur[id] = true
			}
		}
		if len(cur) == 0 {
			return nil, true
		}
		if over == nil {
			over = cur
			continue
		}
		for id := range over {
			if !cur[id] {
				delete(over, id)
			}
		}
	}
	if len(over) == 0 {
		return nil, false
	}
	return over, false
}
