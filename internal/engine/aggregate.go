package engine

// reconcileAggregates recomputes molecule membership strictly from the
// current bond graph: a molecule always means "one connected bond
// component", never "atoms merely near each other". Components whose sorted
// atom-id key matches an existing molecule keep that molecule's identity
// (and with it the reshape/decay state); everything else becomes a fresh
// molecule, and molecules whose component disappeared are dropped.
func (w *World) reconcileAggregates() {
	s := w.store

	visited := make(map[AtomID]bool, len(s.atoms))
	groups := make([][]AtomID, 0)
	for _, a := range s.orderedAtoms() {
		if visited[a.ID] || len(a.bonds) == 0 {
			continue
		}
		groups = append(groups, s.component(a.ID, visited))
	}

	byKey := make(map[string]*Molecule, len(s.molecules))
	for _, m := range s.molecules {
		byKey[m.membershipKey] = m
	}

	seen := make(map[MoleculeID]bool, len(groups))
	for _, group := range groups {
		key := membershipKeyFor(group)
		m, ok := byKey[key]
		if !ok {
			m = &Molecule{
				ID:            MoleculeID(NewRandomID()),
				Atoms:         group,
				state:         Unstable,
				membershipKey: key,
			}
			s.molecules[m.ID] = m
		}
		m.formula = formulaFor(s.elementCounts(m))
		seen[m.ID] = true
		for _, id := range group {
			s.atoms[id].Molecule = m.ID
		}
	}

	for id := range s.molecules {
		if !seen[id] {
			delete(s.molecules, id)
		}
	}

	// Atoms with zero bonds are cleared of membership by the store sync,
	// but a bond may have broken since: clear stragglers here too.
	for _, a := range s.atoms {
		if len(a.bonds) == 0 {
			a.Molecule = ""
		}
	}
}

// component runs a breadth-first traversal over the bond adjacency starting
// at the given atom, returning the connected group in discovery order.
func (s *Store) component(start AtomID, visited map[AtomID]bool) []AtomID {
	queue := []AtomID{start}
	visited[start] = true
	group := make([]AtomID, 0, 4)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		group = append(group, id)
		a := s.atoms[id]
		for _, bond := range s.bondsOf(a) {
			next := bond.Other(id)
			if next == "" || visited[next] {
				continue
			}
			if _, ok := s.atoms[next]; !ok {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return group
}
