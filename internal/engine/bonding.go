package engine

// attemptBonds runs the probabilistic bonding protocol: for every eligible
// pair inside the bonding radius, draw a bond with probability
// (1 - d/bondingRadius) * chanceScale. This is the only spontaneous source
// of bonds in the simulation; nothing creates them from "matching"
// heuristics.
func (w *World) attemptBonds() {
	p := w.cfg.Physics
	for _, a := range w.store.orderedAtoms() {
		if a.AvailableValence() <= 0 || a.Sealed {
			continue
		}
		w.index.QueryRadius(a.Pos, p.BondingRadius, func(otherID AtomID) {
			if otherID <= a.ID {
				return // each pair once
			}
			if a.AvailableValence() <= 0 {
				return // may have been consumed earlier in this query
			}
			b, ok := w.store.atoms[otherID]
			if !ok || b.Sealed || b.AvailableValence() <= 0 {
				return
			}
			if a.avoids(b.ID) || b.avoids(a.ID) {
				return
			}
			if w.store.bonded(a.ID, b.ID) {
				return
			}
			dist := a.Pos.Distance(b.Pos)
			if dist >= p.BondingRadius {
				return
			}
			chance := (1 - dist/p.BondingRadius) * p.BondChanceScale
			if w.rng.Float64() >= chance {
				return
			}
			if _, err := w.store.AddBond(a.ID, b.ID, 1); err != nil {
				// Raced against valence consumed in this same pass; the
				// draw simply fails.
				w.log.Debugf("bond attempt rejected: %v", err)
			}
		})
	}
}
