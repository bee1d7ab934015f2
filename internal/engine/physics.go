package engine

import "math"

// applyBoundaryForces pushes atoms away from the world edges with a force
// growing linearly inside the margin band.
func (w *World) applyBoundaryForces() {
	p := w.cfg.Physics
	for _, a := range w.store.orderedAtoms() {
		if a.Pos.X < p.BoundaryMargin {
			a.force.X += p.BoundaryStrength * (1 - a.Pos.X/p.BoundaryMargin)
		}
		if a.Pos.X > w.cfg.Width-p.BoundaryMargin {
			a.force.X -= p.BoundaryStrength * (1 - (w.cfg.Width-a.Pos.X)/p.BoundaryMargin)
		}
		if a.Pos.Y < p.BoundaryMargin {
			a.force.Y += p.BoundaryStrength * (1 - a.Pos.Y/p.BoundaryMargin)
		}
		if a.Pos.Y > w.cfg.Height-p.BoundaryMargin {
			a.force.Y -= p.BoundaryStrength * (1 - (w.cfg.Height-a.Pos.Y)/p.BoundaryMargin)
		}
	}
}

// applyPairwiseForces applies short-range overlap repulsion and the weak
// open-valence attraction between unbonded atoms, using the spatial index so
// each atom only considers its neighborhood.
func (w *World) applyPairwiseForces() {
	p := w.cfg.Physics
	for _, a := range w.store.orderedAtoms() {
		w.index.QueryRadius(a.Pos, p.InteractionRadius, func(otherID AtomID) {
			if otherID <= a.ID {
				return // each pair once
			}
			b, ok := w.store.atoms[otherID]
			if !ok {
				return
			}
			delta := b.Pos.Sub(a.Pos)
			dist := delta.Length()
			combined := a.element.Radius + b.element.Radius
			if dist == 0 {
				// Coincident atoms get a deterministic nudge apart.
				delta = Vec2{X: 1, Y: 0}
				dist = 0.001
			}
			dir := delta.Scale(1 / dist)

			if dist < combined {
				overlap := (combined - dist) / combined
				f := dir.Scale(p.RepulsionStrength * overlap)
				a.force = a.force.Sub(f)
				b.force = b.force.Add(f)
				return
			}

			// Weak attraction only between unbonded atoms that both still
			// have open valence and are not suppressed against each other.
			if dist < p.AttractionRadius &&
				a.AvailableValence() > 0 && b.AvailableValence() > 0 &&
				!a.Sealed && !b.Sealed &&
				!a.avoids(b.ID) && !b.avoids(a.ID) &&
				!w.store.bonded(a.ID, b.ID) {
				f := dir.Scale(p.AttractionStrength * (1 - dist/p.AttractionRadius))
				a.force = a.force.Add(f)
				b.force = b.force.Sub(f)
			}
		})
	}
}

// applyBondSprings applies a Hookean spring along every bond, rest length
// equal to the sum of the two atom radii.
func (w *World) applyBondSprings() {
	p := w.cfg.Physics
	for _, bond := range w.store.orderedBonds() {
		a, okA := w.store.atoms[bond.A]
		b, okB := w.store.atoms[bond.B]
		if !okA || !okB {
			continue
		}
		delta := b.Pos.Sub(a.Pos)
		dist := delta.Length()
		if dist == 0 {
			continue
		}
		rest := a.element.Radius + b.element.Radius
		f := delta.Scale(1 / dist).Scale(p.SpringStiffness * (dist - rest))
		a.force = a.force.Add(f)
		b.force = b.force.Sub(f)
	}
}

// applyJitter adds a small thermal drift sampled from a smooth noise field,
// so free atoms wander instead of settling into a static lattice.
func (w *World) applyJitter() {
	p := w.cfg.Physics
	if p.JitterStrength <= 0 {
		return
	}
	for _, a := range w.store.orderedAtoms() {
		n := w.noise.Eval3(a.Pos.X*p.JitterScale, a.Pos.Y*p.JitterScale, w.elapsed*0.25)
		angle := n * 2 * math.Pi
		a.force.X += math.Cos(angle) * p.JitterStrength
		a.force.Y += math.Sin(angle) * p.JitterStrength
	}
}

// integrate advances velocities and positions with the accumulated forces,
// clamps speed and world bounds, clears the force accumulators, and updates
// the spatial index for atoms whose cell changed.
func (w *World) integrate(dt float64) {
	p := w.cfg.Physics
	for _, a := range w.store.orderedAtoms() {
		a.Vel = a.Vel.Add(a.force.Scale(dt / a.element.Mass))
		a.Vel = a.Vel.Scale(p.Damping)
		if speed := a.Vel.Length(); speed > p.MaxSpeed {
			a.Vel = a.Vel.Scale(p.MaxSpeed / speed)
		}
		a.Pos = a.Pos.Add(a.Vel.Scale(dt))

		if a.Pos.X < 0 {
			a.Pos.X = 0
		} else if a.Pos.X > w.cfg.Width {
			a.Pos.X = w.cfg.Width
		}
		if a.Pos.Y < 0 {
			a.Pos.Y = 0
		} else if a.Pos.Y > w.cfg.Height {
			a.Pos.Y = w.cfg.Height
		}

		a.force = Vec2{}
		w.index.Update(a.ID, a.Pos)
	}
	w.elapsed += dt
}
