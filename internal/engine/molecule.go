package engine

import (
	"fmt"
	"sort"
	"strings"
)

// MoleculeID is a unique identifier for a molecule aggregate.
type MoleculeID string

// Stability is the lifecycle state of a molecule.
type Stability int

const (
	// Unstable: valence not closed, or closed but geometry not verified.
	Unstable Stability = iota
	// Reshaping: actively converging onto a matched template.
	Reshaping
	// Stable: valence closed and geometry verified (or no template exists).
	Stable
)

func (s Stability) String() string {
	switch s {
	case Unstable:
		return "unstable"
	case Reshaping:
		return "reshaping"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// Molecule is one connected component of the bond graph. Membership is
// derived by the aggregation reconciler every tick; everything else here is
// per-aggregate state that survives ticks as long as membership does.
type Molecule struct {
	ID    MoleculeID
	Atoms []AtomID // ordered membership
	Name  string   // template display name once geometry is verified

	state            Stability
	geometryVerified bool
	reshape          *reshapeState

	// decayTimer counts down while the molecule stays unstable; decayArmed
	// marks that the timer has been seeded for the current unstable spell.
	decayTimer float64
	decayArmed bool

	// Polymer is set once the molecule is sealed into a polymer.
	Polymer PolymerID

	// membershipKey is the canonical sorted-atom-id key the reconciler uses
	// to carry aggregate identity across ticks.
	membershipKey string

	formula string

	Selected    bool
	Highlighted bool
}

// reshapeState tracks an in-flight reshape. The slot assignment is fixed
// when the reshape starts and never recomputed, so moving atoms cannot be
// re-assigned onto the wrong slots mid-flight.
type reshapeState struct {
	template  *StableTemplate
	remaining int
	total     int
	slots     map[AtomID]int  // maps atom to template slot index
	targets   map[AtomID]Vec2 // maps atom to world-space target position
}

// State returns the current lifecycle state.
func (m *Molecule) State() Stability { return m.state }

// GeometryVerified reports whether the current geometry has been verified
// against a template.
func (m *Molecule) GeometryVerified() bool { return m.geometryVerified }

// Formula returns the cached elemental formula (Hill order: C, H, then
// alphabetical).
func (m *Molecule) Formula() string { return m.formula }

// ReshapeProgress returns the fraction of the reshape animation completed,
// or 0 when the molecule is not reshaping.
func (m *Molecule) ReshapeProgress() float64 {
	if m.reshape == nil || m.reshape.total == 0 {
		return 0
	}
	return 1 - float64(m.reshape.remaining)/float64(m.reshape.total)
}

// Size returns the number of member atoms.
func (m *Molecule) Size() int { return len(m.Atoms) }

// membershipKeyFor builds the canonical identity key for a set of atom ids.
func membershipKeyFor(atoms []AtomID) string {
	ids := make([]string, len(atoms))
	for i, id := range atoms {
		ids[i] = string(id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// elementCounts tallies member atoms by symbol.
func (s *Store) elementCounts(m *Molecule) map[Symbol]int {
	counts := make(map[Symbol]int)
	for _, id := range m.Atoms {
		if a, ok := s.atoms[id]; ok {
			counts[a.Symbol]++
		}
	}
	return counts
}

// formulaFor renders element counts in Hill order: carbon first, hydrogen
// second, everything else alphabetically.
func formulaFor(counts map[Symbol]int) string {
	symbols := make([]string, 0, len(counts))
	for sym := range counts {
		if sym != "C" && sym != "H" {
			symbols = append(symbols, string(sym))
		}
	}
	sort.Strings(symbols)
	ordered := make([]string, 0, len(counts))
	if counts["C"] > 0 {
		ordered = append(ordered, "C")
	}
	if counts["H"] > 0 {
		ordered = append(ordered, "H")
	}
	ordered = append(ordered, symbols...)

	var b strings.Builder
	for _, sym := range ordered {
		b.WriteString(sym)
		if n := counts[Symbol(sym)]; n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}
	return b.String()
}

// Fingerprint is the canonical structural hash of the molecule: element
// counts plus bond counts grouped by symbol pair and order. Order-independent
// by construction; used by the catalogue as a lookup key.
func (s *Store) Fingerprint(m *Molecule) string {
	counts := s.elementCounts(m)
	bondCounts := make(map[string]int)
	member := make(map[AtomID]bool, len(m.Atoms))
	for _, id := range m.Atoms {
		member[id] = true
	}
	for _, b := range s.bonds {
		if !member[b.A] || !member[b.B] {
			continue
		}
		a1, ok1 := s.atoms[b.A]
		a2, ok2 := s.atoms[b.B]
		if !ok1 || !ok2 {
			continue
		}
		bondCounts[bondPairKey(a1.Symbol, a2.Symbol, b.Order)]++
	}

	keys := make([]string, 0, len(bondCounts))
	for k := range bondCounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(formulaFor(counts))
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s:%d", k, bondCounts[k])
	}
	return b.String()
}

// bondPairKey canonicalizes a bond between two symbols at a given order.
func bondPairKey(a, b Symbol, order int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s-%s@%d", a, b, order)
}

// CenterOfMass computes the mass-weighted centroid of the molecule.
func (s *Store) CenterOfMass(m *Molecule) Vec2 {
	var sum Vec2
	total := 0.0
	for _, id := range m.Atoms {
		a, ok := s.atoms[id]
		if !ok {
			continue
		}
		sum = sum.Add(a.Pos.Scale(a.element.Mass))
		total += a.element.Mass
	}
	if total == 0 {
		return Vec2{}
	}
	return sum.Scale(1 / total)
}

// TotalMass sums member atom masses.
func (s *Store) TotalMass(m *Molecule) float64 {
	total := 0.0
	for _, id := range m.Atoms {
		if a, ok := s.atoms[id]; ok {
			total += a.element.Mass
		}
	}
	return total
}

// valenceClosed reports whether every member atom has zero available valence.
func (s *Store) valenceClosed(m *Molecule) bool {
	for _, id := range m.Atoms {
		a, ok := s.atoms[id]
		if !ok {
			return false
		}
		if a.AvailableValence() > 0 {
			return false
		}
	}
	return true
}

// valenceCloseness is the fraction of total valence currently satisfied,
// used to seed the decay countdown (closer to closed decays slower).
func (s *Store) valenceCloseness(m *Molecule) float64 {
	have, want := 0, 0
	for _, id := range m.Atoms {
		a, ok := s.atoms[id]
		if !ok {
			continue
		}
		have += a.BondOrderSum()
		want += a.element.MaxValence
	}
	if want == 0 {
		return 1
	}
	return float64(have) / float64(want)
}
