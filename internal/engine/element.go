package engine

import "sort"

// Symbol is the short chemical symbol of an element (e.g. "H", "O").
type Symbol string

// Element describes one kind of atom: its physical properties and how many
// bond slots it offers. The display color is carried for the renderer but
// never interpreted by the engine.
type Element struct {
	Symbol     Symbol
	Name       string
	Mass       float64
	Radius     float64
	MaxValence int
	Color      string
}

// ElementTable is the immutable set of elements a world is constructed with.
// It replaces any notion of a global element registry: every world gets its
// own table at construction time.
type ElementTable struct {
	elements map[Symbol]Element
}

// NewElementTable builds a table from the given element definitions.
func NewElementTable(elements ...Element) *ElementTable {
	t := &ElementTable{elements: make(map[Symbol]Element, len(elements))}
	for _, e := range elements {
		t.elements[e.Symbol] = e
	}
	return t
}

// Lookup retrieves an element by symbol.
// Returns the element and a boolean indicating if it was found.
func (t *ElementTable) Lookup(sym Symbol) (Element, bool) {
	e, ok := t.elements[sym]
	return e, ok
}

// Symbols returns all known symbols in a stable sorted order.
func (t *ElementTable) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.elements))
	for s := range t.elements {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultElements returns the built-in element set. Masses are relative
// units, radii are world units tuned against the default physics constants.
func DefaultElements() []Element {
	return []Element{
		{Symbol: "H", Name: "Hydrogen", Mass: 1, Radius: 12, MaxValence: 1, Color: "#ffffff"},
		{Symbol: "C", Name: "Carbon", Mass: 12, Radius: 16, MaxValence: 4, Color: "#4a4a4a"},
		{Symbol: "N", Name: "Nitrogen", Mass: 14, Radius: 15, MaxValence: 3, Color: "#3050f8"},
		{Symbol: "O", Name: "Oxygen", Mass: 16, Radius: 16, MaxValence: 2, Color: "#ff0d0d"},
		{Symbol: "P", Name: "Phosphorus", Mass: 31, Radius: 18, MaxValence: 3, Color: "#ff8000"},
	}
}
