package engine

// TemplateSlot is one atom position in a canonical stable geometry,
// expressed relative to the template's own center of mass.
type TemplateSlot struct {
	Symbol Symbol
	Pos    Vec2
}

// TemplateBond connects two slots by index with a given bond order.
type TemplateBond struct {
	A     int
	B     int
	Order int
}

// StableTemplate is a known stable shape: the canonical geometry and bond
// topology a valence-closed molecule of this formula converges to. Reactive
// templates additionally mark the molecule as a monomer eligible for polymer
// formation.
type StableTemplate struct {
	Name      string
	Formula   string
	Slots     []TemplateSlot
	Bonds     []TemplateBond
	Reactive  bool
	Tolerance float64 // geometry match tolerance; 0 means the library default
}

const defaultGeometryTolerance = 6.0

// tolerance returns the effective geometry match tolerance.
func (t *StableTemplate) tolerance() float64 {
	if t.Tolerance > 0 {
		return t.Tolerance
	}
	return defaultGeometryTolerance
}

// bondCounts groups template bonds by canonical symbol pair and order, for
// comparison against a molecule's actual bond topology.
func (t *StableTemplate) bondCounts() map[string]int {
	counts := make(map[string]int, len(t.Bonds))
	for _, b := range t.Bonds {
		counts[bondPairKey(t.Slots[b.A].Symbol, t.Slots[b.B].Symbol, b.Order)]++
	}
	return counts
}

// TemplateLibrary is the immutable set of stable templates a world is
// constructed with, looked up by formula.
type TemplateLibrary struct {
	byFormula map[string]*StableTemplate
}

// NewTemplateLibrary builds a library from the given templates. Later
// templates with a duplicate formula replace earlier ones.
func NewTemplateLibrary(templates ...StableTemplate) *TemplateLibrary {
	lib := &TemplateLibrary{byFormula: make(map[string]*StableTemplate, len(templates))}
	for i := range templates {
		t := templates[i]
		lib.byFormula[t.Formula] = &t
	}
	return lib
}

// ForFormula retrieves the template matching a formula.
// Returns the template and a boolean indicating if it was found.
func (l *TemplateLibrary) ForFormula(formula string) (*StableTemplate, bool) {
	t, ok := l.byFormula[formula]
	return t, ok
}

// Templates returns all templates in the library.
func (l *TemplateLibrary) Templates() []*StableTemplate {
	out := make([]*StableTemplate, 0, len(l.byFormula))
	for _, t := range l.byFormula {
		out = append(out, t)
	}
	return out
}

// DefaultTemplates returns the built-in template vocabulary. Slot positions
// are tuned to the default element radii (rest bond length = sum of radii).
func DefaultTemplates() []StableTemplate {
	return []StableTemplate{
		{
			Name:    "Dihydrogen",
			Formula: "H2",
			Slots: []TemplateSlot{
				{Symbol: "H", Pos: Vec2{X: -12, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: 12, Y: 0}},
			},
			Bonds: []TemplateBond{{A: 0, B: 1, Order: 1}},
		},
		{
			Name:    "Dioxygen",
			Formula: "O2",
			Slots: []TemplateSlot{
				{Symbol: "O", Pos: Vec2{X: -16, Y: 0}},
				{Symbol: "O", Pos: Vec2{X: 16, Y: 0}},
			},
			Bonds: []TemplateBond{{A: 0, B: 1, Order: 2}},
		},
		{
			Name:    "Dinitrogen",
			Formula: "N2",
			Slots: []TemplateSlot{
				{Symbol: "N", Pos: Vec2{X: -15, Y: 0}},
				{Symbol: "N", Pos: Vec2{X: 15, Y: 0}},
			},
			Bonds: []TemplateBond{{A: 0, B: 1, Order: 3}},
		},
		{
			// 104.5° bent geometry: hydrogens at ±52.25° off the bisector,
			// bond length 28 (O radius 16 + H radius 12).
			Name:    "Water",
			Formula: "H2O",
			Slots: []TemplateSlot{
				{Symbol: "O", Pos: Vec2{X: 0, Y: -4.3}},
				{Symbol: "H", Pos: Vec2{X: 22.1, Y: 12.8}},
				{Symbol: "H", Pos: Vec2{X: -22.1, Y: 12.8}},
			},
			Bonds: []TemplateBond{
				{A: 0, B: 1, Order: 1},
				{A: 0, B: 2, Order: 1},
			},
		},
		{
			Name:    "Carbon dioxide",
			Formula: "CO2",
			Slots: []TemplateSlot{
				{Symbol: "C", Pos: Vec2{X: 0, Y: 0}},
				{Symbol: "O", Pos: Vec2{X: -32, Y: 0}},
				{Symbol: "O", Pos: Vec2{X: 32, Y: 0}},
			},
			Bonds: []TemplateBond{
				{A: 0, B: 1, Order: 2},
				{A: 0, B: 2, Order: 2},
			},
		},
		{
			Name:    "Methane",
			Formula: "CH4",
			Slots: []TemplateSlot{
				{Symbol: "C", Pos: Vec2{X: 0, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: 28, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: 0, Y: 28}},
				{Symbol: "H", Pos: Vec2{X: -28, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: 0, Y: -28}},
			},
			Bonds: []TemplateBond{
				{A: 0, B: 1, Order: 1},
				{A: 0, B: 2, Order: 1},
				{A: 0, B: 3, Order: 1},
				{A: 0, B: 4, Order: 1},
			},
			Reactive: true,
		},
		{
			Name:    "Ammonia",
			Formula: "H3N",
			Slots: []TemplateSlot{
				{Symbol: "N", Pos: Vec2{X: 0, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: 27, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: -13.5, Y: 23.4}},
				{Symbol: "H", Pos: Vec2{X: -13.5, Y: -23.4}},
			},
			Bonds: []TemplateBond{
				{A: 0, B: 1, Order: 1},
				{A: 0, B: 2, Order: 1},
				{A: 0, B: 3, Order: 1},
			},
			Reactive: true,
		},
		{
			Name:    "Phosphine",
			Formula: "H3P",
			Slots: []TemplateSlot{
				{Symbol: "P", Pos: Vec2{X: 0, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: 30, Y: 0}},
				{Symbol: "H", Pos: Vec2{X: -15, Y: 26}},
				{Symbol: "H", Pos: Vec2{X: -15, Y: -26}},
			},
			Bonds: []TemplateBond{
				{A: 0, B: 1, Order: 1},
				{A: 0, B: 2, Order: 1},
				{A: 0, B: 3, Order: 1},
			},
			Reactive: true,
		},
	}
}
