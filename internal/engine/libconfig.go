package engine

// ElementConfig is the JSON-loadable definition of one element.
type ElementConfig struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Mass       float64 `json:"mass"`
	Radius     float64 `json:"radius"`
	MaxValence int     `json:"max_valence"`
	Color      string  `json:"color,omitempty"`
}

// SlotConfig is one atom position inside a template, relative to the
// template's center of mass.
type SlotConfig struct {
	Symbol string  `json:"symbol"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// TemplateBondConfig connects two slots by index.
type TemplateBondConfig struct {
	A     int `json:"a"`
	B     int `json:"b"`
	Order int `json:"order"`
}

// TemplateConfig is the JSON-loadable definition of one stable template.
type TemplateConfig struct {
	Name      string               `json:"name"`
	Formula   string               `json:"formula"`
	Reactive  bool                 `json:"reactive,omitempty"`
	Tolerance float64              `json:"tolerance,omitempty"`
	Slots     []SlotConfig         `json:"slots"`
	Bonds     []TemplateBondConfig `json:"bonds"`
}

// LibraryConfig is the JSON-loadable chemistry of a world: which elements
// exist and which stable shapes they can settle into.
type LibraryConfig struct {
	Name      string           `json:"name"`
	Elements  []ElementConfig  `json:"elements"`
	Templates []TemplateConfig `json:"templates"`
}
