package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// BuildLibraryFromConfig converts a LibraryConfig into an element table and
// template library ready to construct a world with.
func BuildLibraryFromConfig(cfg LibraryConfig) (*ElementTable, *TemplateLibrary, error) {
	// Validate the configuration first
	if err := ValidateLibraryConfig(cfg); err != nil {
		return nil, nil, err
	}

	elements := make([]Element, 0, len(cfg.Elements))
	for _, el := range cfg.Elements {
		elements = append(elements, Element{
			Symbol:     Symbol(el.Symbol),
			Name:       el.Name,
			Mass:       el.Mass,
			Radius:     el.Radius,
			MaxValence: el.MaxValence,
			Color:      el.Color,
		})
	}

	templates := make([]StableTemplate, 0, len(cfg.Templates))
	for _, tc := range cfg.Templates {
		t := StableTemplate{
			Name:      tc.Name,
			Formula:   tc.Formula,
			Reactive:  tc.Reactive,
			Tolerance: tc.Tolerance,
		}
		for _, slot := range tc.Slots {
			t.Slots = append(t.Slots, TemplateSlot{
				Symbol: Symbol(slot.Symbol),
				Pos:    Vec2{X: slot.X, Y: slot.Y},
			})
		}
		for _, b := range tc.Bonds {
			t.Bonds = append(t.Bonds, TemplateBond{A: b.A, B: b.B, Order: b.Order})
		}
		templates = append(templates, t)
	}

	return NewElementTable(elements...), NewTemplateLibrary(templates...), nil
}

// LoadLibraryFile reads and builds a chemistry library from a JSON file.
func LoadLibraryFile(path string) (*ElementTable, *TemplateLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read library file: %w", err)
	}
	var cfg LibraryConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse library file: %w", err)
	}
	return BuildLibraryFromConfig(cfg)
}
