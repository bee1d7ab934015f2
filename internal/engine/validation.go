package engine

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid library: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "library validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateLibraryConfig performs comprehensive validation of a LibraryConfig
func ValidateLibraryConfig(cfg LibraryConfig) error {
	err := &ValidationError{}

	if cfg.Name == "" {
		err.Add("library name is required")
	}

	// Build a map of element symbols for quick lookup
	elementMap := make(map[string]ElementConfig)

	for i, el := range cfg.Elements {
		prefix := "element"
		if el.Symbol != "" {
			prefix = "element '" + el.Symbol + "'"
		} else {
			prefix = fmt.Sprintf("element at index %d", i)
		}

		if el.Symbol == "" {
			err.Add(prefix + ": symbol is required")
			continue
		}
		if _, dup := elementMap[el.Symbol]; dup {
			err.Add("duplicate element symbol: " + el.Symbol)
		} else {
			elementMap[el.Symbol] = el
		}
		if el.Mass <= 0 {
			err.Add(prefix + ": mass must be positive")
		}
		if el.Radius <= 0 {
			err.Add(prefix + ": radius must be positive")
		}
		if el.MaxValence < 1 {
			err.Add(prefix + ": max_valence must be at least 1")
		}
	}

	// Build a map of template formulas for uniqueness check
	formulas := make(map[string]bool)

	for i, tc := range cfg.Templates {
		prefix := "template"
		if tc.Name != "" {
			prefix = "template '" + tc.Name + "'"
		} else {
			prefix = fmt.Sprintf("template at index %d", i)
		}

		if tc.Name == "" {
			err.Add(prefix + ": name is required")
		}
		if tc.Formula == "" {
			err.Add(prefix + ": formula is required")
		} else if formulas[tc.Formula] {
			err.Add("duplicate template formula: " + tc.Formula)
		} else {
			formulas[tc.Formula] = true
		}
		if tc.Tolerance < 0 {
			err.Add(prefix + ": tolerance cannot be negative")
		}
		if len(tc.Slots) < 2 {
			err.Add(prefix + ": at least 2 slots are required")
		}

		// Validate slots against known elements and tally composition.
		counts := make(map[string]int)
		for j, slot := range tc.Slots {
			if slot.Symbol == "" {
				err.Add(fmt.Sprintf("%s slot at index %d: symbol is required", prefix, j))
				continue
			}
			if _, ok := elementMap[slot.Symbol]; !ok {
				err.Add(fmt.Sprintf("%s slot at index %d: element '%s' does not exist", prefix, j, slot.Symbol))
			}
			counts[slot.Symbol]++
		}

		// The formula must describe exactly the slot composition.
		if tc.Formula != "" {
			want, ferr := parseFormula(tc.Formula)
			if ferr != nil {
				err.Add(prefix + ": " + ferr.Error())
			} else if !countsEqual(want, counts) {
				err.Add(prefix + ": formula '" + tc.Formula + "' does not match slot composition")
			}
		}

		// Validate bonds: valid slot indices, legal orders, connectivity
		// within valence limits.
		used := make([]int, len(tc.Slots))
		for j, b := range tc.Bonds {
			bondPrefix := fmt.Sprintf("%s bond at index %d", prefix, j)
			if b.A < 0 || b.A >= len(tc.Slots) || b.B < 0 || b.B >= len(tc.Slots) {
				err.Add(bondPrefix + ": slot index out of range")
				continue
			}
			if b.A == b.B {
				err.Add(bondPrefix + ": cannot bond a slot to itself")
				continue
			}
			if b.Order < 1 || b.Order > 3 {
				err.Add(fmt.Sprintf("%s: order must be 1..3, got %d", bondPrefix, b.Order))
				continue
			}
			used[b.A] += b.Order
			used[b.B] += b.Order
		}
		for j, u := range used {
			el, ok := elementMap[tc.Slots[j].Symbol]
			if !ok {
				continue
			}
			if u > el.MaxValence {
				err.Add(fmt.Sprintf("%s slot at index %d: bond order %d exceeds valence %d of element '%s'", prefix, j, u, el.MaxValence, el.Symbol))
			}
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

func countsEqual(a map[Symbol]int, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for sym, n := range a {
		if b[string(sym)] != n {
			return false
		}
	}
	return true
}
