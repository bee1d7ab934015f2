package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildLibraryFromConfig(t *testing.T) {
	elements, templates, err := BuildLibraryFromConfig(validLibraryConfig())
	if err != nil {
		t.Fatalf("BuildLibraryFromConfig failed: %v", err)
	}

	o, ok := elements.Lookup("O")
	if !ok {
		t.Fatal("Expected O in element table")
	}
	if o.MaxValence != 2 || o.Mass != 16 {
		t.Errorf("Unexpected O element: %+v", o)
	}

	tmpl, ok := templates.ForFormula("H2O")
	if !ok {
		t.Fatal("Expected H2O template")
	}
	if tmpl.Name != "Water" {
		t.Errorf("Expected template name Water, got %s", tmpl.Name)
	}
	if len(tmpl.Slots) != 3 || len(tmpl.Bonds) != 2 {
		t.Errorf("Expected 3 slots / 2 bonds, got %d / %d", len(tmpl.Slots), len(tmpl.Bonds))
	}
	if tmpl.Slots[1].Pos.X != 22.1 {
		t.Errorf("Expected slot position carried over, got %g", tmpl.Slots[1].Pos.X)
	}
}

func TestBuildLibraryFromConfig_Invalid(t *testing.T) {
	cfg := validLibraryConfig()
	cfg.Name = ""
	if _, _, err := BuildLibraryFromConfig(cfg); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestBuildLibraryFromConfig_WorldConstruction(t *testing.T) {
	elements, templates, err := BuildLibraryFromConfig(validLibraryConfig())
	if err != nil {
		t.Fatalf("BuildLibraryFromConfig failed: %v", err)
	}
	w := NewWorld("custom", Config{Seed: 1, Elements: elements, Templates: templates})

	if _, err := w.AddAtom("O", Vec2{X: 100, Y: 100}); err != nil {
		t.Errorf("Expected custom element usable: %v", err)
	}
	// Built-in elements are replaced, not merged.
	if _, err := w.AddAtom("C", Vec2{X: 100, Y: 100}); err == nil {
		t.Error("Expected built-in carbon absent from the custom table")
	}
}

func TestLoadLibraryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")
	content := `{
  "name": "file-chemistry",
  "elements": [
    {"symbol": "H", "name": "Hydrogen", "mass": 1, "radius": 12, "max_valence": 1}
  ],
  "templates": [
    {
      "name": "Dihydrogen",
      "formula": "H2",
      "slots": [
        {"symbol": "H", "x": -12, "y": 0},
        {"symbol": "H", "x": 12, "y": 0}
      ],
      "bonds": [{"a": 0, "b": 1, "order": 1}]
    }
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	elements, templates, err := LoadLibraryFile(path)
	if err != nil {
		t.Fatalf("LoadLibraryFile failed: %v", err)
	}
	if _, ok := elements.Lookup("H"); !ok {
		t.Error("Expected H in loaded element table")
	}
	if _, ok := templates.ForFormula("H2"); !ok {
		t.Error("Expected H2 template loaded")
	}
}

func TestLoadLibraryFile_Errors(t *testing.T) {
	if _, _, err := LoadLibraryFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0o644)
	if _, _, err := LoadLibraryFile(bad); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}
