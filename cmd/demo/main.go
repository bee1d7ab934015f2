// Demo: a directed synthesis run. Defines a small custom chemistry with the
// fluent library builder, scatters loose atoms, places intentions for water
// and ammonia, and steps the world until both structures assemble.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/primordialab/primordium/internal/engine"
	"github.com/primordialab/primordium/pkg/client"
)

func main() {
	lib := client.NewLibrary("demo-chemistry").
		ElementColored("H", "Hydrogen", 1.0, 5, 1, "#ffffff").
		ElementColored("O", "Oxygen", 16.0, 8, 2, "#ff4040").
		ElementColored("N", "Nitrogen", 14.0, 7, 3, "#4060ff").
		Template(client.NewTemplate("Water", "H2O").
			Slot("O", 0, 0).
			Slot("H", -12, 9).
			Slot("H", 12, 9).
			Bond(0, 1, 1).
			Bond(0, 2, 1)).
		Template(client.NewTemplate("Ammonia", "H3N").
			Reactive().
			Slot("N", 0, 0).
			Slot("H", -13, 7).
			Slot("H", 13, 7).
			Slot("H", 0, -14).
			Bond(0, 1, 1).
			Bond(0, 2, 1).
			Bond(0, 3, 1)).
		Build()

	elements, templates, err := engine.BuildLibraryFromConfig(lib)
	if err != nil {
		fmt.Fprintf(os.Stderr, "library error: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.DefaultConfig()
	cfg.Width = 800
	cfg.Height = 600
	cfg.Seed = 42
	cfg.Elements = elements
	cfg.Templates = templates

	world := engine.NewWorld("demo", cfg)

	placer := rand.New(rand.NewSource(7))
	scatter := func(sym engine.Symbol, n int) {
		for i := 0; i < n; i++ {
			pos := engine.Vec2{
				X: 40 + placer.Float64()*720,
				Y: 40 + placer.Float64()*520,
			}
			if _, err := world.AddAtom(sym, pos); err != nil {
				fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
				os.Exit(1)
			}
		}
	}
	scatter("H", 40)
	scatter("O", 8)
	scatter("N", 6)

	if _, err := world.AddMoleculeIntention(engine.Vec2{X: 250, Y: 300}, 180, "H2O"); err != nil {
		fmt.Fprintf(os.Stderr, "intention error: %v\n", err)
		os.Exit(1)
	}
	if _, err := world.AddMoleculeIntention(engine.Vec2{X: 550, Y: 300}, 180, "H3N"); err != nil {
		fmt.Fprintf(os.Stderr, "intention error: %v\n", err)
		os.Exit(1)
	}

	const dt = 1.0 / 30.0
	const maxTicks = 20000

	fmt.Println("Running directed synthesis (water + ammonia)...")
	for i := 0; i < maxTicks; i++ {
		world.Step(dt)

		if (i+1)%1000 == 0 {
			st := world.Stats()
			fmt.Printf("tick %d: %d molecules (%d stable), %d intentions pending\n",
				st.Tick, st.MoleculeCount, st.StableCount, st.Intentions)
		}
		if len(world.Intentions()) == 0 {
			fmt.Printf("All intentions fulfilled at tick %d\n", world.Tick())
			break
		}
	}

	st := world.Stats()
	fmt.Printf("Final: %d molecules (%d stable), %d bonds\n",
		st.MoleculeCount, st.StableCount, st.BondCount)
	for _, m := range world.Molecules() {
		if m.State == "stable" {
			fmt.Printf("  %s %q at (%.0f, %.0f)\n", m.Formula, m.Name, m.Center.X, m.Center.Y)
		}
	}
}
