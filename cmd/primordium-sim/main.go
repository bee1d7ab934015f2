package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/primordialab/primordium/internal/engine"
)

func main() {
	var (
		ticks       = flag.Int("ticks", 3000, "number of ticks to run")
		dt          = flag.Float64("dt", 1.0/30.0, "simulated seconds per tick")
		seed        = flag.Int64("seed", 0, "random seed (0 derives one from the clock)")
		atoms       = flag.String("atoms", "H:60,O:30,C:10,N:10", "atoms to scatter, as symbol:count pairs")
		width       = flag.Float64("width", 2000, "world width")
		height      = flag.Float64("height", 1200, "world height")
		libraryFile = flag.String("library-file", "", "optional path to a JSON chemistry library")
		intention   = flag.String("intention", "", "optional molecule intention formula placed at the world center (e.g. H2O)")
		snapshotOut = flag.String("snapshot-out", "", "optional path to write the final snapshot JSON")
		verbose     = flag.Bool("v", false, "log progress every 500 ticks")
	)
	flag.Parse()

	counts, err := parseAtomSpec(*atoms)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid --atoms: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.DefaultConfig()
	cfg.Width = *width
	cfg.Height = *height
	cfg.Seed = *seed
	if *libraryFile != "" {
		elements, templates, err := engine.LoadLibraryFile(*libraryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading library: %v\n", err)
			os.Exit(1)
		}
		cfg.Elements = elements
		cfg.Templates = templates
	}

	world := engine.NewWorld("simulation", cfg)

	// Scatter the starting atoms uniformly with a placement source split
	// from the world seed, so reruns with the same seed are identical.
	placer := rand.New(rand.NewSource(world.Seed() + 1))
	total := 0
	for _, sym := range sortedKeys(counts) {
		for range counts[sym] {
			pos := engine.Vec2{
				X: 50 + placer.Float64()*(*width-100),
				Y: 50 + placer.Float64()*(*height-100),
			}
			if _, err := world.AddAtom(sym, pos); err != nil {
				fmt.Fprintf(os.Stderr, "error seeding atoms: %v\n", err)
				os.Exit(1)
			}
			total++
		}
	}

	if *intention != "" {
		center := engine.Vec2{X: *width / 2, Y: *height / 2}
		radius := min(*width, *height) / 3
		if _, err := world.AddMoleculeIntention(center, radius, *intention); err != nil {
			fmt.Fprintf(os.Stderr, "error adding intention: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	for i := 0; i < *ticks; i++ {
		world.Step(*dt)
		if *verbose && (i+1)%500 == 0 {
			st := world.Stats()
			fmt.Printf("tick %s: %d molecules (%d stable), %d bonds, %d polymers\n",
				humanize.Comma(st.Tick), st.MoleculeCount, st.StableCount, st.BondCount, st.PolymerCount)
		}
	}
	elapsed := time.Since(start)

	printSummary(world, total, *ticks, elapsed)

	if *snapshotOut != "" {
		if err := world.WriteSnapshotFile(*snapshotOut); err != nil {
			fmt.Fprintf(os.Stderr, "error writing snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Snapshot written to %s\n", *snapshotOut)
	}
}

// parseAtomSpec expands "H:60,O:30" into per-symbol counts.
func parseAtomSpec(spec string) (map[engine.Symbol]int, error) {
	counts := make(map[engine.Symbol]int)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sym, countStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("expected symbol:count, got %q", part)
		}
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid count in %q", part)
		}
		counts[engine.Symbol(strings.TrimSpace(sym))] += n
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no atoms specified")
	}
	return counts, nil
}

func sortedKeys(m map[engine.Symbol]int) []engine.Symbol {
	out := make([]engine.Symbol, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func printSummary(world *engine.World, seeded, ticks int, elapsed time.Duration) {
	st := world.Stats()

	fmt.Printf("Simulation finished: %s ticks over %s (%s ticks/sec)\n",
		humanize.Comma(int64(ticks)), elapsed.Round(time.Millisecond),
		humanize.CommafWithDigits(float64(ticks)/elapsed.Seconds(), 0))
	fmt.Printf("Seeded %s atoms (seed=%d)\n", humanize.Comma(int64(seeded)), world.Seed())
	fmt.Printf("Final state: %d bonds, %d molecules (%d stable), %d polymers\n",
		st.BondCount, st.MoleculeCount, st.StableCount, st.PolymerCount)

	// Count molecules by formula, stable ones separately.
	formulas := make(map[string]int)
	stable := make(map[string]int)
	for _, m := range world.Molecules() {
		formulas[m.Formula]++
		if m.State == "stable" {
			stable[m.Formula]++
		}
	}

	if len(formulas) > 0 {
		fmt.Println("Molecules by formula:")
		names := make([]string, 0, len(formulas))
		for f := range formulas {
			names = append(names, f)
		}
		sort.Strings(names)
		for _, f := range names {
			fmt.Printf("  %-8s %4d total, %4d stable\n", f, formulas[f], stable[f])
		}
	}

	polymers := world.Polymers()
	if len(polymers) > 0 {
		fmt.Println("Polymers:")
		for _, p := range polymers {
			fmt.Printf("  %s: %d monomers, role=%s, chain=%d\n", p.ID, len(p.Monomers), p.Role, p.Chain)
		}
	}
}
