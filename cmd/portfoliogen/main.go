package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"milecast/cmd/portfoliogen/engine"
	"milecast/internal/state"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, blocked")
	out := flag.String("out", "./portfolio.json", "Output path for the portfolio document")
	count := flag.Int("count", 8, "Work items per milestone")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Now:      time.Now(),
		Seed:     *seed,
	}

	fmt.Printf("Generating scenario '%s' (Count: %d) to %s...\n", cfg.Scenario, cfg.Count, *out)

	doc := engine.Generate(cfg)
	if err := state.NewDocumentStore(*out).Save(doc); err != nil {
		fmt.Printf("Failed to save portfolio: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
