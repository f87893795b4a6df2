package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"evlearn/internal/config"
	"evlearn/internal/ga"
	"evlearn/internal/objective"
	"evlearn/internal/store"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "configs/sphere.yaml", "path to config file")
	checkpointPath := flag.String("checkpoint", "", "checkpoint file (defaults to run.checkpoint_path)")
	runID := flag.String("run", "", "load the checkpoint from the store for this run ID instead of a file")
	generation := flag.Int("generation", -1, "generation to load from the store (-1 for latest)")
	top := flag.Int("top", 5, "number of individuals to list")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *checkpointPath == "" {
		*checkpointPath = cfg.Run.CheckpointPath
	}
	if err := checkArchive(*runID, cfg.Store.Kind); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The objective draws from the seeded source first, as in training
	rng := rand.New(rand.NewSource(cfg.Seed))
	obj, err := objective.New(cfg.Objective.Name, cfg.Engine.Traits, cfg.Engine.Genes,
		objective.Options{Samples: cfg.Objective.Samples, Noise: cfg.Objective.Noise, Activation: cfg.Objective.Activation}, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating objective: %v\n", err)
		os.Exit(1)
	}

	gaCfg, err := cfg.GAConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	gaCfg.CheckpointPath = ""
	engine, err := ga.New(gaCfg, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}

	source, err := load(context.Background(), engine, cfg, *checkpointPath, *runID, *generation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading checkpoint: %v\n", err)
		os.Exit(1)
	}

	snapshot, err := engine.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	best, err := engine.BestIndex()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded %s: generation %d, %d individuals\n", source, engine.Generation(), len(snapshot))
	fmt.Printf("Objective: %s\n", obj.Name())
	fmt.Println("---")
	for _, i := range ranked(snapshot, *top) {
		marker := " "
		if i == best {
			marker = "*"
		}
		fmt.Printf("%s #%-3d stored=%.6f rescored=%.6f\n", marker, i, snapshot[i].Fitness, obj.Score(snapshot[i].Chromosome))
	}
	fmt.Println("---")
	fmt.Printf("Best individual #%d:\n", best)
	for k, row := range snapshot[best].Chromosome {
		vals := make([]string, len(row))
		for g, v := range row {
			vals[g] = fmt.Sprintf("%8.4f", v)
		}
		fmt.Printf("  trait %2d: %s\n", k, strings.Join(vals, " "))
	}
}

// checkArchive rejects -run against a store that does not outlive a process
func checkArchive(runID, kind string) error {
	if runID != "" && kind != "sqlite" {
		return fmt.Errorf("-run needs store.kind sqlite, config has %q", kind)
	}
	return nil
}

// load restores the engine from the archive when runID is set, otherwise from path
func load(ctx context.Context, engine *ga.Engine, cfg *config.Config, path, runID string, generation int) (string, error) {
	if runID == "" {
		if err := engine.ReadCheckpointFile(path); err != nil {
			return "", err
		}
		return path, nil
	}

	archive, err := store.NewStore(cfg.Store.Kind, cfg.Store.SQLitePath)
	if err != nil {
		return "", err
	}
	if err := archive.Init(ctx); err != nil {
		return "", err
	}
	defer archive.Close()

	var (
		cp store.Checkpoint
		ok bool
	)
	if generation < 0 {
		cp, ok, err = archive.LatestCheckpoint(ctx, runID)
	} else {
		cp, ok, err = archive.GetCheckpoint(ctx, runID, generation)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no checkpoint for run %s in %s store", runID, cfg.Store.Kind)
	}
	if err := store.Restore(engine, cp); err != nil {
		return "", err
	}
	return fmt.Sprintf("run %s", runID), nil
}

// ranked returns up to n indices ordered by descending fitness, lowest index first on ties
func ranked(individuals []ga.Individual, n int) []int {
	idx := make([]int, len(individuals))
	for i := range idx {
		idx[i] = i
	}
	// insertion sort keeps equal fitness in index order
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && individuals[idx[j]].Fitness > individuals[idx[j-1]].Fitness; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	if n >= 0 && n < len(idx) {
		idx = idx[:n]
	}
	return idx
}
