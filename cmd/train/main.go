package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evlearn/internal/config"
	"evlearn/internal/eval"
	"evlearn/internal/ga"
	"evlearn/internal/logging"
	"evlearn/internal/objective"
	"evlearn/internal/store"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "configs/sphere.yaml", "path to config file")
	generations := flag.Int("generations", 0, "number of generations to run (0 uses the config value)")
	resume := flag.Bool("resume", false, "resume from the configured checkpoint file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *generations > 0 {
		cfg.Run.Generations = *generations
	}
	if *resume {
		cfg.Run.Resume = true
	}

	if err := run(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	fmt.Printf("Evolutionary Trainer - Objective: %s\n", cfg.Objective.Name)
	fmt.Printf("Population: %d, Traits: %d, Genes: %d\n", cfg.Engine.Population, cfg.Engine.Traits, cfg.Engine.Genes)
	fmt.Printf("Crossover: %s, Mutation: %s, Tournament K: %d, p: %g\n",
		cfg.Engine.Crossover, cfg.Engine.Mutation, cfg.Run.TournamentK, cfg.Run.MutationProbability)
	fmt.Println("---")

	// Initialize RNG
	rng := rand.New(rand.NewSource(cfg.Seed))

	obj, err := objective.New(cfg.Objective.Name, cfg.Engine.Traits, cfg.Engine.Genes,
		objective.Options{Samples: cfg.Objective.Samples, Noise: cfg.Objective.Noise, Activation: cfg.Objective.Activation}, rng)
	if err != nil {
		return err
	}

	gaCfg, err := cfg.GAConfig()
	if err != nil {
		return err
	}
	engine, err := ga.New(gaCfg, rng)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	if engine.Generation() > 0 {
		fmt.Printf("Resumed from %s at generation %d\n", cfg.Run.CheckpointPath, engine.Generation())
	}

	runner := eval.NewRunner(obj, cfg.Eval.Workers)

	// Metrics
	reg := prometheus.NewRegistry()
	metrics, err := logging.NewMetrics(reg)
	if err != nil {
		return err
	}
	if cfg.Logging.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.Logging.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "Warning: metrics server: %v\n", err)
			}
		}()
		defer srv.Close()
	}

	// Create logger
	var console io.Writer
	if cfg.Logging.EveryGenSummary {
		console = os.Stdout
	}
	logger, err := logging.NewLogger(cfg.Logging.CSVPath, cfg.Logging.JSONPath, console, metrics)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	if err := logger.Init(cfg.Run.Resume); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Close()

	// Checkpoint archive
	archive, err := store.NewStore(cfg.Store.Kind, cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	if err := archive.Init(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer archive.Close()
	runID := cfg.Store.RunID
	if runID == "" {
		runID = store.NewRunID()
	}
	fmt.Printf("Run ID: %s\n", runID)

	startTime := time.Now()
	var cross ga.CrossReport

	// Main training loop
	for step := 0; step < cfg.Run.Generations; step++ {
		gen := engine.Generation()

		// 1. Evaluate population
		if err := runner.EvaluatePopulation(engine); err != nil {
			return fmt.Errorf("generation %d: %w", gen, err)
		}

		// 2. Log generation summary
		if err := logGeneration(logger, engine, cross); err != nil {
			return err
		}

		// 3. Checkpoint
		if cfg.Run.CheckpointEvery > 0 && gen%cfg.Run.CheckpointEvery == 0 {
			if err := checkpoint(ctx, engine, archive, runID, cfg.Run.CheckpointPath); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint: %v\n", err)
			}
		}

		// 4. Save champion
		if cfg.Logging.SaveChampionEvery > 0 && gen%cfg.Logging.SaveChampionEvery == 0 {
			championPath := filepath.Join(filepath.Dir(cfg.Logging.ChampionPath), fmt.Sprintf("champion_gen%d.json", gen))
			if err := saveChampion(championPath, engine, obj.Name()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save champion: %v\n", err)
			}
		}

		// 5. Create next generation
		report, err := engine.ComputeNextGeneration(cfg.Run.TournamentK, cfg.Run.MutationProbability)
		if err != nil {
			return fmt.Errorf("generation %d: %w", gen, err)
		}
		cross = report.Cross
	}

	// Score the last generation so the checkpoint and champion carry fitness
	if err := runner.EvaluatePopulation(engine); err != nil {
		return err
	}
	if err := logGeneration(logger, engine, cross); err != nil {
		return err
	}
	if err := checkpoint(ctx, engine, archive, runID, cfg.Run.CheckpointPath); err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	best, err := engine.Best()
	if err != nil {
		return err
	}
	fmt.Println("---")
	fmt.Printf("Training complete! %d generations in %v\n", cfg.Run.Generations, elapsed)
	fmt.Printf("Best: Fitness=%.6f at generation %d\n", best.Fitness, engine.Generation())

	// Save final champion
	if err := saveChampion(cfg.Logging.ChampionPath, engine, obj.Name()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save final champion: %v\n", err)
	}
	return nil
}

func logGeneration(logger *logging.Logger, engine *ga.Engine, cross ga.CrossReport) error {
	snapshot, err := engine.Snapshot()
	if err != nil {
		return err
	}
	return logger.LogGeneration(logging.Summarize(engine.Generation(), snapshot, cross))
}

func checkpoint(ctx context.Context, engine *ga.Engine, archive store.Store, runID, path string) error {
	if err := engine.WriteCheckpointFile(path); err != nil {
		return err
	}
	cp, err := store.Capture(runID, engine)
	if err != nil {
		return err
	}
	return archive.SaveCheckpoint(ctx, cp)
}

func saveChampion(path string, engine *ga.Engine, objectiveName string) error {
	best, err := engine.Best()
	if err != nil {
		return err
	}
	return logging.SaveChampion(path, best, engine.Generation(), objectiveName)
}
