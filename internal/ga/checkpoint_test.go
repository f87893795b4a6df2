package ga

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := Config{PopulationSize: 7, TraitCount: 3, GeneCount: 4}
	src := newTestEngine(t, cfg, 71)
	for i := 0; i < src.Size(); i++ {
		if err := src.SetFitness(i, 0.1*float64(i)+1.0/3.0); err != nil {
			t.Fatalf("set fitness: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := src.ComputeNextGeneration(2, 0.2); err != nil {
			t.Fatalf("step: %v", err)
		}
		setFitness(t, src, 1, 2, 3, 4, 5, 6, 7)
	}

	path := filepath.Join(t.TempDir(), "best_gen.txt")
	if err := src.WriteCheckpointFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg.CheckpointPath = path
	dst := newTestEngine(t, cfg, 72)
	if dst.Generation() != 3 {
		t.Fatalf("expected generation 3, got %d", dst.Generation())
	}

	want, _ := src.Snapshot()
	got, _ := dst.Snapshot()
	for i := range want {
		if got[i].Fitness != want[i].Fitness {
			t.Fatalf("individual %d fitness %v, want %v", i, got[i].Fitness, want[i].Fitness)
		}
		if got[i].SelectionCount != 0 {
			t.Fatalf("individual %d selection count %d", i, got[i].SelectionCount)
		}
		for k := range want[i].Chromosome {
			for g := range want[i].Chromosome[k] {
				if got[i].Chromosome[k][g] != want[i].Chromosome[k][g] {
					t.Fatalf("gene [%d][%d][%d] %v, want %v", i, k, g, got[i].Chromosome[k][g], want[i].Chromosome[k][g])
				}
			}
		}
	}
}

func TestCheckpointLayout(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 2, TraitCount: 2, GeneCount: 3}, 73)
	e.pop.Individuals[0].Chromosome = Chromosome{{0.5, -0.25, 1}, {0, 0.125, -1}}
	e.pop.Individuals[1].Chromosome = Chromosome{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}
	setFitness(t, e, 2.5, 0.75)
	e.generation = 12

	var buf bytes.Buffer
	if err := e.WriteCheckpoint(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"0.5 -0.25 1",
		"0 0.125 -1",
		"2.5",
		"0.1 0.2 0.3",
		"0.4 0.5 0.6",
		"0.75",
		"Generation: 12",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected checkpoint:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestReadCheckpointAcceptsTrailingSpaces(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 1, TraitCount: 1, GeneCount: 2}, 74)
	in := "0.250000 -0.500000 \n1.000000\nGeneration: 4"
	if err := e.ReadCheckpoint(strings.NewReader(in)); err != nil {
		t.Fatalf("read: %v", err)
	}
	ind, _ := e.Individual(0)
	if ind.Chromosome[0][0] != 0.25 || ind.Chromosome[0][1] != -0.5 || ind.Fitness != 1 {
		t.Fatalf("unexpected individual %+v", ind)
	}
	if e.Generation() != 4 {
		t.Fatalf("expected generation 4, got %d", e.Generation())
	}
}

func TestReadCheckpointRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"short row":       "0.1\n0.5\n0.3 0.4\n0.6\nGeneration: 1\n",
		"long row":        "0.1 0.2 0.3\n0.5\n0.3 0.4\n0.6\nGeneration: 1\n",
		"not a number":    "0.1 x\n0.5\n0.3 0.4\n0.6\nGeneration: 1\n",
		"missing fitness": "0.1 0.2\n0.5\n0.3 0.4\nGeneration: 1\n",
		"missing trailer": "0.1 0.2\n0.5\n0.3 0.4\n0.6\n",
		"bad trailer":     "0.1 0.2\n0.5\n0.3 0.4\n0.6\nGen 1\n",
		"bad generation":  "0.1 0.2\n0.5\n0.3 0.4\n0.6\nGeneration: -2\n",
		"extra data":      "0.1 0.2\n0.5\n0.3 0.4\n0.6\nGeneration: 1\n0.7\n",
		"empty":           "",
		"nan gene":        "0.1 NaN\n0.5\n0.3 0.4\n0.6\nGeneration: 1\n",
		"inf fitness":     "0.1 0.2\n+Inf\n0.3 0.4\n0.6\nGeneration: 1\n",
		"gene above max":  "0.1 0.2\n0.5\n0.3 1.5\n0.6\nGeneration: 1\n",
		"gene below min":  "-1.25 0.2\n0.5\n0.3 0.4\n0.6\nGeneration: 1\n",
	}
	for name, in := range cases {
		e := newTestEngine(t, Config{PopulationSize: 2, TraitCount: 1, GeneCount: 2}, 75)
		setFitness(t, e, 3, 4)
		before, _ := e.Snapshot()

		err := e.ReadCheckpoint(strings.NewReader(in))
		if !errors.Is(err, ErrMalformedCheckpoint) {
			t.Fatalf("%s: expected malformed checkpoint, got %v", name, err)
		}
		after, _ := e.Snapshot()
		for i := range before {
			if before[i].Fitness != after[i].Fitness || before[i].Chromosome.Distance(after[i].Chromosome) != 0 {
				t.Fatalf("%s: individual %d partially overwritten", name, i)
			}
		}
		if e.Generation() != 0 {
			t.Fatalf("%s: generation changed to %d", name, e.Generation())
		}
	}
}

func TestInitializeRejectsCheckpointOutsideBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.txt")
	if err := os.WriteFile(path, []byte("99 0.5\n0.5\nGeneration: 4\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Config{
		PopulationSize: 1, TraitCount: 1, GeneCount: 2,
		Bounds:         [][]float64{{0, 0}, {1, 1}},
		CheckpointPath: path,
	}
	var e Engine
	if err := e.Initialize(cfg, rand.New(rand.NewSource(1))); !errors.Is(err, ErrMalformedCheckpoint) {
		t.Fatalf("expected malformed checkpoint, got %v", err)
	}
	if _, err := e.Best(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected engine to stay uninitialized, got %v", err)
	}
}

func TestInitializeFallsBackWhenCheckpointMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	e := newTestEngine(t, Config{PopulationSize: 3, TraitCount: 1, GeneCount: 2, CheckpointPath: path}, 76)
	if e.Generation() != 0 {
		t.Fatalf("expected generation 0, got %d", e.Generation())
	}

	err := e.ReadCheckpointFile(path)
	if !errors.Is(err, ErrIO) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected io + not-exist error, got %v", err)
	}
}

func TestInitializeFailsOnMalformedCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("garbage\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var e Engine
	err := e.Initialize(Config{PopulationSize: 3, TraitCount: 1, GeneCount: 2, CheckpointPath: path}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrMalformedCheckpoint) {
		t.Fatalf("expected malformed checkpoint, got %v", err)
	}
	if _, err := e.Best(); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected engine to stay uninitialized, got %v", err)
	}
}

func TestWriteCheckpointFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gen.txt")
	e := newTestEngine(t, Config{PopulationSize: 2, TraitCount: 1, GeneCount: 1}, 77)
	if err := e.WriteCheckpointFile(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	e.generation = 9
	if err := e.WriteCheckpointFile(path); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasSuffix(string(data), "Generation: 9\n") || strings.Count(string(data), "Generation:") != 1 {
		t.Fatalf("expected a single overwritten checkpoint, got:\n%s", data)
	}
}
