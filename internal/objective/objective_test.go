package objective

import (
	"math"
	"math/rand"
	"testing"

	"evlearn/internal/ga"
	"evlearn/internal/nn"
)

func TestBenchmarksPeakAtOptimum(t *testing.T) {
	zeros := ga.Chromosome{{0, 0, 0}, {0, 0, 0}}
	ones := ga.Chromosome{{1, 1, 1}, {1, 1, 1}}
	off := ga.Chromosome{{0.5, -0.3, 0.2}, {0.1, 0.9, -0.7}}

	cases := []struct {
		name    string
		optimum ga.Chromosome
	}{
		{"sphere", zeros},
		{"rastrigin", zeros},
		{"rosenbrock", ones},
	}
	for _, tc := range cases {
		obj, err := New(tc.name, 2, 3, Options{}, nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if obj.Name() != tc.name {
			t.Fatalf("unexpected name %q", obj.Name())
		}
		best := obj.Score(tc.optimum)
		if math.Abs(best-1) > 1e-12 {
			t.Fatalf("%s: expected fitness 1 at optimum, got %v", tc.name, best)
		}
		if got := obj.Score(off); !(got > 0 && got < best) {
			t.Fatalf("%s: expected off-optimum fitness in (0, %v), got %v", tc.name, best, got)
		}
	}
}

func TestLinearRegressionRewardsHiddenWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	lr, err := NewLinearRegression(2, 3, Options{Samples: 16}, rng)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// recover the hidden matrix with the same draw sequence
	replay := rand.New(rand.NewSource(5))
	hidden := ga.NewChromosome(2, 3)
	for k := range hidden {
		for g := range hidden[k] {
			hidden[k][g] = ga.Sample(replay, -1, 1)
		}
	}
	if got := lr.Score(hidden); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected perfect fitness for hidden weights, got %v", got)
	}
	if got := lr.Score(ga.NewChromosome(2, 3)); got >= 1 || got <= 0 {
		t.Fatalf("expected zero weights to score below 1, got %v", got)
	}
	if got := lr.Score(ga.NewChromosome(3, 3)); got != 0 {
		t.Fatalf("expected mis-shaped chromosome to score 0, got %v", got)
	}
}

func TestLinearRegressionUsesActivation(t *testing.T) {
	lr, err := NewLinearRegression(2, 2, Options{Samples: 8, Activation: nn.ActivationTanh}, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	replay := rand.New(rand.NewSource(9))
	hidden := ga.NewChromosome(2, 2)
	for k := range hidden {
		for g := range hidden[k] {
			hidden[k][g] = ga.Sample(replay, -1, 1)
		}
	}
	if got := lr.Score(hidden); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected perfect fitness under tanh, got %v", got)
	}

	if _, err := NewLinearRegression(2, 2, Options{Samples: 8, Activation: "softmax"}, rand.New(rand.NewSource(9))); err == nil {
		t.Fatal("expected unknown activation error")
	}
}

func TestNewRejectsUnknownObjective(t *testing.T) {
	if _, err := New("ackley", 1, 1, Options{}, nil); err == nil {
		t.Fatal("expected unknown objective error")
	}
	if _, err := New("linear", 1, 1, Options{Samples: 0}, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected samples error")
	}
}

func TestFromLoss(t *testing.T) {
	if FromLoss(0) != 1 || FromLoss(1) != 0.5 {
		t.Fatal("unexpected loss mapping")
	}
	if FromLoss(math.NaN()) != 0 || FromLoss(math.Inf(1)) != 0 {
		t.Fatal("non-finite loss should map to 0")
	}
}
