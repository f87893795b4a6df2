package ga

import (
	"errors"
	"math/rand"
	"testing"
)

func TestSelectDistributesPopulationSizeCredits(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 12, TraitCount: 1, GeneCount: 2}, 21)
	for i := 0; i < e.Size(); i++ {
		if err := e.SetFitness(i, float64((i*7)%5)); err != nil {
			t.Fatalf("set fitness: %v", err)
		}
	}

	for k := 1; k <= e.Size(); k++ {
		if err := e.Select(k); err != nil {
			t.Fatalf("select k=%d: %v", k, err)
		}
		if total := e.pop.TotalSelection(); total != e.Size() {
			t.Fatalf("k=%d: expected %d credits, got %d", k, e.Size(), total)
		}
	}
}

func TestSelectPairTournamentScenario(t *testing.T) {
	fitness := []float64{0.1, 0.9, 0.3, 0.5}
	cfg := Config{PopulationSize: 4, TraitCount: 1, GeneCount: 1, Bounds: [][]float64{{-1}, {1}}}
	for seed := int64(0); seed < 50; seed++ {
		e := newTestEngine(t, cfg, seed)
		setFitness(t, e, fitness...)

		// a twin engine replays the same draws round by round
		twin := newTestEngine(t, cfg, seed)
		setFitness(t, twin, fitness...)
		e.rng = rand.New(rand.NewSource(seed + 1000))
		twin.rng = rand.New(rand.NewSource(seed + 1000))

		if err := e.Select(2); err != nil {
			t.Fatalf("select: %v", err)
		}

		want := make([]int, 4)
		for round := 0; round < 4; round++ {
			pair := twin.drawDistinct(nil, 2)
			if pair[0] == pair[1] {
				t.Fatalf("seed %d round %d: repeated draw %v", seed, round, pair)
			}
			higher := pair[0]
			if fitness[pair[1]] > fitness[pair[0]] {
				higher = pair[1]
			}
			if got := TournamentWinner(twin.pop.Individuals, pair); got != higher {
				t.Fatalf("seed %d round %d: pair %v won by %d, want %d", seed, round, pair, got, higher)
			}
			want[higher]++
		}
		for i, ind := range e.pop.Individuals {
			if ind.SelectionCount != want[i] {
				t.Fatalf("seed %d: individual %d has %d credits, want %d", seed, i, ind.SelectionCount, want[i])
			}
		}
		if c := e.pop.Individuals[0].SelectionCount; c != 0 {
			t.Fatalf("seed %d: weakest individual won %d tournaments", seed, c)
		}
	}
}

func TestSelectFullTournamentCreditsBest(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 4, TraitCount: 1, GeneCount: 1}, 3)
	setFitness(t, e, 0.1, 0.9, 0.3, 0.5)

	if err := e.Select(4); err != nil {
		t.Fatalf("select: %v", err)
	}
	if c := e.pop.Individuals[1].SelectionCount; c != 4 {
		t.Fatalf("expected best to take all 4 credits, got %d", c)
	}
}

func TestSelectClearsStaleCredits(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 5, TraitCount: 1, GeneCount: 1}, 4)
	for i := 0; i < 3; i++ {
		if err := e.Select(2); err != nil {
			t.Fatalf("select: %v", err)
		}
	}
	if total := e.pop.TotalSelection(); total != 5 {
		t.Fatalf("expected 5 credits after repeated selects, got %d", total)
	}
}

func TestSelectRejectsInvalidTournamentSize(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 3, TraitCount: 1, GeneCount: 1}, 1)
	for _, k := range []int{0, -1, 4} {
		if err := e.Select(k); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("k=%d: expected invalid parameter, got %v", k, err)
		}
	}
}

func TestTournamentWinnerPrefersStrictlyGreater(t *testing.T) {
	inds := []*Individual{{Fitness: 0.5}, {Fitness: 0.8}, {Fitness: 0.8}, {Fitness: 0.2}}

	cases := []struct {
		drawn []int
		want  int
	}{
		{[]int{0, 1}, 1},
		{[]int{1, 0}, 1},
		{[]int{2, 1}, 2},
		{[]int{1, 2}, 1},
		{[]int{3, 0, 2, 1}, 2},
	}
	for _, tc := range cases {
		if got := TournamentWinner(inds, tc.drawn); got != tc.want {
			t.Fatalf("drawn %v: expected %d, got %d", tc.drawn, tc.want, got)
		}
	}
}

func TestDrawDistinctNeverRepeats(t *testing.T) {
	e := newTestEngine(t, Config{PopulationSize: 6, TraitCount: 1, GeneCount: 1}, 8)
	for i := 0; i < 200; i++ {
		drawn := e.drawDistinct(nil, 6)
		seen := map[int]bool{}
		for _, idx := range drawn {
			if idx < 0 || idx >= 6 || seen[idx] {
				t.Fatalf("bad draw %v", drawn)
			}
			seen[idx] = true
		}
	}
}
