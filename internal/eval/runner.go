package eval

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"evlearn/internal/ga"
	"evlearn/internal/objective"
)

// Runner scores a whole population against an objective. Scoring runs on
// a worker pool over chromosome snapshots; fitness is then written back
// through the engine one index at a time.
type Runner struct {
	objective objective.Objective
	workers   int
}

// NewRunner creates a runner; workers <= 0 means one per CPU
func NewRunner(obj objective.Objective, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{objective: obj, workers: workers}
}

// Workers returns the pool size
func (r *Runner) Workers() int {
	return r.workers
}

// Score computes fitness for each individual in the snapshot
func (r *Runner) Score(individuals []ga.Individual) []float64 {
	scores := make([]float64, len(individuals))
	p := pool.New().WithMaxGoroutines(r.workers)
	for i := range individuals {
		p.Go(func() {
			scores[i] = r.objective.Score(individuals[i].Chromosome)
		})
	}
	p.Wait()
	return scores
}

// EvaluatePopulation scores every individual of e and records the result
func (r *Runner) EvaluatePopulation(e *ga.Engine) error {
	snapshot, err := e.Snapshot()
	if err != nil {
		return err
	}
	scores := r.Score(snapshot)
	for i, score := range scores {
		if err := e.Evaluate(i, fitness(score)); err != nil {
			return fmt.Errorf("apply score %d: %w", i, err)
		}
	}
	return nil
}

// Evaluator returns a ga.Evaluator that scores one subject synchronously
func (r *Runner) Evaluator() ga.Evaluator {
	return ga.EvaluatorFunc(func(s *ga.Subject) error {
		s.SetFitness(r.objective.Score(s.Chromosome()))
		return nil
	})
}

func fitness(score float64) ga.Evaluator {
	return ga.EvaluatorFunc(func(s *ga.Subject) error {
		s.SetFitness(score)
		return nil
	})
}
