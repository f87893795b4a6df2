package ga

import "fmt"

// Mutate resamples genes from their bounds. Each gene mutates when a
// uniform threshold falls below omega: p for fixed mutation, or
// p*(1 - f/f_best) for adaptive mutation, where the best individual is
// fixed for the pass and never mutated.
func (e *Engine) Mutate(p float64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := checkProbability(p); err != nil {
		return err
	}

	best := -1
	var bestFitness float64
	if e.cfg.Mutation == MutationAdaptive {
		best = e.pop.BestIndex()
		bestFitness = e.pop.Individuals[best].Fitness
		if !(bestFitness > 0) {
			return fmt.Errorf("%w: best fitness %v", ErrDivisionUndefined, bestFitness)
		}
	}

	for i, ind := range e.pop.Individuals {
		if i == best {
			continue
		}
		omega := p
		if best >= 0 {
			omega = Clamp(p*(1-ind.Fitness/bestFitness), 0, 1)
		}
		e.mutateIndividual(ind, omega)
	}
	return nil
}

func (e *Engine) mutateIndividual(ind *Individual, omega float64) {
	for k := 0; k < e.pop.Traits; k++ {
		for g := 0; g < e.pop.Genes; g++ {
			if e.rng.Float64() < omega {
				ind.Chromosome[k][g] = Sample(e.rng, e.bounds.Min(k, g), e.bounds.Max(k, g))
			}
		}
	}
}
