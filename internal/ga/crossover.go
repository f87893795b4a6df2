package ga

import (
	"errors"
	"fmt"
	"math/rand"
)

// CrossReport summarizes a crossover pass
type CrossReport struct {
	Offspring int // offspring bred
	Skipped   int // credits dropped for lack of a partner
}

// Cross breeds offspring from the selection credits and commits them in one
// step. Individual i with c credits mates c times, the j-th time with the
// next credited individual after i+j.
func (e *Engine) Cross() (CrossReport, error) {
	if err := e.ready(); err != nil {
		return CrossReport{}, err
	}

	var report CrossReport
	n := e.pop.Size()
	best := e.pop.BestIndex()

	var scratch [2]Chromosome
	if e.cfg.Crossover == CrossoverBlend {
		scratch[0] = NewChromosome(e.pop.Traits, e.pop.Genes)
		scratch[1] = NewChromosome(e.pop.Traits, e.pop.Genes)
	}

	for mother := 0; mother < n && report.Offspring < n; mother++ {
		credits := e.pop.Individuals[mother].SelectionCount
		for j := 0; j < credits && report.Offspring < n; j++ {
			father, err := e.nextAlive(mother+j+1, mother)
			if errors.Is(err, ErrNoEligiblePartner) {
				report.Skipped++
				continue
			}

			child := e.offspring[report.Offspring]
			m := e.pop.Individuals[mother].Chromosome
			f := e.pop.Individuals[father].Chromosome
			switch e.cfg.Crossover {
			case CrossoverBlend:
				BlendCrossover(child, m, f, e.bounds, e.rng.Float64(), e.rng, scratch)
			default:
				UniformCrossover(child, m, f, e.rng)
			}
			report.Offspring++
		}
	}

	// Commit
	for i, ind := range e.pop.Individuals {
		ind.SelectionCount = 0
		if e.cfg.Crossover == CrossoverUniform && i == best {
			continue
		}
		if i < report.Offspring {
			ind.Chromosome.CopyFrom(e.offspring[i])
		}
		ind.Fitness = 0
	}
	return report, nil
}

// nextAlive returns the first credited individual at or after start,
// wrapping around, excluding mother
func (e *Engine) nextAlive(start, mother int) (int, error) {
	n := e.pop.Size()
	for step := 0; step < n; step++ {
		idx := (start + step) % n
		if idx == mother {
			continue
		}
		if e.pop.Individuals[idx].SelectionCount > 0 {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("%w: individual %d", ErrNoEligiblePartner, mother)
}

// UniformCrossover fills child gene by gene from mother or father on a
// fair coin
func UniformCrossover(child, mother, father Chromosome, rng *rand.Rand) {
	for k := range child {
		for g := range child[k] {
			if rng.Intn(2) == 0 {
				child[k][g] = mother[k][g]
			} else {
				child[k][g] = father[k][g]
			}
		}
	}
}

// BlendInterval returns the BLX-alpha interval for one gene, clamped to
// [lower, upper]
func BlendInterval(m, f, alpha, lower, upper float64) (float64, float64) {
	lo, hi := m, f
	if lo > hi {
		lo, hi = hi, lo
	}
	lo -= alpha * (lo - lower)
	hi += alpha * (upper - hi)
	return Clamp(lo, lower, upper), Clamp(hi, lower, upper)
}

// BlendCrossover draws two candidates from the per-gene blend intervals and
// writes the one farther from mother into child. scratch holds two
// chromosomes of the child's shape.
func BlendCrossover(child, mother, father Chromosome, b *Bounds, alpha float64, rng *rand.Rand, scratch [2]Chromosome) {
	for _, cand := range scratch {
		for k := range cand {
			for g := range cand[k] {
				lo, hi := BlendInterval(mother[k][g], father[k][g], alpha, b.Min(k, g), b.Max(k, g))
				cand[k][g] = Sample(rng, lo, hi)
			}
		}
	}

	pick := scratch[0]
	if scratch[1].Distance(mother) > scratch[0].Distance(mother) {
		pick = scratch[1]
	}
	child.CopyFrom(pick)
}
