package ga

import (
	"math"
	"math/rand"
)

// Chromosome is a trait x gene grid of reals
type Chromosome [][]float64

// NewChromosome allocates a zeroed chromosome
func NewChromosome(traits, genes int) Chromosome {
	c := make(Chromosome, traits)
	for k := range c {
		c[k] = make([]float64, genes)
	}
	return c
}

// Clone makes a deep copy of a chromosome
func (c Chromosome) Clone() Chromosome {
	dst := make(Chromosome, len(c))
	for k, row := range c {
		dst[k] = append([]float64(nil), row...)
	}
	return dst
}

// CopyFrom overwrites c with src; both must share a shape
func (c Chromosome) CopyFrom(src Chromosome) {
	for k := range c {
		copy(c[k], src[k])
	}
}

// Distance returns the Euclidean distance between two chromosomes
func (c Chromosome) Distance(other Chromosome) float64 {
	var sum float64
	for k, row := range c {
		for g, v := range row {
			d := v - other[k][g]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}

// Individual represents one candidate solution in the population
type Individual struct {
	Fitness        float64
	SelectionCount int
	Chromosome     Chromosome
}

// Clone creates a deep copy of an individual
func (ind *Individual) Clone() Individual {
	return Individual{
		Fitness:        ind.Fitness,
		SelectionCount: ind.SelectionCount,
		Chromosome:     ind.Chromosome.Clone(),
	}
}

// Population is the ordered, fixed-size collection of individuals.
// Slots are reused for the engine lifetime.
type Population struct {
	Individuals []*Individual
	Traits      int
	Genes       int
}

func newPopulation(size, traits, genes int) *Population {
	p := &Population{
		Individuals: make([]*Individual, size),
		Traits:      traits,
		Genes:       genes,
	}
	for i := range p.Individuals {
		p.Individuals[i] = &Individual{Chromosome: NewChromosome(traits, genes)}
	}
	return p
}

// Size returns the population size
func (p *Population) Size() int {
	return len(p.Individuals)
}

// BestIndex returns the index of the highest fitness; the lowest index wins ties
func (p *Population) BestIndex() int {
	best := 0
	for i := 1; i < len(p.Individuals); i++ {
		if p.Individuals[i].Fitness > p.Individuals[best].Fitness {
			best = i
		}
	}
	return best
}

// Randomize assigns every gene a uniform draw from its bounds and clears
// fitness and selection counts
func (p *Population) Randomize(b *Bounds, rng *rand.Rand) {
	for _, ind := range p.Individuals {
		ind.Fitness = 0
		ind.SelectionCount = 0
		for k := 0; k < p.Traits; k++ {
			for g := 0; g < p.Genes; g++ {
				ind.Chromosome[k][g] = Sample(rng, b.Min(k, g), b.Max(k, g))
			}
		}
	}
}

// ResetSelection clears every selection count
func (p *Population) ResetSelection() {
	for _, ind := range p.Individuals {
		ind.SelectionCount = 0
	}
}

// TotalSelection returns the sum of selection counts
func (p *Population) TotalSelection() int {
	total := 0
	for _, ind := range p.Individuals {
		total += ind.SelectionCount
	}
	return total
}

// Sample draws uniformly from [min, max)
func Sample(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
