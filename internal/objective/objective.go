// Package objective provides benchmark fitness functions for the trainer.
// Every objective maps a loss onto 1/(1+loss), so fitness is positive and
// higher is better, as adaptive mutation requires.
package objective

import (
	"fmt"
	"math"
	"math/rand"

	"evlearn/internal/ga"
	"evlearn/internal/nn"
)

// Objective scores a chromosome. Implementations are safe for concurrent use.
type Objective interface {
	Name() string
	Score(c ga.Chromosome) float64
}

// Options parameterize the data-driven objectives
type Options struct {
	Samples    int
	Noise      float64
	Activation string // controller activation for "linear"; empty means identity
}

// New builds the named objective for a traits x genes chromosome
func New(name string, traits, genes int, opts Options, rng *rand.Rand) (Objective, error) {
	switch name {
	case "sphere":
		return lossFunc{name: name, loss: sphere}, nil
	case "rastrigin":
		return lossFunc{name: name, loss: rastrigin}, nil
	case "rosenbrock":
		return lossFunc{name: name, loss: rosenbrock}, nil
	case "linear":
		return NewLinearRegression(traits, genes, opts, rng)
	default:
		return nil, fmt.Errorf("unknown objective: %s", name)
	}
}

// FromLoss converts a non-negative loss into fitness
func FromLoss(loss float64) float64 {
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0
	}
	return 1 / (1 + math.Abs(loss))
}

type lossFunc struct {
	name string
	loss func(ga.Chromosome) float64
}

func (f lossFunc) Name() string {
	return f.name
}

func (f lossFunc) Score(c ga.Chromosome) float64 {
	return FromLoss(f.loss(c))
}

func sphere(c ga.Chromosome) float64 {
	var sum float64
	for _, row := range c {
		for _, x := range row {
			sum += x * x
		}
	}
	return sum
}

func rastrigin(c ga.Chromosome) float64 {
	var sum float64
	for _, row := range c {
		for _, x := range row {
			sum += 10 + x*x - 10*math.Cos(2*math.Pi*x)
		}
	}
	return sum
}

// rosenbrock runs over the chromosome flattened row by row
func rosenbrock(c ga.Chromosome) float64 {
	var sum float64
	prev, first := 0.0, true
	for _, row := range c {
		for _, x := range row {
			if !first {
				a := 1 - prev
				b := x - prev*prev
				sum += a*a + 100*b*b
			}
			prev, first = x, false
		}
	}
	return sum
}

// LinearRegression rewards chromosomes that, read as a traits x genes weight
// matrix, reproduce a hidden controller on random inputs
type LinearRegression struct {
	traits, genes int
	activation    string
	inputs        [][]float64
	targets       [][]float64
}

// NewLinearRegression draws a hidden weight matrix in [-1, 1) and a sample set
func NewLinearRegression(traits, genes int, opts Options, rng *rand.Rand) (*LinearRegression, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if opts.Samples <= 0 {
		return nil, fmt.Errorf("samples must be positive, got %d", opts.Samples)
	}

	hidden, err := nn.NewLinear(traits, genes, opts.Activation)
	if err != nil {
		return nil, err
	}
	w := ga.NewChromosome(traits, genes)
	for k := range w {
		for g := range w[k] {
			w[k][g] = ga.Sample(rng, -1, 1)
		}
	}
	if err := hidden.SetWeights(w); err != nil {
		return nil, err
	}

	lr := &LinearRegression{
		traits:     traits,
		genes:      genes,
		activation: hidden.Activation,
		inputs:     make([][]float64, opts.Samples),
		targets:    make([][]float64, opts.Samples),
	}
	for s := 0; s < opts.Samples; s++ {
		x := make([]float64, genes)
		for g := range x {
			x[g] = ga.Sample(rng, -1, 1)
		}
		y := append([]float64(nil), hidden.Forward(x)...)
		for k := range y {
			y[k] += rng.NormFloat64() * opts.Noise
		}
		lr.inputs[s] = x
		lr.targets[s] = y
	}
	return lr, nil
}

func (lr *LinearRegression) Name() string {
	return "linear"
}

// Score returns 1/(1+MSE) of the chromosome's predictions
func (lr *LinearRegression) Score(c ga.Chromosome) float64 {
	// local controller per call keeps Score safe across goroutines
	ctrl, err := nn.NewLinear(lr.traits, lr.genes, lr.activation)
	if err != nil {
		return 0
	}
	if err := ctrl.SetWeights(c); err != nil {
		return 0
	}

	var sse float64
	for s, x := range lr.inputs {
		out := ctrl.Forward(x)
		for k, y := range lr.targets[s] {
			d := out[k] - y
			sse += d * d
		}
	}
	return FromLoss(sse / float64(len(lr.inputs)*lr.traits))
}
