package ga

import "fmt"

// Evaluator assigns fitness to one individual. It may read the chromosome
// and must call SetFitness before returning.
type Evaluator interface {
	Evaluate(s *Subject) error
}

// EvaluatorFunc adapts a function to the Evaluator interface
type EvaluatorFunc func(s *Subject) error

// Evaluate calls f(s)
func (f EvaluatorFunc) Evaluate(s *Subject) error {
	return f(s)
}

// Subject is the evaluator's restricted view of one individual: it can
// read the chromosome and write fitness, nothing else.
type Subject struct {
	index int
	ind   *Individual
}

// Index returns the population index being evaluated
func (s *Subject) Index() int {
	return s.index
}

// Chromosome returns a copy of the individual's chromosome
func (s *Subject) Chromosome() Chromosome {
	return s.ind.Chromosome.Clone()
}

// Gene returns a single gene without copying the grid
func (s *Subject) Gene(trait, gene int) float64 {
	return s.ind.Chromosome[trait][gene]
}

// Fitness returns the current fitness
func (s *Subject) Fitness() float64 {
	return s.ind.Fitness
}

// SetFitness records the evaluated fitness
func (s *Subject) SetFitness(f float64) {
	s.ind.Fitness = f
}

// Evaluate invokes ev exactly once for the individual at index
func (e *Engine) Evaluate(index int, ev Evaluator) error {
	if err := e.ready(); err != nil {
		return err
	}
	if ev == nil {
		return fmt.Errorf("%w: evaluator is required", ErrInvalidParameter)
	}
	if index < 0 || index >= e.pop.Size() {
		return fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidParameter, index, e.pop.Size())
	}
	if err := ev.Evaluate(&Subject{index: index, ind: e.pop.Individuals[index]}); err != nil {
		return fmt.Errorf("evaluate individual %d: %w", index, err)
	}
	return nil
}

// EvaluateAll evaluates every individual in index order, stopping at the
// first error
func (e *Engine) EvaluateAll(ev Evaluator) error {
	if err := e.ready(); err != nil {
		return err
	}
	for i := 0; i < e.pop.Size(); i++ {
		if err := e.Evaluate(i, ev); err != nil {
			return err
		}
	}
	return nil
}

// SetFitness assigns fitness directly, for hosts that score outside the engine
func (e *Engine) SetFitness(index int, fitness float64) error {
	return e.Evaluate(index, EvaluatorFunc(func(s *Subject) error {
		s.SetFitness(fitness)
		return nil
	}))
}
