package ga

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
)

// Default capacity limits
const (
	MaxPopulationSize = 100
	MaxTraitCount     = 100
	MaxGeneCount      = 100
)

// Limits caps the configurable sizes of an engine
type Limits struct {
	MaxPopulation int
	MaxTraits     int
	MaxGenes      int
}

// DefaultLimits returns the stock capacity limits
func DefaultLimits() Limits {
	return Limits{
		MaxPopulation: MaxPopulationSize,
		MaxTraits:     MaxTraitCount,
		MaxGenes:      MaxGeneCount,
	}
}

// withDefaults fills each zero cap with its stock value
func (l Limits) withDefaults() Limits {
	if l.MaxPopulation == 0 {
		l.MaxPopulation = MaxPopulationSize
	}
	if l.MaxTraits == 0 {
		l.MaxTraits = MaxTraitCount
	}
	if l.MaxGenes == 0 {
		l.MaxGenes = MaxGeneCount
	}
	return l
}

// CrossoverStrategy selects the breeding operator
type CrossoverStrategy int

const (
	CrossoverUniform CrossoverStrategy = iota // per-gene coin flip with elitism
	CrossoverBlend                            // BLX-alpha with diversity preference
)

func (s CrossoverStrategy) String() string {
	switch s {
	case CrossoverUniform:
		return "uniform"
	case CrossoverBlend:
		return "blend"
	default:
		return "unknown"
	}
}

// MutationMode selects how the per-gene mutation rate is derived
type MutationMode int

const (
	MutationAdaptive MutationMode = iota // rate shrinks as fitness approaches the best
	MutationFixed                        // same rate for every individual
)

func (m MutationMode) String() string {
	switch m {
	case MutationAdaptive:
		return "adaptive"
	case MutationFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Config describes the shape and operators of an engine
type Config struct {
	PopulationSize int
	TraitCount     int
	GeneCount      int

	// Bounds is a 2*TraitCount x GeneCount grid; nil means -1/+1 everywhere
	Bounds [][]float64

	// CheckpointPath is loaded when it names an existing file
	CheckpointPath string

	Crossover CrossoverStrategy
	Mutation  MutationMode

	// Zero fields of Limits take the DefaultLimits value
	Limits Limits
}

// Engine owns the population, bounds and generation counter.
// It is not safe for concurrent use.
type Engine struct {
	cfg        Config
	bounds     *Bounds
	pop        *Population
	generation int
	rng        *rand.Rand

	// offspring side buffer, reused across generations
	offspring []Chromosome
}

// New creates and initializes an engine
func New(cfg Config, rng *rand.Rand) (*Engine, error) {
	e := &Engine{}
	if err := e.Initialize(cfg, rng); err != nil {
		return nil, err
	}
	return e, nil
}

// Initialize validates the configuration, installs bounds and loads the
// population from the checkpoint or randomizes it. On error the engine is
// left untouched.
func (e *Engine) Initialize(cfg Config, rng *rand.Rand) error {
	if e.pop != nil {
		return fmt.Errorf("%w: engine already initialized", ErrInvalidParameter)
	}
	if rng == nil {
		return fmt.Errorf("%w: random source is required", ErrInvalidParameter)
	}
	cfg.Limits = cfg.Limits.withDefaults()
	if err := validateShape(cfg); err != nil {
		return err
	}
	if cfg.Crossover != CrossoverUniform && cfg.Crossover != CrossoverBlend {
		return fmt.Errorf("%w: unknown crossover strategy %d", ErrInvalidParameter, cfg.Crossover)
	}
	if cfg.Mutation != MutationAdaptive && cfg.Mutation != MutationFixed {
		return fmt.Errorf("%w: unknown mutation mode %d", ErrInvalidParameter, cfg.Mutation)
	}
	if cfg.Crossover == CrossoverBlend && cfg.Mutation == MutationAdaptive {
		return fmt.Errorf("%w: blend crossover clears all fitness and cannot feed adaptive mutation", ErrInvalidParameter)
	}

	bounds := DefaultBounds(cfg.TraitCount, cfg.GeneCount)
	if cfg.Bounds != nil {
		var err error
		bounds, err = NewBounds(cfg.Bounds, cfg.TraitCount, cfg.GeneCount)
		if err != nil {
			return err
		}
	}

	next := &Engine{
		cfg:       cfg,
		bounds:    bounds,
		pop:       newPopulation(cfg.PopulationSize, cfg.TraitCount, cfg.GeneCount),
		rng:       rng,
		offspring: make([]Chromosome, cfg.PopulationSize),
	}
	for i := range next.offspring {
		next.offspring[i] = NewChromosome(cfg.TraitCount, cfg.GeneCount)
	}

	loaded := false
	if cfg.CheckpointPath != "" {
		if err := next.ReadCheckpointFile(cfg.CheckpointPath); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		} else {
			loaded = true
		}
	}
	if !loaded {
		next.pop.Randomize(next.bounds, next.rng)
		next.generation = 0
	}

	*e = *next
	return nil
}

func validateShape(cfg Config) error {
	if cfg.PopulationSize < 1 || cfg.TraitCount < 1 || cfg.GeneCount < 1 {
		return fmt.Errorf("%w: sizes must be positive (population=%d traits=%d genes=%d)",
			ErrInvalidParameter, cfg.PopulationSize, cfg.TraitCount, cfg.GeneCount)
	}
	if cfg.PopulationSize > cfg.Limits.MaxPopulation {
		return fmt.Errorf("%w: population %d > %d", ErrCapacityExceeded, cfg.PopulationSize, cfg.Limits.MaxPopulation)
	}
	if cfg.TraitCount > cfg.Limits.MaxTraits {
		return fmt.Errorf("%w: traits %d > %d", ErrCapacityExceeded, cfg.TraitCount, cfg.Limits.MaxTraits)
	}
	if cfg.GeneCount > cfg.Limits.MaxGenes {
		return fmt.Errorf("%w: genes %d > %d", ErrCapacityExceeded, cfg.GeneCount, cfg.Limits.MaxGenes)
	}
	return nil
}

func (e *Engine) ready() error {
	if e == nil || e.pop == nil {
		return ErrUninitialized
	}
	return nil
}

// Randomize re-draws the whole population from the bounds
func (e *Engine) Randomize() error {
	if err := e.ready(); err != nil {
		return err
	}
	e.pop.Randomize(e.bounds, e.rng)
	return nil
}

// Size, Shape, Generation and Config are plain accessors: before
// Initialize they return zero values instead of ErrUninitialized.

// Size returns the configured population size
func (e *Engine) Size() int {
	if e.pop == nil {
		return 0
	}
	return e.pop.Size()
}

// Shape returns the trait and gene counts
func (e *Engine) Shape() (traits, genes int) {
	return e.cfg.TraitCount, e.cfg.GeneCount
}

// Generation returns the generation counter
func (e *Engine) Generation() int {
	return e.generation
}

// Config returns the configuration the engine was initialized with
func (e *Engine) Config() Config {
	return e.cfg
}

// Bounds returns the installed bounds
func (e *Engine) Bounds() (*Bounds, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.bounds, nil
}

// Individual returns a copy of the individual at index
func (e *Engine) Individual(index int) (Individual, error) {
	if err := e.ready(); err != nil {
		return Individual{}, err
	}
	if index < 0 || index >= e.pop.Size() {
		return Individual{}, fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidParameter, index, e.pop.Size())
	}
	return e.pop.Individuals[index].Clone(), nil
}

// Snapshot returns copies of every individual in index order
func (e *Engine) Snapshot() ([]Individual, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	out := make([]Individual, e.pop.Size())
	for i, ind := range e.pop.Individuals {
		out[i] = ind.Clone()
	}
	return out, nil
}

// Best returns a copy of the highest-fitness individual
func (e *Engine) Best() (Individual, error) {
	if err := e.ready(); err != nil {
		return Individual{}, err
	}
	return e.pop.Individuals[e.pop.BestIndex()].Clone(), nil
}

// BestIndex returns the index of the highest-fitness individual
func (e *Engine) BestIndex() (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.pop.BestIndex(), nil
}

// GenerationReport summarizes one ComputeNextGeneration call
type GenerationReport struct {
	Generation  int // counter after the step
	BestIndex   int // elite before the step
	BestFitness float64
	Cross       CrossReport
}

// ComputeNextGeneration runs selection, crossover and mutation, then
// advances the generation counter. Fitness must be evaluated for the whole
// population beforehand. Parameters are checked before any state changes.
func (e *Engine) ComputeNextGeneration(tournamentSize int, mutationProbability float64) (GenerationReport, error) {
	if err := e.ready(); err != nil {
		return GenerationReport{}, err
	}
	if err := e.checkTournament(tournamentSize); err != nil {
		return GenerationReport{}, err
	}
	if err := checkProbability(mutationProbability); err != nil {
		return GenerationReport{}, err
	}

	best := e.pop.BestIndex()
	report := GenerationReport{
		BestIndex:   best,
		BestFitness: e.pop.Individuals[best].Fitness,
	}
	if e.cfg.Mutation == MutationAdaptive && !(report.BestFitness > 0) {
		return report, fmt.Errorf("%w: best fitness %v", ErrDivisionUndefined, report.BestFitness)
	}

	// 1. Selection
	if err := e.Select(tournamentSize); err != nil {
		return report, err
	}

	// 2. Crossover
	cross, err := e.Cross()
	if err != nil {
		return report, err
	}
	report.Cross = cross

	// 3. Mutation
	if err := e.Mutate(mutationProbability); err != nil {
		return report, err
	}

	e.generation++
	report.Generation = e.generation
	return report, nil
}

func checkProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: mutation probability %v outside [0, 1]", ErrInvalidParameter, p)
	}
	return nil
}
