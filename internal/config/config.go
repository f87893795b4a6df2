package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"evlearn/internal/ga"
	"evlearn/internal/nn"
)

// Config is the root configuration structure
type Config struct {
	Seed      int64           `yaml:"seed" toml:"seed"`
	Engine    EngineConfig    `yaml:"engine" toml:"engine"`
	Run       RunConfig       `yaml:"run" toml:"run"`
	Objective ObjectiveConfig `yaml:"objective" toml:"objective"`
	Eval      EvalConfig      `yaml:"eval" toml:"eval"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
}

// EngineConfig defines the population shape and operators
type EngineConfig struct {
	Population int         `yaml:"population" toml:"population"`
	Traits     int         `yaml:"traits" toml:"traits"`
	Genes      int         `yaml:"genes" toml:"genes"`
	Bounds     [][]float64 `yaml:"bounds" toml:"bounds"`       // 2*traits rows of genes columns
	Crossover  string      `yaml:"crossover" toml:"crossover"` // uniform|blend
	Mutation   string      `yaml:"mutation" toml:"mutation"`   // adaptive|fixed
}

// RunConfig defines the training loop
type RunConfig struct {
	Generations         int     `yaml:"generations" toml:"generations"`
	TournamentK         int     `yaml:"tournament_k" toml:"tournament_k"`
	MutationProbability float64 `yaml:"mutation_probability" toml:"mutation_probability"`
	CheckpointPath      string  `yaml:"checkpoint_path" toml:"checkpoint_path"`
	CheckpointEvery     int     `yaml:"checkpoint_every" toml:"checkpoint_every"`
	Resume              bool    `yaml:"resume" toml:"resume"`
}

// ObjectiveConfig selects the fitness function
type ObjectiveConfig struct {
	Name       string  `yaml:"name" toml:"name"` // sphere|rastrigin|rosenbrock|linear
	Samples    int     `yaml:"samples" toml:"samples"`
	Noise      float64 `yaml:"noise" toml:"noise"`
	Activation string  `yaml:"activation" toml:"activation"` // identity|relu|tanh, linear only
}

// EvalConfig defines evaluation parameters
type EvalConfig struct {
	Workers int `yaml:"workers" toml:"workers"`
}

// LogConfig defines logging parameters
type LogConfig struct {
	EveryGenSummary   bool   `yaml:"every_gen_summary" toml:"every_gen_summary"`
	CSVPath           string `yaml:"csv_path" toml:"csv_path"`
	JSONPath          string `yaml:"json_path" toml:"json_path"`
	ChampionPath      string `yaml:"champion_path" toml:"champion_path"`
	SaveChampionEvery int    `yaml:"save_champion_every" toml:"save_champion_every"`
	MetricsAddr       string `yaml:"metrics_addr" toml:"metrics_addr"`
}

// StoreConfig defines the checkpoint archive
type StoreConfig struct {
	Kind       string `yaml:"kind" toml:"kind"` // memory|sqlite
	SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
	RunID      string `yaml:"run_id" toml:"run_id"`
}

// Load reads a YAML or TOML config file and returns a Config. Fields absent
// from the file keep their Default values; explicit zeros are kept.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	resolveMutation(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a config with every default applied
func Default() *Config {
	cfg := defaults()
	resolveMutation(cfg)
	return cfg
}

// defaults leaves Engine.Mutation empty so it can follow the crossover
// chosen in the file
func defaults() *Config {
	return &Config{
		Seed: 1337,
		Engine: EngineConfig{
			Population: 20,
			Traits:     6,
			Genes:      9,
			Crossover:  "uniform",
		},
		Run: RunConfig{
			Generations:         200,
			TournamentK:         3,
			MutationProbability: 0.1,
			CheckpointPath:      "artifacts/best_gen.txt",
			CheckpointEvery:     25,
		},
		Objective: ObjectiveConfig{
			Name:    "sphere",
			Samples: 32,
		},
		Logging: LogConfig{
			EveryGenSummary:   true,
			CSVPath:           "runs/run.csv",
			JSONPath:          "runs/run.jsonl",
			ChampionPath:      "artifacts/champion_final.json",
			SaveChampionEvery: 50,
		},
		Store: StoreConfig{
			Kind:       "memory",
			SQLitePath: "runs/checkpoints.db",
		},
	}
}

// resolveMutation picks fixed mutation for blend crossover and adaptive
// otherwise when the file does not name one
func resolveMutation(cfg *Config) {
	if cfg.Engine.Mutation != "" {
		return
	}
	if c, err := ParseCrossover(cfg.Engine.Crossover); err == nil && c == ga.CrossoverBlend {
		cfg.Engine.Mutation = "fixed"
	} else {
		cfg.Engine.Mutation = "adaptive"
	}
}

// Validate checks values the engine would otherwise reject mid-run
func (c *Config) Validate() error {
	if c.Engine.Population < 1 || c.Engine.Traits < 1 || c.Engine.Genes < 1 {
		return fmt.Errorf("engine sizes must be positive (population=%d traits=%d genes=%d)",
			c.Engine.Population, c.Engine.Traits, c.Engine.Genes)
	}
	crossover, err := ParseCrossover(c.Engine.Crossover)
	if err != nil {
		return err
	}
	mutation, err := ParseMutation(c.Engine.Mutation)
	if err != nil {
		return err
	}
	if crossover == ga.CrossoverBlend && mutation == ga.MutationAdaptive {
		return fmt.Errorf("engine.mutation adaptive cannot follow blend crossover")
	}
	if c.Run.TournamentK < 1 || c.Run.TournamentK > c.Engine.Population {
		return fmt.Errorf("run.tournament_k %d outside [1, %d]", c.Run.TournamentK, c.Engine.Population)
	}
	if c.Run.MutationProbability < 0 || c.Run.MutationProbability > 1 {
		return fmt.Errorf("run.mutation_probability %v outside [0, 1]", c.Run.MutationProbability)
	}
	if c.Run.Generations < 0 {
		return fmt.Errorf("run.generations must not be negative")
	}
	if c.Engine.Bounds != nil && len(c.Engine.Bounds) != 2*c.Engine.Traits {
		return fmt.Errorf("engine.bounds has %d rows, want %d", len(c.Engine.Bounds), 2*c.Engine.Traits)
	}
	switch c.Objective.Activation {
	case "", nn.ActivationIdentity, nn.ActivationReLU, nn.ActivationTanh:
	default:
		return fmt.Errorf("unknown objective.activation: %s", c.Objective.Activation)
	}
	switch c.Store.Kind {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported store kind: %s", c.Store.Kind)
	}
	return nil
}

// GAConfig converts the engine section into a ga.Config. The checkpoint
// is only loaded when Run.Resume is set.
func (c *Config) GAConfig() (ga.Config, error) {
	crossover, err := ParseCrossover(c.Engine.Crossover)
	if err != nil {
		return ga.Config{}, err
	}
	mutation, err := ParseMutation(c.Engine.Mutation)
	if err != nil {
		return ga.Config{}, err
	}
	cfg := ga.Config{
		PopulationSize: c.Engine.Population,
		TraitCount:     c.Engine.Traits,
		GeneCount:      c.Engine.Genes,
		Bounds:         c.Engine.Bounds,
		Crossover:      crossover,
		Mutation:       mutation,
	}
	if c.Run.Resume {
		cfg.CheckpointPath = c.Run.CheckpointPath
	}
	return cfg, nil
}

// ParseCrossover maps a config name to a crossover strategy
func ParseCrossover(name string) (ga.CrossoverStrategy, error) {
	switch name {
	case "uniform":
		return ga.CrossoverUniform, nil
	case "blend", "blx", "blx-alpha":
		return ga.CrossoverBlend, nil
	default:
		return 0, fmt.Errorf("unknown crossover: %q", name)
	}
}

// ParseMutation maps a config name to a mutation mode
func ParseMutation(name string) (ga.MutationMode, error) {
	switch name {
	case "adaptive":
		return ga.MutationAdaptive, nil
	case "fixed":
		return ga.MutationFixed, nil
	default:
		return 0, fmt.Errorf("unknown mutation: %q", name)
	}
}
