package logging

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"evlearn/internal/ga"
)

// Logger handles all training output
type Logger struct {
	csvPath     string
	jsonPath    string
	console     io.Writer
	csvFile     *os.File
	csvWriter   *csv.Writer
	jsonFile    *os.File
	metrics     *Metrics
	initialized bool
}

// NewLogger creates a new logger. console may be nil to silence the
// per-generation line; metrics may be nil.
func NewLogger(csvPath, jsonPath string, console io.Writer, metrics *Metrics) (*Logger, error) {
	l := &Logger{
		csvPath:  csvPath,
		jsonPath: jsonPath,
		console:  console,
		metrics:  metrics,
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(csvPath), 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(jsonPath), 0755); err != nil {
		return nil, err
	}

	return l, nil
}

// Init opens the log files. Existing files are appended to when resume
// is set, truncated otherwise.
func (l *Logger) Init(resume bool) error {
	var err error
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resume {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	// Open CSV file
	l.csvFile, err = os.OpenFile(l.csvPath, flags, 0644)
	if err != nil {
		return err
	}
	l.csvWriter = csv.NewWriter(l.csvFile)

	info, err := l.csvFile.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		header := []string{
			"generation", "best_fitness", "mean_fitness", "std_fitness", "min_fitness",
			"best_index", "offspring", "skipped_credits",
		}
		if err := l.csvWriter.Write(header); err != nil {
			return err
		}
		l.csvWriter.Flush()
	}

	// Open JSON file
	l.jsonFile, err = os.OpenFile(l.jsonPath, flags, 0644)
	if err != nil {
		return err
	}

	l.initialized = true
	return nil
}

// Close flushes and closes all log files
func (l *Logger) Close() {
	if l.csvWriter != nil {
		l.csvWriter.Flush()
	}
	if l.csvFile != nil {
		l.csvFile.Close()
	}
	if l.jsonFile != nil {
		l.jsonFile.Close()
	}
}

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"best_fitness"`
	MeanFitness    float64 `json:"mean_fitness"`
	StdFitness     float64 `json:"std_fitness"`
	MinFitness     float64 `json:"min_fitness"`
	BestIndex      int     `json:"best_index"`
	Offspring      int     `json:"offspring"`
	SkippedCredits int     `json:"skipped_credits,omitempty"`
}

// Summarize computes statistics over an evaluated population
func Summarize(gen int, individuals []ga.Individual, cross ga.CrossReport) GenerationSummary {
	s := GenerationSummary{
		Generation:     gen,
		Offspring:      cross.Offspring,
		SkippedCredits: cross.Skipped,
	}
	if len(individuals) == 0 {
		return s
	}

	fitness := make([]float64, len(individuals))
	for i, ind := range individuals {
		fitness[i] = ind.Fitness
	}
	s.MeanFitness, s.StdFitness = stat.PopMeanStdDev(fitness, nil)
	s.MinFitness = floats.Min(fitness)

	// lowest index wins ties, as in the engine
	s.BestIndex = 0
	for i, f := range fitness {
		if f > fitness[s.BestIndex] {
			s.BestIndex = i
		}
	}
	s.BestFitness = fitness[s.BestIndex]
	return s
}

// LogGeneration records a generation summary to every sink
func (l *Logger) LogGeneration(s GenerationSummary) error {
	if l.metrics != nil {
		l.metrics.Observe(s)
	}
	if !l.initialized {
		return nil
	}

	// Write CSV row
	row := []string{
		strconv.Itoa(s.Generation),
		fmt.Sprintf("%.6f", s.BestFitness),
		fmt.Sprintf("%.6f", s.MeanFitness),
		fmt.Sprintf("%.6f", s.StdFitness),
		fmt.Sprintf("%.6f", s.MinFitness),
		strconv.Itoa(s.BestIndex),
		strconv.Itoa(s.Offspring),
		strconv.Itoa(s.SkippedCredits),
	}
	if err := l.csvWriter.Write(row); err != nil {
		return err
	}
	l.csvWriter.Flush()
	if err := l.csvWriter.Error(); err != nil {
		return err
	}

	// Write JSON line
	jsonLine, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := l.jsonFile.Write(append(jsonLine, '\n')); err != nil {
		return err
	}

	// Print to console
	if l.console != nil {
		fmt.Fprintf(l.console, "Gen %4d | Best: %10.6f | Mean: %10.6f | Std: %8.6f | Skipped: %d\n",
			s.Generation, s.BestFitness, s.MeanFitness, s.StdFitness, s.SkippedCredits)
	}
	return nil
}

// Champion is the saved best-individual artifact
type Champion struct {
	Generation int           `json:"generation"`
	Fitness    float64       `json:"fitness"`
	Objective  string        `json:"objective,omitempty"`
	Chromosome ga.Chromosome `json:"chromosome"`
}

// SaveChampion saves the champion chromosome to a file
func SaveChampion(path string, ind ga.Individual, gen int, objective string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data := Champion{
		Generation: gen,
		Fitness:    ind.Fitness,
		Objective:  objective,
		Chromosome: ind.Chromosome,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, jsonData, 0644)
}

// LoadChampion loads a champion from a file
func LoadChampion(path string) (*Champion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var saved Champion
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, err
	}

	return &saved, nil
}
