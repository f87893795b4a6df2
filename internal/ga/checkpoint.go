package ga

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const generationPrefix = "Generation:"

// WriteCheckpoint writes the population and generation counter as text:
// for each individual, one line per trait row followed by a fitness line,
// then a "Generation: <n>" trailer.
func (e *Engine) WriteCheckpoint(w io.Writer) error {
	if err := e.ready(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, ind := range e.pop.Individuals {
		for _, row := range ind.Chromosome {
			for g, v := range row {
				if g > 0 {
					bw.WriteByte(' ')
				}
				bw.WriteString(formatDecimal(v))
			}
			bw.WriteByte('\n')
		}
		bw.WriteString(formatDecimal(ind.Fitness))
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "%s %d\n", generationPrefix, e.generation)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// WriteCheckpointFile writes a checkpoint to path, replacing any existing file
func (e *Engine) WriteCheckpointFile(path string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer os.Remove(tmp.Name())

	if err := e.WriteCheckpoint(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// ReadCheckpoint parses a checkpoint written for the engine's shape and
// restores chromosomes, fitness and the generation counter. Values must be
// finite and genes within their bounds. Nothing is applied unless the whole
// checkpoint parses.
func (e *Engine) ReadCheckpoint(r io.Reader) error {
	if err := e.ready(); err != nil {
		return err
	}

	traits, genes := e.pop.Traits, e.pop.Genes
	size := e.pop.Size()
	chromosomes := make([]Chromosome, size)
	fitness := make([]float64, size)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	next := func() ([]string, bool) {
		for sc.Scan() {
			line++
			fields := strings.Fields(sc.Text())
			if len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}

	for i := 0; i < size; i++ {
		chromosomes[i] = NewChromosome(traits, genes)
		for k := 0; k < traits; k++ {
			fields, ok := next()
			if !ok {
				return e.truncated(sc, i)
			}
			if len(fields) != genes {
				return fmt.Errorf("%w: line %d has %d values, want %d", ErrMalformedCheckpoint, line, len(fields), genes)
			}
			for g, tok := range fields {
				v, err := parseDecimal(tok, line)
				if err != nil {
					return err
				}
				if v < e.bounds.Min(k, g) || v > e.bounds.Max(k, g) {
					return fmt.Errorf("%w: line %d: gene %v outside [%v, %v]",
						ErrMalformedCheckpoint, line, v, e.bounds.Min(k, g), e.bounds.Max(k, g))
				}
				chromosomes[i][k][g] = v
			}
		}

		fields, ok := next()
		if !ok {
			return e.truncated(sc, i)
		}
		if len(fields) != 1 {
			return fmt.Errorf("%w: line %d: fitness line has %d values", ErrMalformedCheckpoint, line, len(fields))
		}
		v, err := parseDecimal(fields[0], line)
		if err != nil {
			return err
		}
		fitness[i] = v
	}

	fields, ok := next()
	if !ok {
		return e.truncated(sc, size)
	}
	if len(fields) != 2 || fields[0] != generationPrefix {
		return fmt.Errorf("%w: line %d: expected %q trailer", ErrMalformedCheckpoint, line, generationPrefix+" <n>")
	}
	generation, err := strconv.Atoi(fields[1])
	if err != nil || generation < 0 {
		return fmt.Errorf("%w: line %d: bad generation %q", ErrMalformedCheckpoint, line, fields[1])
	}
	if _, ok := next(); ok {
		return fmt.Errorf("%w: line %d: trailing data after generation", ErrMalformedCheckpoint, line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	for i, ind := range e.pop.Individuals {
		ind.Chromosome.CopyFrom(chromosomes[i])
		ind.Fitness = fitness[i]
		ind.SelectionCount = 0
	}
	e.generation = generation
	return nil
}

func (e *Engine) truncated(sc *bufio.Scanner, individual int) error {
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return fmt.Errorf("%w: truncated at individual %d of %d", ErrMalformedCheckpoint, individual, e.pop.Size())
}

// ReadCheckpointFile loads a checkpoint from path. A missing file yields an
// error matching both ErrIO and os.ErrNotExist.
func (e *Engine) ReadCheckpointFile(path string) error {
	if err := e.ready(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	return e.ReadCheckpoint(f)
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseDecimal(tok string, line int) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: line %d: %q is not a finite number", ErrMalformedCheckpoint, line, tok)
	}
	return v, nil
}
