package ga

import (
	"fmt"
	"math"
)

// Bounds holds per-gene [min, max] limits. Row 2k is the lower bound and
// row 2k+1 the upper bound of chromosome trait row k.
type Bounds struct {
	rows [][]float64
}

// NewBounds validates and copies a 2*traits x genes bounds grid
func NewBounds(rows [][]float64, traits, genes int) (*Bounds, error) {
	if len(rows) != 2*traits {
		return nil, fmt.Errorf("%w: bounds have %d rows, want %d", ErrInvalidParameter, len(rows), 2*traits)
	}
	b := &Bounds{rows: make([][]float64, len(rows))}
	for r, row := range rows {
		if len(row) != genes {
			return nil, fmt.Errorf("%w: bounds row %d has %d columns, want %d", ErrInvalidParameter, r, len(row), genes)
		}
		b.rows[r] = append([]float64(nil), row...)
	}
	for k := 0; k < traits; k++ {
		for g := 0; g < genes; g++ {
			lo, hi := b.rows[2*k][g], b.rows[2*k+1][g]
			if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
				return nil, fmt.Errorf("%w: bounds [%d][%d] lower %v exceeds upper %v", ErrInvalidParameter, k, g, lo, hi)
			}
		}
	}
	return b, nil
}

// DefaultBounds returns -1/+1 limits for every gene
func DefaultBounds(traits, genes int) *Bounds {
	b := &Bounds{rows: make([][]float64, 2*traits)}
	for r := range b.rows {
		v := 1.0
		if r%2 == 0 {
			v = -1.0
		}
		row := make([]float64, genes)
		for g := range row {
			row[g] = v
		}
		b.rows[r] = row
	}
	return b
}

// Min returns the lower bound for trait row k, gene g
func (b *Bounds) Min(k, g int) float64 {
	return b.rows[2*k][g]
}

// Max returns the upper bound for trait row k, gene g
func (b *Bounds) Max(k, g int) float64 {
	return b.rows[2*k+1][g]
}

// Clamp truncates v into the bounds of cell (k, g)
func (b *Bounds) Clamp(v float64, k, g int) float64 {
	return Clamp(v, b.Min(k, g), b.Max(k, g))
}

// Rows returns a copy of the raw grid
func (b *Bounds) Rows() [][]float64 {
	out := make([][]float64, len(b.rows))
	for i, row := range b.rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Clamp truncates value into [min, max].
func Clamp(value, min, max float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}
