package nn

import (
	"fmt"
	"math"
)

// Activation names accepted by NewLinear
const (
	ActivationIdentity = "identity"
	ActivationReLU     = "relu"
	ActivationTanh     = "tanh"
)

// Linear is a single-layer controller whose weight matrix is a chromosome:
// one row per output, one column per input
type Linear struct {
	Outputs    int
	Inputs     int
	Activation string

	// Weights stored row-major, Outputs x Inputs
	Weights [][]float64

	// Pre-allocated output buffer (no allocations in hot path)
	out []float64
}

// NewLinear creates a zero-weight controller
func NewLinear(outputs, inputs int, activation string) (*Linear, error) {
	switch activation {
	case "":
		activation = ActivationIdentity
	case ActivationIdentity, ActivationReLU, ActivationTanh:
	default:
		return nil, fmt.Errorf("unknown activation: %s", activation)
	}

	l := &Linear{
		Outputs:    outputs,
		Inputs:     inputs,
		Activation: activation,
		Weights:    make([][]float64, outputs),
		out:        make([]float64, outputs),
	}
	for k := range l.Weights {
		l.Weights[k] = make([]float64, inputs)
	}
	return l, nil
}

// SetWeights copies a weight grid into the controller
func (l *Linear) SetWeights(w [][]float64) error {
	if len(w) != l.Outputs {
		return fmt.Errorf("weights have %d rows, want %d", len(w), l.Outputs)
	}
	for k, row := range w {
		if len(row) != l.Inputs {
			return fmt.Errorf("weights row %d has %d columns, want %d", k, len(row), l.Inputs)
		}
		copy(l.Weights[k], row)
	}
	return nil
}

// Forward computes activation(W·x). The returned slice is reused by the
// next call.
func (l *Linear) Forward(input []float64) []float64 {
	for k, row := range l.Weights {
		var sum float64
		for g, w := range row {
			sum += w * input[g]
		}
		l.out[k] = l.activate(sum)
	}
	return l.out
}

func (l *Linear) activate(x float64) float64 {
	switch l.Activation {
	case ActivationReLU:
		return relu(x)
	case ActivationTanh:
		return math.Tanh(x)
	default:
		return x
	}
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}
