package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"evlearn/internal/ga"
)

// Checkpoint is one archived engine state. Payload holds the text
// checkpoint exactly as ga.Engine.WriteCheckpoint produced it.
type Checkpoint struct {
	RunID       string
	Generation  int
	BestFitness float64
	Payload     []byte
}

// Store archives checkpoints keyed by run and generation.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, cp Checkpoint) error
	GetCheckpoint(ctx context.Context, runID string, generation int) (Checkpoint, bool, error)
	LatestCheckpoint(ctx context.Context, runID string) (Checkpoint, bool, error)
	ListGenerations(ctx context.Context, runID string) ([]int, error)
	Close() error
}

// NewStore returns the backend named by kind
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// Capture serializes the engine's current state into a Checkpoint
func Capture(runID string, e *ga.Engine) (Checkpoint, error) {
	var buf bytes.Buffer
	if err := e.WriteCheckpoint(&buf); err != nil {
		return Checkpoint{}, err
	}
	best, err := e.Best()
	if err != nil {
		return Checkpoint{}, err
	}
	return Checkpoint{
		RunID:       runID,
		Generation:  e.Generation(),
		BestFitness: best.Fitness,
		Payload:     buf.Bytes(),
	}, nil
}

// Restore loads a checkpoint payload into an initialized engine
func Restore(e *ga.Engine, cp Checkpoint) error {
	return e.ReadCheckpoint(bytes.NewReader(cp.Payload))
}
