package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var errNotInitialized = errors.New("store not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]map[int]Checkpoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]map[int]Checkpoint)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, cp Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run, ok := s.runs[cp.RunID]
	if !ok {
		run = make(map[int]Checkpoint)
		s.runs[cp.RunID] = run
	}
	cp.Payload = append([]byte(nil), cp.Payload...)
	run[cp.Generation] = cp
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, runID string, generation int) (Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return Checkpoint{}, false, errNotInitialized
	}
	cp, ok := s.runs[runID][generation]
	if !ok {
		return Checkpoint{}, false, nil
	}
	cp.Payload = append([]byte(nil), cp.Payload...)
	return cp, true, nil
}

func (s *MemoryStore) LatestCheckpoint(ctx context.Context, runID string) (Checkpoint, bool, error) {
	generations, err := s.ListGenerations(ctx, runID)
	if err != nil || len(generations) == 0 {
		return Checkpoint{}, false, err
	}
	return s.GetCheckpoint(ctx, runID, generations[len(generations)-1])
}

func (s *MemoryStore) ListGenerations(_ context.Context, runID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]int, 0, len(s.runs[runID]))
	for gen := range s.runs[runID] {
		out = append(out, gen)
	}
	sort.Ints(out)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
