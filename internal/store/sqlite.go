package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO checkpoints (run_id, generation, best_fitness, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			payload = excluded.payload
	`, cp.RunID, cp.Generation, cp.BestFitness, cp.Payload)
	return err
}

func (s *SQLiteStore) GetCheckpoint(ctx context.Context, runID string, generation int) (Checkpoint, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Checkpoint{}, false, err
	}

	cp := Checkpoint{RunID: runID, Generation: generation}
	err = db.QueryRowContext(ctx, `
		SELECT best_fitness, payload FROM checkpoints
		WHERE run_id = ? AND generation = ?
	`, runID, generation).Scan(&cp.BestFitness, &cp.Payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, err
	}
	return cp, true, nil
}

func (s *SQLiteStore) LatestCheckpoint(ctx context.Context, runID string) (Checkpoint, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Checkpoint{}, false, err
	}

	cp := Checkpoint{RunID: runID}
	err = db.QueryRowContext(ctx, `
		SELECT generation, best_fitness, payload FROM checkpoints
		WHERE run_id = ?
		ORDER BY generation DESC
		LIMIT 1
	`, runID).Scan(&cp.Generation, &cp.BestFitness, &cp.Payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, err
	}
	return cp, true, nil
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, runID string) ([]int, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation FROM checkpoints WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var gen int
		if err := rows.Scan(&gen); err != nil {
			return nil, err
		}
		out = append(out, gen)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
