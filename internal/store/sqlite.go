package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	scouterrors "options-scout/internal/errors"
	"options-scout/internal/models"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the run database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		provider TEXT NOT NULL,
		candidates INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ticker TEXT NOT NULL,
		strategy TEXT NOT NULL,
		acceptance TEXT NOT NULL,
		pcs REAL NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, ticker, strategy),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id, ticker, strategy);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists a run and all of its annotated results atomically.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, results []models.AnnotatedResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return scouterrors.Wrap(err, "begin save transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, provider, candidates) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Provider, run.Candidates)
	if err != nil {
		return scouterrors.Wrapf(err, "insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, ticker, strategy, acceptance, pcs, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return scouterrors.Wrap(err, "prepare result insert")
	}
	defer stmt.Close()

	for _, r := range results {
		payload, err := json.Marshal(r)
		if err != nil {
			return scouterrors.Wrapf(err, "marshal result %s/%s", r.Candidate.Ticker, r.Candidate.Strategy)
		}
		_, err = stmt.ExecContext(ctx,
			run.ID, r.Candidate.Ticker, r.Candidate.Strategy,
			string(r.Acceptance.Status), r.Scored.PCS, string(payload))
		if err != nil {
			return scouterrors.Wrapf(err, "insert result %s/%s", r.Candidate.Ticker, r.Candidate.Strategy)
		}
	}

	return tx.Commit()
}

// GetRun loads a run and its results in stable (ticker, strategy) order.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, []models.AnnotatedResult, error) {
	var run Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, provider, candidates FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.CreatedAt, &run.Provider, &run.Candidates)
	if err == sql.ErrNoRows {
		return nil, nil, scouterrors.Wrapf(scouterrors.ErrRunNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, nil, scouterrors.Wrapf(err, "load run %s", runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM results WHERE run_id = ? ORDER BY ticker, strategy`, runID)
	if err != nil {
		return nil, nil, scouterrors.Wrapf(err, "load results for run %s", runID)
	}
	defer rows.Close()

	var results []models.AnnotatedResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, nil, scouterrors.Wrap(err, "scan result row")
		}
		var r models.AnnotatedResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, nil, scouterrors.Wrap(err, "unmarshal result payload")
		}
		results = append(results, r)
	}
	return &run, results, rows.Err()
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, provider, candidates FROM runs
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, scouterrors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Provider, &r.Candidates); err != nil {
			return nil, scouterrors.Wrap(err, "scan run row")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

var _ RunStore = (*SQLiteStore)(nil)
