package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates an unopened store.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the SQLite database at path. Use ":memory:" for an
// in-memory store.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateRun records the start of a run.
func (s *SQLiteStore) CreateRun(model, configPath, engine string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	run := &Run{
		ID:         uuid.New().String(),
		Model:      model,
		ConfigPath: configPath,
		Engine:     engine,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	s.logger.Debug("creating run", "id", run.ID, "model", model)

	_, err := s.db.Exec(
		`INSERT INTO runs (id, model, config_path, engine, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.ConfigPath, run.Engine, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed or failed.
func (s *SQLiteStore) FinishRun(id string, status RunStatus, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), errMsg, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordStep appends one update record to a run.
func (s *SQLiteStore) RecordStep(runID string, seq int, modelTime time.Time, iterations int, wall time.Duration) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	_, err := s.db.Exec(
		`INSERT INTO steps (run_id, seq, model_time, iterations, wall_ms) VALUES (?, ?, ?, ?, ?)`,
		runID, seq, modelTime.UTC(), iterations, wall.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record step: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	rows, err := s.db.Query(
		`SELECT id, model, config_path, engine, status, COALESCE(error, ''), started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var status string
		if err := rows.Scan(&r.ID, &r.Model, &r.ConfigPath, &r.Engine, &status, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Status = RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListSteps returns a run's steps in sequence order.
func (s *SQLiteStore) ListSteps(runID string) ([]*Step, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	rows, err := s.db.Query(
		`SELECT run_id, seq, model_time, iterations, wall_ms FROM steps WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*Step
	for rows.Next() {
		st := &Step{}
		if err := rows.Scan(&st.RunID, &st.Seq, &st.ModelTime, &st.Iterations, &st.WallMS); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
