// Package storage provides SQLite implementation of the RunStore interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/bunrui/internal/models"
)

// SQLiteRunStore implements RunStore using SQLite.
type SQLiteRunStore struct {
	db *sql.DB
}

// NewSQLiteRunStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS training_runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		dataset_path TEXT NOT NULL,
		rows INTEGER NOT NULL,
		train_rows INTEGER NOT NULL,
		test_rows INTEGER NOT NULL,
		distribution TEXT NOT NULL,
		stratified INTEGER NOT NULL,
		vocabulary INTEGER NOT NULL,
		accuracy REAL NOT NULL,
		classes TEXT NOT NULL,
		model_dir TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_training_runs_created_at ON training_runs(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateRun inserts a run. ID and CreatedAt are filled in when empty.
func (s *SQLiteRunStore) CreateRun(ctx context.Context, run *models.TrainingRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	distJSON, err := json.Marshal(run.Distribution)
	if err != nil {
		return fmt.Errorf("failed to marshal distribution: %w", err)
	}
	classesJSON, err := json.Marshal(run.Classes)
	if err != nil {
		return fmt.Errorf("failed to marshal class metrics: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO training_runs (id, created_at, dataset_path, rows, train_rows, test_rows,
		 distribution, stratified, vocabulary, accuracy, classes, model_dir)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.DatasetPath, run.Rows, run.TrainRows, run.TestRows,
		string(distJSON), run.Stratified, run.Vocabulary, run.Accuracy, string(classesJSON), run.ModelDir,
	)
	return err
}

const selectRun = `SELECT id, created_at, dataset_path, rows, train_rows, test_rows,
	distribution, stratified, vocabulary, accuracy, classes, model_dir FROM training_runs`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.TrainingRun, error) {
	var run models.TrainingRun
	var distJSON, classesJSON string
	err := row.Scan(&run.ID, &run.CreatedAt, &run.DatasetPath, &run.Rows, &run.TrainRows, &run.TestRows,
		&distJSON, &run.Stratified, &run.Vocabulary, &run.Accuracy, &classesJSON, &run.ModelDir)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(distJSON), &run.Distribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal distribution: %w", err)
	}
	if err := json.Unmarshal([]byte(classesJSON), &run.Classes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal class metrics: %w", err)
	}
	return &run, nil
}

// GetRun returns a run by ID.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*models.TrainingRun, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]*models.TrainingRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.TrainingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of recorded runs.
func (s *SQLiteRunStore) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_runs`).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}
