package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kisseru-go/kisseru/store"
)

// RunStore implements store.RunStore using SQLite.
type RunStore struct {
	db        *sql.DB
	tableName string
}

// Options configures a SQLite-backed RunStore.
type Options struct {
	Path      string
	TableName string // Default "runs".
}

// New opens (creating if necessary) a SQLite-backed run ledger.
func New(opts Options) (*RunStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "runs"
	}

	s := &RunStore{db: db, tableName: tableName}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InitSchema creates the ledger table if it doesn't exist.
func (s *RunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			task_name TEXT NOT NULL,
			status TEXT NOT NULL,
			detail TEXT,
			timestamp DATETIME NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Save upserts a ledger record.
func (s *RunStore) Save(ctx context.Context, record *store.RunRecord) error {
	detailJSON, err := json.Marshal(record.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal detail: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, run_id, task_name, status, detail, timestamp, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			task_name = excluded.task_name,
			status = excluded.status,
			detail = excluded.detail,
			timestamp = excluded.timestamp,
			version = excluded.version
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.RunID,
		record.TaskName,
		string(record.Status),
		string(detailJSON),
		record.Timestamp,
		record.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}
	return nil
}

// Load retrieves a single record by ID.
func (s *RunStore) Load(ctx context.Context, recordID string) (*store.RunRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, task_name, status, detail, timestamp, version
		FROM %s WHERE id = ?
	`, s.tableName)

	var rec store.RunRecord
	var status, detailJSON string

	err := s.db.QueryRowContext(ctx, query, recordID).Scan(
		&rec.ID, &rec.RunID, &rec.TaskName, &status, &detailJSON, &rec.Timestamp, &rec.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run record not found: %s", recordID)
		}
		return nil, fmt.Errorf("failed to load run record: %w", err)
	}
	rec.Status = store.Status(status)
	if len(detailJSON) > 0 {
		if err := json.Unmarshal([]byte(detailJSON), &rec.Detail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detail: %w", err)
		}
	}
	return &rec, nil
}

// List returns every record for a run, oldest first.
func (s *RunStore) List(ctx context.Context, runID string) ([]*store.RunRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, task_name, status, detail, timestamp, version
		FROM %s WHERE run_id = ? ORDER BY timestamp ASC
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer rows.Close()

	var records []*store.RunRecord
	for rows.Next() {
		var rec store.RunRecord
		var status, detailJSON string
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.TaskName, &status, &detailJSON, &rec.Timestamp, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		rec.Status = store.Status(status)
		if len(detailJSON) > 0 {
			if err := json.Unmarshal([]byte(detailJSON), &rec.Detail); err != nil {
				return nil, fmt.Errorf("failed to unmarshal detail: %w", err)
			}
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run records: %w", err)
	}
	return records, nil
}

// Delete removes a single record.
func (s *RunStore) Delete(ctx context.Context, recordID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// Clear removes every record for a run.
func (s *RunStore) Clear(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE run_id = ?", s.tableName)
	_, err := s.db.ExecContext(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to clear run records: %w", err)
	}
	return nil
}
