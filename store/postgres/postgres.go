package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisseru-go/kisseru/store"
)

// DBPool is the subset of pgxpool.Pool used by RunStore, narrowed so tests
// can substitute pgxmock.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// RunStore implements store.RunStore using PostgreSQL.
type RunStore struct {
	pool      DBPool
	tableName string
}

// Options configures a PostgreSQL-backed RunStore.
type Options struct {
	ConnString string
	TableName  string // Default "runs".
}

// New creates a Postgres-backed run ledger, opening a connection pool.
func New(ctx context.Context, opts Options) (*RunStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "runs"
	}

	return &RunStore{pool: pool, tableName: tableName}, nil
}

// NewWithPool builds a run ledger over an existing pool, for tests.
func NewWithPool(pool DBPool, tableName string) *RunStore {
	if tableName == "" {
		tableName = "runs"
	}
	return &RunStore{pool: pool, tableName: tableName}
}

// InitSchema creates the ledger table if it doesn't exist.
func (s *RunStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			task_name TEXT NOT NULL,
			status TEXT NOT NULL,
			detail JSONB,
			timestamp TIMESTAMPTZ NOT NULL,
			version INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
	`, s.tableName, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *RunStore) Close() {
	s.pool.Close()
}

// Save upserts a ledger record.
func (s *RunStore) Save(ctx context.Context, record *store.RunRecord) error {
	detailJSON, err := json.Marshal(record.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal detail: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, run_id, task_name, status, detail, timestamp, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			task_name = EXCLUDED.task_name,
			status = EXCLUDED.status,
			detail = EXCLUDED.detail,
			timestamp = EXCLUDED.timestamp,
			version = EXCLUDED.version
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		record.ID,
		record.RunID,
		record.TaskName,
		string(record.Status),
		detailJSON,
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
		FROM %s WHERE id = $1
	`, s.tableName)

	var rec store.RunRecord
	var status string
	var detailJSON []byte

	err := s.pool.QueryRow(ctx, query, recordID).Scan(
		&rec.ID, &rec.RunID, &rec.TaskName, &status, &detailJSON, &rec.Timestamp, &rec.Version,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("run record not found: %s", recordID)
		}
		return nil, fmt.Errorf("failed to load run record: %w", err)
	}
	rec.Status = store.Status(status)
	if len(detailJSON) > 0 {
		if err := json.Unmarshal(detailJSON, &rec.Detail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal detail: %w", err)
		}
	}
	return &rec, nil
}

// List returns every record for a run, oldest first.
func (s *RunStore) List(ctx context.Context, runID string) ([]*store.RunRecord, error) {
	query := fmt.Sprintf(`
		SELECT id, run_id, task_name, status, detail, timestamp, version
		FROM %s WHERE run_id = $1 ORDER BY timestamp ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer rows.Close()

	var records []*store.RunRecord
	for rows.Next() {
		var rec store.RunRecord
		var status string
		var detailJSON []byte

		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.TaskName, &status, &detailJSON, &rec.Timestamp, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		rec.Status = store.Status(status)
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &rec.Detail); err != nil {
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
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	_, err := s.pool.Exec(ctx, query, recordID)
	if err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// Clear removes every record for a run.
func (s *RunStore) Clear(ctx context.Context, runID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE run_id = $1", s.tableName)
	_, err := s.pool.Exec(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to clear run records: %w", err)
	}
	return nil
}
