package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kisseru-go/kisseru/store"
)

// RunStore implements store.RunStore using Redis.
type RunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// Options configures a Redis-backed RunStore.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "kisseru:".
	TTL      time.Duration // Expiration for records, default 0 (no expiration).
}

// New creates a Redis-backed run ledger.
func New(opts Options) *RunStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "kisseru:"
	}

	return &RunStore{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *RunStore) recordKey(id string) string {
	return fmt.Sprintf("%srecord:%s", s.prefix, id)
}

func (s *RunStore) runKey(runID string) string {
	return fmt.Sprintf("%srun:%s:records", s.prefix, runID)
}

// Save upserts a ledger record.
func (s *RunStore) Save(ctx context.Context, record *store.RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	key := s.recordKey(record.ID)
	pipe := s.client.Pipeline()

	pipe.Set(ctx, key, data, s.ttl)

	if record.RunID != "" {
		runKey := s.runKey(record.RunID)
		pipe.SAdd(ctx, runKey, record.ID)
		if s.ttl > 0 {
			pipe.Expire(ctx, runKey, s.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run record to redis: %w", err)
	}
	return nil
}

// Load retrieves a single record by ID.
func (s *RunStore) Load(ctx context.Context, recordID string) (*store.RunRecord, error) {
	key := s.recordKey(recordID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("run record not found: %s", recordID)
		}
		return nil, fmt.Errorf("failed to load run record from redis: %w", err)
	}

	var record store.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &record, nil
}

// List returns every record for a run. Redis sets carry no ordering
// guarantee, so callers that need chronological order should sort on
// RunRecord.Timestamp.
func (s *RunStore) List(ctx context.Context, runID string) ([]*store.RunRecord, error) {
	runKey := s.runKey(runID)
	recordIDs, err := s.client.SMembers(ctx, runKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list run records for %s: %w", runID, err)
	}
	if len(recordIDs) == 0 {
		return []*store.RunRecord{}, nil
	}

	keys := make([]string, len(recordIDs))
	for i, id := range recordIDs {
		keys[i] = s.recordKey(id)
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run records: %w", err)
	}

	records := make([]*store.RunRecord, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		strData, ok := result.(string)
		if !ok {
			continue
		}
		var record store.RunRecord
		if err := json.Unmarshal([]byte(strData), &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

// Delete removes a single record.
func (s *RunStore) Delete(ctx context.Context, recordID string) error {
	record, err := s.Load(ctx, recordID)
	if err != nil {
		return err
	}

	key := s.recordKey(recordID)
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	if record.RunID != "" {
		pipe.SRem(ctx, s.runKey(record.RunID), recordID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run record: %w", err)
	}
	return nil
}

// Clear removes every record for a run.
func (s *RunStore) Clear(ctx context.Context, runID string) error {
	runKey := s.runKey(runID)
	recordIDs, err := s.client.SMembers(ctx, runKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get run records for clearing: %w", err)
	}
	if len(recordIDs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, id := range recordIDs {
		pipe.Del(ctx, s.recordKey(id))
	}
	pipe.Del(ctx, runKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear run records: %w", err)
	}
	return nil
}
