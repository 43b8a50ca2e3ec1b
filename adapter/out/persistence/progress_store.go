// Package persistence implements storage-backed adapters.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
	"github.com/NATEHSIAO/pdf-invoice/core/port/out"
)

// progressKey is the Redis key prefix for analysis job progress.
const progressKey = "analysis:progress:"

// RedisProgressStore keeps per-job progress in Redis so multiple instances
// can serve progress polls for the same job.
type RedisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressStore creates a Redis-backed progress store. Entries expire
// after ttl so finished jobs clean themselves up.
func NewRedisProgressStore(client *redis.Client, ttl time.Duration) *RedisProgressStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisProgressStore{client: client, ttl: ttl}
}

func (s *RedisProgressStore) Set(ctx context.Context, jobID string, progress domain.AnalysisProgress) error {
	if jobID == "" {
		return errors.New("jobID cannot be empty")
	}

	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.client.Set(ctx, progressKey+jobID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store progress: %w", err)
	}
	return nil
}

func (s *RedisProgressStore) Get(ctx context.Context, jobID string) (domain.AnalysisProgress, bool, error) {
	var progress domain.AnalysisProgress

	data, err := s.client.Get(ctx, progressKey+jobID).Bytes()
	if err == redis.Nil {
		return progress, false, nil
	}
	if err != nil {
		return progress, false, fmt.Errorf("load progress: %w", err)
	}

	if err := json.Unmarshal(data, &progress); err != nil {
		return progress, false, fmt.Errorf("unmarshal progress: %w", err)
	}
	return progress, true, nil
}

func (s *RedisProgressStore) Delete(ctx context.Context, jobID string) error {
	return s.client.Del(ctx, progressKey+jobID).Err()
}

var _ out.ProgressStore = (*RedisProgressStore)(nil)
