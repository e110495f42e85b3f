package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/repository"
)

var _ repository.JobStore = (*redisJobStore)(nil)

const jobKeyPrefix = "prepwise:job:"

type redisJobStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewRedisJobStore creates a Redis-backed job store. New entries expire after
// ttl; updates keep the remaining TTL of the existing key.
func NewRedisJobStore(client *goredis.Client, ttl time.Duration) repository.JobStore {
	return &redisJobStore{client: client, ttl: ttl}
}

func (r *redisJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	data, err := r.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get job: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("redis: decode job: %w", err)
	}
	return &job, nil
}

func (r *redisJobStore) Set(ctx context.Context, job *domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redis: encode job: %w", err)
	}
	key := jobKeyPrefix + job.ID

	// Overwrite in place first so a completion keeps the registration TTL.
	err = r.client.SetArgs(ctx, key, data, goredis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis: update job: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set job: %w", err)
	}
	return nil
}

func (r *redisJobStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, jobKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("redis: delete job: %w", err)
	}
	return n > 0, nil
}

// Check pings Redis.
func (r *redisJobStore) Check(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
