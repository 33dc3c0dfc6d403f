package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "verify:"

// RedisRegistry shares codes between API instances.
type RedisRegistry struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRegistry(rdb *redis.Client) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, now: time.Now}
}

func key(email string) string {
	return keyPrefix + email
}

func (r *RedisRegistry) Put(ctx context.Context, email string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, key(email), raw, retentionFor(entry, r.now())).Err(); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Get(ctx context.Context, email string) (*Entry, error) {
	raw, err := r.rdb.Get(ctx, key(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load verification code: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode verification code: %w", err)
	}
	return &entry, nil
}

func (r *RedisRegistry) Delete(ctx context.Context, email string) error {
	return r.rdb.Del(ctx, key(email)).Err()
}
