package verification

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)
	seen := map[string]struct{}{}
	for range 200 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 150)
}

func TestEntryExpired(t *testing.T) {
	now := time.Now()
	e := Entry{Code: "123456", ExpiresAt: now}
	assert.False(t, e.Expired(now))
	assert.True(t, e.Expired(now.Add(time.Millisecond)))
}

func registries(t *testing.T) map[string]Registry {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mem := NewMemoryRegistry()
	t.Cleanup(mem.Stop)
	return map[string]Registry{
		"redis":  NewRedisRegistry(rdb),
		"memory": mem,
	}
}

func TestRegistryContract(t *testing.T) {
	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			email := "jane@x.com"

			got, err := reg.Get(ctx, email)
			require.NoError(t, err)
			assert.Nil(t, got)

			first := Entry{Code: "111111", ExpiresAt: time.Now().Add(10 * time.Minute)}
			require.NoError(t, reg.Put(ctx, email, first))

			second := Entry{Code: "222222", ExpiresAt: time.Now().Add(10 * time.Minute)}
			require.NoError(t, reg.Put(ctx, email, second))

			got, err = reg.Get(ctx, email)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "222222", got.Code)
			assert.WithinDuration(t, second.ExpiresAt, got.ExpiresAt, time.Second)

			require.NoError(t, reg.Delete(ctx, email))
			got, err = reg.Get(ctx, email)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestRegistryKeepsExpiredEntries(t *testing.T) {
	for name, reg := range registries(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			past := Entry{Code: "333333", ExpiresAt: time.Now().Add(-time.Minute)}
			require.NoError(t, reg.Put(ctx, "late@x.com", past))

			got, err := reg.Get(ctx, "late@x.com")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, got.Expired(time.Now()))
		})
	}
}

func TestRedisRegistryTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	reg := NewRedisRegistry(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	require.NoError(t, reg.Put(context.Background(), "a@x.com", Entry{Code: "123456", ExpiresAt: time.Now().Add(10 * time.Minute)}))
	ttl := mr.TTL("verify:a@x.com")
	assert.Greater(t, ttl, 10*time.Minute)
	assert.LessOrEqual(t, ttl, 10*time.Minute+Retention)

	mr.FastForward(10*time.Minute + Retention + time.Second)
	got, err := reg.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}
