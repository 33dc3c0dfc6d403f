package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"nestaway/internal/middleware"
	"nestaway/internal/observability"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
)

const listingGenerationKey = "listings:gen"

// RemoteStore is the subset of the memcached client used as the shared layer.
type RemoteStore interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

// ListingCache is a two level cache for listing search pages. The local ccache
// layer absorbs hot queries; memcached shares results between instances.
// Entries are keyed by a generation number that Invalidate bumps, so a new
// listing hides every cached page without enumerating keys.
type ListingCache struct {
	local     *ccache.Cache[[]byte]
	remote    RemoteStore
	localTTL  time.Duration
	remoteTTL time.Duration
	gen       atomic.Uint64
}

// NewListingCache builds the cache. remote may be nil for a local-only cache.
func NewListingCache(remote RemoteStore, ttl time.Duration) *ListingCache {
	localTTL := ttl / 2
	if localTTL <= 0 {
		localTTL = ttl
	}
	return &ListingCache{
		local:     ccache.New(ccache.Configure[[]byte]().MaxSize(1000)),
		remote:    remote,
		localTTL:  localTTL,
		remoteTTL: ttl,
	}
}

// NewMemcachedListingCache connects to the given memcached servers.
// No servers means a local-only cache.
func NewMemcachedListingCache(servers []string, ttl time.Duration) *ListingCache {
	if len(servers) == 0 {
		return NewListingCache(nil, ttl)
	}
	mc := memcache.New(servers...)
	mc.Timeout = 200 * time.Millisecond
	return NewListingCache(mc, ttl)
}

func (c *ListingCache) generation() uint64 {
	if c.remote == nil {
		return c.gen.Load()
	}
	item, err := c.remote.Get(listingGenerationKey)
	if err == nil {
		if n, perr := strconv.ParseUint(string(item.Value), 10, 64); perr == nil {
			return n
		}
	}
	if errors.Is(err, memcache.ErrCacheMiss) {
		return c.reseedGeneration()
	}
	// Remote trouble: fall back to the local counter.
	return c.gen.Load()
}

// reseedGeneration restores an evicted generation key. The new value is
// time based so pages cached under an earlier generation stay hidden.
func (c *ListingCache) reseedGeneration() uint64 {
	seed := uint64(time.Now().UnixNano()) //nolint:gosec // positive wall clock
	err := c.remote.Add(&memcache.Item{Key: listingGenerationKey, Value: []byte(strconv.FormatUint(seed, 10))})
	if errors.Is(err, memcache.ErrNotStored) {
		// Another instance won the race; use its value.
		if item, gerr := c.remote.Get(listingGenerationKey); gerr == nil {
			if n, perr := strconv.ParseUint(string(item.Value), 10, 64); perr == nil {
				return n
			}
		}
	}
	return seed
}

func (c *ListingCache) key(query string) string {
	sum := sha1.Sum([]byte(query))
	return fmt.Sprintf("listings:v%d:%s", c.generation(), hex.EncodeToString(sum[:]))
}

// Get loads the page cached for query into dest.
func (c *ListingCache) Get(ctx context.Context, query string, dest any) bool {
	key := c.key(query)

	if item := c.local.Get(key); item != nil && !item.Expired() {
		if json.Unmarshal(item.Value(), dest) == nil {
			observability.CacheLookups.WithLabelValues("local", observability.ResultHit).Inc()
			return true
		}
	}
	observability.CacheLookups.WithLabelValues("local", observability.ResultMiss).Inc()

	if c.remote == nil {
		return false
	}
	item, err := c.remote.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			middleware.Logger.WarnContext(ctx, "memcached get failed", slog.String("error", err.Error()))
		}
		observability.CacheLookups.WithLabelValues("memcached", observability.ResultMiss).Inc()
		return false
	}
	if err := json.Unmarshal(item.Value, dest); err != nil {
		observability.CacheLookups.WithLabelValues("memcached", observability.ResultMiss).Inc()
		return false
	}
	c.local.Set(key, item.Value, c.localTTL)
	observability.CacheLookups.WithLabelValues("memcached", observability.ResultHit).Inc()
	return true
}

// Set stores v for query in both layers.
func (c *ListingCache) Set(ctx context.Context, query string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	key := c.key(query)
	c.local.Set(key, raw, c.localTTL)
	if c.remote == nil {
		return
	}
	err = c.remote.Set(&memcache.Item{Key: key, Value: raw, Expiration: int32(c.remoteTTL / time.Second)})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "memcached set failed", slog.String("error", err.Error()))
	}
}

// Invalidate hides every cached page.
func (c *ListingCache) Invalidate(ctx context.Context) {
	c.gen.Add(1)
	c.local.Clear()
	if c.remote == nil {
		return
	}
	_, err := c.remote.Increment(listingGenerationKey, 1)
	if errors.Is(err, memcache.ErrCacheMiss) {
		c.reseedGeneration()
		return
	}
	if err != nil {
		middleware.Logger.WarnContext(ctx, "memcached generation bump failed", slog.String("error", err.Error()))
	}
}

// Stop releases the local cache's background worker.
func (c *ListingCache) Stop() {
	c.local.Stop()
}
