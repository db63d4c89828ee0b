package engine

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Tool results are cached in memory for the lifetime of one server process.
// Nothing is persisted; a restart starts with an empty cache.
var resultCache *memoryCache

// Cache metrics.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type memoryCache struct {
	entries         sync.Map // key → *cacheEntry
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
	done            chan struct{}
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache installs a fresh result cache, stopping the cleanup loop of the
// previous one.
func InitCache(ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	c := &memoryCache{
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
	if prev := resultCache; prev != nil {
		prev.Close()
	}
	resultCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// Close stops the cleanup loop and waits for it to exit. Safe to call twice.
func (c *memoryCache) Close() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
	<-c.done
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("ytc:%x", hash[:12])
}

// cacheGet returns the live entry for key.
func cacheGet(key string) ([]byte, bool) {
	if resultCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	if val, ok := resultCache.entries.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.data, true
		}
		resultCache.entries.Delete(key)
	}

	cacheMisses.Add(1)
	return nil, false
}

func cacheSet(key string, data []byte) {
	if resultCache == nil {
		return
	}
	resultCache.evictIfNeeded()
	resultCache.entries.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(resultCache.ttl)})
}

// CacheLoadJSON loads a cached value of type T.
// Returns false on miss or decode error.
func CacheLoadJSON[T any](key string) (T, bool) {
	var out T
	data, ok := cacheGet(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it under key.
func CacheStoreJSON[T any](key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	cacheSet(key, data)
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded drops expired entries, then the entries closest to expiry,
// until the cache is under maxEntries.
func (c *memoryCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.entries.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.entries.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.entries.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey, oldestAt = key, entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.entries.Delete(oldestKey)
		count--
	}
}

func (c *memoryCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(c.done)
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}
		now := time.Now()
		c.entries.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
				c.entries.Delete(key)
			}
			return true
		})
	}
}
