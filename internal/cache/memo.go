package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memo caches computed values per (key, revision). Concurrent misses for
// the same pair share one computation. Storing a newer revision of a key
// drops its older revisions.
type Memo[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group

	mu     sync.Mutex
	latest map[string]uint64
}

func NewMemo[T any](maxSize int, ttl time.Duration) *Memo[T] {
	return &Memo[T]{
		cache:  NewLRUCache[T](maxSize, ttl),
		latest: make(map[string]uint64),
	}
}

func memoKey(key string, rev uint64) string {
	return key + "@" + strconv.FormatUint(rev, 10)
}

// Get returns the cached value for key at rev, running compute on a miss.
// Errors are not cached.
func (m *Memo[T]) Get(key string, rev uint64, compute func() (T, error)) (T, error) {
	k := memoKey(key, rev)
	if v, ok := m.cache.Get(k); ok {
		return v, nil
	}
	v, err, _ := m.group.Do(k, func() (any, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		m.store(key, rev, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (m *Memo[T]) store(key string, rev uint64, v T) {
	m.mu.Lock()
	prev, seen := m.latest[key]
	if !seen || rev > prev {
		m.latest[key] = rev
	}
	m.mu.Unlock()

	if rev < prev {
		// A newer revision is already cached; this result is stale.
		return
	}
	m.cache.Set(memoKey(key, rev), v)
	if seen && rev > prev {
		prefix := key + "@"
		m.cache.Prune(func(k string) bool {
			return strings.HasPrefix(k, prefix) && k != memoKey(key, rev)
		})
	}
}

// CleanExpired drops expired entries and forgets keys with nothing cached.
func (m *Memo[T]) CleanExpired() int {
	n := m.cache.CleanExpired()
	m.mu.Lock()
	for key, rev := range m.latest {
		if !m.cache.contains(memoKey(key, rev)) {
			delete(m.latest, key)
		}
	}
	m.mu.Unlock()
	return n
}

func (m *Memo[T]) Size() int { return m.cache.Size() }

func (m *Memo[T]) Stats() Stats { return m.cache.Stats() }
