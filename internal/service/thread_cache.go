package service

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ochan-dev/ochan/internal/domain"
)

// TagThreads marks every cached thread for bulk eviction.
const TagThreads = "threads"

// ThreadKey is the cache key for one thread view.
func ThreadKey(board domain.BoardURI, number domain.PostNumber) string {
	return fmt.Sprintf("board:%s:thread:%d", board, number)
}

// BoardTag groups every cached thread of one board.
func BoardTag(board domain.BoardURI) string {
	return fmt.Sprintf("board:%s", board)
}

type cacheEntry struct {
	thread    domain.Thread
	tags      []string
	expiresAt time.Time
}

// ThreadCache is a short-TTL, tag-invalidated cache for the
// thread-with-replies read path. Concurrent loads of the same key are
// collapsed into a single storage query.
type ThreadCache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
	tags    map[string]map[string]struct{}

	now func() time.Time // overridable in tests
}

func NewThreadCache(ttl time.Duration) *ThreadCache {
	return &ThreadCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

// GetOrLoad returns the cached thread for key, loading and caching it
// under the given tags on a miss.
func (c *ThreadCache) GetOrLoad(key string, tags []string, loader func() (domain.Thread, error)) (domain.Thread, error) {
	if thread, ok := c.get(key); ok {
		threadCacheHits.Inc()
		return thread, nil
	}
	threadCacheMisses.Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have populated the entry while we waited.
		if thread, ok := c.get(key); ok {
			return thread, nil
		}
		thread, err := loader()
		if err != nil {
			return domain.Thread{}, err
		}
		c.set(key, tags, thread)
		return thread, nil
	})
	if err != nil {
		return domain.Thread{}, err
	}
	return v.(domain.Thread), nil
}

// Invalidate drops one key.
func (c *ThreadCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key)
}

// InvalidateTag drops every key carrying the tag.
func (c *ThreadCache) InvalidateTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tags[tag] {
		c.remove(key)
	}
}

func (c *ThreadCache) get(key string) (domain.Thread, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return domain.Thread{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.Invalidate(key)
		return domain.Thread{}, false
	}
	return entry.thread, true
}

func (c *ThreadCache) set(key string, tags []string, thread domain.Thread) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(key) // drop stale tag links before relinking
	c.entries[key] = cacheEntry{thread: thread, tags: tags, expiresAt: c.now().Add(c.ttl)}
	for _, tag := range tags {
		if c.tags[tag] == nil {
			c.tags[tag] = make(map[string]struct{})
		}
		c.tags[tag][key] = struct{}{}
	}
}

// remove expects c.mu held.
func (c *ThreadCache) remove(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, tag := range entry.tags {
		delete(c.tags[tag], key)
		if len(c.tags[tag]) == 0 {
			delete(c.tags, tag)
		}
	}
}
