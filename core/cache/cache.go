package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// The two cache flavors from the performance chapter: a data cache that
// memoizes loads by function+parameters with TTL and a size cap, and a
// resource cache that builds shared handles exactly once.

type (
	LoaderFunc func() (interface{}, error)

	Stats struct {
		Hits      int64 `json:"hits"`
		Misses    int64 `json:"misses"`
		Entries   int   `json:"entries"`
		Evictions int64 `json:"evictions"`
	}

	entry struct {
		value    interface{}
		storedAt time.Time
		ttl      time.Duration
	}

	// call tracks one in-progress load so concurrent misses on the same key
	// share a single loader run instead of stampeding.
	call struct {
		done chan struct{}
		val  interface{}
		err  error
	}

	DataCache struct {
		mu         sync.Mutex
		entries    map[string]*entry
		inflight   map[string]*call
		maxEntries int
		defaultTTL time.Duration

		hits, misses, evictions int64

		nowFunc func() time.Time // mockable
	}

	ResourceCache struct {
		mu        sync.Mutex
		resources map[string]interface{}
	}
)

// Key builds a cache key from a function name and its parameters, the way the
// original framework derives cache keys.
func Key(fn string, params ...interface{}) string {
	if len(params) == 0 {
		return fn + "()"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%v", p)
	}
	return fn + "(" + strings.Join(parts, ",") + ")"
}

// NewDataCache creates a data cache. defaultTTL <= 0 means entries never
// expire; maxEntries <= 0 means no size cap.
func NewDataCache(defaultTTL time.Duration, maxEntries int) *DataCache {
	return &DataCache{
		entries:    make(map[string]*entry),
		inflight:   make(map[string]*call),
		maxEntries: maxEntries,
		defaultTTL: defaultTTL,
		nowFunc:    time.Now,
	}
}

// GetOrLoad returns the cached value for key, loading and storing it on a
// miss. The boolean reports whether the value came from cache. ttl <= 0 uses
// the cache default. The lock is not held while the loader runs: concurrent
// misses on the same key wait for one shared load, and misses on other keys
// (and Stats) proceed unblocked.
func (c *DataCache) GetOrLoad(key string, ttl time.Duration, load LoaderFunc) (interface{}, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if e.ttl <= 0 || c.nowFunc().Sub(e.storedAt) < e.ttl {
			c.hits++
			c.mu.Unlock()
			return e.value, true, nil
		}
		delete(c.entries, key) // expired
	}
	c.misses++

	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-cl.done
		return cl.val, false, cl.err
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	cl.val, cl.err = load()

	c.mu.Lock()
	delete(c.inflight, key)
	if cl.err == nil {
		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		c.entries[key] = &entry{value: cl.val, storedAt: c.nowFunc(), ttl: ttl}
		c.evictOverflow()
	}
	c.mu.Unlock()
	close(cl.done)

	if cl.err != nil {
		return nil, false, cl.err
	}
	return cl.val, false, nil
}

// evictOverflow drops oldest entries until the cap holds; the caller must
// hold the lock.
func (c *DataCache) evictOverflow() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey = k
				oldest = e.storedAt
			}
		}
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

// Invalidate drops one entry; unknown keys are a no-op.
func (c *DataCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops everything but keeps the hit/miss counters.
func (c *DataCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *DataCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Entries:   len(c.entries),
		Evictions: c.evictions,
	}
}

func NewResourceCache() *ResourceCache {
	return &ResourceCache{resources: make(map[string]interface{})}
}

// GetOrCreate returns the shared resource for key, building it on first use.
// Unlike the data cache there is no TTL and no copy: every caller gets the
// same handle.
func (c *ResourceCache) GetOrCreate(key string, build LoaderFunc) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res, ok := c.resources[key]; ok {
		return res, nil
	}
	res, err := build()
	if err != nil {
		return nil, err
	}
	c.resources[key] = res
	return res, nil
}

// Clear drops all resources; the next GetOrCreate rebuilds.
func (c *ResourceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = make(map[string]interface{})
}
