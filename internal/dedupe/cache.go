// ABOUTME: Thread-safe TTL cache mapping client request IDs to created resource IDs
// ABOUTME: Lets document creation replay the original result for a repeated request ID

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// ClaimState is the outcome of Claim.
type ClaimState int

const (
	// Claimed means the caller owns the key and must call Complete or Release.
	Claimed ClaimState = iota
	// Done means an earlier request with the same key already finished.
	Done
	// InFlight means an earlier request with the same key is still running.
	InFlight
)

// cacheEntry stores the result, timestamp and list element for a key.
// An empty value marks a claim whose request has not finished yet.
type cacheEntry struct {
	value     string
	timestamp time.Time
	element   *list.Element
}

// Cache is a TTL-based, size-limited map from request keys to result IDs.
// A doubly-linked list keeps insertion order for O(1) eviction.
type Cache struct {
	mu      sync.RWMutex
	seen    map[string]*cacheEntry
	order   *list.List // keys in insertion order, oldest at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a cache with the given TTL and maximum size.
// A background goroutine periodically removes expired entries.
func New(ttl time.Duration, maxSize int) *Cache {
	return newCache(ttl, maxSize, time.Now)
}

func newCache(ttl time.Duration, maxSize int, now func() time.Time) *Cache {
	c := &Cache{
		seen:    make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     now,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Claim atomically reserves key for the caller unless a live entry exists.
// On Done the earlier result is returned.
func (c *Cache) Claim(key string) (string, ClaimState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.liveLocked(key); ok {
		if entry.value == "" {
			return "", InFlight
		}
		return entry.value, Done
	}

	c.putLocked(key, "")
	return "", Claimed
}

// Complete records value as the result of a claimed key.
func (c *Cache) Complete(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, value)
}

// Release drops an unfinished claim so the key can be retried.
// Completed entries are left alone.
func (c *Cache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.seen[key]
	if !ok || entry.value != "" {
		return
	}
	c.order.Remove(entry.element)
	delete(c.seen, key)
}

// Len returns the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.seen)
}

// liveLocked returns the unexpired entry for key. Must be called with mu held.
func (c *Cache) liveLocked(key string) (*cacheEntry, bool) {
	entry, ok := c.seen[key]
	if !ok || c.now().Sub(entry.timestamp) >= c.ttl {
		return nil, false
	}
	return entry, true
}

// putLocked stores value under key. Must be called with mu held.
func (c *Cache) putLocked(key, value string) {
	now := c.now()

	if entry, exists := c.seen[key]; exists {
		entry.value = value
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.seen[key] = &cacheEntry{
		value:     value,
		timestamp: now,
		element:   elem,
	}
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.seen, key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries.
func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.seen {
		if now.Sub(entry.timestamp) >= c.ttl {
			c.order.Remove(entry.element)
			delete(c.seen, key)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
