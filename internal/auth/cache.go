package auth

import (
	"sync"
	"time"

	"github.com/use-overseer/Orquesta/internal/adapters/repository"
)

// entry is a single validated token held in the cache list.
type entry struct {
	key  string
	rec  repository.TokenRecord
	next *entry
}

// tokenCache remembers recently validated tokens so neither the bcrypt
// comparison nor the store lookup is paid on every request. Bounded: when
// full, the oldest insertion is evicted. Revocation drops all entries for
// the token id.
type tokenCache struct {
	mu      sync.RWMutex
	seen    map[string]*entry
	head    *entry
	maxSize int
}

func newTokenCache(maxSize int) *tokenCache {
	return &tokenCache{
		seen:    make(map[string]*entry),
		maxSize: maxSize,
	}
}

// get returns the record cached under key, if present and not expired.
func (c *tokenCache) get(key string, now time.Time) (repository.TokenRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.seen[key]
	if !ok {
		return repository.TokenRecord{}, false
	}
	if !e.rec.ExpiresAt.IsZero() && now.After(e.rec.ExpiresAt) {
		return repository.TokenRecord{}, false
	}
	return e.rec, true
}

// put records a validated token.
func (c *tokenCache) put(key string, rec repository.TokenRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.seen[key]; exists {
		return
	}

	if len(c.seen) >= c.maxSize {
		c.evictOldest()
	}

	e := &entry{key: key, rec: rec, next: c.head}
	c.head = e
	c.seen[key] = e
}

// drop removes every cached entry for a token id.
func (c *tokenCache) drop(tokenID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var prev *entry
	cur := c.head
	for cur != nil {
		if cur.rec.ID == tokenID {
			delete(c.seen, cur.key)
			if prev == nil {
				c.head = cur.next
			} else {
				prev.next = cur.next
			}
			cur = cur.next
			continue
		}
		prev = cur
		cur = cur.next
	}
}

// evictOldest removes the tail of the list. Callers hold the write lock.
func (c *tokenCache) evictOldest() {
	if c.head == nil {
		return
	}
	if c.head.next == nil {
		delete(c.seen, c.head.key)
		c.head = nil
		return
	}

	prev := c.head
	for prev.next.next != nil {
		prev = prev.next
	}
	delete(c.seen, prev.next.key)
	prev.next = nil
}

// size returns the number of cached entries.
func (c *tokenCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.seen)
}
