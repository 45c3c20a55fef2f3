// ABOUTME: Capacity-bounded embedding cache with least-recently-used eviction
// ABOUTME: Keys are hashes of normalized input text; values are float32 vectors
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// DefaultCapacity bounds the cache when no capacity is configured
const DefaultCapacity = 1000

// entry is the value stored in each LRU list element
type entry struct {
	key    string
	vector []float32
}

// Stats is a read-only snapshot of the cache state
type Stats struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
	Hits     int `json:"hits"`
	Misses   int `json:"misses"`
}

// EmbeddingCache is a thread-safe LRU cache for embedding vectors. The LRU
// bump on Get is itself a mutation, so all operations take the lock.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	hits     int
	misses   int
}

// New creates an EmbeddingCache with the given capacity. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Key computes the cache key for a piece of input text: a SHA-256 hash of the
// whitespace-normalized, lowercased content.
func Key(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for key, marking the entry most recently
// used. A miss returns nil with no side effect beyond the miss counter.
func (c *EmbeddingCache) Get(key string) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}

	c.order.MoveToFront(elem)
	c.hits++
	return elem.Value.(*entry).vector
}

// Put inserts or replaces the vector for key. If inserting would exceed
// capacity, the least-recently-used entry is evicted first. Recency ties are
// broken by insertion order (oldest wins eviction) because new entries go to
// the front of the list.
func (c *EmbeddingCache) Put(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*entry).vector = vector
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, vector: vector})
}

// Stats returns a snapshot of the current cache state
func (c *EmbeddingCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:     c.order.Len(),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
}

// Clear empties the cache unconditionally. Counters are preserved.
func (c *EmbeddingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}
