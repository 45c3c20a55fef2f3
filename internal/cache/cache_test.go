// ABOUTME: Tests for the LRU embedding cache
// ABOUTME: Verifies capacity bound, eviction order, and key normalization
package cache

import (
	"fmt"
	"sync"
	"testing"
)

func vec(seed float32) []float32 {
	return []float32{seed, seed + 1, seed + 2}
}

func TestCacheGetPut(t *testing.T) {
	c := New(10)

	if got := c.Get("missing"); got != nil {
		t.Errorf("Get() on empty cache = %v, want nil", got)
	}

	c.Put("a", vec(1))
	got := c.Get("a")
	if got == nil {
		t.Fatal("Get() after Put returned nil")
	}
	if got[0] != 1 {
		t.Errorf("Get()[0] = %v, want 1", got[0])
	}

	// Replace existing key
	c.Put("a", vec(9))
	got = c.Get("a")
	if got[0] != 9 {
		t.Errorf("Get() after replace = %v, want 9", got[0])
	}

	stats := c.Stats()
	if stats.Size != 1 {
		t.Errorf("Size = %d, want 1 (replace must not grow the cache)", stats.Size)
	}
}

func TestCacheEviction(t *testing.T) {
	c := New(2)

	c.Put("a", vec(1))
	c.Put("b", vec(2))
	c.Put("c", vec(3))

	if got := c.Get("a"); got != nil {
		t.Errorf(`Get("a") = %v, want nil (evicted as least recently used)`, got)
	}
	if got := c.Get("b"); got == nil {
		t.Error(`Get("b") = nil, want hit`)
	}
	if got := c.Get("c"); got == nil {
		t.Error(`Get("c") = nil, want hit`)
	}
}

func TestCacheEviction_GetBumpsRecency(t *testing.T) {
	c := New(2)

	c.Put("a", vec(1))
	c.Put("b", vec(2))

	// Touch "a" so "b" becomes LRU
	if got := c.Get("a"); got == nil {
		t.Fatal(`Get("a") = nil, want hit`)
	}

	c.Put("c", vec(3))

	if got := c.Get("b"); got != nil {
		t.Error(`Get("b") should miss after eviction`)
	}
	if got := c.Get("a"); got == nil {
		t.Error(`Get("a") should still hit`)
	}
}

func TestCacheCapacityBound(t *testing.T) {
	c := New(5)

	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("key-%d", i), vec(float32(i)))
		if stats := c.Stats(); stats.Size > stats.Capacity {
			t.Fatalf("size %d exceeds capacity %d after put %d", stats.Size, stats.Capacity, i)
		}
	}

	stats := c.Stats()
	if stats.Size != 5 {
		t.Errorf("Size = %d, want 5", stats.Size)
	}
}

func TestCacheClear(t *testing.T) {
	c := New(10)
	c.Put("a", vec(1))
	c.Put("b", vec(2))

	c.Clear()

	stats := c.Stats()
	if stats.Size != 0 {
		t.Errorf("Size after Clear = %d, want 0", stats.Size)
	}
	if got := c.Get("a"); got != nil {
		t.Errorf("Get() after Clear = %v, want nil", got)
	}
}

func TestCacheStatsCounters(t *testing.T) {
	c := New(10)
	c.Put("a", vec(1))

	c.Get("a")
	c.Get("a")
	c.Get("nope")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestKeyNormalization(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"whitespace collapsed", "hello  world", "hello world", true},
		{"case folded", "Hello World", "hello world", true},
		{"leading/trailing space", "  hello world  ", "hello world", true},
		{"different content", "hello world", "goodbye world", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (Key(tt.a) == Key(tt.b)) != tt.same {
				t.Errorf("Key(%q) == Key(%q) = %v, want %v", tt.a, tt.b, !tt.same, tt.same)
			}
		})
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i%60)
				if i%3 == 0 {
					c.Put(key, vec(float32(i)))
				} else {
					c.Get(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if stats := c.Stats(); stats.Size > stats.Capacity {
		t.Errorf("size %d exceeds capacity %d after concurrent access", stats.Size, stats.Capacity)
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := New(1000)
	for i := 0; i < 1000; i++ {
		c.Put(fmt.Sprintf("key-%d", i), vec(float32(i)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(fmt.Sprintf("key-%d", i%1000))
	}
}
