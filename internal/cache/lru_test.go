package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func TestLRUCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](4, 30*time.Second).WithClock(clock.Now)

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}
	clock.t = clock.t.Add(30 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to expire")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry should be removed, size=%d", c.Size())
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("unexpected stats hits=%d misses=%d", hits, misses)
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("recently used entry should survive")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCachePurgeAndClean(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](8, time.Minute).WithClock(clock.Now)
	c.Set("a", 1)
	clock.t = clock.t.Add(45 * time.Second)
	c.Set("b", 2)
	clock.t = clock.t.Add(30 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 expired entry, got %d", n)
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("purge should empty the cache")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("purged entry returned")
	}
}

func TestLRUCacheStartCleanup(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](8, time.Minute).WithClock(clock.Now)
	c.Set("a", 1)
	c.Set("b", 2)
	clock.t = clock.t.Add(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := c.StartCleanup(ctx, time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for c.Size() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expired entries not cleaned, size %d", c.Size())
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup loop did not stop")
	}
}

func TestNoop(t *testing.T) {
	var c Cache[int] = Noop[int]{}
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("noop cache must never hit")
	}
}
