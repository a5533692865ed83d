package token

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCacheWithClock(func() time.Time { return now })

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("k", "tok-1", now.Add(time.Hour))

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "tok-1" {
		t.Errorf("expected tok-1, got %q", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c := NewCacheWithClock(func() time.Time { return now })

	c.Set("k", "tok-1", base.Add(time.Hour))

	tests := []struct {
		name    string
		at      time.Time
		wantHit bool
	}{
		{"just before expiry", base.Add(time.Hour - time.Nanosecond), true},
		{"exactly at expiry", base.Add(time.Hour), false},
		{"after expiry", base.Add(2 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			_, ok := c.Get("k")
			if ok != tt.wantHit {
				t.Errorf("at %v: expected hit=%v, got %v", tt.at, tt.wantHit, ok)
			}
		})
	}
}

func TestCacheSetOverwrites(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCacheWithClock(func() time.Time { return now })

	c.Set("k", "old", now.Add(time.Hour))
	c.Set("k", "new", now.Add(2*time.Hour))

	got, ok := c.Get("k")
	if !ok || got != "new" {
		t.Fatalf("expected new token, got %q (hit=%v)", got, ok)
	}
	if c.Size() != 1 {
		t.Errorf("expected single entry, got %d", c.Size())
	}
}

func TestCacheEvict(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCacheWithClock(func() time.Time { return now })

	c.Set("a", "tok-a", now.Add(time.Hour))
	c.Set("b", "tok-b", now.Add(time.Hour))

	c.Evict("a")
	c.Evict("missing") // no-op

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to survive")
	}
}

func TestCachePurgeExpired(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c := NewCacheWithClock(func() time.Time { return now })

	c.Set("live", "tok-live", base.Add(time.Hour))
	c.Set("dead", "tok-dead", base.Add(time.Minute))
	c.Set("edge", "tok-edge", base.Add(30*time.Minute))

	now = base.Add(30 * time.Minute)
	removed := c.PurgeExpired()

	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 remaining, got %d", c.Size())
	}
	if _, ok := c.Get("live"); !ok {
		t.Error("expected live entry to survive purge")
	}
}

func TestCacheClear(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCacheWithClock(func() time.Time { return now })

	c.Set("a", "tok-a", now.Add(time.Hour))
	c.Set("b", "tok-b", now.Add(time.Hour))
	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Size())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	expiry := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%3)
			for j := 0; j < 100; j++ {
				c.Set(key, "tok", expiry)
				c.Get(key)
				c.Size()
			}
		}(i)
	}
	wg.Wait()

	if c.Size() != 3 {
		t.Errorf("expected 3 entries, got %d", c.Size())
	}
}
