package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dukaanlabs/dukaan/pkg/cache"
)

func TestRememberMissInvokesProducer(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())

	calls := 0
	got, err := cache.Remember(c, "k", time.Minute, func() (string, error) {
		calls++
		return "value", nil
	})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if got != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
}

func TestRememberHitSkipsProducer(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())

	calls := 0
	produce := func() (string, error) {
		calls++
		return "value", nil
	}

	if _, err := cache.Remember(c, "k", time.Minute, produce); err != nil {
		t.Fatalf("first remember: %v", err)
	}
	got, err := cache.Remember(c, "k", time.Minute, produce)
	if err != nil {
		t.Fatalf("second remember: %v", err)
	}
	if got != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
}

func TestRememberProducerError(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New(store)

	boom := errors.New("boom")
	_, err := cache.Remember(c, "k", time.Minute, func() (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want producer error", err)
	}
	if store.Len() != 0 {
		t.Error("failed produce must not populate the cache")
	}
}

func TestRememberExpiry(t *testing.T) {
	store := cache.NewMemoryStore()
	c := cache.New(store)

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	calls := 0
	produce := func() (int, error) {
		calls++
		return calls, nil
	}

	if _, err := cache.Remember(c, "k", 60*time.Second, produce); err != nil {
		t.Fatalf("remember: %v", err)
	}

	// Just inside the TTL: still a hit.
	now = now.Add(59 * time.Second)
	got, _ := cache.Remember(c, "k", 60*time.Second, produce)
	if got != 1 {
		t.Errorf("got %d before expiry, want cached 1", got)
	}

	// Past the TTL: producer runs again.
	now = now.Add(2 * time.Second)
	got, _ = cache.Remember(c, "k", 60*time.Second, produce)
	if got != 2 {
		t.Errorf("got %d after expiry, want fresh 2", got)
	}
}

func TestForget(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())

	if err := c.Put("a", 1, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put("b", 2, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	c.Forget("a", "b", "never-existed")

	var v int
	if c.Get("a", &v) || c.Get("b", &v) {
		t.Error("forgotten keys must miss")
	}
}

func TestGetDetachedCopy(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())

	original := []string{"one", "two"}
	if err := c.Put("k", original, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	original[0] = "mutated"

	var got []string
	if !c.Get("k", &got) {
		t.Fatal("expected hit")
	}
	if got[0] != "one" {
		t.Errorf("cached value shares memory with caller: got %q", got[0])
	}
}
