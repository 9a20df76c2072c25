package coingecko

import (
	"testing"
	"time"
)

func TestResponseCache_ReturnsWithinTTL(t *testing.T) {
	now := time.Now()
	c := newResponseCache(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.set("key", "value")

	// Just inside the window
	now = now.Add(5*time.Minute - time.Millisecond)
	v, ok := c.get("key")
	if !ok {
		t.Fatal("expected cache hit inside TTL window")
	}
	if v.(string) != "value" {
		t.Errorf("got %v, want value", v)
	}
}

func TestResponseCache_ExpiresAtTTL(t *testing.T) {
	now := time.Now()
	c := newResponseCache(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.set("key", "value")

	// Exactly at the boundary the entry is already stale.
	now = now.Add(5 * time.Minute)
	if _, ok := c.get("key"); ok {
		t.Fatal("expected cache miss at TTL boundary")
	}
}

func TestResponseCache_MissingKey(t *testing.T) {
	c := newResponseCache(time.Minute)
	if _, ok := c.get("absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestResponseCache_ReplaceOnSet(t *testing.T) {
	now := time.Now()
	c := newResponseCache(time.Minute)
	c.now = func() time.Time { return now }

	c.set("key", "first")
	now = now.Add(50 * time.Second)
	c.set("key", "second")

	// The replacement reset the clock; the old value is gone.
	now = now.Add(30 * time.Second)
	v, ok := c.get("key")
	if !ok {
		t.Fatal("expected hit after replacement")
	}
	if v.(string) != "second" {
		t.Errorf("got %v, want second", v)
	}
}
