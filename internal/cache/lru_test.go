package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with 1, got %d %v", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("expected overwrite to 2, got %d", v)
	}
	if c.Size() != 1 {
		t.Fatalf("overwrite must not grow cache, size %d", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh "a" so "b" becomes the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected least recently used key evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used key must survive eviction")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[int](10, -time.Second)
	c.Set("a", 1)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}

	c.Set("b", 2)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache after cleanup, size %d", c.Size())
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	for month := 1; month <= 3; month++ {
		c.Set(fmt.Sprintf("user-1/2024-%02d", month), "summary")
	}
	c.Set("user-2/2024-01", "summary")

	if n := c.DeletePrefix("user-1/"); n != 3 {
		t.Fatalf("expected 3 removed, got %d", n)
	}
	if _, ok := c.Get("user-2/2024-01"); !ok {
		t.Fatal("other user's entries must survive")
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 entry left, got %d", c.Size())
	}
}
