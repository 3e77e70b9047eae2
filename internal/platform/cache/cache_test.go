package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](10)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("a", "uno", 0)
	got, ok := c.Get("a")
	if !ok || got != "uno" {
		t.Fatalf("Get(a) = %q, %v; want uno, true", got, ok)
	}

	c.Set("a", "dos", 0)
	got, _ = c.Get("a")
	if got != "dos" {
		t.Fatalf("Get(a) after overwrite = %q; want dos", got)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d; want 1", c.Size())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[int](10)
	c.Set("short", 1, 10*time.Millisecond)
	c.Set("forever", 2, 0)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Fatal("expired entry should miss")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Fatal("ttl 0 entry should never expire")
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](3)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	// Touch "a" so "b" becomes the LRU entry.
	c.Get("a")
	c.Set("d", 4, 0)

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b evicted as LRU")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("expected %s to survive eviction", key)
		}
	}
	if c.Size() != 3 {
		t.Fatalf("Size = %d; want 3", c.Size())
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int](10)
	c.Set("a", 1, 0)
	c.Delete("a")
	c.Delete("a") // second delete is a no-op
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry should miss")
	}

	c.Set("b", 2, 0)
	c.Set("c", 3, 0)
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size after Clear = %d; want 0", c.Size())
	}
}

func TestCleanExpired(t *testing.T) {
	c := New[int](10)
	c.Set("live", 1, time.Hour)
	c.Set("dead1", 2, time.Nanosecond)
	c.Set("dead2", 3, time.Nanosecond)

	time.Sleep(time.Millisecond)

	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("CleanExpired = %d; want 2", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d; want 1", c.Size())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](50)
	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k-%d", i%60)
				c.Set(key, w, time.Minute)
				c.Get(key)
			}
		}(w)
	}
	<-done
	<-done
	<-done
	<-done

	if c.Size() > c.Capacity() {
		t.Fatalf("Size %d exceeds capacity %d", c.Size(), c.Capacity())
	}
}

func TestDefaultCapacity(t *testing.T) {
	c := New[int](0)
	if c.Capacity() != 100 {
		t.Fatalf("Capacity = %d; want 100", c.Capacity())
	}
}

func BenchmarkSetGet(b *testing.B) {
	c := New[int](1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("k-%d", i%2000)
		c.Set(key, i, time.Minute)
		c.Get(key)
	}
}
