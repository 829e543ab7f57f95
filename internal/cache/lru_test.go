package cache

import (
	"testing"
	"time"
)

func TestLRUGetPut(t *testing.T) {
	c := NewLRU[string, int](Config{MaxSize: 2}, nil)

	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	// b is now least recently used.
	c.Put("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}

	s := c.Stats()
	if s.Evictions != 1 || s.Size != 2 || s.MaxSize != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", s.Hits, s.Misses)
	}
}

func TestLRUOnEvict(t *testing.T) {
	var evicted []string
	c := NewLRU[string, int](Config{MaxSize: 1}, func(k string, _ int) {
		evicted = append(evicted, k)
	})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Remove("b")
	c.Put("c", 3)
	c.Put("d", 4)
	c.Clear()

	want := []string{"a", "b", "c", "d"}
	if len(evicted) != len(want) {
		t.Fatalf("evicted = %v, want %v", evicted, want)
	}
	for i := range want {
		if evicted[i] != want[i] {
			t.Errorf("evicted = %v, want %v", evicted, want)
			break
		}
	}
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestLRUTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var evicted int
	c := NewLRU[string, int](Config{TTL: time.Minute}, func(string, int) { evicted++ })
	c.now = func() time.Time { return now }

	c.Put("a", 1)
	now = now.Add(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired early")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("entry did not expire")
	}
	if evicted != 1 {
		t.Errorf("onEvict calls = %d, want 1", evicted)
	}
}

func TestLRUUnlimited(t *testing.T) {
	c := NewLRU[int, int](Config{MaxSize: -1}, nil)
	for i := 0; i < 100; i++ {
		c.Put(i, i)
	}
	if c.Len() != 100 {
		t.Errorf("Len = %d, want 100", c.Len())
	}
}
