package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s evicted", k)
		}
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestSetReplaces(t *testing.T) {
	c := New[int, string](4)
	c.Set(1, "x")
	c.Set(1, "y")
	if v, _ := c.Get(1); v != "y" {
		t.Errorf("Get(1) = %q, want y", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](4)
	calls := 0
	create := func() (int, error) { calls++; return 7, nil }
	for range 3 {
		v, err := c.GetOrCreate("k", create)
		if err != nil || v != 7 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed value was stored")
	}

	want := Stats{Len: 1, Hits: 2, Misses: 3}
	if diff := cmp.Diff(want, c.Stats()); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := New[int, int](0)
	if c.Capacity() != 1 {
		t.Errorf("Capacity() = %d, want 1", c.Capacity())
	}
	c.Set(1, 1)
	c.Set(2, 2)
	if s := c.Stats(); s.Evictions != 1 || s.Len != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if !c.Delete(2) || c.Delete(2) {
		t.Error("Delete reported wrong presence")
	}
	c.Set(3, 3)
	c.Clear()
	if c.Len() != 0 || c.Stats() != (Stats{}) {
		t.Errorf("not empty after Clear: %+v", c.Stats())
	}
	c.Set(4, 4)
	if v, ok := c.Get(4); !ok || v != 4 {
		t.Error("cache unusable after Clear")
	}
}

func TestHitRate(t *testing.T) {
	if got := (Stats{}).HitRate(); got != 0 {
		t.Errorf("empty HitRate() = %v", got)
	}
	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 0.75 {
		t.Errorf("HitRate() = %v, want 0.75", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := (g*31 + i) % 40
				if v, ok := c.Get(k); ok && v != k*2 {
					t.Errorf("Get(%d) = %d", k, v)
				}
				c.Set(k, k*2)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
