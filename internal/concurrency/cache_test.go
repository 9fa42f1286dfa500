package concurrency

import "testing"

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRU(2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("expected b=2, got %v %v", v, ok)
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("expected c=3, got %v %v", v, ok)
	}
}

func TestLRUGetPromotesToFront(t *testing.T) {
	c := NewLRU(2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")    // promote a
	c.Set("c", 3) // should evict b, not a

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
}
