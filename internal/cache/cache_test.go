package cache

import "testing"

func TestTableGetSet(t *testing.T) {
	var c Cache[string, int] = NewTable[string, int]()

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty table should miss")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	if v, ok := c.Get("a"); !ok || v != 3 {
		t.Fatalf("Get(a) = %d, %v; want 3, true", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
}

func TestTableNeverEvicts(t *testing.T) {
	tbl := NewTable[int, string]()
	for i := 0; i < 100; i++ {
		tbl.Set(i, "x")
	}
	if tbl.Size() != 100 {
		t.Fatalf("expected 100 entries, no eviction")
	}
	if _, ok := tbl.Get(0); !ok {
		t.Fatal("first entry must still be present")
	}
}
