package syncx

import "testing"

func TestMapStoreLoadDelete(t *testing.T) {
	var m Map[string, int]

	if _, ok := m.Load("a"); ok {
		t.Fatal("load on empty map reported a value")
	}

	m.Store("a", 1)
	m.Store("b", 2)

	if value, ok := m.Load("a"); !ok || value != 1 {
		t.Fatalf("loaded (%d, %v), expected (1, true)", value, ok)
	}

	if m.Len() != 2 {
		t.Fatalf("len %d, expected 2", m.Len())
	}

	m.Delete("a")

	if _, ok := m.Load("a"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestMapRangeStopsEarly(t *testing.T) {
	var m Map[int, string]

	m.Store(1, "a")
	m.Store(2, "b")
	m.Store(3, "c")

	visited := 0
	m.Range(func(key int, value string) bool {
		visited++
		return false
	})

	if visited != 1 {
		t.Fatalf("range visited %d entries after returning false, expected 1", visited)
	}
}
