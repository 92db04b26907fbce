package hashmap

import "testing"

func TestFNV1aStability(t *testing.T) {
	if got := hashKey(""); got != 0xcbf29ce484222325 {
		t.Errorf("hashKey(\"\") = %#x, want 0xcbf29ce484222325", got)
	}
	if got := hashKey("a"); got != 0xaf63dc4c8601ec8c {
		t.Errorf("hashKey(\"a\") = %#x, want 0xaf63dc4c8601ec8c", got)
	}
}

func TestInsertLookupDelete(t *testing.T) {
	m := New()
	if existed := m.Insert("x", 1); existed {
		t.Fatalf("Insert(x) reported existing on first insert")
	}
	if existed := m.Insert("x", 2); !existed {
		t.Fatalf("Insert(x) should report existing on overwrite")
	}
	v, ok := m.Lookup("x")
	if !ok || v.(int) != 2 {
		t.Fatalf("Lookup(x) = %v, %v; want 2, true", v, ok)
	}
	if _, ok := m.Lookup("y"); ok {
		t.Fatalf("Lookup(y) should miss")
	}
	m.Delete("x")
	if _, ok := m.Lookup("x"); ok {
		t.Fatalf("Lookup(x) should miss after delete")
	}
}

func TestResizeOnLoadFactor(t *testing.T) {
	m := New()
	for i := 0; i < 200; i++ {
		m.Insert(string(rune('a'+i%26))+string(rune(i)), i)
	}
	if m.Cap() <= initialCapacity {
		t.Fatalf("expected map to have resized past initial capacity, got cap=%d", m.Cap())
	}
	count := 0
	m.ForEach(func(string, interface{}) { count++ })
	if count != m.Len() {
		t.Fatalf("ForEach visited %d entries, Len() = %d", count, m.Len())
	}
}
