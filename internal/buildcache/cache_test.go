package buildcache

import "testing"

func TestKeyIsStableAndDiffersByContent(t *testing.T) {
	a := Key([]byte("func main() {}"))
	b := Key([]byte("func main() {}"))
	c := Key([]byte("func main() { var x: int; }"))
	if a != b {
		t.Fatalf("Key should be stable for identical content")
	}
	if a == c {
		t.Fatalf("Key should differ for different content")
	}
}

func TestStoreThenLookup(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	key := Key([]byte("func main() {}"))
	if _, ok, err := cache.Lookup(key); err != nil || ok {
		t.Fatalf("Lookup on empty cache should miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Store(key, "/tmp/main.o"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	obj, ok, err := cache.Lookup(key)
	if err != nil || !ok || obj != "/tmp/main.o" {
		t.Fatalf("Lookup after Store = %q, %v, %v; want /tmp/main.o, true, nil", obj, ok, err)
	}
}
