package types

import "testing"

func TestPrimitiveSizes(t *testing.T) {
	cases := map[Kind]int{
		Void:   0,
		Int:    4,
		Uint:   4,
		Float:  4,
		Double: 8,
		Char:   1,
		Bool:   1,
	}
	for kind, size := range cases {
		if got := Primitives[kind].Size; got != size {
			t.Errorf("Primitives[%s].Size = %d, want %d", kind, got, size)
		}
	}
}

func TestLookup(t *testing.T) {
	ty := Lookup("int")
	if ty == nil || ty.Kind != Int {
		t.Fatalf("Lookup(\"int\") = %v, want Int", ty)
	}
	if Lookup("nope") != nil {
		t.Fatalf("Lookup(\"nope\") should be nil")
	}
}
