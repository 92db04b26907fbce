// Package types holds the process-wide table of primitive types.
//
// Grounded on original_source/include/types.h and src/types.c: a fixed
// array of seven primitives, each carrying a kind, a name, a size and an
// alignment. A *Type is always a pointer into this table (or, eventually,
// into user-defined-type storage not yet implemented).
package types

// Kind discriminates a primitive type.
type Kind int

const (
	Void Kind = iota
	Int
	Uint
	Float
	Double
	Char
	Bool
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Double:
		return "double"
	case Char:
		return "char"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Type is an entry in the primitive table.
type Type struct {
	Kind  Kind
	Name  string
	Size  int
	Align int
	// Ptr is reserved for pointer types; always 0 for the primitive table.
	Ptr int
}

// Primitives is the immutable, process-wide registry of primitive types.
// Index with Kind.
var Primitives = [...]Type{
	Void:   {Kind: Void, Name: "void", Size: 0, Align: 0},
	Int:    {Kind: Int, Name: "int", Size: 4, Align: 0},
	Uint:   {Kind: Uint, Name: "uint", Size: 4, Align: 0},
	Float:  {Kind: Float, Name: "float", Size: 4, Align: 0},
	Double: {Kind: Double, Name: "double", Size: 8, Align: 0},
	Char:   {Kind: Char, Name: "char", Size: 1, Align: 0},
	Bool:   {Kind: Bool, Name: "bool", Size: 1, Align: 0},
}

// String renders the type's canonical name.
func (t *Type) String() string {
	if t == nil {
		return "<none>"
	}
	return t.Name
}

// Lookup returns the primitive type named name, or nil if there is none.
func Lookup(name string) *Type {
	for i := range Primitives {
		if Primitives[i].Name == name {
			return &Primitives[i]
		}
	}
	return nil
}
