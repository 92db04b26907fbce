// Package symtab implements nested lexical scopes and the symbols they
// hold: variables, functions and types.
//
// Grounded on original_source/src/symtab.c and include/symtab.h, ported
// from its hand-rolled C linked structures to Go structs backed by
// internal/hashmap.
package symtab

import "neo/internal/hashmap"

// Kind discriminates a symbol's role.
type Kind int

const (
	Var Kind = iota
	Func
	TypeSym
)

// Symbol is a named entity discovered during parsing: a variable, a
// function or a type. Node is the symbol's defining AST node (nil for the
// primitive types installed at startup). Node and Type are typed as
// interface{}, so symtab imports neither internal/ast nor internal/types.
type Symbol struct {
	Kind Kind
	Name string
	Node interface{}
	Type interface{} // *types.Type
}

// Scope is a lexical region: its own symbol map plus a parent pointer.
// The global scope has a nil parent and persists for the process
// lifetime; function scopes are created on entry and freed on exit.
type Scope struct {
	Name    string
	Symbols *hashmap.Map
	Parent  *Scope
}

// New creates an empty scope with no parent.
func New(name string) *Scope {
	return &Scope{Name: name, Symbols: hashmap.New()}
}

// NewChild creates a scope nested inside parent.
func NewChild(name string, parent *Scope) *Scope {
	return &Scope{Name: name, Symbols: hashmap.New(), Parent: parent}
}

// Add inserts sym keyed by sym.Name. It reports whether the name already
// existed in this scope (same-scope redeclaration is fatal at the call
// site, per §3.3's invariants — symtab itself only reports, it does not
// panic).
func (s *Scope) Add(sym *Symbol) bool {
	return s.Symbols.Insert(sym.Name, sym)
}

// Find walks the parent chain, returning the first symbol named name or
// nil. Lookup is by exact key match (internal/hashmap), never substring.
func Find(scope *Scope, name string) *Symbol {
	for sc := scope; sc != nil; sc = sc.Parent {
		if v, ok := sc.Symbols.Lookup(name); ok {
			return v.(*Symbol)
		}
	}
	return nil
}

// Free releases the scope's map. Matches the C scope_free: only the map's
// key storage is released, never the symbols' values (owned by the AST).
func Free(scope *Scope) {
	if scope != nil {
		scope.Symbols.Clear()
	}
}
