// Package hashmap implements the open-addressed string-keyed map used by
// scopes (internal/symtab). IR-level CSE does not use it: internal/ir keeps
// its own Go map keyed by the FNV-1a content hash.
//
// Grounded on original_source/src/hashmap.c and include/hashmap.h: linear
// probing, power-of-two capacity starting at 16, load factor 0.65, doubled
// on overflow, tombstoneless delete. The map owns key strings; values are
// stored as interface{} and are never freed by the map itself (there is no
// Go-level ownership to release, but the contract mirrors the C map: values
// are the caller's concern).
package hashmap

import "hash/fnv"

const (
	initialCapacity = 16
	loadFactor      = 0.65
)

type entry struct {
	key      string
	value    interface{}
	occupied bool
}

// Map is an open-addressed, linear-probed hash map keyed by string.
type Map struct {
	entries []entry
	size    int
}

// New creates an empty map with the initial capacity.
func New() *Map {
	return &Map{entries: make([]entry, initialCapacity)}
}

// Len returns the number of entries currently stored.
func (m *Map) Len() int { return m.size }

// Cap returns the current table capacity.
func (m *Map) Cap() int { return len(m.entries) }

// hashKey computes the FNV-1a 64-bit hash of key.
//
// Equivalent to fnv1a64 in original_source/src/util.c (seed
// 0xcbf29ce484222325, prime 0x100000001b3); stdlib hash/fnv implements the
// identical algorithm bit-for-bit, so there is no need to hand-roll it here
// (see DESIGN.md).
func hashKey(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

func (m *Map) slot(key string) int {
	mask := uint64(len(m.entries) - 1)
	idx := hashKey(key) & mask
	for {
		e := &m.entries[idx]
		if !e.occupied || e.key == key {
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

// Insert stores key → value, overwriting any existing value for key.
// Reports whether key already existed (callers that forbid redeclaration
// treat true as fatal, per internal/symtab).
func (m *Map) Insert(key string, value interface{}) bool {
	if float64(m.size+1) >= float64(len(m.entries))*loadFactor {
		m.resize(len(m.entries) * 2)
	}
	idx := m.slot(key)
	e := &m.entries[idx]
	if e.occupied {
		e.value = value
		return true
	}
	e.key = key
	e.value = value
	e.occupied = true
	m.size++
	return false
}

// Lookup returns the value for key and whether it was found.
//
// The search scans by exact key-length-bounded comparison, never by
// substring, and stops at the first empty slot — matching
// hashmap_lookup2 in original_source/src/hashmap.c.
func (m *Map) Lookup(key string) (interface{}, bool) {
	mask := uint64(len(m.entries) - 1)
	idx := hashKey(key) & mask
	for {
		e := &m.entries[idx]
		if !e.occupied {
			return nil, false
		}
		if e.key == key {
			return e.value, true
		}
		idx = (idx + 1) & mask
	}
}

// Delete clears the slot for key, if present. Tombstoneless, per §3.4's
// open question: a lookup that crosses a deleted slot after an insert
// conflict can fail to find an existing key. Preserved faithfully rather
// than silently "fixed", and called out again in DESIGN.md.
func (m *Map) Delete(key string) {
	mask := uint64(len(m.entries) - 1)
	idx := hashKey(key) & mask
	for {
		e := &m.entries[idx]
		if !e.occupied {
			return
		}
		if e.key == key {
			*e = entry{}
			m.size--
			return
		}
		idx = (idx + 1) & mask
	}
}

// Clear empties the map without shrinking its capacity.
func (m *Map) Clear() {
	for i := range m.entries {
		m.entries[i] = entry{}
	}
	m.size = 0
}

func (m *Map) resize(newCap int) {
	old := m.entries
	m.entries = make([]entry, newCap)
	m.size = 0
	for _, e := range old {
		if e.occupied {
			m.Insert(e.key, e.value)
		}
	}
}

// ForEach calls fn for every occupied entry. Iteration order is the table's
// physical slot order and is unspecified, matching original_source's
// hashmap_foreach.
func (m *Map) ForEach(fn func(key string, value interface{})) {
	for _, e := range m.entries {
		if e.occupied {
			fn(e.key, e.value)
		}
	}
}
