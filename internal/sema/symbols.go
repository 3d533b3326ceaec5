package sema

import (
	"sort"

	"golang.org/x/exp/maps"

	"tensa/internal/source"
	"tensa/internal/types"
)

// SymbolEntry is what the checker remembers about an assigned name.
type SymbolEntry struct {
	Type types.Type
	// Span of the right-hand side that defined the value; diagnostics about
	// the variable point here rather than at the use site.
	Span source.Span
}

// SymbolTable maps names to entries. There is a single top-level scope:
// the last assignment wins and entries are never removed.
type SymbolTable struct {
	entries map[string]SymbolEntry
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string]SymbolEntry)}
}

// Bind records name, replacing any earlier entry.
func (t *SymbolTable) Bind(name string, ty types.Type, span source.Span) {
	t.entries[name] = SymbolEntry{Type: ty, Span: span}
}

func (t *SymbolTable) Lookup(name string) (SymbolEntry, bool) {
	if t == nil {
		return SymbolEntry{}, false
	}
	e, ok := t.entries[name]
	return e, ok
}

func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Names returns the bound names in lexical order.
func (t *SymbolTable) Names() []string {
	if t == nil {
		return nil
	}
	names := maps.Keys(t.entries)
	sort.Strings(names)
	return names
}
