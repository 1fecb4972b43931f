package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
)

// Symbol is a reference-equality identifier backed by an interned String
// (spec §3 "Symbol ... carrying a name String; interned per context").
// Two Symbols are ever equal iff they are the same pointer; the intern
// table (package intern) is the only place that constructs them, one per
// unique name.
type Symbol struct {
	heap.Header
	Name *String
}

// NewSymbol allocates a Symbol over an already-interned name String.
func NewSymbol(h *heap.Heap, t *types.Type, name *String) *Symbol {
	s := &Symbol{Name: name}
	h.AllocateInto(&s.Header, t, 0)
	s.Header.Payload = s
	return s
}

// String renders the symbol's backing name for diagnostics.
func (s *Symbol) String() string { return s.Name.String() }
