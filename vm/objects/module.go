package objects

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// InvalidIndex is the sentinel "no such index" value (spec §9 "the
// sentinel value u32::MAX must remain invalid"), used for Module.InitIndex
// when a module declares no initializer.
const InvalidIndex = -1

// Module holds a module's materialized members tuple and export table
// (spec §3/§4.7/§4.8).
type Module struct {
	heap.Header
	Name        *String
	Members     *Tuple
	Exports     map[*Symbol]int // symbol -> member index
	ExportOrder []*Symbol        // preserves declaration order for iteration/diagnostics
	InitIndex   int              // InvalidIndex if none
	Initialized bool
}

// NewModule allocates a Module with an empty members tuple of the given
// size and no exports yet (the loader populates both).
func NewModule(h *heap.Heap, t *types.Type, name *String, memberCount int, tupleType *types.Type) *Module {
	m := &Module{
		Name:      name,
		Members:   NewTuple(h, tupleType, memberCount),
		Exports:   make(map[*Symbol]int),
		InitIndex: InvalidIndex,
	}
	h.AllocateInto(&m.Header, t, 0)
	m.Header.Payload = m
	return m
}

// AddExport registers symbol -> memberIndex, returning false if symbol is
// already exported (spec §4.7 "duplicate export names fail with
// DuplicateExport").
func (m *Module) AddExport(sym *Symbol, memberIndex int) bool {
	if _, exists := m.Exports[sym]; exists {
		return false
	}
	m.Exports[sym] = memberIndex
	m.ExportOrder = append(m.ExportOrder, sym)
	return true
}

// Export looks up an exported member's current value by symbol.
func (m *Module) Export(sym *Symbol) (value.Value, bool) {
	idx, ok := m.Exports[sym]
	if !ok {
		return value.Value{}, false
	}
	return m.Members.Get(idx)
}

// UnresolvedImport is the placeholder value written into a module's
// members tuple while an Import member's target module is pending (spec
// §3/§4.7/§4.8).
type UnresolvedImport struct {
	heap.Header
	ModuleName *String
}

// NewUnresolvedImport allocates a placeholder for an import of the module
// named by moduleName.
func NewUnresolvedImport(h *heap.Heap, t *types.Type, moduleName *String) *UnresolvedImport {
	u := &UnresolvedImport{ModuleName: moduleName}
	h.AllocateInto(&u.Header, t, 0)
	u.Header.Payload = u
	return u
}
