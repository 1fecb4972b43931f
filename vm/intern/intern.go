package intern

import (
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
)

// Strings is the context's interned-string table (spec §4.4
// String.intern). It is one of the collector's mark-phase roots (spec
// §4.6 "process-wide constants ... string intern table"), so the
// collector must walk it explicitly; it is not reachable from any other
// root on its own.
type Strings struct {
	heap  *heap.Heap
	typ   *types.Type
	byKey map[string]*objects.String
}

// NewStrings creates an empty table that allocates new Strings on h using
// typ as their header type.
func NewStrings(h *heap.Heap, typ *types.Type) *Strings {
	return &Strings{heap: h, typ: typ, byKey: make(map[string]*objects.String)}
}

// Intern returns the canonical String for s's bytes: an existing entry if
// one is character-equal, otherwise a freshly allocated and registered
// one (spec §4.4).
func (t *Strings) Intern(s []byte) *objects.String {
	key := string(s)
	if existing, ok := t.byKey[key]; ok {
		return existing
	}
	str := objects.NewString(t.heap, t.typ, []byte(key))
	str.MarkInterned()
	t.byKey[key] = str
	return str
}

// Lookup returns the interned String for s's bytes without creating one.
func (t *Strings) Lookup(s []byte) (*objects.String, bool) {
	str, ok := t.byKey[string(s)]
	return str, ok
}

// Walk calls f with every interned String, for the collector's mark
// phase.
func (t *Strings) Walk(f func(*objects.String)) {
	for _, s := range t.byKey {
		f(s)
	}
}

// Symbols is the context's interned-symbol table, keyed by the backing
// interned String's identity (spec §4.4 "symbols are always backed by
// interned strings").
type Symbols struct {
	heap  *heap.Heap
	typ   *types.Type
	byKey map[*objects.String]*objects.Symbol
}

// NewSymbols creates an empty symbol table.
func NewSymbols(h *heap.Heap, typ *types.Type) *Symbols {
	return &Symbols{heap: h, typ: typ, byKey: make(map[*objects.String]*objects.Symbol)}
}

// Intern returns the canonical Symbol for an already-interned name
// String.
func (t *Symbols) Intern(name *objects.String) *objects.Symbol {
	if existing, ok := t.byKey[name]; ok {
		return existing
	}
	sym := objects.NewSymbol(t.heap, t.typ, name)
	t.byKey[name] = sym
	return sym
}

// Walk calls f with every interned Symbol, for the collector's mark
// phase.
func (t *Symbols) Walk(f func(*objects.Symbol)) {
	for _, s := range t.byKey {
		f(s)
	}
}
