package handle

import "github.com/emberlang/ember/vm/value"

// Global is a persistently rooted handle: it survives until the holder
// explicitly calls Release, independent of any Scope (spec §4.3 "global
// handles ... registered/unregistered explicitly"). Loaded modules are not
// rooted this way (the collector walks the registry directly); a Global
// roots a value a host keeps between calls.
type Global struct {
	v          value.Value
	table      *GlobalTable
	next, prev *Global
}

// Get returns the rooted value.
func (g *Global) Get() value.Value { return g.v }

// Set replaces the rooted value in place.
func (g *Global) Set(v value.Value) { g.v = v }

// Release unregisters the handle; the value it rooted is no longer a GC
// root as of this call. Release is idempotent.
func (g *Global) Release() {
	if g.table == nil {
		return
	}
	g.table.unregister(g)
	g.table = nil
}

// GlobalTable owns the set of currently registered global handles for one
// context. The collector walks it as a root set alongside open scopes and
// the module registry.
type GlobalTable struct {
	head, tail *Global
	count      int
}

// NewGlobalTable creates an empty table.
func NewGlobalTable() *GlobalTable {
	return &GlobalTable{}
}

// Register roots v and returns a handle the caller must Release when done.
func (t *GlobalTable) Register(v value.Value) *Global {
	g := &Global{v: v, table: t}
	g.prev = t.tail
	if t.tail != nil {
		t.tail.next = g
	} else {
		t.head = g
	}
	t.tail = g
	t.count++
	return g
}

func (t *GlobalTable) unregister(g *Global) {
	if g.prev != nil {
		g.prev.next = g.next
	} else {
		t.head = g.next
	}
	if g.next != nil {
		g.next.prev = g.prev
	} else {
		t.tail = g.prev
	}
	g.next, g.prev = nil, nil
	t.count--
}

// Walk calls f with every currently rooted value.
func (t *GlobalTable) Walk(f func(value.Value)) {
	for cur := t.head; cur != nil; cur = cur.next {
		f(cur.v)
	}
}

// Count returns the number of live global handles.
func (t *GlobalTable) Count() int { return t.count }
