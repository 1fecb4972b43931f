package types

// Table is the closed set of internal Type descriptors for all builtin
// object kinds, built once per context (spec §3: "Type system ... internal
// type descriptors mapping value kinds to method tables").
type Table struct {
	byKind [int(KindStringBuilder) + 1]*Type
}

// NewTable allocates one Type per Kind, each with an empty method table.
// No package in the runtime defines methods on them; entries exist only
// once a caller adds them via Table.Of(kind).Define(...).
func NewTable() *Table {
	t := &Table{}
	for k := Kind(0); k <= KindStringBuilder; k++ {
		t.byKind[k] = NewType(k)
	}
	return t
}

// Of returns the shared Type descriptor for k.
func (t *Table) Of(k Kind) *Type {
	return t.byKind[k]
}
