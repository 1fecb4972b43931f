package types

// Kind enumerates the object kinds of spec §3. Every heap object's header
// carries exactly one of these via its *Type, and type_of(v) is defined as
// a read of that field.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindUndefined
	KindInteger
	KindFloat
	KindString
	KindSymbol
	KindTuple
	KindArray
	KindRecord
	KindHashTable
	KindSet
	KindRecordTemplate
	KindBytecodeCode
	KindFunctionTemplate
	KindClosureContext
	KindFunction
	KindBoundMethod
	KindNativeFunction
	KindNativeObject
	KindModule
	KindUnresolvedImport
	KindCoroutine
	KindCoroutineStack
	KindInternalType
	KindIterator
	KindStringBuilder
)

// String renders a Kind for diagnostics and panic messages.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

var kindNames = [...]string{
	KindNull:             "null",
	KindBoolean:          "boolean",
	KindUndefined:        "undefined",
	KindInteger:          "integer",
	KindFloat:            "float",
	KindString:           "string",
	KindSymbol:           "symbol",
	KindTuple:            "tuple",
	KindArray:            "array",
	KindRecord:           "record",
	KindHashTable:        "hash_table",
	KindSet:              "set",
	KindRecordTemplate:   "record_template",
	KindBytecodeCode:     "bytecode_code",
	KindFunctionTemplate: "function_template",
	KindClosureContext:   "closure_context",
	KindFunction:         "function",
	KindBoundMethod:      "bound_method",
	KindNativeFunction:   "native_function",
	KindNativeObject:     "native_object",
	KindModule:           "module",
	KindUnresolvedImport: "unresolved_import",
	KindCoroutine:        "coroutine",
	KindCoroutineStack:   "coroutine_stack",
	KindInternalType:     "internal_type",
	KindIterator:         "iterator",
	KindStringBuilder:    "string_builder",
}

// Method is a host- or bytecode-backed callable reachable through method
// dispatch (spec §4.5). Receiver is passed explicitly; Arity is the
// minimum argument count the callable expects (excluding the receiver).
type Method struct {
	Name  string
	Arity int
	// Builtin, when non-nil, is invoked directly by the interpreter's
	// method-dispatch fast path instead of pushing a bytecode frame. Args
	// excludes the receiver; receiver is passed separately. This mirrors
	// how native functions are invoked (spec §4.5 "Function call").
	Builtin func(recv any, args []any) (any, error)
}

// Type is the internal type descriptor for one object Kind: a name for
// diagnostics and a method table consulted by load_method (spec §4.5).
//
// Type values are created once per Kind at context initialization and are
// never mutated afterward, so a *Type pointer is safe to share across every
// object of that Kind without synchronization.
type Type struct {
	Kind    Kind
	Name    string
	methods map[string]*Method
}

// NewType creates a Type for the given Kind with an empty method table.
func NewType(k Kind) *Type {
	return &Type{Kind: k, Name: k.String(), methods: make(map[string]*Method)}
}

// Define registers a method under name, overwriting any previous entry.
// Intended to be called only during context/type-table setup, never from
// the interpreter's hot path.
func (t *Type) Define(m *Method) {
	t.methods[m.Name] = m
}

// Lookup returns the method named name on this type, if any. This is the
// operation backing load_method's "resolves to a method" branch.
func (t *Type) Lookup(name string) (*Method, bool) {
	m, ok := t.methods[name]
	return m, ok
}
