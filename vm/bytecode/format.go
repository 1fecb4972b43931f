package bytecode

// MemberKind tags one of the eight member-definition shapes spec §6.1
// lists.
type MemberKind uint8

const (
	MemberInteger MemberKind = iota
	MemberFloat
	MemberString
	MemberSymbol
	MemberImport
	MemberVariable
	MemberFunction
	MemberRecordTemplate
)

// Member is one tagged entry in a module's members list. Only the fields
// relevant to Kind are populated; all id fields referencing another
// member must satisfy the topological ordering rule (spec §3/§6.1): they
// must be strictly less than the member's own id, except inside a
// function body's code, which may reference any member id including its
// own.
type Member struct {
	Kind MemberKind

	IntegerValue int64
	FloatValue   float64
	StringValue  []byte // MemberString: raw UTF-8 bytes

	NameIndex    MemberId // MemberSymbol, MemberVariable
	InitialIndex MemberId // MemberVariable: InvalidMemberId if absent

	ModuleNameIndex MemberId // MemberImport

	FunctionRef FunctionId // MemberFunction

	TemplateRef RecordTemplateId // MemberRecordTemplate
}

// FunctionTypeTag distinguishes a function that never captures an
// enclosing environment from one instantiated via make_closure (spec
// §4.7).
type FunctionTypeTag uint8

const (
	FunctionTagNormal FunctionTypeTag = iota
	FunctionTagClosure
)

// FunctionDef is one entry in a module's functions list (spec §6.1).
type FunctionDef struct {
	Name   string // empty if unnamed
	Params uint32
	Locals uint32
	Tag    FunctionTypeTag
	Code   []byte
}

// RecordTemplateDef is a sequence of member ids denoting Symbol keys
// (spec §6.1).
type RecordTemplateDef struct {
	KeyMemberIds []MemberId
}

// Export is a (symbol_index, value_index) pair (spec §6.1).
type Export struct {
	SymbolIndex MemberId
	ValueIndex  MemberId
}

// Module is the decoded, in-memory form of a serialized bytecode module
// (spec §6.1 "logical" format). It is the loader's sole input.
type Module struct {
	Name    string
	Init    MemberId // InvalidMemberId if the module has no initializer

	Members         []Member
	Functions       []FunctionDef
	RecordTemplates []RecordTemplateDef
	Exports         []Export
}
