package bytecode

// The newtypes below implement spec §9's re-architecture guidance:
// "Index-typed handles ... implement as distinct newtypes for every
// entity family ... the sentinel value u32::MAX must remain invalid."

const invalid = ^uint32(0)

// MemberId indexes a module's members list.
type MemberId uint32

// Valid reports whether id is not the sentinel.
func (id MemberId) Valid() bool { return uint32(id) != invalid }

// InvalidMemberId is the sentinel "no member" id.
const InvalidMemberId = MemberId(invalid)

// FunctionId indexes the functions list.
type FunctionId uint32

func (id FunctionId) Valid() bool { return uint32(id) != invalid }

const InvalidFunctionId = FunctionId(invalid)

// RecordTemplateId indexes the record-templates list.
type RecordTemplateId uint32

func (id RecordTemplateId) Valid() bool { return uint32(id) != invalid }

const InvalidRecordTemplateId = RecordTemplateId(invalid)

// ModuleId identifies a module within the registry.
type ModuleId uint32

func (id ModuleId) Valid() bool { return uint32(id) != invalid }

const InvalidModuleId = ModuleId(invalid)
