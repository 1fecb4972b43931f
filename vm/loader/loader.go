// Package loader turns a decoded bytecode module into a live Module object:
// members are constructed in strictly increasing id order, each kind's
// preconditions checked against members already built, imports left as
// UnresolvedImport placeholders for the registry to fill in later.
//
// Grounded on hive/builder's progressive, operation-at-a-time construction
// style (build incrementally, verify each step, fail fast with the
// offending index named in the error) adapted from mutating an on-disk hive
// to populating an in-memory members tuple.
package loader

import (
	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/bytecode"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Types bundles the shared Type descriptors the loader needs to allocate
// heap objects of each kind it produces.
type Types struct {
	Module           *types.Type
	Tuple            *types.Type
	String           *types.Type
	Symbol           *types.Type
	Integer          *types.Type
	Float            *types.Type
	UnresolvedImport *types.Type
	BytecodeCode     *types.Type
	FunctionTemplate *types.Type
	Function         *types.Type
	RecordTemplate   *types.Type
}

// FromTable builds a Types bundle from a shared type table.
func FromTable(tbl *types.Table) Types {
	return Types{
		Module:           tbl.Of(types.KindModule),
		Tuple:            tbl.Of(types.KindTuple),
		String:           tbl.Of(types.KindString),
		Symbol:           tbl.Of(types.KindSymbol),
		Integer:          tbl.Of(types.KindInteger),
		Float:            tbl.Of(types.KindFloat),
		UnresolvedImport: tbl.Of(types.KindUnresolvedImport),
		BytecodeCode:     tbl.Of(types.KindBytecodeCode),
		FunctionTemplate: tbl.Of(types.KindFunctionTemplate),
		Function:         tbl.Of(types.KindFunction),
		RecordTemplate:   tbl.Of(types.KindRecordTemplate),
	}
}

// Load materializes mod's members tuple, record templates, init index, and
// exports table onto a freshly allocated Module. undefined is the context's
// Undefined singleton, used for Variable members with no respected initial
// value.
func Load(h *heap.Heap, t Types, strs *intern.Strings, syms *intern.Symbols, mod *bytecode.Module, undefined value.Value) (*objects.Module, error) {
	name := strs.Intern([]byte(mod.Name))
	m := objects.NewModule(h, t.Module, name, len(mod.Members), t.Tuple)

	for i, mem := range mod.Members {
		v, err := loadMember(h, t, strs, syms, m, mod, i, mem, undefined)
		if err != nil {
			return nil, err
		}
		m.Members.Set(i, v)
	}

	if mod.Init.Valid() {
		idx := int(mod.Init)
		if idx < 0 || idx >= len(mod.Members) {
			return nil, formatErr(mod.Name, idx, "init index out of range")
		}
		fnMember := mod.Members[idx]
		if fnMember.Kind != bytecode.MemberFunction {
			return nil, formatErr(mod.Name, idx, "init member is not a function")
		}
		fd, err := functionDef(mod, fnMember.FunctionRef, idx)
		if err != nil {
			return nil, err
		}
		if fd.Tag != bytecode.FunctionTagNormal {
			return nil, formatErr(mod.Name, idx, "init function must not be a closure template")
		}
		m.InitIndex = idx
	}

	for i, exp := range mod.Exports {
		symIdx := int(exp.SymbolIndex)
		valIdx := int(exp.ValueIndex)
		if symIdx < 0 || symIdx >= len(mod.Members) || mod.Members[symIdx].Kind != bytecode.MemberSymbol {
			return nil, formatErr(mod.Name, symIdx, "export %d: symbol_index does not denote a Symbol member", i)
		}
		if valIdx < 0 || valIdx >= len(mod.Members) {
			return nil, formatErr(mod.Name, valIdx, "export %d: value_index out of range", i)
		}
		switch mod.Members[valIdx].Kind {
		case bytecode.MemberImport, bytecode.MemberRecordTemplate:
			return nil, formatErr(mod.Name, valIdx, "export %d: value_index denotes an Import or RecordTemplate", i)
		}

		symVal, _ := m.Members.Get(symIdx)
		sym, ok := asSymbol(symVal)
		if !ok {
			return nil, formatErr(mod.Name, symIdx, "export %d: symbol member did not materialize as a Symbol", i)
		}
		if !m.AddExport(sym, valIdx) {
			return nil, ember.NewError(ember.KindDuplicateExport, "module %q: duplicate export %q", mod.Name, sym.String())
		}
	}

	return m, nil
}

func loadMember(h *heap.Heap, t Types, strs *intern.Strings, syms *intern.Symbols, m *objects.Module, mod *bytecode.Module, i int, mem bytecode.Member, undefined value.Value) (value.Value, error) {
	switch mem.Kind {
	case bytecode.MemberInteger:
		if smi, ok := value.MakeSmallInt(mem.IntegerValue); ok {
			return smi, nil
		}
		boxed := objects.NewInteger(h, t.Integer, mem.IntegerValue)
		return value.FromHeap(&boxed.Header), nil

	case bytecode.MemberFloat:
		boxed := objects.NewFloat(h, t.Float, mem.FloatValue)
		return value.FromHeap(&boxed.Header), nil

	case bytecode.MemberString:
		s := strs.Intern(mem.StringValue)
		return value.FromHeap(&s.Header), nil

	case bytecode.MemberSymbol:
		nameIdx := int(mem.NameIndex)
		if nameIdx < 0 || nameIdx >= i {
			return value.Value{}, formatErr(mod.Name, i, "symbol name_index %d is not strictly smaller", nameIdx)
		}
		if mod.Members[nameIdx].Kind != bytecode.MemberString {
			return value.Value{}, formatErr(mod.Name, i, "symbol name_index %d is not a String member", nameIdx)
		}
		nameVal, _ := m.Members.Get(nameIdx)
		nameStr, ok := asString(nameVal)
		if !ok {
			return value.Value{}, formatErr(mod.Name, i, "symbol name member did not materialize as a String")
		}
		sym := syms.Intern(nameStr)
		return value.FromHeap(&sym.Header), nil

	case bytecode.MemberImport:
		nameIdx := int(mem.ModuleNameIndex)
		if nameIdx < 0 || nameIdx >= i {
			return value.Value{}, formatErr(mod.Name, i, "import module_name_index %d is not strictly smaller", nameIdx)
		}
		if mod.Members[nameIdx].Kind != bytecode.MemberString {
			return value.Value{}, formatErr(mod.Name, i, "import module_name_index %d is not a String member", nameIdx)
		}
		nameVal, _ := m.Members.Get(nameIdx)
		nameStr, ok := asString(nameVal)
		if !ok {
			return value.Value{}, formatErr(mod.Name, i, "import name member did not materialize as a String")
		}
		placeholder := objects.NewUnresolvedImport(h, t.UnresolvedImport, nameStr)
		return value.FromHeap(&placeholder.Header), nil

	case bytecode.MemberVariable:
		nameIdx := int(mem.NameIndex)
		if nameIdx < 0 || nameIdx >= i {
			return value.Value{}, formatErr(mod.Name, i, "variable name_index %d is not strictly smaller", nameIdx)
		}
		if mod.Members[nameIdx].Kind != bytecode.MemberString {
			return value.Value{}, formatErr(mod.Name, i, "variable name_index %d is not a String member", nameIdx)
		}
		if mem.InitialIndex.Valid() {
			initIdx := int(mem.InitialIndex)
			if initIdx < 0 || initIdx >= i {
				return value.Value{}, formatErr(mod.Name, i, "variable initial_index %d is not strictly smaller", initIdx)
			}
			initVal, _ := m.Members.Get(initIdx)
			return initVal, nil
		}
		return undefined, nil

	case bytecode.MemberFunction:
		fd, err := functionDef(mod, mem.FunctionRef, i)
		if err != nil {
			return value.Value{}, err
		}
		code := objects.NewBytecodeCode(h, t.BytecodeCode, fd.Code)
		kind := objects.FunctionNormal
		if fd.Tag == bytecode.FunctionTagClosure {
			kind = objects.FunctionClosure
		}
		ft := objects.NewFunctionTemplate(h, t.FunctionTemplate, fd.Name, m, int(fd.Params), int(fd.Locals), code, kind)
		if kind == objects.FunctionClosure {
			return value.FromHeap(&ft.Header), nil
		}
		fn := objects.NewFunction(h, t.Function, ft, nil)
		return value.FromHeap(&fn.Header), nil

	case bytecode.MemberRecordTemplate:
		idx := int(mem.TemplateRef)
		if idx < 0 || idx >= len(mod.RecordTemplates) {
			return value.Value{}, formatErr(mod.Name, i, "record_template_ref %d out of range", idx)
		}
		def := mod.RecordTemplates[idx]
		keys := make([]*objects.Symbol, len(def.KeyMemberIds))
		for j, keyID := range def.KeyMemberIds {
			k := int(keyID)
			if k < 0 || k >= i {
				return value.Value{}, formatErr(mod.Name, i, "record template key member id %d is not strictly smaller", k)
			}
			if mod.Members[k].Kind != bytecode.MemberSymbol {
				return value.Value{}, formatErr(mod.Name, i, "record template key member %d is not a Symbol member", k)
			}
			keyVal, _ := m.Members.Get(k)
			sym, ok := asSymbol(keyVal)
			if !ok {
				return value.Value{}, formatErr(mod.Name, i, "record template key member did not materialize as a Symbol")
			}
			keys[j] = sym
		}
		rt := objects.NewRecordTemplate(h, t.RecordTemplate, keys)
		return value.FromHeap(&rt.Header), nil

	default:
		return value.Value{}, formatErr(mod.Name, i, "unknown member kind %d", mem.Kind)
	}
}

func functionDef(mod *bytecode.Module, ref bytecode.FunctionId, memberIdx int) (bytecode.FunctionDef, error) {
	idx := int(ref)
	if idx < 0 || idx >= len(mod.Functions) {
		return bytecode.FunctionDef{}, formatErr(mod.Name, memberIdx, "function_ref %d out of range", idx)
	}
	return mod.Functions[idx], nil
}

func asString(v value.Value) (*objects.String, bool) {
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, false
	}
	s, ok := hdr.Payload.(*objects.String)
	return s, ok
}

func asSymbol(v value.Value) (*objects.Symbol, bool) {
	hdr, ok := v.HeapPtr()
	if !ok {
		return nil, false
	}
	s, ok := hdr.Payload.(*objects.Symbol)
	return s, ok
}

func formatErr(module string, memberIdx int, format string, args ...any) error {
	base := ember.NewError(ember.KindModuleFormat, format, args...)
	return base.WithFrame(ember.Frame{Module: module, Offset: memberIdx})
}
