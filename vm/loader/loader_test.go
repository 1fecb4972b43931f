package loader_test

import (
	"testing"

	"github.com/emberlang/ember/vm/bytecode"
	"github.com/emberlang/ember/vm/heap"
	"github.com/emberlang/ember/vm/intern"
	"github.com/emberlang/ember/vm/loader"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
	"github.com/stretchr/testify/require"
)

func newHarness() (*heap.Heap, loader.Types, *intern.Strings, *intern.Symbols, value.Value) {
	h := heap.New(1 << 20)
	tbl := types.NewTable()
	lt := loader.FromTable(tbl)
	strs := intern.NewStrings(h, lt.String)
	syms := intern.NewSymbols(h, lt.Symbol)
	undef := value.FromHeap(&objects.NewUndefined(h, tbl.Of(types.KindUndefined)).Header)
	return h, lt, strs, syms, undef
}

func TestLoadSimpleModuleWithExport(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "sample",
		Init: bytecode.InvalidMemberId,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberInteger, IntegerValue: 42},             // 0
			{Kind: bytecode.MemberString, StringValue: []byte("answer")}, // 1
			{Kind: bytecode.MemberSymbol, NameIndex: 1},                  // 2
		},
		Exports: []bytecode.Export{
			{SymbolIndex: 2, ValueIndex: 0},
		},
	}

	m, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.NoError(t, err)
	require.Equal(t, "sample", m.Name.String())

	v, ok := m.Members.Get(0)
	require.True(t, ok)
	n, ok := v.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(42), n)

	symVal, ok := m.Members.Get(2)
	require.True(t, ok)
	symHdr, _ := symVal.HeapPtr()
	sym := symHdr.Payload.(*objects.Symbol)
	exported, ok := m.Export(sym)
	require.True(t, ok)
	exN, _ := exported.SmallIntValue()
	require.Equal(t, int64(42), exN)
}

func TestLoadImportBecomesUnresolvedPlaceholder(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "A",
		Init: bytecode.InvalidMemberId,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberString, StringValue: []byte("B")}, // 0
			{Kind: bytecode.MemberImport, ModuleNameIndex: 0},       // 1
		},
	}

	m, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.NoError(t, err)

	v, ok := m.Members.Get(1)
	require.True(t, ok)
	hdr, _ := v.HeapPtr()
	placeholder, ok := hdr.Payload.(*objects.UnresolvedImport)
	require.True(t, ok)
	require.Equal(t, "B", placeholder.ModuleName.String())
}

func TestLoadVariableDefaultsToUndefined(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "vars",
		Init: bytecode.InvalidMemberId,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberString, StringValue: []byte("i")},                          // 0
			{Kind: bytecode.MemberVariable, NameIndex: 0, InitialIndex: bytecode.InvalidMemberId}, // 1
		},
	}

	m, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.NoError(t, err)

	v, ok := m.Members.Get(1)
	require.True(t, ok)
	require.Equal(t, undef, v)
}

func TestLoadVariableRespectsInitialIndex(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "vars2",
		Init: bytecode.InvalidMemberId,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberInteger, IntegerValue: 7},     // 0
			{Kind: bytecode.MemberString, StringValue: []byte("n")}, // 1
			{Kind: bytecode.MemberVariable, NameIndex: 1, InitialIndex: 0}, // 2
		},
	}

	m, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.NoError(t, err)

	v, ok := m.Members.Get(2)
	require.True(t, ok)
	n, ok := v.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(7), n)
}

func TestLoadRejectsForwardReference(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "bad",
		Init: bytecode.InvalidMemberId,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberSymbol, NameIndex: 1}, // 0: references member 1, not < 0
			{Kind: bytecode.MemberString, StringValue: []byte("x")},
		},
	}

	_, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.Error(t, err)
}

func TestLoadDuplicateExportFails(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "dup",
		Init: bytecode.InvalidMemberId,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberInteger, IntegerValue: 1},
			{Kind: bytecode.MemberInteger, IntegerValue: 2},
			{Kind: bytecode.MemberString, StringValue: []byte("x")},
			{Kind: bytecode.MemberSymbol, NameIndex: 2},
		},
		Exports: []bytecode.Export{
			{SymbolIndex: 3, ValueIndex: 0},
			{SymbolIndex: 3, ValueIndex: 1},
		},
	}

	_, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.Error(t, err)
}

func TestLoadRecordTemplateAndFunctionMembers(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "recfn",
		Init: 4,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberString, StringValue: []byte("x")},  // 0
			{Kind: bytecode.MemberSymbol, NameIndex: 0},               // 1
			{Kind: bytecode.MemberRecordTemplate, TemplateRef: 0},     // 2
			{Kind: bytecode.MemberFunction, FunctionRef: 1},           // 3: closure template
			{Kind: bytecode.MemberFunction, FunctionRef: 0},           // 4: init function
		},
		Functions: []bytecode.FunctionDef{
			{Name: "init", Params: 0, Locals: 0, Tag: bytecode.FunctionTagNormal, Code: []byte{0x00}},
			{Name: "closureFn", Params: 1, Locals: 0, Tag: bytecode.FunctionTagClosure, Code: []byte{0x01}},
		},
		RecordTemplates: []bytecode.RecordTemplateDef{
			{KeyMemberIds: []bytecode.MemberId{1}},
		},
	}

	m, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.NoError(t, err)
	require.Equal(t, 4, m.InitIndex)

	rtVal, ok := m.Members.Get(2)
	require.True(t, ok)
	rtHdr, _ := rtVal.HeapPtr()
	rt := rtHdr.Payload.(*objects.RecordTemplate)
	require.Len(t, rt.Keys, 1)

	closureVal, ok := m.Members.Get(3)
	require.True(t, ok)
	closureHdr, _ := closureVal.HeapPtr()
	_, isTemplate := closureHdr.Payload.(*objects.FunctionTemplate)
	require.True(t, isTemplate, "closure-kind function member should store the bare template")

	fnVal, ok := m.Members.Get(4)
	require.True(t, ok)
	fnHdr, _ := fnVal.HeapPtr()
	fn, isFunction := fnHdr.Payload.(*objects.Function)
	require.True(t, isFunction, "normal-kind function member should be wrapped in a Function")
	require.Nil(t, fn.Closure)
}

func TestLoadInitMustBeNormalFunction(t *testing.T) {
	h, lt, strs, syms, undef := newHarness()

	mod := &bytecode.Module{
		Name: "badinit",
		Init: 0,
		Members: []bytecode.Member{
			{Kind: bytecode.MemberFunction, FunctionRef: 0},
		},
		Functions: []bytecode.FunctionDef{
			{Name: "c", Tag: bytecode.FunctionTagClosure, Code: []byte{}},
		},
	}

	_, err := loader.Load(h, lt, strs, syms, mod, undef)
	require.Error(t, err)
}
