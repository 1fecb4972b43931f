package bytecode_test

import (
	"encoding/binary"
	"testing"

	"github.com/emberlang/ember/vm/bytecode"
	"github.com/stretchr/testify/require"
)

type builder struct {
	buf []byte
}

func (b *builder) u8(v uint8)   { b.buf = append(b.buf, v) }
func (b *builder) u32(v uint32) { var tmp [4]byte; binary.BigEndian.PutUint32(tmp[:], v); b.buf = append(b.buf, tmp[:]...) }
func (b *builder) i64(v int64)  { var tmp [8]byte; binary.BigEndian.PutUint64(tmp[:], uint64(v)); b.buf = append(b.buf, tmp[:]...) }
func (b *builder) lenBytes(s []byte) {
	b.u32(uint32(len(s)))
	b.buf = append(b.buf, s...)
}

// minimal builds a module with one integer member named "answer", no
// functions, no record templates, and a single export.
func minimal() []byte {
	b := &builder{}
	b.lenBytes([]byte("sample")) // module name
	b.u32(uint32(bytecode.InvalidMemberId))
	b.u32(2) // member count

	// member 0: integer 42
	b.u8(uint8(bytecode.MemberInteger))
	b.i64(42)

	// member 1: symbol referencing a string... simplify: symbol name index 0
	// would require a string member; instead use member 1 as symbol whose
	// NameIndex points at member 0 is semantically odd but decode doesn't
	// validate cross-references, only shape.
	b.u8(uint8(bytecode.MemberSymbol))
	b.u32(0)

	b.u32(0) // function count
	b.u32(0) // record template count

	b.u32(1) // export count
	b.u32(1) // symbol index
	b.u32(0) // value index

	return b.buf
}

func TestDecodeMinimalModule(t *testing.T) {
	data := minimal()
	mod, err := bytecode.Decode(data)
	require.NoError(t, err)
	require.Equal(t, "sample", mod.Name)
	require.False(t, mod.Init.Valid())
	require.Len(t, mod.Members, 2)
	require.Equal(t, bytecode.MemberInteger, mod.Members[0].Kind)
	require.Equal(t, int64(42), mod.Members[0].IntegerValue)
	require.Equal(t, bytecode.MemberSymbol, mod.Members[1].Kind)
	require.Len(t, mod.Exports, 1)
	require.Equal(t, bytecode.MemberId(1), mod.Exports[0].SymbolIndex)
}

func TestDecodeTruncatedStreamErrors(t *testing.T) {
	data := minimal()
	_, err := bytecode.Decode(data[:len(data)-4])
	require.Error(t, err)
}

func TestDecodeUnknownMemberKindErrors(t *testing.T) {
	b := &builder{}
	b.lenBytes([]byte("bad"))
	b.u32(uint32(bytecode.InvalidMemberId))
	b.u32(1)
	b.u8(200) // invalid kind tag
	b.u32(0)
	b.u32(0)
	b.u32(0)

	_, err := bytecode.Decode(b.buf)
	require.Error(t, err)
}

func TestDecodeInvalidUTF8ModuleNameErrors(t *testing.T) {
	b := &builder{}
	b.lenBytes([]byte{0xff, 0xfe, 0xfd})
	b.u32(uint32(bytecode.InvalidMemberId))
	b.u32(0)
	b.u32(0)
	b.u32(0)
	b.u32(0)

	_, err := bytecode.Decode(b.buf)
	require.Error(t, err)
}

func TestDecodeTrailingBytesErrors(t *testing.T) {
	data := append(minimal(), 0x00)
	_, err := bytecode.Decode(data)
	require.Error(t, err)
}

func TestDecodeFunctionWithCode(t *testing.T) {
	b := &builder{}
	b.lenBytes([]byte("withfn"))
	b.u32(uint32(bytecode.InvalidMemberId))
	b.u32(0) // no members

	b.u32(1) // one function
	b.u8(1)  // has name
	b.lenBytes([]byte("main"))
	b.u32(0) // params
	b.u32(2) // locals
	b.u8(uint8(bytecode.FunctionTagNormal))
	b.lenBytes([]byte{0x01, 0x02, 0x03})

	b.u32(0) // record templates
	b.u32(0) // exports

	mod, err := bytecode.Decode(b.buf)
	require.NoError(t, err)
	require.Len(t, mod.Functions, 1)
	require.Equal(t, "main", mod.Functions[0].Name)
	require.Equal(t, uint32(2), mod.Functions[0].Locals)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, mod.Functions[0].Code)
}
