package ember_test

import (
	"encoding/binary"
	"testing"

	ember "github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/bytecode"
	"github.com/stretchr/testify/require"
)

// wireBuilder assembles a module in the exact byte layout bytecode.Decode
// expects, mirroring bytecode_test's own builder helper.
type wireBuilder struct{ buf []byte }

func (b *wireBuilder) u8(v uint8) { b.buf = append(b.buf, v) }
func (b *wireBuilder) u32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}
func (b *wireBuilder) i64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.buf = append(b.buf, tmp[:]...)
}
func (b *wireBuilder) lenBytes(s []byte) {
	b.u32(uint32(len(s)))
	b.buf = append(b.buf, s...)
}

// answerModule builds a module named "answers" with no initializer,
// exporting symbol "answer" bound to the integer 42.
func answerModule() []byte {
	b := &wireBuilder{}
	b.lenBytes([]byte("answers"))
	b.u32(uint32(bytecode.InvalidMemberId)) // no init function

	b.u32(3) // member count
	b.u8(uint8(bytecode.MemberInteger)) // member 0: 42
	b.i64(42)
	b.u8(uint8(bytecode.MemberString)) // member 1: "answer"
	b.lenBytes([]byte("answer"))
	b.u8(uint8(bytecode.MemberSymbol)) // member 2: symbol naming member 1
	b.u32(1)

	b.u32(0) // functions
	b.u32(0) // record templates

	b.u32(1) // export count
	b.u32(2) // symbol index (member 2)
	b.u32(0) // value index (member 0, the integer)

	return b.buf
}

func TestContextAddModuleAndExport(t *testing.T) {
	ctx := ember.NewContext(ember.DefaultConfig())
	_, err := ctx.AddModule(answerModule())
	require.NoError(t, err)

	v, err := ctx.Export("answers", "answer")
	require.NoError(t, err)
	n, ok := v.SmallIntValue()
	require.True(t, ok)
	require.Equal(t, int64(42), n)
}

func TestContextRegisteringDuplicateModuleFails(t *testing.T) {
	ctx := ember.NewContext(ember.DefaultConfig())
	data := answerModule()
	_, err := ctx.AddModule(data)
	require.NoError(t, err)
	_, err = ctx.AddModule(data)
	require.Error(t, err)
}

func TestContextExportOfUnknownModuleFails(t *testing.T) {
	ctx := ember.NewContext(ember.DefaultConfig())
	_, err := ctx.Export("nope", "answer")
	require.Error(t, err)
}

func TestContextForceCollectDoesNotCrashWithNoScope(t *testing.T) {
	ctx := ember.NewContext(ember.DefaultConfig())
	_, err := ctx.AddModule(answerModule())
	require.NoError(t, err)
	stats := ctx.CollectGarbage(nil)
	require.GreaterOrEqual(t, stats.Survivors, 0)
}
