package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

var strictUTF8 = unicode.UTF8.NewDecoder()

// validateUTF8 rejects ill-formed UTF-8. The x/text decoder substitutes
// U+FFFD for a bad sequence instead of failing, so any difference between
// the input and its decoded form marks the input as invalid.
func validateUTF8(b []byte) error {
	out, err := strictUTF8.Bytes(b)
	if err != nil {
		return fmt.Errorf("invalid utf-8: %w", err)
	}
	if !bytes.Equal(out, b) {
		return fmt.Errorf("invalid utf-8: ill-formed byte sequence")
	}
	return nil
}

// cursor is a minimal big-endian byte reader (spec §6.2: "Immediate
// operands use big-endian encoding"), grounded on internal/format's
// fixed-offset ReadU32/ReadU64 style but walking forward through a
// variable-length stream instead of fixed REGF offsets.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.remaining() < n {
		return nil, fmt.Errorf("bytecode: truncated stream at offset %d (need %d bytes, have %d)", c.pos, n, c.remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *cursor) i64() (int64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (c *cursor) f64() (float64, error) {
	b, err := c.bytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (c *cursor) lenPrefixedBytes() ([]byte, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	return c.bytes(int(n))
}

// Decode parses a serialized module (spec §6.1). It performs only
// structural/encoding validation (truncation, invalid UTF-8, unknown tag
// bytes); the topological and kind-reference checks spec §4.7 requires
// are the loader's job, since they need the decoded Module as a whole.
func Decode(data []byte) (*Module, error) {
	c := &cursor{data: data}
	m := &Module{}

	nameBytes, err := c.lenPrefixedBytes()
	if err != nil {
		return nil, fmt.Errorf("bytecode: module name: %w", err)
	}
	if err := validateUTF8(nameBytes); err != nil {
		return nil, fmt.Errorf("bytecode: module name: %w", err)
	}
	m.Name = string(nameBytes)

	initRaw, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("bytecode: init index: %w", err)
	}
	m.Init = MemberId(initRaw)

	memberCount, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("bytecode: member count: %w", err)
	}
	m.Members = make([]Member, memberCount)
	for i := range m.Members {
		mem, err := decodeMember(c)
		if err != nil {
			return nil, fmt.Errorf("bytecode: member %d: %w", i, err)
		}
		m.Members[i] = mem
	}

	funcCount, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("bytecode: function count: %w", err)
	}
	m.Functions = make([]FunctionDef, funcCount)
	for i := range m.Functions {
		fn, err := decodeFunction(c)
		if err != nil {
			return nil, fmt.Errorf("bytecode: function %d: %w", i, err)
		}
		m.Functions[i] = fn
	}

	templateCount, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("bytecode: record template count: %w", err)
	}
	m.RecordTemplates = make([]RecordTemplateDef, templateCount)
	for i := range m.RecordTemplates {
		keyCount, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("bytecode: record template %d: %w", i, err)
		}
		keys := make([]MemberId, keyCount)
		for j := range keys {
			id, err := c.u32()
			if err != nil {
				return nil, fmt.Errorf("bytecode: record template %d key %d: %w", i, j, err)
			}
			keys[j] = MemberId(id)
		}
		m.RecordTemplates[i] = RecordTemplateDef{KeyMemberIds: keys}
	}

	exportCount, err := c.u32()
	if err != nil {
		return nil, fmt.Errorf("bytecode: export count: %w", err)
	}
	m.Exports = make([]Export, exportCount)
	for i := range m.Exports {
		sym, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("bytecode: export %d: %w", i, err)
		}
		val, err := c.u32()
		if err != nil {
			return nil, fmt.Errorf("bytecode: export %d: %w", i, err)
		}
		m.Exports[i] = Export{SymbolIndex: MemberId(sym), ValueIndex: MemberId(val)}
	}

	if c.remaining() != 0 {
		return nil, fmt.Errorf("bytecode: %d trailing bytes after module", c.remaining())
	}

	return m, nil
}

func decodeMember(c *cursor) (Member, error) {
	kindByte, err := c.u8()
	if err != nil {
		return Member{}, err
	}
	kind := MemberKind(kindByte)

	switch kind {
	case MemberInteger:
		n, err := c.i64()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, IntegerValue: n}, nil

	case MemberFloat:
		f, err := c.f64()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, FloatValue: f}, nil

	case MemberString:
		b, err := c.lenPrefixedBytes()
		if err != nil {
			return Member{}, err
		}
		if err := validateUTF8(b); err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, StringValue: b}, nil

	case MemberSymbol:
		idx, err := c.u32()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, NameIndex: MemberId(idx)}, nil

	case MemberImport:
		idx, err := c.u32()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, ModuleNameIndex: MemberId(idx)}, nil

	case MemberVariable:
		nameIdx, err := c.u32()
		if err != nil {
			return Member{}, err
		}
		initIdx, err := c.u32()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, NameIndex: MemberId(nameIdx), InitialIndex: MemberId(initIdx)}, nil

	case MemberFunction:
		idx, err := c.u32()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, FunctionRef: FunctionId(idx)}, nil

	case MemberRecordTemplate:
		idx, err := c.u32()
		if err != nil {
			return Member{}, err
		}
		return Member{Kind: kind, TemplateRef: RecordTemplateId(idx)}, nil

	default:
		return Member{}, fmt.Errorf("unknown member kind tag %d", kindByte)
	}
}

func decodeFunction(c *cursor) (FunctionDef, error) {
	hasName, err := c.u8()
	if err != nil {
		return FunctionDef{}, err
	}
	var name string
	if hasName != 0 {
		b, err := c.lenPrefixedBytes()
		if err != nil {
			return FunctionDef{}, err
		}
		if err := validateUTF8(b); err != nil {
			return FunctionDef{}, err
		}
		name = string(b)
	}

	params, err := c.u32()
	if err != nil {
		return FunctionDef{}, err
	}
	locals, err := c.u32()
	if err != nil {
		return FunctionDef{}, err
	}
	tagByte, err := c.u8()
	if err != nil {
		return FunctionDef{}, err
	}
	tag := FunctionTypeTag(tagByte)
	if tag != FunctionTagNormal && tag != FunctionTagClosure {
		return FunctionDef{}, fmt.Errorf("unknown function type tag %d", tagByte)
	}
	code, err := c.lenPrefixedBytes()
	if err != nil {
		return FunctionDef{}, err
	}

	return FunctionDef{Name: name, Params: params, Locals: locals, Tag: tag, Code: code}, nil
}
