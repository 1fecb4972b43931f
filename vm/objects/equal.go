package objects

import (
	"math"

	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// Equal implements spec §4.1's equal(a,b): structural for Integer/Float
// (cross-type if numerically equal), character-wise for String, identity
// otherwise.
func Equal(a, b value.Value) bool {
	ak, bk := a.Kind(), b.Kind()

	if ak == types.KindInteger && bk == types.KindInteger {
		an, aok := integerValue(a)
		bn, bok := integerValue(b)
		if aok && bok {
			return an == bn
		}
	}
	if isNumeric(ak) && isNumeric(bk) {
		af, aok := numericAsFloat(a)
		bf, bok := numericAsFloat(b)
		if aok && bok {
			return af == bf
		}
	}

	if ak == types.KindNull && bk == types.KindNull {
		return true
	}

	if ak == types.KindString && bk == types.KindString {
		as, aok := a.HeapPtr()
		bs, bok := b.HeapPtr()
		if aok && bok {
			return as.Payload.(*String).Equal(bs.Payload.(*String))
		}
	}

	return a.IdentityKey() == b.IdentityKey() && ak == bk
}

// Hash implements spec §4.1's hash(v), satisfying equal(a,b) ⇒
// hash(a)=hash(b): numeric kinds hash their numeric value uniformly
// (so 3 and 3.0 collide, matching their cross-type equality), Strings use
// their cached hash, everything else hashes its stable identity key.
func Hash(v value.Value) uint64 {
	k := v.Kind()
	switch {
	case k == types.KindInteger:
		if n, ok := integerValue(v); ok {
			return hashUint64(uint64(n))
		}
	case k == types.KindFloat:
		if f, ok := numericAsFloat(v); ok {
			if f == math.Trunc(f) && !math.IsInf(f, 0) {
				return hashUint64(uint64(int64(f)))
			}
			return hashUint64(math.Float64bits(f))
		}
	case k == types.KindString:
		if hdr, ok := v.HeapPtr(); ok {
			return hdr.Payload.(*String).Hash()
		}
	case k == types.KindNull:
		return 0
	}
	if hdr, ok := v.HeapPtr(); ok {
		return hashUint64(hdr.ID())
	}
	if n, ok := v.SmallIntValue(); ok {
		return hashUint64(uint64(n))
	}
	return 0
}

func hashUint64(x uint64) uint64 {
	// splitmix64 finalizer: cheap, well-distributed avalanche.
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func isNumeric(k types.Kind) bool {
	return k == types.KindInteger || k == types.KindFloat
}

func integerValue(v value.Value) (int64, bool) {
	if n, ok := v.SmallIntValue(); ok {
		return n, true
	}
	if hdr, ok := v.HeapPtr(); ok {
		if n, ok := hdr.Payload.(*Integer); ok {
			return n.Value, true
		}
	}
	return 0, false
}

func numericAsFloat(v value.Value) (float64, bool) {
	if n, ok := integerValue(v); ok {
		return float64(n), true
	}
	if hdr, ok := v.HeapPtr(); ok {
		if f, ok := hdr.Payload.(*Float); ok {
			return f.Value, true
		}
	}
	return 0, false
}

// ToString renders v for diagnostics only (spec §4.1's to_string is
// explicitly not a language-level formatting primitive).
func ToString(v value.Value) string {
	if v.IsNull() {
		return "null"
	}
	if n, ok := v.SmallIntValue(); ok {
		return formatInt(n)
	}
	hdr, ok := v.HeapPtr()
	if !ok {
		return "<value>"
	}
	switch p := hdr.Payload.(type) {
	case *String:
		return p.String()
	case *Symbol:
		return "#" + p.String()
	case *Integer:
		return formatInt(p.Value)
	case *Float:
		return formatFloat(p.Value)
	case *Boolean:
		if p.Value {
			return "true"
		}
		return "false"
	case *Undefined:
		return "undefined"
	default:
		return hdr.Type.Name
	}
}
