package interp

import (
	"math"
	"math/big"

	"github.com/emberlang/ember"
	"github.com/emberlang/ember/vm/objects"
	"github.com/emberlang/ember/vm/types"
	"github.com/emberlang/ember/vm/value"
)

// number is a decoded numeric operand: either an int64 or a float64,
// never both, with ok=false for non-numeric values.
type number struct {
	isFloat bool
	i       int64
	f       float64
	ok      bool
}

func (it *Interpreter) asNumber(v value.Value) number {
	if n, ok := v.SmallIntValue(); ok {
		return number{i: n, ok: true}
	}
	hdr, ok := v.HeapPtr()
	if !ok {
		return number{}
	}
	switch p := hdr.Payload.(type) {
	case *objects.Integer:
		return number{i: p.Value, ok: true}
	case *objects.Float:
		return number{isFloat: true, f: p.Value, ok: true}
	default:
		return number{}
	}
}

func (it *Interpreter) box(n number) value.Value {
	if n.isFloat {
		return value.FromHeap(&objects.NewFloat(it.Heap, it.T.Float, n.f).Header)
	}
	return it.makeInt(n.i)
}

// binaryArith implements the two-operand arithmetic/bitwise opcodes (spec
// §4.5). Mixed int/float operands promote to float; pure-integer results
// that overflow 64 bits fail with Overflow rather than wrapping silently
// (spec §4.1's Integer is a 64-bit boxed value with no wraparound
// semantics defined).
func (it *Interpreter) binaryArith(co *objects.Coroutine, op Opcode) error {
	vals, ok := co.Stack.PopValue(2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	a, b := it.asNumber(vals[0]), it.asNumber(vals[1])
	if !a.ok || !b.ok {
		return ember.NewError(ember.KindTypeError, "operand is not numeric")
	}

	bitwise := op == OpBitAnd || op == OpBitOr || op == OpBitXor || op == OpShl || op == OpShr
	if bitwise && (a.isFloat || b.isFloat) {
		return ember.NewError(ember.KindTypeError, "bitwise operators require integer operands")
	}

	if !bitwise && (a.isFloat || b.isFloat) {
		af, bf := toFloat(a), toFloat(b)
		var r float64
		switch op {
		case OpAdd:
			r = af + bf
		case OpSub:
			r = af - bf
		case OpMul:
			r = af * bf
		case OpDiv:
			r = af / bf
		case OpMod:
			r = math.Mod(af, bf)
		case OpPow:
			r = math.Pow(af, bf)
		}
		return co.Stack.PushValue(it.box(number{isFloat: true, f: r}))
	}

	var r int64
	switch op {
	case OpAdd:
		r = a.i + b.i
		if (b.i > 0 && r < a.i) || (b.i < 0 && r > a.i) {
			return ember.NewError(ember.KindOverflow, "integer overflow in addition")
		}
	case OpSub:
		r = a.i - b.i
		if (b.i < 0 && r < a.i) || (b.i > 0 && r > a.i) {
			return ember.NewError(ember.KindOverflow, "integer overflow in subtraction")
		}
	case OpMul:
		if a.i != 0 && b.i != 0 {
			r = a.i * b.i
			if r/a.i != b.i {
				return ember.NewError(ember.KindOverflow, "integer overflow in multiplication")
			}
		}
	case OpDiv:
		if b.i == 0 {
			return ember.NewError(ember.KindDivisionByZero, "division by zero")
		}
		r = a.i / b.i
	case OpMod:
		if b.i == 0 {
			return ember.NewError(ember.KindDivisionByZero, "division by zero")
		}
		r = a.i % b.i
	case OpPow:
		if b.i < 0 {
			r = int64(math.Pow(float64(a.i), float64(b.i)))
			break
		}
		// Past exponent 64 only |a| <= 1 stays in range; capping keeps the parity.
		p := new(big.Int).Exp(big.NewInt(a.i), big.NewInt(min(b.i, 64+b.i%2)), nil)
		if !p.IsInt64() {
			return ember.NewError(ember.KindOverflow, "integer overflow in exponentiation")
		}
		r = p.Int64()
	case OpBitAnd:
		r = a.i & b.i
	case OpBitOr:
		r = a.i | b.i
	case OpBitXor:
		r = a.i ^ b.i
	case OpShl:
		r = a.i << uint(b.i)
	case OpShr:
		r = a.i >> uint(b.i)
	}
	return co.Stack.PushValue(it.box(number{i: r}))
}

func toFloat(n number) float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (it *Interpreter) unaryArith(co *objects.Coroutine, op Opcode) error {
	vals, ok := co.Stack.PopValue(1)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	if op == OpLogicalNot {
		return co.Stack.PushValue(it.boolValue(!it.isTruthy(vals[0])))
	}
	n := it.asNumber(vals[0])
	if !n.ok {
		return ember.NewError(ember.KindTypeError, "operand is not numeric")
	}
	switch op {
	case OpUnaryPlus:
		return co.Stack.PushValue(vals[0])
	case OpUnaryMinus:
		if n.isFloat {
			return co.Stack.PushValue(it.box(number{isFloat: true, f: -n.f}))
		}
		if n.i == math.MinInt64 {
			return ember.NewError(ember.KindOverflow, "integer overflow negating %d", n.i)
		}
		return co.Stack.PushValue(it.box(number{i: -n.i}))
	case OpBitNot:
		if n.isFloat {
			return ember.NewError(ember.KindTypeError, "bitwise not requires an integer operand")
		}
		return co.Stack.PushValue(it.box(number{i: ^n.i}))
	}
	return ember.NewError(ember.KindModuleFormat, "unreachable unary opcode %d", op)
}

// compare implements the six comparison opcodes (spec §4.1's equal/hash
// for eq/neq, and a numeric/lexicographic total order for the rest: null
// sorts least, numbers compare by value, strings compare byte-wise, and
// any other cross-kind comparison is a TypeError).
func (it *Interpreter) compare(co *objects.Coroutine, op Opcode) error {
	vals, ok := co.Stack.PopValue(2)
	if !ok {
		return ember.NewError(ember.KindTypeError, "stack underflow")
	}
	a, b := vals[0], vals[1]

	if op == OpEq {
		return co.Stack.PushValue(it.boolValue(objects.Equal(a, b)))
	}
	if op == OpNeq {
		return co.Stack.PushValue(it.boolValue(!objects.Equal(a, b)))
	}

	cmp, err := it.orderCompare(a, b)
	if err != nil {
		return err
	}
	var r bool
	switch op {
	case OpLt:
		r = cmp < 0
	case OpLte:
		r = cmp <= 0
	case OpGt:
		r = cmp > 0
	case OpGte:
		r = cmp >= 0
	}
	return co.Stack.PushValue(it.boolValue(r))
}

func (it *Interpreter) orderCompare(a, b value.Value) (int, error) {
	if a.IsNull() || b.IsNull() {
		switch {
		case a.IsNull() && b.IsNull():
			return 0, nil
		case a.IsNull():
			return -1, nil
		default:
			return 1, nil
		}
	}
	an, aok := it.asNumberOK(a)
	bn, bok := it.asNumberOK(b)
	if aok && bok {
		af, bf := toFloat(an), toFloat(bn)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind() == types.KindString && b.Kind() == types.KindString {
		ah, _ := a.HeapPtr()
		bh, _ := b.HeapPtr()
		as := string(ah.Payload.(*objects.String).Bytes())
		bs := string(bh.Payload.(*objects.String).Bytes())
		switch {
		case as < bs:
			return -1, nil
		case as > bs:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, ember.NewError(ember.KindTypeError, "values of kind %s and %s are not ordered", a.Kind(), b.Kind())
}

func (it *Interpreter) asNumberOK(v value.Value) (number, bool) {
	n := it.asNumber(v)
	return n, n.ok
}
