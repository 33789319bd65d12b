package compiler

import (
	"math"

	"github.com/thomasrohde/scorex/pkg/functions"
)

// DoubleValues supplies one external value per item. Implementations are
// caller-owned; the evaluator never retains them beyond a single call.
type DoubleValues interface {
	DoubleValue(item int) float64
}

// DoubleConstant is a DoubleValues that ignores the item index.
type DoubleConstant float64

func (c DoubleConstant) DoubleValue(int) float64 { return float64(c) }

// DoubleFunc adapts a function to DoubleValues.
type DoubleFunc func(item int) float64

func (f DoubleFunc) DoubleValue(item int) float64 { return f(item) }

// Expression is a compiled expression. It is immutable: Evaluate touches
// no shared state, so one Expression may be invoked concurrently from any
// number of goroutines.
type Expression struct {
	source    string
	variables []string
	code      []instr
	ints      []int64
	floats    []float64
	funcs     []*functions.Func
	calls     []func([]float64) float64
	arities   []int
	maxStack  int
	maxArity  int
}

// SourceText returns the expression source, clipped for display if it
// exceeded the source cap at compile time.
func (e *Expression) SourceText() string {
	return e.source
}

// Variables returns the external variable names in binding order. The
// caller must supply externals to Evaluate indexed identically.
func (e *Expression) Variables() []string {
	out := make([]string, len(e.variables))
	copy(out, e.variables)
	return out
}

// d2l truncates a float64 toward zero with two's-complement saturation.
func d2l(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(v)
	}
}

// d2i truncates a float64 toward zero with saturation at the int32 range.
func d2i(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int64(int32(v))
	}
}

// Evaluate runs the compiled code for one item. externals must be indexed
// per Variables. The stack is local to the call; nothing is retained.
func (e *Expression) Evaluate(item int, externals []DoubleValues) float64 {
	stack := make([]uint64, 0, e.maxStack)
	var args []float64
	if e.maxArity > 0 {
		args = make([]float64, e.maxArity)
	}

	pushI := func(v int64) { stack = append(stack, uint64(v)) }
	pushD := func(v float64) { stack = append(stack, math.Float64bits(v)) }
	popI := func() int64 {
		v := int64(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		return v
	}
	popD := func() float64 {
		v := math.Float64frombits(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		return v
	}

	for pc := 0; pc < len(e.code); pc++ {
		in := e.code[pc]
		switch in.Op {
		case opConstI32, opConstI64:
			pushI(e.ints[in.Arg])
		case opConstF64:
			pushD(e.floats[in.Arg])

		case opLoad:
			pushD(externals[in.Arg].DoubleValue(item))
		case opCall:
			n := e.arities[in.Arg]
			for i := n - 1; i >= 0; i-- {
				args[i] = popD()
			}
			pushD(e.calls[in.Arg](args[:n]))

		case opI2L:
			pushI(int64(int32(popI())))
		case opI2D:
			pushD(float64(int32(popI())))
		case opL2I:
			pushI(int64(int32(popI())))
		case opL2D:
			pushD(float64(popI()))
		case opD2I:
			pushI(d2i(popD()))
		case opD2L:
			pushI(d2l(popD()))

		case opDNeg:
			pushD(-popD())
		case opDAdd:
			b, a := popD(), popD()
			pushD(a + b)
		case opDSub:
			b, a := popD(), popD()
			pushD(a - b)
		case opDMul:
			b, a := popD(), popD()
			pushD(a * b)
		case opDDiv:
			b, a := popD(), popD()
			pushD(a / b)
		case opDRem:
			b, a := popD(), popD()
			pushD(math.Mod(a, b))

		case opLShl:
			n, a := popI(), popI()
			pushI(a << (uint(n) & 63))
		case opLShr:
			n, a := popI(), popI()
			pushI(a >> (uint(n) & 63))
		case opLUshr:
			n, a := popI(), popI()
			pushI(int64(uint64(a) >> (uint(n) & 63)))
		case opLAnd:
			b, a := popI(), popI()
			pushI(a & b)
		case opLOr:
			b, a := popI(), popI()
			pushI(a | b)
		case opLXor:
			b, a := popI(), popI()
			pushI(a ^ b)

		case opDCmpL:
			b, a := popD(), popD()
			pushI(dcmp(a, b, -1))
		case opDCmpG:
			b, a := popD(), popD()
			pushI(dcmp(a, b, 1))

		case opIfEq:
			if popI() == 0 {
				pc = in.Arg - 1
			}
		case opIfNe:
			if popI() != 0 {
				pc = in.Arg - 1
			}
		case opIfLt:
			if popI() < 0 {
				pc = in.Arg - 1
			}
		case opIfGt:
			if popI() > 0 {
				pc = in.Arg - 1
			}
		case opIfLe:
			if popI() <= 0 {
				pc = in.Arg - 1
			}
		case opIfGe:
			if popI() >= 0 {
				pc = in.Arg - 1
			}
		case opGoto:
			pc = in.Arg - 1
		}
	}

	return math.Float64frombits(stack[len(stack)-1])
}

// dcmp is the three-way compare; unordered (NaN) results take the given
// sign, which is the only difference between the two compare opcodes.
func dcmp(a, b float64, unordered int64) int64 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	case a == b:
		return 0
	default:
		return unordered
	}
}
