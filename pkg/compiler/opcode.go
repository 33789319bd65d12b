package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// opcode identifies one instruction of a compiled expression. The
// instruction set mirrors a minimal typed stack machine: values live on a
// raw 64-bit slot stack and every opcode knows statically which kind it
// consumes and produces.
type opcode uint8

const (
	// Constants. Arg indexes the int or float pool.
	opConstI32 opcode = iota
	opConstI64
	opConstF64

	// External access.
	opLoad // Arg: variable slot; pushes externals[slot].DoubleValue(item)
	opCall // Arg: function index; pops arity doubles, pushes one

	// Casts.
	opI2L
	opI2D
	opL2I
	opL2D
	opD2I
	opD2L

	// Float64 arithmetic.
	opDNeg
	opDAdd
	opDSub
	opDMul
	opDDiv
	opDRem

	// Int64 bitwise.
	opLShl
	opLShr
	opLUshr
	opLAnd
	opLOr
	opLXor

	// Three-way compares; push int32 -1/0/1. They differ only in where
	// NaN sorts: dcmpl pushes -1 for unordered, dcmpg pushes +1.
	opDCmpL
	opDCmpG

	// Control flow. Arg is the jump target pc.
	opIfEq // pop int32, jump if == 0
	opIfNe
	opIfLt
	opIfGt
	opIfLe
	opIfGe
	opGoto
)

var opNames = map[opcode]string{
	opConstI32: "const.i32",
	opConstI64: "const.i64",
	opConstF64: "const.f64",
	opLoad:     "load",
	opCall:     "call",
	opI2L:      "i2l",
	opI2D:      "i2d",
	opL2I:      "l2i",
	opL2D:      "l2d",
	opD2I:      "d2i",
	opD2L:      "d2l",
	opDNeg:     "dneg",
	opDAdd:     "dadd",
	opDSub:     "dsub",
	opDMul:     "dmul",
	opDDiv:     "ddiv",
	opDRem:     "drem",
	opLShl:     "lshl",
	opLShr:     "lshr",
	opLUshr:    "lushr",
	opLAnd:     "land",
	opLOr:      "lor",
	opLXor:     "lxor",
	opDCmpL:    "dcmpl",
	opDCmpG:    "dcmpg",
	opIfEq:     "ifeq",
	opIfNe:     "ifne",
	opIfLt:     "iflt",
	opIfGt:     "ifgt",
	opIfLe:     "ifle",
	opIfGe:     "ifge",
	opGoto:     "goto",
}

func (op opcode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", uint8(op))
}

// instr is one emitted instruction. Arg's meaning depends on the opcode;
// it is unused for pure stack operations.
type instr struct {
	Op  opcode
	Arg int
}

// stackEffect returns the net stack-depth change of an instruction.
// Calls are handled separately because their effect depends on arity.
func (in instr) stackEffect() int {
	switch in.Op {
	case opConstI32, opConstI64, opConstF64, opLoad:
		return 1
	case opDAdd, opDSub, opDMul, opDDiv, opDRem,
		opLShl, opLShr, opLUshr, opLAnd, opLOr, opLXor,
		opDCmpL, opDCmpG,
		opIfEq, opIfNe, opIfLt, opIfGt, opIfLe, opIfGe:
		return -1
	default:
		return 0
	}
}

// Disassemble renders the compiled code one instruction per line, with
// resolved constants, variable names, and call targets as comments.
func (e *Expression) Disassemble() string {
	var b strings.Builder
	for pc, in := range e.code {
		fmt.Fprintf(&b, "%04d %s", pc, in.Op)
		switch in.Op {
		case opConstI32, opConstI64:
			fmt.Fprintf(&b, " %d ; %d", in.Arg, e.ints[in.Arg])
		case opConstF64:
			fmt.Fprintf(&b, " %d ; %s", in.Arg, strconv.FormatFloat(e.floats[in.Arg], 'g', -1, 64))
		case opLoad:
			fmt.Fprintf(&b, " %d ; %s", in.Arg, e.variables[in.Arg])
		case opCall:
			fn := e.funcs[in.Arg]
			fmt.Fprintf(&b, " %d ; %s/%d", in.Arg, fn.Name, fn.Arity)
		case opIfEq, opIfNe, opIfLt, opIfGt, opIfLe, opIfGe, opGoto:
			fmt.Fprintf(&b, " -> %04d", in.Arg)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
