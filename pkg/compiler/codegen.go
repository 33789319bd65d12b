package compiler

import (
	"fmt"
	"strconv"

	"github.com/thomasrohde/scorex/pkg/ast"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/functions"
)

// codegen holds the output of one compilation: the instruction buffer,
// constant pools, referenced functions, and the variable binding table.
// Generation is a pure recursion over the immutable tree; this is the
// only mutable state.
type codegen struct {
	code   []instr
	ints   []int64
	floats []float64

	funcs     []*functions.Func
	funcIndex map[string]int

	bindings *bindingTable
	table    map[string]*functions.Func
}

func newCodegen(table map[string]*functions.Func) *codegen {
	return &codegen{
		funcIndex: make(map[string]int),
		bindings:  newBindingTable(),
		table:     table,
	}
}

func (g *codegen) emit(op opcode, arg int) int {
	g.code = append(g.code, instr{Op: op, Arg: arg})
	return len(g.code) - 1
}

// emitJump emits a branch with an unresolved target; patch fixes it up.
func (g *codegen) emitJump(op opcode) int {
	return g.emit(op, -1)
}

// patch points the jump at position at to the next emitted instruction.
func (g *codegen) patch(at int) {
	g.code[at].Arg = len(g.code)
}

func (g *codegen) intConst(v int64) int {
	g.ints = append(g.ints, v)
	return len(g.ints) - 1
}

func (g *codegen) floatConst(v float64) int {
	g.floats = append(g.floats, v)
	return len(g.floats) - 1
}

// funcRef interns a function descriptor and returns its call index.
func (g *codegen) funcRef(fn *functions.Func) int {
	if idx, ok := g.funcIndex[fn.Name]; ok {
		return idx
	}
	idx := len(g.funcs)
	g.funcs = append(g.funcs, fn)
	g.funcIndex[fn.Name] = idx
	return idx
}

// genError carries one compile diagnostic out of the recursion.
type genError struct {
	diag diagnostics.Diagnostic
}

func (e *genError) Error() string {
	return e.diag.Message
}

func (g *codegen) errf(code string, span ast.Span, format string, args ...any) error {
	return &genError{diag: diagnostics.MakeDiag(code, fmt.Sprintf(format, args...), &span, "")}
}

// generate emits instructions for node's subtree such that exactly one
// value of the expected kind is left on the stack, with no other
// observable effect. Casts are inserted at the producer: every node
// finishes by converting its natural result kind to the one requested.
func (g *codegen) generate(node ast.Expr, expected Kind) error {
	switch n := node.(type) {
	case *ast.HexLiteral:
		v, err := strconv.ParseInt(n.Text[2:], 16, 64)
		if err != nil {
			return g.errf(diagnostics.EParse, n.Span, "hex literal (%s) does not fit in 64 bits", n.Text)
		}
		g.pushInt(expected, v)

	case *ast.OctalLiteral:
		v, err := strconv.ParseInt(n.Text[1:], 8, 64)
		if err != nil {
			return g.errf(diagnostics.EParse, n.Span, "octal literal (%s) does not fit in 64 bits", n.Text)
		}
		g.pushInt(expected, v)

	case *ast.DecimalLiteral:
		v, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return g.errf(diagnostics.EParse, n.Span, "malformed decimal literal (%s)", n.Text)
		}
		g.emit(opConstF64, g.floatConst(v))
		g.cast(Float64, expected)

	case *ast.VariableExpr:
		g.emit(opLoad, g.bindings.resolve(n.Name))
		g.cast(Float64, expected)

	case *ast.CallExpr:
		fn := g.table[n.Name]
		if fn == nil {
			return g.errf(diagnostics.EUnknownFn, n.Span, "unrecognized function call (%s)", n.Name)
		}
		if len(n.Args) != fn.Arity {
			return g.errf(diagnostics.EArity, n.Span,
				"expected (%d) arguments for function call (%s), but found (%d)",
				fn.Arity, n.Name, len(n.Args))
		}
		for _, arg := range n.Args {
			if err := g.generate(arg, Float64); err != nil {
				return err
			}
		}
		g.emit(opCall, g.funcRef(fn))
		g.cast(Float64, expected)

	case *ast.UnaryExpr:
		return g.generateUnary(n, expected)

	case *ast.BinaryExpr:
		return g.generateBinary(n, expected)

	case *ast.CondExpr:
		// Exactly one branch executes; both produce the expected kind.
		if err := g.generate(n.Cond, Int32); err != nil {
			return err
		}
		jumpElse := g.emitJump(opIfEq)
		if err := g.generate(n.Then, expected); err != nil {
			return err
		}
		jumpEnd := g.emitJump(opGoto)
		g.patch(jumpElse)
		if err := g.generate(n.Else, expected); err != nil {
			return err
		}
		g.patch(jumpEnd)

	default:
		// The parser only produces the kinds above; anything else is a
		// generator/grammar mismatch.
		panic(fmt.Sprintf("compiler: unknown expression node %T", node))
	}
	return nil
}

func (g *codegen) generateUnary(n *ast.UnaryExpr, expected Kind) error {
	switch n.Op {
	case ast.OpNeg:
		if err := g.generate(n.Operand, Float64); err != nil {
			return err
		}
		g.emit(opDNeg, 0)
		g.cast(Float64, expected)

	case ast.OpBitNot:
		if err := g.generate(n.Operand, Int64); err != nil {
			return err
		}
		g.emit(opConstI64, g.intConst(-1))
		g.emit(opLXor, 0)
		g.cast(Int64, expected)

	case ast.OpBoolNot:
		if err := g.generate(n.Operand, Int32); err != nil {
			return err
		}
		jumpTrue := g.emitJump(opIfEq)
		g.pushBool(expected, false)
		jumpEnd := g.emitJump(opGoto)
		g.patch(jumpTrue)
		g.pushBool(expected, true)
		g.patch(jumpEnd)

	default:
		panic(fmt.Sprintf("compiler: unknown unary operator %q", n.Op))
	}
	return nil
}

// comparisons maps each predicate to its compare variant and branch.
// eq/gt/gte compare with dcmpl (NaN sorts last: any comparison against
// NaN misses the branch), lt/lte with dcmpg (NaN sorts first). neq is
// eq's comparator with the inverted branch. This asymmetry is part of
// the language's semantics and must not be normalized.
var comparisons = map[ast.BinaryOp]struct {
	cmp    opcode
	branch opcode
}{
	ast.OpEqEq: {opDCmpL, opIfEq},
	ast.OpNeq:  {opDCmpL, opIfNe},
	ast.OpGt:   {opDCmpL, opIfGt},
	ast.OpGtEq: {opDCmpL, opIfGe},
	ast.OpLt:   {opDCmpG, opIfLt},
	ast.OpLtEq: {opDCmpG, opIfLe},
}

var floatBinaryOps = map[ast.BinaryOp]opcode{
	ast.OpAdd: opDAdd,
	ast.OpSub: opDSub,
	ast.OpMul: opDMul,
	ast.OpDiv: opDDiv,
	ast.OpMod: opDRem,
}

var longBinaryOps = map[ast.BinaryOp]opcode{
	ast.OpAnd: opLAnd,
	ast.OpOr:  opLOr,
	ast.OpXor: opLXor,
}

var shiftOps = map[ast.BinaryOp]opcode{
	ast.OpShl:  opLShl,
	ast.OpShr:  opLShr,
	ast.OpUshr: opLUshr,
}

func (g *codegen) generateBinary(n *ast.BinaryExpr, expected Kind) error {
	if op, ok := floatBinaryOps[n.Op]; ok {
		if err := g.generate(n.Left, Float64); err != nil {
			return err
		}
		if err := g.generate(n.Right, Float64); err != nil {
			return err
		}
		g.emit(op, 0)
		g.cast(Float64, expected)
		return nil
	}

	if op, ok := shiftOps[n.Op]; ok {
		if err := g.generate(n.Left, Int64); err != nil {
			return err
		}
		if err := g.generate(n.Right, Int32); err != nil {
			return err
		}
		g.emit(op, 0)
		g.cast(Int64, expected)
		return nil
	}

	if op, ok := longBinaryOps[n.Op]; ok {
		if err := g.generate(n.Left, Int64); err != nil {
			return err
		}
		if err := g.generate(n.Right, Int64); err != nil {
			return err
		}
		g.emit(op, 0)
		g.cast(Int64, expected)
		return nil
	}

	if c, ok := comparisons[n.Op]; ok {
		if err := g.generate(n.Left, Float64); err != nil {
			return err
		}
		if err := g.generate(n.Right, Float64); err != nil {
			return err
		}
		g.emit(c.cmp, 0)
		jumpTrue := g.emitJump(c.branch)
		g.pushBool(expected, false)
		jumpEnd := g.emitJump(opGoto)
		g.patch(jumpTrue)
		g.pushBool(expected, true)
		g.patch(jumpEnd)
		return nil
	}

	switch n.Op {
	case ast.OpBoolAnd:
		// The right operand is never evaluated when the left is false.
		if err := g.generate(n.Left, Int32); err != nil {
			return err
		}
		jumpFalse1 := g.emitJump(opIfEq)
		if err := g.generate(n.Right, Int32); err != nil {
			return err
		}
		jumpFalse2 := g.emitJump(opIfEq)
		g.pushBool(expected, true)
		jumpEnd := g.emitJump(opGoto)
		g.patch(jumpFalse1)
		g.patch(jumpFalse2)
		g.pushBool(expected, false)
		g.patch(jumpEnd)

	case ast.OpBoolOr:
		// The right operand is never evaluated when the left is true.
		if err := g.generate(n.Left, Int32); err != nil {
			return err
		}
		jumpTrue1 := g.emitJump(opIfNe)
		if err := g.generate(n.Right, Int32); err != nil {
			return err
		}
		jumpTrue2 := g.emitJump(opIfNe)
		g.pushBool(expected, false)
		jumpEnd := g.emitJump(opGoto)
		g.patch(jumpTrue1)
		g.patch(jumpTrue2)
		g.pushBool(expected, true)
		g.patch(jumpEnd)

	default:
		panic(fmt.Sprintf("compiler: unknown binary operator %q", n.Op))
	}
	return nil
}

// assemble packages the emitted code into an immutable Expression.
func (g *codegen) assemble(sourceText string) *Expression {
	maxStack := 0
	depth := 0
	maxArity := 0
	for _, in := range g.code {
		if in.Op == opCall {
			arity := g.funcs[in.Arg].Arity
			if arity > maxArity {
				maxArity = arity
			}
			depth += 1 - arity
		} else {
			depth += in.stackEffect()
		}
		if depth > maxStack {
			maxStack = depth
		}
	}
	if maxStack < 1 {
		maxStack = 1
	}

	calls := make([]func([]float64) float64, len(g.funcs))
	arities := make([]int, len(g.funcs))
	for i, fn := range g.funcs {
		calls[i] = functions.Caller(fn.Target)
		arities[i] = fn.Arity
	}

	return &Expression{
		source:    sourceText,
		variables: g.bindings.variables(),
		code:      g.code,
		ints:      g.ints,
		floats:    g.floats,
		funcs:     g.funcs,
		calls:     calls,
		arities:   arities,
		maxStack:  maxStack,
		maxArity:  maxArity,
	}
}
