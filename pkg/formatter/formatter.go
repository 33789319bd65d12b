// Package formatter implements the canonical expression printer.
package formatter

import (
	"strings"

	"github.com/thomasrohde/scorex/pkg/ast"
)

// Precedence table for binary operators (higher = tighter binding). The
// conditional operator sits below all of them.
var precedence = map[ast.BinaryOp]int{
	ast.OpBoolOr:  1,
	ast.OpBoolAnd: 2,
	ast.OpOr:      3,
	ast.OpXor:     4,
	ast.OpAnd:     5,
	ast.OpEqEq: 6, ast.OpNeq: 6,
	ast.OpLt: 7, ast.OpGt: 7, ast.OpLtEq: 7, ast.OpGtEq: 7,
	ast.OpShl: 8, ast.OpShr: 8, ast.OpUshr: 8,
	ast.OpAdd: 9, ast.OpSub: 9,
	ast.OpMul: 10, ast.OpDiv: 10, ast.OpMod: 10,
}

const (
	condPrec    = 0
	unaryPrec   = 11
	primaryPrec = 12
)

func exprPrec(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.CondExpr:
		return condPrec
	case *ast.BinaryExpr:
		return precedence[expr.Op]
	case *ast.UnaryExpr:
		return unaryPrec
	default:
		return primaryPrec
	}
}

func needsParens(child ast.Expr, parentPrec int, isRight bool) bool {
	childPrec := exprPrec(child)
	if childPrec < parentPrec {
		return true
	}
	// All binary operators associate left: same-precedence on the right
	// side re-parenthesizes.
	if childPrec == parentPrec && isRight {
		return true
	}
	return false
}

// Format pretty-prints an expression tree back to canonical source:
// single spaces around binary and conditional operators, tight unary
// operators, and only the parentheses the grammar requires.
func Format(e ast.Expr) string {
	return formatExpr(e)
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.HexLiteral:
		return expr.Text
	case *ast.OctalLiteral:
		return expr.Text
	case *ast.DecimalLiteral:
		return expr.Text
	case *ast.VariableExpr:
		return expr.Name
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a)
		}
		return expr.Name + "(" + strings.Join(args, ", ") + ")"
	case *ast.UnaryExpr:
		operandStr := formatExpr(expr.Operand)
		switch expr.Operand.(type) {
		case *ast.BinaryExpr, *ast.CondExpr, *ast.UnaryExpr:
			operandStr = "(" + operandStr + ")"
		}
		return string(expr.Op) + operandStr
	case *ast.BinaryExpr:
		prec := precedence[expr.Op]
		leftStr := formatExpr(expr.Left)
		rightStr := formatExpr(expr.Right)
		if needsParens(expr.Left, prec, false) {
			leftStr = "(" + leftStr + ")"
		}
		if needsParens(expr.Right, prec, true) {
			rightStr = "(" + rightStr + ")"
		}
		return leftStr + " " + string(expr.Op) + " " + rightStr
	case *ast.CondExpr:
		// The condition is one level above ?: in the grammar; a nested
		// conditional there needs parens. The branches are ?:-level
		// themselves (right associative), so they never do.
		condStr := formatExpr(expr.Cond)
		if _, ok := expr.Cond.(*ast.CondExpr); ok {
			condStr = "(" + condStr + ")"
		}
		return condStr + " ? " + formatExpr(expr.Then) + " : " + formatExpr(expr.Else)
	}
	return ""
}
