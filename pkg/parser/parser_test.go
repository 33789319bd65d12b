package parser

import (
	"strings"
	"testing"

	"github.com/thomasrohde/scorex/pkg/ast"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
)

// helper to parse and fail on diagnostics
func mustParse(t *testing.T, source string) ast.Expr {
	t.Helper()
	expr, diags := Parse(source, "test.sx")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if expr == nil {
		t.Fatal("expected expression, got nil")
	}
	return expr
}

// helper asserting a parse failure with the given diagnostic code
func mustFail(t *testing.T, source, code string) diagnostics.Diagnostic {
	t.Helper()
	expr, diags := Parse(source, "test.sx")
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics for %q, got expression %T", source, expr)
	}
	if diags[0].Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, diags[0].Code, diags[0].Message)
	}
	return diags[0]
}

func asBinary(t *testing.T, e ast.Expr, op ast.BinaryOp) *ast.BinaryExpr {
	t.Helper()
	bin, ok := e.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected *ast.BinaryExpr, got %T", e)
	}
	if bin.Op != op {
		t.Fatalf("expected operator %q, got %q", op, bin.Op)
	}
	return bin
}

// ---------------------------------------------------------------------------
// Test: literals parse to the matching node kinds
// ---------------------------------------------------------------------------
func TestLiterals(t *testing.T) {
	if _, ok := mustParse(t, "0x1F").(*ast.HexLiteral); !ok {
		t.Error("0x1F should parse to HexLiteral")
	}
	if _, ok := mustParse(t, "017").(*ast.OctalLiteral); !ok {
		t.Error("017 should parse to OctalLiteral")
	}
	if _, ok := mustParse(t, "3.5").(*ast.DecimalLiteral); !ok {
		t.Error("3.5 should parse to DecimalLiteral")
	}
	if v, ok := mustParse(t, "doc_score").(*ast.VariableExpr); !ok || v.Name != "doc_score" {
		t.Error("doc_score should parse to VariableExpr")
	}
}

// ---------------------------------------------------------------------------
// Test: multiplication binds tighter than addition
// ---------------------------------------------------------------------------
func TestPrecedenceMulOverAdd(t *testing.T) {
	root := asBinary(t, mustParse(t, "2 + 3 * 4"), ast.OpAdd)
	asBinary(t, root.Right, ast.OpMul)
}

// ---------------------------------------------------------------------------
// Test: parentheses override precedence
// ---------------------------------------------------------------------------
func TestParenthesesOverride(t *testing.T) {
	root := asBinary(t, mustParse(t, "(2 + 3) * 4"), ast.OpMul)
	asBinary(t, root.Left, ast.OpAdd)
}

// ---------------------------------------------------------------------------
// Test: the full ladder, one level at a time
// ---------------------------------------------------------------------------
func TestPrecedenceLadder(t *testing.T) {
	tests := []struct {
		source string
		rootOp ast.BinaryOp
	}{
		{"a || b && c", ast.OpBoolOr},
		{"a && b | c", ast.OpBoolAnd},
		{"a | b ^ c", ast.OpOr},
		{"a ^ b & c", ast.OpXor},
		{"a & b == c", ast.OpAnd},
		{"a == b < c", ast.OpEqEq},
		{"a < b << c", ast.OpLt},
		{"a << b + c", ast.OpShl},
		{"a + b * c", ast.OpAdd},
		{"a * !b", ast.OpMul},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			asBinary(t, mustParse(t, tt.source), tt.rootOp)
		})
	}
}

// ---------------------------------------------------------------------------
// Test: binary operators associate left
// ---------------------------------------------------------------------------
func TestLeftAssociativity(t *testing.T) {
	root := asBinary(t, mustParse(t, "a - b - c"), ast.OpSub)
	asBinary(t, root.Left, ast.OpSub)
	if v, ok := root.Right.(*ast.VariableExpr); !ok || v.Name != "c" {
		t.Errorf("right operand should be 'c', got %T", root.Right)
	}
}

// ---------------------------------------------------------------------------
// Test: the conditional operator associates right
// ---------------------------------------------------------------------------
func TestConditionalRightAssociativity(t *testing.T) {
	cond, ok := mustParse(t, "a ? b : c ? d : e").(*ast.CondExpr)
	if !ok {
		t.Fatal("expected CondExpr at root")
	}
	if _, ok := cond.Else.(*ast.CondExpr); !ok {
		t.Errorf("else branch should be a nested CondExpr, got %T", cond.Else)
	}
}

// ---------------------------------------------------------------------------
// Test: unary operators nest and unary plus is dropped
// ---------------------------------------------------------------------------
func TestUnary(t *testing.T) {
	u, ok := mustParse(t, "-~x").(*ast.UnaryExpr)
	if !ok || u.Op != ast.OpNeg {
		t.Fatalf("expected negation at root, got %T", u)
	}
	inner, ok := u.Operand.(*ast.UnaryExpr)
	if !ok || inner.Op != ast.OpBitNot {
		t.Fatalf("expected bit-not inside, got %T", u.Operand)
	}

	if _, ok := mustParse(t, "+x").(*ast.VariableExpr); !ok {
		t.Error("unary plus should be dropped")
	}
}

// ---------------------------------------------------------------------------
// Test: calls with zero, one, and several arguments
// ---------------------------------------------------------------------------
func TestCalls(t *testing.T) {
	call, ok := mustParse(t, "f()").(*ast.CallExpr)
	if !ok || call.Name != "f" || len(call.Args) != 0 {
		t.Fatalf("f(): got %#v", call)
	}

	call, ok = mustParse(t, "min(a, b + 1)").(*ast.CallExpr)
	if !ok || call.Name != "min" || len(call.Args) != 2 {
		t.Fatalf("min(a, b + 1): got %#v", call)
	}
	asBinary(t, call.Args[1], ast.OpAdd)

	call, ok = mustParse(t, "haversin(a, b, c, d)").(*ast.CallExpr)
	if !ok || len(call.Args) != 4 {
		t.Fatalf("haversin: got %#v", call)
	}
}

// ---------------------------------------------------------------------------
// Test: nested calls keep argument structure
// ---------------------------------------------------------------------------
func TestNestedCalls(t *testing.T) {
	call, ok := mustParse(t, "max(min(a, b), c)").(*ast.CallExpr)
	if !ok {
		t.Fatal("expected CallExpr at root")
	}
	if _, ok := call.Args[0].(*ast.CallExpr); !ok {
		t.Errorf("first argument should be a CallExpr, got %T", call.Args[0])
	}
}

// ---------------------------------------------------------------------------
// Test: parse errors
// ---------------------------------------------------------------------------
func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		code   string
	}{
		{"", diagnostics.EParse},
		{"1 +", diagnostics.EParse},
		{"1 2", diagnostics.EParse},
		{"(1 + 2", diagnostics.EParse},
		{"f(1,", diagnostics.EParse},
		{"a ? b", diagnostics.EParse},
		{"a = 1", diagnostics.ELex},
		{"2 @ 3", diagnostics.ELex},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			mustFail(t, tt.source, tt.code)
		})
	}
}

// ---------------------------------------------------------------------------
// Test: trailing input is reported, not silently dropped
// ---------------------------------------------------------------------------
func TestTrailingInputMessage(t *testing.T) {
	d := mustFail(t, "1 2", diagnostics.EParse)
	if !strings.Contains(d.Message, "trailing") {
		t.Errorf("expected trailing-input message, got %q", d.Message)
	}
}
