package formatter

import (
	"testing"

	"github.com/thomasrohde/scorex/pkg/parser"
)

// helper: parse, format, compare
func checkFormat(t *testing.T, source, want string) {
	t.Helper()
	expr, diags := parser.Parse(source, "test.sx")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", source, diags)
	}
	if got := Format(expr); got != want {
		t.Errorf("Format(%q) = %q, want %q", source, got, want)
	}
}

// ---------------------------------------------------------------------------
// Test: canonical spacing
// ---------------------------------------------------------------------------
func TestSpacing(t *testing.T) {
	checkFormat(t, "2+3*4", "2 + 3 * 4")
	checkFormat(t, "a||b&&c", "a || b && c")
	checkFormat(t, "x<<2", "x << 2")
	checkFormat(t, "a?b:c", "a ? b : c")
}

// ---------------------------------------------------------------------------
// Test: redundant parentheses are dropped
// ---------------------------------------------------------------------------
func TestDropsRedundantParens(t *testing.T) {
	checkFormat(t, "((a)+(b))*c", "(a + b) * c")
	checkFormat(t, "(((1)))", "1")
	checkFormat(t, "(a*b)+c", "a * b + c")
	checkFormat(t, "(a+b)+c", "a + b + c")
}

// ---------------------------------------------------------------------------
// Test: required parentheses survive
// ---------------------------------------------------------------------------
func TestKeepsRequiredParens(t *testing.T) {
	checkFormat(t, "(a+b)*c", "(a + b) * c")
	checkFormat(t, "a-(b-c)", "a - (b - c)")
	checkFormat(t, "a/(b*c)", "a / (b * c)")
	checkFormat(t, "(a||b)&&c", "(a || b) && c")
	checkFormat(t, "(a?b:c)*2", "(a ? b : c) * 2")
	checkFormat(t, "(a?b:c)?d:e", "(a ? b : c) ? d : e")
}

// ---------------------------------------------------------------------------
// Test: the right-associative conditional needs no parens on its branches
// ---------------------------------------------------------------------------
func TestConditionalBranches(t *testing.T) {
	checkFormat(t, "a ? b : (c ? d : e)", "a ? b : c ? d : e")
	checkFormat(t, "a ? (b ? c : d) : e", "a ? b ? c : d : e")
}

// ---------------------------------------------------------------------------
// Test: unary operators
// ---------------------------------------------------------------------------
func TestUnary(t *testing.T) {
	checkFormat(t, "-x", "-x")
	checkFormat(t, "!x", "!x")
	checkFormat(t, "~0", "~0")
	checkFormat(t, "-(a+b)", "-(a + b)")
	checkFormat(t, "-(-x)", "-(-x)")
	checkFormat(t, "-x*y", "-x * y")
}

// ---------------------------------------------------------------------------
// Test: literals keep their spelling
// ---------------------------------------------------------------------------
func TestLiteralSpelling(t *testing.T) {
	checkFormat(t, "0x1F", "0x1F")
	checkFormat(t, "017", "017")
	checkFormat(t, ".5", ".5")
	checkFormat(t, "2.5e-4", "2.5e-4")
}

// ---------------------------------------------------------------------------
// Test: calls
// ---------------------------------------------------------------------------
func TestCalls(t *testing.T) {
	checkFormat(t, "f()", "f()")
	checkFormat(t, "min( a ,b+1 )", "min(a, b + 1)")
	checkFormat(t, "max(min(a,b),c)", "max(min(a, b), c)")
}

// ---------------------------------------------------------------------------
// Test: formatting is a fixed point
// ---------------------------------------------------------------------------
func TestIdempotent(t *testing.T) {
	sources := []string{
		"((a)+(b))*c",
		"a-(b-c)",
		"a ? b : c ? d : e",
		"-(a+b)*~c",
		"min(a, max(b, .5)) > 0x1F ? a : 017",
	}
	for _, source := range sources {
		expr, diags := parser.Parse(source, "test.sx")
		if len(diags) > 0 {
			t.Fatalf("unexpected diagnostics for %q: %v", source, diags)
		}
		once := Format(expr)
		expr2, diags := parser.Parse(once, "test.sx")
		if len(diags) > 0 {
			t.Fatalf("formatted output %q does not parse: %v", once, diags)
		}
		if twice := Format(expr2); twice != once {
			t.Errorf("not idempotent: %q -> %q -> %q", source, once, twice)
		}
	}
}
