package compiler

import (
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/thomasrohde/scorex/internal/testutil"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/functions"
)

// helper to compile against the default table
func mustCompile(t *testing.T, source string) *Expression {
	t.Helper()
	expr, err := Compile(source)
	if err != nil {
		t.Fatalf("unexpected compile error for %q: %v", source, err)
	}
	return expr
}

// helper to compile and evaluate with named constant bindings
func eval(t *testing.T, source string, bindings map[string]float64) float64 {
	t.Helper()
	expr := mustCompile(t, source)
	vars := expr.Variables()
	externals := make([]DoubleValues, len(vars))
	for i, name := range vars {
		v, ok := bindings[name]
		if !ok {
			t.Fatalf("expression %q uses unbound variable %q", source, name)
		}
		externals[i] = DoubleConstant(v)
	}
	return expr.Evaluate(0, externals)
}

// helper asserting a compile failure with the given diagnostic code
func mustFailCompile(t *testing.T, source, code string) {
	t.Helper()
	_, err := Compile(source)
	if err == nil {
		t.Fatalf("expected compile error for %q", source)
	}
	ce, ok := err.(*CompileError)
	if !ok {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	for _, d := range ce.Diagnostics {
		if d.Code == code {
			return
		}
	}
	t.Fatalf("expected diagnostic %s for %q, got: %v", code, source, err)
}

// ---------------------------------------------------------------------------
// Test: IEEE-754 arithmetic, including infinities and NaN
// ---------------------------------------------------------------------------
func TestArithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"1 / 2", 0.5},
		{"7 % 3", 1},
		{"-7 % 3", -1},
		{"-5", -5},
		{"--5", 5},
		{"1 / 0", math.Inf(1)},
		{"-1 / 0", math.Inf(-1)},
		{"1e308 * 10", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := eval(t, tt.source, nil)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got := eval(t, "0 / 0", nil); !math.IsNaN(got) {
		t.Errorf("0 / 0: got %v, want NaN", got)
	}
}

// ---------------------------------------------------------------------------
// Test: literal forms and their values
// ---------------------------------------------------------------------------
func TestLiteralForms(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"0x1F", 31},
		{"0XFF", 255},
		{"017", 15},
		{"0", 0},
		{"3.5", 3.5},
		{".5", 0.5},
		{"1e3", 1000},
		{"0x7FFFFFFFFFFFFFFF", float64(math.MaxInt64)},
		{"0777777777777777777777", float64(math.MaxInt64)},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := eval(t, tt.source, nil)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: literals that overflow 64 bits are compile errors
// ---------------------------------------------------------------------------
func TestLiteralOverflow(t *testing.T) {
	mustFailCompile(t, "0x10000000000000000", diagnostics.EParse)
	mustFailCompile(t, "02000000000000000000000", diagnostics.EParse)
}

// ---------------------------------------------------------------------------
// Test: boolean and comparison results are exactly 0 or 1
// ---------------------------------------------------------------------------
func TestBooleans(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"1 && 1", 1},
		{"1 && 0", 0},
		{"0 || 2", 1},
		{"0 || 0", 0},
		{"!0", 1},
		{"!3", 0},
		{"1 < 2", 1},
		{"2 < 1", 0},
		{"2 == 2", 1},
		{"2 != 2", 0},
		{"0.5 && 1", 0}, // boolean operands truncate to int32 first
		{"0.5 ? 1 : 2", 2},
		{"1 ? 42 : 99", 42},
		{"0 ? 42 : 99", 99},
		{"0 ? 1 : 0 ? 2 : 3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := eval(t, tt.source, nil)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: every comparison against NaN is false except !=
// ---------------------------------------------------------------------------
func TestNaNComparisons(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"(0/0) == (0/0)", 0},
		{"(0/0) == 1", 0},
		{"(0/0) != 1", 1},
		{"(0/0) != (0/0)", 1},
		{"(0/0) < 1", 0},
		{"(0/0) > 1", 0},
		{"(0/0) <= 1", 0},
		{"(0/0) >= 1", 0},
		{"1 < (0/0)", 0},
		{"1 >= (0/0)", 0},
		{"(0/0) ? 1 : 2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := eval(t, tt.source, nil)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: && and || skip the right operand; ?: evaluates one branch
// ---------------------------------------------------------------------------
func TestShortCircuit(t *testing.T) {
	tests := []struct {
		source    string
		want      float64
		wantCalls int
	}{
		{"0 && tally(1)", 0, 0},
		{"1 && tally(1)", 1, 1},
		{"1 || tally(1)", 1, 0},
		{"0 || tally(1)", 1, 1},
		{"0 ? tally(1) : 2", 2, 0},
		{"1 ? 2 : tally(1)", 2, 0},
		{"1 ? tally(1) : 2", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			calls := 0
			tally := func(x float64) float64 {
				calls++
				return x
			}
			table := map[string]*functions.Func{
				"tally": functions.NewFunc("tally", 1, tally),
			}
			expr, err := CompileCustom(tt.source, table, functions.Root)
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}
			got := expr.Evaluate(0, nil)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if calls != tt.wantCalls {
				t.Errorf("tally called %d times, want %d", calls, tt.wantCalls)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: variables bind dense slots in first-use order
// ---------------------------------------------------------------------------
func TestBindingOrder(t *testing.T) {
	expr := mustCompile(t, "b + a")
	vars := expr.Variables()
	if len(vars) != 2 || vars[0] != "b" || vars[1] != "a" {
		t.Fatalf("b + a: variables = %v, want [b a]", vars)
	}

	expr = mustCompile(t, "a + b")
	vars = expr.Variables()
	if len(vars) != 2 || vars[0] != "a" || vars[1] != "b" {
		t.Fatalf("a + b: variables = %v, want [a b]", vars)
	}

	expr = mustCompile(t, "x + x * x")
	if vars = expr.Variables(); len(vars) != 1 {
		t.Fatalf("x + x * x: variables = %v, want one slot", vars)
	}
}

// ---------------------------------------------------------------------------
// Test: externals are addressed positionally, per Variables order
// ---------------------------------------------------------------------------
func TestPositionalExternals(t *testing.T) {
	expr := mustCompile(t, "b - a")
	got := expr.Evaluate(0, []DoubleValues{DoubleConstant(10), DoubleConstant(1)})
	if got != 9 {
		t.Errorf("b - a with b=10, a=1: got %v, want 9", got)
	}
}

// ---------------------------------------------------------------------------
// Test: the item index reaches every external
// ---------------------------------------------------------------------------
func TestPerItemValues(t *testing.T) {
	expr := mustCompile(t, "score * 2")
	source := DoubleFunc(func(item int) float64 { return float64(item) + 0.5 })
	for item := 0; item < 4; item++ {
		got := expr.Evaluate(item, []DoubleValues{source})
		want := (float64(item) + 0.5) * 2
		if got != want {
			t.Errorf("item %d: got %v, want %v", item, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: unknown function and arity mismatch diagnostics
// ---------------------------------------------------------------------------
func TestCallErrors(t *testing.T) {
	mustFailCompile(t, "nope(1)", diagnostics.EUnknownFn)
	mustFailCompile(t, "abs(1, 2)", diagnostics.EArity)
	mustFailCompile(t, "abs()", diagnostics.EArity)
}

// ---------------------------------------------------------------------------
// Test: every table descriptor is validated before generation, used or not
// ---------------------------------------------------------------------------
func TestTableValidatedUpFront(t *testing.T) {
	bad := map[string]*functions.Func{
		"abs":    functions.NewFunc("abs", 1, math.Abs),
		"broken": functions.NewFunc("broken", 1, func(xs ...float64) float64 { return 0 }),
	}
	_, err := CompileCustom("abs(1)", bad, functions.Root)
	if err == nil {
		t.Fatal("expected compile error for table with variadic descriptor")
	}
	ce, ok := err.(*CompileError)
	if !ok || ce.Diagnostics[0].Code != diagnostics.EFnSig {
		t.Fatalf("expected %s, got %v", diagnostics.EFnSig, err)
	}
}

func TestUnreachableScope(t *testing.T) {
	other := functions.NewScope(nil, "other")
	private := functions.NewScope(other, "private")
	table := map[string]*functions.Func{
		"abs": {Name: "abs", Arity: 1, Target: math.Abs, Scope: private},
	}
	_, err := CompileCustom("abs(1)", table, functions.Root)
	if err == nil {
		t.Fatal("expected compile error for unreachable scope")
	}
	ce, ok := err.(*CompileError)
	if !ok || ce.Diagnostics[0].Code != diagnostics.EScope {
		t.Fatalf("expected %s, got %v", diagnostics.EScope, err)
	}
}

func TestNilScope(t *testing.T) {
	_, err := CompileCustom("1", functions.Defaults(), nil)
	if err == nil {
		t.Fatal("expected compile error for nil scope")
	}
	ce, ok := err.(*CompileError)
	if !ok || ce.Diagnostics[0].Code != diagnostics.EScope {
		t.Fatalf("expected %s, got %v", diagnostics.EScope, err)
	}
}

// ---------------------------------------------------------------------------
// Test: float-to-integer conversion truncates toward zero with saturation
// ---------------------------------------------------------------------------
func TestTruncationAndSaturation(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"2.9 & 3", 2},
		{"(0 - 2.9) & 7", 6},         // -2 & 7
		{"(0/0) & 7", 0},             // NaN truncates to 0
		{"(1/0) & 1", 1},             // +Inf saturates to MaxInt64
		{"(-1/0) & 1", 0},            // -Inf saturates to MinInt64
		{"(1/0) >> 62", 1},           // MaxInt64 >> 62
		{"1 << 64", 1},               // shift count masked to 0..63
		{"1 << 65", 2},
		{"-16 >> 2", -4},             // arithmetic shift keeps the sign
		{"-1 >>> 32", 4294967295},    // logical shift zero-fills
		{"~0", -1},
		{"12 & 10", 8},
		{"12 | 10", 14},
		{"12 ^ 10", 6},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := eval(t, tt.source, nil)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: evaluation is repeatable; the program never self-mutates
// ---------------------------------------------------------------------------
func TestEvaluateIdempotent(t *testing.T) {
	expr := mustCompile(t, "x * x + sqrt(x)")
	externals := []DoubleValues{DoubleConstant(9)}
	first := expr.Evaluate(0, externals)
	for i := 0; i < 100; i++ {
		if got := expr.Evaluate(0, externals); got != first {
			t.Fatalf("evaluation %d: got %v, want %v", i, got, first)
		}
	}
	if first != 84 {
		t.Errorf("9*9 + sqrt(9): got %v, want 84", first)
	}
}

// ---------------------------------------------------------------------------
// Test: one Expression shared across goroutines
// ---------------------------------------------------------------------------
func TestConcurrentEvaluate(t *testing.T) {
	expr := mustCompile(t, "x > 2 ? pow(x, 2) : x + haversin(0, 0, 0, 0)")
	source := DoubleFunc(func(item int) float64 { return float64(item) })

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := 0; item < 500; item++ {
				want := float64(item)
				if want > 2 {
					want = want * want
				}
				if got := expr.Evaluate(item, []DoubleValues{source}); got != want {
					t.Errorf("item %d: got %v, want %v", item, got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// ---------------------------------------------------------------------------
// Test: oversized source is clipped for display only
// ---------------------------------------------------------------------------
func TestSourceTextClipping(t *testing.T) {
	long := "0" + strings.Repeat("+0", 8200)
	expr := mustCompile(t, long)
	text := expr.SourceText()
	if len(text) != maxSourceLength {
		t.Errorf("clipped source length = %d, want %d", len(text), maxSourceLength)
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("clipped source should end with ...")
	}
	if got := expr.Evaluate(0, nil); got != 0 {
		t.Errorf("clipping must not change semantics: got %v", got)
	}

	short := mustCompile(t, "1 + 1")
	if short.SourceText() != "1 + 1" {
		t.Errorf("short source should be verbatim, got %q", short.SourceText())
	}
}

// ---------------------------------------------------------------------------
// Test: Variables returns a copy
// ---------------------------------------------------------------------------
func TestVariablesCopy(t *testing.T) {
	expr := mustCompile(t, "a + b")
	vars := expr.Variables()
	vars[0] = "clobbered"
	if again := expr.Variables(); again[0] != "a" {
		t.Errorf("Variables must return a copy, got %v", again)
	}
}

// ---------------------------------------------------------------------------
// Test: the disassembly names constants, variables, and calls
// ---------------------------------------------------------------------------
func TestDisassemble(t *testing.T) {
	expr := mustCompile(t, "a + 1")
	listing := expr.Disassemble()
	for _, want := range []string{"load 0 ; a", "const.f64", "dadd"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}

	expr = mustCompile(t, "min(a, 2) > 1 ? 1 : 0")
	listing = expr.Disassemble()
	for _, want := range []string{"call 0 ; min/2", "dcmpl", "ifgt", "-> "} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: the full listing of a conditional, against a golden file
// ---------------------------------------------------------------------------
func TestDisassembleGolden(t *testing.T) {
	expr := mustCompile(t, "x >= 2 ? sqrt(x) : -x")
	testutil.Golden(t, filepath.Join("testdata", "conditional.disasm"), expr.Disassemble())
}

// ---------------------------------------------------------------------------
// Test: CompileError strings carry the diagnostic code
// ---------------------------------------------------------------------------
func TestCompileErrorString(t *testing.T) {
	_, err := Compile("nope(1)")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), diagnostics.EUnknownFn) {
		t.Errorf("error should name the code, got %q", err.Error())
	}
}
