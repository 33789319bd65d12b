// Package help holds the built-in quick reference shown by the CLI.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/scorex/pkg/functions"
)

// QUICKREF is the top-level help text.
const QUICKREF = `scorex expression language v1.0 quick reference

An expression is compiled once and evaluated per item, always producing
a float64. Integer and boolean subexpressions are widened to float64 at
the boundary.

Topics (scorex help <topic>):
  syntax       grammar and precedence
  literals     numeric literal forms
  operators    operator semantics
  functions    calling and registering functions
  variables    external variable bindings
  diagnostics  error codes and output format
  examples     worked examples

Run 'scorex funcs' for the built-in function index.
`

// TopicList is the display order of help topics.
var TopicList = []string{
	"syntax",
	"literals",
	"operators",
	"functions",
	"variables",
	"diagnostics",
	"examples",
}

// Topics maps topic names to their help text.
var Topics = map[string]string{
	"syntax": `Grammar, loosest to tightest binding:

  expr        := orExpr ('?' expr ':' expr)?
  orExpr      := andExpr ('||' andExpr)*
  andExpr     := bitOr ('&&' bitOr)*
  bitOr       := bitXor ('|' bitXor)*
  bitXor      := bitAnd ('^' bitAnd)*
  bitAnd      := equality ('&' equality)*
  equality    := relational (('==' | '!=') relational)*
  relational  := shift (('<' | '>' | '<=' | '>=') shift)*
  shift       := additive (('<<' | '>>' | '>>>') additive)*
  additive    := multiplicative (('+' | '-') multiplicative)*
  multiplicative := unary (('*' | '/' | '%') unary)*
  unary       := ('+' | '-' | '~' | '!')? unary | primary
  primary     := literal | variable | call | '(' expr ')'

All binary operators associate left; '?:' associates right.
`,
	"literals": `Numeric literals:

  decimal   3, 3.5, .5, 1e3, 2.5e-4
  hex       0x1F, 0XFF (64-bit range)
  octal     017, 0777 (leading zero, 64-bit range)

Hex and octal literals are integers; decimals are float64. A lone '0'
is the octal zero. Literals that overflow 64 bits are compile errors.
`,
	"operators": `Operator semantics:

  + - * / %      IEEE-754 float64 arithmetic ('%' is remainder)
  << >> >>>      64-bit shifts; the count is masked to 0..63
  & | ^ ~        64-bit two's-complement bitwise operations
  == != < > <= >=  comparisons producing 1 (true) or 0 (false)
  && || !        boolean operators; zero is false, non-zero is true
  c ? a : b      conditional; only the taken branch is evaluated

'&&' and '||' short-circuit: the right operand is not evaluated when
the left operand decides the result. Comparing NaN with ==, !=, <, >,
<= or >= is always false except !=, which is always true.

Operands are converted at operator boundaries: bitwise and shift
operators truncate float64 toward zero with saturation (NaN becomes 0);
boolean operands are truncated to 32 bits first.
`,
	"functions": `Function calls:

  abs(x), min(a, b), haversin(lat1, lon1, lat2, lon2)

Calls bind at compile time against the function table. Every function
takes a fixed number of float64 parameters (up to 256) and returns
float64. Unknown names and wrong argument counts are compile errors.

Custom tables are per-compilation: build a map of descriptors with
functions.NewFunc and pass it to compiler.CompileCustom together with
a visibility scope. Descriptors defined in an unreachable scope are
rejected before any code is generated.
`,
	"variables": `Any identifier that is not a function call is an external variable:

  doc_score * 0.7 + recency

Variables are bound by position: Expression.Variables() lists the
names in first-use order, and Evaluate takes one DoubleValues source
per name, in that order. Identifiers are [A-Za-z_$][A-Za-z0-9_$]*.
`,
	"diagnostics": `Error codes:

  E_LEX         malformed token
  E_PARSE       grammar violation or overflowing literal
  E_UNKNOWN_FN  call to a name not in the function table
  E_ARITY       wrong number of call arguments
  E_FN_SIG      function descriptor with an invalid signature
  E_SCOPE       function defined in an unreachable scope
  E_MANIFEST    malformed built-in function manifest
  E_INTERNAL    compiler invariant violation
  E_IO          file or stream problem

Diagnostics print as JSON by default; --pretty switches to
file:line:col text with hints.
`,
	"examples": `Examples:

  scorex eval '2 + 3 * 4'
  scorex eval 'sqrt(a*a + b*b)' --bind a=3 --bind b=4
  scorex eval 'score > 0.5 ? boost : 1' --bind score=0.7 --bind boost=2
  scorex dump '0x1F << 2'
  scorex fmt '((a)+(b))*c'
  scorex check 'min(1)'
  scorex repl
`,
}

// MatchTopic resolves a topic name, allowing unambiguous prefixes.
func MatchTopic(query string) (string, string, error) {
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic: %s", query)
	default:
		return "", "", fmt.Errorf("ambiguous help topic %s (matches %s)", query, strings.Join(matches, ", "))
	}
}

// FunctionIndex lists the default function table, one line per
// function with its arity, plus a total.
func FunctionIndex() string {
	table := functions.Defaults()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %-10s arity %d\n", name, table[name].Arity)
	}
	fmt.Fprintf(&b, "Total: %d functions\n", len(names))
	return b.String()
}
