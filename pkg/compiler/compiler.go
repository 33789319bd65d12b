package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/functions"
	"github.com/thomasrohde/scorex/pkg/parser"
)

// maxSourceLength caps the source text embedded in an Expression for
// display. Clipping never affects compiled semantics.
const maxSourceLength = 16384

// CompileError wraps the diagnostics of a failed compilation.
type CompileError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *CompileError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

func compileError(diags ...diagnostics.Diagnostic) error {
	return &CompileError{Diagnostics: diags}
}

// Compile compiles an expression against the default function table under
// the root scope.
func Compile(sourceText string) (*Expression, error) {
	return CompileCustom(sourceText, functions.Defaults(), functions.Root)
}

// CompileCustom compiles an expression against a caller-supplied function
// table. Every descriptor is validated against the visibility scope
// before any code is generated; the first invalid descriptor aborts the
// compilation. scope must be non-nil.
func CompileCustom(sourceText string, funcs map[string]*functions.Func, scope *functions.Scope) (*Expression, error) {
	if scope == nil {
		return nil, compileError(diagnostics.MakeDiag(
			diagnostics.EScope, "a visibility scope must be given", nil, ""))
	}

	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := functions.Check(funcs[name], scope); err != nil {
			code := diagnostics.EFnSig
			if ce, ok := err.(*functions.CheckError); ok {
				code = ce.Code
			}
			return nil, compileError(diagnostics.MakeDiag(code, err.Error(), nil, ""))
		}
	}

	tree, diags := parser.Parse(sourceText, "<expr>")
	if len(diags) > 0 {
		return nil, &CompileError{Diagnostics: diags}
	}

	g := newCodegen(funcs)
	if err := g.generate(tree, Float64); err != nil {
		if ge, ok := err.(*genError); ok {
			return nil, compileError(ge.diag)
		}
		return nil, compileError(diagnostics.MakeDiag(diagnostics.EInternal, err.Error(), nil, ""))
	}

	return g.assemble(clipSource(sourceText)), nil
}

func clipSource(s string) string {
	if len(s) <= maxSourceLength {
		return s
	}
	return s[:maxSourceLength-3] + "..."
}
