// Package runtime provides the top-level expression engine.
package runtime

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/thomasrohde/scorex/pkg/compiler"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/formatter"
	"github.com/thomasrohde/scorex/pkg/functions"
	"github.com/thomasrohde/scorex/pkg/parser"
)

// Engine wires the compiler to a function table and caches compiled
// expressions by source text. All methods are safe for concurrent use.
type Engine struct {
	funcs   map[string]*functions.Func
	scope   *functions.Scope
	caching bool

	mu    sync.RWMutex
	cache map[string]*compiler.Expression
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithFunctions sets the function table.
func WithFunctions(table map[string]*functions.Func) Option {
	return func(e *Engine) {
		e.funcs = table
	}
}

// WithScope sets the visibility scope descriptors are validated against.
func WithScope(scope *functions.Scope) Option {
	return func(e *Engine) {
		e.scope = scope
	}
}

// WithoutCache disables the compiled-expression cache.
func WithoutCache() Option {
	return func(e *Engine) {
		e.caching = false
	}
}

// New creates an Engine. By default the built-in function table is used
// under the root scope and caching is enabled.
func New(opts ...Option) *Engine {
	e := &Engine{
		funcs:   functions.Defaults(),
		scope:   functions.Root,
		caching: true,
		cache:   make(map[string]*compiler.Expression),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile returns the compiled form of source, reusing a cached
// Expression when one exists. Compile failures are never cached.
func (e *Engine) Compile(source string) (*compiler.Expression, error) {
	if e.caching {
		e.mu.RLock()
		expr, ok := e.cache[source]
		e.mu.RUnlock()
		if ok {
			return expr, nil
		}
	}

	expr, err := compiler.CompileCustom(source, e.funcs, e.scope)
	if err != nil {
		return nil, err
	}

	if e.caching {
		e.mu.Lock()
		e.cache[source] = expr
		e.mu.Unlock()
	}
	return expr, nil
}

// Evaluate compiles source and evaluates it once against the given
// variable bindings. Every variable the expression uses must be bound.
func (e *Engine) Evaluate(source string, bindings map[string]float64) (float64, error) {
	expr, err := e.Compile(source)
	if err != nil {
		return 0, err
	}

	vars := expr.Variables()
	externals := make([]compiler.DoubleValues, len(vars))
	var missing []string
	for i, name := range vars {
		v, ok := bindings[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		externals[i] = compiler.DoubleConstant(v)
	}
	if len(missing) > 0 {
		return 0, &BindingError{Missing: missing}
	}

	return expr.Evaluate(0, externals), nil
}

// Check compiles source and returns its diagnostics, nil when valid.
func (e *Engine) Check(source string) []diagnostics.Diagnostic {
	_, err := e.Compile(source)
	if err == nil {
		return nil
	}
	if ce, ok := err.(*compiler.CompileError); ok {
		return ce.Diagnostics
	}
	return []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EInternal, err.Error(), nil, ""),
	}
}

// Format parses source and prints it back in canonical form.
func (e *Engine) Format(source string) (string, error) {
	tree, diags := parser.Parse(source, "<expr>")
	if len(diags) > 0 {
		return "", &compiler.CompileError{Diagnostics: diags}
	}
	return formatter.Format(tree), nil
}

// Disassemble compiles source and renders its instruction listing.
func (e *Engine) Disassemble(source string) (string, error) {
	expr, err := e.Compile(source)
	if err != nil {
		return "", err
	}
	return expr.Disassemble(), nil
}

// FunctionNames returns the callable function names in sorted order.
func (e *Engine) FunctionNames() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BindingError reports expression variables the caller left unbound.
type BindingError struct {
	Missing []string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("unbound variables: %s", strings.Join(e.Missing, ", "))
}
