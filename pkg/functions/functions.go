package functions

import (
	"fmt"
	"reflect"

	"github.com/thomasrohde/scorex/pkg/diagnostics"
)

// MaxArity is the largest number of parameters a bound function may take.
const MaxArity = 256

var float64Type = reflect.TypeOf(float64(0))

// Func describes an external function callable from compiled expressions.
// Target must be a freestanding Go func taking exactly Arity float64
// parameters and returning float64. Scope is the defining visibility
// scope; nil means universal.
type Func struct {
	Name   string
	Arity  int
	Target any
	Scope  *Scope
}

// NewFunc builds a descriptor for a universal-scope function.
func NewFunc(name string, arity int, target any) *Func {
	return &Func{Name: name, Arity: arity, Target: target}
}

// CheckError reports why a descriptor is not an eligible call target.
type CheckError struct {
	Code    string // diagnostics.EFnSig or diagnostics.EScope
	Message string
}

func (e *CheckError) Error() string {
	return e.Message
}

// Check validates that f is an eligible compile-time-bound call target for
// code compiled under the given visibility scope: the defining scope must
// be reachable, the target must be a fixed-arity freestanding function,
// and every parameter and the single result must be float64. Check runs
// once per descriptor at table construction, never per call site, and
// never mutates the descriptor.
func Check(f *Func, scope *Scope) error {
	if scope == nil {
		return &CheckError{
			Code:    diagnostics.EScope,
			Message: "a visibility scope must be given",
		}
	}
	if !scope.Reaches(f.Scope) {
		return &CheckError{
			Code: diagnostics.EScope,
			Message: fmt.Sprintf("function (%s) is defined in scope (%s), which is not reachable from scope (%s)",
				f.Name, f.Scope.Name(), scope.Name()),
		}
	}
	if f.Target == nil {
		return sigError(f.Name, "has no target")
	}
	t := reflect.TypeOf(f.Target)
	if t.Kind() != reflect.Func {
		return sigError(f.Name, fmt.Sprintf("target is %s, not a function", t.Kind()))
	}
	v := reflect.ValueOf(f.Target)
	if v.IsNil() {
		return sigError(f.Name, "has a nil function target")
	}
	if t.IsVariadic() {
		return sigError(f.Name, "must not be variadic")
	}
	if f.Arity < 0 || f.Arity > MaxArity {
		return sigError(f.Name, fmt.Sprintf("arity %d is outside 0..%d", f.Arity, MaxArity))
	}
	if t.NumIn() != f.Arity {
		return sigError(f.Name, fmt.Sprintf("target takes %d parameters, descriptor declares %d", t.NumIn(), f.Arity))
	}
	for i := 0; i < t.NumIn(); i++ {
		if t.In(i) != float64Type {
			return sigError(f.Name, "must take only float64 parameters")
		}
	}
	if t.NumOut() != 1 || t.Out(0) != float64Type {
		return sigError(f.Name, "must return a single float64")
	}
	return nil
}

func sigError(name, msg string) error {
	return &CheckError{
		Code:    diagnostics.EFnSig,
		Message: fmt.Sprintf("function (%s) %s", name, msg),
	}
}

// Caller builds the invocation closure for a checked target. Small
// arities get a direct typed path; the rest go through reflection.
func Caller(target any) func([]float64) float64 {
	switch fn := target.(type) {
	case func() float64:
		return func([]float64) float64 { return fn() }
	case func(float64) float64:
		return func(a []float64) float64 { return fn(a[0]) }
	case func(float64, float64) float64:
		return func(a []float64) float64 { return fn(a[0], a[1]) }
	case func(float64, float64, float64) float64:
		return func(a []float64) float64 { return fn(a[0], a[1], a[2]) }
	case func(float64, float64, float64, float64) float64:
		return func(a []float64) float64 { return fn(a[0], a[1], a[2], a[3]) }
	}
	v := reflect.ValueOf(target)
	return func(a []float64) float64 {
		in := make([]reflect.Value, len(a))
		for i, arg := range a {
			in[i] = reflect.ValueOf(arg)
		}
		return v.Call(in)[0].Float()
	}
}
