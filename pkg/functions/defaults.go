package functions

import (
	"fmt"
	"math"
	"sort"
	"sync"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var manifestData []byte

// targets maps manifest target names to the Go functions they denote.
// Every entry is universal-scope and must pass Check at startup.
var targets = map[string]any{
	"math.Abs":        math.Abs,
	"math.Acos":       math.Acos,
	"math.Acosh":      math.Acosh,
	"math.Asin":       math.Asin,
	"math.Asinh":      math.Asinh,
	"math.Atan":       math.Atan,
	"math.Atan2":      math.Atan2,
	"math.Atanh":      math.Atanh,
	"math.Cbrt":       math.Cbrt,
	"math.Ceil":       math.Ceil,
	"math.Cos":        math.Cos,
	"math.Cosh":       math.Cosh,
	"math.Exp":        math.Exp,
	"math.Expm1":      math.Expm1,
	"math.Floor":      math.Floor,
	"math.Hypot":      math.Hypot,
	"math.Log":        math.Log,
	"math.Log10":      math.Log10,
	"math.Log1p":      math.Log1p,
	"math.Log2":       math.Log2,
	"math.Max":        math.Max,
	"math.Min":        math.Min,
	"math.Pow":        math.Pow,
	"math.Sin":        math.Sin,
	"math.Sinh":       math.Sinh,
	"math.Sqrt":       math.Sqrt,
	"math.Tan":        math.Tan,
	"math.Tanh":       math.Tanh,
	"scorex.Haversin": Haversin,
}

type manifestEntry struct {
	Target string `yaml:"target"`
	Arity  int    `yaml:"arity"`
}

// Defaults returns the process-wide default function table, built exactly
// once on first use from the embedded manifest. The returned map is shared
// and must be treated as read-only. A malformed manifest is a fatal
// startup error, not a per-compile failure.
var Defaults = sync.OnceValue(buildDefaults)

func buildDefaults() map[string]*Func {
	var entries map[string]manifestEntry
	if err := yaml.Unmarshal(manifestData, &entries); err != nil {
		panic(fmt.Sprintf("functions: malformed default function manifest: %v", err))
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	table := make(map[string]*Func, len(entries))
	for _, name := range names {
		entry := entries[name]
		target, ok := targets[entry.Target]
		if !ok {
			panic(fmt.Sprintf("functions: manifest entry %q names unknown target %q", name, entry.Target))
		}
		fn := NewFunc(name, entry.Arity, target)
		if err := Check(fn, Root); err != nil {
			panic(fmt.Sprintf("functions: manifest entry %q is not callable: %v", name, err))
		}
		table[name] = fn
	}
	return table
}
