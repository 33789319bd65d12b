// Package compiler turns parsed scorex expressions into immutable,
// concurrency-safe evaluators.
package compiler

import "fmt"

// Kind is the compile-time numeric representation of a value in flight.
// It never exists at runtime; the generator threads the kind its parent
// expects through the recursion and inserts casts at the producer.
type Kind int

const (
	Int32 Kind = iota
	Int64
	Float64
)

func (k Kind) String() string {
	switch k {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// cast emits the minimal conversion from the kind at the top of the
// evaluation stack to the requested kind. The reflexive cast emits
// nothing. Kinds outside the three numeric kinds are a contract
// violation, not a user error.
func (g *codegen) cast(from, to Kind) {
	if from == to {
		return
	}
	switch {
	case from == Int32 && to == Int64:
		g.emit(opI2L, 0)
	case from == Int32 && to == Float64:
		g.emit(opI2D, 0)
	case from == Int64 && to == Int32:
		g.emit(opL2I, 0)
	case from == Int64 && to == Float64:
		g.emit(opL2D, 0)
	case from == Float64 && to == Int32:
		g.emit(opD2I, 0)
	case from == Float64 && to == Int64:
		g.emit(opD2L, 0)
	default:
		panic(fmt.Sprintf("compiler: invalid cast %s -> %s", from, to))
	}
}

// pushInt emits an integer literal materialized at the requested kind.
func (g *codegen) pushInt(kind Kind, v int64) {
	switch kind {
	case Int32:
		g.emit(opConstI32, g.intConst(int64(int32(v))))
	case Int64:
		g.emit(opConstI64, g.intConst(v))
	case Float64:
		g.emit(opConstF64, g.floatConst(float64(v)))
	default:
		panic(fmt.Sprintf("compiler: invalid expected kind %s", kind))
	}
}

// pushBool emits a boolean literal materialized at the requested kind.
// No boolean kind exists at runtime; truth is 1, falsehood 0.
func (g *codegen) pushBool(kind Kind, truth bool) {
	var v int64
	if truth {
		v = 1
	}
	g.pushInt(kind, v)
}
