// Package ast defines the scorex expression AST node types.
package ast

import "fmt"

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// String renders a span as file:line:col.
func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartCol)
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd     BinaryOp = "+"
	OpSub     BinaryOp = "-"
	OpMul     BinaryOp = "*"
	OpDiv     BinaryOp = "/"
	OpMod     BinaryOp = "%"
	OpShl     BinaryOp = "<<"
	OpShr     BinaryOp = ">>"
	OpUshr    BinaryOp = ">>>"
	OpAnd     BinaryOp = "&"
	OpOr      BinaryOp = "|"
	OpXor     BinaryOp = "^"
	OpEqEq    BinaryOp = "=="
	OpNeq     BinaryOp = "!="
	OpLt      BinaryOp = "<"
	OpGt      BinaryOp = ">"
	OpLtEq    BinaryOp = "<="
	OpGtEq    BinaryOp = ">="
	OpBoolAnd BinaryOp = "&&"
	OpBoolOr  BinaryOp = "||"
)

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg     UnaryOp = "-"
	OpBitNot  UnaryOp = "~"
	OpBoolNot UnaryOp = "!"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Literals ---

// HexLiteral is an integer literal written with a 0x/0X prefix.
// Text keeps the raw source spelling including the prefix.
type HexLiteral struct {
	Span Span
	Text string
}

func (n *HexLiteral) Kind() string   { return "HexLiteral" }
func (n *HexLiteral) NodeSpan() Span { return n.Span }
func (n *HexLiteral) exprNode()      {}

// OctalLiteral is an integer literal written with a leading 0.
type OctalLiteral struct {
	Span Span
	Text string
}

func (n *OctalLiteral) Kind() string   { return "OctalLiteral" }
func (n *OctalLiteral) NodeSpan() Span { return n.Span }
func (n *OctalLiteral) exprNode()      {}

// DecimalLiteral is a decimal floating-point literal.
type DecimalLiteral struct {
	Span Span
	Text string
}

func (n *DecimalLiteral) Kind() string   { return "DecimalLiteral" }
func (n *DecimalLiteral) NodeSpan() Span { return n.Span }
func (n *DecimalLiteral) exprNode()      {}

// --- Variables and calls ---

// VariableExpr references an external value bound by name at evaluation time.
type VariableExpr struct {
	Span Span
	Name string
}

func (n *VariableExpr) Kind() string   { return "VariableExpr" }
func (n *VariableExpr) NodeSpan() Span { return n.Span }
func (n *VariableExpr) exprNode()      {}

// CallExpr invokes a named external function with ordered arguments.
type CallExpr struct {
	Span Span
	Name string
	Args []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// --- Operators ---

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

// CondExpr is the ternary conditional cond ? then : else.
type CondExpr struct {
	Span Span
	Cond Expr
	Then Expr
	Else Expr
}

func (n *CondExpr) Kind() string   { return "CondExpr" }
func (n *CondExpr) NodeSpan() Span { return n.Span }
func (n *CondExpr) exprNode()      {}
