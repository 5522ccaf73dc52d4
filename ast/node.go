// Package ast defines the AST node and declaration kinds the analyzer and
// interpreter operate over. Concrete syntax and parsing live outside this
// module: every node here is built directly, either by a caller's front
// end or, in tests, by hand.
package ast

import (
	"go/token"
	"reflect"
)

// Positioner locates a node in the original source text.
type Positioner interface {
	Pos() token.Pos
	End() token.Pos
}

// Range is the default, embeddable implementation of Positioner.
type Range struct {
	PosStart token.Pos
	PosEnd   token.Pos
}

func (r Range) Pos() token.Pos { return r.PosStart }
func (r Range) End() token.Pos { return r.PosEnd }

// RangeBetween spans from the start of fst to the end of snd.
func RangeBetween(fst, snd Positioner) Range {
	return Range{fst.Pos(), snd.End()}
}

// Node is the base interface implemented by every AST node kind (expressions,
// statements, types and declarations alike). Identity (pointer equality) is
// what the reactor and the scope graph key on: two nodes are never == unless
// they are literally the same allocation.
type Node interface {
	Positioner
	// Hash returns a stable identifier for the node's identity. Async
	// function declarations use it as their threadIndex.
	Hash() uint64
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node, including declarations that
// double as statements (VarDecl, FunDecl, ...).
type Stmt interface {
	Node
	stmtNode()
}

// TypeNode is implemented by the syntactic type annotations (SimpleType,
// ArrayType, UnbornType) that denote a types.Type once resolved.
type TypeNode interface {
	Node
	typeNode()
}

// hashPointer derives a stable per-node identity from the node's own
// storage address. Nodes are always handled as pointers (*FunDecl, ...), so
// this gives every node a Hash() that never changes across calls and never
// collides with another live node — which is exactly what an async
// function's threadIndex needs.
func hashPointer(node any) uint64 {
	return uint64(reflect.ValueOf(node).Pointer())
}
