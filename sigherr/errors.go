// Package sigherr implements Sigh's error taxonomy as typed, coded errors:
// each error kind is a small struct carrying a message and the offending
// ast.Node, exposed through a common SighError interface.
package sigherr

import (
	"fmt"
	"strings"

	"github.com/cdelzotti/sigh/ast"
)

// Code classifies an error into one of six categories.
type Code int

const (
	None Code = iota
	Resolution
	Shape
	Inheritance
	ControlFlow
	Async
	Runtime
)

func (c Code) String() string {
	switch c {
	case Resolution:
		return "resolution"
	case Shape:
		return "shape"
	case Inheritance:
		return "inheritance"
	case ControlFlow:
		return "control-flow"
	case Async:
		return "async"
	case Runtime:
		return "runtime"
	default:
		return "none"
	}
}

// SighError is implemented by every error kind in the taxonomy.
type SighError interface {
	error
	Code() Code
	ast.Positioner
}

// FormatWithCode renders an error with its taxonomy code, numeric and by
// name, as "(E%03d:%s) %s".
func FormatWithCode(e SighError) string {
	return fmt.Sprintf("(E%03d:%s) %s", e.Code(), e.Code(), e.Error())
}

type baseErr struct {
	ast.Positioner
	msg string
}

func (e baseErr) Error() string { return e.msg }

// ResolutionError: unknown name, use-before-declaration, wrong kind of
// declaration.
type ResolutionError struct{ baseErr }

func NewResolutionError(at ast.Node, msg string, args ...any) ResolutionError {
	return ResolutionError{baseErr{at, fmt.Sprintf(msg, args...)}}
}
func (ResolutionError) Code() Code { return Resolution }

// ShapeError: wrong arity, non-assignable type, incompatible class shape,
// missing field, bad indexing.
type ShapeError struct{ baseErr }

func NewShapeError(at ast.Node, msg string, args ...any) ShapeError {
	return ShapeError{baseErr{at, fmt.Sprintf(msg, args...)}}
}
func (ShapeError) Code() Code { return Shape }

// InheritanceError: undeclared ancestor, parent not a class, cyclic
// inheritance, missing constructor, illegal override, illegal name Daddy,
// uncapitalized class name.
type InheritanceError struct{ baseErr }

func NewInheritanceError(at ast.Node, msg string, args ...any) InheritanceError {
	return InheritanceError{baseErr{at, fmt.Sprintf(msg, args...)}}
}
func (InheritanceError) Code() Code { return Inheritance }

// ControlFlowError: missing return, Void/non-Void mismatch, Daddy outside a
// method.
type ControlFlowError struct{ baseErr }

func NewControlFlowError(at ast.Node, msg string, args ...any) ControlFlowError {
	return ControlFlowError{baseErr{at, fmt.Sprintf(msg, args...)}}
}
func (ControlFlowError) Code() Code { return ControlFlow }

// AsyncError: borning a non-async function, assigning a Void async result,
// accessing an async method externally, borning before the call.
type AsyncError struct{ baseErr }

func NewAsyncError(at ast.Node, msg string, args ...any) AsyncError {
	return AsyncError{baseErr{at, fmt.Sprintf(msg, args...)}}
}
func (AsyncError) Code() Code { return Async }

// RuntimeError: null dereference, bad array index, div/overflow propagated
// from the host, calling a null function. Runtime errors terminate
// interpretation and carry the offending node, wrapping the underlying
// host error in a single pass-through layer.
type RuntimeError struct {
	baseErr
	Cause error
}

func NewRuntimeError(at ast.Node, cause error, msg string, args ...any) RuntimeError {
	return RuntimeError{baseErr{at, fmt.Sprintf(msg, args...)}, cause}
}
func (RuntimeError) Code() Code   { return Runtime }
func (e RuntimeError) Unwrap() error { return e.Cause }

// List collects semantic errors gathered during analysis. Analysis never
// aborts early, so every error the reactor produced is available together.
type List struct {
	errs []SighError
}

func (l *List) With(err ...SighError) *List {
	if l == nil {
		return &List{errs: err}
	}
	l.errs = append(l.errs, err...)
	return l
}

func (l *List) Errors() []SighError {
	if l == nil {
		return nil
	}
	return l.errs
}

func (l *List) HasError() bool {
	return l != nil && len(l.errs) > 0
}

func (l *List) String() string {
	if l == nil || len(l.errs) == 0 {
		return ""
	}
	sb := strings.Builder{}
	for _, e := range l.errs {
		sb.WriteString(FormatWithCode(e))
		sb.WriteString("\n")
	}
	return sb.String()
}
