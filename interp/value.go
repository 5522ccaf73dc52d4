// Package interp implements the tree-walking interpreter of spec.md §4.3: it
// re-walks the same AST the analysis package decorated, reading back its
// reactor attributes (type, scope, decl, parent, threadIndex, returns) to
// drive runtime behaviour, grounded throughout on
// norswap/sigh/interpreter/Interpreter.java from original_source/.
package interp

import (
	"fmt"
	"strings"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// Runtime value representation (spec.md §4.3):
//
//	Int, Float, Bool, String: int64, float64, bool, string
//	null:                     the nullValue sentinel
//	Array:                    []any, fixed length
//	Struct:                   map[string]any
//	Function:                 the declaring ast.Decl (*ast.FunDecl,
//	                          *ast.MethodDecl or *ast.SyntheticDecl),
//	                          except struct constructors which are a
//	                          *constructorValue
//	Type:                     the corresponding declaration node
//	Class instance:           *classInstance

type nullValue struct{}

// Null is Sigh's single null value; every reference type's zero value.
var Null any = nullValue{}

func isNull(v any) bool {
	_, ok := v.(nullValue)
	return ok
}

// constructorValue wraps a $StructName constructor expression's result, the
// struct declaration it builds (spec.md §4.2 "Constructor expression").
type constructorValue struct {
	Decl *ast.StructDecl
}

// classInstance is a live object: its field/method values, the concrete
// class's own ClassScope (used both to look up methods honouring
// inheritance and to seed a method call's storage frame), and its static
// type (spec.md §4.3 "Class construction").
type classInstance struct {
	fields map[string]any
	scope  *scope.ClassScope
	typ    *types.Class
}

func newClassInstance(s *scope.ClassScope, t *types.Class) *classInstance {
	return &classInstance{fields: map[string]any{}, scope: s, typ: t}
}

func (c *classInstance) setField(name string, v any) { c.fields[name] = v }
func (c *classInstance) getField(name string) any    { return c.fields[name] }

// refresh copies every slot visible in storage's own frame back into the
// instance's field map (spec.md §4.3 "class construction... the instance is
// refreshed from the topmost ClassScope-backed frame", and the
// SUPPLEMENTED FEATURES note on the exact refresh walk).
func (c *classInstance) refresh(frame *ScopeStorage) {
	for name, v := range frame.ownSlots() {
		c.fields[name] = v
	}
}

// stringify implements spec.md §4.3's `+`/print stringification rules,
// grounded on Interpreter.java's convertToString.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case nullValue:
		return "null"
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case string:
		return val
	case []any:
		return stringifyArray(val)
	case *ast.FunDecl:
		return val.Name
	case *ast.MethodDecl:
		return val.Name
	case *ast.StructDecl:
		return val.Name
	case *ast.ClassDecl:
		return val.Name
	case *ast.SyntheticDecl:
		return val.Name
	case *constructorValue:
		return "$" + val.Decl.Name
	case *classInstance:
		return fmt.Sprintf("%s%s", val.typ.Name, stringifyFields(val.fields))
	default:
		return fmt.Sprintf("%v", val)
	}
}

func stringifyArray(arr []any) string {
	parts := make([]string, len(arr))
	for i, e := range arr {
		parts[i] = stringify(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func stringifyFields(fields map[string]any) string {
	var parts []string
	for name, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", name, stringify(v)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
