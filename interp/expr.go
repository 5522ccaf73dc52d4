package interp

import (
	"math"
	"reflect"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// reference reads a variable's current value from storage, or returns the
// declaration itself for a function/struct/class/built-in name (spec.md
// §4.3 "reference").
func (i *Interpreter) reference(n *ast.Reference) any {
	declAny := i.attr(n, "decl")
	s := i.attr(n, "scope").(scope.Scope)
	threadIndex := i.attr(n, "threadIndex").(uint64)

	isVariable := false
	switch decl := declAny.(type) {
	case *ast.VarDecl, *ast.Parameter:
		isVariable = true
	case *ast.SyntheticDecl:
		isVariable = decl.Kind == ast.SyntheticVariable
	}
	if !isVariable {
		return declAny
	}
	if s == i.rootScope {
		return i.rootStorage.Get(s, n.Name)
	}
	return i.frame(threadIndex).Get(s, n.Name)
}

// constructor evaluates `$Ref` to the wrapped struct-building callable
// (spec.md §4.2 "Constructor expression").
func (i *Interpreter) constructor(n *ast.Constructor) any {
	refDecl := i.eval(n.Ref)
	sd, ok := refDecl.(*ast.StructDecl)
	if !ok {
		i.fail(n, nil, "$ operator target is not a struct")
		return nil
	}
	return &constructorValue{Decl: sd}
}

func (i *Interpreter) arrayLiteral(n *ast.ArrayLiteral) any {
	out := make([]any, len(n.Components))
	for idx, c := range n.Components {
		out[idx] = i.eval(c)
	}
	return out
}

// fieldAccess reads a field off a struct record, class instance, or an
// array's synthetic `length` field (spec.md §4.2 "Field access").
func (i *Interpreter) fieldAccess(n *ast.FieldAccess) any {
	stem := i.eval(n.Stem)
	if isNull(stem) {
		i.fail(n, nil, "accessing field %s of a null value", n.FieldName)
		return nil
	}
	switch st := stem.(type) {
	case *classInstance:
		return st.getField(n.FieldName)
	case map[string]any:
		return st[n.FieldName]
	case []any:
		return int64(len(st))
	default:
		i.fail(n, nil, "cannot access field %s", n.FieldName)
		return nil
	}
}

func (i *Interpreter) nonNullArray(e ast.Expr) []any {
	v := i.eval(e)
	if isNull(v) {
		i.fail(e, nil, "indexing a null array")
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		i.fail(e, nil, "indexing a non-array value")
		return nil
	}
	return arr
}

func (i *Interpreter) index(e ast.Expr) int {
	v := i.eval(e)
	iv, _ := v.(int64)
	if iv < 0 {
		i.fail(e, nil, "negative array index: %d", iv)
	}
	if iv >= math.MaxInt32-1 {
		i.fail(e, nil, "array index exceeds max array index: %d", iv)
	}
	return int(iv)
}

func (i *Interpreter) arrayAccess(n *ast.ArrayAccess) any {
	arr := i.nonNullArray(n.Array)
	idx := i.index(n.Index)
	if idx < 0 || idx >= len(arr) {
		i.fail(n, nil, "array index %d out of bounds for length %d", idx, len(arr))
		return nil
	}
	return arr[idx]
}

func (i *Interpreter) unaryExpr(n *ast.UnaryExpr) any {
	v, _ := i.eval(n.Operand).(bool)
	return !v
}

// binaryExpr implements spec.md §4.2/§4.3's binary operators, grounded on
// Interpreter.java's binaryExpression/numericOp.
func (i *Interpreter) binaryExpr(n *ast.BinaryExpr) any {
	switch n.Operator {
	case ast.And:
		l, _ := i.eval(n.Left).(bool)
		if !l {
			return false
		}
		r, _ := i.eval(n.Right).(bool)
		return r
	case ast.Or:
		l, _ := i.eval(n.Left).(bool)
		if l {
			return true
		}
		r, _ := i.eval(n.Right).(bool)
		return r
	}

	leftType, _ := i.attr(n.Left, "type").(types.Type)
	rightType, _ := i.attr(n.Right, "type").(types.Type)
	left := i.eval(n.Left)
	right := i.eval(n.Right)

	if n.Operator == ast.Ciblings {
		return i.ciblingsOf(left, right)
	}

	if n.Operator == ast.Add && (leftType == types.String || rightType == types.String) {
		return stringify(left) + stringify(right)
	}

	floating := leftType == types.Float || rightType == types.Float
	numeric := floating || leftType == types.Int

	if numeric {
		return i.numericOp(n, floating, left, right)
	}

	switch n.Operator {
	case ast.Equal:
		return valuesEqual(leftType, left, right)
	case ast.NotEqual:
		return !valuesEqual(leftType, left, right)
	}
	panic("interp: unreachable binary operator")
}

func (i *Interpreter) classTypeOf(v any) *types.Class {
	switch val := v.(type) {
	case *ast.ClassDecl:
		cls, _ := i.attr(val, "declared").(*types.Class)
		return cls
	case *classInstance:
		return val.typ
	}
	return nil
}

// ciblingsOf implements the structural-sibling test (spec.md §4.2
// "Binary expressions", GLOSSARY "ciblingsOf"): true iff the left operand's
// class shape accepts the right operand's class shape.
func (i *Interpreter) ciblingsOf(left, right any) any {
	leftClass := i.classTypeOf(left)
	rightClass := i.classTypeOf(right)
	if leftClass == nil || rightClass == nil {
		return false
	}
	ok, _ := types.ClassShapeCompatible(leftClass, rightClass)
	return ok
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case float64:
		return t
	}
	return 0
}

func toInt(v any) int64 {
	iv, _ := v.(int64)
	return iv
}

func (i *Interpreter) numericOp(n *ast.BinaryExpr, floating bool, left, right any) any {
	if floating {
		lf, rf := toFloat(left), toFloat(right)
		switch n.Operator {
		case ast.Multiply:
			return lf * rf
		case ast.Divide:
			return lf / rf
		case ast.Remainder:
			return math.Mod(lf, rf)
		case ast.Add:
			return lf + rf
		case ast.Subtract:
			return lf - rf
		case ast.Greater:
			return lf > rf
		case ast.Lower:
			return lf < rf
		case ast.GreaterEqual:
			return lf >= rf
		case ast.LowerEqual:
			return lf <= rf
		case ast.Equal:
			return lf == rf
		case ast.NotEqual:
			return lf != rf
		}
		panic("interp: unreachable float operator")
	}

	li, ri := toInt(left), toInt(right)
	switch n.Operator {
	case ast.Multiply:
		if li != 0 && ri != 0 && ((li*ri)/ri != li || (ri == -1 && li == math.MinInt64)) {
			i.fail(n, nil, "integer overflow")
		}
		return li * ri
	case ast.Divide:
		if ri == 0 {
			i.fail(n, nil, "division by zero")
		}
		if ri == -1 && li == math.MinInt64 {
			i.fail(n, nil, "integer overflow")
		}
		return li / ri
	case ast.Remainder:
		if ri == 0 {
			i.fail(n, nil, "division by zero")
		}
		return li % ri
	case ast.Add:
		if s := li + ri; (ri > 0 && s < li) || (ri < 0 && s > li) {
			i.fail(n, nil, "integer overflow")
		}
		return li + ri
	case ast.Subtract:
		if d := li - ri; (ri > 0 && d > li) || (ri < 0 && d < li) {
			i.fail(n, nil, "integer overflow")
		}
		return li - ri
	case ast.Greater:
		return li > ri
	case ast.Lower:
		return li < ri
	case ast.GreaterEqual:
		return li >= ri
	case ast.LowerEqual:
		return li <= ri
	case ast.Equal:
		return li == ri
	case ast.NotEqual:
		return li != ri
	}
	panic("interp: unreachable int operator")
}

// valuesEqual implements spec.md §4.2 "Equality": primitives compare by
// value, everything else by reference identity.
func valuesEqual(leftType types.Type, left, right any) bool {
	if leftType != nil && leftType.IsPrimitive() {
		return left == right
	}
	return referenceEqual(left, right)
}

// referenceEqual compares reference-kind values (arrays, structs, class
// instances, null) by identity; Go slices and maps are not themselves
// comparable, so their backing storage address stands in for object
// identity (mirrors Java's `==` on Object[]/HashMap references).
func referenceEqual(a, b any) bool {
	switch av := a.(type) {
	case nullValue:
		_, ok := b.(nullValue)
		return ok
	case *classInstance:
		bv, ok := b.(*classInstance)
		return ok && av == bv
	case *constructorValue:
		bv, ok := b.(*constructorValue)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		return ok && reflect.ValueOf(av).Pointer() == reflect.ValueOf(bv).Pointer()
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && reflect.ValueOf(av).Pointer() == reflect.ValueOf(bv).Pointer()
	default:
		return a == b
	}
}

// assignment implements spec.md §4.2 "Assignment" for the three legal
// left-hand-side shapes.
func (i *Interpreter) assignment(n *ast.Assignment) any {
	switch left := n.Left.(type) {
	case *ast.Reference:
		s := i.attr(left, "scope").(scope.Scope)
		threadIndex := i.attr(n, "threadIndex").(uint64)
		val := coerceToType(i.eval(n.Right), i.attr(n, "type"))
		if s == i.rootScope {
			i.rootStorage.Set(s, left.Name, val)
		} else {
			i.frame(threadIndex).Set(s, left.Name, val)
		}
		return val

	case *ast.ArrayAccess:
		arr := i.nonNullArray(left.Array)
		idx := i.index(left.Index)
		if idx < 0 || idx >= len(arr) {
			i.fail(n, nil, "array index %d out of bounds for length %d", idx, len(arr))
			return nil
		}
		val := i.eval(n.Right)
		arr[idx] = val
		return val

	case *ast.FieldAccess:
		stem := i.eval(left.Stem)
		if isNull(stem) {
			i.fail(n, nil, "accessing field %s of a null value", left.FieldName)
			return nil
		}
		val := i.eval(n.Right)
		switch st := stem.(type) {
		case *classInstance:
			st.setField(left.FieldName, val)
		case map[string]any:
			st[left.FieldName] = val
		default:
			i.fail(n, nil, "cannot assign field %s", left.FieldName)
		}
		return val
	}
	panic("interp: unreachable assignment target")
}
