package types

import "fmt"

// Equal reports structural equality: same variant and, recursively, same
// contents for Array/Unborn, same signature for Fun, same ordered fields
// for Struct, same name for Class (classes are nominal once you are past
// the shape-compatibility check in ClassShapeCompatible).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Array:
		bv, ok := b.(*Array)
		return ok && Equal(av.Component, bv.Component)
	case *Unborn:
		bv, ok := b.(*Unborn)
		return ok && Equal(av.Component, bv.Component)
	case *Fun:
		bv, ok := b.(*Fun)
		if !ok || len(av.Params) != len(bv.Params) || !Equal(av.Return, bv.Return) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	case *Struct:
		bv, ok := b.(*Struct)
		if !ok || av.Name != bv.Name || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !Equal(av.Fields[i].Typ, bv.Fields[i].Typ) {
				return false
			}
		}
		return true
	case *Class:
		bv, ok := b.(*Class)
		return ok && av.Name == bv.Name
	default:
		// primitives and sentinels: equal iff same singleton variant
		return a == b
	}
}

// IsReference reports whether t compares by identity at run time: every
// type other than the primitives is a reference type.
func IsReference(t Type) bool {
	return !t.IsPrimitive()
}

// AssignableTo reports whether a value of type a can be assigned where a
// value of type b is expected. Auto accepts anything; Void accepts nothing
// and is accepted by nothing; Int widens to Float; Null is assignable to
// any reference type; a class target accepts any type structurally
// compatible with its shape.
func AssignableTo(a, b Type) bool {
	if _, ok := b.(autoType); ok {
		return true
	}
	if _, ok := a.(voidType); ok {
		return false
	}
	if _, ok := b.(voidType); ok {
		return false
	}
	if _, ok := a.(intType); ok {
		if _, ok := b.(floatType); ok {
			return true
		}
	}
	if av, ok := a.(*Array); ok {
		bv, ok := b.(*Array)
		return ok && AssignableTo(av.Component, bv.Component)
	}
	if av, ok := a.(*Unborn); ok {
		bv, ok := b.(*Unborn)
		return ok && AssignableTo(av.Component, bv.Component)
	}
	if _, ok := a.(nullType); ok {
		return IsReference(b)
	}
	if bc, ok := b.(*Class); ok {
		ok2, _ := ClassShapeCompatible(bc, a)
		return ok2
	}
	return Equal(a, b)
}

// CommonSupertype returns b if a assigns to b, a if b assigns to a, else nil.
func CommonSupertype(a, b Type) Type {
	if _, ok := a.(voidType); ok {
		return nil
	}
	if _, ok := b.(voidType); ok {
		return nil
	}
	if AssignableTo(a, b) {
		return b
	}
	if AssignableTo(b, a) {
		return a
	}
	return nil
}

// ComparableTo reports whether two operands can be compared with == or !=:
// both must be references, structurally equal, or one Int and one Float.
func ComparableTo(a, b Type) bool {
	if _, ok := a.(voidType); ok {
		return false
	}
	if _, ok := b.(voidType); ok {
		return false
	}
	if IsReference(a) && IsReference(b) {
		return true
	}
	if Equal(a, b) {
		return true
	}
	_, aInt := a.(intType)
	_, bFloat := b.(floatType)
	_, aFloat := a.(floatType)
	_, bInt := b.(intType)
	return (aInt && bFloat) || (aFloat && bInt)
}

// ClassShapeCompatible reports whether target accepts a value of type
// actual: actual must be a class type and, for every field of target other
// than "<constructor>", actual must have a field of the same name with an
// equal type. On failure it returns a descriptive, concatenated error
// message naming the first mismatch found.
func ClassShapeCompatible(target *Class, actual Type) (bool, string) {
	actualClass, ok := actual.(*Class)
	if !ok {
		return false, fmt.Sprintf("Cannot assign %s to %s", actual.TypeName(), target.TypeName())
	}
	var msg string
	for _, name := range target.order {
		if name == "<constructor>" {
			continue
		}
		want := target.fields[name]
		got, ok := actualClass.fields[name]
		if !ok {
			msg += fmt.Sprintf("Field %s %s is missing in %s\n", name, want.TypeName(), actualClass.Name)
			return false, msg
		}
		if !Equal(want, got) {
			msg += fmt.Sprintf("Field %s has different types :\n%s and %s", name, want.TypeName(), got.TypeName())
			return false, msg
		}
	}
	return true, ""
}
