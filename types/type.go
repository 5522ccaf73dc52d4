// Package types implements the closed type-kind model shared by the
// analyzer and the interpreter: singleton primitives and sentinels,
// structural Array/Unborn/Fun/Struct types, and nominal-plus-structural
// Class types.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every type-kind variant. Two Types are equal iff
// their variant and structural contents match; Equal below is the single
// place that rule is implemented.
type Type interface {
	// TypeName renders the type for error messages and for Sigh's
	// stringification rules for `+` concatenation.
	TypeName() string
	// IsPrimitive reports whether values of this type compare by value
	// (primitives, String, Type) rather than by reference identity.
	IsPrimitive() bool
}

// primitive is embedded by the value-compared singleton kinds.
type primitive struct{}

func (primitive) IsPrimitive() bool { return true }

// reference is embedded by the identity-compared kinds.
type reference struct{}

func (reference) IsPrimitive() bool { return false }

type intType struct{ primitive }

func (intType) TypeName() string { return "Int" }

type floatType struct{ primitive }

func (floatType) TypeName() string { return "Float" }

type boolType struct{ primitive }

func (boolType) TypeName() string { return "Bool" }

type stringType struct{ primitive }

func (stringType) TypeName() string { return "String" }

type voidType struct{ primitive }

func (voidType) TypeName() string { return "Void" }

type nullType struct{ reference }

func (nullType) TypeName() string { return "Null" }

type typeType struct{ primitive }

func (typeType) TypeName() string { return "Type" }

// autoType is the `Auto` placeholder; it must never survive past
// variable-declaration analysis.
type autoType struct{ primitive }

func (autoType) TypeName() string { return "Auto" }

// Singleton instances: one value per primitive or sentinel kind.
var (
	Int    Type = intType{}
	Float  Type = floatType{}
	Bool   Type = boolType{}
	String Type = stringType{}
	Void   Type = voidType{}
	Null   Type = nullType{}
	TyType Type = typeType{}
	Auto   Type = autoType{}
)

// Array is `Component[]`; deep, structural equality.
type Array struct {
	reference
	Component Type
}

func (a *Array) TypeName() string { return a.Component.TypeName() + "[]" }

// Unborn is `Unborn<Component>`; deep, structural equality.
type Unborn struct {
	reference
	Component Type
}

func (u *Unborn) TypeName() string { return "Unborn<" + u.Component.TypeName() + ">" }

// Fun is a function signature: ordered parameter types and a return type.
type Fun struct {
	reference
	Return Type
	Params []Type
}

func (f *Fun) TypeName() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.TypeName()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return.TypeName())
}

// StructField is one insertion-ordered field of a Struct type.
type StructField struct {
	Name string
	Typ  Type
}

// Struct is a named record type with insertion-ordered fields.
type Struct struct {
	reference
	Name   string
	Fields []StructField
}

func (s *Struct) TypeName() string { return s.Name }

// FieldType returns the type of the named field and whether it exists.
func (s *Struct) FieldType(name string) (Type, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Typ, true
		}
	}
	return nil, false
}

// Class is a nominal-plus-structural class type: its field set (including
// methods and the synthetic "<constructor>") drives both ordinary field
// lookup and the structural class-shape compatibility test.
type Class struct {
	reference
	Name   string
	fields map[string]Type
	// order preserves the first-insertion order of fields, matching the
	// order ancestors are walked in when a class's shape is built.
	order []string
}

func NewClass(name string) *Class {
	return &Class{Name: name, fields: map[string]Type{}}
}

func (c *Class) TypeName() string { return c.Name }

// AddField inserts name -> typ if name is new. It reports whether the
// insertion happened; callers (the analyzer's class-merge logic) are
// responsible for the override-compatibility checks when the name already
// exists.
func (c *Class) AddField(name string, typ Type) bool {
	if _, ok := c.fields[name]; ok {
		return false
	}
	c.fields[name] = typ
	c.order = append(c.order, name)
	return true
}

// HasField returns the field's type, or nil if the class has no such field.
func (c *Class) HasField(name string) Type {
	return c.fields[name]
}

// Override replaces an already-present field's type in place, preserving
// its position in insertion order. Used when merging an ancestor chain:
// a subclass's own method replaces the inherited signature it overrides.
func (c *Class) Override(name string, typ Type) {
	c.fields[name] = typ
}

// Fields returns the class's fields in first-insertion order.
func (c *Class) Fields() []StructField {
	out := make([]StructField, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, StructField{Name: name, Typ: c.fields[name]})
	}
	return out
}

// Constructor returns the class's "<constructor>" field as a Fun type, or
// nil if the class has none yet.
func (c *Class) Constructor() *Fun {
	f, _ := c.fields["<constructor>"].(*Fun)
	return f
}
