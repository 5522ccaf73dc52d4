package ast

// SimpleType is a bare type name reference: `Int`, `MyStruct`, `MyClass`...
type SimpleType struct {
	Range
	Name string
}

func (*SimpleType) typeNode()       {}
func (n *SimpleType) Hash() uint64  { return hashPointer(n) }

// ArrayType is `Component[]`.
type ArrayType struct {
	Range
	Component TypeNode
}

func (*ArrayType) typeNode()      {}
func (n *ArrayType) Hash() uint64 { return hashPointer(n) }

// UnbornType is `Unborn<Component>`.
type UnbornType struct {
	Range
	Component TypeNode
}

func (*UnbornType) typeNode()      {}
func (n *UnbornType) Hash() uint64 { return hashPointer(n) }

// AutoType is the `Auto` placeholder, meaning "infer from initializer".
type AutoType struct {
	Range
}

func (*AutoType) typeNode()      {}
func (n *AutoType) Hash() uint64 { return hashPointer(n) }
