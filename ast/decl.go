package ast

// Decl is implemented by every node that introduces a name into a Scope.
// VarDecl, FunDecl, MethodDecl, StructDecl and ClassDecl are also Stmts;
// FieldDecl, Parameter and SyntheticDecl are not — built-ins live only in
// the root scope's declaration map.
type Decl interface {
	Node
	// DeclName is the name this declaration binds in its scope.
	DeclName() string
	// DeclaredThing describes the declaration kind for error messages,
	// e.g. "variable", "function", "struct", "class".
	DeclaredThing() string
}

// SyntheticKind distinguishes the built-ins installed in the root scope:
// the print function, primitive type names, and the true/false/null
// constants.
type SyntheticKind int

const (
	SyntheticVariable SyntheticKind = iota
	SyntheticFunction
	SyntheticType
)

// SyntheticDecl stands in for a built-in that has no corresponding syntax:
// print, the primitive type names, and true/false/null.
type SyntheticDecl struct {
	Range
	Name string
	Kind SyntheticKind
}

func NewSyntheticDecl(name string, kind SyntheticKind) *SyntheticDecl {
	return &SyntheticDecl{Name: name, Kind: kind}
}

func (s *SyntheticDecl) Hash() uint64     { return hashPointer(s) }
func (s *SyntheticDecl) DeclName() string { return s.Name }
func (s *SyntheticDecl) DeclaredThing() string {
	switch s.Kind {
	case SyntheticType:
		return "type"
	case SyntheticFunction:
		return "function"
	default:
		return "variable"
	}
}

// VarDecl is a `var name: Type = initializer` declaration.
type VarDecl struct {
	Range
	Name        string
	DeclaredTyp TypeNode
	Initializer Expr
}

func (v *VarDecl) Hash() uint64          { return hashPointer(v) }
func (v *VarDecl) DeclName() string      { return v.Name }
func (v *VarDecl) DeclaredThing() string { return "variable" }
func (v *VarDecl) stmtNode()             {}

// FieldDecl declares a struct field's name and type.
type FieldDecl struct {
	Range
	Name        string
	DeclaredTyp TypeNode
}

func (f *FieldDecl) Hash() uint64          { return hashPointer(f) }
func (f *FieldDecl) DeclName() string      { return f.Name }
func (f *FieldDecl) DeclaredThing() string { return "field" }

// Parameter declares a function or method parameter.
type Parameter struct {
	Range
	Name        string
	DeclaredTyp TypeNode
}

func (p *Parameter) Hash() uint64          { return hashPointer(p) }
func (p *Parameter) DeclName() string      { return p.Name }
func (p *Parameter) DeclaredThing() string { return "parameter" }

// FunDecl is a top-level or nested function declaration.
type FunDecl struct {
	Range
	Name       string
	Parameters []*Parameter
	ReturnTyp  TypeNode
	Body       *Block
}

func (f *FunDecl) Hash() uint64          { return hashPointer(f) }
func (f *FunDecl) DeclName() string      { return f.Name }
func (f *FunDecl) DeclaredThing() string { return "function" }
func (f *FunDecl) stmtNode()             {}

// MethodDecl refines FunDecl for methods declared inside a class body. Parent
// is resolved by the analyzer: the overridden method in the parent class, or
// nil if there is none.
type MethodDecl struct {
	FunDecl
	Parent *MethodDecl
}

func (m *MethodDecl) Hash() uint64          { return hashPointer(m) }
func (m *MethodDecl) DeclaredThing() string { return "method" }

// StructDecl declares a named, insertion-ordered record type.
type StructDecl struct {
	Range
	Name   string
	Fields []*FieldDecl
}

func (s *StructDecl) Hash() uint64          { return hashPointer(s) }
func (s *StructDecl) DeclName() string      { return s.Name }
func (s *StructDecl) DeclaredThing() string { return "struct" }
func (s *StructDecl) stmtNode()             {}

// ClassDecl declares a class, with an optional parent class name
// (`sonOf <Name>`) and a body of field/method declarations.
type ClassDecl struct {
	Range
	Name   string
	Parent string // empty string means no explicit parent
	Body   []Decl
}

func (c *ClassDecl) Hash() uint64          { return hashPointer(c) }
func (c *ClassDecl) DeclName() string      { return c.Name }
func (c *ClassDecl) DeclaredThing() string { return "class" }
func (c *ClassDecl) stmtNode()             {}
