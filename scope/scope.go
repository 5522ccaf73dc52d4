// Package scope implements the scope graph: a tree of lexical scopes, plus
// ClassScope's inheritance-aware lookup override.
package scope

import "github.com/cdelzotti/sigh/ast"

// DeclContext pairs a resolved declaration with the scope it actually lives
// in, so a reference need not re-walk the scope chain to find where its
// declaration was introduced.
type DeclContext struct {
	Scope Scope
	Decl  ast.Decl
}

// Scope is implemented by both the ordinary lexical Scope and ClassScope,
// whose Lookup additionally walks the inheritance chain.
type Scope interface {
	// OwnerNode is the AST node that introduced this scope: a root, block,
	// function/method declaration, or class declaration.
	OwnerNode() ast.Node
	// Outer is this scope's lexical parent, or nil for the root.
	Outer() Scope
	// Declare introduces name into this scope's own declaration map.
	Declare(name string, decl ast.Decl)
	// Lookup resolves name, searching this scope and then (depending on
	// the concrete kind) its ancestors; returns nil if unresolved.
	Lookup(name string) *DeclContext
}

// Plain is an ordinary lexical scope: local map, else recurse to parent.
type Plain struct {
	Node   ast.Node
	Parent Scope
	decls  map[string]ast.Decl
}

func NewScope(node ast.Node, parent Scope) *Plain {
	return &Plain{Node: node, Parent: parent, decls: map[string]ast.Decl{}}
}

func (s *Plain) OwnerNode() ast.Node { return s.Node }
func (s *Plain) Outer() Scope        { return s.Parent }

func (s *Plain) Declare(name string, decl ast.Decl) {
	s.decls[name] = decl
}

func (s *Plain) Lookup(name string) *DeclContext {
	if decl, ok := s.decls[name]; ok {
		return &DeclContext{Scope: s, Decl: decl}
	}
	if s.Parent == nil {
		return nil
	}
	return s.Parent.Lookup(name)
}

// ownDecl exposes the scope's local declaration map to ClassScope, which
// needs to search a class scope's own declarations without recursing into
// its ordinary-parent fallback prematurely.
func (s *Plain) ownDecl(name string) (ast.Decl, bool) {
	d, ok := s.decls[name]
	return d, ok
}
