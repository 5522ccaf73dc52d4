package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
)

func TestPlainLookupOwnDeclaration(t *testing.T) {
	root := scope.NewScope(&ast.Root{}, nil)
	decl := &ast.VarDecl{Name: "x"}
	root.Declare("x", decl)

	ctx := root.Lookup("x")
	require.NotNil(t, ctx)
	assert.Same(t, decl, ctx.Decl)
	assert.Same(t, root, ctx.Scope)
}

func TestPlainLookupFallsThroughToParent(t *testing.T) {
	root := scope.NewScope(&ast.Root{}, nil)
	decl := &ast.VarDecl{Name: "x"}
	root.Declare("x", decl)

	block := scope.NewScope(&ast.Block{}, root)

	ctx := block.Lookup("x")
	require.NotNil(t, ctx)
	assert.Same(t, decl, ctx.Decl)
	assert.Same(t, root, ctx.Scope)
}

func TestPlainLookupUnresolvedReturnsNil(t *testing.T) {
	root := scope.NewScope(&ast.Root{}, nil)
	assert.Nil(t, root.Lookup("missing"))
}

func TestClassScopeLookupOwnBeforeAncestor(t *testing.T) {
	reg := scope.NewRegistry()
	root := scope.NewScope(&ast.Root{}, nil)

	base := &ast.ClassDecl{Name: "Base"}
	baseScope := scope.NewClassScope(base, root, reg)
	baseMethod := &ast.MethodDecl{FunDecl: ast.FunDecl{Name: "speak"}}
	baseScope.Declare("speak", baseMethod)

	child := &ast.ClassDecl{Name: "Child", Parent: "Base"}
	childScope := scope.NewClassScope(child, root, reg)
	childMethod := &ast.MethodDecl{FunDecl: ast.FunDecl{Name: "speak"}}
	childScope.Declare("speak", childMethod)

	ctx := childScope.Lookup("speak")
	require.NotNil(t, ctx)
	assert.Same(t, childMethod, ctx.Decl)
	assert.Same(t, childScope, ctx.Scope)
}

func TestClassScopeLookupInheritedFromAncestor(t *testing.T) {
	reg := scope.NewRegistry()
	root := scope.NewScope(&ast.Root{}, nil)

	base := &ast.ClassDecl{Name: "Base"}
	baseScope := scope.NewClassScope(base, root, reg)
	baseField := &ast.VarDecl{Name: "name"}
	baseScope.Declare("name", baseField)

	child := &ast.ClassDecl{Name: "Child", Parent: "Base"}
	childScope := scope.NewClassScope(child, root, reg)

	ctx := childScope.Lookup("name")
	require.NotNil(t, ctx)
	assert.Same(t, baseField, ctx.Decl)
	// Inherited members resolve against the ancestor's own ClassScope, not
	// the instantiated subclass's — this is exactly why interp.ScopeStorage
	// needs a by-name fallback alongside its exact-scope match.
	assert.Same(t, baseScope, ctx.Scope)
}

func TestClassScopeLookupBreaksCycles(t *testing.T) {
	reg := scope.NewRegistry()
	root := scope.NewScope(&ast.Root{}, nil)

	a := &ast.ClassDecl{Name: "A", Parent: "B"}
	aScope := scope.NewClassScope(a, root, reg)
	b := &ast.ClassDecl{Name: "B", Parent: "A"}
	scope.NewClassScope(b, root, reg)

	// Neither class declares "missing"; a cyclic ancestor chain must
	// terminate rather than loop forever.
	assert.Nil(t, aScope.Lookup("missing"))
}

func TestClassScopeLookupFallsThroughToLexicalParentWhenNoAncestorHasIt(t *testing.T) {
	reg := scope.NewRegistry()
	root := scope.NewScope(&ast.Root{}, nil)
	outer := &ast.VarDecl{Name: "g"}
	root.Declare("g", outer)

	cls := &ast.ClassDecl{Name: "Standalone"}
	clsScope := scope.NewClassScope(cls, root, reg)

	ctx := clsScope.Lookup("g")
	require.NotNil(t, ctx)
	assert.Same(t, outer, ctx.Decl)
}

func TestRegistryByName(t *testing.T) {
	reg := scope.NewRegistry()
	cls := &ast.ClassDecl{Name: "Foo"}
	cs := scope.NewClassScope(cls, nil, reg)

	got, ok := reg.ByName("Foo")
	assert.True(t, ok)
	assert.Same(t, cs, got)

	_, ok = reg.ByName("Bar")
	assert.False(t, ok)
}
