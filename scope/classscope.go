package scope

import (
	"github.com/cdelzotti/sigh/ast"
	set "github.com/hashicorp/go-set/v2"
)

// Registry is the shared registry every ClassScope installs itself into at
// construction time, keyed by class name, since names are what a
// ClassDecl's Parent and the inheritance walk use to find ancestors.
type Registry struct {
	byName map[string]*ClassScope
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]*ClassScope{}}
}

// ByName returns the registered ClassScope for a class name, if any.
func (r *Registry) ByName(name string) (*ClassScope, bool) {
	cs, ok := r.byName[name]
	return cs, ok
}

// ClassScope extends Plain with inheritance-aware lookup: search own
// declarations, then walk the inheritance chain by class name (breaking
// cycles with a visited set), then fall through to the ordinary lexical
// parent chain.
type ClassScope struct {
	*Plain
	ClassNode *ast.ClassDecl
	registry  *Registry
}

func NewClassScope(node *ast.ClassDecl, parent Scope, reg *Registry) *ClassScope {
	cs := &ClassScope{Plain: NewScope(node, parent), ClassNode: node, registry: reg}
	reg.byName[node.Name] = cs
	return cs
}

func (c *ClassScope) Lookup(name string) *DeclContext {
	if decl, ok := c.ownDecl(name); ok {
		return &DeclContext{Scope: c, Decl: decl}
	}

	visited := set.New[string](0)
	parentName := c.ClassNode.Parent
	for parentName != "" && !visited.Contains(parentName) {
		visited.Insert(parentName)
		parentScope, ok := c.registry.ByName(parentName)
		if !ok {
			break
		}
		if decl, ok := parentScope.ownDecl(name); ok {
			return &DeclContext{Scope: parentScope, Decl: decl}
		}
		parentName = parentScope.ClassNode.Parent
	}

	if c.Parent == nil {
		return nil
	}
	return c.Parent.Lookup(name)
}
