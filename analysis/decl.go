package analysis

import (
	"fmt"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// varDecl implements spec.md §4.2 "Variable declaration". It also serves
// as the analysis for a class body field: classDecl walks its VarDecl
// entries through this same function, since a field is just a var with an
// initializer evaluated at construction time (spec.md §4.3 "Class
// construction").
func (a *Analyzer) varDecl(n *ast.VarDecl) {
	a.R.Set(n, "threadIndex", a.threadIndex)
	a.visitType(n.DeclaredTyp)

	prevCtx := a.inferenceContext
	a.inferenceContext = n
	if n.Initializer != nil {
		a.visitExpr(n.Initializer)
	}
	a.inferenceContext = prevCtx

	a.scope.Declare(n.Name, n)
	a.R.Set(n, "scope", a.scope)

	if n.Initializer == nil {
		a.R.Rule(k(n, "type")).Using(k(n.DeclaredTyp, "value")).By(func(r *reactor.RuleCtx) {
			v, _ := r.Get(0).(types.Type)
			if v == nil || v == types.Auto {
				r.Error(fmt.Sprintf("Variable %s has no initializer and cannot infer Auto", n.Name), n)
				return
			}
			r.Set(0, v)
		})
		return
	}

	a.R.Rule(k(n, "type")).Using(k(n.DeclaredTyp, "value"), k(n.Initializer, "type")).By(func(r *reactor.RuleCtx) {
		declaredVal, initVal := r.Get(0), r.Get(1)
		if reactor.IsPoisoned(declaredVal) || reactor.IsPoisoned(initVal) {
			return
		}
		declared, _ := declaredVal.(types.Type)
		initType, _ := initVal.(types.Type)
		if declared == types.Auto {
			if initType == types.Auto {
				r.Error(fmt.Sprintf("Cannot infer type of %s from an Auto initializer", n.Name), n)
				return
			}
			r.Set(0, initType)
			return
		}
		if cls, ok := declared.(*types.Class); ok {
			if ok2, msg := types.ClassShapeCompatible(cls, initType); !ok2 {
				r.Error(fmt.Sprintf("Cannot assign to %s: %s", cls.Name, msg), n)
				return
			}
		} else if !types.AssignableTo(initType, declared) {
			r.Error(fmt.Sprintf("Cannot assign %s to %s", initType.TypeName(), declared.TypeName()), n)
			return
		}
		r.Set(0, declared)
	})
}

// fieldDecl types a struct field's declared type; struct fields never carry
// an initializer (spec.md §3.3).
func (a *Analyzer) fieldDecl(f *ast.FieldDecl) {
	a.visitType(f.DeclaredTyp)
	a.R.Rule(k(f, "type")).Using(k(f.DeclaredTyp, "value")).By(func(r *reactor.RuleCtx) {
		r.Set(0, r.Get(0))
	})
}

func (a *Analyzer) parameter(p *ast.Parameter) {
	a.visitType(p.DeclaredTyp)
	a.R.Rule(k(p, "type")).Using(k(p.DeclaredTyp, "value")).By(func(r *reactor.RuleCtx) {
		r.Set(0, r.Get(0))
	})
	a.scope.Declare(p.Name, p)
}

func (a *Analyzer) structDecl(n *ast.StructDecl) {
	a.scope.Declare(n.Name, n)
	for _, f := range n.Fields {
		a.fieldDecl(f)
	}
	a.R.Set(n, "type", types.TyType)

	deps := make([]reactor.Key, len(n.Fields))
	for i, f := range n.Fields {
		deps[i] = k(f, "type")
	}
	a.R.Rule(k(n, "declared")).Using(deps...).By(func(r *reactor.RuleCtx) {
		fields := make([]types.StructField, len(n.Fields))
		for i, f := range n.Fields {
			t, _ := r.Get(i).(types.Type)
			fields[i] = types.StructField{Name: f.Name, Typ: t}
		}
		r.Set(0, &types.Struct{Name: n.Name, Fields: fields})
	})
}

// funDecl analyzes a top-level function declaration (spec.md §4.2
// "Function declaration").
func (a *Analyzer) funDecl(n *ast.FunDecl) {
	if n.Name == "Daddy" {
		a.R.Rule().By(func(r *reactor.RuleCtx) {
			r.Error("Function cannot be named Daddy", n)
		})
	}
	a.scope.Declare(n.Name, n)
	a.analyzeFunBody(n, n)
}

// methodDecl analyzes a method inside a class body, first renaming it to
// "<constructor>" if its name matches the enclosing class name (spec.md
// §3.3) and resolving its parent-method backpointer for Daddy (spec.md
// §4.2 "Function declaration").
func (a *Analyzer) methodDecl(m *ast.MethodDecl, cls *ast.ClassDecl) {
	isConstructor := m.Name == cls.Name
	if isConstructor {
		m.Name = "<constructor>"
	} else if m.Name == "Daddy" {
		a.R.Rule().By(func(r *reactor.RuleCtx) {
			r.Error("Method cannot be named Daddy", m)
		})
	}
	a.scope.Declare(m.Name, m)
	a.resolveMethodParent(cls, m)

	if isConstructor {
		a.R.Rule().Using(k(m.ReturnTyp, "value")).By(func(r *reactor.RuleCtx) {
			v := r.Get(0)
			if !reactor.IsPoisoned(v) && v != types.Void {
				r.Error(fmt.Sprintf("Constructor for class %s must return Void", cls.Name), m)
			}
		})
	}

	a.analyzeFunBody(m, &m.FunDecl)
}

// resolveMethodParent implements spec.md §4.2's `parent` resolution: look up
// the same method name starting from the parent class's own scope, which by
// ClassScope.Lookup's inheritance walk finds the nearest ancestor override.
// Deferred to a zero-input rule so a parent class declared later in the
// source still resolves (its ClassScope is guaranteed registered by Run()).
func (a *Analyzer) resolveMethodParent(cls *ast.ClassDecl, m *ast.MethodDecl) {
	a.R.Rule(k(m, "parent")).By(func(r *reactor.RuleCtx) {
		if cls.Parent == "" {
			r.Set(0, (*ast.MethodDecl)(nil))
			return
		}
		parentScope, ok := a.registry.ByName(cls.Parent)
		if !ok {
			r.Set(0, (*ast.MethodDecl)(nil))
			return
		}
		ctx := parentScope.Lookup(m.Name)
		if ctx == nil {
			r.Set(0, (*ast.MethodDecl)(nil))
			return
		}
		parentMethod, ok := ctx.Decl.(*ast.MethodDecl)
		if !ok {
			r.Set(0, (*ast.MethodDecl)(nil))
			return
		}
		m.Parent = parentMethod
		r.Set(0, parentMethod)
	})
}

// analyzeFunBody is shared by top-level functions and methods: it opens the
// function's own scope for its parameters, walks its body block (which gets
// its own nested scope), computes the function's Fun type, assigns a stable
// threadIndex if the function is asynchronous, and checks for a missing
// return (spec.md §4.2 "Function declaration", §3.4).
func (a *Analyzer) analyzeFunBody(node ast.Node, fd *ast.FunDecl) {
	s := scope.NewScope(node, a.scope)
	a.scope = s
	a.R.Set(node, "scope", s)

	_, isAsync := fd.ReturnTyp.(*ast.UnbornType)
	prevThread := a.threadIndex
	if isAsync {
		a.threadIndex = node.Hash()
	}
	a.R.Set(node, "threadIndex", a.threadIndex)

	a.visitType(fd.ReturnTyp)
	for _, p := range fd.Parameters {
		a.parameter(p)
	}

	prevFunc := a.funcStack
	a.funcStack = append(a.funcStack, funcFrame{node: node, returnTyp: fd.ReturnTyp})
	a.block(fd.Body)
	a.funcStack = prevFunc

	deps := make([]reactor.Key, 0, len(fd.Parameters)+1)
	deps = append(deps, k(fd.ReturnTyp, "value"))
	for _, p := range fd.Parameters {
		deps = append(deps, k(p, "type"))
	}
	a.R.Rule(k(node, "type")).Using(deps...).By(func(r *reactor.RuleCtx) {
		ret, _ := r.Get(0).(types.Type)
		if ret == nil {
			return
		}
		params := make([]types.Type, len(fd.Parameters))
		for i := range fd.Parameters {
			params[i], _ = r.Get(i + 1).(types.Type)
		}
		r.Set(0, &types.Fun{Return: ret, Params: params})
	})

	a.R.Rule().Using(k(fd.ReturnTyp, "value"), k(fd.Body, "returns")).By(func(r *reactor.RuleCtx) {
		retVal := r.Get(0)
		if reactor.IsPoisoned(retVal) {
			return
		}
		ret, _ := retVal.(types.Type)
		effective := ret
		if un, ok := ret.(*types.Unborn); ok {
			effective = un.Component
		}
		returns, _ := r.Get(1).(bool)
		if effective != types.Void && !returns {
			r.Error(fmt.Sprintf("Missing return in function %s", fd.Name), node)
		}
	})

	a.threadIndex = prevThread
	a.popScope()
}

// classDecl implements spec.md §4.2 "Class declaration".
func (a *Analyzer) classDecl(n *ast.ClassDecl) {
	if n.Name == "" || n.Name[0] < 'A' || n.Name[0] > 'Z' {
		a.R.Rule().By(func(r *reactor.RuleCtx) {
			r.Error(fmt.Sprintf("Class name %s must begin with a capital letter", n.Name), n)
		})
	}

	a.scope.Declare(n.Name, n)
	cs := scope.NewClassScope(n, a.scope, a.registry)
	a.R.Set(n, "scope", cs)
	a.R.Set(n, "type", types.TyType)
	a.R.Set(n, "threadIndex", a.threadIndex)

	a.resolveAncestors(n)

	prevScope := a.scope
	a.scope = cs
	for _, d := range n.Body {
		switch decl := d.(type) {
		case *ast.VarDecl:
			a.varDecl(decl)
		case *ast.MethodDecl:
			a.methodDecl(decl, n)
		}
	}
	a.scope = prevScope

	a.buildClassType(n)
}

// resolveAncestors implements spec.md §4.2's ancestors computation: follow
// `parent` names resolved in the class's enclosing (lexical) scope,
// stopping on an undeclared ancestor, a non-class parent, or a cycle.
func (a *Analyzer) resolveAncestors(n *ast.ClassDecl) {
	a.R.Rule(k(n, "ancestors")).By(func(r *reactor.RuleCtx) {
		selfScope, _ := a.registry.ByName(n.Name)
		chain := []*ast.ClassDecl{n}
		visited := map[string]bool{n.Name: true}
		curScope, curNode := selfScope, n
		for curNode.Parent != "" {
			parentName := curNode.Parent
			ctx := curScope.Outer().Lookup(parentName)
			if ctx == nil {
				r.ErrorFor(fmt.Sprintf("Undeclared ancestor: %s", parentName), n, k(n, "ancestors"))
				return
			}
			parentClass, ok := ctx.Decl.(*ast.ClassDecl)
			if !ok {
				r.ErrorFor(fmt.Sprintf("Parent %s of class %s is not a class", parentName, curNode.Name), n, k(n, "ancestors"))
				return
			}
			if visited[parentClass.Name] {
				r.ErrorFor(fmt.Sprintf("Cyclic inheritance involving class %s", n.Name), n, k(n, "ancestors"))
				return
			}
			visited[parentClass.Name] = true
			chain = append(chain, parentClass)
			parentScope, _ := a.registry.ByName(parentClass.Name)
			curScope, curNode = parentScope, parentClass
		}
		r.Set(0, chain)
	})
}

// classTypeEntry is one name this class's type gains from walking the
// ancestor chain base-to-self.
type classTypeEntry struct {
	name  string
	node  ast.Decl
	isFun bool
}

// buildClassType implements spec.md §4.2's shape-merge rules: walk the
// ancestor chain from the most-base ancestor down to self, adding each
// name; a repeated name must be a method overriding with an identical
// signature (the synthetic "<constructor>" name is exempt: every class's
// own constructor simply replaces any inherited one, since constructors are
// not polymorphically dispatched).
func (a *Analyzer) buildClassType(n *ast.ClassDecl) {
	a.R.Rule().Using(k(n, "ancestors")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if reactor.IsPoisoned(v) {
			a.R.Rule(k(n, "declared")).By(func(rr *reactor.RuleCtx) {
				rr.ErrorFor(fmt.Sprintf("Cannot build type for class %s: ancestor resolution failed", n.Name), n, k(n, "declared"))
			})
			return
		}
		chain, _ := v.([]*ast.ClassDecl)

		var deps []reactor.Key
		var entries []classTypeEntry
		for i := len(chain) - 1; i >= 0; i-- {
			for _, d := range chain[i].Body {
				switch decl := d.(type) {
				case *ast.VarDecl:
					entries = append(entries, classTypeEntry{name: decl.Name, node: decl, isFun: false})
					deps = append(deps, k(decl, "type"))
				case *ast.MethodDecl:
					entries = append(entries, classTypeEntry{name: decl.Name, node: decl, isFun: true})
					deps = append(deps, k(decl, "type"))
				}
			}
		}

		a.R.Rule(k(n, "declared")).Using(deps...).By(func(rr *reactor.RuleCtx) {
			cls := types.NewClass(n.Name)
			for i, e := range entries {
				tv := rr.Get(i)
				if reactor.IsPoisoned(tv) {
					continue
				}
				t, _ := tv.(types.Type)
				existing := cls.HasField(e.name)
				if existing == nil {
					cls.AddField(e.name, t)
					continue
				}
				if e.name == "<constructor>" {
					cls.Override(e.name, t)
					continue
				}
				if !e.isFun {
					rr.Error(fmt.Sprintf("Cannot override field %s with a variable in class %s", e.name, n.Name), e.node)
					continue
				}
				if _, existingIsFun := existing.(*types.Fun); !existingIsFun {
					rr.Error(fmt.Sprintf("Cannot override field %s with a method in class %s", e.name, n.Name), e.node)
					continue
				}
				if !types.Equal(existing, t) {
					rr.Error(fmt.Sprintf("Method %s does not respect its parent signature in class %s", e.name, n.Name), e.node)
					continue
				}
				cls.Override(e.name, t)
			}
			if cls.Constructor() == nil {
				rr.Error(fmt.Sprintf("Missing constructor for class %s", n.Name), n)
			}
			rr.Set(0, cls)
		})
	})
}
