package analysis

import (
	"fmt"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/types"
)

// reference implements spec.md §4.2 "Reference resolution": immediate
// lookup in the current scope; failing that, a deferred rule that
// re-resolves once every declaration in the program has been registered, so
// a legitimate forward reference to a function/type/class still succeeds.
func (a *Analyzer) reference(n *ast.Reference) {
	if n.Name == "Daddy" {
		return
	}
	curScope := a.scope
	// A class name used as a value (a call that instantiates it, an operand
	// of ciblingsOf) is typed as the class it declares, not as Type.
	typeKey := func(d ast.Decl) reactor.Key {
		if _, ok := d.(*ast.ClassDecl); ok {
			return k(d, "declared")
		}
		return k(d, "type")
	}
	if ctx := curScope.Lookup(n.Name); ctx != nil {
		a.R.Set(n, "decl", ctx.Decl)
		a.R.Set(n, "scope", ctx.Scope)
		a.R.Rule(k(n, "type")).Using(typeKey(ctx.Decl)).By(func(r *reactor.RuleCtx) {
			r.Set(0, r.Get(0))
		})
		return
	}
	a.R.Rule().By(func(r *reactor.RuleCtx) {
		ctx := curScope.Lookup(n.Name)
		if ctx == nil {
			r.ErrorFor(fmt.Sprintf("Could not resolve: %s", n.Name), n, k(n, "decl"), k(n, "scope"), k(n, "type"))
			return
		}
		a.R.Set(n, "decl", ctx.Decl)
		a.R.Set(n, "scope", ctx.Scope)
		if _, ok := ctx.Decl.(*ast.VarDecl); ok {
			r.ErrorFor(fmt.Sprintf("Variable used before declaration: %s", n.Name), n, k(n, "type"))
			return
		}
		a.R.Rule(k(n, "type")).Using(typeKey(ctx.Decl)).By(func(rr *reactor.RuleCtx) {
			rr.Set(0, rr.Get(0))
		})
	})
}

// constructor implements spec.md §4.2 "Constructor expression $Ref".
func (a *Analyzer) constructor(n *ast.Constructor) {
	a.visitExpr(n.Ref)
	a.R.Rule().Using(k(n.Ref, "decl")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if reactor.IsPoisoned(v) {
			return
		}
		structDecl, ok := v.(*ast.StructDecl)
		if !ok {
			a.R.Rule(k(n, "type")).By(func(rr *reactor.RuleCtx) {
				rr.ErrorFor("$ operator can only be applied to a struct reference", n, k(n, "type"))
			})
			return
		}
		deps := make([]reactor.Key, 0, len(structDecl.Fields)+1)
		deps = append(deps, k(structDecl, "declared"))
		for _, f := range structDecl.Fields {
			deps = append(deps, k(f, "type"))
		}
		a.R.Rule(k(n, "type")).Using(deps...).By(func(rr *reactor.RuleCtx) {
			structType, _ := rr.Get(0).(types.Type)
			if structType == nil {
				return
			}
			params := make([]types.Type, len(structDecl.Fields))
			for i := range structDecl.Fields {
				params[i], _ = rr.Get(i + 1).(types.Type)
			}
			rr.Set(0, &types.Fun{Return: structType, Params: params})
		})
	})
}

// arrayLiteral implements spec.md §4.2 "Array literals": common supertype
// across components when non-empty, else inference from the enclosing
// VarDeclaration or FunCall context when empty.
func (a *Analyzer) arrayLiteral(n *ast.ArrayLiteral) {
	for _, c := range n.Components {
		a.visitExpr(c)
	}
	if len(n.Components) == 0 {
		a.inferEmptyArrayType(n)
		return
	}
	deps := make([]reactor.Key, len(n.Components))
	for i, c := range n.Components {
		deps[i] = k(c, "type")
	}
	a.R.Rule(k(n, "type")).Using(deps...).By(func(r *reactor.RuleCtx) {
		var sup types.Type
		for i := range deps {
			v := r.Get(i)
			if reactor.IsPoisoned(v) {
				return
			}
			t, _ := v.(types.Type)
			if sup == nil {
				sup = t
				continue
			}
			cs := types.CommonSupertype(sup, t)
			if cs == nil {
				r.Error(fmt.Sprintf("Incompatible element types in array literal: %s and %s", sup.TypeName(), t.TypeName()), n)
				return
			}
			sup = cs
		}
		r.Set(0, &types.Array{Component: sup})
	})
}

func (a *Analyzer) inferEmptyArrayType(n *ast.ArrayLiteral) {
	switch ctx := a.inferenceContext.(type) {
	case *ast.VarDecl:
		arrType, ok := ctx.DeclaredTyp.(*ast.ArrayType)
		if !ok {
			return
		}
		a.R.Rule(k(n, "type")).Using(k(arrType.Component, "value")).By(func(r *reactor.RuleCtx) {
			comp, _ := r.Get(0).(types.Type)
			if comp == nil {
				return
			}
			r.Set(0, &types.Array{Component: comp})
		})
	case *ast.FunCall:
		idx, ok := a.R.Get(n, "index")
		if !ok {
			return
		}
		a.R.Rule(k(n, "type")).Using(k(ctx.Function, "type")).By(func(r *reactor.RuleCtx) {
			v := r.Get(0)
			if reactor.IsPoisoned(v) {
				return
			}
			fn := asFunType(v)
			i, _ := idx.(int)
			if fn == nil || i >= len(fn.Params) {
				return
			}
			r.Set(0, &types.Array{Component: fn.Params[i]})
		})
	}
}

// asFunType extracts the callable signature from a Fun type directly, or
// from a Class's <constructor> when the callee is a class instantiation
// (spec.md §4.2 "Function call").
func asFunType(v any) *types.Fun {
	switch t := v.(type) {
	case *types.Fun:
		return t
	case *types.Class:
		return t.Constructor()
	}
	return nil
}

// fieldAccess implements spec.md §4.2 "Field access".
func (a *Analyzer) fieldAccess(n *ast.FieldAccess) {
	a.visitExpr(n.Stem)
	a.R.Rule(k(n, "type")).Using(k(n.Stem, "type")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if reactor.IsPoisoned(v) {
			return
		}
		stemType, _ := v.(types.Type)
		switch st := stemType.(type) {
		case *types.Array:
			if n.FieldName != "length" {
				r.ErrorFor(fmt.Sprintf("Arrays only have a length field, not %s", n.FieldName), n, k(n, "type"))
				return
			}
			r.Set(0, types.Int)
		case *types.Struct:
			ft, ok := st.FieldType(n.FieldName)
			if !ok {
				r.ErrorFor(fmt.Sprintf("Struct %s has no field %s", st.Name, n.FieldName), n, k(n, "type"))
				return
			}
			r.Set(0, ft)
		case *types.Class:
			ft := st.HasField(n.FieldName)
			if ft == nil {
				r.ErrorFor(fmt.Sprintf("Class %s has no field %s", st.Name, n.FieldName), n, k(n, "type"))
				return
			}
			if fn, ok := ft.(*types.Fun); ok {
				if _, async := fn.Return.(*types.Unborn); async {
					r.ErrorFor(fmt.Sprintf("Cannot access async method %s from outside its class", n.FieldName), n, k(n, "type"))
					return
				}
			}
			r.Set(0, ft)
		default:
			name := "?"
			if stemType != nil {
				name = stemType.TypeName()
			}
			r.ErrorFor(fmt.Sprintf("Cannot access field %s on a value of type %s", n.FieldName, name), n, k(n, "type"))
		}
	})
}

// arrayAccess implements spec.md §4.2 "Array access".
func (a *Analyzer) arrayAccess(n *ast.ArrayAccess) {
	a.visitExpr(n.Array)
	a.visitExpr(n.Index)
	a.R.Rule().Using(k(n.Index, "type")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if !reactor.IsPoisoned(v) && v != types.Int {
			r.Error("Array index must be of type Int", n.Index)
		}
	})
	a.R.Rule(k(n, "type")).Using(k(n.Array, "type")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if reactor.IsPoisoned(v) {
			return
		}
		t, _ := v.(types.Type)
		arr, ok := t.(*types.Array)
		if !ok {
			name := "?"
			if t != nil {
				name = t.TypeName()
			}
			r.ErrorFor(fmt.Sprintf("Cannot index a value of type %s", name), n, k(n, "type"))
			return
		}
		r.Set(0, arr.Component)
	})
}

// funCall implements spec.md §4.2 "Function call": an ordinary call or,
// when the callee is a class type, an instantiation via its <constructor>.
func (a *Analyzer) funCall(n *ast.FunCall) {
	a.visitExpr(n.Function)

	prevCtx := a.inferenceContext
	a.inferenceContext = n
	for i, arg := range n.Arguments {
		a.R.Set(arg, "index", i)
		a.visitExpr(arg)
	}
	a.inferenceContext = prevCtx

	deps := make([]reactor.Key, 0, len(n.Arguments)+1)
	deps = append(deps, k(n.Function, "type"))
	for _, arg := range n.Arguments {
		deps = append(deps, k(arg, "type"))
	}
	a.R.Rule(k(n, "type")).Using(deps...).By(func(r *reactor.RuleCtx) {
		calleeVal := r.Get(0)
		if reactor.IsPoisoned(calleeVal) {
			return
		}
		calleeType, _ := calleeVal.(types.Type)

		var fn *types.Fun
		var resultType types.Type
		switch ct := calleeType.(type) {
		case *types.Class:
			fn = ct.Constructor()
			if fn == nil {
				r.ErrorFor(fmt.Sprintf("Missing constructor for class %s", ct.Name), n, k(n, "type"))
				return
			}
			resultType = ct
		case *types.Fun:
			fn = ct
			resultType = ct.Return
		default:
			name := "?"
			if calleeType != nil {
				name = calleeType.TypeName()
			}
			r.ErrorFor(fmt.Sprintf("Cannot call a value of type %s", name), n, k(n, "type"))
			return
		}

		if len(fn.Params) != len(n.Arguments) {
			r.ErrorFor(fmt.Sprintf("Wrong number of arguments: expected %d, got %d", len(fn.Params), len(n.Arguments)), n, k(n, "type"))
			return
		}
		ok := true
		for i, arg := range n.Arguments {
			v := r.Get(i + 1)
			if reactor.IsPoisoned(v) {
				ok = false
				continue
			}
			argType, _ := v.(types.Type)
			if !types.AssignableTo(argType, fn.Params[i]) {
				argName := "?"
				if argType != nil {
					argName = argType.TypeName()
				}
				r.Error(fmt.Sprintf("Argument %d: cannot assign %s to %s", i, argName, fn.Params[i].TypeName()), arg)
				ok = false
			}
		}
		if !ok {
			return
		}
		r.Set(0, resultType)
	})
}

// daddyCall implements spec.md §4.2 "Daddy(...) call": walk out through
// enclosing scopes to find the caller's MethodDeclaration; error if a
// FunDeclaration, RootNode or ClassDeclaration is reached first.
func (a *Analyzer) daddyCall(n *ast.DaddyCall) {
	for _, arg := range n.Arguments {
		a.visitExpr(arg)
	}

	var method *ast.MethodDecl
	s := a.scope
	for s != nil {
		switch owner := s.OwnerNode().(type) {
		case *ast.MethodDecl:
			method = owner
		case *ast.FunDecl, *ast.Root, *ast.ClassDecl:
			// method stays nil: handled below as an error.
		default:
			s = s.Outer()
			continue
		}
		break
	}

	if method == nil {
		a.R.Rule(k(n, "type")).By(func(r *reactor.RuleCtx) {
			r.ErrorFor("Daddy calls must be located inside a method", n, k(n, "type"))
		})
		return
	}

	a.R.Rule().Using(k(method, "parent")).By(func(r *reactor.RuleCtx) {
		parentMethod, _ := r.Get(0).(*ast.MethodDecl)
		if parentMethod == nil {
			a.R.Rule(k(n, "type")).By(func(rr *reactor.RuleCtx) {
				rr.ErrorFor(fmt.Sprintf("No parent method to call via Daddy for %s", method.Name), n, k(n, "type"))
			})
			return
		}
		// Mirrored onto n's own "parent" attribute so the interpreter can
		// find the target method without redoing this scope walk at
		// runtime.
		a.R.Rule(k(n, "parent")).By(func(rr *reactor.RuleCtx) {
			rr.Set(0, parentMethod)
		})
		a.R.Rule(k(n, "type")).Using(k(parentMethod, "type")).By(func(rr *reactor.RuleCtx) {
			fn, ok := rr.Get(0).(*types.Fun)
			if !ok {
				return
			}
			rr.Set(0, fn.Return)
		})
	})
}

// unaryExpr implements spec.md §4.2's sole unary operator, logical negation.
func (a *Analyzer) unaryExpr(n *ast.UnaryExpr) {
	a.visitExpr(n.Operand)
	a.R.Rule(k(n, "type")).Using(k(n.Operand, "type")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if reactor.IsPoisoned(v) {
			return
		}
		if v != types.Bool {
			r.Error("Operand of ! must be of type Bool", n.Operand)
			return
		}
		r.Set(0, types.Bool)
	})
}

func isNumeric(t types.Type) bool {
	return t == types.Int || t == types.Float
}

func arithResult(a, b types.Type) types.Type {
	if a == types.Float || b == types.Float {
		return types.Float
	}
	return types.Int
}

// binaryExpr implements spec.md §4.2 "Binary expressions".
func (a *Analyzer) binaryExpr(n *ast.BinaryExpr) {
	a.visitExpr(n.Left)
	a.visitExpr(n.Right)
	a.R.Rule(k(n, "type")).Using(k(n.Left, "type"), k(n.Right, "type")).By(func(r *reactor.RuleCtx) {
		lv, rv := r.Get(0), r.Get(1)
		if reactor.IsPoisoned(lv) || reactor.IsPoisoned(rv) {
			return
		}
		lt, _ := lv.(types.Type)
		rt, _ := rv.(types.Type)

		switch n.Operator {
		case ast.Add:
			if lt == types.String || rt == types.String {
				r.Set(0, types.String)
				return
			}
			if !isNumeric(lt) || !isNumeric(rt) {
				r.Error(fmt.Sprintf("Operands of + must be numeric or String, got %s and %s", lt.TypeName(), rt.TypeName()), n)
				return
			}
			r.Set(0, arithResult(lt, rt))
		case ast.Subtract, ast.Multiply, ast.Divide, ast.Remainder:
			if !isNumeric(lt) || !isNumeric(rt) {
				r.Error(fmt.Sprintf("Operands of %s must be numeric, got %s and %s", n.Operator, lt.TypeName(), rt.TypeName()), n)
				return
			}
			r.Set(0, arithResult(lt, rt))
		case ast.Greater, ast.Lower, ast.GreaterEqual, ast.LowerEqual:
			if !isNumeric(lt) || !isNumeric(rt) {
				r.Error(fmt.Sprintf("Operands of %s must be numeric, got %s and %s", n.Operator, lt.TypeName(), rt.TypeName()), n)
				return
			}
			r.Set(0, types.Bool)
		case ast.Equal, ast.NotEqual:
			if !types.ComparableTo(lt, rt) {
				r.Error(fmt.Sprintf("Operands of %s are not comparable: %s and %s", n.Operator, lt.TypeName(), rt.TypeName()), n)
				return
			}
			r.Set(0, types.Bool)
		case ast.And, ast.Or:
			if lt != types.Bool || rt != types.Bool {
				r.Error(fmt.Sprintf("Operands of %s must be of type Bool", n.Operator), n)
				return
			}
			r.Set(0, types.Bool)
		case ast.Ciblings:
			_, lok := lt.(*types.Class)
			_, rok := rt.(*types.Class)
			if !lok || !rok {
				r.Error("Operands of ciblingsOf must be class types", n)
				return
			}
			r.Set(0, types.Bool)
		}
	})
}

// assignment implements spec.md §4.2 "Assignment".
func (a *Analyzer) assignment(n *ast.Assignment) {
	switch n.Left.(type) {
	case *ast.Reference, *ast.FieldAccess, *ast.ArrayAccess:
	default:
		a.R.Rule().By(func(r *reactor.RuleCtx) {
			r.Error("Left side of assignment must be a reference, field access, or array access", n.Left)
		})
	}
	a.visitExpr(n.Left)
	a.visitExpr(n.Right)
	a.R.Rule(k(n, "type")).Using(k(n.Left, "type"), k(n.Right, "type")).By(func(r *reactor.RuleCtx) {
		lv, rv := r.Get(0), r.Get(1)
		if reactor.IsPoisoned(lv) || reactor.IsPoisoned(rv) {
			return
		}
		lt, _ := lv.(types.Type)
		rt, _ := rv.(types.Type)
		if cls, ok := lt.(*types.Class); ok {
			if ok2, msg := types.ClassShapeCompatible(cls, rt); !ok2 {
				r.Error(fmt.Sprintf("Cannot assign to %s: %s", cls.Name, msg), n)
				return
			}
		} else if !types.AssignableTo(rt, lt) {
			r.Error(fmt.Sprintf("Cannot assign %s to %s", rt.TypeName(), lt.TypeName()), n)
			return
		}
		r.Set(0, lt)
	})
}
