package analysis

import (
	"fmt"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/types"
)

// returnStmt implements spec.md §4.2 "Return": a Return always "returns"
// itself, and its value (or absence of one) is checked against the
// enclosing function's declared return type, unwrapping Unborn first.
func (a *Analyzer) returnStmt(n *ast.Return) {
	a.R.Set(n, "threadIndex", a.threadIndex)
	a.R.Set(n, "returns", true)
	if n.Expression != nil {
		a.visitExpr(n.Expression)
	}

	if len(a.funcStack) == 0 {
		a.R.Rule().By(func(r *reactor.RuleCtx) {
			r.Error("Return statement outside of a function", n)
		})
		return
	}
	frame := a.funcStack[len(a.funcStack)-1]

	if n.Expression == nil {
		a.R.Rule().Using(k(frame.returnTyp, "value")).By(func(r *reactor.RuleCtx) {
			v := r.Get(0)
			if reactor.IsPoisoned(v) {
				return
			}
			effective := effectiveReturnType(v.(types.Type))
			if effective != types.Void {
				r.Error("Return without value in a non-Void function", n)
			}
		})
		return
	}

	a.R.Rule().Using(k(frame.returnTyp, "value"), k(n.Expression, "type")).By(func(r *reactor.RuleCtx) {
		dv, ev := r.Get(0), r.Get(1)
		if reactor.IsPoisoned(dv) || reactor.IsPoisoned(ev) {
			return
		}
		effective := effectiveReturnType(dv.(types.Type))
		exprType, _ := ev.(types.Type)
		if effective == types.Void {
			r.Error("Return with value in a Void function", n)
			return
		}
		if cls, ok := effective.(*types.Class); ok {
			if ok2, msg := types.ClassShapeCompatible(cls, exprType); !ok2 {
				r.Error(fmt.Sprintf("Cannot return %s: %s", exprType.TypeName(), msg), n)
			}
			return
		}
		if !types.AssignableTo(exprType, effective) {
			r.Error(fmt.Sprintf("Cannot return %s where %s is expected", exprType.TypeName(), effective.TypeName()), n)
		}
	})
}

func effectiveReturnType(t types.Type) types.Type {
	if un, ok := t.(*types.Unborn); ok {
		return un.Component
	}
	return t
}

// bornStmt implements spec.md §4.2 "Born (await-style)": the function
// argument must resolve to a declared function returning Unborn<T>; the
// optional variable argument must resolve to a declared variable of type T,
// rejected when T is Void.
func (a *Analyzer) bornStmt(n *ast.Born) {
	a.R.Set(n, "threadIndex", a.threadIndex)
	a.visitExpr(n.Function)
	if n.Variable != nil {
		a.visitExpr(n.Variable)
	}

	a.R.Rule().Using(k(n.Function, "decl")).By(func(r *reactor.RuleCtx) {
		v := r.Get(0)
		if reactor.IsPoisoned(v) {
			return
		}
		declNode, ok := v.(ast.Decl)
		if !ok {
			r.Error("born's first argument must refer to a function", n.Function)
			return
		}
		switch declNode.(type) {
		case *ast.FunDecl, *ast.MethodDecl:
		default:
			r.Error("born's first argument must refer to a function", n.Function)
			return
		}

		a.R.Rule().Using(k(declNode, "type")).By(func(rr *reactor.RuleCtx) {
			tv := rr.Get(0)
			if reactor.IsPoisoned(tv) {
				return
			}
			fn, ok := tv.(*types.Fun)
			if !ok {
				return
			}
			un, ok := fn.Return.(*types.Unborn)
			if !ok {
				rr.Error(fmt.Sprintf("Cannot born %s: it is not an async function (its return type is not Unborn)", n.Function.Name), n)
				return
			}
			if n.Variable == nil {
				return
			}
			a.checkBornVariable(n, un)
		})
	})
}

func (a *Analyzer) checkBornVariable(n *ast.Born, un *types.Unborn) {
	a.R.Rule().Using(k(n.Variable, "decl")).By(func(r *reactor.RuleCtx) {
		vd := r.Get(0)
		if reactor.IsPoisoned(vd) {
			return
		}
		varDecl, ok := vd.(*ast.VarDecl)
		if !ok {
			r.Error("born's second argument must refer to a declared variable", n.Variable)
			return
		}
		if un.Component == types.Void {
			r.Error("Cannot born into a variable: the async function returns Void", n)
			return
		}
		a.R.Rule().Using(k(varDecl, "type")).By(func(rr *reactor.RuleCtx) {
			vt := rr.Get(0)
			if reactor.IsPoisoned(vt) {
				return
			}
			vType, _ := vt.(types.Type)
			if !types.AssignableTo(un.Component, vType) {
				rr.Error(fmt.Sprintf("Cannot assign async result of type %s to variable of type %s", un.Component.TypeName(), vType.TypeName()), n)
			}
		})
	})
}
