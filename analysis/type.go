package analysis

import (
	"fmt"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/types"
)

// simpleType resolves a bare type name the same way reference() resolves a
// variable name (spec.md §4.2 "Reference resolution"): immediate lookup,
// else a deferred rule that re-resolves once every scope has been built.
func (a *Analyzer) simpleType(n *ast.SimpleType) {
	curScope := a.scope
	if ctx := curScope.Lookup(n.Name); ctx != nil {
		a.R.Rule(k(n, "value")).Using(k(ctx.Decl, "declared")).By(func(r *reactor.RuleCtx) {
			r.Set(0, r.Get(0))
		})
		return
	}
	a.R.Rule().By(func(r *reactor.RuleCtx) {
		ctx := curScope.Lookup(n.Name)
		if ctx == nil {
			r.ErrorFor(fmt.Sprintf("Could not resolve type: %s", n.Name), n, k(n, "value"))
			return
		}
		a.R.Rule(k(n, "value")).Using(k(ctx.Decl, "declared")).By(func(rr *reactor.RuleCtx) {
			rr.Set(0, rr.Get(0))
		})
	})
}

func (a *Analyzer) arrayType(n *ast.ArrayType) {
	a.visitType(n.Component)
	a.R.Rule(k(n, "value")).Using(k(n.Component, "value")).By(func(r *reactor.RuleCtx) {
		comp, _ := r.Get(0).(types.Type)
		if comp == nil {
			return
		}
		r.Set(0, &types.Array{Component: comp})
	})
}

func (a *Analyzer) unbornType(n *ast.UnbornType) {
	a.visitType(n.Component)
	a.R.Rule(k(n, "value")).Using(k(n.Component, "value")).By(func(r *reactor.RuleCtx) {
		comp, _ := r.Get(0).(types.Type)
		if comp == nil {
			return
		}
		r.Set(0, &types.Unborn{Component: comp})
	})
}
