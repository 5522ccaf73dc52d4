package analysis

import (
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// buildDefaultScope installs the root scope's built-ins (spec.md §6): the
// print function, the primitive type names, and the true/false/null
// constants. Every SyntheticDecl's "type" and, for type names, "declared"
// attributes are set synchronously since no rule ever computes them.
func (a *Analyzer) buildDefaultScope(root *ast.Root) scope.Scope {
	s := scope.NewScope(root, nil)

	declareVar := func(name string, typ types.Type) {
		d := ast.NewSyntheticDecl(name, ast.SyntheticVariable)
		s.Declare(name, d)
		a.R.Set(d, "type", typ)
	}
	declareType := func(name string, denoted types.Type) {
		d := ast.NewSyntheticDecl(name, ast.SyntheticType)
		s.Declare(name, d)
		a.R.Set(d, "type", types.TyType)
		a.R.Set(d, "declared", denoted)
	}

	printFun := &types.Fun{Return: types.String, Params: []types.Type{types.String}}
	printDecl := ast.NewSyntheticDecl("print", ast.SyntheticFunction)
	s.Declare("print", printDecl)
	a.R.Set(printDecl, "type", printFun)

	declareType("Int", types.Int)
	declareType("Float", types.Float)
	declareType("Bool", types.Bool)
	declareType("String", types.String)
	declareType("Void", types.Void)
	declareType("Type", types.TyType)
	declareType("Auto", types.Auto)

	declareVar("true", types.Bool)
	declareVar("false", types.Bool)
	declareVar("null", types.Null)

	return s
}
