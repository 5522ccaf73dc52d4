package analysis

import (
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// visitRoot installs the default (built-in) scope, then walks the program's
// top-level statements in the root scope (spec.md §3.2, §6 "Built-ins").
func (a *Analyzer) visitRoot(root *ast.Root) {
	rootScope := a.buildDefaultScope(root)
	a.scope = rootScope
	a.R.Set(root, "scope", rootScope)
	a.R.Set(root, "threadIndex", a.threadIndex)
	a.visitStmtList(root.Statements)
}

func (a *Analyzer) visitStmtList(stmts []ast.Stmt) {
	for _, s := range stmts {
		a.visitStmt(s)
	}
}

func (a *Analyzer) visitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		a.varDecl(n)
	case *ast.FunDecl:
		a.funDecl(n)
	case *ast.StructDecl:
		a.structDecl(n)
	case *ast.ClassDecl:
		a.classDecl(n)
	case *ast.Block:
		a.block(n)
	case *ast.ExpressionStmt:
		a.R.Set(n, "threadIndex", a.threadIndex)
		a.visitExpr(n.Expression)
	case *ast.If:
		a.ifStmt(n)
	case *ast.While:
		a.whileStmt(n)
	case *ast.Return:
		a.returnStmt(n)
	case *ast.Born:
		a.bornStmt(n)
	default:
		panic("analysis: unhandled statement kind")
	}
}

func (a *Analyzer) visitExpr(e ast.Expr) {
	a.R.Set(e, "threadIndex", a.threadIndex)
	switch n := e.(type) {
	case *ast.IntLiteral:
		a.R.Set(n, "type", types.Int)
	case *ast.FloatLiteral:
		a.R.Set(n, "type", types.Float)
	case *ast.StringLiteral:
		a.R.Set(n, "type", types.String)
	case *ast.Reference:
		a.reference(n)
	case *ast.Constructor:
		a.constructor(n)
	case *ast.ArrayLiteral:
		a.arrayLiteral(n)
	case *ast.Parenthesized:
		a.visitExpr(n.Expression)
		a.R.Rule(k(n, "type")).Using(k(n.Expression, "type")).By(func(r *reactor.RuleCtx) {
			r.Set(0, r.Get(0))
		})
	case *ast.FieldAccess:
		a.fieldAccess(n)
	case *ast.ArrayAccess:
		a.arrayAccess(n)
	case *ast.FunCall:
		a.funCall(n)
	case *ast.DaddyCall:
		a.daddyCall(n)
	case *ast.UnaryExpr:
		a.unaryExpr(n)
	case *ast.BinaryExpr:
		a.binaryExpr(n)
	case *ast.Assignment:
		a.assignment(n)
	default:
		panic("analysis: unhandled expression kind")
	}
}

func (a *Analyzer) visitType(t ast.TypeNode) {
	switch n := t.(type) {
	case *ast.SimpleType:
		a.simpleType(n)
	case *ast.ArrayType:
		a.arrayType(n)
	case *ast.UnbornType:
		a.unbornType(n)
	case *ast.AutoType:
		a.R.Set(n, "value", types.Auto)
	default:
		panic("analysis: unhandled type annotation kind")
	}
}

// block opens a new lexical scope, walks its statements, and installs the
// returns rule (spec.md §4.2 "If / While").
func (a *Analyzer) block(n *ast.Block) {
	s := scope.NewScope(n, a.scope)
	a.scope = s
	a.R.Set(n, "scope", s)
	a.R.Set(n, "threadIndex", a.threadIndex)
	a.visitStmtList(n.Statements)
	a.installBlockReturns(n)
	a.popScope()
}

func isReturnContainer(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.Block, *ast.If, *ast.Return:
		return true
	}
	return false
}

func (a *Analyzer) installBlockReturns(n *ast.Block) {
	var deps []reactor.Key
	for _, s := range n.Statements {
		if isReturnContainer(s) {
			deps = append(deps, k(s, "returns"))
		}
	}
	if len(deps) == 0 {
		a.R.Set(n, "returns", false)
		return
	}
	a.R.Rule(k(n, "returns")).Using(deps...).By(func(r *reactor.RuleCtx) {
		any := false
		for i := range deps {
			if b, ok := r.Get(i).(bool); ok && b {
				any = true
			}
		}
		r.Set(0, any)
	})
}

func (a *Analyzer) ifStmt(n *ast.If) {
	a.R.Set(n, "threadIndex", a.threadIndex)
	a.visitExpr(n.Condition)
	a.R.Rule().Using(k(n.Condition, "type")).By(func(r *reactor.RuleCtx) {
		if !reactor.IsPoisoned(r.Get(0)) && r.Get(0) != types.Bool {
			r.Error("If condition must be of type Bool", n.Condition)
		}
	})

	a.visitStmt(n.TrueStatement)
	if n.FalseStatement != nil {
		a.visitStmt(n.FalseStatement)
	}

	var deps []reactor.Key
	if isReturnContainer(n.TrueStatement) {
		deps = append(deps, k(n.TrueStatement, "returns"))
	}
	if n.FalseStatement != nil && isReturnContainer(n.FalseStatement) {
		deps = append(deps, k(n.FalseStatement, "returns"))
	}
	if len(deps) < 2 {
		a.R.Set(n, "returns", false)
		return
	}
	a.R.Rule(k(n, "returns")).Using(deps...).By(func(r *reactor.RuleCtx) {
		t, _ := r.Get(0).(bool)
		f, _ := r.Get(1).(bool)
		r.Set(0, t && f)
	})
}

func (a *Analyzer) whileStmt(n *ast.While) {
	a.R.Set(n, "threadIndex", a.threadIndex)
	a.visitExpr(n.Condition)
	a.R.Rule().Using(k(n.Condition, "type")).By(func(r *reactor.RuleCtx) {
		if !reactor.IsPoisoned(r.Get(0)) && r.Get(0) != types.Bool {
			r.Error("While condition must be of type Bool", n.Condition)
		}
	})
	a.visitStmt(n.Body)
}
