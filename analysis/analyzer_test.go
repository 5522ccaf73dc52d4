package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdelzotti/sigh/analysis"
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/sigherr"
	"github.com/cdelzotti/sigh/types"
)

func errMessages(t *testing.T, errs *sigherr.List) string {
	require.NotNil(t, errs)
	return errs.String()
}

func TestVarDeclWithLiteralInfersType(t *testing.T) {
	x := &ast.VarDecl{Name: "x", DeclaredTyp: &ast.AutoType{}, Initializer: &ast.IntLiteral{Value: 5}}
	root := &ast.Root{Statements: []ast.Stmt{x}}

	r, errs := analysis.Analyze(root)
	assert.Nil(t, errs)
	typ, ok := r.Get(x, "type")
	require.True(t, ok)
	assert.Equal(t, types.Int, typ)
}

func TestVarDeclTypeMismatchReportsError(t *testing.T) {
	x := &ast.VarDecl{
		Name:        "x",
		DeclaredTyp: &ast.SimpleType{Name: "Int"},
		Initializer: &ast.StringLiteral{Value: "hello"},
	}
	root := &ast.Root{Statements: []ast.Stmt{x}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "Cannot assign")
}

func TestReferenceToUndeclaredNameReportsResolutionError(t *testing.T) {
	ref := &ast.Reference{Name: "ghost"}
	root := &ast.Root{Statements: []ast.Stmt{&ast.ExpressionStmt{Expression: ref}}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "Could not resolve")
}

func TestReferenceToBuiltinConstantResolvesWithoutError(t *testing.T) {
	ref := &ast.Reference{Name: "true"}
	root := &ast.Root{Statements: []ast.Stmt{&ast.ExpressionStmt{Expression: ref}}}

	r, errs := analysis.Analyze(root)
	assert.Nil(t, errs)
	typ, ok := r.Get(ref, "type")
	require.True(t, ok)
	assert.Equal(t, types.Bool, typ)
}

func TestIfConditionMustBeBool(t *testing.T) {
	ifStmt := &ast.If{
		Condition:     &ast.IntLiteral{Value: 5},
		TrueStatement: &ast.Block{},
	}
	root := &ast.Root{Statements: []ast.Stmt{ifStmt}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "must be of type Bool")
}

func TestFunctionMissingReturnReportsError(t *testing.T) {
	fd := &ast.FunDecl{
		Name:      "broken",
		ReturnTyp: &ast.SimpleType{Name: "Int"},
		Body:      &ast.Block{},
	}
	root := &ast.Root{Statements: []ast.Stmt{fd}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "Missing return")
}

func TestFunctionDeclarationAndCallTypeCheckSuccessfully(t *testing.T) {
	a := &ast.Parameter{Name: "a", DeclaredTyp: &ast.SimpleType{Name: "Int"}}
	b := &ast.Parameter{Name: "b", DeclaredTyp: &ast.SimpleType{Name: "Int"}}
	ret := &ast.Return{Expression: &ast.BinaryExpr{
		Operator: ast.Add,
		Left:     &ast.Reference{Name: "a"},
		Right:    &ast.Reference{Name: "b"},
	}}
	fd := &ast.FunDecl{
		Name:       "add",
		Parameters: []*ast.Parameter{a, b},
		ReturnTyp:  &ast.SimpleType{Name: "Int"},
		Body:       &ast.Block{Statements: []ast.Stmt{ret}},
	}
	call := &ast.FunCall{
		Function:  &ast.Reference{Name: "add"},
		Arguments: []ast.Expr{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}},
	}
	root := &ast.Root{Statements: []ast.Stmt{fd, &ast.ExpressionStmt{Expression: call}}}

	r, errs := analysis.Analyze(root)
	assert.Nil(t, errs)
	typ, ok := r.Get(call, "type")
	require.True(t, ok)
	assert.Equal(t, types.Int, typ)
}

func TestFunctionCallWrongArgumentCountReportsError(t *testing.T) {
	fd := &ast.FunDecl{
		Name:      "takesNone",
		ReturnTyp: &ast.SimpleType{Name: "Void"},
		Body:      &ast.Block{},
	}
	call := &ast.FunCall{
		Function:  &ast.Reference{Name: "takesNone"},
		Arguments: []ast.Expr{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}},
	}
	root := &ast.Root{Statements: []ast.Stmt{fd, &ast.ExpressionStmt{Expression: call}}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "Wrong number of arguments")
}

func TestClassWithoutConstructorReportsError(t *testing.T) {
	cls := &ast.ClassDecl{Name: "Empty"}
	root := &ast.Root{Statements: []ast.Stmt{cls}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "Missing constructor")
}

func TestClassWithConstructorAndInheritedFieldBuildsShape(t *testing.T) {
	ctor := &ast.MethodDecl{FunDecl: ast.FunDecl{
		Name:      "Base",
		ReturnTyp: &ast.SimpleType{Name: "Void"},
		Body:      &ast.Block{},
	}}
	label := &ast.VarDecl{Name: "label", DeclaredTyp: &ast.SimpleType{Name: "String"}, Initializer: &ast.StringLiteral{Value: "base"}}
	base := &ast.ClassDecl{Name: "Base", Body: []ast.Decl{label, ctor}}

	childCtor := &ast.MethodDecl{FunDecl: ast.FunDecl{
		Name:      "Child",
		ReturnTyp: &ast.SimpleType{Name: "Void"},
		Body:      &ast.Block{},
	}}
	child := &ast.ClassDecl{Name: "Child", Parent: "Base", Body: []ast.Decl{childCtor}}

	root := &ast.Root{Statements: []ast.Stmt{base, child}}

	r, errs := analysis.Analyze(root)
	assert.Nil(t, errs)
	declared, ok := r.Get(child, "declared")
	require.True(t, ok)
	cls, ok := declared.(*types.Class)
	require.True(t, ok)
	assert.NotNil(t, cls.Constructor())
	assert.Equal(t, types.String, cls.HasField("label"))
}

func TestCyclicInheritanceReportsError(t *testing.T) {
	a := &ast.ClassDecl{Name: "A", Parent: "B"}
	b := &ast.ClassDecl{Name: "B", Parent: "A"}
	root := &ast.Root{Statements: []ast.Stmt{a, b}}

	_, errs := analysis.Analyze(root)
	require.NotNil(t, errs)
	assert.Contains(t, errMessages(t, errs), "Cyclic inheritance")
}
