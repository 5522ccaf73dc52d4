package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdelzotti/sigh/analysis"
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/interp"
)

func TestVarDeclAndReferenceYieldsAssignedValue(t *testing.T) {
	x := &ast.VarDecl{Name: "x", DeclaredTyp: &ast.AutoType{}, Initializer: &ast.IntLiteral{Value: 41}}
	ref := &ast.Reference{Name: "x"}
	assign := &ast.Assignment{Left: ref, Right: &ast.IntLiteral{Value: 42}}
	root := &ast.Root{Statements: []ast.Stmt{
		x,
		&ast.ExpressionStmt{Expression: assign},
		&ast.ExpressionStmt{Expression: &ast.Reference{Name: "x"}},
	}}

	r, errs := analysis.Analyze(root)
	require.Nil(t, errs)

	var out bytes.Buffer
	_, err := interp.Interpret(r, root, interp.Options{Stdout: &out})
	assert.NoError(t, err)
}

func TestPrintBuiltinWritesToStdout(t *testing.T) {
	call := &ast.FunCall{
		Function:  &ast.Reference{Name: "print"},
		Arguments: []ast.Expr{&ast.StringLiteral{Value: "hello"}},
	}
	root := &ast.Root{Statements: []ast.Stmt{&ast.ExpressionStmt{Expression: call}}}

	r, errs := analysis.Analyze(root)
	require.Nil(t, errs)

	var out bytes.Buffer
	_, err := interp.Interpret(r, root, interp.Options{Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}

func TestFunctionCallReturnsComputedValue(t *testing.T) {
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
	result := &ast.VarDecl{
		Name:        "sum",
		DeclaredTyp: &ast.AutoType{},
		Initializer: &ast.FunCall{
			Function:  &ast.Reference{Name: "add"},
			Arguments: []ast.Expr{&ast.IntLiteral{Value: 10}, &ast.IntLiteral{Value: 32}},
		},
	}
	printCall := &ast.FunCall{
		Function: &ast.Reference{Name: "print"},
		Arguments: []ast.Expr{&ast.BinaryExpr{
			Operator: ast.Add,
			Left:     &ast.StringLiteral{Value: ""},
			Right:    &ast.Reference{Name: "sum"},
		}},
	}
	root := &ast.Root{Statements: []ast.Stmt{fd, result, &ast.ExpressionStmt{Expression: printCall}}}

	r, errs := analysis.Analyze(root)
	require.Nil(t, errs)

	var out bytes.Buffer
	_, err := interp.Interpret(r, root, interp.Options{Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

func TestClassConstructionAndMethodCall(t *testing.T) {
	field := &ast.VarDecl{Name: "label", DeclaredTyp: &ast.SimpleType{Name: "String"}, Initializer: &ast.StringLiteral{Value: "greeter"}}

	ctor := &ast.MethodDecl{FunDecl: ast.FunDecl{
		Name:      "Greeter",
		ReturnTyp: &ast.SimpleType{Name: "Void"},
		Body:      &ast.Block{},
	}}

	// greet prints its own field directly for effect: a method call reached
	// through field access always discards its return value to the caller
	// (see DESIGN.md's "field-access method calls" decision), so the
	// observable result of calling it has to come from a side effect.
	greet := &ast.MethodDecl{FunDecl: ast.FunDecl{
		Name:      "greet",
		ReturnTyp: &ast.SimpleType{Name: "Void"},
		Body: &ast.Block{Statements: []ast.Stmt{
			&ast.ExpressionStmt{Expression: &ast.FunCall{
				Function:  &ast.Reference{Name: "print"},
				Arguments: []ast.Expr{&ast.Reference{Name: "label"}},
			}},
		}},
	}}

	cls := &ast.ClassDecl{Name: "Greeter", Body: []ast.Decl{field, ctor, greet}}

	construct := &ast.VarDecl{
		Name:        "g",
		DeclaredTyp: &ast.AutoType{},
		Initializer: &ast.FunCall{Function: &ast.Reference{Name: "Greeter"}},
	}
	callGreet := &ast.ExpressionStmt{Expression: &ast.FunCall{
		Function: &ast.FieldAccess{Stem: &ast.Reference{Name: "g"}, FieldName: "greet"},
	}}

	root := &ast.Root{Statements: []ast.Stmt{cls, construct, callGreet}}

	r, errs := analysis.Analyze(root)
	require.Nil(t, errs)

	var out bytes.Buffer
	_, err := interp.Interpret(r, root, interp.Options{Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "greeter\n", out.String())
}

func TestWhileLoopAccumulatesValue(t *testing.T) {
	counter := &ast.VarDecl{Name: "i", DeclaredTyp: &ast.AutoType{}, Initializer: &ast.IntLiteral{Value: 0}}
	total := &ast.VarDecl{Name: "total", DeclaredTyp: &ast.AutoType{}, Initializer: &ast.IntLiteral{Value: 0}}

	body := &ast.Block{Statements: []ast.Stmt{
		&ast.ExpressionStmt{Expression: &ast.Assignment{
			Left: &ast.Reference{Name: "total"},
			Right: &ast.BinaryExpr{
				Operator: ast.Add,
				Left:     &ast.Reference{Name: "total"},
				Right:    &ast.Reference{Name: "i"},
			},
		}},
		&ast.ExpressionStmt{Expression: &ast.Assignment{
			Left: &ast.Reference{Name: "i"},
			Right: &ast.BinaryExpr{
				Operator: ast.Add,
				Left:     &ast.Reference{Name: "i"},
				Right:    &ast.IntLiteral{Value: 1},
			},
		}},
	}}
	loop := &ast.While{
		Condition: &ast.BinaryExpr{Operator: ast.Lower, Left: &ast.Reference{Name: "i"}, Right: &ast.IntLiteral{Value: 5}},
		Body:      body,
	}
	printTotal := &ast.ExpressionStmt{Expression: &ast.FunCall{
		Function: &ast.Reference{Name: "print"},
		Arguments: []ast.Expr{&ast.BinaryExpr{
			Operator: ast.Add,
			Left:     &ast.StringLiteral{Value: ""},
			Right:    &ast.Reference{Name: "total"},
		}},
	}}

	root := &ast.Root{Statements: []ast.Stmt{counter, total, loop, printTotal}}

	r, errs := analysis.Analyze(root)
	require.Nil(t, errs)

	var out bytes.Buffer
	_, err := interp.Interpret(r, root, interp.Options{Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "10\n", out.String())
}

func TestArrayLiteralAndIndexAccess(t *testing.T) {
	arr := &ast.VarDecl{
		Name:        "xs",
		DeclaredTyp: &ast.AutoType{},
		Initializer: &ast.ArrayLiteral{Components: []ast.Expr{
			&ast.IntLiteral{Value: 1},
			&ast.IntLiteral{Value: 2},
			&ast.IntLiteral{Value: 3},
		}},
	}
	access := &ast.ArrayAccess{Array: &ast.Reference{Name: "xs"}, Index: &ast.IntLiteral{Value: 1}}
	printIt := &ast.ExpressionStmt{Expression: &ast.FunCall{
		Function: &ast.Reference{Name: "print"},
		Arguments: []ast.Expr{&ast.BinaryExpr{
			Operator: ast.Add,
			Left:     &ast.StringLiteral{Value: ""},
			Right:    access,
		}},
	}}

	root := &ast.Root{Statements: []ast.Stmt{arr, printIt}}

	r, errs := analysis.Analyze(root)
	require.Nil(t, errs)

	var out bytes.Buffer
	_, err := interp.Interpret(r, root, interp.Options{Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "2\n", out.String())
}
