package sighc

import (
	"encoding/json"
	"fmt"

	"github.com/cdelzotti/sigh/ast"
)

// Input to sighc is a JSON encoding of the AST rather than Sigh source text:
// with no grammar or parser in this module, this package stands in for the
// front end a full build would have, reading a "kind"-tagged node tree off
// stdin or a file and rebuilding the ast package's concrete node types
// directly (the same node graphs the analysis/interp package tests
// construct by hand).
//
// Every node object carries a "kind" field naming the concrete ast type
// (e.g. "BinaryExpr", "ClassDecl"); its other fields mirror that type's own
// field names. Optional fields (an absent else-branch, a return with no
// expression) may be omitted or null.

type wireEnvelope struct {
	Kind string `json:"kind"`
}

func decodeNode(raw json.RawMessage) (ast.Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("sighc: decoding node envelope: %w", err)
	}
	switch env.Kind {
	case "IntLiteral":
		var w struct{ Value int64 }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ast.IntLiteral{Value: w.Value}, nil
	case "FloatLiteral":
		var w struct{ Value float64 }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ast.FloatLiteral{Value: w.Value}, nil
	case "StringLiteral":
		var w struct{ Value string }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ast.StringLiteral{Value: w.Value}, nil
	case "Reference":
		var w struct{ Name string }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ast.Reference{Name: w.Name}, nil
	case "Constructor":
		var w struct{ Ref json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		refNode, err := decodeNode(w.Ref)
		if err != nil {
			return nil, err
		}
		ref, ok := refNode.(*ast.Reference)
		if !ok {
			return nil, fmt.Errorf("sighc: Constructor.ref must be a Reference, got %T", refNode)
		}
		return &ast.Constructor{Ref: ref}, nil
	case "ArrayLiteral":
		var w struct{ Components []json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		components, err := decodeExprs(w.Components)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Components: components}, nil
	case "Parenthesized":
		var w struct{ Expression json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(w.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.Parenthesized{Expression: expr}, nil
	case "FieldAccess":
		var w struct {
			Stem      json.RawMessage
			FieldName string
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		stem, err := decodeExpr(w.Stem)
		if err != nil {
			return nil, err
		}
		return &ast.FieldAccess{Stem: stem, FieldName: w.FieldName}, nil
	case "ArrayAccess":
		var w struct{ Array, Index json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		arr, err := decodeExpr(w.Array)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayAccess{Array: arr, Index: idx}, nil
	case "FunCall":
		var w struct {
			Function  json.RawMessage
			Arguments []json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fn, err := decodeExpr(w.Function)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Arguments)
		if err != nil {
			return nil, err
		}
		return &ast.FunCall{Function: fn, Arguments: args}, nil
	case "DaddyCall":
		var w struct{ Arguments []json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Arguments)
		if err != nil {
			return nil, err
		}
		return &ast.DaddyCall{Arguments: args}, nil
	case "UnaryExpr":
		var w struct {
			Operator string
			Operand  json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := decodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Operator: ast.Not, Operand: operand}, nil
	case "BinaryExpr":
		var w struct {
			Operator    string
			Left, Right json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		op, err := decodeBinaryOp(w.Operator)
		if err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Operator: op, Left: left, Right: right}, nil
	case "Assignment":
		var w struct{ Left, Right json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Left: left, Right: right}, nil

	case "Root":
		var w struct{ Statements []json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(w.Statements)
		if err != nil {
			return nil, err
		}
		return &ast.Root{Statements: stmts}, nil
	case "Block":
		var w struct{ Statements []json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(w.Statements)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Statements: stmts}, nil
	case "ExpressionStmt":
		var w struct{ Expression json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(w.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStmt{Expression: expr}, nil
	case "If":
		var w struct {
			Condition                    json.RawMessage
			TrueStatement, FalseStatement json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		trueStmt, err := decodeStmt(w.TrueStatement)
		if err != nil {
			return nil, err
		}
		falseStmt, err := decodeStmtOpt(w.FalseStatement)
		if err != nil {
			return nil, err
		}
		return &ast.If{Condition: cond, TrueStatement: trueStmt, FalseStatement: falseStmt}, nil
	case "While":
		var w struct{ Condition, Body json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmt(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.While{Condition: cond, Body: body}, nil
	case "Return":
		var w struct{ Expression json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		expr, err := decodeExprOpt(w.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Expression: expr}, nil
	case "Born":
		var w struct{ Function, Variable json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fn, err := decodeReference(w.Function)
		if err != nil {
			return nil, err
		}
		variable, err := decodeReferenceOpt(w.Variable)
		if err != nil {
			return nil, err
		}
		return &ast.Born{Function: fn, Variable: variable}, nil

	case "VarDecl":
		var w struct {
			Name                   string
			DeclaredTyp            json.RawMessage
			Initializer            json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		typ, err := decodeTypeOrAuto(w.DeclaredTyp)
		if err != nil {
			return nil, err
		}
		init, err := decodeExprOpt(w.Initializer)
		if err != nil {
			return nil, err
		}
		return &ast.VarDecl{Name: w.Name, DeclaredTyp: typ, Initializer: init}, nil
	case "FieldDecl":
		var w struct {
			Name        string
			DeclaredTyp json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		typ, err := decodeType(w.DeclaredTyp)
		if err != nil {
			return nil, err
		}
		return &ast.FieldDecl{Name: w.Name, DeclaredTyp: typ}, nil
	case "Parameter":
		var w struct {
			Name        string
			DeclaredTyp json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		typ, err := decodeType(w.DeclaredTyp)
		if err != nil {
			return nil, err
		}
		return &ast.Parameter{Name: w.Name, DeclaredTyp: typ}, nil
	case "FunDecl":
		fd, err := decodeFunDeclFields(raw)
		if err != nil {
			return nil, err
		}
		return fd, nil
	case "MethodDecl":
		fd, err := decodeFunDeclFields(raw)
		if err != nil {
			return nil, err
		}
		return &ast.MethodDecl{FunDecl: *fd}, nil
	case "StructDecl":
		var w struct {
			Name   string
			Fields []json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fields := make([]*ast.FieldDecl, len(w.Fields))
		for idx, r := range w.Fields {
			n, err := decodeNode(r)
			if err != nil {
				return nil, err
			}
			fd, ok := n.(*ast.FieldDecl)
			if !ok {
				return nil, fmt.Errorf("sighc: StructDecl.fields[%d] must be a FieldDecl, got %T", idx, n)
			}
			fields[idx] = fd
		}
		return &ast.StructDecl{Name: w.Name, Fields: fields}, nil
	case "ClassDecl":
		var w struct {
			Name   string
			Parent string
			Body   []json.RawMessage
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := decodeDecls(w.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ClassDecl{Name: w.Name, Parent: w.Parent, Body: body}, nil

	case "SimpleType":
		var w struct{ Name string }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ast.SimpleType{Name: w.Name}, nil
	case "ArrayType":
		var w struct{ Component json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		comp, err := decodeType(w.Component)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Component: comp}, nil
	case "UnbornType":
		var w struct{ Component json.RawMessage }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		comp, err := decodeType(w.Component)
		if err != nil {
			return nil, err
		}
		return &ast.UnbornType{Component: comp}, nil
	case "AutoType":
		return &ast.AutoType{}, nil
	}
	return nil, fmt.Errorf("sighc: unknown node kind %q", env.Kind)
}

func decodeFunDeclFields(raw json.RawMessage) (*ast.FunDecl, error) {
	var w struct {
		Name       string
		Parameters []json.RawMessage
		ReturnTyp  json.RawMessage
		Body       json.RawMessage
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	params := make([]*ast.Parameter, len(w.Parameters))
	for idx, r := range w.Parameters {
		n, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		p, ok := n.(*ast.Parameter)
		if !ok {
			return nil, fmt.Errorf("sighc: parameters[%d] must be a Parameter, got %T", idx, n)
		}
		params[idx] = p
	}
	returnTyp, err := decodeType(w.ReturnTyp)
	if err != nil {
		return nil, err
	}
	bodyNode, err := decodeNode(w.Body)
	if err != nil {
		return nil, err
	}
	body, ok := bodyNode.(*ast.Block)
	if !ok {
		return nil, fmt.Errorf("sighc: body must be a Block, got %T", bodyNode)
	}
	return &ast.FunDecl{Name: w.Name, Parameters: params, ReturnTyp: returnTyp, Body: body}, nil
}

func decodeBinaryOp(s string) (ast.BinaryOp, error) {
	switch s {
	case "+":
		return ast.Add, nil
	case "-":
		return ast.Subtract, nil
	case "*":
		return ast.Multiply, nil
	case "/":
		return ast.Divide, nil
	case "%":
		return ast.Remainder, nil
	case "==":
		return ast.Equal, nil
	case "!=":
		return ast.NotEqual, nil
	case ">":
		return ast.Greater, nil
	case "<":
		return ast.Lower, nil
	case ">=":
		return ast.GreaterEqual, nil
	case "<=":
		return ast.LowerEqual, nil
	case "&&":
		return ast.And, nil
	case "||":
		return ast.Or, nil
	case "ciblingsOf", "siblingsOf":
		return ast.Ciblings, nil
	}
	return 0, fmt.Errorf("sighc: unknown binary operator %q", s)
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expr)
	if !ok {
		return nil, fmt.Errorf("sighc: expected an expression, got %T", node)
	}
	return expr, nil
}

func decodeExprOpt(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpr(raw)
}

func decodeExprs(raws []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(raws))
	for idx, r := range raws {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out[idx] = e
	}
	return out, nil
}

func decodeStmt(raw json.RawMessage) (ast.Stmt, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	stmt, ok := node.(ast.Stmt)
	if !ok {
		return nil, fmt.Errorf("sighc: expected a statement, got %T", node)
	}
	return stmt, nil
}

func decodeStmtOpt(raw json.RawMessage) (ast.Stmt, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeStmt(raw)
}

func decodeStmts(raws []json.RawMessage) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, len(raws))
	for idx, r := range raws {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out[idx] = s
	}
	return out, nil
}

func decodeDecls(raws []json.RawMessage) ([]ast.Decl, error) {
	out := make([]ast.Decl, len(raws))
	for idx, r := range raws {
		node, err := decodeNode(r)
		if err != nil {
			return nil, err
		}
		d, ok := node.(ast.Decl)
		if !ok {
			return nil, fmt.Errorf("sighc: body[%d] must be a declaration, got %T", idx, node)
		}
		out[idx] = d
	}
	return out, nil
}

func decodeType(raw json.RawMessage) (ast.TypeNode, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	t, ok := node.(ast.TypeNode)
	if !ok {
		return nil, fmt.Errorf("sighc: expected a type, got %T", node)
	}
	return t, nil
}

// decodeTypeOrAuto defaults a VarDecl's absent type annotation to AutoType,
// matching the `var x = ...` inferred-type form.
func decodeTypeOrAuto(raw json.RawMessage) (ast.TypeNode, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return &ast.AutoType{}, nil
	}
	return decodeType(raw)
}

func decodeReference(raw json.RawMessage) (*ast.Reference, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	ref, ok := node.(*ast.Reference)
	if !ok {
		return nil, fmt.Errorf("sighc: expected a Reference, got %T", node)
	}
	return ref, nil
}

func decodeReferenceOpt(raw json.RawMessage) (*ast.Reference, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeReference(raw)
}

// DecodeRoot parses a JSON-encoded program into the ast.Root the analyzer
// and interpreter operate over.
func DecodeRoot(data []byte) (*ast.Root, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, err
	}
	root, ok := node.(*ast.Root)
	if !ok {
		return nil, fmt.Errorf("sighc: top-level node must be a Root, got %T", node)
	}
	return root, nil
}
