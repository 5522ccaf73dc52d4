package ast

// Root is the program's top-level node: a sequence of statements executed
// on the main thread.
type Root struct {
	Range
	Statements []Stmt
}

func (*Root) stmtNode()      {}
func (n *Root) Hash() uint64 { return hashPointer(n) }

// Block is `{ statements... }`, a lexical scope boundary.
type Block struct {
	Range
	Statements []Stmt
}

func (*Block) stmtNode()      {}
func (n *Block) Hash() uint64 { return hashPointer(n) }

// ExpressionStmt is an expression evaluated for effect, its value discarded.
type ExpressionStmt struct {
	Range
	Expression Expr
}

func (*ExpressionStmt) stmtNode()      {}
func (n *ExpressionStmt) Hash() uint64 { return hashPointer(n) }

// If is `if (cond) trueStatement [else falseStatement]`. FalseStatement may
// be nil.
type If struct {
	Range
	Condition      Expr
	TrueStatement  Stmt
	FalseStatement Stmt
}

func (*If) stmtNode()      {}
func (n *If) Hash() uint64 { return hashPointer(n) }

// While is `while (cond) body`.
type While struct {
	Range
	Condition Expr
	Body      Stmt
}

func (*While) stmtNode()      {}
func (n *While) Hash() uint64 { return hashPointer(n) }

// Return is `return [expression]`. Expression is nil for a value-less return.
type Return struct {
	Range
	Expression Expr
}

func (*Return) stmtNode()      {}
func (n *Return) Hash() uint64 { return hashPointer(n) }

// Born is `born(function[, variable])`: blocks until the named async
// function returns, optionally assigning its result to variable.
type Born struct {
	Range
	Function *Reference
	Variable *Reference // nil when the one-argument form is used
}

func (*Born) stmtNode()      {}
func (n *Born) Hash() uint64 { return hashPointer(n) }
