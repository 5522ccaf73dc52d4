package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/internal/slogx"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/sigherr"
)

// Options configures the interpreter (SPEC_FULL.md §6 "Configuration").
type Options struct {
	// Stdout receives print's output; defaults to os.Stdout.
	Stdout io.Writer
	// Context governs born/join-all's wait (spec.md §5 "Cancellation:
	// None" — cancelling it is not part of the language, but the wait is
	// written as a select so a host embedding the interpreter can bound
	// it). Defaults to context.Background().
	Context context.Context
}

// Interpreter walks an analyzed AST, reading the reactor's decorated
// attributes, and executes it (spec.md §4.3).
type Interpreter struct {
	R      *reactor.Reactor
	opts   Options
	stdout io.Writer
	ctx    context.Context

	mu           sync.Mutex
	wg           sync.WaitGroup
	storage      map[uint64]*ScopeStorage
	rootScope    scope.Scope
	rootStorage  *ScopeStorage
	threadPool   map[string]*asyncHandle
	returnValues map[uint64]any
}

// New creates an Interpreter over a reactor that Analyze has already run to
// a clean fixpoint (no semantic errors).
func New(r *reactor.Reactor, opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Interpreter{
		R:            r,
		opts:         opts,
		stdout:       opts.Stdout,
		ctx:          opts.Context,
		storage:      map[uint64]*ScopeStorage{},
		threadPool:   map[string]*asyncHandle{},
		returnValues: map[uint64]any{},
	}
}

// Interpret runs root to completion and returns the main thread's return
// value (nil unless the script itself has a top-level return), or the
// sigherr.RuntimeError that fail raised for the runtime error that
// terminated it (spec.md §4.3, §7 "single pass-through wrapper"). Any other
// panic is not converted: Interpret re-raises it to its caller.
func Interpret(r *reactor.Reactor, root *ast.Root, opts Options) (result any, err error) {
	i := New(r, opts)
	defer func() {
		if rec := recover(); rec != nil {
			if sig, ok := rec.(runtimeSignal); ok {
				err = sig.err
				return
			}
			panic(rec)
		}
	}()
	result = i.runRoot(root)
	return result, nil
}

// runtimeSignal unwinds the Go call stack up to Interpret, mirroring the
// original's PassthroughException caught only at interpret()'s top level.
type runtimeSignal struct{ err error }

// returnSignal implements the return statement's control flow, mirroring
// the original's Return exception (spec.md §4.2 "Return"); only the main
// thread's (threadIndex 0) Return unwinds this way, caught at the call site
// that pushed the enclosing function's frame.
type returnSignal struct{ value any }

func (i *Interpreter) attr(node ast.Node, name string) any {
	return i.R.MustGet(node, name)
}

// fail panics with a sigherr.RuntimeError wrapping cause, caught by
// Interpret's top-level recover (spec.md §7 category 6).
func (i *Interpreter) fail(at ast.Node, cause error, msg string, args ...any) {
	wrapped := cause
	if wrapped != nil {
		wrapped = pkgerrors.WithStack(cause)
	}
	panic(runtimeSignal{err: sigherr.NewRuntimeError(at, wrapped, msg, args...)})
}

func (i *Interpreter) logDebug(msg string, args ...any) {
	slogx.Default.Debug(msg, append([]any{"section", "interp"}, args...)...)
}

// frame retrieves (and, if missing, never creates) the storage frame
// for a thread; callers hold i.mu while mutating the storage map itself, but
// reads of an existing *ScopeStorage are safe to use lock-free afterward
// since each live frame chain is only ever touched by the one goroutine
// driving that thread.
func (i *Interpreter) frame(threadIndex uint64) *ScopeStorage {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.storage[threadIndex]
}

func (i *Interpreter) setFrame(threadIndex uint64, f *ScopeStorage) {
	i.mu.Lock()
	i.storage[threadIndex] = f
	i.mu.Unlock()
}

// eval dispatches a single AST node the way the original's ValuedVisitor
// does: one switch table shared by every statement and expression kind
// (spec.md §4.3).
func (i *Interpreter) eval(node ast.Node) any {
	switch n := node.(type) {
	case *ast.IntLiteral:
		return n.Value
	case *ast.FloatLiteral:
		return n.Value
	case *ast.StringLiteral:
		return n.Value
	case *ast.Parenthesized:
		return i.eval(n.Expression)
	case *ast.ArrayLiteral:
		return i.arrayLiteral(n)
	case *ast.Reference:
		return i.reference(n)
	case *ast.Constructor:
		return i.constructor(n)
	case *ast.FieldAccess:
		return i.fieldAccess(n)
	case *ast.ArrayAccess:
		return i.arrayAccess(n)
	case *ast.FunCall:
		return i.funCall(n)
	case *ast.DaddyCall:
		return i.daddyCall(n)
	case *ast.UnaryExpr:
		return i.unaryExpr(n)
	case *ast.BinaryExpr:
		return i.binaryExpr(n)
	case *ast.Assignment:
		return i.assignment(n)

	case *ast.Root:
		return i.runRoot(n)
	case *ast.Block:
		return i.block(n)
	case *ast.VarDecl:
		return i.varDecl(n)
	case *ast.ExpressionStmt:
		i.eval(n.Expression)
		return nil
	case *ast.If:
		return i.ifStmt(n)
	case *ast.While:
		return i.whileStmt(n)
	case *ast.Return:
		return i.returnStmt(n)
	case *ast.Born:
		return i.bornStmt(n)

	case *ast.FunDecl, *ast.MethodDecl, *ast.StructDecl, *ast.ClassDecl:
		// Declarations themselves produce no runtime effect; only the
		// references to them carry values.
		return nil
	default:
		panic(fmt.Sprintf("interp: unhandled node kind %T", node))
	}
}

// run evaluates node purely for its side effects; it does not recover a
// Return control-flow panic, which propagates to the caller (used where the
// original calls visitor.apply and lets Return propagate as a Java
// exception).
func (i *Interpreter) run(node ast.Node) {
	i.eval(node)
}
