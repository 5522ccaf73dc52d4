package interp

import (
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// runRoot executes the program's top-level statements on the main thread
// (threadIndex 0), then joins every async call the user never borned
// (SUPPLEMENTED FEATURES "end-of-program join-all").
func (i *Interpreter) runRoot(root *ast.Root) (result any) {
	rootScope := i.attr(root, "scope").(scope.Scope)
	i.rootScope = rootScope
	frame := NewScopeStorage(rootScope, nil)
	frame.initRoot(rootScope)
	i.setFrame(0, frame)
	i.rootStorage = frame

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				if sig, ok := rec.(returnSignal); ok {
					result = sig.value
					return
				}
				panic(rec)
			}
		}()
		for _, s := range root.Statements {
			i.run(s)
		}
	}()

	i.joinAllOutstanding()
	return result
}

// block pushes a fresh storage frame for the block's scope, runs its
// statements, and pops the frame (spec.md §4.3).
func (i *Interpreter) block(n *ast.Block) any {
	s := i.attr(n, "scope").(scope.Scope)
	threadIndex := i.attr(n, "threadIndex").(uint64)
	parent := i.frame(threadIndex)
	i.setFrame(threadIndex, NewScopeStorage(s, parent))
	for _, stmt := range n.Statements {
		i.run(stmt)
	}
	i.setFrame(threadIndex, i.frame(threadIndex).Parent)
	return nil
}

// varDecl evaluates the initializer (or uses null for a declaration without
// one) and stores it in the declaring scope's frame, promoting an Int
// initializer to Float when the declared type calls for it (spec.md §4.3
// "assign").
func (i *Interpreter) varDecl(n *ast.VarDecl) any {
	s := i.attr(n, "scope").(scope.Scope)
	threadIndex := i.attr(n, "threadIndex").(uint64)
	var val any = Null
	if n.Initializer != nil {
		val = i.eval(n.Initializer)
	}
	val = coerceToType(val, i.attr(n, "type"))
	i.frame(threadIndex).Set(s, n.Name, val)
	return nil
}

func coerceToType(v any, declaredType any) any {
	t, ok := declaredType.(types.Type)
	if !ok {
		return v
	}
	if iv, ok := v.(int64); ok && t == types.Float {
		return float64(iv)
	}
	return v
}

func (i *Interpreter) ifStmt(n *ast.If) any {
	cond, ok := i.eval(n.Condition).(bool)
	if ok && cond {
		i.run(n.TrueStatement)
	} else if n.FalseStatement != nil {
		i.run(n.FalseStatement)
	}
	return nil
}

func (i *Interpreter) whileStmt(n *ast.While) any {
	for {
		cond, ok := i.eval(n.Condition).(bool)
		if !ok || !cond {
			break
		}
		i.run(n.Body)
	}
	return nil
}

// returnStmt implements spec.md §4.2/§4.3 "Return": on the main thread it
// unwinds via returnSignal to the enclosing call; on an async thread it
// records the value for a later born to collect (spec.md §5 "Suspension").
func (i *Interpreter) returnStmt(n *ast.Return) any {
	threadIndex := i.attr(n, "threadIndex").(uint64)
	var val any
	if n.Expression != nil {
		val = i.eval(n.Expression)
	}
	if threadIndex == 0 {
		panic(returnSignal{value: val})
	}
	i.mu.Lock()
	i.returnValues[threadIndex] = val
	i.mu.Unlock()
	return nil
}
