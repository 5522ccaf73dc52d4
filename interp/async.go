package interp

import (
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
)

// asyncHandle is the idiomatic Go stand-in for the original's native thread
// handle (SPEC_FULL.md §4.3, §9 open-question decision): one goroutine per
// outstanding async call, joined by closing done.
type asyncHandle struct {
	threadIndex uint64
	done        chan struct{}
}

// spawnAsync starts name's body on its own goroutine over frame, registering
// the handle in i.threadPool under the function's name so a later born can
// find and join it (spec.md §4.3 "Async function call").
func (i *Interpreter) spawnAsync(name string, threadIndex uint64, frame *ScopeStorage, body *ast.Block) {
	handle := &asyncHandle{threadIndex: threadIndex, done: make(chan struct{})}
	i.mu.Lock()
	i.threadPool[name] = handle
	i.mu.Unlock()

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer close(handle.done)
		defer func() {
			if rec := recover(); rec != nil {
				i.logDebug("async thread panicked", "name", name, "recover", rec)
			}
		}()
		i.setFrame(threadIndex, frame)
		i.logDebug("spawned async thread", "name", name, "threadIndex", threadIndex)
		i.callFunction(threadIndex, nil, body, nil, callPlain)
	}()
}

// bornStmt implements spec.md §4.3 "Suspension": join the named function's
// thread, then, for the two-argument form, copy its recorded return value
// into the caller's own thread storage, promoting Int to Float the same way
// varDecl does (grounded on Interpreter.java's bornStmt/assign).
func (i *Interpreter) bornStmt(n *ast.Born) any {
	var name string
	switch decl := i.attr(n.Function, "decl").(type) {
	case *ast.FunDecl:
		name = decl.Name
	case *ast.MethodDecl:
		name = decl.Name
	default:
		i.fail(n, nil, "born's first argument does not refer to a function")
		return nil
	}

	i.mu.Lock()
	handle, ok := i.threadPool[name]
	i.mu.Unlock()
	if !ok {
		i.fail(n, nil, "please call the async function before trying to born it")
		return nil
	}

	select {
	case <-handle.done:
	case <-i.ctx.Done():
		i.logDebug("born wait cancelled", "name", name)
		return nil
	}

	if n.Variable == nil {
		return nil
	}

	varScope := i.attr(n.Variable, "scope").(scope.Scope)
	varDecl := i.attr(n.Variable, "decl").(*ast.VarDecl)
	callerThread := i.attr(n, "threadIndex").(uint64)

	i.mu.Lock()
	val := i.returnValues[handle.threadIndex]
	i.mu.Unlock()
	val = coerceToType(val, i.attr(varDecl, "type"))

	if varScope == i.rootScope {
		i.rootStorage.Set(varScope, n.Variable.Name, val)
	} else {
		i.frame(callerThread).Set(varScope, n.Variable.Name, val)
	}
	return nil
}

// joinAllOutstanding waits for every async thread the program spawned but
// never borned before returning, swallowing whatever those goroutines
// panicked with, mirroring the original's empty catch around a bare
// thread.join() at shutdown (SUPPLEMENTED FEATURES).
func (i *Interpreter) joinAllOutstanding() {
	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-i.ctx.Done():
		i.logDebug("join-all cancelled, outstanding threads abandoned")
	}
}
