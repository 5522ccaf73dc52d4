package interp

import (
	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/types"
)

// callKind distinguishes the three shapes callFunction's shared
// frame-push/run/refresh/restore sequence serves (spec.md §4.3 "Function
// call"), grounded on Interpreter.java's funCall.
type callKind int

const (
	callPlain callKind = iota
	callConstructor
	callMethod
)

func (i *Interpreter) evalArgs(args []ast.Expr) []any {
	out := make([]any, len(args))
	for idx, a := range args {
		out[idx] = i.eval(a)
	}
	return out
}

// funCall implements spec.md §4.2 "Function call", dispatching on the
// callee's concrete runtime representation: a method reached through field
// access, a struct constructor, a class instantiation, a built-in, or an
// ordinary function (spec.md §4.3, grounded on Interpreter.java's funCall).
func (i *Interpreter) funCall(n *ast.FunCall) any {
	threadIndex := i.attr(n, "threadIndex").(uint64)

	if fa, ok := n.Function.(*ast.FieldAccess); ok {
		args := i.evalArgs(n.Arguments)
		return i.callMethodViaField(fa, args, threadIndex)
	}

	calleeVal := i.eval(n.Function)
	if isNull(calleeVal) {
		i.fail(n, nil, "calling a null function")
		return nil
	}
	args := i.evalArgs(n.Arguments)

	switch decl := calleeVal.(type) {
	case *ast.SyntheticDecl:
		return i.builtin(decl.Name, args)
	case *constructorValue:
		return i.buildStruct(decl.Decl, args)
	case *ast.ClassDecl:
		return i.instantiateClass(decl, args, threadIndex)
	case *ast.FunDecl:
		return i.callPlainFunction(decl, decl, args, threadIndex)
	case *ast.MethodDecl:
		// A bare (non field-access) reference to a sibling method,
		// resolved through the lexical scope chain into the enclosing
		// class's own ClassScope: run it as an ordinary call, relying on
		// the caller's still-open class-scope frame to keep the current
		// instance's fields reachable by name (grounded on
		// Interpreter.java's funCall, which takes this same path for any
		// MethodDeclarationNode reached other than through field access).
		return i.callPlainFunction(decl, &decl.FunDecl, args, threadIndex)
	}
	i.fail(n, nil, "cannot call a value of this kind")
	return nil
}

// callFunction runs body on threadIndex's current (already pushed) frame,
// catching a Return panic, refreshing instance from the first ClassScope
// frame found between the current top and oldStorage, and restoring
// threadIndex's frame to oldStorage regardless of how the body unwound
// (spec.md §4.3, SUPPLEMENTED FEATURES "refresh walk").
//
// Per spec.md line 213 and its §9 open question, a method invoked through
// field access always discards its return value to the caller, whether or
// not the body hit an explicit Return; a constructor always yields the
// instance it built, never whatever an early `return;` inside it computed
// (the original's generic return-the-exception's-value path would lose the
// instance on such a return, which looks like an accident of sharing one
// call path rather than an intended rule, so this implementation does not
// reproduce it).
func (i *Interpreter) callFunction(threadIndex uint64, oldStorage *ScopeStorage, body *ast.Block, instance *classInstance, kind callKind) any {
	var result any
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
		i.run(body)
	}()

	if instance != nil {
		for cur := i.frame(threadIndex); cur != nil && cur != oldStorage; cur = cur.Parent {
			if _, ok := cur.Scope.(*scope.ClassScope); ok {
				instance.refresh(cur)
				break
			}
		}
	}
	i.setFrame(threadIndex, oldStorage)

	switch kind {
	case callConstructor:
		return instance
	case callMethod:
		return Null
	default:
		return result
	}
}

// callPlainFunction implements an ordinary function call: synchronous calls
// push one frame onto the caller's own thread and run to completion;
// asynchronous calls open a fresh frame on the function's own stable thread
// index, chained onto the caller's current frame for top-scope visibility,
// and hand the body to a new goroutine (spec.md §4.3 "Async function call").
//
// node is the attribute key the analyzer used for fd (either fd itself for a
// plain function, or the enclosing *ast.MethodDecl for a method reached by
// bare reference), since the analyzer records a method's attributes under
// the *ast.MethodDecl, not under its embedded FunDecl.
func (i *Interpreter) callPlainFunction(node ast.Decl, fd *ast.FunDecl, args []any, callerThread uint64) any {
	fnScope := i.attr(node, "scope").(scope.Scope)
	_, async := fd.ReturnTyp.(*ast.UnbornType)

	if async {
		newThreadIndex := i.attr(node, "threadIndex").(uint64)
		captured := i.frame(callerThread)
		frame := NewScopeStorage(fnScope, captured)
		for idx, p := range fd.Parameters {
			frame.Set(fnScope, p.Name, args[idx])
		}
		i.spawnAsync(fd.Name, newThreadIndex, frame, fd.Body)
		return Null
	}

	oldStorage := i.frame(callerThread)
	frame := NewScopeStorage(fnScope, oldStorage)
	for idx, p := range fd.Parameters {
		frame.Set(fnScope, p.Name, args[idx])
	}
	i.setFrame(callerThread, frame)
	return i.callFunction(callerThread, oldStorage, fd.Body, nil, callPlain)
}

// instantiateClass builds a fresh instance, seeds it field by field (so a
// later field's initializer can see an earlier sibling field, spec.md §4.3
// "Class construction"), then runs the constructor over a parameter frame
// chained under the field frame.
func (i *Interpreter) instantiateClass(decl *ast.ClassDecl, args []any, callerThread uint64) any {
	classScope := i.attr(decl, "scope").(*scope.ClassScope)
	clsType := i.attr(decl, "declared").(*types.Class)

	ctx := classScope.Lookup("<constructor>")
	if ctx == nil {
		i.fail(decl, nil, "class %s has no constructor", decl.Name)
		return nil
	}
	ctorDecl, ok := ctx.Decl.(*ast.MethodDecl)
	if !ok {
		i.fail(decl, nil, "class %s has no constructor", decl.Name)
		return nil
	}

	instance := newClassInstance(classScope, clsType)
	oldStorage := i.frame(callerThread)
	classFrame := NewScopeStorage(classScope, oldStorage)
	i.setFrame(callerThread, classFrame)

	for _, f := range clsType.Fields() {
		if _, isFun := f.Typ.(*types.Fun); isFun {
			continue
		}
		fctx := classScope.Lookup(f.Name)
		if fctx == nil {
			continue
		}
		vd, ok := fctx.Decl.(*ast.VarDecl)
		if !ok {
			continue
		}
		var val any = Null
		if vd.Initializer != nil {
			val = i.eval(vd.Initializer)
		}
		val = coerceToType(val, i.attr(vd, "type"))
		instance.setField(f.Name, val)
		classFrame.Set(classScope, f.Name, val)
	}

	ctorScope := i.attr(ctorDecl, "scope").(scope.Scope)
	ctorFrame := NewScopeStorage(ctorScope, classFrame)
	for idx, p := range ctorDecl.Parameters {
		ctorFrame.Set(ctorScope, p.Name, args[idx])
	}
	i.setFrame(callerThread, ctorFrame)
	return i.callFunction(callerThread, oldStorage, ctorDecl.Body, instance, callConstructor)
}

// callMethodViaField resolves fa.FieldName through the instance's own
// ClassScope (honouring inheritance), seeds a frame with the instance's
// current field values, and runs the method (spec.md §4.3 "Method call via
// field access"). Async methods never reach here: the analyzer rejects them
// at the field-access site.
func (i *Interpreter) callMethodViaField(fa *ast.FieldAccess, args []any, callerThread uint64) any {
	stemVal := i.eval(fa.Stem)
	if isNull(stemVal) {
		i.fail(fa, nil, "calling method %s on a null value", fa.FieldName)
		return nil
	}
	instance, ok := stemVal.(*classInstance)
	if !ok {
		i.fail(fa, nil, "cannot call method %s on a non-class value", fa.FieldName)
		return nil
	}
	ctx := instance.scope.Lookup(fa.FieldName)
	if ctx == nil {
		i.fail(fa, nil, "class %s has no method %s", instance.typ.Name, fa.FieldName)
		return nil
	}
	methodDecl, ok := ctx.Decl.(*ast.MethodDecl)
	if !ok {
		i.fail(fa, nil, "%s is not a method", fa.FieldName)
		return nil
	}

	oldStorage := i.frame(callerThread)
	classFrame := NewScopeStorage(instance.scope, oldStorage)
	for name, v := range instance.fields {
		classFrame.Set(instance.scope, name, v)
	}
	i.setFrame(callerThread, classFrame)

	methodScope := i.attr(methodDecl, "scope").(scope.Scope)
	methodFrame := NewScopeStorage(methodScope, classFrame)
	for idx, p := range methodDecl.Parameters {
		methodFrame.Set(methodScope, p.Name, args[idx])
	}
	i.setFrame(callerThread, methodFrame)
	return i.callFunction(callerThread, oldStorage, methodDecl.Body, instance, callMethod)
}

// daddyCall implements spec.md §4.2/GLOSSARY "Daddy(...)": run the parent
// method's body over a fresh frame chained onto the current frame, so it
// still sees the caller's own field frame underneath (grounded on
// Interpreter.java's daddyCall, which re-enters the visitor over the same
// storage without pushing a second class-scope frame).
func (i *Interpreter) daddyCall(n *ast.DaddyCall) any {
	threadIndex := i.attr(n, "threadIndex").(uint64)
	parentMethod := i.attr(n, "parent").(*ast.MethodDecl)
	args := i.evalArgs(n.Arguments)

	oldStorage := i.frame(threadIndex)
	parentScope := i.attr(parentMethod, "scope").(scope.Scope)
	frame := NewScopeStorage(parentScope, oldStorage)
	for idx, p := range parentMethod.Parameters {
		frame.Set(parentScope, p.Name, args[idx])
	}
	i.setFrame(threadIndex, frame)
	return i.callFunction(threadIndex, oldStorage, parentMethod.Body, nil, callPlain)
}

// builtin implements the one built-in function, print (spec.md §6
// "Built-ins"): print takes an already-stringified argument (Sigh callers
// build it with `+`) and writes it to stdout, returning it unchanged so
// `print(...)` is usable as an expression.
func (i *Interpreter) builtin(name string, args []any) any {
	if name != "print" {
		panic("interp: unknown builtin " + name)
	}
	line, _ := args[0].(string)
	i.stdout.Write([]byte(line + "\n"))
	return args[0]
}

// buildStruct pairs args positionally with decl's fields (spec.md §4.2
// "Constructor expression").
func (i *Interpreter) buildStruct(decl *ast.StructDecl, args []any) any {
	out := make(map[string]any, len(decl.Fields))
	for idx, f := range decl.Fields {
		out[f.Name] = args[idx]
	}
	return out
}
