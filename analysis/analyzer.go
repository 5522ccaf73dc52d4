// Package analysis implements the constraint-based semantic analyzer of
// spec.md §4.2: a two-phase (PRE/POST) walk over the AST that installs
// reactor rules computing each node's type/value/scope/decl/returns/parent/
// threadIndex/declared/ancestors attributes, grounded throughout on
// norswap/sigh/SemanticAnalysis.java from original_source/.
package analysis

import (
	"fmt"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/internal/slogx"
	"github.com/cdelzotti/sigh/reactor"
	"github.com/cdelzotti/sigh/scope"
	"github.com/cdelzotti/sigh/sigherr"
)

// k is shorthand for building a reactor.Key; it mirrors the original's
// node.attr(name) calls.
func k(node ast.Node, attr string) reactor.Key {
	return reactor.Key{Node: node, Attr: attr}
}

// Options configures the analyzer (SPEC_FULL.md §6 "Configuration").
type Options struct {
	// LogRuleFiring gates logRule's debug output under the "analysis"
	// section; off by default. None of the analyzer's rule registrations
	// call logRule, so setting it produces no output.
	LogRuleFiring bool
}

// Analyzer walks a decorated AST, emitting reactor rules and collecting
// sigherr.SighError values translated from the reactor's raw semantic
// errors.
type Analyzer struct {
	opts Options
	R    *reactor.Reactor

	scope            scope.Scope
	inferenceContext ast.Node
	registry         *scope.Registry
	threadIndex      uint64
	funcStack        []funcFrame
}

// funcFrame tracks the function/method currently being walked, so a nested
// Return statement can check its value against the declared return type
// (spec.md §4.2 "Return").
type funcFrame struct {
	node      ast.Node
	returnTyp ast.TypeNode
}

// New creates an Analyzer with the given options. Analyze does not take
// one: it builds its own with New(Options{}).
func New(opts Options) *Analyzer {
	return &Analyzer{
		opts:     opts,
		R:        reactor.New(),
		registry: scope.NewRegistry(),
	}
}

// Analyze walks root, installs every reactor rule spec.md §4.2 names, runs
// the reactor to fixpoint, and returns the reactor (so the interpreter can
// read back decorated attributes) plus the collected error list.
func Analyze(root *ast.Root) (*reactor.Reactor, *sigherr.List) {
	a := New(Options{})
	a.visitRoot(root)
	rawErrs := a.R.Run()
	return a.R, translateErrors(rawErrs)
}

// translateErrors wraps the reactor's untyped SemanticError values into the
// sigherr taxonomy. Most of the analyzer's own error calls produce messages
// already categorized by convention (see errorKind), matching spec.md §7's
// six categories.
func translateErrors(raw []reactor.SemanticError) *sigherr.List {
	if len(raw) == 0 {
		return nil
	}
	list := &sigherr.List{}
	for _, e := range raw {
		list = list.With(classify(e))
	}
	return list
}

func classify(e reactor.SemanticError) sigherr.SighError {
	switch kindOf(e.Message) {
	case kindResolution:
		return sigherr.NewResolutionError(e.Node, e.Message)
	case kindInheritance:
		return sigherr.NewInheritanceError(e.Node, e.Message)
	case kindControlFlow:
		return sigherr.NewControlFlowError(e.Node, e.Message)
	case kindAsync:
		return sigherr.NewAsyncError(e.Node, e.Message)
	default:
		return sigherr.NewShapeError(e.Node, e.Message)
	}
}

type errKind int

const (
	kindShape errKind = iota
	kindResolution
	kindInheritance
	kindControlFlow
	kindAsync
)

// kindOf classifies an error message by the vocabulary the rules below use
// to produce it; this keeps every call site free to write a plain message
// (as the original does) while still landing in the right sigherr category.
func kindOf(msg string) errKind {
	switch {
	case containsAny(msg, "Could not resolve", "could not resolve", "used before declaration"):
		return kindResolution
	case containsAny(msg, "Missing return", "Return without value", "Return with value",
		"must be located inside a method"):
		return kindControlFlow
	case containsAny(msg, "ancestor", "Cyclic inheritance", "constructor for class", "capital letter",
		"override", "Daddy"):
		return kindInheritance
	case containsAny(msg, "born", "Born", "Unborn", "async"):
		return kindAsync
	default:
		return kindShape
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if indexOf(s, sub) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func (a *Analyzer) logRule(node ast.Node, attr string) {
	if a.opts.LogRuleFiring {
		slogx.Default.Debug("registering rule", "section", "analysis", "node", fmt.Sprintf("%T", node), "attr", attr)
	}
}

func (a *Analyzer) popScope() {
	a.scope = a.scope.Outer()
}
