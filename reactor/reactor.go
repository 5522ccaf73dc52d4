// Package reactor implements an attribute dataflow store: rules declare
// their input attributes and fire once those inputs are available. It is
// an explicit work-list of deferred closures keyed by (node, attribute)
// rather than a dynamic, untyped attribute bag.
//
// Rules never fire while they are being registered, even if every input is
// already available: firing is deferred to Run(), exactly as the analyzer's
// walk only *registers* rules while it walks the AST (so that a reference to
// a not-yet-declared forward function can still resolve once the whole tree
// has been declared) and Run() drains everything to a fixpoint afterward.
package reactor

import (
	"fmt"

	"github.com/cdelzotti/sigh/ast"
)

// Key names one attribute slot on one node.
type Key struct {
	Node ast.Node
	Attr string
}

func (k Key) String() string {
	return fmt.Sprintf("%T(%p).%s", k.Node, k.Node, k.Attr)
}

// SemanticError is one collected analysis error, attached to the node whose
// analysis produced it.
type SemanticError struct {
	Message string
	Node    ast.Node
}

func (e SemanticError) Error() string {
	return e.Message
}

// poison is the sentinel value stored for an attribute ErrorFor marked as
// deliberately not produced: Get still returns a value (so a dependent rule
// does not panic merely for firing), and IsPoisoned lets that rule detect
// the gap.
type poison struct{}

var poisonValue = poison{}

// IsPoisoned reports whether v is the poison sentinel.
func IsPoisoned(v any) bool {
	_, ok := v.(poison)
	return ok
}

// rule is a registered, possibly still-pending computation.
type rule struct {
	outs      []Key
	ins       []Key
	fn        func(*RuleCtx)
	remaining int // count of ins not yet set or poisoned
	fired     bool
}

// Reactor is the dataflow store the analyzer drives.
type Reactor struct {
	values   map[Key]any
	poisoned map[Key]bool
	// waiting indexes rules by each input Key they have not yet seen, so
	// Set/poison can find and re-check them in O(rules watching that key).
	waiting map[Key][]*rule
	ready   []*rule
	errors  []SemanticError
}

func New() *Reactor {
	return &Reactor{
		values:   map[Key]any{},
		poisoned: map[Key]bool{},
		waiting:  map[Key][]*rule{},
	}
}

// Set publishes an attribute value. Any rule this was the last unmet input
// for becomes ready, but does not fire until Run() drains the queue.
func (r *Reactor) Set(node ast.Node, attr string, value any) {
	key := Key{node, attr}
	r.values[key] = value
	r.wake(key)
}

func (r *Reactor) wake(key Key) {
	waiters := r.waiting[key]
	delete(r.waiting, key)
	for _, rl := range waiters {
		rl.remaining--
		if rl.remaining == 0 {
			r.ready = append(r.ready, rl)
		}
	}
}

// Get returns the most recently Set value for (node, attr), and whether it
// was ever set.
func (r *Reactor) Get(node ast.Node, attr string) (any, bool) {
	v, ok := r.values[Key{node, attr}]
	return v, ok
}

// MustGet panics if the attribute was never set — used where the caller has
// already established, by construction (e.g. after a successful Run()),
// that the attribute must be present.
func (r *Reactor) MustGet(node ast.Node, attr string) any {
	v, ok := r.Get(node, attr)
	if !ok {
		panic(fmt.Sprintf("reactor: attribute not set: %s", Key{node, attr}))
	}
	return v
}

// RuleBuilder accumulates a rule's outputs before .Using(...).By(...) is
// called to register it.
type RuleBuilder struct {
	r    *Reactor
	outs []Key
}

// Rule begins building a rule that will, when fired, set the given output
// attributes.
func (r *Reactor) Rule(outs ...Key) *RuleBuilder {
	return &RuleBuilder{r: r, outs: outs}
}

// RuleInputBuilder accumulates a rule's inputs before .By(...) registers it.
type RuleInputBuilder struct {
	r    *Reactor
	outs []Key
	ins  []Key
}

// Using declares the rule's input attributes.
func (b *RuleBuilder) Using(ins ...Key) *RuleInputBuilder {
	return &RuleInputBuilder{r: b.r, outs: b.outs, ins: ins}
}

// By registers fn as the rule's body. fn does not run now — it is queued,
// and runs during Run() once every input is set or poisoned.
func (b *RuleInputBuilder) By(fn func(*RuleCtx)) {
	rl := &rule{outs: b.outs, ins: b.ins, fn: fn}
	remaining := 0
	for _, in := range b.ins {
		if _, ok := b.r.values[in]; ok {
			continue
		}
		remaining++
		b.r.waiting[in] = append(b.r.waiting[in], rl)
	}
	rl.remaining = remaining
	if remaining == 0 {
		b.r.ready = append(b.r.ready, rl)
	}
}

// By registers fn as a zero-input rule's body. Convenience for
// Rule(...).Using().By(fn).
func (b *RuleBuilder) By(fn func(*RuleCtx)) {
	b.Using().By(fn)
}

// RuleCtx is passed to a rule's body when it fires.
type RuleCtx struct {
	r    *Reactor
	rule *rule
}

// Get returns the i-th input's value (or the poison sentinel if that input
// was never set but only ErrorFor-poisoned — check reactor.IsPoisoned
// before trusting it).
func (c *RuleCtx) Get(i int) any {
	key := c.rule.ins[i]
	v, ok := c.r.values[key]
	if !ok {
		panic(fmt.Sprintf("reactor: rule fired with unset input: %s", key))
	}
	return v
}

// Set publishes the i-th output's value.
func (c *RuleCtx) Set(i int, value any) {
	key := c.rule.outs[i]
	c.r.Set(key.Node, key.Attr, value)
}

// Error records a semantic error attached to at, without poisoning any
// attribute.
func (c *RuleCtx) Error(msg string, at ast.Node) {
	c.r.errors = append(c.r.errors, SemanticError{Message: msg, Node: at})
}

// ErrorFor records a semantic error and marks the given attributes as
// deliberately not produced, so rules depending on them become ready (fire)
// rather than deadlocking the fixpoint.
func (c *RuleCtx) ErrorFor(msg string, at ast.Node, missing ...Key) {
	c.Error(msg, at)
	for _, key := range missing {
		if _, ok := c.r.values[key]; ok {
			continue
		}
		c.r.poisoned[key] = true
		c.r.values[key] = poisonValue
		c.r.wake(key)
	}
}

// Errors returns every semantic error collected so far, in emission order.
func (r *Reactor) Errors() []SemanticError {
	return r.errors
}

// Run drains the ready queue to a fixpoint: firing a rule may itself Set
// attributes or register further rules, which can make more rules ready, so
// draining continues until nothing is left. Once drained, any rule still
// waiting on an input that was never set or poisoned is reported as an
// error rather than left to panic later.
func (r *Reactor) Run() []SemanticError {
	for len(r.ready) > 0 {
		rl := r.ready[0]
		r.ready = r.ready[1:]
		if rl.fired {
			continue
		}
		rl.fired = true
		rl.fn(&RuleCtx{r: r, rule: rl})
	}

	for key, waiters := range r.waiting {
		for _, rl := range waiters {
			if rl.fired {
				continue
			}
			rl.fired = true
			r.errors = append(r.errors, SemanticError{
				Message: fmt.Sprintf("internal: rule never fired, missing input %s", key),
				Node:    key.Node,
			})
		}
	}
	return r.errors
}
