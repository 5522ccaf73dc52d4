package reactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdelzotti/sigh/ast"
	"github.com/cdelzotti/sigh/reactor"
)

func TestRuleFiresOnceInputsSet(t *testing.T) {
	r := reactor.New()
	n := &ast.IntLiteral{}

	r.Rule(reactor.Key{Node: n, Attr: "double"}).
		Using(reactor.Key{Node: n, Attr: "value"}).
		By(func(c *reactor.RuleCtx) {
			v := c.Get(0).(int)
			c.Set(0, v*2)
		})

	r.Set(n, "value", 21)
	errs := r.Run()

	assert.Empty(t, errs)
	v, ok := r.Get(n, "double")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestRuleRegisteredAfterInputAlreadySetStillDefersToRun(t *testing.T) {
	r := reactor.New()
	n := &ast.IntLiteral{}
	r.Set(n, "value", 10)

	fired := false
	r.Rule(reactor.Key{Node: n, Attr: "double"}).
		Using(reactor.Key{Node: n, Attr: "value"}).
		By(func(c *reactor.RuleCtx) {
			fired = true
			c.Set(0, c.Get(0).(int)*2)
		})

	assert.False(t, fired, "rule must not fire until Run")
	r.Run()
	assert.True(t, fired)
}

func TestZeroInputRuleFiresImmediatelyOnRun(t *testing.T) {
	r := reactor.New()
	n := &ast.IntLiteral{}
	r.Rule(reactor.Key{Node: n, Attr: "ready"}).By(func(c *reactor.RuleCtx) {
		c.Set(0, true)
	})
	r.Run()
	v, ok := r.Get(n, "ready")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestErrorForPoisonsDependentRuleInsteadOfDeadlocking(t *testing.T) {
	r := reactor.New()
	n := &ast.IntLiteral{}

	r.Rule(reactor.Key{Node: n, Attr: "type"}).By(func(c *reactor.RuleCtx) {
		c.ErrorFor("could not resolve name", n, reactor.Key{Node: n, Attr: "type"})
	})

	dependentFired := false
	r.Rule(reactor.Key{Node: n, Attr: "checked"}).
		Using(reactor.Key{Node: n, Attr: "type"}).
		By(func(c *reactor.RuleCtx) {
			dependentFired = true
			assert.True(t, reactor.IsPoisoned(c.Get(0)))
		})

	errs := r.Run()
	assert.True(t, dependentFired)
	require.Len(t, errs, 1)
	assert.Equal(t, "could not resolve name", errs[0].Message)
}

func TestRunReportsRulesThatNeverFire(t *testing.T) {
	r := reactor.New()
	n := &ast.IntLiteral{}

	// This rule waits on an input nobody ever sets or poisons.
	r.Rule(reactor.Key{Node: n, Attr: "out"}).
		Using(reactor.Key{Node: n, Attr: "never"}).
		By(func(c *reactor.RuleCtx) {})

	errs := r.Run()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "never fired")
}

func TestMustGetPanicsWhenUnset(t *testing.T) {
	r := reactor.New()
	n := &ast.IntLiteral{}
	assert.Panics(t, func() { r.MustGet(n, "missing") })
}
