package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cdelzotti/sigh/types"
)

func TestEqualPrimitives(t *testing.T) {
	assert.True(t, types.Equal(types.Int, types.Int))
	assert.False(t, types.Equal(types.Int, types.Float))
}

func TestEqualArraysStructural(t *testing.T) {
	a := &types.Array{Component: types.Int}
	b := &types.Array{Component: types.Int}
	c := &types.Array{Component: types.Float}
	assert.True(t, types.Equal(a, b))
	assert.False(t, types.Equal(a, c))
}

func TestEqualClassesNominal(t *testing.T) {
	a := types.NewClass("Foo")
	b := types.NewClass("Foo")
	c := types.NewClass("Bar")
	assert.True(t, types.Equal(a, b))
	assert.False(t, types.Equal(a, c))
}

func TestAssignableToIntFloatPromotion(t *testing.T) {
	assert.True(t, types.AssignableTo(types.Int, types.Float))
	assert.False(t, types.AssignableTo(types.Float, types.Int))
}

func TestAssignableToAutoAcceptsAnything(t *testing.T) {
	assert.True(t, types.AssignableTo(types.Int, types.Auto))
	assert.True(t, types.AssignableTo(&types.Array{Component: types.String}, types.Auto))
}

func TestAssignableToVoidNeverAssignable(t *testing.T) {
	assert.False(t, types.AssignableTo(types.Void, types.Int))
	assert.False(t, types.AssignableTo(types.Int, types.Void))
}

func TestAssignableToNullAcceptsAnyReference(t *testing.T) {
	arr := &types.Array{Component: types.Int}
	assert.True(t, types.AssignableTo(types.Null, arr))
	assert.False(t, types.AssignableTo(types.Null, types.Int))
}

func TestClassShapeCompatibleAcceptsStructuralSubset(t *testing.T) {
	target := types.NewClass("Shape")
	target.AddField("area", &types.Fun{Return: types.Float})

	actual := types.NewClass("Square")
	actual.AddField("area", &types.Fun{Return: types.Float})
	actual.AddField("side", types.Int)

	ok, msg := types.ClassShapeCompatible(target, actual)
	assert.True(t, ok, msg)
}

func TestClassShapeCompatibleRejectsMissingField(t *testing.T) {
	target := types.NewClass("Shape")
	target.AddField("area", &types.Fun{Return: types.Float})

	actual := types.NewClass("Blob")

	ok, msg := types.ClassShapeCompatible(target, actual)
	assert.False(t, ok)
	assert.Contains(t, msg, "missing")
}

func TestClassShapeCompatibleRejectsDifferingFieldType(t *testing.T) {
	target := types.NewClass("Shape")
	target.AddField("area", types.Float)

	actual := types.NewClass("Other")
	actual.AddField("area", types.Int)

	ok, _ := types.ClassShapeCompatible(target, actual)
	assert.False(t, ok)
}

func TestClassShapeCompatibleIgnoresConstructor(t *testing.T) {
	target := types.NewClass("Shape")
	target.AddField("<constructor>", &types.Fun{Return: types.Void})

	actual := types.NewClass("Other")

	ok, msg := types.ClassShapeCompatible(target, actual)
	assert.True(t, ok, msg)
}

func TestComparableToMixedNumeric(t *testing.T) {
	assert.True(t, types.ComparableTo(types.Int, types.Float))
	assert.True(t, types.ComparableTo(types.Float, types.Int))
	assert.False(t, types.ComparableTo(types.Void, types.Int))
}

func TestCommonSupertypePromotesIntToFloat(t *testing.T) {
	assert.Equal(t, types.Float, types.CommonSupertype(types.Int, types.Float))
	assert.Equal(t, types.Float, types.CommonSupertype(types.Float, types.Int))
}

func TestCommonSupertypeNoRelationReturnsNil(t *testing.T) {
	assert.Nil(t, types.CommonSupertype(types.Int, types.String))
}

func TestClassFieldsPreserveInsertionOrder(t *testing.T) {
	c := types.NewClass("Ordered")
	c.AddField("first", types.Int)
	c.AddField("second", types.String)
	c.Override("first", types.Float)

	fields := c.Fields()
	assert.Len(t, fields, 2)
	assert.Equal(t, "first", fields[0].Name)
	assert.Equal(t, types.Float, fields[0].Typ)
	assert.Equal(t, "second", fields[1].Name)
}

func TestClassConstructorReturnsNilWhenAbsent(t *testing.T) {
	c := types.NewClass("NoCtor")
	assert.Nil(t, c.Constructor())
}
