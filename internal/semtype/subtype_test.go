package semtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtypeReflexiveAndTransitive(t *testing.T) {
	types := []Type{
		SInt{}, SString{}, SBoolean{},
		&SList{Elem: SInt{}},
		NewRecord([]string{"a"}, map[string]Type{"a": SInt{}}),
	}
	for _, ty := range types {
		assert.True(t, IsSubtype(ty, ty), "expected %s <: %s", ty, ty)
	}

	a := NewRecord([]string{"a", "b"}, map[string]Type{"a": SInt{}, "b": SString{}})
	b := NewRecord([]string{"a"}, map[string]Type{"a": SInt{}})
	c := NewRecord([]string{}, map[string]Type{})
	require.True(t, IsSubtype(a, b) && IsSubtype(b, c), "setup invariant broken")
	assert.True(t, IsSubtype(a, c), "expected transitivity: %s <: %s", a, c)
}

func TestBottomIsSubtypeOfEverything(t *testing.T) {
	targets := []Type{SInt{}, SString{}, &SList{Elem: SBoolean{}}}
	for _, ty := range targets {
		assert.True(t, IsSubtype(SNothing{}, ty), "expected Nothing <: %s", ty)
		assert.False(t, IsSubtype(ty, SNothing{}), "did not expect %s <: Nothing", ty)
	}
}

func TestRecordWidthAndDepthSubtyping(t *testing.T) {
	wide := NewRecord([]string{"a", "b"}, map[string]Type{"a": SInt{}, "b": SString{}})
	narrow := NewRecord([]string{"a"}, map[string]Type{"a": SInt{}})
	assert.True(t, IsSubtype(wide, narrow), "expected %s <: %s (width)", wide, narrow)

	subField := NewRecord([]string{"a"}, map[string]Type{"a": SNothing{}})
	assert.True(t, IsSubtype(subField, narrow), "expected %s <: %s (depth)", subField, narrow)
	assert.False(t, IsSubtype(narrow, subField), "did not expect %s <: %s", narrow, subField)
}

func TestFunctionContravariantCovariant(t *testing.T) {
	narrowParam := NewRecord([]string{"a"}, map[string]Type{"a": SInt{}})
	wideParam := NewRecord([]string{}, map[string]Type{})

	// (wide) -> narrow  <:  (narrow) -> wide   [contravariant params, covariant return]
	sub := &SFunction{Params: []Type{wideParam}, Returns: narrowParam}
	super := &SFunction{Params: []Type{narrowParam}, Returns: wideParam}
	assert.True(t, IsSubtype(sub, super), "expected %s <: %s", sub, super)
	assert.False(t, IsSubtype(super, sub), "did not expect %s <: %s", super, sub)
}

func TestUnionMembership(t *testing.T) {
	u := NewUnion(SInt{}, SString{})
	assert.True(t, IsSubtype(SInt{}, u), "expected Int <: %s", u)
	assert.False(t, IsSubtype(SBoolean{}, u), "did not expect Boolean <: %s", u)
	sub := NewUnion(SInt{})
	assert.True(t, IsSubtype(sub, u), "expected %s <: %s", sub, u)
}

func TestLubGlb(t *testing.T) {
	a := NewRecord([]string{"a", "b"}, map[string]Type{"a": SInt{}, "b": SString{}})
	b := NewRecord([]string{"a"}, map[string]Type{"a": SInt{}})
	assert.Equal(t, b.String(), Lub(a, b).String())
	assert.Equal(t, a.String(), Glb(a, b).String())

	assert.IsType(t, &SUnion{}, Lub(SInt{}, SString{}), "expected lub of unrelated types to be a union")
	assert.IsType(t, SNothing{}, Glb(SInt{}, SString{}), "expected glb of unrelated types to be Nothing")
}

func TestCommonType(t *testing.T) {
	got := CommonType([]Type{SInt{}, SInt{}, SInt{}})
	assert.Equal(t, "Int", got.String())
	empty := CommonType(nil)
	assert.IsType(t, SNothing{}, empty, "expected Nothing for empty list")
}
