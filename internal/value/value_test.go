package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthyPrimitives(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Null(), false},
		{Bool(false), false},
		{Bool(true), true},
		{Char(0), false},
		{Char('a'), true},
		{IntV(0), false},
		{IntV(5), true},
		{Str(""), false},
		{Str("x"), true},
	}
	for _, c := range cases {
		got, err := c.v.Truthy()
		require.NoError(t, err)
		require.Equal(t, c.want, got, "kind %s", c.v.Kind())
	}
}

func TestTruthyContainers(t *testing.T) {
	empty, err := ListV(NewList(nil)).Truthy()
	require.NoError(t, err)
	require.False(t, empty)

	full, err := ListV(NewList([]Value{IntV(1)})).Truthy()
	require.NoError(t, err)
	require.True(t, full)
}

func TestOptionSomeNoneTruthy(t *testing.T) {
	some := IntV(1)
	opt := MakeOption(1, &some)
	got, err := opt.Truthy()
	require.NoError(t, err)
	require.True(t, got)

	none := NoneAt(1)
	got, err = none.Truthy()
	require.NoError(t, err)
	require.False(t, got)
}

func TestOptSomeRoundTrip(t *testing.T) {
	inner := Str("hi")
	opt := MakeOption(2, &inner)
	require.True(t, opt.IsOption())
	require.Equal(t, 2, opt.OptDepth())
	v, ok := opt.OptSome()
	require.True(t, ok)
	require.Equal(t, "hi", v.AsString().Raw())

	none := NoneAt(1)
	_, ok = none.OptSome()
	require.False(t, ok)
}

func TestMakeOptionPanicsOnZeroDepth(t *testing.T) {
	require.Panics(t, func() { MakeOption(0, nil) })
}
