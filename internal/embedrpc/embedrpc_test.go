package embedrpc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreware/vmcore/internal/value"
)

func TestEncodeValuePrimitives(t *testing.T) {
	s := NewServer(nil, nil)

	enc, err := s.encodeValue(value.Str("hi"))
	require.NoError(t, err)
	require.Equal(t, "hi", enc)

	enc, err = s.encodeValue(value.Bool(true))
	require.NoError(t, err)
	require.Equal(t, true, enc)

	enc, err = s.encodeValue(value.Null())
	require.NoError(t, err)
	require.Nil(t, enc)
}

func TestEncodeValueList(t *testing.T) {
	s := NewServer(nil, nil)
	lst := value.ListV(value.NewList([]value.Value{value.IntV(1), value.IntV(2)}))
	enc, err := s.encodeValue(lst)
	require.NoError(t, err)
	require.Equal(t, []any{1.0, 2.0}, enc)
}

func TestHandleRoundTrip(t *testing.T) {
	s := NewServer(nil, nil)
	inst := value.NewStandardInstance(value.NewClass(value.ClassStandard, "Widget"))
	token := s.handleFor(value.StandardV(inst))
	resolved, ok := s.ResolveHandle(token)
	require.True(t, ok)
	require.Equal(t, value.KindStandard, resolved.Kind())

	_, ok = s.ResolveHandle("not-a-token")
	require.False(t, ok)
}
