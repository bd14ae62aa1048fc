package vcodec

import (
	"testing"

	"github.com/lithiumdb/vcodec/pagestore"
	"github.com/lithiumdb/vcodec/value"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	data, err := EncodeValue(value.String("hi"))
	require.NoError(t, err)

	r := pagestore.NewSliceReader(data)
	v, n, err := DecodeValue(r, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, "hi", v.AsString())
}

func TestEncapsulateUnencapsulateRoundTrip(t *testing.T) {
	id, ok := Encapsulate(value.Long(42))
	require.True(t, ok)

	v, ok := Unencapsulate(id)
	require.True(t, ok)
	require.Equal(t, int64(42), v.AsLong())

	require.False(t, IsEncapsulatedNode(id))
}

func TestComparePrefix(t *testing.T) {
	b, err := EncodeValue(value.String("zeta"))
	require.NoError(t, err)

	got, err := ComparePrefix(value.String("alpha"), b)
	require.NoError(t, err)
	require.Less(t, got, 0)
}
