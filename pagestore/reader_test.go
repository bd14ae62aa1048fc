package pagestore

import (
	"testing"

	"github.com/lithiumdb/vcodec/errs"
	"github.com/stretchr/testify/require"
)

func TestSliceReaderReadByte(t *testing.T) {
	r := NewSliceReader([]byte{0x01, 0x02, 0x03})

	b, err := r.ReadByte(1)
	require.NoError(t, err)
	require.Equal(t, byte(0x02), b)

	_, err = r.ReadByte(3)
	require.ErrorIs(t, err, errs.ErrTruncatedRead)

	_, err = r.ReadByte(-1)
	require.ErrorIs(t, err, errs.ErrTruncatedRead)
}

func TestSliceReaderReadBytes(t *testing.T) {
	r := NewSliceReader([]byte{0x01, 0x02, 0x03, 0x04})

	b, err := r.ReadBytes(1, 2)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x03}, b)

	b, err = r.ReadBytes(0, 0)
	require.NoError(t, err)
	require.Nil(t, b)

	_, err = r.ReadBytes(2, 10)
	require.ErrorIs(t, err, errs.ErrTruncatedRead)
}

func TestSliceReaderReadBytesReturnsACopy(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewSliceReader(data)

	b, err := r.ReadBytes(0, 3)
	require.NoError(t, err)

	b[0] = 0xFF
	require.Equal(t, byte(0x01), data[0], "mutating the returned slice must not alias the reader's data")
}

func TestSliceReaderReadShort(t *testing.T) {
	r := NewSliceReader([]byte{0x00, 0x01, 0xFF, 0xFF})

	s, err := r.ReadShort(0)
	require.NoError(t, err)
	require.Equal(t, int16(1), s)

	s, err = r.ReadShort(2)
	require.NoError(t, err)
	require.Equal(t, int16(-1), s)

	_, err = r.ReadShort(3)
	require.ErrorIs(t, err, errs.ErrTruncatedRead)
}

func TestSliceReaderLen(t *testing.T) {
	r := NewSliceReader([]byte{1, 2, 3})
	require.Equal(t, 3, r.Len())
}
