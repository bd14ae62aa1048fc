package wire

import (
	"testing"

	"github.com/lithiumdb/vcodec/errs"
	"github.com/lithiumdb/vcodec/header"
	"github.com/lithiumdb/vcodec/pagestore"
	"github.com/lithiumdb/vcodec/registry"
	"github.com/lithiumdb/vcodec/value"
	"github.com/stretchr/testify/require"
)

func TestReadObjectDiscardsConsumedCount(t *testing.T) {
	r := pagestore.NewSliceReader([]byte{0x02, 'h', 'i'})

	v, err := ReadObject(r, 0)
	require.NoError(t, err)
	require.Equal(t, "hi", v.AsString())
}

func TestDecodeEmptySequence(t *testing.T) {
	// header(type=4,ext) | length=0
	r := pagestore.NewSliceReader([]byte{header.MakeFullFormHeader(byte(value.KindSequence), true), 0x00})

	v, n, err := ReadObjectSize(r, 0)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Empty(t, v.AsSequence())
}

func TestDecodeUnknownSequenceTypeCode(t *testing.T) {
	// Body: seq0 = 0xE0|15 (type code 15 has no decoder), one dummy payload byte.
	body := []byte{0xE0 | 0x0F, 0x00}
	buf := []byte{header.MakeFullFormHeader(byte(value.KindSequence), true), byte(len(body))}
	buf = append(buf, body...)

	r := pagestore.NewSliceReader(buf)

	_, _, err := ReadObjectSize(r, 0)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrUnknownSequenceType)

	var decErr *errs.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, errs.KindUnknownType, decErr.Kind)
}

func TestDecodeUserDefinedMissingSpace(t *testing.T) {
	payload := []byte("no-space-here")
	buf := []byte{header.MakeFullFormHeader(14, true), byte(len(payload))}
	buf = append(buf, payload...)

	r := pagestore.NewSliceReader(buf)

	_, _, err := ReadObjectSize(r, 0)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidUserDefinedPayload)
}

func TestDecodeUserDefinedUnregisteredClass(t *testing.T) {
	registry.Reset()
	t.Cleanup(registry.Reset)

	payload := []byte("ns/unregistered rest-of-payload")
	buf := []byte{header.MakeFullFormHeader(14, true), byte(len(payload))}
	buf = append(buf, payload...)

	r := pagestore.NewSliceReader(buf)

	_, _, err := ReadObjectSize(r, 0)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrUserTypeNotRegistered)

	var decErr *errs.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, errs.KindUserType, decErr.Kind)
}

func TestDecodeStandaloneHomogeneousLongHeader(t *testing.T) {
	// Top-level dispatch branch 5: a 1101xxxx byte outside any sequence
	// is itself a standalone big-endian signed long.
	buf := []byte{header.MakeHomogeneousLongHeader(2), 0x01, 0x00}

	r := pagestore.NewSliceReader(buf)

	v, n, err := ReadObjectSize(r, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, int64(256), v.AsLong())
}

func TestDecodeShortKeywordTopLevel(t *testing.T) {
	buf := []byte{header.MakeShortKeywordHeader(2), 'k', 'w'}

	r := pagestore.NewSliceReader(buf)

	v, n, err := ReadObjectSize(r, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, value.Keyword("kw"), v.AsKeyword())
}

func TestDecodeSequenceRejectsZeroWidthHomogeneousLong(t *testing.T) {
	// Body: seq0 = 0xD0 (homogeneous-long marker, width nibble 0), followed
	// by bytes that would otherwise be read forever at zero advance per
	// element if width weren't validated.
	body := []byte{0xD0, 0x00, 0x00, 0x00}
	buf := []byte{header.MakeFullFormHeader(byte(value.KindSequence), true), byte(len(body))}
	buf = append(buf, body...)

	r := pagestore.NewSliceReader(buf)

	_, _, err := ReadObjectSize(r, 0)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrMalformedHeader)

	var decErr *errs.DecodeError
	require.ErrorAs(t, err, &decErr)
	require.Equal(t, errs.KindMalformedHeader, decErr.Kind)
}

func TestDecodeSequenceAcceptsValidHomogeneousLongWidth(t *testing.T) {
	// seq0 = 0xD0|2 (width 2), two elements of 256 and 1.
	body := []byte{0xD0 | 0x02, 0x01, 0x00, 0x00, 0x01}
	buf := []byte{header.MakeFullFormHeader(byte(value.KindSequence), true), byte(len(body))}
	buf = append(buf, body...)

	r := pagestore.NewSliceReader(buf)

	v, _, err := ReadObjectSize(r, 0)
	require.NoError(t, err)

	items := v.AsSequence()
	require.Len(t, items, 2)
	require.Equal(t, int64(256), items[0].AsLong())
	require.Equal(t, int64(1), items[1].AsLong())
}

func TestReadLengthPrefixExtAndWide(t *testing.T) {
	r := pagestore.NewSliceReader([]byte{0x05})
	lenBytes, n, err := readLengthPrefix(r, 0, true)
	require.NoError(t, err)
	require.Equal(t, 1, lenBytes)
	require.Equal(t, 5, n)

	buf := header.AppendLength(nil, 300, false)
	r = pagestore.NewSliceReader(buf)
	lenBytes, n, err = readLengthPrefix(r, 0, false)
	require.NoError(t, err)
	require.Equal(t, 2, lenBytes)
	require.Equal(t, 300, n)

	buf = header.AppendLength(nil, 40000, false)
	r = pagestore.NewSliceReader(buf)
	lenBytes, n, err = readLengthPrefix(r, 0, false)
	require.NoError(t, err)
	require.Equal(t, 4, lenBytes)
	require.Equal(t, 40000, n)
}
