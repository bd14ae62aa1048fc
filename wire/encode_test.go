package wire

import (
	"math/big"
	"strings"
	"testing"

	"github.com/lithiumdb/vcodec/pagestore"
	"github.com/lithiumdb/vcodec/registry"
	"github.com/lithiumdb/vcodec/value"
	"github.com/stretchr/testify/require"
)

// TestEncodeHiLiteral is section 8 scenario 1: encoding "hi" gives
// header 0x02 followed by the raw bytes "hi"; decoding it back reports
// 3 bytes consumed.
func TestEncodeHiLiteral(t *testing.T) {
	b, err := Encode(value.String("hi"))
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 'h', 'i'}, b)

	r := pagestore.NewSliceReader(b)
	v, n, err := ReadObjectSize(r, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "hi", v.AsString())
}

// TestEncodeSequenceOfLongsLiteral is section 8 scenario 6: [1, 2, 3]
// encodes as a full-form sequence header, a 1-byte ext length, the
// homogeneous-long marker 0xD1 (width 1), then the raw bytes 01 02 03.
func TestEncodeSequenceOfLongsLiteral(t *testing.T) {
	b, err := Encode(value.Sequence([]value.Value{value.Long(1), value.Long(2), value.Long(3)}))
	require.NoError(t, err)

	// header(type=4,ext) | length=4 (1 marker byte + 3 payload bytes) | 0xD1 | 01 02 03
	require.Equal(t, []byte{0xE4 | 0x10, 0x04, 0xD1, 0x01, 0x02, 0x03}, b)

	r := pagestore.NewSliceReader(b)
	v, n, err := ReadObjectSize(r, 0)
	require.NoError(t, err)
	require.Equal(t, len(b), n)

	got := v.AsSequence()
	require.Len(t, got, 3)
	require.Equal(t, int64(1), got[0].AsLong())
	require.Equal(t, int64(2), got[1].AsLong())
	require.Equal(t, int64(3), got[2].AsLong())
}

func TestEncodeShortStringBoundaries(t *testing.T) {
	for _, n := range []int{0, 127} {
		s := strings.Repeat("a", n)

		b, err := Encode(value.String(s))
		require.NoError(t, err)
		require.Equal(t, byte(n), b[0])
		require.Len(t, b, n+1)

		roundTrip(t, value.String(s))
	}
}

func TestEncodeFullFormLengthBoundaries(t *testing.T) {
	for _, n := range []int{128, 256, 32768} {
		s := strings.Repeat("a", n)
		roundTrip(t, value.String(s))
	}
}

func TestEncodeLongPicksMinimalWidth(t *testing.T) {
	tests := []struct {
		n     int64
		width int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{1<<59 - 1, 8},
		{-(1 << 59), 8},
	}

	for _, tt := range tests {
		b, err := Encode(value.Long(tt.n))
		require.NoError(t, err)
		require.Equal(t, tt.width, int(b[0]&0x0F))
		require.Len(t, b, tt.width+1)

		roundTrip(t, value.Long(tt.n))
	}
}

func TestRoundTripEveryKind(t *testing.T) {
	registry.Reset()
	t.Cleanup(registry.Reset)

	registry.Register("test/echo", func(lexical string) (any, error) { return lexical, nil })

	roundTrip(t, value.Long(-42))
	roundTrip(t, value.Double(3.5))
	roundTrip(t, value.String("hello, world"))
	roundTrip(t, value.URIValue("urn:example:thing"))
	roundTrip(t, value.KeywordValue("my-keyword"))
	roundTrip(t, value.BigInt(big.NewInt(-123456789012345)))
	roundTrip(t, value.BigDecimalValue(value.NewBigDecimal(big.NewInt(12345), 2)))
	roundTrip(t, value.DateValue(value.Date(1_700_000_000_000)))
	roundTrip(t, value.InstantValue(value.Instant{Seconds: 1700, Nanos: 123}))
	roundTrip(t, value.UUIDValue(value.UUID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10}))
	roundTrip(t, value.Blob([]byte{0xDE, 0xAD, 0xBE, 0xEF}))
	roundTrip(t, value.TypedLiteralValue(value.TypedLiteral{URI: "xsd:int", Lexical: "42"}))
	roundTrip(t, value.UserDefinedValue("test/echo", "payload"))
	roundTrip(t, value.Sequence(nil))
	roundTrip(t, value.Sequence([]value.Value{value.Long(1)}))
	roundTrip(t, value.Sequence([]value.Value{value.String("a"), value.Long(1), value.Double(2.5)}))
	roundTrip(t, value.Map(value.Pairs{{Key: value.String("k"), Value: value.Long(1)}}))
}

func TestBigIntTwosComplementBoundaries(t *testing.T) {
	tests := []int64{0, 1, -1, 127, 128, -128, -129, 32767, -32768}
	for _, n := range tests {
		roundTrip(t, value.BigInt(big.NewInt(n)))
	}

	big1, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	roundTrip(t, value.BigInt(big1))
	roundTrip(t, value.BigInt(new(big.Int).Neg(big1)))
}

func TestMapWithDuplicateKeysPreservesPairOrder(t *testing.T) {
	m := value.Map(value.Pairs{
		{Key: value.String("k"), Value: value.Long(1)},
		{Key: value.String("k"), Value: value.Long(2)},
	})

	b, err := Encode(m)
	require.NoError(t, err)

	r := pagestore.NewSliceReader(b)
	v, _, err := ReadObjectSize(r, 0)
	require.NoError(t, err)

	pairs := v.AsMap()
	require.Len(t, pairs, 2)
	require.Equal(t, int64(1), pairs[0].Value.AsLong())
	require.Equal(t, int64(2), pairs[1].Value.AsLong())

	got, ok := pairs.Get(value.String("k"))
	require.True(t, ok)
	require.Equal(t, int64(2), got.AsLong(), "Get is last-wins even though both pairs survive the round trip")
}

func TestEncodeSequenceHomogeneousTagged(t *testing.T) {
	// Three strings: not all Long, but all the same kind, so the
	// homogeneous-tagged form should be chosen over heterogeneous.
	seq := value.Sequence([]value.Value{value.String("aa"), value.String("bb"), value.String("cc")})

	b, err := Encode(seq)
	require.NoError(t, err)

	bodyStart := 2 // full-form header + 1-byte ext length
	require.Equal(t, byte(0xE0|byte(value.KindString)), b[bodyStart])

	roundTrip(t, seq)
}

func TestEncodeUserDefinedUsesReservedTypeCode(t *testing.T) {
	b, err := Encode(value.UserDefinedValue("ns/thing", "lexical"))
	require.NoError(t, err)
	require.Equal(t, byte(userDefinedTypeCode), b[0]&0x0F)
}

func TestEncodeBoolAndNodeRefAreRejected(t *testing.T) {
	_, err := Encode(value.BoolValue(true))
	require.Error(t, err)

	_, err = Encode(value.NodeRefValue(1))
	require.Error(t, err)
}

func roundTrip(t *testing.T, v value.Value) {
	t.Helper()

	b, err := Encode(v)
	require.NoError(t, err)

	r := pagestore.NewSliceReader(b)
	got, n, err := ReadObjectSize(r, 0)
	require.NoError(t, err)
	require.Equal(t, len(b), n)
	require.True(t, v.Equal(got), "decode(encode(v)) must reproduce v: want %#v, got %#v", v, got)
}
