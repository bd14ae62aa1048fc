package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/lithiumdb/vcodec/header"
	"github.com/lithiumdb/vcodec/internal/bufpool"
	"github.com/lithiumdb/vcodec/value"
)

// Encode renders v in the canonical wire form invariant 1 requires:
// decode(encode(v)) reproduces v byte-for-byte. Among the header forms
// section 3 allows for a given value, Encode always picks the shortest
// (SPEC_FULL.md open question OQ-2): short-string/URI/keyword forms
// before the full form, and the homogeneous-long marker before the
// fixed 8-byte full-form long encoding.
func Encode(v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindLong:
		return encodeLong(v.AsLong()), nil
	case value.KindDouble:
		return encodeFixed(byte(value.KindDouble), encodeDoubleBits(v.AsDouble())), nil
	case value.KindString:
		return encodeStringLike(v.AsString(), 127, header.MakeShortStringHeader, byte(value.KindString)), nil
	case value.KindURI:
		return encodeStringLike(string(v.AsURI()), 63, header.MakeShortURIHeader, byte(value.KindURI)), nil
	case value.KindKeyword:
		return encodeStringLike(string(v.AsKeyword()), 15, header.MakeShortKeywordHeader, byte(value.KindKeyword)), nil
	case value.KindDate:
		return encodeFixed(byte(value.KindDate), encodeSignedBigEndian(int64(v.AsDate()), 8)), nil
	case value.KindInstant:
		return encodeFixed(byte(value.KindInstant), encodeInstantBits(v.AsInstant())), nil
	case value.KindUUID:
		return encodeFixed(byte(value.KindUUID), encodeUUIDBits(v.AsUUID())), nil
	case value.KindBigInt:
		return encodeVarLenFull(byte(value.KindBigInt), bigIntToTwosComplement(v.AsBigInt())), nil
	case value.KindBigDecimal:
		return encodeVarLenFull(byte(value.KindBigDecimal), []byte(v.AsBigDecimal().String())), nil
	case value.KindBlob:
		return encodeVarLenFull(byte(value.KindBlob), v.AsBlob()), nil
	case value.KindTypedLiteral:
		t := v.AsTypedLiteral()

		return encodeVarLenFull(byte(value.KindTypedLiteral), []byte(string(t.URI)+" "+t.Lexical)), nil
	case value.KindUserDefined:
		u := v.AsUserDefined()

		return encodeVarLenFull(userDefinedTypeCode, []byte(u.ClassName+" "+u.Payload)), nil
	case value.KindSequence:
		body, err := encodeSequenceBody(v.AsSequence())
		if err != nil {
			return nil, err
		}

		return encodeVarLenFull(byte(value.KindSequence), body), nil
	case value.KindMap:
		pairs := v.AsMap()

		items := make([]value.Value, 0, len(pairs)*2)
		for _, p := range pairs {
			items = append(items, p.Key, p.Value)
		}

		body, err := encodeSequenceBody(items)
		if err != nil {
			return nil, err
		}

		return encodeVarLenFull(byte(value.KindMap), body), nil
	default:
		return nil, fmt.Errorf("vcodec: %s has no tagged-byte encoding", v.Kind())
	}
}

// EncodeBody renders v the way a full-form per-type decoder would
// consume it: the raw payload bytes a decodeFunc reads after the header
// byte, with ext selecting the variable-length-type length scheme (it
// is ignored for fixed-width kinds, mirroring the decoders). It backs
// the homogeneous-tagged sequence encoding (always ext=true, matching
// decodeSequenceBody's dec(true, r, cur) call) and lets the prefixcmp
// package build a left-hand comparison body matching whatever scheme a
// stored right-hand value used.
func EncodeBody(v value.Value, ext bool) ([]byte, error) {
	switch v.Kind() {
	case value.KindLong:
		return encodeSignedBigEndian(v.AsLong(), 8), nil
	case value.KindDouble:
		return encodeDoubleBits(v.AsDouble()), nil
	case value.KindString:
		return framedBody(ext, []byte(v.AsString())), nil
	case value.KindURI:
		return framedBody(ext, []byte(v.AsURI())), nil
	case value.KindKeyword:
		return framedBody(ext, []byte(v.AsKeyword())), nil
	case value.KindDate:
		return encodeSignedBigEndian(int64(v.AsDate()), 8), nil
	case value.KindInstant:
		return encodeInstantBits(v.AsInstant()), nil
	case value.KindUUID:
		return encodeUUIDBits(v.AsUUID()), nil
	case value.KindBigInt:
		return framedBody(ext, bigIntToTwosComplement(v.AsBigInt())), nil
	case value.KindBigDecimal:
		return framedBody(ext, []byte(v.AsBigDecimal().String())), nil
	case value.KindBlob:
		return framedBody(ext, v.AsBlob()), nil
	case value.KindTypedLiteral:
		t := v.AsTypedLiteral()

		return framedBody(ext, []byte(string(t.URI)+" "+t.Lexical)), nil
	case value.KindUserDefined:
		u := v.AsUserDefined()

		return framedBody(ext, []byte(u.ClassName+" "+u.Payload)), nil
	case value.KindSequence:
		body, err := encodeSequenceBody(v.AsSequence())
		if err != nil {
			return nil, err
		}

		return framedBody(ext, body), nil
	case value.KindMap:
		pairs := v.AsMap()

		items := make([]value.Value, 0, len(pairs)*2)
		for _, p := range pairs {
			items = append(items, p.Key, p.Value)
		}

		body, err := encodeSequenceBody(items)
		if err != nil {
			return nil, err
		}

		return framedBody(ext, body), nil
	default:
		return nil, fmt.Errorf("vcodec: %s has no tagged-byte encoding", v.Kind())
	}
}

func encodeStringLike(s string, shortMax int, shortHeader func(int) byte, typeCode byte) []byte {
	b := []byte(s)
	if len(b) <= shortMax {
		out := make([]byte, 0, 1+len(b))
		out = append(out, shortHeader(len(b)))

		return append(out, b...)
	}

	return encodeVarLenFull(typeCode, b)
}

func encodeFixed(typeCode byte, payload []byte) []byte {
	out := make([]byte, 0, 1+len(payload))
	out = append(out, header.MakeFullFormHeader(typeCode, true))

	return append(out, payload...)
}

// encodeVarLenFull wraps payload in a full-form header for typeCode,
// choosing the 1-byte ext length scheme when payload is short enough
// and the 2-or-4-byte scheme otherwise (OQ-2).
func encodeVarLenFull(typeCode byte, payload []byte) []byte {
	ext := header.ChooseExt(len(payload))

	scratch := bufpool.Get()
	defer bufpool.Put(scratch)

	scratch.B = append(scratch.B, header.MakeFullFormHeader(typeCode, ext))
	scratch.B = header.AppendLength(scratch.B, len(payload), ext)

	out := make([]byte, 0, len(scratch.B)+len(payload))
	out = append(out, scratch.B...)

	return append(out, payload...)
}

// framedBody writes the length prefix and payload a variable-length
// per-type decoder consumes, without the leading header byte.
func framedBody(ext bool, payload []byte) []byte {
	buf := header.AppendLength(make([]byte, 0, 4+len(payload)), len(payload), ext)

	return append(buf, payload...)
}

func encodeDoubleBits(f float64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(f))

	return b[:]
}

func encodeInstantBits(i value.Instant) []byte {
	out := make([]byte, 0, 12)
	out = append(out, encodeSignedBigEndian(i.Seconds, 8)...)

	var nb [4]byte
	binary.BigEndian.PutUint32(nb[:], uint32(i.Nanos))

	return append(out, nb[:]...)
}

func encodeUUIDBits(u value.UUID) []byte {
	out := make([]byte, 0, 16)
	out = append(out, u[8:16]...)
	out = append(out, u[0:8]...)

	return out
}

// minimalSignedWidth reports the smallest byte count (1-8) whose
// two's-complement range holds n.
func minimalSignedWidth(n int64) int {
	switch {
	case n >= -(1<<7) && n < 1<<7:
		return 1
	case n >= -(1<<15) && n < 1<<15:
		return 2
	case n >= -(1<<23) && n < 1<<23:
		return 3
	case n >= -(1<<31) && n < 1<<31:
		return 4
	case n >= -(1<<39) && n < 1<<39:
		return 5
	case n >= -(1<<47) && n < 1<<47:
		return 6
	case n >= -(1<<55) && n < 1<<55:
		return 7
	default:
		return 8
	}
}

func encodeSignedBigEndian(n int64, width int) []byte {
	u := uint64(n)
	out := make([]byte, width)

	for i := 0; i < width; i++ {
		out[width-1-i] = byte(u >> (8 * i))
	}

	return out
}

func encodeLong(n int64) []byte {
	width := minimalSignedWidth(n)
	out := make([]byte, 0, 1+width)
	out = append(out, header.MakeHomogeneousLongHeader(width))

	return append(out, encodeSignedBigEndian(n, width)...)
}

// FixedWidthLong renders n as a big-endian two's complement integer of
// exactly width bytes. Exposed for prefixcmp's raw byte-wise comparator,
// which must reproduce a stored homogeneous-long value's exact width to
// compare against it byte-for-byte.
func FixedWidthLong(n int64, width int) []byte {
	return encodeSignedBigEndian(n, width)
}

// bigIntToTwosComplement renders n as the shortest big-endian two's
// complement byte string that round-trips through
// bigIntFromTwosComplement.
func bigIntToTwosComplement(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}

	one := big.NewInt(1)

	nBytes := 1
	for {
		bound := new(big.Int).Lsh(one, uint(8*nBytes-1))
		maxPos := new(big.Int).Sub(bound, one)
		minNeg := new(big.Int).Neg(bound)

		if n.Cmp(minNeg) >= 0 && n.Cmp(maxPos) <= 0 {
			break
		}

		nBytes++
	}

	mod := new(big.Int).Lsh(one, uint(8*nBytes))
	u := new(big.Int).Mod(n, mod)

	b := u.Bytes()
	if len(b) < nBytes {
		padded := make([]byte, nBytes)
		copy(padded[nBytes-len(b):], b)
		b = padded
	}

	return b
}

// encodeSequenceBody renders items as a sequence body (section 4.1):
// homogeneous-long when every element is a Long, homogeneous-tagged
// when every element shares one of the fourteen reserved kinds,
// heterogeneous otherwise. Each case is tried in order of the space it
// costs, matching OQ-2.
func encodeSequenceBody(items []value.Value) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if allLong(items) {
		width := 1

		for _, it := range items {
			if w := minimalSignedWidth(it.AsLong()); w > width {
				width = w
			}
		}

		body := make([]byte, 0, 1+len(items)*width)
		body = append(body, header.MakeHomogeneousLongHeader(width))

		for _, it := range items {
			body = append(body, encodeSignedBigEndian(it.AsLong(), width)...)
		}

		return body, nil
	}

	if typeCode, ok := commonTaggedKind(items); ok {
		body := make([]byte, 1, 32)
		body[0] = 0xE0 | typeCode

		// Homogeneous-tagged elements are always decoded with the 1-byte
		// ext length, so an element whose payload exceeds 255 bytes forces
		// the heterogeneous form instead. Fixed-width bodies are at most
		// 16 bytes and never trip this check.
		tagged := true

		for _, it := range items {
			b, err := EncodeBody(it, true)
			if err != nil {
				return nil, err
			}

			if len(b)-1 > 0xFF {
				tagged = false

				break
			}

			body = append(body, b...)
		}

		if tagged {
			return body, nil
		}
	}

	body := []byte{0}

	for _, it := range items {
		enc, err := Encode(it)
		if err != nil {
			return nil, err
		}

		body = append(body, enc...)
	}

	return body, nil
}

func allLong(items []value.Value) bool {
	for _, it := range items {
		if it.Kind() != value.KindLong {
			return false
		}
	}

	return true
}

// commonTaggedKind reports the shared type code of items if every
// element has the same kind and that kind has a full-form decoder
// (type codes 0-13); user-defined, bool, and node-ref values have no
// homogeneous-tagged representation.
func commonTaggedKind(items []value.Value) (byte, bool) {
	k := items[0].Kind()
	if k > value.KindTypedLiteral {
		return 0, false
	}

	for _, it := range items[1:] {
		if it.Kind() != k {
			return 0, false
		}
	}

	return byte(k), true
}
