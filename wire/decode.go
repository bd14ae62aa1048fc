// Package wire implements the tagged byte decoder and encoder of
// section 4.1: the dispatch algorithm that turns a header byte into a
// length scheme and type code, the fourteen per-type codecs, the
// sequence/map body format, and the user-defined fallback.
//
// Grounded on blob/numeric_decoder.go and blob/text_decoder.go's
// header-parse-then-dispatch pipeline (classify, then branch to a
// per-kind reader that reports its own consumed length) and mebo.go's
// top-level Encode/Decode facade shape.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/lithiumdb/vcodec/errs"
	"github.com/lithiumdb/vcodec/header"
	"github.com/lithiumdb/vcodec/pagestore"
	"github.com/lithiumdb/vcodec/registry"
	"github.com/lithiumdb/vcodec/value"
)

// decodeFunc is the shared per-type decoder signature of section 9:
// given the ext flag and a reader positioned immediately past the
// header byte, return the decoded value and the number of payload
// bytes consumed (not including the header byte itself).
type decodeFunc func(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error)

// decodeTable maps a full-form type code to its decoder. The sequence
// and map decoders reach back into decodeTable (directly and through
// ReadObjectSize), so a package-level map literal would be an
// initialization cycle; the table is therefore filled in init, which
// breaks the cyclic forward reference section 9 calls out.
var decodeTable map[byte]decodeFunc

func init() {
	decodeTable = map[byte]decodeFunc{
		byte(value.KindLong):         decodeLong,
		byte(value.KindDouble):       decodeDouble,
		byte(value.KindString):       decodeString,
		byte(value.KindURI):          decodeURI,
		byte(value.KindSequence):     decodeSequence,
		byte(value.KindMap):          decodeMap,
		byte(value.KindBigInt):       decodeBigInt,
		byte(value.KindBigDecimal):   decodeBigDecimal,
		byte(value.KindDate):         decodeDate,
		byte(value.KindInstant):      decodeInstant,
		byte(value.KindKeyword):      decodeKeyword,
		byte(value.KindUUID):         decodeUUID,
		byte(value.KindBlob):         decodeBlob,
		byte(value.KindTypedLiteral): decodeTypedLiteral,
	}
}

// userDefinedTypeCode is the full-form type code this package writes
// for user-defined values: 14, the lower of the two codes section 6
// reserves for future use and left without a decodeTable entry.
const userDefinedTypeCode = 14

// ReadObjectSize reads the value stored at pos and reports the total
// number of bytes consumed, including the header byte and any length
// prefix (section 4.1's public contract).
func ReadObjectSize(r pagestore.Reader, pos int64) (value.Value, int, error) {
	b0, err := r.ReadByte(pos)
	if err != nil {
		return value.Value{}, 0, err
	}

	scheme, typeCode, ext := header.Classify(b0)

	switch scheme {
	case header.SchemeShortString:
		n := header.ShortStringLen(b0)

		b, err := r.ReadBytes(pos+1, n)
		if err != nil {
			return value.Value{}, 0, err
		}

		return value.String(string(b)), n + 1, nil

	case header.SchemeShortURI:
		n := header.ShortURILen(b0)

		b, err := r.ReadBytes(pos+1, n)
		if err != nil {
			return value.Value{}, 0, err
		}

		return value.URIValue(value.URI(b)), n + 1, nil

	case header.SchemeShortKeyword:
		n := header.ShortKeywordLen(b0)

		b, err := r.ReadBytes(pos+1, n)
		if err != nil {
			return value.Value{}, 0, err
		}

		return value.KeywordValue(value.Keyword(b)), n + 1, nil

	case header.SchemeHomogeneousLong:
		width := header.HomogeneousWidth(b0)

		b, err := r.ReadBytes(pos+1, width)
		if err != nil {
			return value.Value{}, 0, err
		}

		return value.Long(decodeSignedBigEndian(b)), width + 1, nil

	case header.SchemeFullExt, header.SchemeFull2or4:
		dec, ok := decodeTable[typeCode]
		if !ok {
			dec = decodeUserDefined
		}

		v, n, err := dec(ext, r, pos+1)
		if err != nil {
			return value.Value{}, 0, err
		}

		return v, n + 1, nil

	default:
		return value.Value{}, 0, errs.NewDecodeError(errs.KindMalformedHeader, pos,
			fmt.Errorf("%w: 0x%02x", errs.ErrMalformedHeader, b0))
	}
}

// ReadObject reads the value stored at pos, discarding the bytes-consumed
// count ReadObjectSize also reports.
func ReadObject(r pagestore.Reader, pos int64) (value.Value, error) {
	v, _, err := ReadObjectSize(r, pos)

	return v, err
}

// readLengthPrefix decodes the variable-length-type length prefix of
// section 3 starting at pos, returning the number of bytes the prefix
// itself occupied and the payload length it declared.
func readLengthPrefix(r pagestore.Reader, pos int64, ext bool) (lenBytes int, n int, err error) {
	if ext {
		b, err := r.ReadByte(pos)
		if err != nil {
			return 0, 0, err
		}

		return 1, int(b), nil
	}

	hi, err := r.ReadShort(pos)
	if err != nil {
		return 0, 0, err
	}

	hiu := uint16(hi)
	if hiu&0x8000 == 0 {
		return 2, int(hiu), nil
	}

	lo, err := r.ReadShort(pos + 2)
	if err != nil {
		return 0, 0, err
	}

	full := int(hiu&0x7FFF)<<16 | int(uint16(lo))

	return 4, full, nil
}

// readVarLenPayload reads a length-prefixed payload starting at pos and
// reports the total bytes consumed, length prefix included.
func readVarLenPayload(r pagestore.Reader, pos int64, ext bool) (consumed int, payload []byte, err error) {
	lenBytes, n, err := readLengthPrefix(r, pos, ext)
	if err != nil {
		return 0, nil, err
	}

	payload, err = r.ReadBytes(pos+int64(lenBytes), n)
	if err != nil {
		return 0, nil, err
	}

	return lenBytes + n, payload, nil
}

// decodeSignedBigEndian interprets b (1-8 bytes) as a big-endian two's
// complement signed integer.
func decodeSignedBigEndian(b []byte) int64 {
	var u uint64
	for _, bb := range b {
		u = u<<8 | uint64(bb)
	}

	bits := uint(len(b)) * 8
	if bits < 64 && u&(1<<(bits-1)) != 0 {
		u |= ^uint64(0) << bits
	}

	return int64(u)
}

func decodeLong(_ bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	b, err := r.ReadBytes(pos, 8)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.Long(decodeSignedBigEndian(b)), 8, nil
}

func decodeDouble(_ bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	b, err := r.ReadBytes(pos, 8)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.Double(math.Float64frombits(binary.BigEndian.Uint64(b))), 8, nil
}

func decodeString(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.String(string(b)), consumed, nil
}

func decodeURI(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.URIValue(value.URI(b)), consumed, nil
}

func decodeKeyword(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.KeywordValue(value.Keyword(b)), consumed, nil
}

func decodeDate(_ bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	b, err := r.ReadBytes(pos, 8)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.DateValue(value.Date(decodeSignedBigEndian(b))), 8, nil
}

func decodeInstant(_ bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	b, err := r.ReadBytes(pos, 12)
	if err != nil {
		return value.Value{}, 0, err
	}

	seconds := decodeSignedBigEndian(b[:8])
	nanos := int32(binary.BigEndian.Uint32(b[8:12]))

	return value.InstantValue(value.Instant{Seconds: seconds, Nanos: nanos}), 12, nil
}

func decodeUUID(_ bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	b, err := r.ReadBytes(pos, 16)
	if err != nil {
		return value.Value{}, 0, err
	}

	var u value.UUID
	copy(u[0:8], b[8:16])
	copy(u[8:16], b[0:8])

	return value.UUIDValue(u), 16, nil
}

func decodeBlob(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.Blob(b), consumed, nil
}

func decodeBigInt(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.BigInt(bigIntFromTwosComplement(b)), consumed, nil
}

func bigIntFromTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}

	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		n.Sub(n, mod)
	}

	return n
}

func decodeBigDecimal(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	d, err := value.ParseBigDecimal(string(b))
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.BigDecimalValue(d), consumed, nil
}

func decodeTypedLiteral(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	s := string(b)

	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return value.Value{}, 0, fmt.Errorf("%w: %q", errs.ErrInvalidUserDefinedPayload, s)
	}

	return value.TypedLiteralValue(value.TypedLiteral{URI: value.URI(s[:idx]), Lexical: s[idx+1:]}), consumed, nil
}

func decodeUserDefined(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	consumed, b, err := readVarLenPayload(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	s := string(b)

	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return value.Value{}, 0, errs.NewDecodeError(errs.KindUserType, pos,
			fmt.Errorf("%w: %q", errs.ErrInvalidUserDefinedPayload, s))
	}

	className, lexical := s[:idx], s[idx+1:]

	payload, err := registry.Construct(className, lexical)
	if err != nil {
		return value.Value{}, 0, errs.NewDecodeError(errs.KindUserType, pos, err)
	}

	return value.UserDefinedValue(className, payload), consumed, nil
}

// decodeSequenceBody parses the sequence body format of section 4.1
// starting at pos (immediately past the outer length prefix), where
// bodyLen is the declared byte length of the body. It is shared by the
// Sequence (type 4) and Map (type 5) decoders, which differ only in how
// they group the resulting element list.
func decodeSequenceBody(r pagestore.Reader, pos int64, bodyLen int) ([]value.Value, error) {
	if bodyLen == 0 {
		return nil, nil
	}

	seq0, err := r.ReadByte(pos)
	if err != nil {
		return nil, err
	}

	bodyStart := pos + 1
	bodyEnd := pos + int64(bodyLen)

	switch {
	case seq0 == 0:
		var items []value.Value

		cur := bodyStart
		for cur < bodyEnd {
			v, n, err := ReadObjectSize(r, cur)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
			cur += int64(n)
		}

		return items, nil

	case seq0&0xF0 == 0xD0:
		width := int(seq0 & 0x0F)
		if width < 1 || width > 8 {
			return nil, errs.NewDecodeError(errs.KindMalformedHeader, pos,
				fmt.Errorf("%w: homogeneous-long element width %d", errs.ErrMalformedHeader, width))
		}

		var items []value.Value

		cur := bodyStart
		for cur < bodyEnd {
			b, err := r.ReadBytes(cur, width)
			if err != nil {
				return nil, err
			}

			items = append(items, value.Long(decodeSignedBigEndian(b)))
			cur += int64(width)
		}

		return items, nil

	default:
		typeCode := seq0 & 0x0F

		dec, ok := decodeTable[typeCode]
		if !ok {
			return nil, errs.NewDecodeError(errs.KindUnknownType, bodyStart,
				fmt.Errorf("%w: type code %d", errs.ErrUnknownSequenceType, typeCode))
		}

		var items []value.Value

		cur := bodyStart
		for cur < bodyEnd {
			v, n, err := dec(true, r, cur)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
			cur += int64(n)
		}

		return items, nil
	}
}

func decodeSequence(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	lenBytes, bodyLen, err := readLengthPrefix(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	items, err := decodeSequenceBody(r, pos+int64(lenBytes), bodyLen)
	if err != nil {
		return value.Value{}, 0, err
	}

	return value.Sequence(items), lenBytes + bodyLen, nil
}

func decodeMap(ext bool, r pagestore.Reader, pos int64) (value.Value, int, error) {
	lenBytes, bodyLen, err := readLengthPrefix(r, pos, ext)
	if err != nil {
		return value.Value{}, 0, err
	}

	items, err := decodeSequenceBody(r, pos+int64(lenBytes), bodyLen)
	if err != nil {
		return value.Value{}, 0, err
	}

	pairs := make(value.Pairs, 0, len(items)/2)
	for i := 0; i+1 < len(items); i += 2 {
		pairs = append(pairs, value.Pair{Key: items[i], Value: items[i+1]})
	}

	return value.Map(pairs), lenBytes + bodyLen, nil
}
