// Package value defines the logical value universe produced by the codec:
// the type codes of section 3 of the format and the Go types each one
// decodes into.
package value

import (
	"fmt"
	"math/big"
)

// Kind identifies the logical type of a decoded Value. Kind values below
// 14 match the wire type codes of the format exactly; Kind values do not
// appear on the wire for the user-defined case, which instead carries its
// class name alongside the payload.
type Kind uint8

const (
	KindLong Kind = iota
	KindDouble
	KindString
	KindURI
	KindSequence
	KindMap
	KindBigInt
	KindBigDecimal
	KindDate
	KindInstant
	KindKeyword
	KindUUID
	KindBlob
	KindTypedLiteral
	// KindUserDefined does not correspond to a reserved type code: it is
	// assigned to whatever class name the default decoder resolves.
	KindUserDefined
	// KindBool has no wire type code of its own: it only arises from the
	// two encapsulated-ID special constants (section 3).
	KindBool
	// KindNodeRef has no wire type code either: an internal node
	// reference only ever exists as an encapsulated id (inline nibble
	// 0xD), never as a tagged byte value on its own.
	KindNodeRef
)

func (k Kind) String() string {
	switch k {
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindURI:
		return "uri"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	case KindBigInt:
		return "bigint"
	case KindBigDecimal:
		return "bigdecimal"
	case KindDate:
		return "date"
	case KindInstant:
		return "instant"
	case KindKeyword:
		return "keyword"
	case KindUUID:
		return "uuid"
	case KindBlob:
		return "blob"
	case KindTypedLiteral:
		return "typed-literal"
	case KindUserDefined:
		return "user-defined"
	case KindBool:
		return "bool"
	case KindNodeRef:
		return "node-ref"
	default:
		return "unknown"
	}
}

// URI is a UTF-8 string holding a URI spelling.
type URI string

// Keyword is a UTF-8 string holding a namespaced-symbol name, without its
// leading sigil.
type Keyword string

// UUID is a 128-bit value. On the wire its low 8 bytes are stored before
// its high 8 bytes, both big-endian (section 4.1).
type UUID [16]byte

// Date is milliseconds since the Unix epoch.
type Date int64

// Instant is a (seconds, nanoseconds) pair since the Unix epoch.
type Instant struct {
	Seconds int64
	Nanos   int32
}

// TypedLiteral pairs a datatype URI with its lexical form. On the wire it
// is a single space-separated string, "<uri> <lexical>", split on the
// first space.
type TypedLiteral struct {
	URI     URI
	Lexical string
}

// UserDefined names an external class and the single string payload used
// to reconstruct it through the registry package.
type UserDefined struct {
	ClassName string
	Payload   string
}

// Pair is one key/value entry of a Map value.
type Pair struct {
	Key   Value
	Value Value
}

// Pairs is an ordered list of key/value pairs. It intentionally does not
// collapse into a Go map: map values must preserve insertion order across
// a decode/encode round trip even when keys repeat (see SPEC_FULL.md OQ-1).
type Pairs []Pair

// Get returns the value of the last pair whose key equals k, matching the
// last-wins lookup semantics the original format collapses duplicate keys
// into, without discarding the encoded pair sequence itself.
func (p Pairs) Get(k Value) (Value, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key.Equal(k) {
			return p[i].Value, true
		}
	}

	return Value{}, false
}

// BigDecimal is an arbitrary-precision decimal: an unscaled arbitrary
// precision integer together with a base-10 scale, following the wire
// format's choice to store decimals as their canonical string rather
// than raw unscaled-bytes-plus-scale (section 4.1: "avoids ambiguity in
// scale").
type BigDecimal struct {
	Unscaled *big.Int
	Scale    int32
}

// NewBigDecimal builds a BigDecimal from an unscaled integer and a scale.
func NewBigDecimal(unscaled *big.Int, scale int32) BigDecimal {
	return BigDecimal{Unscaled: unscaled, Scale: scale}
}

// String renders the canonical lexical form used on the wire: digits of
// Unscaled with a decimal point inserted Scale places from the right
// (negative Scale shifts it past the digits, appending zeros).
func (d BigDecimal) String() string {
	if d.Unscaled == nil {
		return "0"
	}

	neg := d.Unscaled.Sign() < 0
	digits := new(big.Int).Abs(d.Unscaled).String()

	switch {
	case d.Scale <= 0:
		digits += zeros(int(-d.Scale))
	case int(d.Scale) >= len(digits):
		digits = zeros(int(d.Scale)-len(digits)+1) + digits
		fallthrough
	default:
		cut := len(digits) - int(d.Scale)
		digits = digits[:cut] + "." + digits[cut:]
	}

	if neg {
		return "-" + digits
	}

	return digits
}

func zeros(n int) string {
	if n <= 0 {
		return ""
	}

	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}

	return string(b)
}

// ParseBigDecimal parses the canonical lexical form produced by String.
func ParseBigDecimal(s string) (BigDecimal, error) {
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	dot := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			dot = i

			break
		}
	}

	var digits string
	var scale int32
	if dot < 0 {
		digits = s
		scale = 0
	} else {
		digits = s[:dot] + s[dot+1:]
		scale = int32(len(s) - dot - 1)
	}

	if digits == "" {
		return BigDecimal{}, fmt.Errorf("vcodec: invalid decimal literal %q", s)
	}

	unscaled, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return BigDecimal{}, fmt.Errorf("vcodec: invalid decimal literal %q", s)
	}

	if neg {
		unscaled.Neg(unscaled)
	}

	return BigDecimal{Unscaled: unscaled, Scale: scale}, nil
}

// Value is a tagged union over the logical value universe of section 3.
// Kind selects which field of the payload is meaningful; accessors below
// panic if called against the wrong Kind, matching Go's own type-assertion
// panic convention rather than returning an (x, ok) pair for every field.
type Value struct {
	kind    Kind
	payload any
}

// Kind returns the logical type of v.
func (v Value) Kind() Kind { return v.kind }

// Long wraps a signed 64-bit integer value.
func Long(n int64) Value { return Value{kind: KindLong, payload: n} }

// Double wraps an IEEE-754 double value.
func Double(f float64) Value { return Value{kind: KindDouble, payload: f} }

// String wraps a UTF-8 string value.
func String(s string) Value { return Value{kind: KindString, payload: s} }

// URIValue wraps a URI value.
func URIValue(u URI) Value { return Value{kind: KindURI, payload: u} }

// Sequence wraps an ordered list of values.
func Sequence(items []Value) Value { return Value{kind: KindSequence, payload: items} }

// Map wraps an ordered list of key/value pairs.
func Map(pairs Pairs) Value { return Value{kind: KindMap, payload: pairs} }

// BigInt wraps an arbitrary-precision integer value.
func BigInt(n *big.Int) Value { return Value{kind: KindBigInt, payload: n} }

// BigDecimalValue wraps an arbitrary-precision decimal value.
func BigDecimalValue(d BigDecimal) Value { return Value{kind: KindBigDecimal, payload: d} }

// DateValue wraps a date value.
func DateValue(d Date) Value { return Value{kind: KindDate, payload: d} }

// InstantValue wraps an instant value.
func InstantValue(i Instant) Value { return Value{kind: KindInstant, payload: i} }

// KeywordValue wraps a keyword value.
func KeywordValue(k Keyword) Value { return Value{kind: KindKeyword, payload: k} }

// UUIDValue wraps a UUID value.
func UUIDValue(u UUID) Value { return Value{kind: KindUUID, payload: u} }

// Blob wraps an opaque byte sequence value.
func Blob(b []byte) Value { return Value{kind: KindBlob, payload: b} }

// TypedLiteralValue wraps a typed literal value.
func TypedLiteralValue(t TypedLiteral) Value { return Value{kind: KindTypedLiteral, payload: t} }

// UserDefinedValue wraps a reconstructed user-defined value. Payload holds
// the fmt.Sprint rendering of whatever the registered constructor
// returned, not the raw lexical string.
func UserDefinedValue(className string, payload any) Value {
	return Value{kind: KindUserDefined, payload: UserDefined{ClassName: className, Payload: fmt.Sprint(payload)}}
}

// AsLong returns the wrapped int64. It panics if Kind() != KindLong.
func (v Value) AsLong() int64 {
	if v.kind != KindLong {
		panic(fmt.Sprintf("vcodec: AsLong called on %s value", v.kind))
	}

	return v.payload.(int64)
}

// AsDouble returns the wrapped float64. It panics if Kind() != KindDouble.
func (v Value) AsDouble() float64 { return v.payload.(float64) }

// AsString returns the wrapped string. It panics if Kind() != KindString.
func (v Value) AsString() string { return v.payload.(string) }

// AsURI returns the wrapped URI. It panics if Kind() != KindURI.
func (v Value) AsURI() URI { return v.payload.(URI) }

// AsSequence returns the wrapped element list. It panics if Kind() != KindSequence.
func (v Value) AsSequence() []Value { return v.payload.([]Value) }

// AsMap returns the wrapped pair list. It panics if Kind() != KindMap.
func (v Value) AsMap() Pairs { return v.payload.(Pairs) }

// AsBigInt returns the wrapped big integer. It panics if Kind() != KindBigInt.
func (v Value) AsBigInt() *big.Int { return v.payload.(*big.Int) }

// AsBigDecimal returns the wrapped big decimal. It panics if Kind() != KindBigDecimal.
func (v Value) AsBigDecimal() BigDecimal { return v.payload.(BigDecimal) }

// AsDate returns the wrapped date. It panics if Kind() != KindDate.
func (v Value) AsDate() Date { return v.payload.(Date) }

// AsInstant returns the wrapped instant. It panics if Kind() != KindInstant.
func (v Value) AsInstant() Instant { return v.payload.(Instant) }

// AsKeyword returns the wrapped keyword. It panics if Kind() != KindKeyword.
func (v Value) AsKeyword() Keyword { return v.payload.(Keyword) }

// AsUUID returns the wrapped UUID. It panics if Kind() != KindUUID.
func (v Value) AsUUID() UUID { return v.payload.(UUID) }

// AsBlob returns the wrapped byte slice. It panics if Kind() != KindBlob.
func (v Value) AsBlob() []byte { return v.payload.([]byte) }

// AsTypedLiteral returns the wrapped typed literal. It panics if Kind() != KindTypedLiteral.
func (v Value) AsTypedLiteral() TypedLiteral { return v.payload.(TypedLiteral) }

// AsUserDefined returns the wrapped user-defined payload. It panics if Kind() != KindUserDefined.
func (v Value) AsUserDefined() UserDefined { return v.payload.(UserDefined) }

// BoolValue wraps a boolean value, which only ever arises from the two
// encapsulated-ID special constants (section 3).
func BoolValue(b bool) Value { return Value{kind: KindBool, payload: b} }

// AsBool returns the wrapped bool. It panics if Kind() != KindBool.
func (v Value) AsBool() bool { return v.payload.(bool) }

// NodeRefValue wraps an internal node index, decoded from an
// encapsulated id whose top nibble is 0xD.
func NodeRefValue(n int64) Value { return Value{kind: KindNodeRef, payload: n} }

// AsNodeRef returns the wrapped node index. It panics if Kind() != KindNodeRef.
func (v Value) AsNodeRef() int64 {
	if v.kind != KindNodeRef {
		panic(fmt.Sprintf("vcodec: AsNodeRef called on %s value", v.kind))
	}

	return v.payload.(int64)
}

// Equal reports whether v and other have the same Kind and equal payload,
// used by Pairs.Get for last-wins key lookup. Sequence, Map, and Blob
// compare element-wise; BigInt compares via big.Int.Cmp; BigDecimal
// compares Scale and the unscaled value (so 1.0 and 1.00 differ); all
// other kinds compare their Go payload with ==.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindBigInt:
		return v.AsBigInt().Cmp(other.AsBigInt()) == 0
	case KindBigDecimal:
		a, b := v.AsBigDecimal(), other.AsBigDecimal()

		return a.Scale == b.Scale && a.Unscaled.Cmp(b.Unscaled) == 0
	case KindSequence:
		as, bs := v.AsSequence(), other.AsSequence()
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !as[i].Equal(bs[i]) {
				return false
			}
		}

		return true
	case KindMap:
		ap, bp := v.AsMap(), other.AsMap()
		if len(ap) != len(bp) {
			return false
		}
		for i := range ap {
			if !ap[i].Key.Equal(bp[i].Key) || !ap[i].Value.Equal(bp[i].Value) {
				return false
			}
		}

		return true
	case KindBlob:
		ab, bb := v.AsBlob(), other.AsBlob()
		if len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}

		return true
	default:
		return v.payload == other.payload
	}
}
