// Package header classifies the first stored byte of a value (section
// 4.1 and 4.4 of the format) into a length scheme and a type code. It
// also writes full-form length prefixes (AppendLength, used by the wire
// encoder) and probes them (NodeHeaderLength, used by the prefix
// comparator); the wire decoder reads length prefixes with its own
// reader-based helper.
//
// The branch order below follows spec.md section 4.1's dispatch
// algorithm literally rather than section 3's descriptive header-byte
// table: section 3 glosses the short-keyword length field as "low 5
// bits (0-31)", but its own discriminator note ("the high-3-bits
// discriminator 110 is also reserved to distinguish keywords from the
// 1101-prefixed long form") and section 4.1's operational algorithm
// ("len = b0 & 0x0F; if b0 & 0x30 == 0 ... keyword ... otherwise ...
// long") agree that only the low 4 bits are usable keyword-length bits
// once the 1101xxxx long-marker range is carved out of the 110xxxxx
// family; bit 5 of that mask is always zero inside this family (it is
// part of what makes the top 3 bits equal 110), so the real discriminator
// is bit 4 (0x10). This package implements that reconciled, narrower
// reading.
//
// Grounded on section/numeric_flag.go's bit-field classification idiom:
// named mask constants plus small pure predicate/accessor functions over
// a packed byte.
package header

import "github.com/lithiumdb/vcodec/value"

// Header byte high-bit masks (section 3/4.1).
const (
	shortStringMask   = 0x80 // 0xxxxxxx
	shortURITopMask   = 0x40 // 1xxxxxxx, tested after shortStringMask
	shortURILenMask   = 0x3F
	fullFormMask      = 0xE0 // top three bits 111
	fullFormTag       = 0xE0
	extFlagBit        = 0x10 // full-form bit selecting 1-byte vs 2/4-byte length
	typeCodeMask      = 0x0F
	keywordLenMask    = 0x0F // low nibble once the 1101xxxx long range is excluded
	longMarkerBit     = 0x10 // set => homogeneous-long marker, clear => short keyword
	homogeneousWidMsk = 0x0F
	shortKeywordBase  = 0xC0
	longMarkerBase    = 0xD0
)

// Scheme names the length-encoding scheme a header byte selects.
type Scheme uint8

const (
	// SchemeShortString: 0xxxxxxx, length is the low 7 bits, no separate
	// length field.
	SchemeShortString Scheme = iota
	// SchemeShortURI: 10xxxxxx, length is the low 6 bits.
	SchemeShortURI
	// SchemeShortKeyword: 110xxxxx with bit 0x10 clear, length is the low 4 bits.
	SchemeShortKeyword
	// SchemeHomogeneousLong: 1101xxxx, a homogeneous-sequence marker (or,
	// at top level, a standalone big-endian signed long); width is the
	// low nibble.
	SchemeHomogeneousLong
	// SchemeFullExt: 111Exxxx with the ext bit set, one length byte follows.
	SchemeFullExt
	// SchemeFull2or4: 111Exxxx with the ext bit clear, a 2- or 4-byte
	// length follows (section 3's "Length encoding").
	SchemeFull2or4
)

// Classify reports the length scheme and, where applicable, the type
// code or inline length a header byte selects. It never fails: every
// byte pattern matches exactly one branch (invariant 3).
func Classify(b byte) (scheme Scheme, typeCode byte, ext bool) {
	switch {
	case b&shortStringMask == 0:
		return SchemeShortString, byte(value.KindString), false
	case b&shortURITopMask == 0:
		return SchemeShortURI, byte(value.KindURI), false
	case b&fullFormMask == fullFormTag:
		return schemeForFullForm(b), b & typeCodeMask, b&extFlagBit != 0
	case b&longMarkerBit == 0:
		return SchemeShortKeyword, byte(value.KindKeyword), false
	default:
		return SchemeHomogeneousLong, 0, false
	}
}

func schemeForFullForm(b byte) Scheme {
	if b&extFlagBit != 0 {
		return SchemeFullExt
	}

	return SchemeFull2or4
}

// ShortStringLen extracts the payload length from a short-string header byte.
func ShortStringLen(b byte) int { return int(b) }

// ShortURILen extracts the payload length from a short-URI header byte.
func ShortURILen(b byte) int { return int(b & shortURILenMask) }

// ShortKeywordLen extracts the payload length from a short-keyword header byte.
func ShortKeywordLen(b byte) int { return int(b & keywordLenMask) }

// HomogeneousWidth extracts the per-element byte width from a
// homogeneous-long marker byte (1101xxxx), or the byte width of a
// standalone top-level long header sharing the same bit pattern.
func HomogeneousWidth(b byte) int { return int(b & homogeneousWidMsk) }

// MakeFullFormHeader builds a full-form header byte for typeCode (0-13),
// selecting the ext-length scheme when ext is true.
func MakeFullFormHeader(typeCode byte, ext bool) byte {
	b := byte(fullFormTag) | (typeCode & typeCodeMask)
	if ext {
		b |= extFlagBit
	}

	return b
}

// MakeShortStringHeader builds a short-string header byte for a payload
// of length n (0-127).
func MakeShortStringHeader(n int) byte { return byte(n) }

// MakeShortURIHeader builds a short-URI header byte for a payload of
// length n (0-63).
func MakeShortURIHeader(n int) byte { return shortStringMask | byte(n&shortURILenMask) }

// MakeShortKeywordHeader builds a short-keyword header byte for a
// payload of length n (0-15).
func MakeShortKeywordHeader(n int) byte { return shortKeywordBase | byte(n&keywordLenMask) }

// MakeHomogeneousLongHeader builds a homogeneous-long marker byte for a
// per-element width (1-8 bytes).
func MakeHomogeneousLongHeader(width int) byte { return longMarkerBase | byte(width&homogeneousWidMsk) }

// TypeInfo maps a header byte to the canonical type code used for
// comparator dispatch (section 4.4): strings, URIs, and keywords map to
// their type code regardless of length scheme; everything else maps to
// the low nibble of the full-form header.
func TypeInfo(b byte) byte {
	scheme, typeCode, _ := Classify(b)

	switch scheme {
	case SchemeShortString:
		return byte(value.KindString)
	case SchemeShortURI:
		return byte(value.KindURI)
	case SchemeShortKeyword:
		return byte(value.KindKeyword)
	default:
		return typeCode
	}
}

// MinFullLength is the conservative lower bound NodeHeaderLength reports
// when it cannot see the complete length prefix of a full-form header
// (section 4.1, "Header-byte length probe").
const MinFullLength = 63

// NodeHeaderLength reports the payload length declared by the header at
// the start of buf, or MinFullLength as a conservative lower bound when
// buf does not contain enough of the length prefix to decide exactly.
// full reports whether the returned length is exact (true) or the
// MinFullLength lower bound (false).
func NodeHeaderLength(buf []byte) (length int, full bool) {
	if len(buf) == 0 {
		return 0, true
	}

	b0 := buf[0]
	scheme, _, _ := Classify(b0)

	switch scheme {
	case SchemeShortString:
		return ShortStringLen(b0), true
	case SchemeShortURI:
		return ShortURILen(b0), true
	case SchemeShortKeyword:
		return ShortKeywordLen(b0), true
	case SchemeHomogeneousLong:
		// Not a standalone string-shaped header; callers should not probe this.
		return 0, true
	case SchemeFullExt:
		if len(buf) < 2 {
			return MinFullLength, false
		}

		return int(buf[1]), true
	case SchemeFull2or4:
		n, ok := read2or4Length(buf[1:])
		if !ok {
			return MinFullLength, false
		}

		return n, true
	default:
		return MinFullLength, false
	}
}

// ChooseExt reports whether the 1-byte ext length scheme can represent a
// payload of n bytes (0-255); callers needing the smallest valid encoding
// prefer ext when this returns true (see SPEC_FULL.md OQ-2).
func ChooseExt(n int) bool { return n <= 0xFF }

// AppendLength appends the length prefix for a full-form payload of n
// bytes to buf, using the ext scheme when ext is true and the 2-or-4-byte
// scheme otherwise.
func AppendLength(buf []byte, n int, ext bool) []byte {
	if ext {
		return append(buf, byte(n))
	}

	if n < 0x8000 {
		return append(buf, byte(n>>8), byte(n))
	}

	hi := (n >> 16) | 0x8000
	lo := n & 0xFFFF

	return append(buf, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
}

// read2or4Length decodes the 2-or-4-byte length scheme of section 3 from
// the bytes immediately following the header byte. It reports ok=false
// when buf does not yet contain enough bytes to decide.
func read2or4Length(buf []byte) (n int, ok bool) {
	if len(buf) < 2 {
		return 0, false
	}

	hi := int(buf[0])<<8 | int(buf[1])
	if hi&0x8000 == 0 {
		return hi, true
	}

	if len(buf) < 4 {
		return 0, false
	}

	lo := int(buf[2])<<8 | int(buf[3])

	return (hi&0x7FFF)<<16 | lo, true
}
