// Package prefixcmp implements the comparator of section 4.3: ordering
// an in-memory value against a byte buffer that may hold only a prefix
// of the stored, possibly-longer value an index node truncated for
// space.
//
// Grounded on section/text_flag.go's byte-prefix inspection style
// (reading just enough of a leading header to make a decision without
// materializing the whole record) and the format's own UTF-8-aware
// truncation rule.
package prefixcmp

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lithiumdb/vcodec/header"
	"github.com/lithiumdb/vcodec/value"
	"github.com/lithiumdb/vcodec/wire"
)

// Compare orders left against rightBytes, the full byte view of a
// right-hand index slot (header byte included), which may hold only a
// prefix of the value it was truncated from. It returns a sign in
// {-1, 0, +1}.
//
// String-shaped kinds (string, URI, keyword) are compared by their
// canonical string form against rightBytes' UTF-8-boundary-safe prefix
// (section 4.3's main case, since these are the values index nodes
// truncate). Every other kind is compared as raw bytes: left's body is
// rendered to match whatever encoding scheme rightBytes actually used
// and memcmp'd against rightBytes past its header byte, per section
// 4.3's "Other kinds" rule — these are never stored truncated, so no
// prefix handling applies to them.
func Compare(left value.Value, rightBytes []byte) (int, error) {
	if len(rightBytes) == 0 {
		return 0, fmt.Errorf("vcodec: empty right-hand bytes")
	}

	switch left.Kind() {
	case value.KindString, value.KindURI, value.KindKeyword:
		return compareStringShaped(left, rightBytes)
	default:
		return compareRaw(left, rightBytes)
	}
}

func canonicalString(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.KindString:
		return v.AsString(), true
	case value.KindURI:
		return string(v.AsURI()), true
	case value.KindKeyword:
		return string(v.AsKeyword()), true
	default:
		return "", false
	}
}

func compareStringShaped(left value.Value, rightBytes []byte) (int, error) {
	leftS, ok := canonicalString(left)
	if !ok {
		return 0, fmt.Errorf("vcodec: %s is not string-shaped", left.Kind())
	}

	fullLength, _ := header.NodeHeaderLength(rightBytes)

	avail := len(rightBytes) - 1

	rlen := fullLength
	if rlen > avail {
		rlen = avail
	}

	trunc := partialUTF8TailBytes(rightBytes, 1, rlen)
	rightS := string(rightBytes[1 : 1+rlen-trunc])

	if fullLength <= avail {
		return strings.Compare(leftS, rightS), nil
	}

	rightRunes := utf8.RuneCountInString(rightS)
	leftPrefix := firstNRunes(leftS, rightRunes)

	return strings.Compare(leftPrefix, rightS), nil
}

// firstNRunes returns the leading substring of s containing at most n
// runes.
func firstNRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}

		count++
	}

	return s
}

// partialUTF8TailBytes scans backward from byte offset start+rlen (at
// most 4 bytes, the guard of section 9) and reports how many trailing
// bytes of buf[start:start+rlen] form an incomplete UTF-8 code unit and
// must be dropped before decoding. It returns 0 when the window ends on
// a complete code unit.
func partialUTF8TailBytes(buf []byte, start, rlen int) int {
	limit := rlen
	if limit > 4 {
		limit = 4
	}

	for back := 1; back <= limit; back++ {
		b := buf[start+rlen-back]

		switch {
		case b&0x80 == 0: // single-byte char
			if back == 1 {
				return 0
			}

			return back - 1

		case b&0xC0 == 0x80: // continuation byte, keep scanning
			continue

		case b&0xE0 == 0xC0: // 2-byte lead
			if back < 2 {
				return back
			}

			return 0

		case b&0xF0 == 0xE0: // 3-byte lead
			if back < 3 {
				return back
			}

			return 0

		case b&0xF8 == 0xF0: // 4-byte lead
			if back < 4 {
				return back
			}

			return 0

		default: // not a valid UTF-8 lead or continuation byte
			return back
		}
	}

	return limit
}

// compareRaw implements section 4.3's "Other kinds" rule: a raw
// byte-wise compare of left's body against rightBytes past its header
// byte. left's body is rendered to match rightBytes' own encoding
// scheme — the ext flag for a full-form header, or the exact element
// width for a standalone homogeneous-long header (section 4.1 dispatch
// branch 5) — so the two sides line up byte-for-byte.
func compareRaw(left value.Value, rightBytes []byte) (int, error) {
	b0 := rightBytes[0]
	scheme, _, ext := header.Classify(b0)

	var (
		leftBody []byte
		err      error
	)

	if scheme == header.SchemeHomogeneousLong {
		if left.Kind() != value.KindLong {
			return 0, fmt.Errorf("vcodec: cannot compare %s against a stored long", left.Kind())
		}

		leftBody = wire.FixedWidthLong(left.AsLong(), header.HomogeneousWidth(b0))
	} else {
		leftBody, err = wire.EncodeBody(left, ext)
		if err != nil {
			return 0, err
		}
	}

	return bytes.Compare(leftBody, rightBytes[1:]), nil
}
