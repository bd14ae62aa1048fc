// Package vcodec provides the durable value codec of a graph/triple
// database: encoding and decoding the heterogeneous value universe
// (strings, URIs, keywords, arbitrary-precision numbers, dates,
// instants, UUIDs, blobs, typed literals, sequences, and maps) to and
// from the compact tagged byte format stored on disk or in index
// pages, together with the bit-packed encapsulated-ID scheme that
// avoids external storage for small values and the prefix comparator
// index nodes use when they hold only a truncated key.
//
// # Basic usage
//
// Encoding and decoding a value against any pagestore.Reader:
//
//	data, _ := vcodec.EncodeValue(value.String("hi"))
//	r := pagestore.NewSliceReader(data)
//	v, n, _ := vcodec.DecodeValue(r, 0)
//
// Checking whether a 64-bit identifier carries its value inline rather
// than pointing into external storage:
//
//	if v, ok := vcodec.Unencapsulate(id); ok {
//	    // id never touched storage
//	}
//
// # Package structure
//
// This file is a thin top-level convenience wrapper. The wire package
// implements the tagged byte codec, inline implements the encapsulated-ID
// scheme, and prefixcmp implements the index comparator; advanced callers
// needing the per-type decoder table or the sequence body format directly
// should use those packages.
package vcodec

import (
	"github.com/lithiumdb/vcodec/inline"
	"github.com/lithiumdb/vcodec/pagestore"
	"github.com/lithiumdb/vcodec/prefixcmp"
	"github.com/lithiumdb/vcodec/value"
	"github.com/lithiumdb/vcodec/wire"
)

// DecodeValue reads the value stored at pos and reports the total
// number of bytes consumed, header byte included.
func DecodeValue(r pagestore.Reader, pos int64) (value.Value, int, error) {
	return wire.ReadObjectSize(r, pos)
}

// EncodeValue renders v in the canonical tagged byte form; decoding the
// result with DecodeValue reproduces v.
func EncodeValue(v value.Value) ([]byte, error) {
	return wire.Encode(v)
}

// Unencapsulate returns the value id encodes inline, or false if id
// must be treated as a pointer into external storage.
func Unencapsulate(id int64) (value.Value, bool) {
	return inline.Unencapsulate(id)
}

// Encapsulate returns the inline 64-bit id for v, or false if v does
// not fit the inline encoding.
func Encapsulate(v value.Value) (int64, bool) {
	return inline.Encapsulate(v)
}

// IsEncapsulatedNode reports whether id may refer to a node slot in the
// graph layer rather than a plain inline value.
func IsEncapsulatedNode(id int64) bool {
	return inline.IsEncapsulatedNode(id)
}

// ComparePrefix orders left against rightBytes, the byte view of an
// index slot that may hold only a prefix of the value it was truncated
// from.
func ComparePrefix(left value.Value, rightBytes []byte) (int, error) {
	return prefixcmp.Compare(left, rightBytes)
}
