// Package pagestore defines the paged byte reader interface the codec
// consumes (section 6) and a reference in-memory implementation used by
// tests and by callers with no page cache of their own.
//
// The allocator that assigns storage positions, and the page cache or
// disk I/O backing a real Reader, are external collaborators out of
// scope for this module (spec section 1).
package pagestore

import (
	"encoding/binary"
	"fmt"

	"github.com/lithiumdb/vcodec/errs"
)

// Reader is the paged byte reader the codec consumes. All three methods
// read at an absolute byte position and must be idempotent and free of
// side effects visible to the codec (section 6). Implementations must be
// safe for concurrent use by independent goroutines; the codec itself
// never synchronizes access.
type Reader interface {
	// ReadByte reads a single unsigned byte at pos.
	ReadByte(pos int64) (byte, error)
	// ReadBytes reads n contiguous bytes starting at pos.
	ReadBytes(pos int64, n int) ([]byte, error)
	// ReadShort reads a big-endian signed 16-bit value at pos.
	ReadShort(pos int64) (int16, error)
}

// SliceReader is a []byte-backed Reader, the reference implementation
// used throughout this module's tests. It performs no mutation and is
// therefore safe for concurrent reads.
type SliceReader struct {
	data []byte
}

// NewSliceReader wraps data as a Reader.
func NewSliceReader(data []byte) *SliceReader {
	return &SliceReader{data: data}
}

// ReadByte implements Reader.
func (r *SliceReader) ReadByte(pos int64) (byte, error) {
	if pos < 0 || pos >= int64(len(r.data)) {
		return 0, fmt.Errorf("%w: byte at %d (len %d)", errs.ErrTruncatedRead, pos, len(r.data))
	}

	return r.data[pos], nil
}

// ReadBytes implements Reader.
func (r *SliceReader) ReadBytes(pos int64, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}

	if pos < 0 || n < 0 || pos+int64(n) > int64(len(r.data)) {
		return nil, fmt.Errorf("%w: %d bytes at %d (len %d)", errs.ErrTruncatedRead, n, pos, len(r.data))
	}

	out := make([]byte, n)
	copy(out, r.data[pos:pos+int64(n)])

	return out, nil
}

// ReadShort implements Reader.
func (r *SliceReader) ReadShort(pos int64) (int16, error) {
	b, err := r.ReadBytes(pos, 2)
	if err != nil {
		return 0, err
	}

	return int16(binary.BigEndian.Uint16(b)), nil
}

// Len returns the number of bytes backing r.
func (r *SliceReader) Len() int { return len(r.data) }
