// Package bufpool provides a small pooled scratch buffer for the header
// and length-prefix bytes wire.Encode writes before a value's payload.
//
// Adapted from the teacher's internal/pool byte-buffer pool, trimmed down
// to a single fixed default size: unlike a blob encoder that accumulates
// an entire payload in a growable buffer, this codec never buffers more
// than a handful of header/length bytes per call, so the growth-curve
// machinery of the original pool (Grow/Extend/ExtendOrGrow, multiple
// pool tiers) has no work to do here.
package bufpool

import "sync"

// ScratchSize is large enough for the worst case this package is used
// for: a full-form header byte plus a 4-byte length prefix, with room to
// spare.
const ScratchSize = 32

// Buffer is a reusable byte buffer returned to its pool via Put.
type Buffer struct {
	B []byte
}

// Reset empties the buffer while retaining its backing array.
func (b *Buffer) Reset() { b.B = b.B[:0] }

var pool = sync.Pool{
	New: func() any {
		return &Buffer{B: make([]byte, 0, ScratchSize)}
	},
}

// Get retrieves an empty Buffer from the pool.
func Get() *Buffer {
	buf, _ := pool.Get().(*Buffer)

	return buf
}

// Put returns buf to the pool for reuse. Callers must not use buf after
// calling Put.
func Put(buf *Buffer) {
	if buf == nil {
		return
	}

	buf.Reset()
	pool.Put(buf)
}
