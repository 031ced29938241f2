// Package pool provides pooled byte buffers for assembling write payloads.
//
// Payload assembly joins batch lines and optionally compresses them; both
// steps benefit from reusing grown buffers across batches instead of
// allocating per write.
package pool

import "sync"

const (
	// PayloadBufferDefaultSize is the initial capacity of a pooled buffer.
	// Sized for a typical batch of a few hundred lines.
	PayloadBufferDefaultSize = 16 * 1024

	// PayloadBufferMaxThreshold is the largest buffer returned to the pool.
	// Oversized buffers from pathological batches are dropped so the pool
	// does not pin their memory.
	PayloadBufferMaxThreshold = 1024 * 1024
)

// ByteBuffer is a minimal append-only byte buffer.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified initial capacity.
func NewByteBuffer(size int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, size)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset resets the buffer to be empty, retaining allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// WriteString appends s to the buffer, growing it if necessary.
func (bb *ByteBuffer) WriteString(s string) {
	bb.B = append(bb.B, s...)
}

// WriteByte appends a single byte to the buffer.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Write appends data to the buffer, growing it if necessary.
// It implements io.Writer and never fails.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

var payloadPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(PayloadBufferDefaultSize)
	},
}

// GetPayloadBuffer obtains a reset buffer from the payload pool.
func GetPayloadBuffer() *ByteBuffer {
	bb, _ := payloadPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutPayloadBuffer returns a buffer to the payload pool. Buffers grown
// past PayloadBufferMaxThreshold are dropped.
func PutPayloadBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > PayloadBufferMaxThreshold {
		return
	}
	payloadPool.Put(bb)
}
