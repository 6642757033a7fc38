// Package dynbuf implements a growable byte buffer used as I/O
// scratch space: internal/pipeline's workers stage their framed
// alignment output in one. It plays the same role DynamicArray<char>
// played in the original implementation.
package dynbuf

// Buffer is a contiguous growable byte container. The zero value is
// an empty, usable buffer.
type Buffer struct {
	data []byte
}

// New returns a Buffer with the given initial size, zero-filled.
func New(size int) *Buffer {
	b := &Buffer{}
	b.Resize(size)
	return b
}

// Size returns the current logical length of the buffer.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Bytes returns the buffer's backing slice. Callers must not retain
// it across a Resize or Expand call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// At returns the byte at index i.
func (b *Buffer) At(i int) byte {
	return b.data[i]
}

// Set assigns the byte at index i.
func (b *Buffer) Set(i int, v byte) {
	b.data[i] = v
}

// Resize grows or shrinks the buffer to exactly n bytes. Bytes at
// indices beyond the old size are zeroed.
func (b *Buffer) Resize(n int) {
	old := len(b.data)
	if n <= cap(b.data) {
		b.data = b.data[:n]
	} else {
		nd := make([]byte, n)
		copy(nd, b.data)
		b.data = nd
	}
	for i := old; i < n; i++ {
		b.data[i] = 0
	}
}

// Expand doubles the buffer's capacity, preserving existing content
// and length. A buffer with zero capacity expands to 128 bytes (a
// 64-byte base, doubled).
func (b *Buffer) Expand() {
	cp := cap(b.data)
	if cp == 0 {
		cp = 64
	}
	nd := make([]byte, len(b.data), cp*2)
	copy(nd, b.data)
	b.data = nd
}

// EnsureCap grows capacity (via Expand) until it is at least n,
// without changing the logical Size.
func (b *Buffer) EnsureCap(n int) {
	for cap(b.data) < n {
		b.Expand()
	}
}

// Append grows the buffer by len(p) bytes and copies p onto the end,
// expanding capacity as needed. It is the buffer's main write path for
// the per-worker output caches streamio's consumers build up between
// flushes.
func (b *Buffer) Append(p []byte) {
	b.EnsureCap(len(b.data) + len(p))
	b.data = append(b.data, p...)
}

// Reset truncates the buffer back to zero length without releasing
// its backing capacity, for reuse across flush cycles.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
