package bitarray

import (
	"encoding/binary"
	"io"
	"math/bits"
)

// BitArray is a fixed-size bit vector. It is not safe for concurrent writes.
type BitArray struct {
	words []uint32
	size  int
}

// New creates a BitArray able to hold size bits, all cleared.
func New(size int) *BitArray {
	if size < 0 {
		size = 0
	}
	return &BitArray{
		words: make([]uint32, 1+size/32),
		size:  size,
	}
}

// Size returns the number of addressable bits.
func (b *BitArray) Size() int { return b.size }

// Get reports whether bit i is set.
func (b *BitArray) Get(i int) bool {
	return b.words[i>>5]&(1<<(uint(i)&31)) != 0
}

// Set sets bit i.
func (b *BitArray) Set(i int) {
	b.words[i>>5] |= 1 << (uint(i) & 31)
}

// Clear clears bit i.
func (b *BitArray) Clear(i int) {
	b.words[i>>5] &^= 1 << (uint(i) & 31)
}

// ClearAll clears every bit.
func (b *BitArray) ClearAll() {
	clear(b.words)
}

// Count returns the number of set bits.
func (b *BitArray) Count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount32(w)
	}
	return n
}

// Words exposes the backing words. Mutating them mutates the array.
func (b *BitArray) Words() []uint32 { return b.words }

// ByteSize returns the serialized size in bytes.
func (b *BitArray) ByteSize() int { return 4 * len(b.words) }

// Bytes returns the serialized form.
func (b *BitArray) Bytes() []byte {
	out := make([]byte, 0, b.ByteSize())
	for _, w := range b.words {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

// WriteTo writes the serialized form to w.
func (b *BitArray) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// FromBytes decodes a serialized array holding size bits. It copies data.
func FromBytes(data []byte, size int) (*BitArray, bool) {
	b := New(size)
	if len(data) < b.ByteSize() {
		return nil, false
	}
	for i := range b.words {
		b.words[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	return b, true
}

// ByteSizeFor returns the serialized size of an array holding size bits.
func ByteSizeFor(size int) int {
	return 4 * (1 + size/32)
}

// Get reads bit i straight from a serialized array.
func Get(data []byte, i int) bool {
	return data[i>>3]&(1<<(uint(i)&7)) != 0
}
