package existence

import (
	"encoding/binary"
)

const (
	// BlockBits is the number of bits per block.
	BlockBits  = 1 << 21
	blockMask  = BlockBits - 1
	blockBytes = BlockBits / 8
	blockWords = BlockBits / 32
)

// BlockBitmap is a read-only bit vector split into fixed-size blocks.
type BlockBitmap struct {
	blocks [][]byte
	size   uint32
}

// newBlockBitmap views data, which must hold 4*ceil(size/32) bytes.
func newBlockBitmap(data []byte, size uint32) *BlockBitmap {
	b := &BlockBitmap{size: size}
	for off := 0; off < len(data); off += blockBytes {
		end := min(off+blockBytes, len(data))
		b.blocks = append(b.blocks, data[off:end:end])
	}
	return b
}

// Get reports whether bit index is set.
func (b *BlockBitmap) Get(index uint32) bool {
	block := b.blocks[index>>21]
	word := binary.LittleEndian.Uint32(block[4*((index&blockMask)>>5):])
	return word&(1<<(index&31)) != 0
}

// Size returns the number of bits.
func (b *BlockBitmap) Size() uint32 { return b.size }

// NumBlocks returns the number of blocks.
func (b *BlockBitmap) NumBlocks() int { return len(b.blocks) }

// BlockBitmapBuilder is the writable counterpart of BlockBitmap.
type BlockBitmapBuilder struct {
	blocks [][]uint32
	size   uint32
}

// NewBlockBitmapBuilder returns a builder for size bits, all cleared.
func NewBlockBitmapBuilder(size uint32) *BlockBitmapBuilder {
	b := &BlockBitmapBuilder{size: size}
	remaining := numWords(size)
	for remaining > 0 {
		n := min(remaining, blockWords)
		b.blocks = append(b.blocks, make([]uint32, n))
		remaining -= n
	}
	return b
}

// Set sets bit index.
func (b *BlockBitmapBuilder) Set(index uint32) {
	b.blocks[index>>21][(index&blockMask)>>5] |= 1 << (index & 31)
}

// Get reports whether bit index is set.
func (b *BlockBitmapBuilder) Get(index uint32) bool {
	return b.blocks[index>>21][(index&blockMask)>>5]&(1<<(index&31)) != 0
}

// Size returns the number of bits.
func (b *BlockBitmapBuilder) Size() uint32 { return b.size }

// AppendTo appends the serialized words to dst.
func (b *BlockBitmapBuilder) AppendTo(dst []byte) []byte {
	for _, block := range b.blocks {
		for _, w := range block {
			dst = binary.LittleEndian.AppendUint32(dst, w)
		}
	}
	return dst
}

// Build returns a read-only copy.
func (b *BlockBitmapBuilder) Build() *BlockBitmap {
	return newBlockBitmap(b.AppendTo(make([]byte, 0, 4*numWords(b.size))), b.size)
}
