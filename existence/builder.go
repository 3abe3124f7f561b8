package existence

import (
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/imecore/internal/binfmt"
)

// Builder accumulates hashes and serializes a Filter.
type Builder struct {
	params Params
	bitmap *BlockBitmapBuilder
	count  int
}

// NewBuilder returns a Builder for p.
func NewBuilder(p Params) (*Builder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Builder{params: p, bitmap: NewBlockBitmapBuilder(p.Size)}, nil
}

// CreateOptimal returns a Builder using sizeInBytes of bit storage with the
// probe count that minimizes false positives for estimatedInsertions.
func CreateOptimal(sizeInBytes, estimatedInsertions int) (*Builder, error) {
	if sizeInBytes <= 0 || sizeInBytes > math.MaxUint32/8 {
		return nil, fmt.Errorf("%w: size %d bytes", ErrInvalidParams, sizeInBytes)
	}
	if estimatedInsertions <= 0 || uint64(estimatedInsertions) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d estimated insertions", ErrInvalidParams, estimatedInsertions)
	}
	bits := sizeInBytes * 8
	return NewBuilder(Params{
		Size:          uint32(bits),
		ExpectedNelts: uint32(estimatedInsertions),
		NumHashes:     OptimalNumHashes(bits, estimatedInsertions),
	})
}

// Insert adds h.
func (b *Builder) Insert(h uint64) {
	h1, h2 := probes(h)
	size := uint64(b.params.Size)
	for i := uint64(0); i < uint64(b.params.NumHashes); i++ {
		b.bitmap.Set(uint32((h1 + i*h2) % size))
	}
	b.count++
}

// Count returns the number of Insert calls.
func (b *Builder) Count() int { return b.count }

// Params returns the filter parameters.
func (b *Builder) Params() Params { return b.params }

// Bytes returns the serialized filter.
func (b *Builder) Bytes() []byte {
	w := binfmt.NewWriter(b.params.ByteSize())
	w.PutUint32(b.params.Size)
	w.PutUint32(b.params.ExpectedNelts)
	w.PutInt32(b.params.NumHashes)
	return b.bitmap.AppendTo(w.Bytes())
}

// WriteTo writes the serialized filter to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// Build returns a Filter holding a snapshot of the inserted hashes.
func (b *Builder) Build() *Filter {
	return &Filter{params: b.params, bitmap: b.bitmap.Build()}
}
