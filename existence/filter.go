package existence

import (
	"github.com/hupe1980/imecore/internal/binfmt"
)

var (
	// ErrTooShort is returned when the buffer cannot hold the header.
	ErrTooShort = binfmt.ErrTooShort
	// ErrSizeMismatch is returned when the bit buffer does not match the header size.
	ErrSizeMismatch = binfmt.ErrOutOfBounds
	// ErrInvalidHeader is returned for a zero size or an unsupported probe count.
	ErrInvalidHeader = binfmt.ErrInvalid
)

// Filter is a read-only membership filter.
type Filter struct {
	params Params
	bitmap *BlockBitmap
}

// Read parses a serialized filter. buf is not copied.
func Read(buf []byte) (*Filter, error) {
	r := binfmt.NewReader(component, buf)
	r.RequireLen(headerSize, "header")
	p := Params{
		Size:          r.Uint32("size"),
		ExpectedNelts: r.Uint32("expected_nelts"),
		NumHashes:     r.Int32("num_hashes"),
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, binfmt.Errorf(component, 0, ErrInvalidHeader, "%v", err)
	}
	if want := 4 * numWords(p.Size); r.Remaining() != want {
		return nil, binfmt.Errorf(component, headerSize, ErrSizeMismatch,
			"%d bits need %d bytes, got %d", p.Size, want, r.Remaining())
	}
	words := r.Bytes(r.Remaining(), "bits")
	return &Filter{params: p, bitmap: newBlockBitmap(words, p.Size)}, nil
}

// Exists reports whether h may have been inserted.
func (f *Filter) Exists(h uint64) bool {
	h1, h2 := probes(h)
	size := uint64(f.params.Size)
	for i := uint64(0); i < uint64(f.params.NumHashes); i++ {
		if !f.bitmap.Get(uint32((h1 + i*h2) % size)) {
			return false
		}
	}
	return true
}

// Params returns the filter parameters.
func (f *Filter) Params() Params { return f.params }

// Bitmap returns the underlying bit vector.
func (f *Filter) Bitmap() *BlockBitmap { return f.bitmap }
