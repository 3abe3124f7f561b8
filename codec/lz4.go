package codec

import (
	"github.com/pierrec/lz4/v4"
)

// LZ4Codec is the LZ4 block codec.
type LZ4Codec struct{}

// Encode appends the LZ4 block for src to dst. It returns ErrIncompressible
// when LZ4 cannot shrink src.
func (LZ4Codec) Encode(dst, src []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, buf, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrIncompressible
	}
	return append(dst, buf[:n]...), nil
}

// Decode decompresses an LZ4 block.
func (LZ4Codec) Decode(src []byte, size int) ([]byte, error) {
	if err := checkDecodeSize("lz4", size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(src, out)
	if err != nil {
		return nil, err
	}
	if err := checkSize("lz4", n, size); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns LZ4.
func (LZ4Codec) ID() ID { return LZ4 }

// Name returns "lz4".
func (LZ4Codec) Name() string { return "lz4" }
