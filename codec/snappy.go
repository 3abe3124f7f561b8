package codec

import (
	"github.com/golang/snappy"
)

// SnappyCodec is the Snappy block codec.
type SnappyCodec struct{}

// Encode appends the Snappy block for src to dst.
func (SnappyCodec) Encode(dst, src []byte) ([]byte, error) {
	return append(dst, snappy.Encode(nil, src)...), nil
}

// Decode decompresses a Snappy block.
func (SnappyCodec) Decode(src []byte, size int) ([]byte, error) {
	if err := checkDecodeSize("snappy", size); err != nil {
		return nil, err
	}
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return nil, err
	}
	if err := checkSize("snappy", n, size); err != nil {
		return nil, err
	}
	return snappy.Decode(make([]byte, n), src)
}

// ID returns Snappy.
func (SnappyCodec) ID() ID { return Snappy }

// Name returns "snappy".
func (SnappyCodec) Name() string { return "snappy" }
