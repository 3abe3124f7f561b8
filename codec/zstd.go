package codec

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxDecodedSize),
	)
}

// ZstdCodec is the Zstandard codec.
type ZstdCodec struct{}

// Encode appends the zstd frame for src to dst.
func (ZstdCodec) Encode(dst, src []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(src, dst), nil
}

// Decode decompresses a zstd frame.
func (ZstdCodec) Decode(src []byte, size int) ([]byte, error) {
	if err := checkDecodeSize("zstd", size); err != nil {
		return nil, err
	}
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, err
	}
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(src, make([]byte, 0, size))
	if err != nil {
		return nil, err
	}
	if err := checkSize("zstd", len(out), size); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns Zstd.
func (ZstdCodec) ID() ID { return Zstd }

// Name returns "zstd".
func (ZstdCodec) Name() string { return "zstd" }
