// Package codec implements the section compression codecs of a data set.
//
// Codec identifiers are persisted in data set metadata. Changing the meaning
// of an existing ID breaks every data set written with it.
package codec

import (
	"errors"
	"fmt"
)

// ID identifies a codec in persisted metadata.
type ID uint8

const (
	// None stores the payload as is. Readers can view it without copying.
	None ID = 0
	// Zstd favors ratio. Used for large, rarely reloaded sections.
	Zstd ID = 1
	// LZ4 favors decode speed.
	LZ4 ID = 2
	// Snappy is a fast general purpose block codec.
	Snappy ID = 3
)

var (
	// ErrUnknown is returned for an unregistered codec ID or name.
	ErrUnknown = errors.New("codec: unknown codec")
	// ErrSizeMismatch is returned when a payload does not decode to its
	// recorded size.
	ErrSizeMismatch = errors.New("codec: decoded size mismatch")
	// ErrIncompressible is returned by Encode when the output would not be
	// smaller than the input.
	ErrIncompressible = errors.New("codec: incompressible input")
	// ErrTooLarge is returned by Decode for a size outside [0, MaxDecodedSize].
	ErrTooLarge = errors.New("codec: decoded size too large")
)

// MaxDecodedSize bounds the size Decode accepts. Sizes come from data set
// metadata, so they are checked before anything is allocated.
const MaxDecodedSize = 1 << 30

// Codec compresses whole sections.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode appends the compressed form of src to dst.
	Encode(dst, src []byte) ([]byte, error)
	// Decode decompresses src, which must expand to exactly size bytes.
	Decode(src []byte, size int) ([]byte, error)
	ID() ID
	Name() string
}

// ByID returns the codec registered for id.
func ByID(id ID) (Codec, error) {
	switch id {
	case None:
		return Identity{}, nil
	case Zstd:
		return ZstdCodec{}, nil
	case LZ4:
		return LZ4Codec{}, nil
	case Snappy:
		return SnappyCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: id %d", ErrUnknown, id)
	}
}

// ByName returns a codec by its stable name.
//
// This is used by the command line tools and configuration files.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "none":
		return Identity{}, nil
	case "zstd":
		return ZstdCodec{}, nil
	case "lz4":
		return LZ4Codec{}, nil
	case "snappy":
		return SnappyCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
}

// String returns the codec name for id.
func (id ID) String() string {
	c, err := ByID(id)
	if err != nil {
		return fmt.Sprintf("codec(%d)", uint8(id))
	}
	return c.Name()
}

// Identity is the no-op codec.
type Identity struct{}

// Encode appends src to dst.
func (Identity) Encode(dst, src []byte) ([]byte, error) { return append(dst, src...), nil }

// Decode returns src itself.
func (Identity) Decode(src []byte, size int) ([]byte, error) {
	if len(src) != size {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(src), size)
	}
	return src, nil
}

// ID returns None.
func (Identity) ID() ID { return None }

// Name returns "none".
func (Identity) Name() string { return "none" }

func checkDecodeSize(name string, size int) error {
	if size < 0 || size > MaxDecodedSize {
		return fmt.Errorf("%w: %s size %d, limit %d", ErrTooLarge, name, size, MaxDecodedSize)
	}
	return nil
}

func checkSize(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s decoded %d bytes, want %d", ErrSizeMismatch, name, got, want)
	}
	return nil
}
