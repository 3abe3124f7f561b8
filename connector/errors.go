package connector

import (
	"errors"

	"github.com/hupe1980/imecore/internal/binfmt"
)

var (
	// ErrTooShort is returned when the data cannot hold the 8-byte header.
	ErrTooShort = binfmt.ErrTooShort
	// ErrBadMagic is returned when the header magic is not Magic.
	ErrBadMagic = binfmt.ErrBadMagic
	// ErrNotSquare is returned when rsize and lsize differ.
	ErrNotSquare = binfmt.ErrNotSquare
	// ErrMisaligned is returned when a row sub-array is not 32-bit aligned.
	ErrMisaligned = binfmt.ErrMisaligned
	// ErrOutOfBounds is returned when a row field reads past the end of the data.
	ErrOutOfBounds = binfmt.ErrOutOfBounds
	// ErrTrailingData is returned when bytes follow the last row.
	ErrTrailingData = binfmt.ErrTrailingData
	// ErrInvalidResolution is returned for a zero resolution.
	ErrInvalidResolution = binfmt.ErrInvalid

	// ErrCacheSize is returned when the cache size is not a positive power of two.
	ErrCacheSize = errors.New("connector: cache size must be a positive power of two")
)
