package dataset

import (
	"errors"

	"github.com/hupe1980/imecore/internal/binfmt"
)

const component = "dataset"

var (
	// ErrTooShort is returned when the blob cannot hold the header and trailer.
	ErrTooShort = binfmt.ErrTooShort
	// ErrBadMagic is returned when the blob does not start with the expected magic.
	ErrBadMagic = binfmt.ErrBadMagic
	// ErrOutOfBounds is returned when the metadata points outside the blob.
	ErrOutOfBounds = binfmt.ErrOutOfBounds
	// ErrMisaligned is returned for a section that does not start on an
	// 8-byte boundary.
	ErrMisaligned = binfmt.ErrMisaligned
	// ErrInvalid is returned for inconsistent metadata.
	ErrInvalid = binfmt.ErrInvalid

	// ErrChecksum is returned when stored bytes do not match their CRC32C.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrVersion is returned for metadata written by an incompatible version.
	ErrVersion = errors.New("unsupported format version")
	// ErrNotFound is returned when a named section does not exist.
	ErrNotFound = errors.New("dataset: section not found")
	// ErrDuplicate is returned when a section name is added twice.
	ErrDuplicate = errors.New("dataset: duplicate section")
)
