package dataset

import (
	"fmt"

	"github.com/hupe1980/imecore/codec"
)

const (
	// DefaultMagic starts every data set unless another magic is configured.
	DefaultMagic = "\xEFIMEC\r\n"
	// Version is the metadata format version this package reads and writes.
	Version = 1
	// Alignment is the byte alignment of every section offset.
	Alignment = 8
	// MaxExpansion bounds the decoded size of a compressed section relative
	// to its stored size.
	MaxExpansion = 1 << 16

	trailerSize = 16
)

// Section describes one named section.
type Section struct {
	Name string
	// Offset of the stored bytes from the start of the blob.
	Offset uint64
	// StoredSize is the length of the stored, possibly compressed, bytes.
	StoredSize uint64
	// Size is the decoded length.
	Size uint64
	Codec codec.ID
	// Checksum is the CRC32C of the stored bytes.
	Checksum uint32
}

// Compressed reports whether the section must be decoded before use.
func (s Section) Compressed() bool {
	return s.Codec != codec.None
}

func (s Section) String() string {
	return fmt.Sprintf("%s@%d (%d bytes, %s, %d stored)", s.Name, s.Offset, s.Size, s.Codec, s.StoredSize)
}

func headerSize(magic string) int {
	return (len(magic) + Alignment - 1) / Alignment * Alignment
}
