package dataset

import (
	"fmt"

	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/internal/binfmt"
	"github.com/hupe1980/imecore/internal/hash"
)

// ReaderOptions configures Open.
type ReaderOptions struct {
	// Magic is the expected leading magic. Empty selects DefaultMagic.
	Magic string
	// SkipChecksums disables CRC32C verification of section bytes at Open.
	// The metadata checksum is always verified.
	SkipChecksums bool
}

// Reader gives access to the sections of a data set.
// It is safe for concurrent use.
type Reader struct {
	data     []byte
	sections []Section
	index    map[string]int
	version  uint32
}

// Open parses the data set in data. data is not copied and must stay valid
// and unmodified for the lifetime of the Reader.
func Open(data []byte, optFns ...func(o *ReaderOptions)) (*Reader, error) {
	opts := ReaderOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	magic := opts.Magic
	if magic == "" {
		magic = DefaultMagic
	}

	hdr := headerSize(magic)
	r := binfmt.NewReader(component, data)
	r.RequireLen(hdr+trailerSize, "header and trailer")
	if err := r.Err(); err != nil {
		return nil, err
	}
	if got := string(data[:len(magic)]); got != magic {
		return nil, binfmt.Errorf(component, 0, ErrBadMagic, "magic %q, want %q", got, magic)
	}

	end := len(data) - trailerSize
	t := binfmt.NewReader(component, data[end:])
	metaOffset := t.Uint64("metadata offset")
	metaSize := uint64(t.Uint32("metadata size"))
	metaCRC := t.Uint32("metadata checksum")
	if metaOffset < uint64(hdr) || metaOffset > uint64(end) || metaSize > uint64(end)-metaOffset {
		return nil, binfmt.Errorf(component, end, ErrOutOfBounds,
			"metadata [%d, +%d) outside [%d, %d)", metaOffset, metaSize, hdr, end)
	}
	meta := data[metaOffset : metaOffset+metaSize]
	if got := hash.CRC32C(meta); got != metaCRC {
		return nil, binfmt.Errorf(component, int(metaOffset), ErrChecksum,
			"metadata crc32c 0x%08x, want 0x%08x", got, metaCRC)
	}

	ds := &Reader{data: data, index: make(map[string]int)}
	if err := ds.parseMetadata(meta, int(metaOffset), uint64(hdr), metaOffset); err != nil {
		return nil, err
	}

	if !opts.SkipChecksums {
		for _, s := range ds.sections {
			if err := ds.verify(s); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

func (ds *Reader) parseMetadata(meta []byte, base int, lo, hi uint64) error {
	m := binfmt.NewReader(component, meta)
	ds.version = m.Uint32("version")
	if m.Err() == nil && ds.version != Version {
		return binfmt.Errorf(component, base, ErrVersion, "version %d, want %d", ds.version, Version)
	}
	count := m.Uint32("section count")
	if err := m.Err(); err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		s := Section{
			Name:       m.String("section name"),
			Offset:     m.Uint64("section offset"),
			StoredSize: m.Uint64("section stored size"),
			Size:       m.Uint64("section size"),
			Codec:      codec.ID(m.Uint8("section codec")),
			Checksum:   m.Uint32("section checksum"),
		}
		if err := m.Err(); err != nil {
			return err
		}
		at := base + m.Pos()
		switch {
		case s.Offset%Alignment != 0:
			return binfmt.Errorf(component, at, ErrMisaligned, "section %q offset %d", s.Name, s.Offset)
		case s.Offset < lo || s.Offset > hi || s.StoredSize > hi-s.Offset:
			return binfmt.Errorf(component, at, ErrOutOfBounds,
				"section %q [%d, +%d) outside [%d, %d)", s.Name, s.Offset, s.StoredSize, lo, hi)
		case !s.Compressed() && s.StoredSize != s.Size:
			return binfmt.Errorf(component, at, ErrInvalid,
				"uncompressed section %q stores %d bytes for size %d", s.Name, s.StoredSize, s.Size)
		case s.Compressed() && s.Size > codec.MaxDecodedSize:
			return binfmt.Errorf(component, at, ErrInvalid,
				"section %q decodes to %d bytes, limit %d", s.Name, s.Size, codec.MaxDecodedSize)
		case s.Compressed() && s.Size/MaxExpansion > s.StoredSize:
			return binfmt.Errorf(component, at, ErrInvalid,
				"section %q expands %d stored bytes to %d", s.Name, s.StoredSize, s.Size)
		}
		if _, err := codec.ByID(s.Codec); err != nil {
			return binfmt.Errorf(component, at, ErrInvalid, "section %q: %v", s.Name, err)
		}
		if _, dup := ds.index[s.Name]; dup {
			return binfmt.Errorf(component, at, ErrInvalid, "section %q listed twice", s.Name)
		}
		ds.index[s.Name] = len(ds.sections)
		ds.sections = append(ds.sections, s)
	}

	m.ExpectEnd()
	return m.Err()
}

func (ds *Reader) stored(s Section) []byte {
	return ds.data[s.Offset : s.Offset+s.StoredSize : s.Offset+s.StoredSize]
}

func (ds *Reader) verify(s Section) error {
	if got := hash.CRC32C(ds.stored(s)); got != s.Checksum {
		return binfmt.Errorf(component, int(s.Offset), ErrChecksum,
			"section %q crc32c 0x%08x, want 0x%08x", s.Name, got, s.Checksum)
	}
	return nil
}

// Version returns the metadata format version.
func (ds *Reader) Version() uint32 { return ds.version }

// Len returns the size of the underlying blob.
func (ds *Reader) Len() int { return len(ds.data) }

// Sections returns the section descriptors in file order.
func (ds *Reader) Sections() []Section {
	out := make([]Section, len(ds.sections))
	copy(out, ds.sections)
	return out
}

// Section returns the descriptor of the named section.
func (ds *Reader) Section(name string) (Section, bool) {
	i, ok := ds.index[name]
	if !ok {
		return Section{}, false
	}
	return ds.sections[i], true
}

// Has reports whether the named section exists.
func (ds *Reader) Has(name string) bool {
	_, ok := ds.index[name]
	return ok
}

// Raw returns the stored bytes of the named section without decoding.
func (ds *Reader) Raw(name string) ([]byte, error) {
	s, ok := ds.Section(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return ds.stored(s), nil
}

// Get returns the decoded bytes of the named section. Uncompressed sections
// are views into the blob.
func (ds *Reader) Get(name string) ([]byte, error) {
	s, ok := ds.Section(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	c, err := codec.ByID(s.Codec)
	if err != nil {
		return nil, err
	}
	out, err := c.Decode(ds.stored(s), int(s.Size))
	if err != nil {
		return nil, binfmt.Errorf(component, int(s.Offset), ErrInvalid, "section %q: %v", name, err)
	}
	return out, nil
}

// Verify recomputes the CRC32C of the named section.
func (ds *Reader) Verify(name string) error {
	s, ok := ds.Section(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return ds.verify(s)
}
