package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/internal/binfmt"
	"github.com/hupe1980/imecore/internal/hash"
)

// minCompressionGain is the largest stored/decoded ratio for which a
// compressed section is kept; worse results are stored uncompressed.
const minCompressionGain = 0.9

type pendingSection struct {
	name  string
	data  []byte
	codec codec.Codec
}

// Writer assembles a data set.
type Writer struct {
	magic    string
	sections []pendingSection
	names    map[string]struct{}
}

// NewWriter returns a Writer that starts the blob with magic. Empty selects
// DefaultMagic.
func NewWriter(magic string) *Writer {
	if magic == "" {
		magic = DefaultMagic
	}
	return &Writer{magic: magic, names: make(map[string]struct{})}
}

// Add appends an uncompressed section.
func (w *Writer) Add(name string, data []byte) error {
	return w.AddCompressed(name, data, nil)
}

// AddCompressed appends a section encoded with c. A nil c stores the data
// as is. data is retained until the data set is written.
func (w *Writer) AddCompressed(name string, data []byte, c codec.Codec) error {
	if name == "" || len(name) > 0xFFFF {
		return fmt.Errorf("dataset: invalid section name %q", name)
	}
	if _, dup := w.names[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicate, name)
	}
	if c == nil {
		c = codec.Identity{}
	}
	w.names[name] = struct{}{}
	w.sections = append(w.sections, pendingSection{name: name, data: data, codec: c})
	return nil
}

// Len returns the number of sections added so far.
func (w *Writer) Len() int { return len(w.sections) }

// Bytes encodes the data set.
func (w *Writer) Bytes() ([]byte, error) {
	out := binfmt.NewWriter(w.sizeHint())
	out.PutBytes([]byte(w.magic))
	out.Pad(Alignment)

	meta := binfmt.NewWriter(64 * (len(w.sections) + 1))
	meta.PutUint32(Version)
	meta.PutUint32(uint32(len(w.sections)))

	for _, p := range w.sections {
		stored, id, err := encode(p)
		if err != nil {
			return nil, fmt.Errorf("dataset: section %q: %w", p.name, err)
		}
		out.Pad(Alignment)
		offset := out.Len()
		out.PutBytes(stored)

		meta.PutString(p.name)
		meta.PutUint64(uint64(offset))
		meta.PutUint64(uint64(len(stored)))
		meta.PutUint64(uint64(len(p.data)))
		meta.PutUint8(uint8(id))
		meta.PutUint32(hash.CRC32C(stored))
	}
	if err := meta.Err(); err != nil {
		return nil, err
	}

	out.Pad(Alignment)
	metaOffset := out.Len()
	out.PutBytes(meta.Bytes())
	out.PutUint64(uint64(metaOffset))
	out.PutUint32(uint32(meta.Len()))
	out.PutUint32(hash.CRC32C(meta.Bytes()))
	return out.Bytes(), out.Err()
}

// WriteTo writes the encoded data set to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	b, err := w.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(b)
	return int64(n), err
}

func (w *Writer) sizeHint() int {
	n := headerSize(w.magic) + trailerSize
	for _, p := range w.sections {
		n += binfmt.Align(len(p.data), Alignment) + 64
	}
	return n
}

func encode(p pendingSection) ([]byte, codec.ID, error) {
	if p.codec.ID() == codec.None || len(p.data) == 0 || len(p.data) > codec.MaxDecodedSize {
		return p.data, codec.None, nil
	}
	enc, err := p.codec.Encode(nil, p.data)
	if errors.Is(err, codec.ErrIncompressible) {
		return p.data, codec.None, nil
	}
	if err != nil {
		return nil, 0, err
	}
	if float64(len(enc)) > float64(len(p.data))*minCompressionGain ||
		uint64(len(p.data))/MaxExpansion > uint64(len(enc)) {
		return p.data, codec.None, nil
	}
	return enc, p.codec.ID(), nil
}
