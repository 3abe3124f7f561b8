package binfmt

import (
	"encoding/binary"
)

// Reader is a bounds-checked little-endian cursor with a sticky error.
type Reader struct {
	component string
	data      []byte
	pos       int
	err       error
}

// NewReader returns a Reader over data. component prefixes every error.
func NewReader(component string, data []byte) *Reader {
	return &Reader{component: component, data: data}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// RequireLen fails with ErrTooShort unless the data holds at least n bytes.
func (r *Reader) RequireLen(n int, what string) {
	if r.err == nil && len(r.data) < n {
		r.err = Errorf(r.component, 0, ErrTooShort, "%s needs %d bytes, got %d", what, n, len(r.data))
	}
}

// Pos returns the current offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total length of the underlying data.
func (r *Reader) Len() int { return len(r.data) }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Fail records err unless an earlier error is already set.
func (r *Reader) Fail(sentinel error, format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = Errorf(r.component, r.pos, sentinel, format, args...)
}

func (r *Reader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = Errorf(r.component, r.pos, ErrOutOfBounds, "%s needs %d bytes, %d left", field, n, len(r.data)-r.pos)
		return false
	}
	return true
}

// Uint16 reads a little-endian uint16.
func (r *Reader) Uint16(field string) uint16 {
	if !r.need(2, field) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32(field string) uint32 {
	if !r.need(4, field) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32(field string) int32 {
	return int32(r.Uint32(field))
}

// Uint64 reads a little-endian uint64.
func (r *Reader) Uint64(field string) uint64 {
	if !r.need(8, field) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

// Uint8 reads a single byte.
func (r *Reader) Uint8(field string) uint8 {
	if !r.need(1, field) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

// Bytes returns a view of the next n bytes.
func (r *Reader) Bytes(n int, field string) []byte {
	if !r.need(n, field) {
		return nil
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b
}

// AlignedBytes is Bytes with a check that the field starts on an align-byte
// boundary relative to the start of the data.
func (r *Reader) AlignedBytes(n, align int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos%align != 0 {
		r.err = Errorf(r.component, r.pos, ErrMisaligned, "%s is not %d-byte aligned", field, align)
		return nil
	}
	return r.Bytes(n, field)
}

// String reads a uint16 length-prefixed string.
func (r *Reader) String(field string) string {
	n := int(r.Uint16(field))
	b := r.Bytes(n, field)
	if b == nil {
		return ""
	}
	return string(b)
}

// ExpectEnd fails with ErrTrailingData if unread bytes remain.
func (r *Reader) ExpectEnd() {
	if r.err == nil && r.pos != len(r.data) {
		r.Fail(ErrTrailingData, "%d bytes left", len(r.data)-r.pos)
	}
}
