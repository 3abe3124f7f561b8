package binfmt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Fields(t *testing.T) {
	w := NewWriter(32)
	w.PutUint16(0xCDAB)
	w.PutUint16(7)
	w.PutUint32(42)
	w.PutInt32(-3)
	w.PutUint64(1 << 40)
	w.PutString("conn")
	w.PutUint8(9)
	require.NoError(t, w.Err())

	r := NewReader("test", w.Bytes())
	assert.Equal(t, uint16(0xCDAB), r.Uint16("magic"))
	assert.Equal(t, uint16(7), r.Uint16("a"))
	assert.Equal(t, uint32(42), r.Uint32("b"))
	assert.Equal(t, int32(-3), r.Int32("c"))
	assert.Equal(t, uint64(1<<40), r.Uint64("d"))
	assert.Equal(t, "conn", r.String("name"))
	assert.Equal(t, uint8(9), r.Uint8("e"))
	r.ExpectEnd()
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Remaining())
}

func TestReader_StickyError(t *testing.T) {
	r := NewReader("test", []byte{1, 2, 3})
	_ = r.Uint32("x")
	require.Error(t, r.Err())
	assert.True(t, errors.Is(r.Err(), ErrOutOfBounds))

	first := r.Err()
	_ = r.Uint16("y")
	assert.Same(t, first, r.Err())

	var be *Error
	require.True(t, errors.As(r.Err(), &be))
	assert.Equal(t, "test", be.Component)
	assert.Equal(t, 0, be.Offset)
}

func TestReader_RequireLen(t *testing.T) {
	r := NewReader("connector", make([]byte, 6))
	r.RequireLen(8, "header")
	assert.ErrorIs(t, r.Err(), ErrTooShort)
	assert.Contains(t, r.Err().Error(), "connector")
}

func TestReader_AlignedBytes(t *testing.T) {
	data := make([]byte, 16)

	r := NewReader("test", data)
	_ = r.Bytes(3, "skip")
	assert.Nil(t, r.AlignedBytes(4, 4, "field"))
	assert.ErrorIs(t, r.Err(), ErrMisaligned)

	r = NewReader("test", data)
	_ = r.Bytes(4, "skip")
	b := r.AlignedBytes(8, 4, "field")
	require.NoError(t, r.Err())
	assert.Len(t, b, 8)
	assert.Equal(t, 8, cap(b))
}

func TestReader_TrailingData(t *testing.T) {
	r := NewReader("test", []byte{0, 0, 1})
	_ = r.Uint16("x")
	r.ExpectEnd()
	assert.ErrorIs(t, r.Err(), ErrTrailingData)
}

func TestWriter_Pad(t *testing.T) {
	w := NewWriter(0)
	w.PutUint8(1)
	w.Pad(4)
	assert.Equal(t, 4, w.Len())
	w.Pad(4)
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, 8, Align(5, 4))
	assert.Equal(t, 8, Align(8, 4))
}

func TestWriter_StringTooLong(t *testing.T) {
	w := NewWriter(0)
	w.PutString(string(make([]byte, 70000)))
	assert.Error(t, w.Err())
}
