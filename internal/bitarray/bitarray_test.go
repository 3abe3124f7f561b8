package bitarray

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitArray(t *testing.T) {
	b := New(100)
	assert.Equal(t, 100, b.Size())
	assert.Equal(t, 16, b.ByteSize())

	b.Set(10)
	assert.True(t, b.Get(10))
	assert.Equal(t, 1, b.Count())

	b.Clear(10)
	assert.False(t, b.Get(10))

	b.Set(0)
	b.Set(31)
	b.Set(32)
	b.Set(99)
	assert.Equal(t, 4, b.Count())

	b.ClearAll()
	assert.Equal(t, 0, b.Count())
}

func TestBitArray_SerializedSize(t *testing.T) {
	for _, size := range []int{0, 1, 31, 32, 33, 64, 1000} {
		b := New(size)
		assert.Equal(t, 4*(1+size/32), len(b.Bytes()), "size %d", size)
		assert.Equal(t, ByteSizeFor(size), b.ByteSize())
	}
}

func TestBitArray_Serialization(t *testing.T) {
	b := New(1000)
	b.Set(1)
	b.Set(500)
	b.Set(999)

	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(b.ByteSize()), n)

	data := buf.Bytes()
	for i := 0; i < 1000; i++ {
		assert.Equal(t, b.Get(i), Get(data, i), "bit %d", i)
	}

	decoded, ok := FromBytes(data, 1000)
	require.True(t, ok)
	assert.Equal(t, b.Words(), decoded.Words())

	_, ok = FromBytes(data[:8], 1000)
	assert.False(t, ok)
}

func TestBitArray_RoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("set bits are the only bits read back", prop.ForAll(
		func(size int, picks []int) bool {
			b := New(size)
			want := make(map[int]bool)
			for _, p := range picks {
				i := p % size
				b.Set(i)
				want[i] = true
			}
			data := b.Bytes()
			for i := 0; i < size; i++ {
				if Get(data, i) != want[i] || b.Get(i) != want[i] {
					return false
				}
			}
			return b.Count() == len(want)
		},
		gen.IntRange(1, 5000),
		gen.SliceOf(gen.IntRange(0, 1<<20)),
	))

	properties.TestingRun(t)
}
