package connector

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Layout(t *testing.T) {
	costs := [][]int{
		{0, 0, 0},
		{0, 9, 0},
		{4, 4, 4},
	}
	data, err := NewBuilder(costs, 1).Build()
	require.NoError(t, err)

	meta, err := ReadMetadata(data)
	require.NoError(t, err)
	assert.Equal(t, Metadata{Magic: Magic, Resolution: 1, RSize: 3, LSize: 3}, meta)
	assert.Equal(t, 1, meta.NumChunkBits())
	assert.Equal(t, 4, meta.ChunkBitsSize())
	assert.Equal(t, 4, meta.DefaultCostArraySize())

	// header + 4 default costs + row0 (4+4) + row1 (4+4+4+4) + row2 (4+4)
	assert.Equal(t, 8+8+8+16+8, len(data))
	assert.Zero(t, len(data)%4)
}

func TestBuilder_WriteTo(t *testing.T) {
	b := NewBuilder([][]int{{1, 2}, {3, 4}}, 1)
	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	want, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, want, buf.Bytes())
}

func TestBuilder_Invalid(t *testing.T) {
	for name, tc := range map[string]struct {
		costs      [][]int
		resolution int
	}{
		"empty":          {nil, 1},
		"ragged":         {[][]int{{1, 2}, {3}}, 1},
		"negative":       {[][]int{{-1}}, 1},
		"zeroResolution": {[][]int{{1}}, 0},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewBuilder(tc.costs, tc.resolution).Build()
			assert.ErrorIs(t, err, ErrInvalidMatrix)
		})
	}
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 1234, Quantize(1234, 1))
	assert.Equal(t, 1232, Quantize(1234, 8))
	assert.Equal(t, 1240, Quantize(1236, 8))
	assert.Equal(t, 254*8, Quantize(9000, 8))
	assert.Equal(t, InvalidCost, Quantize(InvalidCost, 8))
	assert.Equal(t, InvalidCost, Quantize(InvalidCost+1, 1))
}

func TestMostFrequent(t *testing.T) {
	assert.Equal(t, 3, mostFrequent([]int{1, 3, 3, 2}))
	assert.Equal(t, 1, mostFrequent([]int{2, 1}))
}
