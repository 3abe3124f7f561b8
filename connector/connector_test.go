package connector

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imecore/internal/binfmt"
	"github.com/hupe1980/imecore/testutil"
)

func expectedCost(costs [][]int, rid, lid, resolution int) int {
	row := costs[rid]
	if def := mostFrequent(row); row[lid] == def {
		return clampCost(def)
	}
	return Quantize(row[lid], resolution)
}

func buildConnector(t testing.TB, costs [][]int, resolution, cacheSize int) *Connector {
	t.Helper()
	data, err := NewBuilder(costs, resolution).Build()
	require.NoError(t, err)
	c, err := New(data, cacheSize)
	require.NoError(t, err)
	return c
}

func TestConnector_RoundTrip(t *testing.T) {
	for _, resolution := range []int{1, 8, 64} {
		costs := testutil.NewRNG(int64(resolution)).CostMatrix(70, 0.15, 9000)
		costs[3][5] = InvalidCost
		costs[10][69] = InvalidCost + 100

		c := buildConnector(t, costs, resolution, DefaultCacheSize)
		assert.Equal(t, 70, c.Size())
		assert.Equal(t, resolution, c.Resolution())

		for rid := range costs {
			for lid := range costs[rid] {
				want := expectedCost(costs, rid, lid, resolution)
				require.Equal(t, want, c.GetTransitionCost(uint16(rid), uint16(lid)), "res=%d (%d,%d)", resolution, rid, lid)
			}
		}
		assert.Equal(t, InvalidCost, c.GetTransitionCost(3, 5))
		assert.Equal(t, InvalidCost, c.GetTransitionCost(10, 69))
	}
}

func TestConnector_CacheTransparency(t *testing.T) {
	costs := testutil.NewRNG(3).CostMatrix(40, 0.3, 5000)
	c := buildConnector(t, costs, 1, 4)

	for rid := range costs {
		for lid := range costs[rid] {
			first := c.GetTransitionCost(uint16(rid), uint16(lid))
			second := c.GetTransitionCost(uint16(rid), uint16(lid))
			assert.Equal(t, first, second)
			assert.Equal(t, c.lookup(uint16(rid), uint16(lid)), first)
		}
	}

	c.ClearCache()
	for _, k := range c.cacheKey {
		assert.Equal(t, uint32(emptyCacheKey), k)
	}
}

func TestConnector_DefaultCostFallback(t *testing.T) {
	costs := [][]int{
		{100, 100, 100, 7},
		{200, 5, 200, 200},
		{300, 300, 300, 300},
		{1, 2, 3, 3},
	}
	c := buildConnector(t, costs, 1, 8)

	assert.Equal(t, 100, c.DefaultCost(0))
	assert.Equal(t, 100, c.GetTransitionCost(0, 0))
	assert.Equal(t, 100, c.GetTransitionCost(0, 2))
	assert.Equal(t, 7, c.GetTransitionCost(0, 3))
	assert.Equal(t, 5, c.GetTransitionCost(1, 1))
	assert.Equal(t, 200, c.GetTransitionCost(1, 3))

	// A row equal to its default stores no chunk at all.
	assert.Equal(t, 0, c.rows[2].chunkBits.Ones())
	assert.Equal(t, 300, c.GetTransitionCost(2, 1))

	assert.Equal(t, 3, c.DefaultCost(3))
	assert.Equal(t, 1, c.GetTransitionCost(3, 0))
}

func TestConnector_Clone(t *testing.T) {
	costs := testutil.NewRNG(5).CostMatrix(16, 0.5, 1000)
	c := buildConnector(t, costs, 1, 16)
	_ = c.GetTransitionCost(1, 2)

	cl := c.Clone()
	assert.Equal(t, c.CacheSize(), cl.CacheSize())
	for _, k := range cl.cacheKey {
		assert.Equal(t, uint32(emptyCacheKey), k)
	}
	assert.Equal(t, c.GetTransitionCost(1, 2), cl.GetTransitionCost(1, 2))
}

func TestConnector_TooShort(t *testing.T) {
	_, err := New(make([]byte, 6), DefaultCacheSize)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooShort))
}

func TestConnector_BadMagic(t *testing.T) {
	data, err := NewBuilder([][]int{{1, 2}, {3, 4}}, 1).Build()
	require.NoError(t, err)
	binary.LittleEndian.PutUint16(data, 0x1234)

	_, err = New(data, DefaultCacheSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadMagic)
	assert.Contains(t, err.Error(), "0x1234")
	assert.Contains(t, err.Error(), "0xcdab")

	var fe *binfmt.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "connector", fe.Component)
}

func TestConnector_NotSquare(t *testing.T) {
	data, err := NewBuilder([][]int{{1, 2}, {3, 4}}, 1).Build()
	require.NoError(t, err)
	binary.LittleEndian.PutUint16(data[6:], 3)

	_, err = New(data, DefaultCacheSize)
	assert.ErrorIs(t, err, ErrNotSquare)
}

func TestConnector_ZeroResolution(t *testing.T) {
	data, err := NewBuilder([][]int{{1, 2}, {3, 4}}, 1).Build()
	require.NoError(t, err)
	binary.LittleEndian.PutUint16(data[2:], 0)

	_, err = New(data, DefaultCacheSize)
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestConnector_Misaligned(t *testing.T) {
	w := binfmt.NewWriter(64)
	w.PutUint16(Magic)
	w.PutUint16(1)
	w.PutUint16(2)
	w.PutUint16(2)
	w.PutUint16(10) // default costs
	w.PutUint16(20)

	// Row 0 with an odd values_size pushes row 1 off alignment.
	w.PutUint16(4)
	w.PutUint16(3)
	w.PutBytes([]byte{0x01, 0, 0, 0})
	w.PutBytes([]byte{0x01, 0, 0, 0})
	w.PutBytes([]byte{5, 0, 0})

	w.PutUint16(0)
	w.PutUint16(0)
	w.PutBytes([]byte{0, 0, 0, 0})

	_, err := New(w.Bytes(), DefaultCacheSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMisaligned)
	assert.Contains(t, err.Error(), "chunk bits")
	assert.Contains(t, err.Error(), "row 1")
}

func TestConnector_Truncated(t *testing.T) {
	costs := testutil.NewRNG(9).CostMatrix(20, 0.4, 3000)
	data, err := NewBuilder(costs, 1).Build()
	require.NoError(t, err)

	_, err = New(data[:len(data)-4], DefaultCacheSize)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = New(append(append([]byte{}, data...), 0, 0, 0, 0), DefaultCacheSize)
	assert.ErrorIs(t, err, ErrTrailingData)
}

func TestConnector_ValuesShorterThanBits(t *testing.T) {
	w := binfmt.NewWriter(64)
	w.PutUint16(Magic)
	w.PutUint16(1)
	w.PutUint16(2)
	w.PutUint16(2)
	w.PutUint16(10)
	w.PutUint16(20)
	for i := 0; i < 2; i++ {
		w.PutUint16(4)
		w.PutUint16(0)
		w.PutBytes([]byte{0x01, 0, 0, 0})
		w.PutBytes([]byte{0x03, 0, 0, 0})
	}

	_, err := New(w.Bytes(), DefaultCacheSize)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// header 8, default costs 4, row sizes 4, chunk bits 4, compact bits 4.
	var fe *binfmt.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 24, fe.Offset)
	assert.Contains(t, err.Error(), "at offset 24")
}

func TestConnector_CacheSize(t *testing.T) {
	data, err := NewBuilder([][]int{{1}}, 1).Build()
	require.NoError(t, err)

	for _, size := range []int{0, -1, 3, 1000} {
		_, err := New(data, size)
		assert.ErrorIs(t, err, ErrCacheSize, "size %d", size)
	}
	for _, size := range []int{1, 2, 1024} {
		c, err := New(data, size)
		require.NoError(t, err)
		assert.Equal(t, size, c.CacheSize())
	}
}

func TestConnector_CacheTransparencyProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("cached cost equals uncached decode", prop.ForAll(
		func(seed int64, n int, cacheBits uint, queries []uint32) bool {
			costs := testutil.NewRNG(seed).CostMatrix(n, 0.25, 4000)
			data, err := NewBuilder(costs, 1).Build()
			if err != nil {
				return false
			}
			c, err := New(data, 1<<cacheBits)
			if err != nil {
				return false
			}
			for _, q := range queries {
				rid, lid := uint16(int(q>>16)%n), uint16(int(q&0xFFFF)%n)
				got := c.GetTransitionCost(rid, lid)
				if got != c.lookup(rid, lid) || got != costs[rid][lid] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 50),
		gen.UIntRange(0, 6),
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}

func BenchmarkConnector_GetTransitionCost(b *testing.B) {
	costs := testutil.NewRNG(1).CostMatrix(500, 0.1, 8000)
	c := buildConnector(b, costs, 1, DefaultCacheSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.GetTransitionCost(uint16(i%500), uint16((i/500)%500))
	}
}
