package connector

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hupe1980/imecore/internal/binfmt"
	"github.com/hupe1980/imecore/internal/conv"
)

// ErrInvalidMatrix is returned by the builder for malformed input matrices.
var ErrInvalidMatrix = errors.New("connector: invalid cost matrix")

// Builder compiles a dense cost matrix into connector data.
//
// The builder exists for tooling and tests; the runtime only reads its output.
type Builder struct {
	costs      [][]int
	resolution int
}

// NewBuilder returns a Builder for costs indexed [rid][lid]. A resolution of 1
// stores 2-byte costs; anything larger stores 1-byte multiples of resolution.
func NewBuilder(costs [][]int, resolution int) *Builder {
	return &Builder{costs: costs, resolution: resolution}
}

// Quantize returns the cost a Connector reports for a stored cell.
func Quantize(cost, resolution int) int {
	if cost >= InvalidCost {
		return InvalidCost
	}
	if resolution == 1 {
		return cost
	}
	q := (cost + resolution/2) / resolution
	if q >= invalidByteValue {
		q = invalidByteValue - 1
	}
	return q * resolution
}

// Build returns the compiled data.
func (b *Builder) Build() ([]byte, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	n := len(b.costs)
	meta := Metadata{
		Magic:      Magic,
		Resolution: uint16(b.resolution),
		RSize:      uint16(n),
		LSize:      uint16(n),
	}

	w := binfmt.NewWriter(headerSize + 2*meta.DefaultCostArraySize() + n*(4+meta.ChunkBitsSize()))
	w.PutUint16(meta.Magic)
	w.PutUint16(meta.Resolution)
	w.PutUint16(meta.RSize)
	w.PutUint16(meta.LSize)

	defaults := make([]int, n)
	for rid, row := range b.costs {
		defaults[rid] = mostFrequent(row)
		w.PutUint16(uint16(clampCost(defaults[rid])))
	}
	w.Pad(4)

	for rid, row := range b.costs {
		chunkBits, compactBits, values := b.encodeRow(meta, row, defaults[rid])
		compactSize, err := conv.IntToUint16(len(compactBits))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d compact bits: %w", ErrInvalidMatrix, rid, err)
		}
		valuesSize, err := conv.IntToUint16(len(values))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d values: %w", ErrInvalidMatrix, rid, err)
		}
		w.PutUint16(compactSize)
		w.PutUint16(valuesSize)
		w.PutBytes(chunkBits)
		w.PutBytes(compactBits)
		w.PutBytes(values)
	}
	return w.Bytes(), w.Err()
}

// WriteTo writes the compiled data to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	data, err := b.Build()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (b *Builder) validate() error {
	n := len(b.costs)
	if n == 0 || n >= 0xFFFF {
		return fmt.Errorf("%w: size %d", ErrInvalidMatrix, n)
	}
	if b.resolution <= 0 || b.resolution > 0xFFFF {
		return fmt.Errorf("%w: resolution %d", ErrInvalidMatrix, b.resolution)
	}
	for rid, row := range b.costs {
		if len(row) != n {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMatrix, rid, len(row), n)
		}
		for lid, cost := range row {
			if cost < 0 {
				return fmt.Errorf("%w: negative cost at (%d, %d)", ErrInvalidMatrix, rid, lid)
			}
		}
	}
	return nil
}

func (b *Builder) encodeRow(meta Metadata, row []int, def int) (chunkBits, compactBits, values []byte) {
	chunkBits = make([]byte, meta.ChunkBitsSize())
	for chunk := 0; chunk < meta.NumChunkBits(); chunk++ {
		var group byte
		for k := 0; k < 8; k++ {
			lid := chunk*8 + k
			if lid < len(row) && row[lid] != def {
				group |= 1 << k
			}
		}
		if group == 0 {
			continue
		}
		chunkBits[chunk/8] |= 1 << (chunk % 8)
		compactBits = append(compactBits, group)
		for k := 0; k < 8; k++ {
			if group&(1<<k) == 0 {
				continue
			}
			values = b.appendValue(values, row[chunk*8+k])
		}
	}
	return chunkBits, pad4(compactBits), pad4(values)
}

func (b *Builder) appendValue(values []byte, cost int) []byte {
	if b.resolution == 1 {
		c := clampCost(cost)
		return append(values, byte(c), byte(c>>8))
	}
	if cost >= InvalidCost {
		return append(values, invalidByteValue)
	}
	return append(values, byte(Quantize(cost, b.resolution)/b.resolution))
}

func clampCost(cost int) int {
	if cost > InvalidCost {
		return InvalidCost
	}
	return cost
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

// mostFrequent returns the mode of row, preferring the smallest value on ties.
func mostFrequent(row []int) int {
	counts := make(map[int]int, len(row))
	for _, c := range row {
		counts[c]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}
