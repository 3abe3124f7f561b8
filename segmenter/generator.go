package segmenter

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/imecore/internal/bitarray"
	"github.com/hupe1980/imecore/internal/conv"
)

// BoundaryFunc reports whether a boundary falls between a node with right id
// rid and a following node with left id lid.
type BoundaryFunc func(rid, lid int) bool

// Penalty is one entry of the boundary penalty table.
type Penalty struct {
	Prefix uint16
	Suffix uint16
}

// Tables is the output of Generate.
type Tables struct {
	CompressedLSize int
	CompressedRSize int
	LTable          []uint16
	RTable          []uint16
	BitArray        *bitarray.BitArray
}

// Generate evaluates isBoundary over the (lsize+1) x (rsize+1) id grid,
// merges identical rows and columns, and returns the compressed tables.
func Generate(lsize, rsize int, isBoundary BoundaryFunc) (*Tables, error) {
	if lsize < 0 || rsize < 0 || lsize >= 0xFFFF || rsize >= 0xFFFF {
		return nil, fmt.Errorf("segmenter: invalid sizes %d x %d", lsize, rsize)
	}

	rowOf := func(rid int) *roaring.Bitmap {
		bm := roaring.New()
		for lid := 0; lid <= rsize; lid++ {
			if isBoundary(rid, lid) {
				bm.Add(uint32(lid))
			}
		}
		return bm
	}
	colOf := func(lid int) *roaring.Bitmap {
		bm := roaring.New()
		for rid := 0; rid <= lsize; rid++ {
			if isBoundary(rid, lid) {
				bm.Add(uint32(rid))
			}
		}
		return bm
	}

	lTable, lReps, err := dedup(lsize+1, rowOf)
	if err != nil {
		return nil, err
	}
	rTable, rReps, err := dedup(rsize+1, colOf)
	if err != nil {
		return nil, err
	}

	t := &Tables{
		CompressedLSize: len(lReps),
		CompressedRSize: len(rReps),
		LTable:          lTable,
		RTable:          rTable,
		BitArray:        bitarray.New(len(lReps) * len(rReps)),
	}
	for r, lid := range rReps {
		for l, rid := range lReps {
			if isBoundary(rid, lid) {
				t.BitArray.Set(l + t.CompressedLSize*r)
			}
		}
	}
	return t, nil
}

// dedup assigns compressed ids to n vectors in order of first appearance and
// returns the id table plus one representative original id per compressed id.
func dedup(n int, vector func(int) *roaring.Bitmap) ([]uint16, []int, error) {
	table := make([]uint16, n)
	seen := make(map[string]uint16)
	var reps []int
	for i := 0; i < n; i++ {
		bm := vector(i)
		bm.RunOptimize()
		key, err := bm.ToBytes()
		if err != nil {
			return nil, nil, fmt.Errorf("segmenter: serialize vector %d: %w", i, err)
		}
		id, ok := seen[string(key)]
		if !ok {
			if id, err = conv.IntToUint16(len(reps)); err != nil {
				return nil, nil, fmt.Errorf("segmenter: compressed id for vector %d: %w", i, err)
			}
			seen[string(key)] = id
			reps = append(reps, i)
		}
		table[i] = id
	}
	return table, reps, nil
}

// SizeInfo returns the serialized size info record.
func (t *Tables) SizeInfo() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:], uint32(t.CompressedLSize))
	binary.LittleEndian.PutUint32(b[4:], uint32(t.CompressedRSize))
	return b
}

// LTableBytes returns the serialized L table.
func (t *Tables) LTableBytes() []byte { return encodeUint16s(t.LTable) }

// RTableBytes returns the serialized R table.
func (t *Tables) RTableBytes() []byte { return encodeUint16s(t.RTable) }

// BitArrayBytes returns the serialized bit array.
func (t *Tables) BitArrayBytes() []byte { return t.BitArray.Bytes() }

// Data assembles runtime Data from the generated tables.
func (t *Tables) Data(penalties []Penalty, particleID uint16) Data {
	return Data{
		SizeInfo:   t.SizeInfo(),
		LTable:     t.LTableBytes(),
		RTable:     t.RTableBytes(),
		BitArray:   t.BitArrayBytes(),
		Boundary:   EncodePenalties(penalties),
		ParticleID: particleID,
	}
}

// EncodePenalties serializes the boundary penalty table.
func EncodePenalties(penalties []Penalty) []byte {
	b := make([]byte, 0, 4*len(penalties))
	for _, p := range penalties {
		b = binary.LittleEndian.AppendUint16(b, p.Prefix)
		b = binary.LittleEndian.AppendUint16(b, p.Suffix)
	}
	return b
}

func encodeUint16s(v []uint16) []byte {
	b := make([]byte, 0, 2*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint16(b, x)
	}
	return b
}
