package segmenter

import (
	"encoding/binary"

	"github.com/hupe1980/imecore/internal/binfmt"
	"github.com/hupe1980/imecore/internal/bitarray"
)

const component = "segmenter"

var (
	// ErrOutOfBounds is returned when a table entry addresses past its target.
	ErrOutOfBounds = binfmt.ErrOutOfBounds
	// ErrTooShort is returned when an artifact is smaller than its declared size.
	ErrTooShort = binfmt.ErrTooShort
	// ErrInvalid is returned for malformed size info or tables.
	ErrInvalid = binfmt.ErrInvalid
)

// Data holds the compiled segmenter artifacts. The slices are views into the
// data file and must outlive the Segmenter.
type Data struct {
	SizeInfo []byte
	LTable   []byte
	RTable   []byte
	BitArray []byte
	Boundary []byte

	// ParticleID is the POS id of particles allowed to start a segment.
	ParticleID uint16
}

// DataManager provides the compiled segmenter artifacts.
type DataManager interface {
	SegmenterData() Data
}

// Segmenter answers boundary queries.
type Segmenter struct {
	lSize, rSize    int
	compressedLSize int
	compressedRSize int
	lTable, rTable  []byte
	bitArray        []byte
	boundary        []byte
	particleID      uint16
}

// NewFromDataManager builds a Segmenter from the data manager's artifacts.
func NewFromDataManager(dm DataManager) (*Segmenter, error) {
	return New(dm.SegmenterData())
}

// New validates d and returns a Segmenter over it.
func New(d Data) (*Segmenter, error) {
	r := binfmt.NewReader(component, d.SizeInfo)
	r.RequireLen(8, "size info")
	cl := int(r.Uint32("compressed_lsize"))
	cr := int(r.Uint32("compressed_rsize"))
	r.ExpectEnd()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if cl <= 0 || cl > 0x10000 {
		return nil, binfmt.Errorf(component, 0, ErrInvalid, "size info: compressed lsize %d", cl)
	}
	if cr <= 0 || cr > 0x10000 {
		return nil, binfmt.Errorf(component, 4, ErrInvalid, "size info: compressed rsize %d", cr)
	}

	if err := checkTable("L table", d.LTable, cl); err != nil {
		return nil, err
	}
	if err := checkTable("R table", d.RTable, cr); err != nil {
		return nil, err
	}
	if need := (cl*cr + 7) / 8; len(d.BitArray) < need {
		return nil, binfmt.Errorf(component, len(d.BitArray), ErrTooShort, "bit array has %d bytes, need %d", len(d.BitArray), need)
	}

	s := &Segmenter{
		lSize:           len(d.LTable)/2 - 1,
		rSize:           len(d.RTable)/2 - 1,
		compressedLSize: cl,
		compressedRSize: cr,
		lTable:          d.LTable,
		rTable:          d.RTable,
		bitArray:        d.BitArray,
		boundary:        d.Boundary,
		particleID:      d.ParticleID,
	}

	if rem := len(d.Boundary) % 4; rem != 0 {
		return nil, binfmt.Errorf(component, len(d.Boundary)-rem, ErrInvalid, "boundary table size %d is not a multiple of 4", len(d.Boundary))
	}
	if n := max(s.lSize, s.rSize) + 1; len(d.Boundary)/4 < n {
		return nil, binfmt.Errorf(component, len(d.Boundary), ErrTooShort, "boundary table has %d entries, need %d", len(d.Boundary)/4, n)
	}
	return s, nil
}

func checkTable(name string, table []byte, limit int) error {
	if len(table) < 2 || len(table)%2 != 0 {
		return binfmt.Errorf(component, len(table)&^1, ErrInvalid, "%s size %d is not a positive multiple of 2", name, len(table))
	}
	for off := 0; off < len(table); off += 2 {
		if id := int(binary.LittleEndian.Uint16(table[off:])); id >= limit {
			return binfmt.Errorf(component, off, ErrOutOfBounds, "%s entry %d >= %d", name, id, limit)
		}
	}
	return nil
}

// IsBoundaryIDs reports the table decision for a node with right id rid
// followed by a node with left id lid.
func (s *Segmenter) IsBoundaryIDs(rid, lid uint16) bool {
	l := int(binary.LittleEndian.Uint16(s.lTable[2*int(rid):]))
	r := int(binary.LittleEndian.Uint16(s.rTable[2*int(lid):]))
	return bitarray.Get(s.bitArray, l+s.compressedLSize*r)
}

// IsBoundary reports whether a segment boundary falls between lnode and rnode.
func (s *Segmenter) IsBoundary(lnode, rnode *Node, isSingleSegment bool) bool {
	if lnode.Type == BOSNode || rnode.Type == EOSNode {
		return true
	}
	if isSingleSegment {
		return false
	}
	if lnode.Attributes.Has(StartsWithParticle) && lnode.Rid == s.particleID {
		return false
	}
	return s.IsBoundaryIDs(lnode.Rid, rnode.Lid)
}

// PrefixPenalty returns the penalty for a segment starting with left id lid.
func (s *Segmenter) PrefixPenalty(lid uint16) int32 {
	return int32(binary.LittleEndian.Uint16(s.boundary[4*int(lid):]))
}

// SuffixPenalty returns the penalty for a segment ending with right id rid.
func (s *Segmenter) SuffixPenalty(rid uint16) int32 {
	return int32(binary.LittleEndian.Uint16(s.boundary[4*int(rid)+2:]))
}

// ParticleID returns the POS id of particles allowed to start a segment.
func (s *Segmenter) ParticleID() uint16 { return s.particleID }

// LSize returns the number of right ids covered by the L table, minus one.
func (s *Segmenter) LSize() int { return s.lSize }

// RSize returns the number of left ids covered by the R table, minus one.
func (s *Segmenter) RSize() int { return s.rSize }

// CompressedSize returns the deduplicated table dimensions.
func (s *Segmenter) CompressedSize() (int, int) {
	return s.compressedLSize, s.compressedRSize
}
