package connector

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/imecore/internal/binfmt"
	"github.com/hupe1980/imecore/internal/succinct"
)

const (
	// Magic identifies connector data.
	Magic = 0xCDAB

	// InvalidCost is returned for transitions marked as impossible.
	InvalidCost = 30000

	// DefaultCacheSize is the cache size used when none is configured.
	DefaultCacheSize = 1024

	headerSize       = 8
	invalidByteValue = 255
	emptyCacheKey    = 0xFFFFFFFF
	component        = "connector"
)

// Metadata is the connector header.
type Metadata struct {
	Magic      uint16
	Resolution uint16
	RSize      uint16
	LSize      uint16
}

// NumChunkBits is the number of 8-column groups per row.
func (m Metadata) NumChunkBits() int {
	return (int(m.LSize) + 7) / 8
}

// ChunkBitsSize is the byte size of a row's chunk bits, rounded to 32 bits.
func (m Metadata) ChunkBitsSize() int {
	return (m.NumChunkBits() + 31) / 32 * 4
}

// DefaultCostArraySize is the number of stored default costs, rounded up to
// an even count so the first row starts 32-bit aligned.
func (m Metadata) DefaultCostArraySize() int {
	return int(m.RSize) + int(m.RSize)%2
}

// DataManager provides the compiled connector data.
type DataManager interface {
	ConnectorData() []byte
}

type row struct {
	chunkBits   succinct.Index
	compactBits succinct.Index
	values      []byte
}

// Connector returns transition costs between POS ids.
type Connector struct {
	meta        Metadata
	rows        []row
	defaultCost []byte
	resolution  int
	oneByte     bool

	cacheMask  uint32
	cacheKey   []uint32
	cacheValue []int32
}

// NewFromDataManager builds a Connector from the data manager's connector section.
func NewFromDataManager(dm DataManager, cacheSize int) (*Connector, error) {
	return New(dm.ConnectorData(), cacheSize)
}

// New parses and validates data. data is not copied and must outlive the
// Connector. cacheSize must be a positive power of two.
func New(data []byte, cacheSize int) (*Connector, error) {
	if cacheSize <= 0 || cacheSize&(cacheSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrCacheSize, cacheSize)
	}

	meta, err := ReadMetadata(data)
	if err != nil {
		return nil, err
	}

	r := binfmt.NewReader(component, data)
	_ = r.Bytes(headerSize, "header")
	defaultCost := r.AlignedBytes(2*meta.DefaultCostArraySize(), 4, "default costs")

	c := &Connector{
		meta:        meta,
		rows:        make([]row, meta.RSize),
		defaultCost: defaultCost,
		resolution:  int(meta.Resolution),
		oneByte:     meta.Resolution != 1,
	}

	numChunkBits := meta.NumChunkBits()
	chunkBitsSize := meta.ChunkBitsSize()
	for i := range c.rows {
		compactBitsSize := int(r.Uint16("compact_bits_size"))
		valuesSize := int(r.Uint16("values_size"))
		chunkBits := r.AlignedBytes(chunkBitsSize, 4, "chunk bits")
		compactOffset := r.Pos()
		compactBits := r.AlignedBytes(compactBitsSize, 4, "compact bits")
		valuesOffset := r.Pos()
		values := r.AlignedBytes(valuesSize, 4, "values")
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		rw := &c.rows[i]
		rw.chunkBits.Init(chunkBits, numChunkBits, 0, 0)
		rw.compactBits.Init(compactBits, 8*len(compactBits), 0, 0)
		rw.values = values

		if err := c.validateRow(i, rw, compactOffset, valuesOffset); err != nil {
			return nil, err
		}
	}

	r.ExpectEnd()
	if err := r.Err(); err != nil {
		return nil, err
	}

	c.initCache(cacheSize)
	return c, nil
}

// ReadMetadata parses and validates the 8-byte header.
func ReadMetadata(data []byte) (Metadata, error) {
	r := binfmt.NewReader(component, data)
	r.RequireLen(headerSize, "header")
	m := Metadata{
		Magic:      r.Uint16("magic"),
		Resolution: r.Uint16("resolution"),
		RSize:      r.Uint16("rsize"),
		LSize:      r.Uint16("lsize"),
	}
	if err := r.Err(); err != nil {
		return Metadata{}, err
	}
	if m.Magic != Magic {
		return Metadata{}, binfmt.Errorf(component, 0, ErrBadMagic, "got 0x%04x, want 0x%04x", m.Magic, Magic)
	}
	if m.RSize != m.LSize {
		return Metadata{}, binfmt.Errorf(component, 4, ErrNotSquare, "rsize %d != lsize %d", m.RSize, m.LSize)
	}
	if m.Resolution == 0 {
		return Metadata{}, binfmt.Errorf(component, 2, ErrInvalidResolution, "resolution must be positive")
	}
	return m, nil
}

// validateRow checks that every cell reachable through the bit indices maps
// to a stored value, so lookups never read out of bounds. The offsets locate
// the row's compact bits and values in the connector data.
func (c *Connector) validateRow(i int, rw *row, compactOffset, valuesOffset int) error {
	if need := 8 * rw.chunkBits.Ones(); need > rw.compactBits.Size() {
		return binfmt.Errorf(component, compactOffset, ErrOutOfBounds,
			"row %d: %d chunks need %d compact bits, have %d", i, rw.chunkBits.Ones(), need, rw.compactBits.Size())
	}
	width := 2
	if c.oneByte {
		width = 1
	}
	if need := width * rw.compactBits.Ones(); need > len(rw.values) {
		return binfmt.Errorf(component, valuesOffset, ErrOutOfBounds,
			"row %d: %d cells need %d value bytes, have %d", i, rw.compactBits.Ones(), need, len(rw.values))
	}
	return nil
}

func (c *Connector) initCache(size int) {
	c.cacheMask = uint32(size - 1)
	c.cacheKey = make([]uint32, size)
	c.cacheValue = make([]int32, size)
	c.ClearCache()
}

// GetTransitionCost returns the cost of a transition from a node whose right
// POS id is rid to a node whose left POS id is lid.
func (c *Connector) GetTransitionCost(rid, lid uint16) int {
	key := uint32(rid)<<16 | uint32(lid)
	bucket := (3*uint32(rid) + uint32(lid)) & c.cacheMask
	if c.cacheKey[bucket] == key {
		return int(c.cacheValue[bucket])
	}
	cost := c.lookup(rid, lid)
	c.cacheKey[bucket] = key
	c.cacheValue[bucket] = int32(cost)
	return cost
}

// lookup decodes a cell without touching the cache.
func (c *Connector) lookup(rid, lid uint16) int {
	rw := &c.rows[rid]
	chunk := int(lid) >> 3
	if !rw.chunkBits.Get(chunk) {
		return c.DefaultCost(rid)
	}
	pos := rw.chunkBits.Rank1(chunk)*8 + int(lid)&7
	if !rw.compactBits.Get(pos) {
		return c.DefaultCost(rid)
	}
	vi := rw.compactBits.Rank1(pos)
	if c.oneByte {
		v := rw.values[vi]
		if v == invalidByteValue {
			return InvalidCost
		}
		return int(v) * c.resolution
	}
	return int(binary.LittleEndian.Uint16(rw.values[2*vi:]))
}

// DefaultCost returns the cost used for cells absent from row rid.
func (c *Connector) DefaultCost(rid uint16) int {
	return int(binary.LittleEndian.Uint16(c.defaultCost[2*int(rid):]))
}

// Resolution returns the quantization step of stored costs.
func (c *Connector) Resolution() int { return c.resolution }

// Size returns the number of POS ids on each side of the matrix.
func (c *Connector) Size() int { return len(c.rows) }

// Metadata returns the parsed header.
func (c *Connector) Metadata() Metadata { return c.meta }

// CacheSize returns the number of cache slots.
func (c *Connector) CacheSize() int { return len(c.cacheKey) }

// ClearCache empties the transition cost cache.
func (c *Connector) ClearCache() {
	for i := range c.cacheKey {
		c.cacheKey[i] = emptyCacheKey
	}
}

// Clone returns a Connector sharing the parsed rows with an empty cache of
// the same size.
func (c *Connector) Clone() *Connector {
	cl := *c
	cl.initCache(len(c.cacheKey))
	return &cl
}
