package succinct

import (
	"encoding/binary"
	"math/bits"
	"sort"
)

const wordBits = 32

// Index answers rank and select queries over a bit buffer.
type Index struct {
	data     []byte
	numBits  int
	numWords int

	// ones[w] is the number of set bits in words [0, w).
	ones []uint32

	lb0, lb1     int
	select0Cache []int32
	select1Cache []int32
}

// New builds an index over the first numBits bits of data.
//
// lb0CacheSize and lb1CacheSize sample every lb-th zero/one to narrow select
// queries; zero disables the corresponding cache. numBits must not exceed
// 8*len(data).
func New(data []byte, numBits, lb0CacheSize, lb1CacheSize int) *Index {
	s := &Index{}
	s.Init(data, numBits, lb0CacheSize, lb1CacheSize)
	return s
}

// Init (re)builds the auxiliary arrays. It does not copy data.
func (s *Index) Init(data []byte, numBits, lb0CacheSize, lb1CacheSize int) {
	if numBits > 8*len(data) {
		numBits = 8 * len(data)
	}
	s.data = data
	s.numBits = numBits
	s.numWords = (numBits + wordBits - 1) / wordBits
	s.lb0 = lb0CacheSize
	s.lb1 = lb1CacheSize

	s.ones = make([]uint32, s.numWords+1)
	var total uint32
	for w := 0; w < s.numWords; w++ {
		s.ones[w] = total
		total += uint32(bits.OnesCount32(s.maskedWord(w)))
	}
	s.ones[s.numWords] = total

	s.select0Cache = s.buildSelectCache(lb0CacheSize, false)
	s.select1Cache = s.buildSelectCache(lb1CacheSize, true)
}

// Reset drops the auxiliary arrays. The index must be re-initialized before use.
func (s *Index) Reset() {
	s.data = nil
	s.numBits = 0
	s.numWords = 0
	s.ones = nil
	s.select0Cache = nil
	s.select1Cache = nil
}

// Size returns the number of indexed bits.
func (s *Index) Size() int { return s.numBits }

// Ones returns the number of set bits.
func (s *Index) Ones() int { return int(s.ones[s.numWords]) }

// Zeros returns the number of cleared bits.
func (s *Index) Zeros() int { return s.numBits - s.Ones() }

// Get reports whether bit i is set.
func (s *Index) Get(i int) bool {
	return s.data[i>>3]&(1<<(uint(i)&7)) != 0
}

// Rank1 returns the number of set bits in [0, n).
func (s *Index) Rank1(n int) int {
	w := n / wordBits
	r := int(s.ones[w])
	if rem := n % wordBits; rem != 0 {
		r += bits.OnesCount32(s.word(w) & (1<<uint(rem) - 1))
	}
	return r
}

// Rank0 returns the number of cleared bits in [0, n).
func (s *Index) Rank0(n int) int {
	return n - s.Rank1(n)
}

// Select1 returns the position of the n-th (1-origin) set bit.
func (s *Index) Select1(n int) int {
	lo, hi := s.selectRange(n, s.lb1, s.select1Cache)
	w := lo + sort.Search(hi-lo+1, func(i int) bool {
		return int(s.ones[lo+i+1]) >= n
	})
	return w*wordBits + nthSetBit(s.word(w), n-int(s.ones[w]))
}

// Select0 returns the position of the n-th (1-origin) cleared bit.
func (s *Index) Select0(n int) int {
	lo, hi := s.selectRange(n, s.lb0, s.select0Cache)
	w := lo + sort.Search(hi-lo+1, func(i int) bool {
		return s.zerosBefore(lo+i+1) >= n
	})
	return w*wordBits + nthSetBit(^s.word(w), n-s.zerosBefore(w))
}

func (s *Index) zerosBefore(w int) int {
	return w*wordBits - int(s.ones[w])
}

// selectRange narrows the word range holding the n-th bit using a cache.
func (s *Index) selectRange(n, lb int, cache []int32) (int, int) {
	lo, hi := 0, s.numWords-1
	if lb <= 0 || len(cache) == 0 {
		return lo, hi
	}
	k := n / lb
	if k < len(cache) {
		lo = int(cache[k])
	} else {
		lo = int(cache[len(cache)-1])
	}
	if k+1 < len(cache) {
		hi = int(cache[k+1])
	}
	return lo, hi
}

// buildSelectCache records, for k = 0, 1, 2, ..., the word holding the
// (k*lb)-th bit of the requested kind. Entry 0 is always word 0.
func (s *Index) buildSelectCache(lb int, ones bool) []int32 {
	if lb <= 0 || s.numWords == 0 {
		return nil
	}
	cache := []int32{0}
	next := lb
	for w := 0; w < s.numWords; w++ {
		var end int
		if ones {
			end = int(s.ones[w+1])
		} else {
			end = s.zerosBefore(w + 1)
		}
		for next <= end {
			cache = append(cache, int32(w))
			next += lb
		}
	}
	return cache
}

// word returns word w, tolerating a short final word.
func (s *Index) word(w int) uint32 {
	off := w * 4
	if off+4 <= len(s.data) {
		return binary.LittleEndian.Uint32(s.data[off:])
	}
	var v uint32
	for i := 0; off+i < len(s.data) && i < 4; i++ {
		v |= uint32(s.data[off+i]) << (8 * uint(i))
	}
	return v
}

// maskedWord is word with bits at or past numBits cleared.
func (s *Index) maskedWord(w int) uint32 {
	v := s.word(w)
	if end := s.numBits - w*wordBits; end < wordBits {
		v &= 1<<uint(end) - 1
	}
	return v
}

// nthSetBit returns the offset of the k-th (1-origin) set bit of x.
func nthSetBit(x uint32, k int) int {
	for ; k > 1; k-- {
		x &= x - 1
	}
	return bits.TrailingZeros32(x)
}
