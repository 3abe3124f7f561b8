package existence

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/imecore/internal/hash"
)

const (
	// MaxHashes is the largest supported number of probes.
	MaxHashes = 7

	headerSize = 12
	component  = "existence"
)

// ErrInvalidParams is returned for unusable filter parameters.
var ErrInvalidParams = errors.New("existence: invalid filter parameters")

// Params describes a filter.
type Params struct {
	// Size is the number of bits.
	Size uint32
	// ExpectedNelts is the number of insertions the filter was sized for.
	ExpectedNelts uint32
	// NumHashes is the number of probes per hash, in [1, MaxHashes].
	NumHashes int32
}

// Validate checks p.
func (p Params) Validate() error {
	if p.Size == 0 {
		return fmt.Errorf("%w: size must be positive", ErrInvalidParams)
	}
	if p.NumHashes < 1 || p.NumHashes > MaxHashes {
		return fmt.Errorf("%w: num_hashes %d not in [1, %d]", ErrInvalidParams, p.NumHashes, MaxHashes)
	}
	return nil
}

// ByteSize returns the serialized size of a filter with these parameters.
func (p Params) ByteSize() int {
	return headerSize + 4*numWords(p.Size)
}

// EstimatedFalsePositiveRate returns (1 - e^(-k*n/m))^k for the parameters.
func (p Params) EstimatedFalsePositiveRate() float64 {
	if p.Size == 0 || p.ExpectedNelts == 0 {
		return 0
	}
	k := float64(p.NumHashes)
	return math.Pow(1-math.Exp(-k*float64(p.ExpectedNelts)/float64(p.Size)), k)
}

// MinFilterSizeInBytesForErrorRate returns the smallest filter size in bytes
// that keeps the false positive rate at errorRate for numElements insertions,
// assuming the optimal number of probes.
func MinFilterSizeInBytesForErrorRate(errorRate float64, numElements int) int {
	if numElements < 1 {
		numElements = 1
	}
	if errorRate <= 0 || errorRate >= 1 {
		errorRate = 0.01
	}
	bits := math.Ceil(-float64(numElements) * math.Log(errorRate) / (math.Ln2 * math.Ln2))
	return int(math.Ceil(bits / 8))
}

// OptimalNumHashes returns round(m/n * ln 2) clamped to [1, MaxHashes].
func OptimalNumHashes(sizeBits, numElements int) int32 {
	if numElements < 1 {
		numElements = 1
	}
	k := math.Round(float64(sizeBits) / float64(numElements) * math.Ln2)
	return int32(min(max(k, 1), MaxHashes))
}

// probes returns the double-hashing seeds for h.
func probes(h uint64) (uint64, uint64) {
	m := hash.Mix(h)
	return m & 0xFFFFFFFF, m>>32 | 1
}

func numWords(size uint32) int {
	return int((uint64(size) + 31) / 32)
}
