package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	r.rand.Read(b)
	return b
}

// CostMatrix returns an n x n transition cost matrix indexed [rid][lid].
//
// Each row has a random default cost; a density fraction of the cells get an
// independent cost in [0, maxCost). This mirrors real connection tables where
// most cells of a row share one value.
func (r *RNG) CostMatrix(n int, density float64, maxCost int) [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := make([][]int, n)
	for rid := range m {
		row := make([]int, n)
		def := r.rand.Intn(maxCost)
		for lid := range row {
			if r.rand.Float64() < density {
				row[lid] = r.rand.Intn(maxCost)
			} else {
				row[lid] = def
			}
		}
		m[rid] = row
	}
	return m
}

// BoundaryMatrix returns a (lsize+1) x (rsize+1) boolean matrix indexed
// [rid][lid] built from rowClasses distinct row patterns and colClasses
// distinct column patterns, so that deduplication has something to find.
func (r *RNG) BoundaryMatrix(lsize, rsize, rowClasses, colClasses int) [][]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pattern := make([][]bool, rowClasses)
	for i := range pattern {
		pattern[i] = make([]bool, colClasses)
		for j := range pattern[i] {
			pattern[i][j] = r.rand.Intn(2) == 1
		}
	}
	colClass := make([]int, rsize+1)
	for lid := range colClass {
		colClass[lid] = r.rand.Intn(colClasses)
	}

	m := make([][]bool, lsize+1)
	for rid := range m {
		rc := r.rand.Intn(rowClasses)
		row := make([]bool, rsize+1)
		for lid := range row {
			row[lid] = pattern[rc][colClass[lid]]
		}
		m[rid] = row
	}
	return m
}

// Words returns n random lower-case ASCII words with lengths in [minLen, maxLen].
func (r *RNG) Words(n, minLen, maxLen int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := make([]string, n)
	for i := range words {
		l := minLen + r.rand.Intn(maxLen-minLen+1)
		b := make([]byte, l)
		for j := range b {
			b[j] = byte('a' + r.rand.Intn(26))
		}
		words[i] = string(b)
	}
	return words
}
