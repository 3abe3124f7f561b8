package collocation

import (
	"io"

	"github.com/hupe1980/imecore/existence"
	"github.com/hupe1980/imecore/internal/hash"
)

// DataManager provides the serialized collocation filters.
type DataManager interface {
	CollocationData() []byte
	CollocationSuppressionData() []byte
}

// Filter reports known left/right word pairs.
type Filter struct {
	filter *existence.Filter
}

// New parses a serialized collocation filter.
func New(data []byte) (*Filter, error) {
	f, err := existence.Read(data)
	if err != nil {
		return nil, err
	}
	return &Filter{filter: f}, nil
}

// NewFromDataManager parses the collocation filter held by dm.
func NewFromDataManager(dm DataManager) (*Filter, error) {
	return New(dm.CollocationData())
}

// Exists reports whether left followed by right is a known collocation.
// An empty side never matches.
func (f *Filter) Exists(left, right string) bool {
	if f == nil || f.filter == nil || left == "" || right == "" {
		return false
	}
	return f.filter.Exists(PairFingerprint(left, right))
}

// PairFingerprint returns the hash stored for a left/right pair.
func PairFingerprint(left, right string) uint64 {
	return hash.Fingerprint(left + right)
}

// SuppressionFilter reports value/key pairs that must not be offered.
type SuppressionFilter struct {
	filter *existence.Filter
}

// NewSuppression parses a serialized suppression filter.
func NewSuppression(data []byte) (*SuppressionFilter, error) {
	f, err := existence.Read(data)
	if err != nil {
		return nil, err
	}
	return &SuppressionFilter{filter: f}, nil
}

// NewSuppressionFromDataManager parses the suppression filter held by dm.
func NewSuppressionFromDataManager(dm DataManager) (*SuppressionFilter, error) {
	return NewSuppression(dm.CollocationSuppressionData())
}

// Exists reports whether value is suppressed for key.
func (f *SuppressionFilter) Exists(value, key string) bool {
	if f == nil || f.filter == nil {
		return false
	}
	return f.filter.Exists(SuppressionFingerprint(value, key))
}

// SuppressionFingerprint returns the hash stored for a value/key pair.
func SuppressionFingerprint(value, key string) uint64 {
	return hash.Fingerprint(value + "\t" + key)
}

// Builder compiles pairs into a serialized filter. The same builder serves
// both filters; pick the Add method that matches the target.
type Builder struct {
	b *existence.Builder
}

// NewBuilder returns a Builder sized for numPairs at errorRate.
func NewBuilder(numPairs int, errorRate float64) (*Builder, error) {
	numPairs = max(numPairs, 1)
	b, err := existence.CreateOptimal(existence.MinFilterSizeInBytesForErrorRate(errorRate, numPairs), numPairs)
	if err != nil {
		return nil, err
	}
	return &Builder{b: b}, nil
}

// AddPair inserts a collocation.
func (b *Builder) AddPair(left, right string) {
	b.b.Insert(PairFingerprint(left, right))
}

// AddSuppression inserts a suppressed value/key pair.
func (b *Builder) AddSuppression(value, key string) {
	b.b.Insert(SuppressionFingerprint(value, key))
}

// Bytes returns the serialized filter.
func (b *Builder) Bytes() []byte { return b.b.Bytes() }

// WriteTo writes the serialized filter to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) { return b.b.WriteTo(w) }
