package suggestion

import (
	"io"

	"github.com/hupe1980/imecore/existence"
)

// DefaultErrorRate is the false positive rate NewBuilder sizes for.
const DefaultErrorRate = 0.0001

// Builder compiles a block list into a serialized filter.
type Builder struct {
	b *existence.Builder
}

// NewBuilder returns a Builder sized for numWords entries at errorRate. A
// non-positive errorRate selects DefaultErrorRate.
func NewBuilder(numWords int, errorRate float64) (*Builder, error) {
	if errorRate <= 0 {
		errorRate = DefaultErrorRate
	}
	numWords = max(numWords, 1)
	b, err := existence.CreateOptimal(existence.MinFilterSizeInBytesForErrorRate(errorRate, numWords), numWords)
	if err != nil {
		return nil, err
	}
	return &Builder{b: b}, nil
}

// Add inserts word.
func (b *Builder) Add(word string) {
	b.b.Insert(Fingerprint(word))
}

// Count returns the number of added words.
func (b *Builder) Count() int { return b.b.Count() }

// Bytes returns the serialized filter.
func (b *Builder) Bytes() []byte { return b.b.Bytes() }

// WriteTo writes the serialized filter to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) { return b.b.WriteTo(w) }

// Build returns a Filter over the added words.
func (b *Builder) Build() *Filter {
	return &Filter{filter: b.b.Build()}
}
