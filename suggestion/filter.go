package suggestion

import (
	"strings"

	"github.com/hupe1980/imecore/existence"
	"github.com/hupe1980/imecore/internal/hash"
)

// DataManager provides the serialized suggestion filter.
type DataManager interface {
	SuggestionFilterData() []byte
}

// Filter answers IsBadSuggestion. The zero value and a nil *Filter are both
// disabled and report every text as acceptable.
type Filter struct {
	filter *existence.Filter
}

// New parses a serialized filter.
func New(data []byte) (*Filter, error) {
	f, err := existence.Read(data)
	if err != nil {
		return nil, err
	}
	return &Filter{filter: f}, nil
}

// NewFromDataManager parses the filter held by dm.
func NewFromDataManager(dm DataManager) (*Filter, error) {
	return New(dm.SuggestionFilterData())
}

// Disabled returns a filter that never flags anything.
func Disabled() *Filter {
	return &Filter{}
}

// Enabled reports whether a filter is loaded.
func (f *Filter) Enabled() bool {
	return f != nil && f.filter != nil
}

// IsBadSuggestion reports whether text is on the block list.
func (f *Filter) IsBadSuggestion(text string) bool {
	if !f.Enabled() {
		return false
	}
	return f.filter.Exists(Fingerprint(text))
}

// Params returns the parameters of the loaded filter, or the zero value when
// disabled.
func (f *Filter) Params() existence.Params {
	if !f.Enabled() {
		return existence.Params{}
	}
	return f.filter.Params()
}

// Normalize lower-cases text the way entries are normalized at build time.
// Only letters with a Unicode lower-case mapping change, so kana and kanji
// pass through untouched.
func Normalize(text string) string {
	return strings.ToLower(text)
}

// Fingerprint returns the hash stored in the filter for text.
func Fingerprint(text string) uint64 {
	return hash.Fingerprint(Normalize(text))
}
