// Package datamanagertest builds small, complete data sets for tests and
// examples.
package datamanagertest

import (
	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/collocation"
	"github.com/hupe1980/imecore/connector"
	"github.com/hupe1980/imecore/datamanager"
	"github.com/hupe1980/imecore/segmenter"
	"github.com/hupe1980/imecore/suggestion"
	"github.com/hupe1980/imecore/testutil"
)

const (
	// NumPOS is the number of POS ids in a fixture.
	NumPOS = 40
	// ParticleID is the POS id of the particle rule.
	ParticleID = 7
	// Version is the data version of a fixture.
	Version = datamanager.EngineVersion + ".0.0"
)

// Fixture holds the source tables of a data set together with its sections,
// so tests can compare query results against the inputs.
type Fixture struct {
	Costs          [][]int
	Boundary       [][]bool
	Penalties      []segmenter.Penalty
	BadSuggestions []string
	Collocations   [][2]string
	Suppressions   [][2]string
	Sections       datamanager.Sections
}

// New builds a fixture from seed.
func New(seed int64) (*Fixture, error) {
	rng := testutil.NewRNG(seed)
	f := &Fixture{
		Costs:          rng.CostMatrix(NumPOS, 0.2, 8000),
		Boundary:       rng.BoundaryMatrix(NumPOS-1, NumPOS-1, 4, 6),
		BadSuggestions: []string{"badword", "ひどい", "Offensive"},
		Collocations:   [][2]string{{"ふかい", "きり"}, {"熱い", "お茶"}},
		Suppressions:   [][2]string{{"貴社", "きしゃ"}},
	}
	f.Boundary[ParticleID][0] = true

	f.Penalties = make([]segmenter.Penalty, NumPOS)
	for i := range f.Penalties {
		f.Penalties[i] = segmenter.Penalty{Prefix: uint16(i * 3), Suffix: uint16(i * 5)}
	}

	conn, err := connector.NewBuilder(f.Costs, 1).Build()
	if err != nil {
		return nil, err
	}

	tables, err := segmenter.Generate(NumPOS-1, NumPOS-1, func(rid, lid int) bool { return f.Boundary[rid][lid] })
	if err != nil {
		return nil, err
	}

	sugg, err := suggestion.NewBuilder(len(f.BadSuggestions), 0)
	if err != nil {
		return nil, err
	}
	for _, w := range f.BadSuggestions {
		sugg.Add(w)
	}

	coll, err := collocation.NewBuilder(len(f.Collocations), 0.0001)
	if err != nil {
		return nil, err
	}
	for _, p := range f.Collocations {
		coll.AddPair(p[0], p[1])
	}

	cols, err := collocation.NewBuilder(len(f.Suppressions), 0.0001)
	if err != nil {
		return nil, err
	}
	for _, p := range f.Suppressions {
		cols.AddSuppression(p[0], p[1])
	}

	var ids [datamanager.NumRules]uint16
	for r := range ids {
		ids[r] = uint16(20 + r)
	}
	ids[datamanager.RuleParticle] = ParticleID

	f.Sections = datamanager.Sections{
		Connector:              conn,
		SuggestionFilter:       sugg.Bytes(),
		Collocation:            coll.Bytes(),
		CollocationSuppression: cols.Bytes(),
		Boundary:               segmenter.EncodePenalties(f.Penalties),
		SegmenterSizeInfo:      tables.SizeInfo(),
		SegmenterLTable:        tables.LTableBytes(),
		SegmenterRTable:        tables.RTableBytes(),
		SegmenterBitArray:      tables.BitArrayBytes(),
		POSMatcher:             datamanager.EncodePOSMatcher(ids),
		Version:                Version,
	}
	return f, nil
}

// Bytes packs the fixture into a data set.
func (f *Fixture) Bytes(magic string, c codec.Codec) ([]byte, error) {
	return f.Sections.Bytes(magic, c)
}

// MustNew is New for package-level fixtures.
func MustNew(seed int64) *Fixture {
	f, err := New(seed)
	if err != nil {
		panic(err)
	}
	return f
}

// MustBytes is Bytes for package-level fixtures.
func (f *Fixture) MustBytes(magic string, c codec.Codec) []byte {
	b, err := f.Bytes(magic, c)
	if err != nil {
		panic(err)
	}
	return b
}
