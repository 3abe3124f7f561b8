package datamanager

import (
	"fmt"

	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/dataset"
)

// Section names.
const (
	SectionConnector              = "conn"
	SectionSuggestionFilter       = "sugg"
	SectionCollocation            = "coll"
	SectionCollocationSuppression = "cols"
	SectionBoundary               = "bdry"
	SectionSegmenterSizeInfo      = "segmenter_sizeinfo"
	SectionSegmenterLTable        = "segmenter_ltable"
	SectionSegmenterRTable        = "segmenter_rtable"
	SectionSegmenterBitArray      = "segmenter_bitarray"
	SectionPOSMatcher             = "pos_matcher"
	SectionVersion                = "version"
)

// RequiredSections lists every section FromArray looks up, in load order.
var RequiredSections = []string{
	SectionPOSMatcher,
	SectionConnector,
	SectionSuggestionFilter,
	SectionCollocation,
	SectionCollocationSuppression,
	SectionBoundary,
	SectionSegmenterSizeInfo,
	SectionSegmenterLTable,
	SectionSegmenterRTable,
	SectionSegmenterBitArray,
	SectionVersion,
}

// Sections holds the raw payload of every required section.
type Sections struct {
	Connector              []byte
	SuggestionFilter       []byte
	Collocation            []byte
	CollocationSuppression []byte
	Boundary               []byte
	SegmenterSizeInfo      []byte
	SegmenterLTable        []byte
	SegmenterRTable        []byte
	SegmenterBitArray      []byte
	POSMatcher             []byte
	// Version is "<engine>.<major>.<minor>".
	Version string
}

func (s *Sections) byName() map[string][]byte {
	return map[string][]byte{
		SectionPOSMatcher:             s.POSMatcher,
		SectionConnector:              s.Connector,
		SectionSuggestionFilter:       s.SuggestionFilter,
		SectionCollocation:            s.Collocation,
		SectionCollocationSuppression: s.CollocationSuppression,
		SectionBoundary:               s.Boundary,
		SectionSegmenterSizeInfo:      s.SegmenterSizeInfo,
		SectionSegmenterLTable:        s.SegmenterLTable,
		SectionSegmenterRTable:        s.SegmenterRTable,
		SectionSegmenterBitArray:      s.SegmenterBitArray,
		SectionVersion:                []byte(s.Version),
	}
}

// Pack adds every section to w. Large tables are encoded with c; a nil c
// stores everything uncompressed.
func (s *Sections) Pack(w *dataset.Writer, c codec.Codec) error {
	payloads := s.byName()
	for _, name := range RequiredSections {
		sc := c
		if name == SectionVersion || name == SectionSegmenterSizeInfo || name == SectionPOSMatcher {
			sc = nil
		}
		if err := w.AddCompressed(name, payloads[name], sc); err != nil {
			return err
		}
	}
	return nil
}

// Bytes packs s into a new data set starting with magic.
func (s *Sections) Bytes(magic string, c codec.Codec) ([]byte, error) {
	w := dataset.NewWriter(magic)
	if err := s.Pack(w, c); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// Set assigns the payload of the named section.
func (s *Sections) Set(name string, data []byte) error {
	switch name {
	case SectionPOSMatcher:
		s.POSMatcher = data
	case SectionConnector:
		s.Connector = data
	case SectionSuggestionFilter:
		s.SuggestionFilter = data
	case SectionCollocation:
		s.Collocation = data
	case SectionCollocationSuppression:
		s.CollocationSuppression = data
	case SectionBoundary:
		s.Boundary = data
	case SectionSegmenterSizeInfo:
		s.SegmenterSizeInfo = data
	case SectionSegmenterLTable:
		s.SegmenterLTable = data
	case SectionSegmenterRTable:
		s.SegmenterRTable = data
	case SectionSegmenterBitArray:
		s.SegmenterBitArray = data
	case SectionVersion:
		s.Version = string(data)
	default:
		return fmt.Errorf("datamanager: unknown section %q", name)
	}
	return nil
}
