package datamanager

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/imecore/collocation"
	"github.com/hupe1980/imecore/connector"
	"github.com/hupe1980/imecore/dataset"
	"github.com/hupe1980/imecore/internal/mmap"
	"github.com/hupe1980/imecore/segmenter"
	"github.com/hupe1980/imecore/suggestion"
)

// EngineVersion is the first component of the data version this engine
// accepts.
const EngineVersion = "1"

// Interface is the accessor set consumed by the component constructors.
type Interface interface {
	connector.DataManager
	segmenter.DataManager
	suggestion.DataManager
	collocation.DataManager
}

// MemoryAccountant bounds the memory spent on decoded sections.
// *resource.Controller satisfies it.
type MemoryAccountant interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

// Options configures FromArray and FromFile.
type Options struct {
	// SkipChecksums disables CRC32C verification of section bytes.
	SkipChecksums bool
	// Memory accounts for compressed sections decoded at load. Nil means
	// unlimited.
	Memory MemoryAccountant
}

// DataManager owns a loaded data set. It is immutable and safe for
// concurrent use. Every byte slice it returns stays valid until Close.
type DataManager struct {
	reader   *dataset.Reader
	mapping  *mmap.Mapping
	memory   MemoryAccountant
	reserved int64

	sections   map[string][]byte
	posMatcher *POSMatcher
	version    string

	closeOnce sync.Once
	closeErr  error
}

var _ Interface = (*DataManager)(nil)

// FromArray loads the data set in data, which must start with magic (empty
// selects dataset.DefaultMagic). data is not copied.
func FromArray(data []byte, magic string, optFns ...func(o *Options)) (*DataManager, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	reader, err := dataset.Open(data, func(o *dataset.ReaderOptions) {
		o.Magic = magic
		o.SkipChecksums = opts.SkipChecksums
	})
	if err != nil {
		return nil, statusErr(DataBroken, "", err)
	}

	dm := &DataManager{
		reader:   reader,
		memory:   opts.Memory,
		sections: make(map[string][]byte, len(RequiredSections)),
	}
	if err := dm.load(); err != nil {
		dm.release()
		return nil, err
	}
	return dm, nil
}

// FromFile maps the data file at path and loads it. Close unmaps it.
func FromFile(path, magic string, optFns ...func(o *Options)) (*DataManager, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, statusErr(MmapFailure, "", err)
	}
	_ = m.Advise(mmap.AccessRandom)

	dm, err := FromArray(m.Bytes(), magic, optFns...)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	dm.mapping = m
	return dm, nil
}

func (dm *DataManager) load() error {
	if err := dm.reserve(); err != nil {
		return err
	}

	for _, name := range RequiredSections {
		if !dm.reader.Has(name) {
			return statusErr(DataMissing, name, dataset.ErrNotFound)
		}
		b, err := dm.reader.Get(name)
		if err != nil {
			return statusErr(DataBroken, name, err)
		}
		dm.sections[name] = b
	}

	pm, err := NewPOSMatcher(dm.sections[SectionPOSMatcher])
	if err != nil {
		return statusErr(DataBroken, SectionPOSMatcher, err)
	}
	dm.posMatcher = pm

	if n := len(dm.sections[SectionSegmenterSizeInfo]); n != 8 {
		return statusErr(DataBroken, SectionSegmenterSizeInfo, fmt.Errorf("size info has %d bytes, want 8", n))
	}

	return dm.checkVersion()
}

func (dm *DataManager) reserve() error {
	var total int64
	for _, s := range dm.reader.Sections() {
		if s.Compressed() {
			total += int64(s.Size)
		}
	}
	if total == 0 || dm.memory == nil {
		return nil
	}
	if !dm.memory.TryAcquireMemory(total) {
		return fmt.Errorf("%w: decoding sections needs %d bytes", ErrMemoryLimit, total)
	}
	dm.reserved = total
	return nil
}

func (dm *DataManager) checkVersion() error {
	dm.version = string(dm.sections[SectionVersion])
	parts := strings.Split(dm.version, ".")
	if len(parts) != 3 {
		return statusErr(DataBroken, SectionVersion, fmt.Errorf("invalid version format %q", dm.version))
	}
	if parts[0] != EngineVersion {
		return statusErr(EngineVersionMismatch, SectionVersion,
			fmt.Errorf("engine version %s required, data is %s", EngineVersion, dm.version))
	}
	return nil
}

func (dm *DataManager) release() error {
	if dm.memory != nil && dm.reserved > 0 {
		dm.memory.ReleaseMemory(dm.reserved)
		dm.reserved = 0
	}
	if dm.mapping != nil {
		return dm.mapping.Close()
	}
	return nil
}

// Close releases the memory reservation and unmaps the data file, if any.
// It is idempotent. No slice obtained from dm may be used afterwards.
func (dm *DataManager) Close() error {
	dm.closeOnce.Do(func() { dm.closeErr = dm.release() })
	return dm.closeErr
}

// ConnectorData returns the connector blob.
func (dm *DataManager) ConnectorData() []byte { return dm.sections[SectionConnector] }

// SuggestionFilterData returns the suggestion filter blob.
func (dm *DataManager) SuggestionFilterData() []byte { return dm.sections[SectionSuggestionFilter] }

// CollocationData returns the collocation filter blob.
func (dm *DataManager) CollocationData() []byte { return dm.sections[SectionCollocation] }

// CollocationSuppressionData returns the collocation suppression filter blob.
func (dm *DataManager) CollocationSuppressionData() []byte {
	return dm.sections[SectionCollocationSuppression]
}

// BoundaryData returns the boundary penalty table.
func (dm *DataManager) BoundaryData() []byte { return dm.sections[SectionBoundary] }

// SegmenterData returns the segmenter artifacts with the particle id taken
// from the POS matcher.
func (dm *DataManager) SegmenterData() segmenter.Data {
	return segmenter.Data{
		SizeInfo:   dm.sections[SectionSegmenterSizeInfo],
		LTable:     dm.sections[SectionSegmenterLTable],
		RTable:     dm.sections[SectionSegmenterRTable],
		BitArray:   dm.sections[SectionSegmenterBitArray],
		Boundary:   dm.sections[SectionBoundary],
		ParticleID: dm.posMatcher.ID(RuleParticle),
	}
}

// POSMatcher returns the POS id table.
func (dm *DataManager) POSMatcher() *POSMatcher { return dm.posMatcher }

// Version returns the data version string.
func (dm *DataManager) Version() string { return dm.version }

// DataSet returns the underlying reader, for diagnostics.
func (dm *DataManager) DataSet() *dataset.Reader { return dm.reader }

// MemoryReserved returns the bytes reserved for decoded sections.
func (dm *DataManager) MemoryReserved() int64 { return dm.reserved }

// Mapped reports whether the data set is backed by a mapped file.
func (dm *DataManager) Mapped() bool { return dm.mapping != nil }

// IsStatus reports whether err carries status s.
func IsStatus(err error, s Status) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == s
}
