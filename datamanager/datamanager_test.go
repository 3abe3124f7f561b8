package datamanager_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/connector"
	"github.com/hupe1980/imecore/datamanager"
	"github.com/hupe1980/imecore/datamanager/datamanagertest"
	"github.com/hupe1980/imecore/dataset"
	"github.com/hupe1980/imecore/resource"
	"github.com/hupe1980/imecore/segmenter"
	"github.com/hupe1980/imecore/suggestion"
)

func TestFromArray(t *testing.T) {
	f, err := datamanagertest.New(1)
	require.NoError(t, err)

	for _, c := range []codec.Codec{nil, codec.ZstdCodec{}, codec.LZ4Codec{}, codec.SnappyCodec{}} {
		name := "none"
		if c != nil {
			name = c.Name()
		}
		t.Run(name, func(t *testing.T) {
			data, err := f.Bytes("", c)
			require.NoError(t, err)

			dm, err := datamanager.FromArray(data, "")
			require.NoError(t, err)
			defer dm.Close()

			assert.Equal(t, datamanagertest.Version, dm.Version())
			assert.Equal(t, f.Sections.Connector, dm.ConnectorData())
			assert.Equal(t, f.Sections.SuggestionFilter, dm.SuggestionFilterData())
			assert.Equal(t, f.Sections.Collocation, dm.CollocationData())
			assert.Equal(t, f.Sections.CollocationSuppression, dm.CollocationSuppressionData())
			assert.Equal(t, f.Sections.Boundary, dm.BoundaryData())
			assert.Equal(t, uint16(datamanagertest.ParticleID), dm.POSMatcher().ID(datamanager.RuleParticle))
			assert.False(t, dm.Mapped())

			sd := dm.SegmenterData()
			assert.Equal(t, f.Sections.SegmenterSizeInfo, sd.SizeInfo)
			assert.Equal(t, f.Sections.SegmenterLTable, sd.LTable)
			assert.Equal(t, uint16(datamanagertest.ParticleID), sd.ParticleID)
		})
	}
}

func TestFromArray_FeedsComponents(t *testing.T) {
	f := datamanagertest.MustNew(2)
	dm, err := datamanager.FromArray(f.MustBytes("", codec.ZstdCodec{}), "")
	require.NoError(t, err)
	defer dm.Close()

	var iface datamanager.Interface = dm

	conn, err := connector.NewFromDataManager(iface, connector.DefaultCacheSize)
	require.NoError(t, err)
	for rid := 0; rid < datamanagertest.NumPOS; rid++ {
		for lid := 0; lid < datamanagertest.NumPOS; lid++ {
			require.Equal(t, f.Costs[rid][lid], conn.GetTransitionCost(uint16(rid), uint16(lid)))
		}
	}

	seg, err := segmenter.NewFromDataManager(iface)
	require.NoError(t, err)
	assert.Equal(t, uint16(datamanagertest.ParticleID), seg.ParticleID())
	assert.Equal(t, f.Boundary[3][4], seg.IsBoundaryIDs(3, 4))

	sugg, err := suggestion.NewFromDataManager(iface)
	require.NoError(t, err)
	assert.True(t, sugg.IsBadSuggestion("BADWORD"))
}

func TestFromArray_Statuses(t *testing.T) {
	f := datamanagertest.MustNew(3)

	t.Run("broken blob", func(t *testing.T) {
		_, err := datamanager.FromArray([]byte("not a data set at all"), "")
		require.Error(t, err)
		assert.Equal(t, datamanager.DataBroken, datamanager.StatusOf(err))
		assert.ErrorIs(t, err, dataset.ErrBadMagic)
	})

	t.Run("wrong magic", func(t *testing.T) {
		_, err := datamanager.FromArray(f.MustBytes("", nil), "\xEFOTHER\r\n")
		assert.Equal(t, datamanager.DataBroken, datamanager.StatusOf(err))
	})

	t.Run("custom magic", func(t *testing.T) {
		dm, err := datamanager.FromArray(f.MustBytes("\xEFOTHER\r\n", nil), "\xEFOTHER\r\n")
		require.NoError(t, err)
		require.NoError(t, dm.Close())
	})

	for _, missing := range datamanager.RequiredSections {
		t.Run("missing "+missing, func(t *testing.T) {
			data := rebuildWithout(t, missing)

			_, err := datamanager.FromArray(data, "")
			require.Error(t, err)
			assert.True(t, datamanager.IsStatus(err, datamanager.DataMissing))

			var se *datamanager.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, missing, se.Section)
			assert.Contains(t, err.Error(), "DATA_MISSING")
		})
	}

	t.Run("engine version mismatch", func(t *testing.T) {
		s := f.Sections
		s.Version = "99.0.0"
		data, err := s.Bytes("", nil)
		require.NoError(t, err)
		_, err = datamanager.FromArray(data, "")
		assert.Equal(t, datamanager.EngineVersionMismatch, datamanager.StatusOf(err))
	})

	t.Run("malformed version", func(t *testing.T) {
		s := f.Sections
		s.Version = "1.0"
		data, err := s.Bytes("", nil)
		require.NoError(t, err)
		_, err = datamanager.FromArray(data, "")
		assert.Equal(t, datamanager.DataBroken, datamanager.StatusOf(err))
	})

	t.Run("broken size info", func(t *testing.T) {
		s := f.Sections
		s.SegmenterSizeInfo = []byte{1, 2, 3}
		data, err := s.Bytes("", nil)
		require.NoError(t, err)
		_, err = datamanager.FromArray(data, "")
		assert.Equal(t, datamanager.DataBroken, datamanager.StatusOf(err))
	})

	t.Run("short pos matcher", func(t *testing.T) {
		s := f.Sections
		s.POSMatcher = []byte{7, 0}
		data, err := s.Bytes("", nil)
		require.NoError(t, err)
		_, err = datamanager.FromArray(data, "")
		assert.True(t, datamanager.IsStatus(err, datamanager.DataBroken))
	})
}

func rebuildWithout(t *testing.T, skip string) []byte {
	t.Helper()
	f := datamanagertest.MustNew(3)
	full, err := f.Bytes("", nil)
	require.NoError(t, err)
	ds, err := dataset.Open(full)
	require.NoError(t, err)

	w := dataset.NewWriter("")
	for _, s := range ds.Sections() {
		if s.Name == skip {
			continue
		}
		b, err := ds.Get(s.Name)
		require.NoError(t, err)
		require.NoError(t, w.Add(s.Name, b))
	}
	data, err := w.Bytes()
	require.NoError(t, err)
	return data
}

func TestFromFile(t *testing.T) {
	f := datamanagertest.MustNew(4)
	path := filepath.Join(t.TempDir(), "imecore.data")
	require.NoError(t, os.WriteFile(path, f.MustBytes("", nil), 0o600))

	dm, err := datamanager.FromFile(path, "")
	require.NoError(t, err)
	assert.True(t, dm.Mapped())
	assert.Equal(t, f.Sections.Connector, dm.ConnectorData())
	require.NoError(t, dm.Close())
	require.NoError(t, dm.Close())

	_, err = datamanager.FromFile(filepath.Join(t.TempDir(), "missing.data"), "")
	assert.Equal(t, datamanager.MmapFailure, datamanager.StatusOf(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemoryAccounting(t *testing.T) {
	f := datamanagertest.MustNew(5)
	s := f.Sections
	s.Boundary = make([]byte, 4*4096)
	data, err := s.Bytes("", codec.ZstdCodec{})
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{})
	dm, err := datamanager.FromArray(data, "", func(o *datamanager.Options) { o.Memory = rc })
	require.NoError(t, err)
	assert.Positive(t, dm.MemoryReserved())
	assert.Equal(t, dm.MemoryReserved(), rc.MemoryUsage())
	require.NoError(t, dm.Close())
	assert.Zero(t, rc.MemoryUsage())

	tight := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	_, err = datamanager.FromArray(data, "", func(o *datamanager.Options) { o.Memory = tight })
	assert.ErrorIs(t, err, datamanager.ErrMemoryLimit)
	assert.Zero(t, tight.MemoryUsage())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "OK", datamanager.OK.String())
	assert.Equal(t, "MMAP_FAILURE", datamanager.MmapFailure.String())
	assert.Equal(t, "Status(42)", datamanager.Status(42).String())
	assert.Equal(t, datamanager.OK, datamanager.StatusOf(nil))
}

func TestSections_Set(t *testing.T) {
	f := datamanagertest.MustNew(6)

	var s datamanager.Sections
	data := f.MustBytes("", nil)
	ds, err := dataset.Open(data)
	require.NoError(t, err)
	for _, name := range datamanager.RequiredSections {
		b, err := ds.Get(name)
		require.NoError(t, err)
		require.NoError(t, s.Set(name, b))
	}
	assert.Equal(t, f.Sections, s)

	assert.Error(t, s.Set("bogus", nil))
}
