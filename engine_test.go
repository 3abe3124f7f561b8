package imecore_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/imecore"
	"github.com/hupe1980/imecore/blobstore"
	"github.com/hupe1980/imecore/codec"
	"github.com/hupe1980/imecore/datamanager/datamanagertest"
	"github.com/hupe1980/imecore/resource"
	"github.com/hupe1980/imecore/segmenter"
)

func checkEngine(t *testing.T, eng *imecore.Engine, f *datamanagertest.Fixture) {
	t.Helper()

	conn := eng.NewConnector()
	for rid := 0; rid < datamanagertest.NumPOS; rid++ {
		for lid := 0; lid < datamanagertest.NumPOS; lid++ {
			require.Equal(t, f.Costs[rid][lid], conn.GetTransitionCost(uint16(rid), uint16(lid)))
		}
	}

	seg := eng.Segmenter()
	for rid := 0; rid < datamanagertest.NumPOS; rid++ {
		for lid := 0; lid < datamanagertest.NumPOS; lid++ {
			require.Equal(t, f.Boundary[rid][lid], seg.IsBoundaryIDs(uint16(rid), uint16(lid)))
		}
	}
	assert.Equal(t, int32(f.Penalties[5].Prefix), seg.PrefixPenalty(5))
	assert.Equal(t, int32(f.Penalties[5].Suffix), seg.SuffixPenalty(5))

	sugg := eng.SuggestionFilter()
	require.True(t, sugg.Enabled())
	for _, w := range f.BadSuggestions {
		assert.True(t, sugg.IsBadSuggestion(w), w)
	}
	assert.True(t, sugg.IsBadSuggestion("OFFENSIVE"))

	for _, p := range f.Collocations {
		assert.True(t, eng.CollocationFilter().Exists(p[0], p[1]))
	}
	for _, p := range f.Suppressions {
		assert.True(t, eng.SuppressionFilter().Exists(p[0], p[1]))
	}

	assert.Equal(t, datamanagertest.Version, eng.Version())
}

func TestOpen_Bytes(t *testing.T) {
	f := datamanagertest.MustNew(1)

	for _, c := range []codec.Codec{nil, codec.ZstdCodec{}, codec.LZ4Codec{}, codec.SnappyCodec{}} {
		name := "none"
		if c != nil {
			name = c.Name()
		}
		t.Run(name, func(t *testing.T) {
			metrics := &imecore.BasicMetricsCollector{}
			eng, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", c)),
				imecore.WithMetricsCollector(metrics))
			require.NoError(t, err)
			defer eng.Close()

			checkEngine(t, eng, f)

			stats := metrics.GetStats()
			assert.Equal(t, int64(1), stats.OpenCount)
			assert.Zero(t, stats.OpenErrors)
			assert.Equal(t, int64(5), stats.ComponentInits)
			assert.Zero(t, stats.FailOpens)
			assert.Equal(t, int64(eng.DataManager().DataSet().Len()), stats.OpenBytes)
		})
	}
}

func TestOpen_Local(t *testing.T) {
	f := datamanagertest.MustNew(2)
	path := filepath.Join(t.TempDir(), "imecore.data")
	require.NoError(t, os.WriteFile(path, f.MustBytes("", codec.ZstdCodec{}), 0o600))

	eng, err := imecore.Open(context.Background(), imecore.Local(path))
	require.NoError(t, err)

	checkEngine(t, eng, f)
	assert.True(t, eng.DataManager().Mapped())
	assert.Equal(t, "local", eng.Source().Kind())

	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close())
}

func TestOpen_LocalMissing(t *testing.T) {
	_, err := imecore.Open(context.Background(), imecore.Local(filepath.Join(t.TempDir(), "nope.data")))
	assert.ErrorIs(t, err, imecore.ErrMmapFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// streamStore hides blobstore.Mappable so reads go through ReadRange.
type streamStore struct{ blobstore.BlobStore }

type streamBlob struct{ blobstore.Blob }

func (s streamStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return streamBlob{b}, nil
}

// downloadStore also implements blobstore.Downloader in small parts.
type downloadStore struct {
	streamStore
	mu    sync.Mutex
	parts int
}

func (s *downloadStore) Download(ctx context.Context, name string, w io.WriterAt) (int64, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer b.Close()

	const partSize = 1024
	buf := make([]byte, partSize)
	var total int64
	for off := int64(0); off < b.Size(); off += partSize {
		n, err := b.ReadAt(ctx, buf, off)
		if err != nil && err != io.EOF {
			return total, err
		}
		if _, err := w.WriteAt(buf[:n], off); err != nil {
			return total, err
		}
		total += int64(n)
		s.mu.Lock()
		s.parts++
		s.mu.Unlock()
	}
	return total, nil
}

func TestOpen_Remote(t *testing.T) {
	f := datamanagertest.MustNew(3)
	data := f.MustBytes("", codec.SnappyCodec{})

	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(context.Background(), "v1/imecore.data", data))

	t.Run("mappable", func(t *testing.T) {
		eng, err := imecore.Open(context.Background(), imecore.Remote(mem, "v1/imecore.data"))
		require.NoError(t, err)
		defer eng.Close()
		checkEngine(t, eng, f)
	})

	t.Run("stream", func(t *testing.T) {
		rc := resource.NewController(resource.Config{
			IOLimitBytesPerSec: 64 << 20,
			IOBurstBytes:       512,
		})
		eng, err := imecore.Open(context.Background(), imecore.Remote(streamStore{mem}, "v1/imecore.data"),
			imecore.WithResourceController(rc))
		require.NoError(t, err)
		checkEngine(t, eng, f)

		assert.GreaterOrEqual(t, rc.MemoryUsage(), int64(len(data)))
		require.NoError(t, eng.Close())
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("download", func(t *testing.T) {
		ds := &downloadStore{streamStore: streamStore{mem}}
		eng, err := imecore.Open(context.Background(), imecore.Remote(ds, "v1/imecore.data"))
		require.NoError(t, err)
		defer eng.Close()
		checkEngine(t, eng, f)
		assert.Equal(t, (len(data)+1023)/1024, ds.parts)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := imecore.Open(context.Background(), imecore.Remote(mem, "v2/imecore.data"))
		assert.ErrorIs(t, err, imecore.ErrDataMissing)
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("memory limit", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 128})
		_, err := imecore.Open(context.Background(), imecore.Remote(streamStore{mem}, "v1/imecore.data"),
			imecore.WithResourceController(rc))
		assert.ErrorIs(t, err, imecore.ErrMemoryLimit)
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := imecore.Open(ctx, imecore.Remote(mem, "v1/imecore.data"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOpen_InvalidSource(t *testing.T) {
	_, err := imecore.Open(context.Background(), nil)
	assert.ErrorIs(t, err, imecore.ErrInvalidSource)

	_, err = imecore.Open(context.Background(), imecore.Local(""))
	assert.ErrorIs(t, err, imecore.ErrInvalidSource)

	_, err = imecore.Open(context.Background(), imecore.Remote(nil, "x"))
	assert.ErrorIs(t, err, imecore.ErrInvalidSource)
}

func TestOpen_Errors(t *testing.T) {
	t.Run("broken container", func(t *testing.T) {
		_, err := imecore.Open(context.Background(), imecore.Bytes([]byte("not a data set")))
		assert.ErrorIs(t, err, imecore.ErrDataBroken)
	})

	t.Run("wrong magic", func(t *testing.T) {
		data := datamanagertest.MustNew(4).MustBytes("", nil)
		_, err := imecore.Open(context.Background(), imecore.Bytes(data), imecore.WithMagic("\x01OTHER\r\n"))
		assert.ErrorIs(t, err, imecore.ErrDataBroken)
	})

	t.Run("version mismatch", func(t *testing.T) {
		f := datamanagertest.MustNew(4)
		f.Sections.Version = "9.0.0"
		_, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", nil)))
		assert.ErrorIs(t, err, imecore.ErrVersionMismatch)
	})

	t.Run("broken connector fails", func(t *testing.T) {
		f := datamanagertest.MustNew(4)
		f.Sections.Connector = []byte{0xAB, 0xCD, 1, 0, 0, 0}
		metrics := &imecore.BasicMetricsCollector{}
		_, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", nil)),
			imecore.WithMetricsCollector(metrics))
		require.Error(t, err)
		assert.ErrorIs(t, err, imecore.ErrDataBroken)

		var ce *imecore.ComponentError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, imecore.ComponentConnector, ce.Component)
		assert.Equal(t, int64(1), metrics.GetStats().OpenErrors)
		assert.Positive(t, metrics.GetStats().ComponentErrors)
	})

	t.Run("broken segmenter fails", func(t *testing.T) {
		f := datamanagertest.MustNew(4)
		f.Sections.SegmenterLTable = []byte{0xFF, 0xFF}
		_, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", nil)))
		var ce *imecore.ComponentError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, imecore.ComponentSegmenter, ce.Component)
		assert.ErrorIs(t, err, segmenter.ErrOutOfBounds)
	})

	t.Run("corrupt section checksum", func(t *testing.T) {
		data := datamanagertest.MustNew(4).MustBytes("", nil)
		corrupt := bytes.Clone(data)
		corrupt[9] ^= 0xFF
		_, err := imecore.Open(context.Background(), imecore.Bytes(corrupt))
		assert.ErrorIs(t, err, imecore.ErrDataBroken)
	})
}

func TestOpen_SuggestionFailOpen(t *testing.T) {
	f := datamanagertest.MustNew(5)
	f.Sections.SuggestionFilter = []byte{1, 2, 3}

	var logs bytes.Buffer
	metrics := &imecore.BasicMetricsCollector{}
	eng, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", nil)),
		imecore.WithLogger(imecore.NewLogger(newTextHandler(&logs))),
		imecore.WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer eng.Close()

	sugg := eng.SuggestionFilter()
	require.NotNil(t, sugg)
	assert.False(t, sugg.Enabled())
	assert.False(t, sugg.IsBadSuggestion("badword"))

	assert.Equal(t, int64(1), metrics.GetStats().FailOpens)
	assert.Contains(t, logs.String(), "failing open")
	assert.Contains(t, logs.String(), "suggestion_filter")
}

func TestEngine_ConnectorCacheSize(t *testing.T) {
	f := datamanagertest.MustNew(6)
	eng, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", nil)),
		imecore.WithConnectorCacheSize(100))
	require.NoError(t, err)
	defer eng.Close()

	assert.Equal(t, 128, eng.Connector().CacheSize())
	assert.Equal(t, 128, eng.NewConnector().CacheSize())
}

func TestEngine_ConcurrentConnectors(t *testing.T) {
	f := datamanagertest.MustNew(7)
	eng, err := imecore.Open(context.Background(), imecore.Bytes(f.MustBytes("", codec.LZ4Codec{})),
		imecore.WithConnectorCacheSize(16))
	require.NoError(t, err)
	defer eng.Close()

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			conn := eng.NewConnector()
			for i := 0; i < 2000; i++ {
				rid := (i*7 + g) % datamanagertest.NumPOS
				lid := (i*13 + 3*g) % datamanagertest.NumPOS
				if conn.GetTransitionCost(uint16(rid), uint16(lid)) != f.Costs[rid][lid] {
					errs <- "cost mismatch"
					return
				}
				if eng.Segmenter().IsBoundaryIDs(uint16(rid), uint16(lid)) != f.Boundary[rid][lid] {
					errs <- "boundary mismatch"
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestEngine_CloseReleasesReservation(t *testing.T) {
	f := datamanagertest.MustNew(8)
	s := f.Sections
	s.Boundary = make([]byte, 4*4096)
	data, err := s.Bytes("", codec.ZstdCodec{})
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MaxLoadWorkers: 1})
	eng, err := imecore.Open(context.Background(), imecore.Bytes(data), imecore.WithResourceController(rc))
	require.NoError(t, err)
	assert.Positive(t, rc.MemoryUsage())

	require.NoError(t, eng.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestOpen_RemoteCacheDir(t *testing.T) {
	f := datamanagertest.MustNew(10)
	data := f.MustBytes("", codec.ZstdCodec{})

	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(context.Background(), "releases/v1.data", data))
	ds := &downloadStore{streamStore: streamStore{mem}}
	dir := t.TempDir()

	eng, err := imecore.Open(context.Background(), imecore.Remote(ds, "releases/v1.data"), imecore.WithCacheDir(dir))
	require.NoError(t, err)
	checkEngine(t, eng, f)
	assert.True(t, ds.parts > 0)
	require.NoError(t, eng.Close())

	cached, err := os.ReadFile(filepath.Join(dir, "releases", "v1.data"))
	require.NoError(t, err)
	assert.Equal(t, data, cached)

	// Second open is served from the cache.
	ds.parts = 0
	eng, err = imecore.Open(context.Background(), imecore.Remote(ds, "releases/v1.data"), imecore.WithCacheDir(dir))
	require.NoError(t, err)
	checkEngine(t, eng, f)
	assert.Zero(t, ds.parts)
	require.NoError(t, eng.Close())

	// A stale copy of another size is replaced.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "releases", "v1.data"), []byte("stale"), 0o600))
	eng, err = imecore.Open(context.Background(), imecore.Remote(ds, "releases/v1.data"), imecore.WithCacheDir(dir))
	require.NoError(t, err)
	checkEngine(t, eng, f)
	assert.Positive(t, ds.parts)
	require.NoError(t, eng.Close())
}
