package imecore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/imecore/blobstore"
	"github.com/hupe1980/imecore/datamanager"
	"github.com/hupe1980/imecore/resource"
)

// Source locates a data set for Open.
type Source interface {
	// Kind names the source type for logs and metrics.
	Kind() string
	String() string

	load(ctx context.Context, o *options) (*loaded, error)
}

// loaded is an opened data set plus whatever keeps its bytes alive.
type loaded struct {
	dm       *datamanager.DataManager
	closer   io.Closer
	memory   int64
	released bool
}

func (l *loaded) close(rc *resource.Controller) error {
	if l.released {
		return nil
	}
	l.released = true

	err := l.dm.Close()
	if l.closer != nil {
		err = errors.Join(err, l.closer.Close())
	}
	rc.ReleaseMemory(l.memory)
	return err
}

func dmOptions(o *options) func(*datamanager.Options) {
	return func(dmo *datamanager.Options) {
		dmo.SkipChecksums = !o.verifyChecksums
		if o.rc != nil {
			dmo.Memory = o.rc
		}
	}
}

// Local returns a Source that memory-maps the data file at path.
func Local(path string) Source { return localSource{path: path} }

type localSource struct{ path string }

func (s localSource) Kind() string   { return "local" }
func (s localSource) String() string { return "local:" + s.path }

func (s localSource) load(_ context.Context, o *options) (*loaded, error) {
	if s.path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidSource)
	}
	dm, err := datamanager.FromFile(s.path, o.magic, dmOptions(o))
	if err != nil {
		return nil, err
	}
	return &loaded{dm: dm}, nil
}

// Bytes returns a Source over an in-memory data set, e.g. one embedded with
// go:embed. data is not copied and must not be modified.
func Bytes(data []byte) Source { return bytesSource{data: data} }

type bytesSource struct{ data []byte }

func (s bytesSource) Kind() string   { return "bytes" }
func (s bytesSource) String() string { return fmt.Sprintf("bytes:%d", len(s.data)) }

func (s bytesSource) load(_ context.Context, o *options) (*loaded, error) {
	dm, err := datamanager.FromArray(s.data, o.magic, dmOptions(o))
	if err != nil {
		return nil, err
	}
	return &loaded{dm: dm}, nil
}

// Remote returns a Source reading the blob name from store.
//
// Blobs that expose their bytes directly (blobstore.Mappable) are used in
// place. Otherwise the whole blob is read into memory through the resource
// controller's IO limit, with parallel ranged reads when the store is a
// blobstore.Downloader. With WithCacheDir the blob is written to the cache
// directory once and mapped from there.
func Remote(store blobstore.BlobStore, name string) Source {
	return remoteSource{store: store, name: name}
}

type remoteSource struct {
	store blobstore.BlobStore
	name  string
}

func (s remoteSource) Kind() string   { return "remote" }
func (s remoteSource) String() string { return "remote:" + s.name }

func (s remoteSource) load(ctx context.Context, o *options) (*loaded, error) {
	if s.store == nil || s.name == "" {
		return nil, fmt.Errorf("%w: remote source needs a store and a name", ErrInvalidSource)
	}

	blob, err := s.store.Open(ctx, s.name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrDataMissing, err)
		}
		return nil, err
	}

	if o.cacheDir != "" {
		return s.loadCached(ctx, blob, o)
	}

	if m, ok := blob.(blobstore.Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			return openBlob(data, blob, o)
		}
	}

	size := blob.Size()
	data, err := s.read(ctx, blob, o)
	if err != nil {
		return nil, err
	}
	dm, err := datamanager.FromArray(data, o.magic, dmOptions(o))
	if err != nil {
		o.rc.ReleaseMemory(size)
		return nil, err
	}
	return &loaded{dm: dm, memory: size}, nil
}

// loadCached serves the blob from the cache directory, filling it first
// when the cached copy is absent, of another size, or unreadable.
func (s remoteSource) loadCached(ctx context.Context, blob blobstore.Blob, o *options) (*loaded, error) {
	cache := blobstore.NewLocalStore(o.cacheDir)
	size := blob.Size()

	l, err := openCached(ctx, cache, s.name, size, o)
	if err == nil {
		_ = blob.Close()
		o.logger.DebugContext(ctx, "data set cache hit", "name", s.name, "dir", o.cacheDir)
		return l, nil
	}
	o.logger.DebugContext(ctx, "data set cache miss", "name", s.name, "dir", o.cacheDir, "reason", err)

	data, err := s.read(ctx, blob, o)
	if err != nil {
		return nil, err
	}
	err = cache.Put(ctx, s.name, data)
	o.rc.ReleaseMemory(size)
	if err != nil {
		return nil, fmt.Errorf("imecore: write cache: %w", err)
	}
	return openCached(ctx, cache, s.name, size, o)
}

func openCached(ctx context.Context, cache *blobstore.LocalStore, name string, size int64, o *options) (*loaded, error) {
	blob, err := cache.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	if blob.Size() != size {
		_ = blob.Close()
		return nil, fmt.Errorf("cached size %d, want %d", blob.Size(), size)
	}
	data, err := blob.(blobstore.Mappable).Bytes()
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return openBlob(data, blob, o)
}

// openBlob loads data owned by blob, closing blob on failure.
func openBlob(data []byte, blob blobstore.Blob, o *options) (*loaded, error) {
	dm, err := datamanager.FromArray(data, o.magic, dmOptions(o))
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return &loaded{dm: dm, closer: blob}, nil
}

// read reserves memory for the whole blob, reads it and closes blob. On
// success the caller owns the reservation.
func (s remoteSource) read(ctx context.Context, blob blobstore.Blob, o *options) ([]byte, error) {
	defer func() { _ = blob.Close() }()

	size := blob.Size()
	if !o.rc.TryAcquireMemory(size) {
		return nil, fmt.Errorf("%w: reading %s needs %d bytes", ErrMemoryLimit, s.name, size)
	}
	data, err := s.fetch(ctx, blob, o.rc)
	if err != nil {
		o.rc.ReleaseMemory(size)
		return nil, err
	}
	return data, nil
}

func (s remoteSource) fetch(ctx context.Context, blob blobstore.Blob, rc *resource.Controller) ([]byte, error) {
	size := blob.Size()

	if d, ok := s.store.(blobstore.Downloader); ok {
		buf := blobstore.NewWriteAtBuffer(size)
		n, err := d.Download(ctx, s.name, &limitedWriterAt{ctx: ctx, w: buf, rc: rc})
		if err != nil {
			return nil, fmt.Errorf("imecore: download %s: %w", s.name, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: downloaded %d of %d bytes", io.ErrUnexpectedEOF, n, size)
		}
		return buf.Bytes(), nil
	}

	r, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, fmt.Errorf("imecore: read %s: %w", s.name, err)
	}
	defer func() { _ = r.Close() }()

	data, err := resource.ReadAll(ctx, r, rc, size)
	if err != nil {
		return nil, fmt.Errorf("imecore: read %s: %w", s.name, err)
	}
	if int64(len(data)) != size {
		return nil, fmt.Errorf("%w: read %d of %d bytes", io.ErrUnexpectedEOF, len(data), size)
	}
	return data, nil
}

// limitedWriterAt charges the IO limiter before each write.
type limitedWriterAt struct {
	ctx context.Context
	w   io.WriterAt
	rc  *resource.Controller
}

func (l *limitedWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if err := l.rc.AcquireIO(l.ctx, len(p)); err != nil {
		return 0, err
	}
	return l.w.WriteAt(p, off)
}
