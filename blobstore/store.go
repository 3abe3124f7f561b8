package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// BlobStore gives access to data set blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put publishes data under name, replacing any previous blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// List returns the sorted names of blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes at off, with io.ReaderAt semantics.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader over length bytes at off.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs whose bytes are already in memory.
type Mappable interface {
	// Bytes returns the blob contents without copying. The slice is valid
	// until the Blob is closed.
	Bytes() ([]byte, error)
}

// Downloader is implemented by stores that fetch a whole blob faster than
// a single sequential read, for example with parallel ranged requests.
type Downloader interface {
	// Download writes the blob into w and returns its size.
	Download(ctx context.Context, name string, w io.WriterAt) (int64, error)
}
