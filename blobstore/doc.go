// Package blobstore abstracts where data set files live.
//
// A data set is immutable once published, so a store only needs to read
// blobs, publish whole blobs and list what is available. Implementations
// must be safe for concurrent use.
//
// Built-in implementations:
//
//   - LocalStore: a directory on the local file system, read via mmap
//   - MemoryStore: in-memory, for tests and embedding
//   - s3.Store: Amazon S3 with ranged and parallel downloads
//   - minio.Store: MinIO and other S3-compatible servers
//
// Blobs that can hand out their bytes without copying also implement
// Mappable.
package blobstore
