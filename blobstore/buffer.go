package blobstore

import "sync"

// WriteAtBuffer is an in-memory io.WriterAt for Downloader targets.
type WriteAtBuffer struct {
	mu  sync.Mutex
	buf []byte
}

// NewWriteAtBuffer returns a buffer with capacity for sizeHint bytes.
func NewWriteAtBuffer(sizeHint int64) *WriteAtBuffer {
	return &WriteAtBuffer{buf: make([]byte, 0, max(sizeHint, 0))}
}

// WriteAt writes p at off, growing the buffer as needed. It is safe for
// concurrent use.
func (b *WriteAtBuffer) WriteAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	end := int(off) + len(p)
	if end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, max(end, 2*cap(b.buf)))
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the written bytes.
func (b *WriteAtBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf
}
