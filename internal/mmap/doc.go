// Package mmap maps data set files read-only into memory.
//
// A data set is parsed in place: connector rows, segmenter tables and filter
// blocks are all views into the mapped bytes, so opening a large data file
// costs page faults rather than copies.
//
//	m, err := mmap.Open("imecore.data")
//	if err != nil { ... }
//	defer m.Close()
//
//	m.Advise(mmap.AccessRandom)
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
//
// Bytes may be read from any number of goroutines. Nothing may touch the
// slice once Close has returned.
package mmap
