// Package dataset reads and writes the container that bundles every table
// the conversion core loads.
//
// A data set is one immutable blob of named sections:
//
//	[magic][zero pad to 8]
//	section payloads, each starting at an 8-byte aligned offset
//	[metadata]
//	[trailer: uint64 metadata offset][uint32 metadata size][uint32 crc32c(metadata)]
//
// The metadata holds a format version and, per section, its name, offset,
// stored and decoded sizes, codec and the CRC32C of the stored bytes.
//
// Uncompressed sections are returned as views into the blob, so a mapped
// file is parsed without copying. Compressed sections are decoded on demand
// and the caller owns the result.
package dataset
