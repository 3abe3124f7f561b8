// Package bitarray provides a fixed-size bit vector stored as little-endian
// uint32 words.
//
// The serialized form is exactly the in-memory word array: 4*(1+size/32)
// bytes. Readers of a serialized array do not need to decode it; Get operates
// on the raw bytes directly, which is how the segmenter consumes the boundary
// table from a mapped data file.
package bitarray
