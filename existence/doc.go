// Package existence implements a Bloom-style membership filter over 64-bit
// hashes.
//
// A Filter never reports false for a hash that was inserted. It may report
// true for one that was not, at a rate set by the filter size and the number
// of probes (at most 7).
//
// The serialized form is
//
//	[uint32 size (bits)][uint32 expected_nelts][int32 num_hashes]
//	[ceil(size/32) little-endian uint32 words]
//
// The bit vector is held as blocks of 2^21 bits (256 KiB) so that very large
// filters never need one contiguous allocation. Read keeps the blocks as views
// into the input buffer.
//
// Probe positions come from Kirsch-Mitzenmacher double hashing over the
// splitmix64-mixed hash, so Insert and Exists derive identical positions.
package existence
