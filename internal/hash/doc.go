// Package hash provides the hashing primitives shared by the data file
// readers and the membership filters.
//
// # Fingerprints
//
// Fingerprint maps a string to a stable 64-bit value (xxHash64). The same
// function must be used when a filter is built and when it is queried, so it
// is part of the data format.
//
//	fp := hash.Fingerprint("example")
//
// # Mixing
//
// Mix is the splitmix64 finalizer. Filters run every fingerprint through it
// before deriving probe positions, which keeps probe positions well spread
// even for small or sequential inputs.
//
// # Checksums
//
// CRC32C covers every stored section and the metadata block of a data set.
// The metadata checksum is always verified at open; section checksums can be
// skipped when the caller trusts the source.
//
//	checksum := hash.CRC32C(stored)
package hash
