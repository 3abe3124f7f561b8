// Package succinct implements a rank/select index over an immutable
// bit-packed buffer.
//
// The index keeps one cumulative popcount per 32-bit word plus optional
// sampled select caches. It never copies the bit buffer, so the buffer must
// outlive the index. Bit i is the least significant bit of byte i/8.
//
// Queries outside the populated range (for example Select1(n) with n greater
// than the number of ones) are undefined and may panic.
package succinct
