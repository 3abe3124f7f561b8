// Package binfmt reads and writes the little-endian binary layouts used by the
// compiled language-model data.
//
// Reader is a cursor over an immutable byte slice. It never copies: every
// slice it hands out is a view into the input. Errors are sticky, so a decoder
// can read a whole header and check Err once at the end, the same way the
// manifest payload buffer works.
//
// Writer is the append-only counterpart used by the offline builders.
package binfmt
