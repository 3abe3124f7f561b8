// Package conv converts builder-side counts into the fixed-width fields of
// the binary tables, failing instead of truncating.
//
// Readers use direct casts: every width they read is bounded by the format.
package conv
