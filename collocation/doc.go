// Package collocation answers whether two adjacent words form a known
// collocation, and whether a candidate value is suppressed for a reading.
//
// Both filters are existence filters over fingerprints of concatenated
// strings. Like the suggestion filter they fail open when no data is loaded.
package collocation
