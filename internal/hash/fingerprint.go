package hash

import "github.com/cespare/xxhash/v2"

// Fingerprint returns the 64-bit fingerprint of s.
func Fingerprint(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Mix is the splitmix64 finalizer.
func Mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
