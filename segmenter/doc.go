// Package segmenter decides where segment boundaries fall between adjacent
// lattice nodes.
//
// The decision combines a precomputed boundary table indexed by POS ids with
// a few rules that depend on the nodes themselves: sentence start and end
// always segment, single-segment mode never does, and a node that starts with
// an acceptable particle stays attached to what precedes it.
//
// The boundary table is the (lsize+1) x (rsize+1) matrix of booleans with
// identical rows and identical columns merged. The compiled form is
//
//	size info   {uint32 compressed_lsize, uint32 compressed_rsize}
//	L table     uint16[lsize+1]   rid -> compressed row id
//	R table     uint16[rsize+1]   lid -> compressed column id
//	bit array   4*(1+size/32) bytes of little-endian uint32 words
//
// and bit l + compressed_lsize*r holds the decision. A separate boundary
// table of {uint16 prefix, uint16 suffix} pairs per POS id supplies the
// penalties the decoder adds at segment edges.
package segmenter
