// Package connector answers bigram transition-cost queries between the right
// POS id of one lattice node and the left POS id of the next.
//
// The cost matrix is square and compiled into a sparse, row-major layout:
//
//	[2B magic=0xCDAB][2B resolution][2B rsize][2B lsize]
//	[DefaultCostArraySize * 2B default costs]
//	for each row: [2B compact_bits_size][2B values_size]
//	              [chunk bits][compact bits][values]   (each 32-bit aligned)
//
// Each row keeps only the cells that differ from the row's default cost. The
// chunk bits mark which 8-column groups hold any such cell, the compact bits
// mark the cells inside those groups, and values holds the costs in order.
// When resolution is not 1 every value is one byte holding cost/resolution,
// with 255 reserved for InvalidCost.
//
// New validates the whole layout once. GetTransitionCost trusts the
// validated data and never fails; absent cells read as the row default.
//
// A Connector memoizes lookups in a small direct-mapped cache that is not
// synchronized. Give each goroutine its own instance via Clone.
package connector
