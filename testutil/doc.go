// Package testutil provides testing utilities for imecore.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG and generators for the kinds of tables the
// language model is compiled from.
//
// # Random Generation
//
//	rng := testutil.NewRNG(seed)
//	costs := rng.CostMatrix(64, 0.2, 8000)          // sparse rows around a per-row default
//	bounds := rng.BoundaryMatrix(64, 64, 5, 7)      // few distinct rows/columns
//	words := rng.Words(1000, 3, 12)
package testutil
