// Package triangle defines the Triangle container: an immutable, ragged
// upper-left grid of loss values indexed by (origin period, development
// period).
//
// 🚀 What is a loss triangle?
//
//	Claims originating in a given period (an "origin", e.g. accident year)
//	are observed repeatedly as they mature ("development periods"). Older
//	origins have been observed longer, so the populated cells form an
//	upper-left triangle: no later origin knows more development periods
//	than an earlier one, and no origin skips a period.
//
// ✨ Key guarantees:
//   - Immutability – a Triangle is built once from raw records and never
//     mutated; every downstream computation takes it by read-only reference
//   - Exact round-trip – cumulative and incremental representations are both
//     materialized at construction from the same records, so converting one
//     way and back reproduces the input exactly
//   - Strict validation – duplicate cells, interior gaps, increasing
//     maturities and non-finite values are rejected with ErrMalformedTriangle
//     before a Triangle exists
//
// ⚙️ Usage:
//
//	import "github.com/lossdev/reserving/triangle"
//
//	recs := []triangle.Record{
//	  {Origin: 2021, Dev: 1, Value: 100}, {Origin: 2021, Dev: 2, Value: 150},
//	  {Origin: 2022, Dev: 1, Value: 110},
//	}
//	tri, err := triangle.New(recs, triangle.Cumulative)
//	if err != nil {
//	  // handle ErrMalformedTriangle
//	}
//	latest := tri.LatestDiagonal() // [150, 110]
//
// Complexity: construction is O(c·log c) for c records (sorting the axes);
// every accessor is O(1) per cell or O(cells) for full-grid copies.
package triangle
