// Package factors estimates age-to-age development factors (LDFs) from a
// loss triangle.
//
// 🚀 What is a development factor?
//
//	For each transition between adjacent development ages, the factor is an
//	average of the individual link ratios C[i][j+1]/C[i][j] observed across
//	origins. Projecting the latest diagonal through the factor pattern is
//	the heart of the chain-ladder method.
//
// Three averaging methods are supported, each under a configurable
// origin-inclusion window:
//
//   - Simple — arithmetic mean of the included individual ratios.
//   - Volume — volume-weighted mean: sum of numerators over sum of
//     denominators. This is the classical chain-ladder estimator and the
//     one Mack's variance model is built on.
//   - Medial — arithmetic mean after dropping the Trim highest and Trim
//     lowest ratios, requiring at least one more included origin than
//     excluded values (2·Trim+1), else ErrInsufficientData.
//
// ⚙️ Usage:
//
//	import "github.com/lossdev/reserving/factors"
//
//	set, err := factors.Estimate(tri, factors.Volume, factors.DefaultOptions())
//	if err != nil {
//	  // ErrInsufficientData, triangle.ErrUndefinedRatio, ...
//	}
//	pattern := set.Factors // one factor per development transition
//
// Estimation is deterministic and side-effect free: a Set is derived from
// a Triangle and recomputed, never mutated, when configuration changes.
//
// Complexity: O(origins · transitions), plus O(n·log n) per transition for
// the medial sort.
package factors
