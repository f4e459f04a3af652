// Package bootstrap produces a full empirical distribution of chain-ladder
// reserves by residual resampling (England & Verrall's over-dispersed
// Poisson bootstrap).
//
// Algorithm outline:
//  1. Fit the base chain ladder with volume-weighted factors; back-cast the
//     fitted cumulative grid from the latest diagonal and difference it
//     into fitted incremental values m̂.
//  2. Compute Pearson residuals (q − m̂)/√m̂, adjusted by the degrees-of-
//     freedom factor √(n/(n−p)) with p = origins + developments − 1, and
//     the scale φ = Σr²/(n−p).
//  3. For each of N iterations: resample residuals with replacement across
//     all populated cells, invert the residual formula into a pseudo
//     incremental triangle, refit the base method to it, and record the
//     per-origin and total reserve. With Options.Noise = NoiseGamma each
//     simulated future cell additionally draws gamma process noise with
//     mean m and variance φ·m.
//
// 🔁 Reproducibility:
//
//	Every iteration owns a private random stream seeded by a splitmix64
//	mix of (Options.Seed, iteration index). The draw sequence is bound to
//	the index, never to scheduling, so a fixed seed yields bit-identical
//	distributions at any worker count and any completion order.
//
// ⚡ Parallelism & failure accounting:
//
//	Iterations are independent and fan out over an errgroup worker pool;
//	results land in index-addressed slots, so combination is invariant to
//	execution order. An iteration reaching an invalid numeric state (a
//	non-positive refit denominator, a negative pseudo cumulative, a
//	non-positive gamma mean) is excluded and counted in Failed — never
//	silently dropped, never fatal. Context cancellation aborts the whole
//	run with no partial result.
//
// Complexity: O(N · cells) time; memory O(N · origins) for the recorded
// distribution.
package bootstrap
