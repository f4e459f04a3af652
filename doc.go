// Package reserving is an in-memory toolkit for estimating unpaid claim
// liabilities from historical loss triangles using the chain-ladder family
// of actuarial methods.
//
// 🚀 What is reserving?
//
//	A deterministic, thread-safe library that brings together:
//		• Triangle primitives: build immutable loss triangles from raw records,
//		  convert cumulative ↔ incremental, read diagonals & link ratios
//		• Development factors: simple, volume-weighted and medial averages
//		  under configurable inclusion windows
//		• Base chain ladder: square the triangle, project ultimates & reserves
//		• Mack's model: distribution-free process/parameter variance,
//		  prediction error with cross-origin covariance, residual diagnostics
//		• Bootstrap: reproducible parallel ODP resampling producing a full
//		  empirical reserve distribution
//
// ✨ Why choose reserving?
//
//   - Value semantics – triangles are immutable, results are derived values
//   - Reproducible – explicit seeds, no global random state, bit-identical
//     bootstrap runs at any worker count
//   - Clear failure modes – sentinel errors per package, checked via errors.Is
//   - Ecosystem-friendly – result grids are gonum mat.Dense, summaries use
//     gonum stat
//
// Everything is organized under five subpackages:
//
//	triangle/    — the Triangle container and its accessors
//	factors/     — age-to-age factor estimation (simple/volume/medial)
//	chainladder/ — deterministic squaring, ultimates and reserves
//	mack/        — stochastic variance estimates and diagnostic tests
//	bootstrap/   — resampled reserve distributions with failure accounting
//
// Quick ASCII example of a 4×4 cumulative triangle:
//
//	origin \ dev   1     2     3     4
//	2021         100   150   175   180
//	2022         110   165   190
//	2023         120   180
//	2024         130
//
// The lower-right cells are unknown; chainladder fills them by applying
// age-to-age factors, mack quantifies how wrong that projection may be, and
// bootstrap simulates how the reserve could actually distribute.
//
//	go get github.com/lossdev/reserving
package reserving
