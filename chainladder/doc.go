// Package chainladder implements the deterministic base chain-ladder
// projection: squaring a loss triangle with a development factor pattern
// and deriving per-origin ultimates and reserves.
//
// Algorithm outline:
//  1. Validate the pattern: exactly one positive finite factor per
//     development transition (Cols−1 of them).
//  2. For every origin, copy the observed cumulative values and fill each
//     unobserved lower-right cell with the projection
//     C[i][k] = C[i][k−1] · pattern[k−1].
//  3. Ultimate_i is the final squared column; Reserve_i = Ultimate_i −
//     latest observed value, exactly 0 for origins already at the final
//     development age.
//
// The fit is fully deterministic given the pattern: no randomness, no I/O.
// The stochastic extensions (mack, bootstrap) reuse this projection as
// their point estimate.
//
// Complexity: O(origins · development periods) time and space.
package chainladder
