// Package mack implements Mack's distribution-free chain-ladder model: the
// base projection augmented with process and parameter variance, per-origin
// and aggregate prediction error, and residual-based diagnostic tests.
//
// 🚀 What does Mack's model add?
//
//	The base chain ladder gives a point estimate. Mack (1993) models
//	Var(C[i][j+1] | C[i][j]) = σ²_j · C[i][j] and derives, without any
//	distributional assumption, how uncertain the reserve estimate is:
//	  • process variance — the stochastic movement of future development,
//	  • parameter variance — the estimation error of the factors themselves,
//	  • an aggregate covariance term — all origins share the same estimated
//	    factor pattern, so their errors are positively correlated.
//
// σ²_j is estimated per development transition from the volume-weighted
// factor; when a transition has a single contributing origin (always true
// for the final transition of a complete triangle) the estimator is
// undefined, and the deterministic fallback of Mack (1993) is applied:
//
//	σ²_J = min(σ⁴_{J−1}/σ²_{J−2}, σ²_{J−1}, σ²_{J−2})
//
// carrying the previous value forward when fewer than two estimated
// predecessors exist. The fallback yields identical output for identical
// input — no randomness, no silent NaN.
//
// Diagnostics operate on standardized residuals
// (F[i][j] − f_j)·√C[i][j] / σ_j:
//
//   - DevCorrTest — weighted Spearman rank correlation between residuals of
//     adjacent development periods (Mack 1994). The combined statistic T has
//     E[T] = 0 and Var(T) = 1/Σ(I_k−1); the pass range is the two-sided
//     normal interval at the configured significance (default 0.10).
//   - CalendarEffectsTest — Wald–Wolfowitz runs test on the sign pattern of
//     residuals along each calendar diagonal, flagging diagonals whose run
//     count leaves the normal-approximation range.
//
// References:
//   - Mack, T. (1993), Distribution-Free Calculation of the Standard Error
//     of Chain Ladder Reserve Estimates, ASTIN Bulletin 23(2).
//   - Mack, T. (1994), Measuring the Variability of Chain Ladder Reserve
//     Estimates, CAS Forum Spring 1994.
//
// Complexity: Fit is O(origins · periods); each diagnostic test is
// O(cells · log cells).
package mack
