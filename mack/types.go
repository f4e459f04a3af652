package mack

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/lossdev/reserving/chainladder"
	"github.com/lossdev/reserving/factors"
	"github.com/lossdev/reserving/triangle"
)

// Sentinel errors returned by this package; match with errors.Is.
// Data-sufficiency failures wrap factors.ErrInsufficientData.
var (
	// ErrNilTriangle indicates a nil *triangle.Triangle argument.
	ErrNilTriangle = errors.New("mack: triangle is nil")

	// ErrBadSignificance indicates a significance level outside (0, 1).
	ErrBadSignificance = errors.New("mack: significance level must lie in (0, 1)")
)

// DefaultSignificance is the significance level used by the diagnostic
// tests when the caller passes 0.
const DefaultSignificance = 0.10

// Result extends the base chain-ladder fit with Mack's variance estimates.
// All accessors return copies; a Result is safe to share.
type Result struct {
	base *chainladder.Result
	set  *factors.Set
	tri  *triangle.Triangle

	sigma2 []float64 // per transition
	counts []int     // contributing origins per transition
	// firstFallback is the first transition index whose sigma² came from the
	// deterministic fallback rather than the direct estimator; equal to
	// len(sigma2) when every transition was estimable.
	firstFallback int

	processVar []float64 // per origin
	paramVar   []float64 // per origin
	msep       []float64 // per origin, process + parameter
	rmsep      []float64 // per origin, √msep

	totalMSEP  float64
	totalRMSEP float64
	covTerm    float64 // cross-origin covariance contribution inside totalMSEP

	residuals *mat.Dense // rows × transitions, NaN holes
}

// CorrelationTest is the outcome of DevCorrTest: the combined weighted
// Spearman statistic with its two-sided pass range.
type CorrelationTest struct {
	// Statistic is the weighted rank correlation T across adjacent
	// development periods.
	Statistic float64

	// Lower and Upper bound the acceptance interval ±z·√Var(T).
	Lower, Upper float64

	// Weight is Σ(I_k − 1), the total weight behind the statistic, kept in
	// the accumulation type so no truncation can occur.
	Weight float64

	// Significance is the level the bounds were computed at.
	Significance float64

	// Pass reports whether Statistic lies inside [Lower, Upper]: no
	// evidence against the development-period independence assumption.
	Pass bool
}

// DiagonalRuns is the runs-test outcome for a single calendar diagonal.
type DiagonalRuns struct {
	// Diagonal is the calendar index d; residual cell (i, k) lies on d=i+k.
	Diagonal int

	// Pos and Neg count positive and negative residual signs; Runs counts
	// maximal same-sign streaks.
	Pos, Neg, Runs int

	// Expected and Variance are the run-count moments under the
	// random-ordering null hypothesis.
	Expected, Variance float64

	// Lower and Upper bound the acceptance interval for Runs.
	Lower, Upper float64

	// Flagged reports Runs outside [Lower, Upper].
	Flagged bool

	// Skipped reports a degenerate diagonal (single sign, or fewer than two
	// signed residuals) excluded from evaluation.
	Skipped bool
}

// RunsTest is the outcome of CalendarEffectsTest across all diagonals.
type RunsTest struct {
	Diagonals []DiagonalRuns

	// Evaluated counts non-skipped diagonals; Flagged counts those whose
	// run count left the acceptance range.
	Evaluated, Flagged int

	// Significance is the level the per-diagonal bounds were computed at.
	Significance float64

	// Pass reports that no evaluated diagonal was flagged: no evidence of
	// calendar-year effects.
	Pass bool
}

// SummaryRow is one origin's line of the Mack summary: the base projection
// columns plus prediction error and 95% range estimates.
type SummaryRow struct {
	Origin   int
	Maturity int
	Latest   float64
	CLDF     float64
	Ultimate float64
	Reserve  float64

	// RMSEP is the root mean squared error of prediction; CV is RMSEP over
	// the reserve (0 for fully mature origins).
	RMSEP float64
	CV    float64

	// NormLower/NormUpper and LogNormLower/LogNormUpper are 95% reserve
	// ranges under normal and lognormal assumptions (0 when the reserve or
	// its error is 0).
	NormLower, NormUpper       float64
	LogNormLower, LogNormUpper float64
}

// Diagnostics bundles everything an external rendering collaborator needs:
// the summary table, the standardized residual grid, the squared triangle
// and the factor pattern. Rendering itself is out of scope.
type Diagnostics struct {
	Summary    []SummaryRow
	Residuals  *mat.Dense
	Squared    *mat.Dense
	Factors    *factors.Set
	TotalMSEP  float64
	TotalRMSEP float64
}
