package mack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lossdev/reserving/chainladder"
	"github.com/lossdev/reserving/factors"
	"github.com/lossdev/reserving/triangle"
)

// Fit runs Mack's model over tri.
//
// Stages:
//  1. Estimate volume-weighted all-origin factors (Mack's estimator) and
//     the base chain-ladder projection.
//  2. Estimate σ²_j per transition; apply the deterministic fallback where
//     fewer than two origins contribute.
//  3. Propagate process and parameter variance per origin over the
//     projected tail; combine into per-origin and aggregate MSEP with the
//     cross-origin covariance term.
//  4. Compute the standardized residual grid backing the diagnostics.
//
// Errors: ErrNilTriangle; wrapped factors.ErrInsufficientData when the
// triangle has fewer than three development periods or no transition with
// two contributing origins; plus anything factor estimation surfaces.
func Fit(tri *triangle.Triangle) (*Result, error) {
	if tri == nil {
		return nil, ErrNilTriangle
	}
	if tri.Cols() < 3 {
		return nil, fmt.Errorf("mack: need at least three development periods, have %d: %w",
			tri.Cols(), factors.ErrInsufficientData)
	}

	set, err := factors.Estimate(tri, factors.Volume, factors.Options{Window: factors.AllOrigins})
	if err != nil {
		return nil, err
	}
	base, err := chainladder.FitFactors(tri, set)
	if err != nil {
		return nil, err
	}

	a2a, err := tri.AgeToAge()
	if err != nil {
		return nil, err
	}
	cum := tri.Cumulative()

	r := &Result{base: base, set: set, tri: tri, counts: append([]int(nil), set.Counts...)}
	if err = r.estimateSigma2(cum, a2a); err != nil {
		return nil, err
	}
	r.propagateVariance(cum)
	r.computeResiduals(cum, a2a)

	return r, nil
}

// estimateSigma2 fills sigma2 per transition:
//
//	σ²_j = Σ_i C[i][j]·(F[i][j] − f_j)² / (n_j − 1)
//
// over contributing origins. Trailing transitions with n_j ≤ 1 use Mack's
// deterministic fallback min(σ⁴_{j−1}/σ²_{j−2}, σ²_{j−1}, σ²_{j−2}),
// carrying the previous value forward when fewer than two estimated
// predecessors exist (or the division would be degenerate).
func (r *Result) estimateSigma2(cum, a2a [][]float64) error {
	transitions := len(r.set.Factors)
	r.sigma2 = make([]float64, transitions)
	r.firstFallback = transitions

	for j := 0; j < transitions; j++ {
		if r.counts[j] < 2 {
			if j == 0 {
				return fmt.Errorf("mack: no transition with two contributing origins: %w",
					factors.ErrInsufficientData)
			}
			if r.firstFallback == transitions {
				r.firstFallback = j
			}
			if j >= 2 && r.sigma2[j-2] > 0 {
				prev, prev2 := r.sigma2[j-1], r.sigma2[j-2]
				r.sigma2[j] = math.Min(prev*prev/prev2, math.Min(prev, prev2))
			} else {
				r.sigma2[j] = r.sigma2[j-1]
			}

			continue
		}

		var sum float64
		f := r.set.Factors[j]
		for i, row := range a2a {
			if j < len(row) {
				d := row[j] - f
				sum += cum[i][j] * d * d
			}
		}
		r.sigma2[j] = sum / float64(r.counts[j]-1)
	}

	return nil
}

// propagateVariance computes, per origin, Mack's process and parameter
// variance over the unobserved tail, then the aggregate MSEP including the
// cross-origin covariance from the shared factor estimates.
func (r *Result) propagateVariance(cum [][]float64) {
	rows := r.tri.Rows()
	transitions := len(r.set.Factors)
	f := r.set.Factors
	ultimates := r.base.Ultimates()
	squared := r.base.Squared()

	// S[j] = Σ C[i][j] over origins contributing to transition j — the
	// denominator of the volume-weighted factor, reused as the parameter
	// variance weight.
	colSum := make([]float64, transitions)
	for j := 0; j < transitions; j++ {
		for _, row := range cum {
			if j+1 < len(row) {
				colSum[j] += row[j]
			}
		}
	}

	r.processVar = make([]float64, rows)
	r.paramVar = make([]float64, rows)
	r.msep = make([]float64, rows)
	r.rmsep = make([]float64, rows)

	// paramWeight[i] = Σ_k (σ²_k/f_k²)/S_k over origin i's tail; kept for
	// the covariance term below.
	paramWeight := make([]float64, rows)

	for i := 0; i < rows; i++ {
		latest := len(cum[i]) - 1
		if latest >= transitions {
			continue // fully mature: zero prediction error
		}
		var proc, param float64
		for k := latest; k < transitions; k++ {
			ratio := r.sigma2[k] / (f[k] * f[k])
			if ck := squared.At(i, k); ck > 0 {
				proc += ratio / ck
			}
			if colSum[k] > 0 {
				param += ratio / colSum[k]
			}
		}
		u := ultimates[i]
		paramWeight[i] = param
		r.processVar[i] = u * u * proc
		r.paramVar[i] = u * u * param
		r.msep[i] = r.processVar[i] + r.paramVar[i]
		r.rmsep[i] = math.Sqrt(r.msep[i])
	}

	// Aggregate: Σ msep_i plus 2·U_i·(Σ_{q>i} U_q)·paramWeight_i for each
	// origin pair (i < q) sharing the estimated factors.
	suffix := make([]float64, rows+1)
	for i := rows - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + ultimates[i]
	}
	var total, cov float64
	for i := 0; i < rows; i++ {
		total += r.msep[i]
		cov += 2 * ultimates[i] * suffix[i+1] * paramWeight[i]
	}
	r.covTerm = cov
	r.totalMSEP = total + cov
	r.totalRMSEP = math.Sqrt(r.totalMSEP)
}

// computeResiduals fills the rows×transitions standardized residual grid:
// (F[i][j] − f_j)·√C[i][j] / σ_j, NaN where no ratio exists or σ_j is zero.
func (r *Result) computeResiduals(cum, a2a [][]float64) {
	rows := r.tri.Rows()
	transitions := len(r.set.Factors)
	nan := math.NaN()

	res := mat.NewDense(rows, transitions, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < transitions; j++ {
			res.Set(i, j, nan)
		}
	}
	for i, row := range a2a {
		for j := range row {
			sd := math.Sqrt(r.sigma2[j])
			if sd == 0 {
				continue
			}
			res.Set(i, j, (row[j]-r.set.Factors[j])*math.Sqrt(cum[i][j])/sd)
		}
	}
	r.residuals = res
}

// Base returns the underlying deterministic chain-ladder result.
func (r *Result) Base() *chainladder.Result { return r.base }

// FactorSet returns the volume-weighted factor set the model was fit with.
func (r *Result) FactorSet() *factors.Set { return r.set }

// Sigma2 returns a copy of the per-transition variance estimates σ²_j.
// Entries from FirstFallback onward were extrapolated deterministically.
func (r *Result) Sigma2() []float64 { return append([]float64(nil), r.sigma2...) }

// FirstFallback returns the first transition index whose σ² came from the
// fallback rule, or the transition count when all were directly estimable.
func (r *Result) FirstFallback() int { return r.firstFallback }

// ProcessVariance returns a copy of the per-origin process variance.
func (r *Result) ProcessVariance() []float64 { return append([]float64(nil), r.processVar...) }

// ParameterVariance returns a copy of the per-origin parameter variance.
func (r *Result) ParameterVariance() []float64 { return append([]float64(nil), r.paramVar...) }

// MSEP returns a copy of the per-origin mean squared error of prediction.
func (r *Result) MSEP() []float64 { return append([]float64(nil), r.msep...) }

// RMSEP returns a copy of the per-origin root MSEP.
func (r *Result) RMSEP() []float64 { return append([]float64(nil), r.rmsep...) }

// TotalMSEP returns the aggregate MSEP including the covariance term.
func (r *Result) TotalMSEP() float64 { return r.totalMSEP }

// TotalRMSEP returns √TotalMSEP, the aggregate prediction error.
func (r *Result) TotalRMSEP() float64 { return r.totalRMSEP }

// CovarianceTerm returns the cross-origin covariance contribution inside
// TotalMSEP. Always non-negative.
func (r *Result) CovarianceTerm() float64 { return r.covTerm }

// StandardizedResiduals returns a copy of the rows×transitions residual
// grid with NaN holes for absent cells.
func (r *Result) StandardizedResiduals() *mat.Dense { return mat.DenseCopyOf(r.residuals) }
