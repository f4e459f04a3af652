package mack

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lossdev/reserving/factors"
)

// stdNormal is the unit normal used for every quantile lookup in this file.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// DevCorrTest evaluates whether residuals of adjacent development periods
// are correlated across origins, which would violate the period
// independence assumption of the chain ladder.
//
// For each adjacent column pair (k, k+1) with I_k ≥ 2 common origins, the
// residual ranks of both columns are correlated (Spearman via Pearson on
// average ranks); pair statistics are combined with weights I_k − 1. Under
// the null, E[T] = 0 and Var(T) = 1/Σ(I_k − 1); the pass range is the
// two-sided normal interval at significance sig (0 selects
// DefaultSignificance).
//
// The test is a pure function of the stored residual grid: repeated calls
// return identical results.
//
// Errors: ErrBadSignificance; wrapped factors.ErrInsufficientData when no
// column pair has two common origins.
func (r *Result) DevCorrTest(sig float64) (*CorrelationTest, error) {
	if sig == 0 {
		sig = DefaultSignificance
	}
	if sig <= 0 || sig >= 1 {
		return nil, fmt.Errorf("%g: %w", sig, ErrBadSignificance)
	}

	_, transitions := r.residuals.Dims()
	var weighted, weight float64
	for k := 0; k+1 < transitions; k++ {
		xs, ys := r.commonResiduals(k, k+1)
		if len(xs) < 2 {
			continue
		}
		rho := stat.Correlation(ranks(xs), ranks(ys), nil)
		if math.IsNaN(rho) {
			continue // a fully tied column carries no rank information
		}
		w := float64(len(xs) - 1)
		weighted += w * rho
		weight += w
	}
	if weight == 0 {
		return nil, fmt.Errorf("mack: no adjacent development periods share two origins: %w",
			factors.ErrInsufficientData)
	}

	statT := weighted / weight
	bound := stdNormal.Quantile(1-sig/2) / math.Sqrt(weight)

	return &CorrelationTest{
		Statistic:    statT,
		Lower:        -bound,
		Upper:        bound,
		Weight:       weight,
		Significance: sig,
		Pass:         statT >= -bound && statT <= bound,
	}, nil
}

// CalendarEffectsTest evaluates calendar-year (diagonal) effects with a
// runs test on the sign pattern of standardized residuals along each
// calendar diagonal. Residual cell (i, k) lies on diagonal i+k. A diagonal
// with fewer than two signed residuals or a single sign is skipped (and
// reported as such); an evaluated diagonal is flagged when its run count
// leaves the normal-approximation range
//
//	E[R] = 1 + 2·n₁·n₂/n,  Var[R] = 2·n₁·n₂·(2·n₁·n₂ − n) / (n²·(n−1))
//
// at significance sig (0 selects DefaultSignificance). Idempotent.
//
// Errors: ErrBadSignificance; wrapped factors.ErrInsufficientData when
// every diagonal is degenerate.
func (r *Result) CalendarEffectsTest(sig float64) (*RunsTest, error) {
	if sig == 0 {
		sig = DefaultSignificance
	}
	if sig <= 0 || sig >= 1 {
		return nil, fmt.Errorf("%g: %w", sig, ErrBadSignificance)
	}

	rows, transitions := r.residuals.Dims()
	z := stdNormal.Quantile(1 - sig/2)

	out := &RunsTest{Significance: sig}
	for d := 0; d < transitions+rows-1; d++ {
		var signs []bool // true = positive
		for i := 0; i < rows; i++ {
			k := d - i
			if k < 0 || k >= transitions {
				continue
			}
			v := r.residuals.At(i, k)
			if math.IsNaN(v) || v == 0 {
				continue
			}
			signs = append(signs, v > 0)
		}
		if len(signs) == 0 {
			continue // diagonal entirely outside the populated grid
		}

		dr := DiagonalRuns{Diagonal: d}
		for _, s := range signs {
			if s {
				dr.Pos++
			} else {
				dr.Neg++
			}
		}
		n := dr.Pos + dr.Neg
		if n < 2 || dr.Pos == 0 || dr.Neg == 0 {
			dr.Skipped = true
			out.Diagonals = append(out.Diagonals, dr)

			continue
		}

		dr.Runs = 1
		for i := 1; i < len(signs); i++ {
			if signs[i] != signs[i-1] {
				dr.Runs++
			}
		}

		p, q, nn := float64(dr.Pos), float64(dr.Neg), float64(n)
		dr.Expected = 1 + 2*p*q/nn
		dr.Variance = 2 * p * q * (2*p*q - nn) / (nn * nn * (nn - 1))
		if dr.Variance <= 0 {
			dr.Skipped = true
			out.Diagonals = append(out.Diagonals, dr)

			continue
		}
		half := z * math.Sqrt(dr.Variance)
		dr.Lower = dr.Expected - half
		dr.Upper = dr.Expected + half
		dr.Flagged = float64(dr.Runs) < dr.Lower || float64(dr.Runs) > dr.Upper

		out.Evaluated++
		if dr.Flagged {
			out.Flagged++
		}
		out.Diagonals = append(out.Diagonals, dr)
	}

	if out.Evaluated == 0 {
		return nil, fmt.Errorf("mack: every calendar diagonal is degenerate: %w",
			factors.ErrInsufficientData)
	}
	out.Pass = out.Flagged == 0

	return out, nil
}

// Diagnostics assembles the rendering bundle: summary rows with prediction
// error and 95% range estimates, the residual grid, the squared triangle
// and the factor set.
func (r *Result) Diagnostics() *Diagnostics {
	baseRows := r.base.Summary()
	z95 := stdNormal.Quantile(0.975)

	rows := make([]SummaryRow, len(baseRows))
	for i, b := range baseRows {
		row := SummaryRow{
			Origin:   b.Origin,
			Maturity: b.Maturity,
			Latest:   b.Latest,
			CLDF:     b.CLDF,
			Ultimate: b.Ultimate,
			Reserve:  b.Reserve,
			RMSEP:    r.rmsep[i],
		}
		if b.Reserve > 0 {
			row.CV = r.rmsep[i] / b.Reserve
			row.NormLower = b.Reserve - z95*r.rmsep[i]
			row.NormUpper = b.Reserve + z95*r.rmsep[i]
			if r.msep[i] > 0 {
				// Lognormal matched to mean = reserve, variance = msep.
				s2 := math.Log(1 + r.msep[i]/(b.Reserve*b.Reserve))
				mu := math.Log(b.Reserve) - s2/2
				s := math.Sqrt(s2)
				row.LogNormLower = math.Exp(mu - z95*s)
				row.LogNormUpper = math.Exp(mu + z95*s)
			}
		}
		rows[i] = row
	}

	return &Diagnostics{
		Summary:    rows,
		Residuals:  r.StandardizedResiduals(),
		Squared:    r.base.Squared(),
		Factors:    r.set,
		TotalMSEP:  r.totalMSEP,
		TotalRMSEP: r.totalRMSEP,
	}
}

// commonResiduals returns the residual pairs of columns a and b restricted
// to origins where both are defined, in ascending origin order.
func (r *Result) commonResiduals(a, b int) (xs, ys []float64) {
	rows, _ := r.residuals.Dims()
	for i := 0; i < rows; i++ {
		x, y := r.residuals.At(i, a), r.residuals.At(i, b)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	return xs, ys
}

// ranks converts values to average ranks (1-based; ties share the mean of
// the positions they occupy).
func ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	out := make([]float64, len(xs))
	for s := 0; s < len(idx); {
		e := s + 1
		for e < len(idx) && xs[idx[e]] == xs[idx[s]] {
			e++
		}
		avg := float64(s+e+1) / 2 // mean of 1-based positions s+1..e
		for k := s; k < e; k++ {
			out[idx[k]] = avg
		}
		s = e
	}

	return out
}
