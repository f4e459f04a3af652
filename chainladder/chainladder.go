package chainladder

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lossdev/reserving/factors"
	"github.com/lossdev/reserving/triangle"
)

// Sentinel errors returned by this package; match with errors.Is.
var (
	// ErrNilTriangle indicates a nil *triangle.Triangle argument.
	ErrNilTriangle = errors.New("chainladder: triangle is nil")

	// ErrNilFactorSet indicates a nil *factors.Set argument.
	ErrNilFactorSet = errors.New("chainladder: factor set is nil")

	// ErrDimensionMismatch indicates a factor pattern whose length differs
	// from the triangle's transition count (development periods − 1).
	ErrDimensionMismatch = errors.New("chainladder: factor pattern length does not match triangle shape")

	// ErrBadPattern indicates a non-positive or non-finite pattern value.
	ErrBadPattern = errors.New("chainladder: factor pattern values must be positive and finite")
)

// Result is the outcome of a base chain-ladder fit. It keeps a read-only
// reference to its source triangle and pattern; all accessors return
// copies, so a Result is safe to share across goroutines.
type Result struct {
	tri       *triangle.Triangle
	pattern   []float64
	squared   *mat.Dense
	ultimates []float64
	reserves  []float64
	total     float64
}

// SummaryRow is one origin's line of the fit summary.
//
//   - Maturity — observed development count for the origin.
//   - Latest   — most mature observed cumulative value.
//   - CLDF     — cumulative (age-to-ultimate) development factor applied.
type SummaryRow struct {
	Origin   int
	Maturity int
	Latest   float64
	CLDF     float64
	Ultimate float64
	Reserve  float64
}

// Fit squares tri with the supplied factor pattern and derives ultimates
// and reserves. The pattern must contain exactly tri.Cols()-1 positive
// finite factors, one per development transition, in age order.
//
// Errors: ErrNilTriangle, ErrDimensionMismatch, ErrBadPattern.
func Fit(tri *triangle.Triangle, pattern []float64) (*Result, error) {
	if tri == nil {
		return nil, ErrNilTriangle
	}
	if len(pattern) != tri.Cols()-1 {
		return nil, fmt.Errorf("pattern length %d, want %d: %w", len(pattern), tri.Cols()-1, ErrDimensionMismatch)
	}
	for j, f := range pattern {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("pattern[%d] = %g: %w", j, f, ErrBadPattern)
		}
	}

	rows, cols := tri.Rows(), tri.Cols()
	cum := tri.Cumulative()

	squared := mat.NewDense(rows, cols, nil)
	ultimates := make([]float64, rows)
	reserves := make([]float64, rows)
	var total float64

	for i := 0; i < rows; i++ {
		known := len(cum[i])
		for j := 0; j < known; j++ {
			squared.Set(i, j, cum[i][j])
		}
		for k := known; k < cols; k++ {
			squared.Set(i, k, squared.At(i, k-1)*pattern[k-1])
		}
		ultimates[i] = squared.At(i, cols-1)
		if known == cols {
			// Fully mature origin: reserve is exactly zero, not a float residue.
			reserves[i] = 0
		} else {
			reserves[i] = ultimates[i] - cum[i][known-1]
		}
		total += reserves[i]
	}

	return &Result{
		tri:       tri,
		pattern:   append([]float64(nil), pattern...),
		squared:   squared,
		ultimates: ultimates,
		reserves:  reserves,
		total:     total,
	}, nil
}

// FitFactors is a convenience wrapper applying an estimated factor set.
//
// Errors: ErrNilFactorSet plus everything Fit returns.
func FitFactors(tri *triangle.Triangle, set *factors.Set) (*Result, error) {
	if set == nil {
		return nil, ErrNilFactorSet
	}

	return Fit(tri, set.Factors)
}

// Triangle returns the source triangle (immutable by construction).
func (r *Result) Triangle() *triangle.Triangle { return r.tri }

// Pattern returns a copy of the applied factor pattern.
func (r *Result) Pattern() []float64 { return append([]float64(nil), r.pattern...) }

// Squared returns a copy of the completed rows×cols cumulative grid:
// observed cells verbatim, unobserved cells filled with the projection.
func (r *Result) Squared() *mat.Dense { return mat.DenseCopyOf(r.squared) }

// Ultimates returns a copy of the projected ultimate loss per origin.
func (r *Result) Ultimates() []float64 { return append([]float64(nil), r.ultimates...) }

// Reserves returns a copy of the reserve per origin (ultimate − latest).
func (r *Result) Reserves() []float64 { return append([]float64(nil), r.reserves...) }

// TotalReserve returns the aggregate reserve across origins.
func (r *Result) TotalReserve() float64 { return r.total }

// CumulativeFactors returns the age-to-ultimate factors: entry j is the
// product of the remaining pattern factors from age j onward; the final
// entry is exactly 1.
func (r *Result) CumulativeFactors() []float64 {
	cldf := make([]float64, len(r.pattern)+1)
	cldf[len(r.pattern)] = 1
	for j := len(r.pattern) - 1; j >= 0; j-- {
		cldf[j] = cldf[j+1] * r.pattern[j]
	}

	return cldf
}

// Summary returns one row per origin with maturity, latest observed value,
// applied age-to-ultimate factor, ultimate and reserve.
func (r *Result) Summary() []SummaryRow {
	origins := r.tri.Origins()
	cldf := r.CumulativeFactors()
	latest := r.tri.LatestDiagonal()

	rows := make([]SummaryRow, len(origins))
	for i, o := range origins {
		m := r.tri.DevCount(i)
		rows[i] = SummaryRow{
			Origin:   o,
			Maturity: m,
			Latest:   latest[i],
			CLDF:     cldf[m-1],
			Ultimate: r.ultimates[i],
			Reserve:  r.reserves[i],
		}
	}

	return rows
}
