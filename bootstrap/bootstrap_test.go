package bootstrap_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lossdev/reserving/bootstrap"
	"github.com/lossdev/reserving/factors"
	"github.com/lossdev/reserving/triangle"
)

// buildTri constructs a cumulative triangle from ragged rows, origins and
// devs labeled from 1.
func buildTri(t *testing.T, rows [][]float64) *triangle.Triangle {
	t.Helper()
	var recs []triangle.Record
	for i, row := range rows {
		for j, v := range row {
			recs = append(recs, triangle.Record{Origin: i + 1, Dev: j + 1, Value: v})
		}
	}
	tri, err := triangle.New(recs, triangle.Cumulative)
	require.NoError(t, err)

	return tri
}

// synthTri generates a deterministic 6×6 triangle with mild multiplicative
// wobble around a fixed development pattern.
func synthTri(t *testing.T, wobble float64) *triangle.Triangle {
	t.Helper()
	pattern := []float64{2.0, 1.5, 1.25, 1.1, 1.05}
	rows := make([][]float64, 6)
	for i := 0; i < 6; i++ {
		row := make([]float64, 6-i)
		row[0] = 100 + 10*float64(i)
		for j := 1; j < len(row); j++ {
			w := 1 + wobble*math.Sin(float64(3*i+5*j+1))
			row[j] = row[j-1] * pattern[j-1] * w
		}
		rows[i] = row
	}

	return buildTri(t, rows)
}

// TestFit_Reproducible verifies that a fixed seed yields bit-identical
// distributions regardless of worker count, and that the seed matters.
func TestFit_Reproducible(t *testing.T) {
	tri := synthTri(t, 0.03)
	opts := bootstrap.Options{Iterations: 200, Seed: 7, Workers: 1}

	serial, err := bootstrap.Fit(context.Background(), tri, opts)
	require.NoError(t, err)

	opts.Workers = 4
	parallel, err := bootstrap.Fit(context.Background(), tri, opts)
	require.NoError(t, err)

	assert.Equal(t, serial.Totals(), parallel.Totals(), "worker count must not change the distribution")
	assert.Equal(t, serial.Reserves(), parallel.Reserves())
	assert.Equal(t, serial.Failed(), parallel.Failed())

	opts.Seed = 8
	other, err := bootstrap.Fit(context.Background(), tri, opts)
	require.NoError(t, err)
	assert.NotEqual(t, serial.Totals(), other.Totals(), "a different seed draws a different distribution")
}

// TestFit_MeanConvergence verifies the simulated total reserve centers on
// the deterministic chain-ladder reserve (documented tolerance: 15%).
func TestFit_MeanConvergence(t *testing.T) {
	tri := synthTri(t, 0.03)

	r, err := bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 2000, Seed: 11})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Failed(), "a well-behaved triangle should not lose iterations")
	assert.Equal(t, 2000, r.Accepted())

	s, err := r.Summary()
	require.NoError(t, err)
	base := r.Base().TotalReserve()
	assert.InDelta(t, base, s.Mean, 0.15*base, "bootstrap mean tracks the point estimate")
	assert.Greater(t, s.StdDev, 0.0)
}

// TestFit_ExactTriangle verifies a perfectly multiplicative triangle has
// zero residuals: every iteration reproduces the base reserve, and gamma
// noise is rejected for lack of a positive scale. The fixture uses factors
// 2, 1.5 and 1.25 on dyadic starting values so every intermediate quantity
// is exact in binary floating point.
func TestFit_ExactTriangle(t *testing.T) {
	tri := buildTri(t, [][]float64{
		{128, 256, 384, 480},
		{144, 288, 432},
		{160, 320},
		{176},
	})

	r, err := bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 50, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Scale(), "exact fit has zero Pearson scale")

	base := r.Base().TotalReserve()
	for _, v := range r.Totals() {
		assert.InDelta(t, base, v, 1e-9, "zero residuals reproduce the point estimate")
	}

	_, err = bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 50, Seed: 3, Noise: bootstrap.NoiseGamma})
	assert.ErrorIs(t, err, bootstrap.ErrUnstableFit)
}

// TestFit_GammaNoise verifies the gamma process-variance model widens the
// distribution while staying reproducible and accounted.
func TestFit_GammaNoise(t *testing.T) {
	tri := synthTri(t, 0.03)
	opts := bootstrap.Options{Iterations: 500, Seed: 5, Noise: bootstrap.NoiseGamma}

	r, err := bootstrap.Fit(context.Background(), tri, opts)
	require.NoError(t, err)
	assert.Equal(t, r.Requested(), r.Accepted()+r.Failed())

	again, err := bootstrap.Fit(context.Background(), tri, opts)
	require.NoError(t, err)
	assert.Equal(t, r.Totals(), again.Totals(), "gamma draws are bound to the iteration seed")

	plain, err := bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 500, Seed: 5})
	require.NoError(t, err)

	sNoise, err := r.Summary()
	require.NoError(t, err)
	sPlain, err := plain.Summary()
	require.NoError(t, err)
	assert.Greater(t, sNoise.StdDev, sPlain.StdDev, "process noise adds spread")
}

// TestFit_UnstableFit verifies decreasing cumulative development (negative
// fitted incrementals) is rejected deterministically.
func TestFit_UnstableFit(t *testing.T) {
	tri := buildTri(t, [][]float64{
		{100, 90, 85},
		{100, 92},
		{100},
	})

	_, err := bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 10})
	assert.ErrorIs(t, err, bootstrap.ErrUnstableFit)
}

// TestFit_Validation covers argument checks and degrees-of-freedom guards.
func TestFit_Validation(t *testing.T) {
	tri := synthTri(t, 0.03)

	_, err := bootstrap.Fit(context.Background(), nil, bootstrap.DefaultOptions())
	assert.ErrorIs(t, err, bootstrap.ErrNilTriangle)

	_, err = bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: -1})
	assert.ErrorIs(t, err, bootstrap.ErrBadOptions)

	_, err = bootstrap.Fit(context.Background(), tri, bootstrap.Options{Workers: -2})
	assert.ErrorIs(t, err, bootstrap.ErrBadOptions)

	_, err = bootstrap.Fit(context.Background(), tri, bootstrap.Options{Noise: bootstrap.Noise(9)})
	assert.ErrorIs(t, err, bootstrap.ErrBadOptions)

	// A 2×2 triangle has 3 cells and 3 parameters: no residual degrees of
	// freedom.
	tiny := buildTri(t, [][]float64{{100, 150}, {110}})
	_, err = bootstrap.Fit(context.Background(), tiny, bootstrap.DefaultOptions())
	assert.ErrorIs(t, err, factors.ErrInsufficientData)
}

// TestFit_Cancellation verifies a canceled context aborts the run with no
// partial result.
func TestFit_Cancellation(t *testing.T) {
	tri := synthTri(t, 0.03)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := bootstrap.Fit(ctx, tri, bootstrap.Options{Iterations: 5000})
	assert.Nil(t, r, "no partial distribution on cancellation")
	assert.ErrorIs(t, err, context.Canceled)
}

// TestSummary verifies quantile ordering and probability validation.
func TestSummary(t *testing.T) {
	tri := synthTri(t, 0.03)

	r, err := bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 400, Seed: 13})
	require.NoError(t, err)

	s, err := r.Summary(0.25, 0.5, 0.75, 0.95)
	require.NoError(t, err)
	require.Len(t, s.Quantiles, 4)
	for i := 1; i < len(s.Quantiles); i++ {
		assert.GreaterOrEqual(t, s.Quantiles[i].Value, s.Quantiles[i-1].Value, "quantiles are monotone")
	}

	_, err = r.Summary(0)
	assert.ErrorIs(t, err, bootstrap.ErrBadOptions)
	_, err = r.Summary(1.2)
	assert.ErrorIs(t, err, bootstrap.ErrBadOptions)

	def, err := r.Summary()
	require.NoError(t, err)
	assert.Len(t, def.Quantiles, 4, "default probability set")
}

// TestSummary_SingleIteration verifies a one-iteration run yields a finite
// summary with zero spread rather than a NaN standard deviation.
func TestSummary_SingleIteration(t *testing.T) {
	tri := buildTri(t, [][]float64{
		{128, 256, 384, 480},
		{144, 288, 432},
		{160, 320},
		{176},
	})

	r, err := bootstrap.Fit(context.Background(), tri, bootstrap.Options{Iterations: 1, Seed: 9})
	require.NoError(t, err)
	require.Equal(t, 1, r.Accepted())

	s, err := r.Summary()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(s.StdDev), "a single sample must not poison the summary")
	assert.Equal(t, 0.0, s.StdDev, "one sample has no spread")
	assert.Equal(t, r.Base().TotalReserve(), s.Mean)
	for _, q := range s.Quantiles {
		assert.Equal(t, s.Mean, q.Value)
	}
}
