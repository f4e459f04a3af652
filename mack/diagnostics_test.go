package mack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lossdev/reserving/factors"
	"github.com/lossdev/reserving/mack"
)

// TestDevCorrTest verifies the weighted rank-correlation statistic, its
// bounds and idempotence on the synthetic triangle.
func TestDevCorrTest(t *testing.T) {
	r, err := mack.Fit(synthTri(t))
	require.NoError(t, err)

	ct, err := r.DevCorrTest(0.10)
	require.NoError(t, err)

	// Column pairs (0,1), (1,2), (2,3) share 4, 3, 2 origins; pair (3,4)
	// shares one and is skipped. Σ(I−1) = 3+2+1.
	assert.Equal(t, 6.0, ct.Weight)
	assert.InDelta(t, -ct.Lower, ct.Upper, 1e-15, "bounds are symmetric around zero")
	assert.GreaterOrEqual(t, ct.Statistic, -1.0)
	assert.LessOrEqual(t, ct.Statistic, 1.0)
	assert.Equal(t, 0.10, ct.Significance)
	assert.Equal(t, ct.Statistic >= ct.Lower && ct.Statistic <= ct.Upper, ct.Pass)

	// Idempotent: same result object, same verdict, statistic and bounds.
	again, err := r.DevCorrTest(0.10)
	require.NoError(t, err)
	assert.Equal(t, ct, again)

	// Zero selects the default significance.
	def, err := r.DevCorrTest(0)
	require.NoError(t, err)
	assert.Equal(t, ct, def)

	// A tighter significance widens the acceptance interval.
	tight, err := r.DevCorrTest(0.01)
	require.NoError(t, err)
	assert.Greater(t, tight.Upper, ct.Upper)
}

// TestDevCorrTest_Errors covers bad significance and insufficient data.
func TestDevCorrTest_Errors(t *testing.T) {
	r, err := mack.Fit(synthTri(t))
	require.NoError(t, err)

	_, err = r.DevCorrTest(1.5)
	assert.ErrorIs(t, err, mack.ErrBadSignificance)
	_, err = r.DevCorrTest(-0.1)
	assert.ErrorIs(t, err, mack.ErrBadSignificance)

	// The 3×3 fixture has no adjacent columns sharing two origins.
	small, err := mack.Fit(smallTri(t))
	require.NoError(t, err)
	_, err = small.DevCorrTest(0.10)
	assert.ErrorIs(t, err, factors.ErrInsufficientData)
}

// TestCalendarEffectsTest verifies runs-test bookkeeping and idempotence.
func TestCalendarEffectsTest(t *testing.T) {
	r, err := mack.Fit(synthTri(t))
	require.NoError(t, err)

	rt, err := r.CalendarEffectsTest(0.10)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, rt.Evaluated, 1, "the long diagonals carry mixed signs")
	assert.Equal(t, rt.Flagged == 0, rt.Pass)

	var evaluated, flagged int
	for _, d := range rt.Diagonals {
		if d.Skipped {
			assert.False(t, d.Flagged, "skipped diagonals are never flagged")

			continue
		}
		evaluated++
		if d.Flagged {
			flagged++
		}
		assert.Equal(t, d.Pos+d.Neg >= 2, true)
		assert.Greater(t, d.Variance, 0.0)
		assert.Less(t, d.Lower, d.Expected)
		assert.Greater(t, d.Upper, d.Expected)
		assert.GreaterOrEqual(t, d.Runs, 1)
	}
	assert.Equal(t, evaluated, rt.Evaluated)
	assert.Equal(t, flagged, rt.Flagged)

	// Idempotent.
	again, err := r.CalendarEffectsTest(0.10)
	require.NoError(t, err)
	assert.Equal(t, rt, again)

	_, err = r.CalendarEffectsTest(7)
	assert.ErrorIs(t, err, mack.ErrBadSignificance)
}

// TestDiagnostics verifies the rendering bundle.
func TestDiagnostics(t *testing.T) {
	r, err := mack.Fit(smallTri(t))
	require.NoError(t, err)

	d := r.Diagnostics()
	require.Len(t, d.Summary, 3)

	// Mature origin: zero error, zero ranges.
	a := d.Summary[0]
	assert.Equal(t, 0.0, a.RMSEP)
	assert.Equal(t, 0.0, a.CV)
	assert.Equal(t, 0.0, a.NormUpper)
	assert.Equal(t, 0.0, a.LogNormUpper)

	// Immature origin: consistent error and ordered ranges.
	c := d.Summary[2]
	assert.InDelta(t, r.RMSEP()[2], c.RMSEP, 1e-12)
	assert.InDelta(t, c.RMSEP/c.Reserve, c.CV, 1e-12)
	assert.Less(t, c.NormLower, c.Reserve)
	assert.Greater(t, c.NormUpper, c.Reserve)
	assert.Greater(t, c.LogNormLower, 0.0, "lognormal lower bound stays positive")
	assert.Greater(t, c.LogNormUpper, c.LogNormLower)

	assert.InDelta(t, r.TotalMSEP(), d.TotalMSEP, 1e-12)
	rows, cols := d.Residuals.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	sq, _ := d.Squared.Dims()
	assert.Equal(t, 3, sq)
	assert.Equal(t, factors.Volume, d.Factors.Method)
}
