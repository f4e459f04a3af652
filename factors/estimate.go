package factors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lossdev/reserving/triangle"
)

// Estimate computes one averaged age-to-age factor per development
// transition of tri, using method m under opts.
//
// Algorithm outline:
//  1. Validate inputs; compute the ragged individual-ratio grid
//     (propagating triangle.ErrUndefinedRatio on bad denominators).
//  2. Per transition j, collect the contributing origins: those observed at
//     both age j and age j+1. Apply the inclusion window (most recent
//     opts.Window contributors; 0 keeps all).
//  3. Average per the method. Medial requires 2·Trim+1 included origins,
//     otherwise ErrInsufficientData.
//
// Errors: ErrNilTriangle, ErrUnknownMethod, ErrBadOptions,
// ErrInsufficientData, triangle.ErrUndefinedRatio.
func Estimate(tri *triangle.Triangle, m Method, opts Options) (*Set, error) {
	if tri == nil {
		return nil, ErrNilTriangle
	}
	if m != Simple && m != Volume && m != Medial {
		return nil, fmt.Errorf("%d: %w", int(m), ErrUnknownMethod)
	}
	if opts.Window < 0 {
		return nil, fmt.Errorf("window %d must be >= 0: %w", opts.Window, ErrBadOptions)
	}
	if opts.Trim < 0 {
		return nil, fmt.Errorf("trim %d must be >= 0: %w", opts.Trim, ErrBadOptions)
	}

	transitions := tri.Cols() - 1
	if transitions < 1 {
		return nil, fmt.Errorf("triangle has a single development period, no transitions: %w", ErrInsufficientData)
	}

	a2a, err := tri.AgeToAge()
	if err != nil {
		return nil, err
	}
	cum := tri.Cumulative()

	set := &Set{
		Factors: make([]float64, transitions),
		Counts:  make([]int, transitions),
		Method:  m,
		Window:  opts.Window,
		Trim:    opts.Trim,
	}

	for j := 0; j < transitions; j++ {
		included := contributors(a2a, j, opts.Window)
		if len(included) == 0 {
			return nil, fmt.Errorf("transition %d has no contributing origins: %w", j, ErrInsufficientData)
		}
		set.Counts[j] = len(included)

		switch m {
		case Simple:
			set.Factors[j] = meanRatio(a2a, included, j)

		case Volume:
			var num, den float64
			for _, i := range included {
				num += cum[i][j+1]
				den += cum[i][j]
			}
			if den <= 0 {
				return nil, fmt.Errorf("transition %d denominator sum %g: %w", j, den, triangle.ErrUndefinedRatio)
			}
			set.Factors[j] = num / den

		case Medial:
			need := 2*opts.Trim + 1
			if len(included) < need {
				return nil, fmt.Errorf("transition %d: medial trim %d needs >= %d origins, have %d: %w",
					j, opts.Trim, need, len(included), ErrInsufficientData)
			}
			ratios := make([]float64, 0, len(included))
			for _, i := range included {
				ratios = append(ratios, a2a[i][j])
			}
			sort.Float64s(ratios)
			ratios = ratios[opts.Trim : len(ratios)-opts.Trim]
			var sum float64
			for _, r := range ratios {
				sum += r
			}
			set.Factors[j] = sum / float64(len(ratios))
		}
	}

	return set, nil
}

// contributors returns the origin indices observed at both ends of
// transition j, windowed to the most recent w when w > 0.
func contributors(a2a [][]float64, j, w int) []int {
	var idx []int
	for i, row := range a2a {
		if j < len(row) {
			idx = append(idx, i)
		}
	}
	if w > 0 && len(idx) > w {
		idx = idx[len(idx)-w:]
	}

	return idx
}

// meanRatio averages a2a[i][j] over the included origin indices.
func meanRatio(a2a [][]float64, included []int, j int) float64 {
	var sum float64
	for _, i := range included {
		sum += a2a[i][j]
	}

	return sum / float64(len(included))
}

// GridEntry is one cell of the averages-by-window grid: a factor Set
// labeled with the method and window that produced it.
type GridEntry struct {
	Method Method
	Window int
	Set    *Set
}

// Grid computes the classic averages-by-window diagnostic table: every
// averaging method crossed with every requested window (0 meaning all
// origins; default windows are all, 2 and 3). Combinations that fail with
// ErrInsufficientData — typically medial averages over short windows — are
// omitted rather than failing the whole grid; any other error aborts.
func Grid(tri *triangle.Triangle, windows ...int) ([]GridEntry, error) {
	if tri == nil {
		return nil, ErrNilTriangle
	}
	if len(windows) == 0 {
		windows = []int{AllOrigins, 2, 3}
	}

	var grid []GridEntry
	for _, m := range []Method{Simple, Volume, Medial} {
		for _, w := range windows {
			set, err := Estimate(tri, m, Options{Window: w, Trim: DefaultTrim})
			if errors.Is(err, ErrInsufficientData) {
				continue
			}
			if err != nil {
				return nil, err
			}
			grid = append(grid, GridEntry{Method: m, Window: w, Set: set})
		}
	}

	return grid, nil
}
