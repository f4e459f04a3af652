package triangle

import "fmt"

// Kind reports the representation the caller supplied at construction.
func (t *Triangle) Kind() Kind { return t.kind }

// Rows returns the number of origin periods.
func (t *Triangle) Rows() int { return len(t.origins) }

// Cols returns the number of development periods on the axis.
func (t *Triangle) Cols() int { return len(t.devs) }

// Origins returns a copy of the sorted origin labels.
func (t *Triangle) Origins() []int { return append([]int(nil), t.origins...) }

// Devs returns a copy of the sorted development labels.
func (t *Triangle) Devs() []int { return append([]int(nil), t.devs...) }

// DevCount returns how many development periods are observed for origin
// index i, or 0 when i is out of range.
func (t *Triangle) DevCount(i int) int {
	if i < 0 || i >= len(t.cum) {
		return 0
	}

	return len(t.cum[i])
}

// Maturity returns the observed development count per origin, one entry
// per origin index. Non-increasing by construction.
func (t *Triangle) Maturity() []int {
	out := make([]int, len(t.cum))
	for i, row := range t.cum {
		out[i] = len(row)
	}

	return out
}

// CellCount returns the total number of populated cells.
func (t *Triangle) CellCount() int {
	var n int
	for _, row := range t.cum {
		n += len(row)
	}

	return n
}

// CumulativeAt returns the cumulative value at (origin index i, development
// index j). Returns ErrOutOfRange when the position is not populated.
func (t *Triangle) CumulativeAt(i, j int) (float64, error) {
	if i < 0 || i >= len(t.cum) || j < 0 || j >= len(t.cum[i]) {
		return 0, fmt.Errorf("cumulative (%d,%d): %w", i, j, ErrOutOfRange)
	}

	return t.cum[i][j], nil
}

// IncrementalAt returns the incremental value at (origin index i,
// development index j). Returns ErrOutOfRange when not populated.
func (t *Triangle) IncrementalAt(i, j int) (float64, error) {
	if i < 0 || i >= len(t.incr) || j < 0 || j >= len(t.incr[i]) {
		return 0, fmt.Errorf("incremental (%d,%d): %w", i, j, ErrOutOfRange)
	}

	return t.incr[i][j], nil
}

// Cumulative returns a deep copy of the ragged cumulative grid. Row i has
// DevCount(i) entries.
func (t *Triangle) Cumulative() [][]float64 { return copyRagged(t.cum) }

// Incremental returns a deep copy of the ragged incremental grid. Row i has
// DevCount(i) entries.
func (t *Triangle) Incremental() [][]float64 { return copyRagged(t.incr) }

// LatestDiagonal returns, per origin, its most mature known cumulative
// value — the current valuation of each cohort.
func (t *Triangle) LatestDiagonal() []float64 {
	out := make([]float64, len(t.cum))
	for i, row := range t.cum {
		out[i] = row[len(row)-1]
	}

	return out
}

// AgeToAge returns the ragged grid of individual link ratios: row i holds
// DevCount(i)-1 ratios F[i][j] = C[i][j+1] / C[i][j].
//
// A zero or negative denominator fails with ErrUndefinedRatio rather than
// producing an infinite or imaginary factor.
func (t *Triangle) AgeToAge() ([][]float64, error) {
	out := make([][]float64, len(t.cum))
	for i, row := range t.cum {
		if len(row) == 0 {
			out[i] = nil

			continue
		}
		ratios := make([]float64, len(row)-1)
		for j := 0; j+1 < len(row); j++ {
			if row[j] <= 0 {
				return nil, fmt.Errorf("origin index %d dev index %d (value %g): %w",
					i, j, row[j], ErrUndefinedRatio)
			}
			ratios[j] = row[j+1] / row[j]
		}
		out[i] = ratios
	}

	return out, nil
}

// DiagonalCount returns the number of calendar diagonals. Cell (i, j) lies
// on diagonal i+j, so the count is the largest populated i+j plus one;
// with equal-maturity origins this exceeds the development-axis length.
func (t *Triangle) DiagonalCount() int {
	var last int
	for i, row := range t.cum {
		if d := i + len(row) - 1; d > last {
			last = d
		}
	}

	return last + 1
}

// DiagonalAt returns the populated cells on calendar diagonal d (cells with
// origin index + development index == d), in ascending origin order, with
// cumulative values and the caller's labels. Returns ErrOutOfRange when d
// is not a valid diagonal.
func (t *Triangle) DiagonalAt(d int) ([]Cell, error) {
	if d < 0 || d >= t.DiagonalCount() {
		return nil, fmt.Errorf("diagonal %d: %w", d, ErrOutOfRange)
	}
	var cells []Cell
	for i, row := range t.cum {
		j := d - i
		if j < 0 || j >= len(row) {
			continue
		}
		cells = append(cells, Cell{Origin: t.origins[i], Dev: t.devs[j], Value: row[j]})
	}

	return cells, nil
}

// copyRagged deep-copies a ragged grid.
func copyRagged(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = append([]float64(nil), row...)
	}

	return out
}
