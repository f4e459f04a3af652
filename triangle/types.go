package triangle

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package. Callers match them with
// errors.Is; contextual wrapping happens only at outer boundaries.
var (
	// ErrMalformedTriangle indicates that the input records do not form a
	// valid upper-left triangle: duplicate keys, interior gaps, maturities
	// that increase with origin, or non-finite values.
	ErrMalformedTriangle = errors.New("triangle: records do not form a valid upper-left triangle")

	// ErrUndefinedRatio indicates a zero or negative denominator in an
	// age-to-age ratio computation. Ratios are never allowed to become
	// infinite or imaginary; the computation fails instead.
	ErrUndefinedRatio = errors.New("triangle: zero or negative denominator in age-to-age ratio")

	// ErrOutOfRange indicates that a requested (origin, development) index
	// lies outside the populated cells. Accessors return it, never panic.
	ErrOutOfRange = errors.New("triangle: cell index out of range")
)

// ErrDuplicateCell marks a duplicate (origin, dev) key in the input records.
// It wraps ErrMalformedTriangle so errors.Is(err, ErrMalformedTriangle)
// remains true for callers that only care about the broad category.
var ErrDuplicateCell = fmt.Errorf("duplicate cell key: %w", ErrMalformedTriangle)

// Kind tags whether input record values are cumulative or incremental.
//
//   - Cumulative  — each cell holds the running total of losses for its
//     origin through its development period.
//   - Incremental — each cell holds only the losses emerging during its
//     development period.
//
// A Triangle derives and stores the other representation at construction,
// so the choice affects ingestion only, never downstream computation.
type Kind int

const (
	// Cumulative input values are running totals per origin.
	Cumulative Kind = iota

	// Incremental input values are period-over-period amounts per origin.
	Incremental
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case Cumulative:
		return "cumulative"
	case Incremental:
		return "incremental"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Record is one observed triangle cell: a loss value observed for an
// origin period at a development period. Origin and Dev are caller-chosen
// labels (e.g. accident year and development age in months); only their
// relative order matters.
type Record struct {
	Origin int
	Dev    int
	Value  float64
}

// Cell pairs a populated position with its cumulative value, using the
// caller's origin/dev labels. Returned by DiagonalAt.
type Cell struct {
	Origin int
	Dev    int
	Value  float64
}

// Triangle is an immutable ragged grid of loss values. The zero value is
// not usable; construct with New.
type Triangle struct {
	origins []int       // sorted ascending origin labels
	devs    []int       // sorted ascending development labels
	cum     [][]float64 // ragged rows, cumulative values
	incr    [][]float64 // ragged rows, incremental values
	kind    Kind        // representation the caller supplied
}
