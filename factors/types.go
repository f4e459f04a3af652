package factors

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package; match with errors.Is.
var (
	// ErrNilTriangle indicates a nil *triangle.Triangle argument.
	ErrNilTriangle = errors.New("factors: triangle is nil")

	// ErrUnknownMethod indicates an averaging method outside the defined set.
	ErrUnknownMethod = errors.New("factors: unknown averaging method")

	// ErrBadOptions indicates a negative window or trim configuration.
	ErrBadOptions = errors.New("factors: invalid options")

	// ErrInsufficientData indicates too few contributing origins for the
	// requested average (e.g. medial trimming would exhaust the sample, or a
	// transition has no contributing origins at all).
	ErrInsufficientData = errors.New("factors: insufficient data for requested average")
)

// Method selects how individual link ratios are averaged per transition.
type Method int

const (
	// Simple is the arithmetic mean of individual link ratios.
	Simple Method = iota

	// Volume is the volume-weighted mean: Σ numerators / Σ denominators.
	Volume

	// Medial is the arithmetic mean after symmetric trimming of extremes.
	Medial
)

// String returns a human-readable name for the Method.
func (m Method) String() string {
	switch m {
	case Simple:
		return "simple"
	case Volume:
		return "volume"
	case Medial:
		return "medial"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Defaults — single source of truth for zero-value behavior.
const (
	// AllOrigins (window 0) includes every origin contributing to a
	// transition.
	AllOrigins = 0

	// DefaultTrim is the number of high/low pairs excluded by Medial.
	DefaultTrim = 1
)

// Options configures factor estimation.
//
//   - Window — number of most recent contributing origins included per
//     transition. AllOrigins (0) includes everything; negative is invalid.
//   - Trim   — pairs of extreme ratios (one highest, one lowest per pair)
//     excluded by the Medial method. Ignored by Simple and Volume.
type Options struct {
	Window int
	Trim   int
}

// DefaultOptions returns the documented defaults: all origins, one trimmed
// pair.
func DefaultOptions() Options {
	return Options{Window: AllOrigins, Trim: DefaultTrim}
}

// Set is an ordered sequence of development factors, one per transition
// between adjacent development ages, tagged with the configuration used to
// derive it. A Set is a value derived from a Triangle; it is recomputed,
// never mutated, when configuration changes.
type Set struct {
	// Factors holds one averaged factor per development transition,
	// index j covering the transition from age j to age j+1.
	Factors []float64

	// Counts holds the number of origins contributing to each transition
	// after windowing.
	Counts []int

	// Method, Window and Trim record the deriving configuration.
	Method Method
	Window int
	Trim   int
}
