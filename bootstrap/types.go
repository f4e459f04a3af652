package bootstrap

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package; match with errors.Is.
var (
	// ErrNilTriangle indicates a nil *triangle.Triangle argument.
	ErrNilTriangle = errors.New("bootstrap: triangle is nil")

	// ErrBadOptions indicates negative iteration/worker counts, an unknown
	// noise model, or an out-of-range quantile probability.
	ErrBadOptions = errors.New("bootstrap: invalid options")

	// ErrUnstableFit indicates the deterministic setup cannot support
	// resampling: a non-positive fitted incremental value (cumulative
	// development must be increasing under the fitted factors) or a zero
	// residual scale with gamma noise requested.
	ErrUnstableFit = errors.New("bootstrap: fitted values cannot support residual resampling")

	// ErrSimulationFailure indicates every single iteration reached an
	// invalid numeric state. Individual failures are not errors; they are
	// excluded and tallied in Result.Failed.
	ErrSimulationFailure = errors.New("bootstrap: simulation failed")
)

// Noise selects the process-variance treatment for simulated future cells.
type Noise int

const (
	// NoiseNone records the deterministic refit reserves of each pseudo
	// triangle (parameter uncertainty only).
	NoiseNone Noise = iota

	// NoiseGamma adds gamma process noise per future cell, mean m and
	// variance φ·m, matching the over-dispersed Poisson moments.
	NoiseGamma
)

// String returns a human-readable name for the Noise model.
func (n Noise) String() string {
	switch n {
	case NoiseNone:
		return "none"
	case NoiseGamma:
		return "gamma"
	default:
		return fmt.Sprintf("Noise(%d)", int(n))
	}
}

// Defaults — single source of truth for zero-value behavior.
const (
	// DefaultIterations is the simulation count when Options.Iterations is 0.
	DefaultIterations = 2500

	// DefaultSeed seeds the random source when Options.Seed is 0, keeping
	// unconfigured runs reproducible rather than time-dependent.
	DefaultSeed uint64 = 20130917
)

// Options configures a bootstrap run.
//
//   - Iterations — number of resampling iterations (0 ⇒ DefaultIterations).
//   - Seed       — base seed for the per-iteration random streams
//     (0 ⇒ DefaultSeed). Same seed + same inputs ⇒ bit-identical output.
//   - Noise      — process-variance model for future cells.
//   - Workers    — worker pool size (0 ⇒ GOMAXPROCS). Any value yields the
//     same distribution; it only affects wall-clock time.
type Options struct {
	Iterations int
	Seed       uint64
	Noise      Noise
	Workers    int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{Iterations: DefaultIterations, Seed: DefaultSeed, Noise: NoiseNone}
}

// Quantile pairs a probability with the corresponding empirical quantile
// of the simulated total reserve.
type Quantile struct {
	P     float64
	Value float64
}

// Summary describes the simulated total-reserve distribution.
type Summary struct {
	Mean      float64
	StdDev    float64
	Quantiles []Quantile
}
