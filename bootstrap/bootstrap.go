package bootstrap

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lossdev/reserving/chainladder"
	"github.com/lossdev/reserving/factors"
	"github.com/lossdev/reserving/triangle"
)

// Result holds the simulated reserve distribution. Accessors return
// copies; a Result is safe to share.
type Result struct {
	base *chainladder.Result

	reserves  [][]float64 // accepted iterations × origins
	totals    []float64   // accepted iterations
	failed    int
	requested int

	scale float64 // Pearson scale φ
	seed  uint64
}

// engine is the immutable per-run state shared by all iterations.
type engine struct {
	rows, cols int
	maturity   []int
	fitted     [][]float64 // m̂, ragged like the triangle
	pool       []float64   // dof-adjusted Pearson residuals
	scale      float64
	noise      Noise
	seed       uint64
}

// Fit runs the bootstrap over tri.
//
// Errors: ErrNilTriangle, ErrBadOptions, ErrUnstableFit, wrapped
// factors.ErrInsufficientData (no residual degrees of freedom),
// ErrSimulationFailure (every iteration failed), the context error on
// cancellation, plus anything the underlying base fit surfaces.
func Fit(ctx context.Context, tri *triangle.Triangle, opts Options) (*Result, error) {
	if tri == nil {
		return nil, ErrNilTriangle
	}
	if opts.Iterations < 0 || opts.Workers < 0 {
		return nil, fmt.Errorf("iterations %d, workers %d: %w", opts.Iterations, opts.Workers, ErrBadOptions)
	}
	if opts.Noise != NoiseNone && opts.Noise != NoiseGamma {
		return nil, fmt.Errorf("noise %d: %w", int(opts.Noise), ErrBadOptions)
	}
	if opts.Iterations == 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	set, err := factors.Estimate(tri, factors.Volume, factors.Options{Window: factors.AllOrigins})
	if err != nil {
		return nil, err
	}
	base, err := chainladder.FitFactors(tri, set)
	if err != nil {
		return nil, err
	}

	eng, err := newEngine(tri, set, opts)
	if err != nil {
		return nil, err
	}

	// Index-addressed slots keep the combination invariant to completion
	// order: slot it is written by iteration it alone.
	perOrigin := make([][]float64, opts.Iterations)
	perTotal := make([]float64, opts.Iterations)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for it := 0; it < opts.Iterations; it++ {
		it := it
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if res, total, ok := eng.simulate(mix(eng.seed, uint64(it))); ok {
				perOrigin[it] = res
				perTotal[it] = total
			}

			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	r := &Result{base: base, requested: opts.Iterations, scale: eng.scale, seed: opts.Seed}
	for it := 0; it < opts.Iterations; it++ {
		if perOrigin[it] == nil {
			r.failed++

			continue
		}
		r.reserves = append(r.reserves, perOrigin[it])
		r.totals = append(r.totals, perTotal[it])
	}
	if len(r.totals) == 0 {
		return nil, fmt.Errorf("all %d iterations reached invalid states: %w", opts.Iterations, ErrSimulationFailure)
	}

	return r, nil
}

// newEngine back-casts the fitted incremental grid, computes the adjusted
// Pearson residual pool and the scale φ.
func newEngine(tri *triangle.Triangle, set *factors.Set, opts Options) (*engine, error) {
	cum := tri.Cumulative()
	incr := tri.Incremental()
	f := set.Factors

	e := &engine{
		rows:     tri.Rows(),
		cols:     tri.Cols(),
		maturity: tri.Maturity(),
		noise:    opts.Noise,
		seed:     opts.Seed,
	}

	// Fitted cumulative values: anchor at the latest diagonal, divide
	// backwards through the factors; difference into incrementals.
	e.fitted = make([][]float64, e.rows)
	for i, row := range cum {
		last := len(row) - 1
		fc := make([]float64, len(row))
		fc[last] = row[last]
		for j := last; j > 0; j-- {
			fc[j-1] = fc[j] / f[j-1]
		}
		m := make([]float64, len(row))
		m[0] = fc[0]
		for j := 1; j < len(row); j++ {
			m[j] = fc[j] - fc[j-1]
		}
		for j, v := range m {
			if v <= 0 {
				return nil, fmt.Errorf("fitted incremental %g at origin index %d dev index %d: %w",
					v, i, j, ErrUnstableFit)
			}
		}
		e.fitted[i] = m
	}

	n := tri.CellCount()
	p := e.rows + e.cols - 1
	if n-p <= 0 {
		return nil, fmt.Errorf("bootstrap: %d cells cannot support %d parameters: %w",
			n, p, factors.ErrInsufficientData)
	}

	adj := math.Sqrt(float64(n) / float64(n-p))
	var ss float64
	e.pool = make([]float64, 0, n)
	for i := range incr {
		for j := range incr[i] {
			r := (incr[i][j] - e.fitted[i][j]) / math.Sqrt(e.fitted[i][j])
			ss += r * r
			e.pool = append(e.pool, r*adj)
		}
	}
	e.scale = ss / float64(n-p)

	if e.noise == NoiseGamma && e.scale <= 0 {
		return nil, fmt.Errorf("gamma noise needs a positive scale, have φ = %g: %w", e.scale, ErrUnstableFit)
	}

	return e, nil
}

// simulate runs one iteration on a private random stream. It reports
// ok=false for any invalid numeric state; such iterations are excluded
// and counted by the caller.
func (e *engine) simulate(seed uint64) (reserves []float64, total float64, ok bool) {
	rng := rand.New(rand.NewSource(seed))

	// Pseudo incremental cells by inverting the residual formula, then
	// cumulate and rebuild a triangle for the refit.
	recs := make([]triangle.Record, 0, len(e.pool))
	for i, m := range e.fitted {
		var run float64
		for j, mean := range m {
			q := mean + e.pool[rng.Intn(len(e.pool))]*math.Sqrt(mean)
			run += q
			recs = append(recs, triangle.Record{Origin: i, Dev: j, Value: run})
		}
	}
	ptri, err := triangle.New(recs, triangle.Cumulative)
	if err != nil {
		return nil, 0, false
	}

	pset, err := factors.Estimate(ptri, factors.Volume, factors.Options{Window: factors.AllOrigins})
	if err != nil {
		return nil, 0, false // non-positive pseudo cumulative denominator
	}
	pfit, err := chainladder.FitFactors(ptri, pset)
	if err != nil {
		return nil, 0, false // non-positive resampled factor
	}

	if e.noise == NoiseNone {
		return pfit.Reserves(), pfit.TotalReserve(), true
	}

	// Gamma process noise per simulated future cell, mean μ variance φ·μ.
	sq := pfit.Squared()
	reserves = make([]float64, e.rows)
	for i := 0; i < e.rows; i++ {
		for k := e.maturity[i]; k < e.cols; k++ {
			mu := sq.At(i, k) - sq.At(i, k-1)
			if mu <= 0 {
				return nil, 0, false
			}
			g := distuv.Gamma{Alpha: mu / e.scale, Beta: 1 / e.scale, Src: rng}
			reserves[i] += g.Rand()
		}
		total += reserves[i]
	}

	return reserves, total, true
}

// mix derives the iteration-private seed from (seed, index) with the
// splitmix64 finalizer, decorrelating neighboring indices.
func mix(seed, index uint64) uint64 {
	z := seed + (index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb

	return z ^ (z >> 31)
}

// Base returns the deterministic point-estimate fit of the source triangle.
func (r *Result) Base() *chainladder.Result { return r.base }

// Reserves returns a deep copy of the accepted per-iteration, per-origin
// reserves, in iteration-index order.
func (r *Result) Reserves() [][]float64 {
	out := make([][]float64, len(r.reserves))
	for i, row := range r.reserves {
		out[i] = append([]float64(nil), row...)
	}

	return out
}

// Totals returns a copy of the accepted per-iteration total reserves, in
// iteration-index order.
func (r *Result) Totals() []float64 { return append([]float64(nil), r.totals...) }

// Accepted returns the number of iterations included in the distribution.
func (r *Result) Accepted() int { return len(r.totals) }

// Failed returns the number of excluded iterations. Always reported next
// to the distribution so a degraded run is detectable.
func (r *Result) Failed() int { return r.failed }

// Requested returns the configured iteration count
// (Accepted + Failed == Requested).
func (r *Result) Requested() int { return r.requested }

// Scale returns the Pearson scale φ the residuals were computed with.
func (r *Result) Scale() float64 { return r.scale }

// Seed returns the effective base seed of the run.
func (r *Result) Seed() uint64 { return r.seed }

// Summary computes mean, standard deviation and the requested empirical
// quantiles of the simulated total reserve. Probabilities must lie in
// (0, 1); none defaults to 0.5, 0.75, 0.95 and 0.995. A single accepted
// iteration reports StdDev 0.
func (r *Result) Summary(probs ...float64) (*Summary, error) {
	if len(probs) == 0 {
		probs = []float64{0.5, 0.75, 0.95, 0.995}
	}
	for _, p := range probs {
		if p <= 0 || p >= 1 {
			return nil, fmt.Errorf("quantile probability %g: %w", p, ErrBadOptions)
		}
	}

	sorted := append([]float64(nil), r.totals...)
	sort.Float64s(sorted)

	s := &Summary{
		Mean:      stat.Mean(sorted, nil),
		Quantiles: make([]Quantile, len(probs)),
	}
	// The sample estimator divides by n−1; one sample has no spread.
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	for i, p := range probs {
		s.Quantiles[i] = Quantile{P: p, Value: stat.Quantile(p, stat.Empirical, sorted, nil)}
	}

	return s, nil
}
