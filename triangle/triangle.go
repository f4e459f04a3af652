package triangle

import (
	"fmt"
	"math"
	"sort"
)

// New builds a Triangle from an unordered collection of records.
//
// Validation (all violations return an error wrapping ErrMalformedTriangle;
// no Triangle is constructed on failure):
//  1. at least one record, every value finite (no NaN/±Inf);
//  2. no duplicate (origin, dev) keys (ErrDuplicateCell);
//  3. per origin, the observed development periods form a prefix of the
//     sorted development axis — no interior gaps;
//  4. the number of observed development periods never increases as the
//     origin period increases (the upper-left shape).
//
// kind declares whether values are cumulative or incremental; the other
// representation is derived immediately so the two always round-trip
// exactly.
//
// Complexity: O(c·log c) for c records.
func New(records []Record, kind Kind) (*Triangle, error) {
	if kind != Cumulative && kind != Incremental {
		return nil, fmt.Errorf("unknown kind %d: %w", int(kind), ErrMalformedTriangle)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records: %w", ErrMalformedTriangle)
	}

	// Collect unique axis labels and detect duplicates in one pass.
	type key struct{ o, d int }
	seen := make(map[key]float64, len(records))
	originSet := make(map[int]struct{})
	devSet := make(map[int]struct{})
	for _, r := range records {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			return nil, fmt.Errorf("non-finite value at origin %d dev %d: %w", r.Origin, r.Dev, ErrMalformedTriangle)
		}
		k := key{r.Origin, r.Dev}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("origin %d dev %d: %w", r.Origin, r.Dev, ErrDuplicateCell)
		}
		seen[k] = r.Value
		originSet[r.Origin] = struct{}{}
		devSet[r.Dev] = struct{}{}
	}

	origins := sortedKeys(originSet)
	devs := sortedKeys(devSet)

	// Per origin the observed devs must be a prefix of the dev axis, and
	// prefix lengths must not increase with origin.
	rows := make([][]float64, len(origins))
	prev := len(devs)
	for i, o := range origins {
		var n int
		for n < len(devs) {
			if _, ok := seen[key{o, devs[n]}]; !ok {
				break
			}
			n++
		}
		// Any observed dev beyond the prefix is an interior gap.
		for j := n; j < len(devs); j++ {
			if _, ok := seen[key{o, devs[j]}]; ok {
				return nil, fmt.Errorf("origin %d observed at dev %d but not at dev %d: %w",
					o, devs[j], devs[n], ErrMalformedTriangle)
			}
		}
		if n > prev {
			return nil, fmt.Errorf("origin %d has %d development periods, want at most %d: %w",
				o, n, prev, ErrMalformedTriangle)
		}
		prev = n

		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = seen[key{o, devs[j]}]
		}
		rows[i] = row
	}

	t := &Triangle{origins: origins, devs: devs, kind: kind}
	switch kind {
	case Cumulative:
		t.cum = rows
		t.incr = toIncremental(rows)
	case Incremental:
		t.incr = rows
		t.cum = toCumulative(rows)
	}

	return t, nil
}

// sortedKeys returns the map keys in ascending order.
func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)

	return out
}

// toCumulative running-sums each ragged row into a fresh grid.
func toCumulative(incr [][]float64) [][]float64 {
	cum := make([][]float64, len(incr))
	for i, row := range incr {
		c := make([]float64, len(row))
		var sum float64
		for j, v := range row {
			sum += v
			c[j] = sum
		}
		cum[i] = c
	}

	return cum
}

// toIncremental differences each ragged row into a fresh grid.
func toIncremental(cum [][]float64) [][]float64 {
	incr := make([][]float64, len(cum))
	for i, row := range cum {
		c := make([]float64, len(row))
		for j, v := range row {
			if j == 0 {
				c[j] = v
			} else {
				c[j] = v - row[j-1]
			}
		}
		incr[i] = c
	}

	return incr
}
