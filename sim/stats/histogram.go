package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram is a binned ISI distribution. Edges has one more entry than
// Counts; bin i covers [Edges[i], Edges[i+1]). Intervals at or above the last
// edge are counted in Overflow.
type Histogram struct {
	Edges    []float64 `json:"edges"`
	Counts   []float64 `json:"counts"`
	Overflow int       `json:"overflow"`
}

// Total returns the number of intervals binned, overflow included.
func (h Histogram) Total() int {
	return int(floats.Sum(h.Counts)) + h.Overflow
}

// ISIHistogram bins isis into equal-width bins over [0, upper). A non-positive
// upper uses the largest interval, so that nothing overflows.
func ISIHistogram(isis []float64, bins int, upper float64) (Histogram, error) {
	if bins <= 0 {
		return Histogram{}, fmt.Errorf("histogram bins %d: must be positive", bins)
	}
	sorted := append([]float64(nil), isis...)
	sort.Float64s(sorted)
	if len(sorted) > 0 && sorted[0] < 0 {
		return Histogram{}, fmt.Errorf("negative interval %g", sorted[0])
	}
	if upper <= 0 {
		upper = 1
		if len(sorted) > 0 && sorted[len(sorted)-1] > 0 {
			upper = math.Nextafter(sorted[len(sorted)-1], math.Inf(1))
		}
	}

	cut := sort.SearchFloat64s(sorted, upper)
	h := Histogram{
		Edges:    floats.Span(make([]float64, bins+1), 0, upper),
		Overflow: len(sorted) - cut,
	}
	// pin the last edge so every value below upper lands in a bin
	h.Edges[bins] = upper
	h.Counts = make([]float64, bins)
	if cut > 0 {
		stat.Histogram(h.Counts, h.Edges, sorted[:cut], nil)
	}
	return h, nil
}
