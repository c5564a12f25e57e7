package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result summarizes the samples of a Monte-Carlo run.
type Result struct {
	Percentile float64   `json:"percentile"`
	Value      float64   `json:"value"`
	P50        float64   `json:"p50"`
	P95        float64   `json:"p95"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
	Mean       float64   `json:"mean"`
	StdDev     float64   `json:"stddev"`
	Samples    []float64 `json:"samples"`
}

// LowerPercentile returns the sample at index floor(p/100*(N-1)) of sorted,
// which must be in ascending order.
func LowerPercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	p = math.Min(math.Max(p, 0), 100)
	idx := int(math.Floor(p / 100 * float64(len(sorted)-1)))
	return sorted[idx]
}

// Summarize reduces samples. samples is kept in the order given.
func Summarize(samples []float64, percentile float64) *Result {
	result := &Result{Percentile: percentile, Samples: samples}
	if len(samples) == 0 {
		result.Value, result.P50, result.P95 = math.NaN(), math.NaN(), math.NaN()
		return result
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	result.Value = LowerPercentile(sorted, percentile)
	result.P50 = LowerPercentile(sorted, 50)
	result.P95 = LowerPercentile(sorted, 95)
	result.Min = floats.Min(sorted)
	result.Max = floats.Max(sorted)
	if len(sorted) > 1 {
		result.Mean, result.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		result.Mean = sorted[0]
	}
	return result
}

// SummarizeAt reduces the k-th point of every curve. Curves shorter than k+1
// contribute their last point.
func SummarizeAt(curves [][]float64, k int, percentile float64) (*Result, error) {
	if len(curves) == 0 {
		return nil, errors.New("montecarlo: no curves")
	}
	if k < 0 {
		return nil, fmt.Errorf("montecarlo: grid point %d, want >= 0", k)
	}
	samples := make([]float64, len(curves))
	for i, c := range curves {
		if len(c) == 0 {
			return nil, fmt.Errorf("montecarlo: curve %d is empty", i)
		}
		samples[i] = c[min(k, len(c)-1)]
	}
	return Summarize(samples, percentile), nil
}
