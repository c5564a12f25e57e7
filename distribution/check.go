package distribution

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MomentLeeway is the allowed error on the mean and stddev of a truncated
// normal element, relative to its configured stddev.
var MomentLeeway = 0.1

var ErrMismatch = errors.New("samples do not match mixture")

// AssertMatches checks that samples were plausibly drawn from m: the share of
// samples inside each element's range is within tolerance of its fraction,
// and truncated-normal elements have the expected mean and stddev.
// Elements are assumed to have disjoint ranges.
func AssertMatches(samples []float64, m Mixture, tolerance float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: no samples", ErrMismatch)
	}
	total := float64(len(samples))
	for i, f := range m {
		var inside []float64
		for _, s := range samples {
			if s >= f.RangeMin && s <= f.RangeMax {
				inside = append(inside, s)
			}
		}
		share := float64(len(inside)) / total
		if math.Abs(share-f.Fraction) > tolerance {
			return fmt.Errorf("%w: element %d [%v,%v] holds %.4f of samples, want %.4f±%v",
				ErrMismatch, i, f.RangeMin, f.RangeMax, share, f.Fraction, tolerance)
		}
		if f.Kind != TruncatedNormal || len(inside) < 2 {
			continue
		}
		wantMean, wantStd := TruncatedMoments(f)
		mean, std := stat.MeanStdDev(inside, nil)
		leeway := MomentLeeway * f.StdDev
		if math.Abs(mean-wantMean) > leeway {
			return fmt.Errorf("%w: element %d mean %.4f, want %.4f±%.4f", ErrMismatch, i, mean, wantMean, leeway)
		}
		if math.Abs(std-wantStd) > leeway {
			return fmt.Errorf("%w: element %d stddev %.4f, want %.4f±%.4f", ErrMismatch, i, std, wantStd, leeway)
		}
	}
	return nil
}

// TruncatedMoments returns the mean and stddev of f's normal truncated to
// its range.
func TruncatedMoments(f Fractional) (mean, stddev float64) {
	alpha := (f.RangeMin - f.Mean) / f.StdDev
	beta := (f.RangeMax - f.Mean) / f.StdDev
	unit := distuv.UnitNormal
	z := unit.CDF(beta) - unit.CDF(alpha)
	if z <= 0 {
		return math.Min(math.Max(f.Mean, f.RangeMin), f.RangeMax), 0
	}
	pa, pb := unit.Prob(alpha), unit.Prob(beta)
	// a·φ(a) is 0 for an infinite bound
	apa, bpb := 0.0, 0.0
	if !math.IsInf(alpha, 0) {
		apa = alpha * pa
	}
	if !math.IsInf(beta, 0) {
		bpb = beta * pb
	}
	shift := (pa - pb) / z
	variance := f.StdDev * f.StdDev * (1 + (apa-bpb)/z - shift*shift)
	return f.Mean + f.StdDev*shift, math.Sqrt(math.Max(variance, 0))
}
