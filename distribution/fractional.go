// Package distribution draws CBSD attributes from piecewise mixtures of
// uniform and truncated-normal components.
package distribution

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

type Kind int

var Kinds = [...]string{
	"UNIFORM",
	"TRUNCATED_NORMAL",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(Kinds) {
		return "Unknown-Kind"
	}
	return Kinds[k]
}

// UnmarshalText accepts the names in Kinds, case-insensitive.
func (k *Kind) UnmarshalText(text []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(text)))
	for i, v := range Kinds {
		if v == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("distribution: unknown kind %q", text)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	Uniform Kind = iota
	TruncatedNormal
)

// FractionTolerance is how far the fractions of a mixture may stray from 1.
const FractionTolerance = 1e-6

var ErrInvalidMixture = errors.New("invalid mixture")

// Fractional is one element of a mixture. Fraction of the population is
// drawn from [RangeMin, RangeMax] according to Kind.
type Fractional struct {
	Fraction float64 `json:"fraction" mapstructure:"fraction"`
	RangeMin float64 `json:"range_min" mapstructure:"range_min"`
	RangeMax float64 `json:"range_max" mapstructure:"range_max"`
	Kind     Kind    `json:"kind" mapstructure:"kind"`
	Mean     float64 `json:"mean,omitempty" mapstructure:"mean"`
	StdDev   float64 `json:"stddev,omitempty" mapstructure:"stddev"`
}

// Mixture is an ordered list of Fractional elements summing to 1.
type Mixture []Fractional

// Fixed is a point mass at value.
func Fixed(fraction, value float64) Fractional {
	return Fractional{Fraction: fraction, RangeMin: value, RangeMax: value, Kind: Uniform}
}

func UniformRange(fraction, min, max float64) Fractional {
	return Fractional{Fraction: fraction, RangeMin: min, RangeMax: max, Kind: Uniform}
}

func Normal(fraction, min, max, mean, stddev float64) Fractional {
	return Fractional{Fraction: fraction, RangeMin: min, RangeMax: max, Kind: TruncatedNormal, Mean: mean, StdDev: stddev}
}

func (m Mixture) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidMixture)
	}
	sum := 0.0
	for i, f := range m {
		if f.Fraction < 0 {
			return fmt.Errorf("%w: element %d has negative fraction %v", ErrInvalidMixture, i, f.Fraction)
		}
		if f.RangeMin > f.RangeMax {
			return fmt.Errorf("%w: element %d has range_min %v > range_max %v", ErrInvalidMixture, i, f.RangeMin, f.RangeMax)
		}
		if f.Kind == TruncatedNormal && f.StdDev <= 0 {
			return fmt.Errorf("%w: element %d truncated normal needs stddev > 0", ErrInvalidMixture, i)
		}
		sum += f.Fraction
	}
	if math.Abs(sum-1) > FractionTolerance {
		return fmt.Errorf("%w: fractions sum to %v", ErrInvalidMixture, sum)
	}
	return nil
}

// Fractions returns the fraction of every element, in order.
func (m Mixture) Fractions() []float64 {
	result := make([]float64, len(m))
	for i, f := range m {
		result[i] = f.Fraction
	}
	return result
}

// Partition splits n items by fractions: round(fraction*n) for every group
// but the last, which takes the remainder. Groups never exceed what is left.
func Partition(n int, fractions []float64) []int {
	counts := make([]int, len(fractions))
	if len(fractions) == 0 {
		return counts
	}
	assigned := 0
	for i := 0; i < len(fractions)-1; i++ {
		c := int(math.Round(fractions[i] * float64(n)))
		if c < 0 {
			c = 0
		}
		if c > n-assigned {
			c = n - assigned
		}
		counts[i] = c
		assigned += c
	}
	counts[len(fractions)-1] = n - assigned
	return counts
}

// Sample draws one value from f.
func (f Fractional) Sample(rng *rand.Rand) float64 {
	if f.RangeMin == f.RangeMax {
		return f.RangeMin
	}
	switch f.Kind {
	case TruncatedNormal:
		return truncatedNormal(rng, f)
	default:
		return distuv.Uniform{Min: f.RangeMin, Max: f.RangeMax, Src: rng}.Rand()
	}
}

// truncatedNormal uses the inverse CDF restricted to [RangeMin, RangeMax].
func truncatedNormal(rng *rand.Rand, f Fractional) float64 {
	n := distuv.Normal{Mu: f.Mean, Sigma: f.StdDev, Src: rng}
	lo, hi := n.CDF(f.RangeMin), n.CDF(f.RangeMax)
	if hi <= lo {
		// all mass beyond one of the bounds
		if f.Mean < f.RangeMin {
			return f.RangeMin
		}
		return f.RangeMax
	}
	u := distuv.Uniform{Min: lo, Max: hi, Src: rng}.Rand()
	return math.Min(math.Max(n.Quantile(u), f.RangeMin), f.RangeMax)
}

// Draw returns n samples from m. Samples are grouped by element, in mixture
// order, so callers may rely on contiguous sub-populations.
func Draw(rng *rand.Rand, m Mixture, n int) []float64 {
	result := make([]float64, 0, n)
	for i, count := range Partition(n, m.Fractions()) {
		for j := 0; j < count; j++ {
			result = append(result, m[i].Sample(rng))
		}
	}
	return result
}
