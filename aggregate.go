package neighborhood

import (
	"math/rand/v2"
	"sort"

	"github.com/wiless/vlib"

	"github.com/wiless/neighborhood/distribution"
)

// ApplyBuildingLoss returns a copy of components with LossBuildingDb drawn
// from m. The list is partitioned contiguously by the mixture fractions, so
// the first round(f0*n) components get the first element, and so on.
func ApplyBuildingLoss(rng *rand.Rand, components []InterferenceComponents, m distribution.Mixture) []InterferenceComponents {
	result := append([]InterferenceComponents(nil), components...)
	if len(m) == 0 {
		return result
	}
	for i, loss := range distribution.Draw(rng, m, len(result)) {
		result[i].LossBuildingDb = loss
	}
	return result
}

// InRange counts the components at or beyond minDistanceKm.
func InRange(components []InterferenceComponents, minDistanceKm float64) int {
	n := 0
	for _, c := range components {
		if c.DistanceKm >= minDistanceKm {
			n++
		}
	}
	return n
}

// accumulator sums received power per azimuth in Watts.
type accumulator struct {
	total vlib.VectorF
	n     int
}

func (a *accumulator) add(c InterferenceComponents) {
	dbw := c.ReceivedDbm()
	for i := range dbw {
		dbw[i] -= 30
	}
	lin := vlib.InvDbF(dbw)
	if a.total == nil {
		a.total = vlib.NewVectorF(len(lin))
	}
	for i := range a.total {
		if i < len(lin) {
			a.total[i] += lin[i]
		}
	}
	a.n++
}

// worst returns the strongest azimuth in dBm.
func (a *accumulator) worst() float64 {
	if a.n == 0 || len(a.total) == 0 {
		return LowInterferenceDbm
	}
	w := vlib.Max(a.total)
	if w <= 0 {
		return LowInterferenceDbm
	}
	return vlib.Db(w) + 30
}

// Aggregate returns the worst-case azimuth interference of the components
// at or beyond minDistanceKm, summed in linear power. With nothing in range
// it returns LowInterferenceDbm.
func Aggregate(components []InterferenceComponents, minDistanceKm float64) float64 {
	var acc accumulator
	for _, c := range components {
		if c.DistanceKm >= minDistanceKm {
			acc.add(c)
		}
	}
	return acc.worst()
}

// AggregateCurve returns Aggregate(components, k*stepKm) for k in
// [0, points). Components are accumulated once, from the farthest inward.
func AggregateCurve(components []InterferenceComponents, stepKm float64, points int) []float64 {
	curve := make([]float64, points)
	order := make([]int, len(components))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return components[order[i]].DistanceKm > components[order[j]].DistanceKm
	})

	var acc accumulator
	next := 0
	for k := points - 1; k >= 0; k-- {
		minDistance := float64(k) * stepKm
		for next < len(order) && components[order[next]].DistanceKm >= minDistance {
			acc.add(components[order[next]])
			next++
		}
		curve[k] = acc.worst()
	}
	return curve
}
