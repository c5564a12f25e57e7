package deployment

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wiless/neighborhood/geo"
)

var ErrInvalidRange = errors.New("invalid range")

type DropType int

var DropTypes = [...]string{
	"Circular",
	"Annular",
}

const (
	Circular DropType = iota
	Annular
)

func (c DropType) String() string {
	if int(c) < 0 || int(c) >= len(DropTypes) {
		return "Unknown-DropType"
	}
	return DropTypes[c]
}

// Drop is one sampled location and the bearing (deg) from the centre that
// produced it.
type Drop struct {
	Location   geo.Point
	BearingDeg float64
	DistanceKm float64
}

// DropParameter describes where points are dropped around Centre.
type DropParameter struct {
	Centre geo.Point
	Type   DropType

	// Radii in km
	InnerRadius float64
	Radius      float64

	NCount int
}

func (d DropParameter) Validate() error {
	if d.NCount < 0 {
		return fmt.Errorf("%w: negative count %d", ErrInvalidRange, d.NCount)
	}
	if d.Type == Circular && d.InnerRadius != 0 {
		return fmt.Errorf("%w: circular drop with inner radius %v", ErrInvalidRange, d.InnerRadius)
	}
	if d.InnerRadius < 0 || d.InnerRadius >= d.Radius {
		return fmt.Errorf("%w: min distance %v km, radius %v km", ErrInvalidRange, d.InnerRadius, d.Radius)
	}
	return nil
}

// AnnularPoint drops one point at a distance drawn uniformly in
// [innerRadius, outerRadius] km and a bearing uniform in [0,360). The
// distance, not the area, is uniform, so points crowd toward the centre.
func AnnularPoint(rng *rand.Rand, centre geo.Point, innerRadius, outerRadius float64) Drop {
	if outerRadius < innerRadius {
		innerRadius, outerRadius = outerRadius, innerRadius
	}
	r := distuv.Uniform{Min: innerRadius, Max: outerRadius, Src: rng}.Rand()
	theta := 360 * rng.Float64()
	location, _ := geo.Forward(centre, theta, r)
	return Drop{Location: location, BearingDeg: theta, DistanceKm: r}
}

// Drop samples NCount points as described by d.
func (d DropParameter) Drop(rng *rand.Rand) ([]Drop, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	result := make([]Drop, d.NCount)
	for i := range result {
		result[i] = AnnularPoint(rng, d.Centre, d.InnerRadius, d.Radius)
	}
	return result, nil
}

// Sample draws n points with distance uniform in [minDistKm, circle.RadiusKm]
// and bearing uniform in [0,360).
func Sample(rng *rand.Rand, circle geo.Circle, minDistKm float64, n int) ([]Drop, error) {
	dropType := Annular
	if minDistKm == 0 {
		dropType = Circular
	}
	dp := DropParameter{
		Centre:      circle.Center,
		Type:        dropType,
		InnerRadius: minDistKm,
		Radius:      float64(circle.RadiusKm),
		NCount:      n,
	}
	return dp.Drop(rng)
}
