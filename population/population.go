// Package population estimates how many people live inside a deployment
// circle.
package population

import (
	"fmt"
	"math"

	"github.com/wiless/neighborhood/geo"
	"github.com/wiless/neighborhood/landcover"
)

// Source returns the population inside a circle.
type Source interface {
	PopulationInCircle(c geo.Circle) (int, error)
}

// DensityFunc returns people per km² for a region type.
type DensityFunc func(landcover.RegionType) float64

// RegionDensity assumes a constant density, chosen by the region type at the
// circle center.
type RegionDensity struct {
	LandCover landcover.Driver
	Density   DensityFunc
}

func (r RegionDensity) PopulationInCircle(c geo.Circle) (int, error) {
	region, err := landcover.Region(r.LandCover, c.Center)
	if err != nil {
		return 0, err
	}
	area := math.Pi * float64(c.RadiusKm) * float64(c.RadiusKm)
	return int(math.Round(area * r.Density(region))), nil
}

// Override reports the same population for every circle.
type Override int

func (o Override) PopulationInCircle(geo.Circle) (int, error) { return int(o), nil }

// DensityGrid reads people per km² at a point, typically from a census
// raster. Implementations must be safe for concurrent reads.
type DensityGrid interface {
	DensityAt(p geo.Point) (float64, error)
}

// Raster integrates a DensityGrid over the circle on a polar grid of rings
// and sectors. Zero Rings or Sectors use 1 km rings and 5° sectors.
type Raster struct {
	Grid    DensityGrid
	Rings   int
	Sectors int
}

func (r Raster) PopulationInCircle(c geo.Circle) (int, error) {
	if c.RadiusKm <= 0 {
		return 0, nil
	}
	rings, sectors := r.Rings, r.Sectors
	if rings <= 0 {
		rings = c.RadiusKm
	}
	if sectors <= 0 {
		sectors = 72
	}
	dr := float64(c.RadiusKm) / float64(rings)
	dt := 360 / float64(sectors)
	total := 0.0
	for i := 0; i < rings; i++ {
		inner, outer := float64(i)*dr, float64(i+1)*dr
		cellArea := math.Pi * (outer*outer - inner*inner) / float64(sectors)
		mid := (inner + outer) / 2
		for j := 0; j < sectors; j++ {
			p := c.Center.Move((float64(j)+0.5)*dt, mid)
			density, err := r.Grid.DensityAt(p)
			if err != nil {
				return 0, fmt.Errorf("population density at %v: %w", p, err)
			}
			total += density * cellArea
		}
	}
	return int(math.Round(total)), nil
}
