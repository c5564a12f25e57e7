package config

import (
	"github.com/wiless/neighborhood/cbsd"
	d "github.com/wiless/neighborhood/distribution"
	"github.com/wiless/neighborhood/landcover"
)

// DefaultRegistry returns the built-in tables. Every call returns a fresh
// registry; callers never share mutable state.
func DefaultRegistry() *Registry {
	r := &Registry{
		eirp:              make(map[EirpKey]d.Mixture),
		height:            make(map[HeightKey]d.Mixture),
		outdoorOnly:       map[cbsd.Category]bool{cbsd.CategoryB: true},
		uesPerAP:          make(map[categoryRegion]float64),
		marketPenetration: 0.2,
		channelScaling:    0.1,
		fractionServed:    map[cbsd.Category]float64{cbsd.CategoryA: 0.4, cbsd.CategoryB: 0.6},
		txGain:            map[cbsd.Type]float64{cbsd.AP: 6, cbsd.UE: 0},
		loading: map[landcover.RegionType]float64{
			landcover.Rural:      0.2,
			landcover.Suburban:   0.4,
			landcover.Urban:      0.6,
			landcover.DenseUrban: 0.6,
		},
		indoorFraction: map[landcover.RegionType]float64{
			landcover.Rural:      0.99,
			landcover.Suburban:   0.99,
			landcover.Urban:      0.8,
			landcover.DenseUrban: 0.8,
		},
		populationDensity: map[landcover.RegionType]float64{
			landcover.Rural:      20,
			landcover.Suburban:   800,
			landcover.Urban:      3000,
			landcover.DenseUrban: 10000,
		},
		buildingLoss: map[string]d.Mixture{
			BuildingLossPoint:   {d.Fixed(1, 15)},
			BuildingLossMixture: {d.Fixed(0.2, 20), d.Fixed(0.6, 15), d.Fixed(0.2, 10)},
		},
	}

	uesA := map[landcover.RegionType]float64{landcover.Rural: 3, landcover.Suburban: 20, landcover.Urban: 50, landcover.DenseUrban: 50}
	uesB := map[landcover.RegionType]float64{landcover.Rural: 500, landcover.Suburban: 200, landcover.Urban: 200, landcover.DenseUrban: 200}
	for region, v := range uesA {
		r.uesPerAP[categoryRegion{cbsd.CategoryA, region}] = v
	}
	for region, v := range uesB {
		r.uesPerAP[categoryRegion{cbsd.CategoryB, region}] = v
	}

	indoorHeights := map[landcover.RegionType]d.Mixture{
		landcover.Rural:      {d.Fixed(0.8, 3), d.Fixed(0.2, 6)},
		landcover.Suburban:   {d.Fixed(0.7, 3), d.UniformRange(0.3, 6, 12)},
		landcover.Urban:      {d.Fixed(0.5, 3), d.UniformRange(0.5, 6, 18)},
		landcover.DenseUrban: {d.Fixed(0.5, 3), d.UniformRange(0.5, 6, 18)},
	}
	outdoorBHeights := map[landcover.RegionType]d.Mixture{
		landcover.Rural:      {d.Fixed(0.5, 6), d.Fixed(0.5, 30)},
		landcover.Suburban:   {d.Fixed(0.5, 6), d.Fixed(0.5, 18)},
		landcover.Urban:      {d.Fixed(0.6, 12), d.Fixed(0.4, 30)},
		landcover.DenseUrban: {d.Fixed(0.6, 12), d.Fixed(0.4, 30)},
	}

	for _, region := range landcover.AllRegionTypes {
		for _, c := range cbsd.AllCategories {
			for _, t := range []cbsd.Type{cbsd.AP, cbsd.UE} {
				r.height[HeightKey{c, t, true, region}] = indoorHeights[region]
			}
			r.height[HeightKey{c, cbsd.UE, false, region}] = d.Mixture{d.Fixed(1, 1.5)}

			// UEs transmit at 24 dBm whatever serves them
			r.eirp[EirpKey{cbsd.UE, c, region, true}] = d.Mixture{d.Fixed(1, 24)}
			r.eirp[EirpKey{cbsd.UE, c, region, false}] = d.Mixture{d.Fixed(1, 24)}
		}
		r.height[HeightKey{cbsd.CategoryA, cbsd.AP, false, region}] = d.Mixture{d.Fixed(1, 6)}
		r.height[HeightKey{cbsd.CategoryB, cbsd.AP, false, region}] = outdoorBHeights[region]

		r.eirp[EirpKey{cbsd.AP, cbsd.CategoryA, region, true}] = d.Mixture{d.Fixed(1, 26)}
		r.eirp[EirpKey{cbsd.AP, cbsd.CategoryA, region, false}] = d.Mixture{d.Fixed(1, 30)}

		catB := d.Mixture{d.Fixed(1, 47)}
		if region == landcover.Urban || region == landcover.DenseUrban {
			catB = d.Mixture{d.UniformRange(1, 40, 47)}
		}
		r.eirp[EirpKey{cbsd.AP, cbsd.CategoryB, region, true}] = catB
		r.eirp[EirpKey{cbsd.AP, cbsd.CategoryB, region, false}] = catB
	}
	return r
}
