// Package config holds the attribute tables, DPA definitions and run
// settings of a neighborhood calculation. A Registry is built once at start-up
// and never modified afterwards, so workers can share it freely.
package config

import (
	"fmt"

	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/distribution"
	"github.com/wiless/neighborhood/landcover"
)

// HeightKey selects a height mixture.
type HeightKey struct {
	Category cbsd.Category
	Type     cbsd.Type
	Indoor   bool
	Region   landcover.RegionType
}

// EirpKey selects an EIRP mixture.
type EirpKey struct {
	Type     cbsd.Type
	Category cbsd.Category
	Region   landcover.RegionType
	Indoor   bool
}

type categoryRegion struct {
	Category cbsd.Category
	Region   landcover.RegionType
}

// Building loss models.
const (
	BuildingLossPoint   = "point"
	BuildingLossMixture = "mixture"
)

// Registry is the immutable set of tables used to deploy CBSDs.
type Registry struct {
	eirp              map[EirpKey]distribution.Mixture
	height            map[HeightKey]distribution.Mixture
	loading           map[landcover.RegionType]float64
	indoorFraction    map[landcover.RegionType]float64
	outdoorOnly       map[cbsd.Category]bool
	uesPerAP          map[categoryRegion]float64
	fractionServed    map[cbsd.Category]float64
	populationDensity map[landcover.RegionType]float64
	buildingLoss      map[string]distribution.Mixture

	marketPenetration float64
	channelScaling    float64
	txGain            map[cbsd.Type]float64
}

// Eirp returns the EIRP mixture (dBm) for the given CBSD class.
func (r *Registry) Eirp(t cbsd.Type, c cbsd.Category, region landcover.RegionType, indoor bool) (distribution.Mixture, error) {
	m, ok := r.eirp[EirpKey{Type: t, Category: c, Region: region, Indoor: indoor}]
	if !ok {
		return nil, configErrorf("eirp", nil, "no rule for %s/Cat%s/%s/indoor=%v", t, c, region, indoor)
	}
	return m, nil
}

// Height returns the height mixture (m) for the given CBSD class.
func (r *Registry) Height(c cbsd.Category, t cbsd.Type, indoor bool, region landcover.RegionType) (distribution.Mixture, error) {
	m, ok := r.height[HeightKey{Category: c, Type: t, Indoor: indoor, Region: region}]
	if !ok {
		return nil, configErrorf("height", nil, "no rule for Cat%s/%s/indoor=%v/%s", c, t, indoor, region)
	}
	return m, nil
}

// LoadingFraction is the share of time a CBSD transmits in region.
func (r *Registry) LoadingFraction(region landcover.RegionType) float64 {
	return r.loading[region]
}

// IndoorFraction is the share of CBSDs of category c deployed indoors.
func (r *Registry) IndoorFraction(c cbsd.Category, region landcover.RegionType) float64 {
	if r.outdoorOnly[c] {
		return 0
	}
	return r.indoorFraction[region]
}

// UEsPerAP is the number of UEs served by each AP.
func (r *Registry) UEsPerAP(c cbsd.Category, region landcover.RegionType) float64 {
	return r.uesPerAP[categoryRegion{Category: c, Region: region}]
}

func (r *Registry) FractionServed(c cbsd.Category) float64 { return r.fractionServed[c] }
func (r *Registry) MarketPenetration() float64            { return r.marketPenetration }
func (r *Registry) ChannelScaling() float64               { return r.channelScaling }

// TxGainDbi is the CBSD antenna gain for type t.
func (r *Registry) TxGainDbi(t cbsd.Type) float64 { return r.txGain[t] }

// PopulationDensity is people per km² used when no census raster is available.
func (r *Registry) PopulationDensity(region landcover.RegionType) float64 {
	return r.populationDensity[region]
}

// BuildingLoss returns the named building loss mixture (dB).
func (r *Registry) BuildingLoss(model string) (distribution.Mixture, error) {
	if model == "" {
		model = BuildingLossPoint
	}
	m, ok := r.buildingLoss[model]
	if !ok {
		return nil, configErrorf("building_loss_model", nil, "unknown model %q, want %q or %q", model, BuildingLossPoint, BuildingLossMixture)
	}
	return m, nil
}

// Validate checks every table of the registry.
func (r *Registry) Validate() error {
	for k, m := range r.eirp {
		if err := m.Validate(); err != nil {
			return configErrorf("eirp", err, "%s/Cat%s/%s/indoor=%v", k.Type, k.Category, k.Region, k.Indoor)
		}
	}
	for k, m := range r.height {
		if err := m.Validate(); err != nil {
			return configErrorf("height", err, "Cat%s/%s/indoor=%v/%s", k.Category, k.Type, k.Indoor, k.Region)
		}
		for _, f := range m {
			if f.RangeMin < 0 {
				return configErrorf("height", nil, "Cat%s/%s/%s has negative height %v", k.Category, k.Type, k.Region, f.RangeMin)
			}
		}
	}
	for name, m := range r.buildingLoss {
		if err := m.Validate(); err != nil {
			return configErrorf("building_loss", err, "model %q", name)
		}
		for _, f := range m {
			if f.RangeMin < 0 {
				return configErrorf("building_loss", nil, "model %q has negative loss %v", name, f.RangeMin)
			}
		}
	}
	for _, region := range landcover.AllRegionTypes {
		if l := r.loading[region]; l <= 0 || l > 1 {
			return configErrorf("loading_fraction", nil, "%s = %v, want (0,1]", region, l)
		}
		if f := r.indoorFraction[region]; f < 0 || f > 1 {
			return configErrorf("indoor_fraction", nil, "%s = %v, want [0,1]", region, f)
		}
		if d := r.populationDensity[region]; d < 0 {
			return configErrorf("population_density", nil, "%s = %v, want >= 0", region, d)
		}
		for _, c := range cbsd.AllCategories {
			if u := r.uesPerAP[categoryRegion{c, region}]; u <= 0 {
				return configErrorf("ues_per_ap", nil, "Cat%s/%s = %v, want > 0", c, region, u)
			}
		}
	}
	for _, c := range cbsd.AllCategories {
		if f := r.fractionServed[c]; f < 0 || f > 1 {
			return configErrorf("fraction_served", nil, "Cat%s = %v, want [0,1]", c, f)
		}
	}
	if r.marketPenetration < 0 || r.marketPenetration > 1 {
		return configErrorf("market_penetration", nil, "%v, want [0,1]", r.marketPenetration)
	}
	if r.channelScaling < 0 || r.channelScaling > 1 {
		return configErrorf("channel_scaling", nil, "%v, want [0,1]", r.channelScaling)
	}
	return nil
}

func (r *Registry) clone() *Registry {
	result := &Registry{
		eirp:              make(map[EirpKey]distribution.Mixture, len(r.eirp)),
		height:            make(map[HeightKey]distribution.Mixture, len(r.height)),
		loading:           make(map[landcover.RegionType]float64),
		indoorFraction:    make(map[landcover.RegionType]float64),
		outdoorOnly:       make(map[cbsd.Category]bool),
		uesPerAP:          make(map[categoryRegion]float64),
		fractionServed:    make(map[cbsd.Category]float64),
		populationDensity: make(map[landcover.RegionType]float64),
		buildingLoss:      make(map[string]distribution.Mixture),
		txGain:            make(map[cbsd.Type]float64),
		marketPenetration: r.marketPenetration,
		channelScaling:    r.channelScaling,
	}
	for k, v := range r.eirp {
		result.eirp[k] = append(distribution.Mixture(nil), v...)
	}
	for k, v := range r.height {
		result.height[k] = append(distribution.Mixture(nil), v...)
	}
	for k, v := range r.buildingLoss {
		result.buildingLoss[k] = append(distribution.Mixture(nil), v...)
	}
	for k, v := range r.loading {
		result.loading[k] = v
	}
	for k, v := range r.indoorFraction {
		result.indoorFraction[k] = v
	}
	for k, v := range r.outdoorOnly {
		result.outdoorOnly[k] = v
	}
	for k, v := range r.uesPerAP {
		result.uesPerAP[k] = v
	}
	for k, v := range r.fractionServed {
		result.fractionServed[k] = v
	}
	for k, v := range r.populationDensity {
		result.populationDensity[k] = v
	}
	for k, v := range r.txGain {
		result.txGain[k] = v
	}
	return result
}

func (k HeightKey) String() string {
	return fmt.Sprintf("Cat%s/%s/indoor=%v/%s", k.Category, k.Type, k.Indoor, k.Region)
}
