// Package deployment drops a random CBSD population around a DPA.
package deployment

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"

	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/config"
	"github.com/wiless/neighborhood/distribution"
	"github.com/wiless/neighborhood/geo"
	"github.com/wiless/neighborhood/landcover"
	"github.com/wiless/neighborhood/population"
)

var ErrEmptyDeployment = errors.New("empty deployment")

// HeightStep is the resolution of sampled heights in meters.
const HeightStep = 0.5

// Deployer creates the CBSDs of one category and type around Centre.
type Deployer struct {
	Registry   *config.Registry
	Population population.Source
	Centre     geo.Point
	Region     landcover.RegionType
	RadiusKm   map[cbsd.Category]int
}

// Count returns how many CBSDs of category c and type t are deployed.
func (d *Deployer) Count(c cbsd.Category, t cbsd.Type) (int, error) {
	radius := d.RadiusKm[c]
	if radius <= 0 {
		return 0, nil
	}
	people, err := d.Population.PopulationInCircle(geo.Circle{Center: d.Centre, RadiusKm: radius})
	if err != nil {
		return 0, fmt.Errorf("population for Cat%s: %w", c, err)
	}
	r := d.Registry
	uesPerAP := r.UEsPerAP(c, d.Region)
	aps := math.Round(float64(people) * r.MarketPenetration() * r.ChannelScaling() * r.FractionServed(c) / uesPerAP)
	if t == cbsd.UE {
		return int(math.Round(aps * uesPerAP)), nil
	}
	return int(aps), nil
}

// Deploy returns the CBSDs and, in the same order, the bearing from the
// centre each was dropped at. Indoor CBSDs come first. When no CBSD is
// deployed the error wraps ErrEmptyDeployment.
func (d *Deployer) Deploy(rng *rand.Rand, c cbsd.Category, t cbsd.Type) ([]cbsd.Cbsd, []float64, error) {
	n, err := d.Count(c, t)
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: Cat%s %s", ErrEmptyDeployment, c, t)
	}

	drops, err := Sample(rng, geo.Circle{Center: d.Centre, RadiusKm: d.RadiusKm[c]}, 0, n)
	if err != nil {
		return nil, nil, err
	}

	split := distribution.Partition(n, []float64{d.Registry.IndoorFraction(c, d.Region), 1 - d.Registry.IndoorFraction(c, d.Region)})
	cbsds := make([]cbsd.Cbsd, 0, n)
	bearings := make([]float64, 0, n)
	offset := 0
	for group, count := range split {
		if count == 0 {
			continue
		}
		indoor := group == 0
		heights, err := d.draw(rng, count, func() (distribution.Mixture, error) {
			return d.Registry.Height(c, t, indoor, d.Region)
		})
		if err != nil {
			return nil, nil, err
		}
		eirps, err := d.draw(rng, count, func() (distribution.Mixture, error) {
			return d.Registry.Eirp(t, c, d.Region, indoor)
		})
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < count; i++ {
			drop := drops[offset+i]
			cbsds = append(cbsds, cbsd.Cbsd{
				Category:   c,
				Type:       t,
				Location:   drop.Location,
				HeightM:    RoundHeight(heights[i]),
				Indoor:     indoor,
				EirpMaxDbm: eirps[i],
				TxGainDbi:  d.Registry.TxGainDbi(t),
			})
			bearings = append(bearings, drop.BearingDeg)
		}
		offset += count
	}

	log.WithFields(log.Fields{
		"category": c,
		"type":     t,
		"count":    n,
		"indoor":   split[0],
	}).Debug("deployed")
	return cbsds, bearings, nil
}

func (d *Deployer) draw(rng *rand.Rand, n int, lookup func() (distribution.Mixture, error)) ([]float64, error) {
	m, err := lookup()
	if err != nil {
		return nil, err
	}
	return distribution.Draw(rng, m, n), nil
}

// RoundHeight rounds h to the nearest HeightStep.
func RoundHeight(h float64) float64 {
	return math.Round(h/HeightStep) * HeightStep
}
