package neighborhood

import (
	"context"
	"errors"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"

	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/deployment"
	"github.com/wiless/neighborhood/distribution"
	"github.com/wiless/neighborhood/montecarlo"
	"github.com/wiless/neighborhood/pathloss"
)

// Pipeline builds the interference components of one trial: deploy, compute
// the link budget of every CBSD, then draw building losses.
type Pipeline struct {
	Deployer     *deployment.Deployer
	Calculator   *Calculator
	BuildingLoss distribution.Mixture
	// IndoorOnly restricts BuildingLoss to indoor CBSDs.
	IndoorOnly bool
	Log        log.FieldLogger
}

func (p *Pipeline) logger() log.FieldLogger {
	if p.Log == nil {
		return log.StandardLogger()
	}
	return p.Log
}

// Components deploys category c and type t and returns their components in
// deployment order, indoor CBSDs first. An empty deployment yields no
// components and no error. CBSDs whose propagation is unavailable are skipped.
func (p *Pipeline) Components(ctx context.Context, rng *rand.Rand, c cbsd.Category, t cbsd.Type) ([]InterferenceComponents, TrialDiagnostics, error) {
	var diag TrialDiagnostics
	cbsds, _, err := p.Deployer.Deploy(rng, c, t)
	if errors.Is(err, deployment.ErrEmptyDeployment) {
		return nil, diag, nil
	}
	if err != nil {
		return nil, diag, err
	}
	diag.Deployed = len(cbsds)

	result := make([]InterferenceComponents, 0, len(cbsds))
	indoor := 0
	for i, d := range cbsds {
		comp, err := p.Calculator.Components(ctx, rng, d)
		if errors.Is(err, pathloss.ErrPropagationUnavailable) {
			diag.Skipped++
			p.logger().WithFields(log.Fields{
				"category": c,
				"type":     t,
				"index":    i,
				"error":    err,
			}).Warn("skipping CBSD")
			continue
		}
		if err != nil {
			return nil, diag, err
		}
		if d.Indoor {
			indoor++
		}
		result = append(result, comp)
	}

	lossy := result
	if p.IndoorOnly {
		lossy = result[:indoor]
	}
	copy(result, ApplyBuildingLoss(rng, lossy, p.BuildingLoss))
	diag.InRange = len(result)
	return result, diag, nil
}

// Trial returns a Monte-Carlo trial that deploys afresh and aggregates at
// minDistanceKm.
func (p *Pipeline) Trial(c cbsd.Category, t cbsd.Type, minDistanceKm float64) montecarlo.Trial {
	return func(ctx context.Context, index int, rng *rand.Rand) (float64, error) {
		comps, diag, err := p.Components(ctx, rng, c, t)
		if err != nil {
			return 0, err
		}
		diag.InRange = InRange(comps, minDistanceKm)
		p.debug(index, c, t, diag)
		return Aggregate(comps, minDistanceKm), nil
	}
}

// CurveTrial returns a Monte-Carlo trial that deploys once and aggregates at
// every distance k*stepKm, k in [0, points).
func (p *Pipeline) CurveTrial(c cbsd.Category, t cbsd.Type, stepKm float64, points int) montecarlo.CurveTrial {
	return func(ctx context.Context, index int, rng *rand.Rand) ([]float64, error) {
		comps, diag, err := p.Components(ctx, rng, c, t)
		if err != nil {
			return nil, err
		}
		p.debug(index, c, t, diag)
		return AggregateCurve(comps, stepKm, points), nil
	}
}

func (p *Pipeline) debug(index int, c cbsd.Category, t cbsd.Type, diag TrialDiagnostics) {
	p.logger().WithFields(log.Fields{
		"trial":    index,
		"category": c,
		"type":     t,
		"deployed": diag.Deployed,
		"skipped":  diag.Skipped,
		"in_range": diag.InRange,
	}).Debug("trial diagnostics")
}
