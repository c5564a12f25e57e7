package neighborhood

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/wiless/neighborhood/antenna"
	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/config"
	"github.com/wiless/neighborhood/deployment"
	"github.com/wiless/neighborhood/landcover"
	"github.com/wiless/neighborhood/montecarlo"
	"github.com/wiless/neighborhood/pathloss"
	"github.com/wiless/neighborhood/population"
	"github.com/wiless/neighborhood/search"
)

// patternSeedKey derives the seed of a synthesized receive pattern.
const patternSeedKey = 0x70617474

// Simulator searches the neighborhood distance of one DPA for every
// configured category and CBSD type.
type Simulator struct {
	Config      *config.RunConfig
	Registry    *config.Registry
	DPA         config.DPA
	Seed        uint64
	LandCover   landcover.Driver
	Population  population.Source
	Propagation Propagation
	Metrics     *montecarlo.Metrics
	Log         log.FieldLogger
}

// NewSimulator resolves the DPA of rc and wires the default collaborators:
// a constant land cover of rc's region type, a population source chosen by
// population_mode and the reference propagation kernels. Callers may replace
// any of them before Run.
func NewSimulator(rc *config.RunConfig, reg *config.Registry, dpas *config.DPARegistry, seed uint64) (*Simulator, error) {
	dpa, err := dpas.Lookup(rc.DPAName)
	if err != nil {
		return nil, err
	}
	if rc.Beamwidth != nil {
		dpa = dpa.WithBeamwidth(*rc.Beamwidth)
	}
	if err := dpa.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		Config:      rc,
		Registry:    reg,
		DPA:         dpa,
		Seed:        seed,
		LandCover:   landcover.ForRegion(rc.Region()),
		Propagation: pathloss.NewAdapter(pathloss.FreeSpaceITM{}, pathloss.HataEHata{}),
		Log:         log.StandardLogger(),
	}
	switch rc.PopulationMode {
	case config.PopulationOverride:
		s.Population = population.Override(rc.PopulationOverride)
	default:
		s.Population = population.RegionDensity{LandCover: s.LandCover, Density: reg.PopulationDensity}
	}
	return s, nil
}

func (s *Simulator) logger() log.FieldLogger {
	if s.Log == nil {
		return log.StandardLogger()
	}
	return s.Log
}

// Threshold returns the configured interference threshold, or the DPA's.
func (s *Simulator) Threshold() float64 {
	if s.Config.InterferenceThreshold != nil {
		return *s.Config.InterferenceThreshold
	}
	return s.DPA.ThresholdDbm
}

// RxAntenna builds the DPA receiver. In auto and pattern mode a DPA without
// a measured pattern gets a random pattern drawn once from the run seed.
func (s *Simulator) RxAntenna() (*antenna.RxAntenna, error) {
	mode, err := antenna.ParseGainMode(s.Config.RxGainMode)
	if err != nil {
		return nil, err
	}
	pattern := s.DPA.GainPattern
	if mode != antenna.CosineSquared && len(pattern) == 0 {
		pattern = antenna.RandomPattern(montecarlo.NewRand(montecarlo.TrialSeed(s.Seed, patternSeedKey)))
		s.logger().WithField("dpa", s.DPA.Name).Warn("no gain pattern, using a random one")
	}
	d := s.DPA
	return antenna.NewRxAntenna(mode, d.AzimuthMin, d.AzimuthMax, d.BeamwidthDeg, d.MaxGainDbi, pattern)
}

// Pipeline wires deployment and the per-CBSD calculator for the DPA site.
func (s *Simulator) Pipeline() (*Pipeline, error) {
	region, err := landcover.Region(s.LandCover, s.DPA.Center)
	if err != nil {
		return nil, err
	}
	rx, err := s.RxAntenna()
	if err != nil {
		return nil, err
	}
	buildingLoss, err := s.Registry.BuildingLoss(s.Config.BuildingLossModel)
	if err != nil {
		return nil, err
	}
	rc := s.Config
	return &Pipeline{
		Deployer: &deployment.Deployer{
			Registry:   s.Registry,
			Population: s.Population,
			Centre:     s.DPA.Center,
			Region:     region,
			RadiusKm: map[cbsd.Category]int{
				cbsd.CategoryA: rc.CategoryARadiusKm,
				cbsd.CategoryB: rc.CategoryBRadiusKm,
			},
		},
		Calculator: &Calculator{
			DPA:             s.DPA,
			Region:          region,
			LoadingFraction: s.Registry.LoadingFraction(region),
			Propagation:     s.Propagation,
			Rx:              rx,
		},
		BuildingLoss: buildingLoss,
		IndoorOnly:   rc.BuildingLossScope == config.BuildingLossIndoor,
		Log:          s.logger(),
	}, nil
}

// Run searches every configured (type, category) pair and returns the
// nested record together with the individual results.
func (s *Simulator) Run(ctx context.Context) (*Record, []NeighborhoodResult, error) {
	p, err := s.Pipeline()
	if err != nil {
		return nil, nil, err
	}
	s.logger().WithFields(log.Fields{
		"dpa":        s.DPA.Name,
		"region":     p.Calculator.Region,
		"azimuths":   len(p.Calculator.Rx.Azimuths),
		"rx_mode":    p.Calculator.Rx.Mode,
		"iterations": s.Config.Iterations,
		"seed":       s.Seed,
	}).Info("starting neighborhood run")

	record := NewRecord()
	var results []NeighborhoodResult
	for _, t := range s.Config.Types() {
		for _, c := range s.Config.Categories() {
			res, err := s.Neighborhood(ctx, p, c, t)
			if err != nil {
				return nil, nil, fmt.Errorf("Cat%s %s: %w", c, t, err)
			}
			record.Add(res)
			results = append(results, res)
		}
	}
	return record, results, nil
}

// Neighborhood searches the smallest distance at which the percentile
// aggregate interference of category c and type t meets the threshold.
func (s *Simulator) Neighborhood(ctx context.Context, p *Pipeline, c cbsd.Category, t cbsd.Type) (NeighborhoodResult, error) {
	rc := s.Config
	result := NeighborhoodResult{Category: c, CbsdType: t, TargetDbm: s.Threshold(), InterferenceDbm: LowInterferenceDbm}
	fields := log.Fields{"category": c, "type": t}

	n, err := p.Deployer.Count(c, t)
	if err != nil {
		return result, err
	}
	if n == 0 {
		s.logger().WithFields(fields).Info("no CBSDs deployed, neighborhood is 0")
		return result, nil
	}

	runner := montecarlo.NewRunner(montecarlo.TrialSeed(s.Seed, uint64(c), uint64(t)), rc.Workers)
	runner.Metrics = s.Metrics
	runner.Log = s.logger()
	radius, step := rc.RadiusKm(c), rc.SearchStepKm

	var f search.Func
	if rc.RedeployPerDistance {
		f = func(ctx context.Context, d int) (float64, error) {
			mc, err := runner.WithSeed(montecarlo.TrialSeed(runner.Seed, uint64(d))).
				Simulate(ctx, p.Trial(c, t, float64(d)), rc.Iterations, rc.Percentile)
			if err != nil {
				return 0, err
			}
			return mc.Value, nil
		}
	} else {
		points := (radius+step-1)/step + 1
		curves, err := runner.SimulateCurves(ctx, p.CurveTrial(c, t, float64(step), points), rc.Iterations)
		if err != nil {
			return result, err
		}
		f = func(ctx context.Context, d int) (float64, error) {
			mc, err := montecarlo.SummarizeAt(curves, d/step, rc.Percentile)
			if err != nil {
				return 0, err
			}
			return mc.Value, nil
		}
	}

	finder := search.New(search.Threshold, f, radius, step, result.TargetDbm)
	finder.Log = s.logger().WithFields(fields)
	if s.Metrics != nil {
		finder.Observer = s.Metrics
	}
	distance, err := finder.Find(ctx)
	if err != nil {
		return result, err
	}
	value, err := finder.Eval(ctx, distance)
	if err != nil {
		return result, err
	}

	result.DistanceKm = distance
	result.InterferenceDbm = value
	result.Probes = finder.Probes()
	fields["distance_km"] = distance
	fields["interference_dbm"] = value
	fields["state"] = finder.State()
	s.logger().WithFields(fields).Info("neighborhood found")
	return result, nil
}
