package deployment

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/config"
	"github.com/wiless/neighborhood/geo"
	"github.com/wiless/neighborhood/landcover"
	"github.com/wiless/neighborhood/population"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var sanFrancisco = geo.Point{Latitude: 37.78, Longitude: -122.42}

func TestSampleStaysInAnnulus(t *testing.T) {
	rng := newRand(1)
	circle := geo.Circle{Center: sanFrancisco, RadiusKm: 25}
	for _, min := range []float64{0, 5, 24} {
		drops, err := Sample(rng, circle, min, 2000)
		if err != nil {
			t.Fatal(err)
		}
		if len(drops) != 2000 {
			t.Fatalf("got %d drops", len(drops))
		}
		for _, d := range drops {
			dist := sanFrancisco.DistanceKm(d.Location)
			if dist > 25+1e-6 || dist < min-1e-6 {
				t.Fatalf("min %v: drop at %v km", min, dist)
			}
			if d.BearingDeg < 0 || d.BearingDeg >= 360 {
				t.Fatalf("bearing %v", d.BearingDeg)
			}
			if math.Abs(dist-d.DistanceKm) > 1e-6 {
				t.Fatalf("sampled %v km, measured %v km", d.DistanceKm, dist)
			}
		}
	}
}

func TestSampleUniformInDistance(t *testing.T) {
	drops, err := Sample(newRand(2), geo.Circle{Center: sanFrancisco, RadiusKm: 10}, 0, 20000)
	if err != nil {
		t.Fatal(err)
	}
	inner := 0
	for _, d := range drops {
		if d.DistanceKm < 5 {
			inner++
		}
	}
	// half the points fall inside half the radius, not a quarter
	if frac := float64(inner) / float64(len(drops)); math.Abs(frac-0.5) > 0.02 {
		t.Errorf("inner fraction = %v", frac)
	}
}

func TestSampleInvalidRange(t *testing.T) {
	circle := geo.Circle{Center: sanFrancisco, RadiusKm: 10}
	for _, min := range []float64{10, 11} {
		if _, err := Sample(newRand(3), circle, min, 5); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("min %v: err = %v", min, err)
		}
	}
	if _, err := Sample(newRand(3), geo.Circle{Center: sanFrancisco}, 0, 0); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero radius: err = %v", err)
	}
	circular := DropParameter{Centre: sanFrancisco, Type: Circular, InnerRadius: 1, Radius: 10, NCount: 1}
	if _, err := circular.Drop(newRand(3)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("circular with inner radius: err = %v", err)
	}
	circular.InnerRadius = 0
	if drops, err := circular.Drop(newRand(3)); err != nil || len(drops) != 1 {
		t.Errorf("circular: %v, %v", drops, err)
	}
}

func TestRoundHeight(t *testing.T) {
	cases := map[float64]float64{3: 3, 3.2: 3, 3.3: 3.5, 6.74: 6.5, 6.76: 7, 17.9: 18}
	for in, want := range cases {
		if got := RoundHeight(in); got != want {
			t.Errorf("RoundHeight(%v) = %v, want %v", in, got, want)
		}
	}
}

func ruralDeployer(people int) *Deployer {
	return &Deployer{
		Registry:   config.DefaultRegistry(),
		Population: population.Override(people),
		Centre:     sanFrancisco,
		Region:     landcover.Rural,
		RadiusKm:   map[cbsd.Category]int{cbsd.CategoryA: 10, cbsd.CategoryB: 10},
	}
}

func TestDeployRuralCategoryA(t *testing.T) {
	// 375000 people * 0.2 * 0.1 * 0.4 / 3 UEs per AP = 1000 APs
	d := ruralDeployer(375000)
	cbsds, bearings, err := d.Deploy(newRand(4), cbsd.CategoryA, cbsd.AP)
	if err != nil {
		t.Fatal(err)
	}
	if len(cbsds) != 1000 || len(bearings) != 1000 {
		t.Fatalf("deployed %d cbsds, %d bearings", len(cbsds), len(bearings))
	}
	indoor := 0
	for i, c := range cbsds {
		if c.Indoor {
			indoor++
			if c.EirpMaxDbm != 26 {
				t.Errorf("indoor eirp %v", c.EirpMaxDbm)
			}
		} else if c.EirpMaxDbm != 30 {
			t.Errorf("outdoor eirp %v", c.EirpMaxDbm)
		}
		if c.HeightM != 3 && c.HeightM != 6 {
			t.Errorf("height %v", c.HeightM)
		}
		if math.Mod(c.HeightM, HeightStep) != 0 {
			t.Errorf("height %v not a multiple of %v", c.HeightM, HeightStep)
		}
		if c.TxGainDbi != 6 {
			t.Errorf("tx gain %v", c.TxGainDbi)
		}
		if i > 0 && c.Indoor && !cbsds[i-1].Indoor {
			t.Fatalf("indoor cbsd %d after an outdoor one", i)
		}
		if got := sanFrancisco.BearingTo(c.Location); math.Abs(geo.Wrap360(got-bearings[i]+180)-180) > 1e-6 {
			t.Errorf("bearing %v, location says %v", bearings[i], got)
		}
	}
	if indoor < 985 || indoor > 995 {
		t.Errorf("indoor count %d", indoor)
	}
}

func TestDeployCategoryBOutdoorOnly(t *testing.T) {
	// 375000 * 0.2 * 0.1 * 0.6 / 500 = 9 APs
	d := ruralDeployer(375000)
	cbsds, _, err := d.Deploy(newRand(5), cbsd.CategoryB, cbsd.AP)
	if err != nil {
		t.Fatal(err)
	}
	if len(cbsds) != 9 {
		t.Fatalf("deployed %d", len(cbsds))
	}
	for _, c := range cbsds {
		if c.Indoor || c.EirpMaxDbm != 47 {
			t.Errorf("unexpected %v", c)
		}
		if c.HeightM != 6 && c.HeightM != 30 {
			t.Errorf("height %v", c.HeightM)
		}
	}
}

func TestDeployUECount(t *testing.T) {
	d := ruralDeployer(375000)
	aps, err := d.Count(cbsd.CategoryA, cbsd.AP)
	if err != nil {
		t.Fatal(err)
	}
	ues, err := d.Count(cbsd.CategoryA, cbsd.UE)
	if err != nil {
		t.Fatal(err)
	}
	if ues != 3*aps {
		t.Errorf("ues = %d, aps = %d", ues, aps)
	}
	cbsds, _, err := d.Deploy(newRand(6), cbsd.CategoryA, cbsd.UE)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cbsds {
		if c.TxGainDbi != 0 || c.EirpMaxDbm != 24 {
			t.Fatalf("unexpected UE %v", c)
		}
	}
}

func TestDeployEmpty(t *testing.T) {
	d := ruralDeployer(375000)
	d.RadiusKm[cbsd.CategoryA] = 0
	cbsds, bearings, err := d.Deploy(newRand(7), cbsd.CategoryA, cbsd.AP)
	if !errors.Is(err, ErrEmptyDeployment) {
		t.Fatalf("err = %v", err)
	}
	if len(cbsds) != 0 || len(bearings) != 0 {
		t.Errorf("got %d cbsds", len(cbsds))
	}
}
