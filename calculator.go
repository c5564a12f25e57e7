package neighborhood

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/wiless/vlib"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wiless/neighborhood/antenna"
	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/config"
	"github.com/wiless/neighborhood/geo"
	"github.com/wiless/neighborhood/landcover"
	"github.com/wiless/neighborhood/pathloss"
)

// MaxRuralClutterDb bounds the clutter loss drawn for rural CBSDs.
const MaxRuralClutterDb = 15.0

// Propagation returns the path loss between two terminals.
type Propagation interface {
	Loss(ctx context.Context, tx, rx pathloss.Terminal, region landcover.RegionType) (float64, error)
}

// Calculator turns a CBSD into its InterferenceComponents toward DPA.
type Calculator struct {
	DPA             config.DPA
	Region          landcover.RegionType
	LoadingFraction float64
	Propagation     Propagation
	Rx              *antenna.RxAntenna
}

func (c *Calculator) receiver() pathloss.Terminal {
	return pathloss.Terminal{Location: c.DPA.Center, HeightM: c.DPA.RadarHeightM}
}

// LoadedEirpDbm scales eirpMaxDbm by the loading fraction in linear power
// and rounds to 0.1 dB.
func LoadedEirpDbm(eirpMaxDbm, loading float64) float64 {
	return math.Round(vlib.Db(vlib.InvDb(eirpMaxDbm)*loading)*10) / 10
}

// Components returns the link budget of d. The building loss is left at 0,
// see ApplyBuildingLoss. A propagation failure is returned as is and wraps
// pathloss.ErrPropagationUnavailable when the kernel refused the path.
func (c *Calculator) Components(ctx context.Context, rng *rand.Rand, d cbsd.Cbsd) (InterferenceComponents, error) {
	var result InterferenceComponents
	tx := pathloss.Terminal{Location: d.Location, HeightM: d.HeightM, Indoor: d.Indoor}
	loss, err := c.Propagation.Loss(ctx, tx, c.receiver(), c.Region)
	if err != nil {
		return result, err
	}

	result.DistanceKm, result.BearingFromDpaDeg, _ = geo.Inverse(c.DPA.Center, d.Location)
	result.EirpDbm = LoadedEirpDbm(d.EirpMaxDbm, c.LoadingFraction)
	result.LossTransmitterDb = antenna.TxInsertionLossDb(d.Type, d.Indoor)
	result.LossReceiverDb = antenna.ReceiverLossDb
	result.LossPropagationDb = loss
	if c.Region == landcover.Rural {
		result.LossClutterDb = distuv.Uniform{Min: 0, Max: MaxRuralClutterDb, Src: rng}.Rand()
	}
	result.RxGainByAzimuth = c.Rx.RxGains(result.BearingFromDpaDeg)
	return result, nil
}
