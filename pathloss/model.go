// Package pathloss selects and evaluates the propagation model between a
// CBSD and the DPA receiver.
package pathloss

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/wiless/neighborhood/geo"
	"github.com/wiless/neighborhood/landcover"
)

var ErrPropagationUnavailable = errors.New("propagation unavailable")

const (
	// FreqMHz is the mid point of the 3550-3700 MHz band.
	FreqMHz            = 3625.0
	DefaultReliability = 0.5
	// TallHeightM and above, ITM alone is used.
	TallHeightM = 18.0
)

// Terminal is one end of a path.
type Terminal struct {
	Location geo.Point
	HeightM  float64
	Indoor   bool
}

// ITM is the Irregular Terrain Model kernel. It may block on terrain tiles
// and must be safe for concurrent use.
type ITM interface {
	LossDb(ctx context.Context, tx, rx Terminal, reliability, freqMHz float64) (float64, error)
}

// EHata is the extended Hata kernel.
type EHata interface {
	LossDb(freqMHz, txHeightM, rxHeightM, distKm float64, region landcover.RegionType) (float64, error)
}

type PathLossType int

var PathLossTypes = [...]string{
	"ITM",
	"MaxITMEHata",
}

const (
	ITMOnly PathLossType = iota
	MaxITMEHata
)

func (p PathLossType) String() string {
	if int(p) < 0 || int(p) >= len(PathLossTypes) {
		return "Unknown-PathLossType"
	}
	return PathLossTypes[p]
}

// Select returns the model used for a CBSD at heightM in region.
func Select(heightM float64, region landcover.RegionType) PathLossType {
	if heightM >= TallHeightM || region == landcover.Rural {
		return ITMOnly
	}
	return MaxITMEHata
}

type ModelSetting struct {
	FreqMHz     float64
	Reliability float64
}

func (m *ModelSetting) SetDefault() {
	m.FreqMHz = FreqMHz
	m.Reliability = DefaultReliability
}

// Adapter combines the two kernels. It holds no state besides its setting.
type Adapter struct {
	ModelSetting
	ITM   ITM
	EHata EHata
}

func NewAdapter(itm ITM, ehata EHata) *Adapter {
	result := &Adapter{ITM: itm, EHata: ehata}
	result.SetDefault()
	return result
}

// Loss returns the path loss in dB from tx to rx. Kernel failures and
// non-finite results wrap ErrPropagationUnavailable.
func (a *Adapter) Loss(ctx context.Context, tx, rx Terminal, region landcover.RegionType) (float64, error) {
	itm, err := a.ITM.LossDb(ctx, tx, rx, a.Reliability, a.FreqMHz)
	if err = check("itm", itm, err); err != nil {
		return 0, err
	}
	if Select(tx.HeightM, region) == ITMOnly {
		return math.Max(itm, 0), nil
	}

	distKm := tx.Location.DistanceKm(rx.Location)
	ehata, err := a.EHata.LossDb(a.FreqMHz, tx.HeightM, rx.HeightM, distKm, region)
	if err = check("ehata", ehata, err); err != nil {
		return 0, err
	}
	return math.Max(math.Max(itm, ehata), 0), nil
}

func check(kernel string, loss float64, err error) error {
	if err != nil {
		if errors.Is(err, ErrPropagationUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrPropagationUnavailable, kernel, err)
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return fmt.Errorf("%w: %s returned %v", ErrPropagationUnavailable, kernel, loss)
	}
	return nil
}
