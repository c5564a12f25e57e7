package pathloss

import (
	"fmt"
	"math"

	"github.com/wiless/neighborhood/landcover"
)

// HataEHata stands in for the extended Hata kernel with the Okumura-Hata /
// COST-231 formulas and the usual environment corrections. The taller
// terminal is treated as the base station.
type HataEHata struct{}

func (HataEHata) LossDb(freqMHz, txHeightM, rxHeightM, distKm float64, region landcover.RegionType) (float64, error) {
	if freqMHz < 150 || freqMHz > 6000 {
		return 0, fmt.Errorf("%w: hata undefined at %v MHz", ErrPropagationUnavailable, freqMHz)
	}
	if distKm <= 0.05 {
		if distKm <= 0 {
			return 0, nil
		}
		return FreeSpaceLossDb(distKm, freqMHz), nil
	}

	hb, hm := math.Max(txHeightM, rxHeightM), math.Min(txHeightM, rxHeightM)
	hb, hm = math.Max(hb, 1), math.Max(hm, 1)
	logf := math.Log10(freqMHz)

	var result float64
	if freqMHz < 1500 {
		var Ch float64
		if freqMHz <= 200 {
			Ch = 8.29*math.Pow(math.Log10(1.54*hm), 2) - 1.1
		} else {
			Ch = 3.2*math.Pow(math.Log10(11.75*hm), 2) - 4.97
		}
		if region != landcover.DenseUrban {
			// small/medium city mobile correction
			Ch = (1.1*logf-0.7)*hm - (1.56*logf - 0.8)
		}
		result = 69.55 + 26.16*logf - 13.82*math.Log10(hb) - Ch + (44.9-6.55*math.Log10(hb))*math.Log10(distKm)
	} else {
		a := (1.1*logf-0.7)*hm - (1.56*logf - 0.8)
		cm := 0.0
		if region == landcover.DenseUrban {
			cm = 3
		}
		result = 46.3 + 33.9*logf - 13.82*math.Log10(hb) - a + (44.9-6.55*math.Log10(hb))*math.Log10(distKm) + cm
	}

	switch region {
	case landcover.Suburban:
		result -= 2*math.Pow(math.Log10(freqMHz/28), 2) + 5.4
	case landcover.Rural:
		result -= 4.78*logf*logf - 18.33*logf + 40.94
	}
	return result, nil
}
