package pathloss

import (
	"context"
	"math"
)

// FreeSpaceITM stands in for ITM where no terrain is loaded. It returns the
// free space loss over the slant distance.
type FreeSpaceITM struct {
	// CutOffDistance in km; shorter paths have no loss.
	CutOffDistance float64
}

func (p FreeSpaceITM) LossDb(ctx context.Context, tx, rx Terminal, reliability, freqMHz float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	distance := Distance3D(tx, rx)
	if distance <= p.CutOffDistance || distance == 0 {
		return 0, nil
	}
	return FreeSpaceLossDb(distance, freqMHz), nil
}

// FreeSpaceLossDb is 20 log10(4 pi d / lambda) with d in km and f in MHz.
func FreeSpaceLossDb(distKm, freqMHz float64) float64 {
	return 20*math.Log10(distKm) + 20*math.Log10(freqMHz) + 32.45
}

// Distance3D returns the slant distance in km between two terminals.
func Distance3D(src, dest Terminal) float64 {
	d2D := src.Location.DistanceKm(dest.Location)
	dh := (src.HeightM - dest.HeightM) / 1e3
	return math.Sqrt(d2D*d2D + dh*dh)
}
