// Package antenna provides the CBSD transmit losses and the DPA receive gain
// toward each protected azimuth.
package antenna

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/geo"
)

const (
	// OutdoorAPInsertionLossDb applies to outdoor APs only.
	OutdoorAPInsertionLossDb = 2.0
	// ReceiverLossDb at the DPA.
	ReceiverLossDb = 2.0
	// SLAmax of the DPA cosine-squared pattern.
	SLAmax = 20.0

	// bounds of a synthesized DPA pattern
	PatternMinDbi = 0.0
	PatternMaxDbi = 6.0
)

type GainMode int

var GainModes = [...]string{
	"auto",
	"pattern",
	"cosine",
}

const (
	// Auto uses the DPA pattern when there is one. NewRxAntenna falls back to
	// cosine-squared without one.
	Auto GainMode = iota
	Pattern
	CosineSquared
)

func (m GainMode) String() string {
	if int(m) < 0 || int(m) >= len(GainModes) {
		return "Unknown-GainMode"
	}
	return GainModes[m]
}

func ParseGainMode(s string) (GainMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, v := range GainModes {
		if v == name {
			return GainMode(i), nil
		}
	}
	return Auto, fmt.Errorf("unknown gain mode %q", s)
}

// TxInsertionLossDb is the transmitter insertion loss of a CBSD.
func TxInsertionLossDb(t cbsd.Type, indoor bool) float64 {
	if t == cbsd.AP && !indoor {
		return OutdoorAPInsertionLossDb
	}
	return 0
}

// Wrap0To180 wraps the input angle to 0 to 180
func Wrap0To180(degree float64) float64 {
	if degree >= 0 && degree <= 180 {
		return degree
	}
	if degree < 0 {
		degree = -degree
	}
	if degree >= 360 {
		degree = math.Mod(degree, 360)
	}
	if degree > 180 {
		degree = 360 - degree
	}
	return degree
}

// Azimuths returns the protected azimuth set: aMin+bw/2 stepped by bw while
// below aMax.
func Azimuths(aMin, aMax, bw float64) []float64 {
	if bw <= 0 {
		return nil
	}
	var result []float64
	for i := 0; ; i++ {
		a := aMin + bw/2 + float64(i)*bw
		if a >= aMax {
			break
		}
		result = append(result, a)
	}
	return result
}

// CosineSquaredGainDb is the DPA gain toward a CBSD at bearing when the beam
// points at azimuth.
func CosineSquaredGainDb(bearing, azimuth, beamwidth, maxGainDbi float64) float64 {
	delta := Wrap0To180(bearing - azimuth)
	return maxGainDbi - math.Min(12.0*math.Pow(delta/beamwidth, 2.0), SLAmax)
}

// PatternGainDb reads pattern at the bearing rounded to a whole degree.
// Bearings outside [0,360) are reduced first.
func PatternGainDb(pattern []float64, bearing float64) float64 {
	idx := int(math.Round(geo.Wrap360(bearing))) % 360
	return pattern[idx]
}

// RandomPattern synthesizes a 360 point pattern uniform in
// [PatternMinDbi, PatternMaxDbi].
func RandomPattern(rng *rand.Rand) []float64 {
	u := distuv.Uniform{Min: PatternMinDbi, Max: PatternMaxDbi, Src: rng}
	result := make([]float64, 360)
	for i := range result {
		result[i] = u.Rand()
	}
	return result
}

// RxAntenna is the DPA receiver over its protected azimuths.
type RxAntenna struct {
	Mode       GainMode
	Azimuths   []float64
	Beamwidth  float64
	MaxGainDbi float64
	Pattern    []float64
}

// NewRxAntenna resolves Auto and checks that a pattern is present when one
// is needed.
func NewRxAntenna(mode GainMode, aMin, aMax, bw, maxGainDbi float64, pattern []float64) (*RxAntenna, error) {
	if bw <= 0 {
		return nil, fmt.Errorf("beamwidth %v must be > 0", bw)
	}
	if mode == Auto {
		mode = CosineSquared
		if len(pattern) > 0 {
			mode = Pattern
		}
	}
	if mode == Pattern && len(pattern) != 360 {
		return nil, fmt.Errorf("pattern mode needs 360 gains, have %d", len(pattern))
	}
	return &RxAntenna{
		Mode:       mode,
		Azimuths:   Azimuths(aMin, aMax, bw),
		Beamwidth:  bw,
		MaxGainDbi: maxGainDbi,
		Pattern:    pattern,
	}, nil
}

// RxGains returns the gain toward a CBSD at bearing for every azimuth, in
// the order of r.Azimuths.
func (r *RxAntenna) RxGains(bearing float64) []float64 {
	result := make([]float64, len(r.Azimuths))
	if r.Mode == Pattern {
		g := PatternGainDb(r.Pattern, bearing)
		for i := range result {
			result[i] = g
		}
		return result
	}
	for i, a := range r.Azimuths {
		result[i] = CosineSquaredGainDb(bearing, a, r.Beamwidth, r.MaxGainDbi)
	}
	return result
}
