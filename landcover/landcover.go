// Package landcover classifies a location into the region types that drive
// CBSD attribute tables.
package landcover

import (
	"fmt"
	"strings"

	"github.com/wiless/neighborhood/geo"
)

type RegionType int

var RegionTypes = [...]string{
	"RURAL",
	"SUBURBAN",
	"URBAN",
	"DENSE_URBAN",
}

const (
	Rural RegionType = iota
	Suburban
	Urban
	DenseUrban
)

// AllRegionTypes lists every region type in table order.
var AllRegionTypes = []RegionType{Rural, Suburban, Urban, DenseUrban}

func (r RegionType) String() string {
	if int(r) < 0 || int(r) >= len(RegionTypes) {
		return "Unknown-RegionType"
	}
	return RegionTypes[r]
}

func (r RegionType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RegionType) UnmarshalText(text []byte) error {
	v, err := ParseRegionType(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func ParseRegionType(s string) (RegionType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	for i, v := range RegionTypes {
		if v == name {
			return RegionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown region type %q", s)
}

// NLCD land cover classes used for region classification.
const (
	OpenWater          = 11
	DevelopedOpenSpace = 21
	DevelopedLow       = 22
	DevelopedMedium    = 23
	DevelopedHigh      = 24
	DeciduousForest    = 41
)

// RegionFromCode maps an NLCD code to a region type.
func RegionFromCode(code int) RegionType {
	switch code {
	case DevelopedHigh:
		return DenseUrban
	case DevelopedMedium:
		return Urban
	case DevelopedLow, DevelopedOpenSpace:
		return Suburban
	default:
		return Rural
	}
}

// Driver reads land cover at a location. Implementations backed by raster
// tiles must be safe for concurrent reads.
type Driver interface {
	LandCoverCode(p geo.Point) (int, error)
}

// Region classifies p using d.
func Region(d Driver, p geo.Point) (RegionType, error) {
	code, err := d.LandCoverCode(p)
	if err != nil {
		return Rural, fmt.Errorf("land cover at %v: %w", p, err)
	}
	return RegionFromCode(code), nil
}

// Constant reports the same land cover code everywhere.
type Constant int

func (c Constant) LandCoverCode(geo.Point) (int, error) { return int(c), nil }

// ForRegion returns a Constant driver that classifies as r.
func ForRegion(r RegionType) Constant {
	switch r {
	case DenseUrban:
		return Constant(DevelopedHigh)
	case Urban:
		return Constant(DevelopedMedium)
	case Suburban:
		return Constant(DevelopedLow)
	default:
		return Constant(DeciduousForest)
	}
}
