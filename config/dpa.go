package config

import (
	"sort"
	"strings"

	"github.com/wiless/neighborhood/geo"
)

// DPA is a protected radar site and its receive beam.
type DPA struct {
	Name         string    `json:"name" mapstructure:"name"`
	Center       geo.Point `json:"center" mapstructure:"center"`
	ThresholdDbm float64   `json:"threshold_dbm" mapstructure:"threshold_dbm"`
	RadarHeightM float64   `json:"radar_height_m" mapstructure:"radar_height_m"`
	AzimuthMin   float64   `json:"azimuth_min" mapstructure:"azimuth_min"`
	AzimuthMax   float64   `json:"azimuth_max" mapstructure:"azimuth_max"`
	BeamwidthDeg float64   `json:"beamwidth_deg" mapstructure:"beamwidth_deg"`
	MaxGainDbi   float64   `json:"max_gain_dbi" mapstructure:"max_gain_dbi"`

	// GainPattern holds 360 gains in dBi indexed by integer azimuth. Empty
	// means no measured pattern is available.
	GainPattern []float64 `json:"gain_pattern,omitempty" mapstructure:"gain_pattern"`
}

func (d DPA) Validate() error {
	key := "dpa." + d.Name
	if strings.TrimSpace(d.Name) == "" {
		return configErrorf("dpa", nil, "missing name")
	}
	if d.AzimuthMin < 0 || d.AzimuthMin >= d.AzimuthMax || d.AzimuthMax > 360 {
		return configErrorf(key, nil, "azimuth range [%v,%v] must satisfy 0 <= min < max <= 360", d.AzimuthMin, d.AzimuthMax)
	}
	if d.BeamwidthDeg <= 0 {
		return configErrorf(key, nil, "beamwidth %v must be > 0", d.BeamwidthDeg)
	}
	if n := len(d.GainPattern); n != 0 && n != 360 {
		return configErrorf(key, nil, "gain pattern has %d values, want 360", n)
	}
	if d.RadarHeightM < 0 {
		return configErrorf(key, nil, "radar height %v must be >= 0", d.RadarHeightM)
	}
	if d.Center.Latitude < -90 || d.Center.Latitude > 90 || d.Center.Longitude < -180 || d.Center.Longitude > 180 {
		return configErrorf(key, nil, "center %v out of range", d.Center)
	}
	return nil
}

// WithBeamwidth returns a copy of d using bw.
func (d DPA) WithBeamwidth(bw float64) DPA {
	d.BeamwidthDeg = bw
	return d
}

var builtinDPAs = []DPA{
	{Name: "HatCreek", Center: geo.Point{Latitude: 40.8172, Longitude: -121.4733}, ThresholdDbm: -144, RadarHeightM: 50, AzimuthMin: 0, AzimuthMax: 360, BeamwidthDeg: 3},
	{Name: "East1", Center: geo.Point{Latitude: 36.9415, Longitude: -75.9654}, ThresholdDbm: -144, RadarHeightM: 50, AzimuthMin: 0, AzimuthMax: 360, BeamwidthDeg: 3},
	{Name: "West14", Center: geo.Point{Latitude: 32.7015, Longitude: -117.2196}, ThresholdDbm: -144, RadarHeightM: 50, AzimuthMin: 0, AzimuthMax: 360, BeamwidthDeg: 3},
	{Name: "Pensacola", Center: geo.Point{Latitude: 30.3486, Longitude: -87.3083}, ThresholdDbm: -144, RadarHeightM: 50, AzimuthMin: 90, AzimuthMax: 270, BeamwidthDeg: 3},
}

// DPARegistry resolves DPA names. It is read-only once built.
type DPARegistry struct {
	entries map[string]DPA
}

func dpaKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

// NewDPARegistry returns the built-in DPAs plus extra. An extra entry
// replaces a built-in one with the same name.
func NewDPARegistry(extra ...DPA) (*DPARegistry, error) {
	r := &DPARegistry{entries: make(map[string]DPA, len(builtinDPAs)+len(extra))}
	for _, list := range [][]DPA{builtinDPAs, extra} {
		for _, d := range list {
			if err := d.Validate(); err != nil {
				return nil, err
			}
			r.entries[dpaKey(d.Name)] = d
		}
	}
	return r, nil
}

// Lookup finds a DPA by name, ignoring case and spaces ("Hat Creek" and
// "hatcreek" both resolve).
func (r *DPARegistry) Lookup(name string) (DPA, error) {
	d, ok := r.entries[dpaKey(name)]
	if !ok {
		return DPA{}, configErrorf("dpa_name", nil, "unknown DPA %q, known: %s", name, strings.Join(r.Names(), ", "))
	}
	d.GainPattern = append([]float64(nil), d.GainPattern...)
	return d, nil
}

func (r *DPARegistry) Names() []string {
	result := make([]string, 0, len(r.entries))
	for _, d := range r.entries {
		result = append(result, d.Name)
	}
	sort.Strings(result)
	return result
}
