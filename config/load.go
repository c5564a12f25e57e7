package config

import (
	ms "github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/distribution"
	"github.com/wiless/neighborhood/landcover"
)

type eirpOverride struct {
	Type     cbsd.Type            `mapstructure:"type"`
	Category cbsd.Category        `mapstructure:"category"`
	Region   landcover.RegionType `mapstructure:"region"`
	Indoor   bool                 `mapstructure:"indoor"`
	Mixture  distribution.Mixture `mapstructure:"mixture"`
}

type heightOverride struct {
	Category cbsd.Category        `mapstructure:"category"`
	Type     cbsd.Type            `mapstructure:"type"`
	Indoor   bool                 `mapstructure:"indoor"`
	Region   landcover.RegionType `mapstructure:"region"`
	Mixture  distribution.Mixture `mapstructure:"mixture"`
}

// Overrides is the on-disk form of a registry file. Every field is optional;
// region and category map keys are spelled as in RegionTypes and Categories.
type Overrides struct {
	MarketPenetration *float64                        `mapstructure:"market_penetration"`
	ChannelScaling    *float64                        `mapstructure:"channel_scaling"`
	LoadingFraction   map[string]float64              `mapstructure:"loading_fraction"`
	IndoorFraction    map[string]float64              `mapstructure:"indoor_fraction"`
	PopulationDensity map[string]float64              `mapstructure:"population_density"`
	FractionServed    map[string]float64              `mapstructure:"fraction_served"`
	UEsPerAP          map[string]map[string]float64   `mapstructure:"ues_per_ap"`
	BuildingLoss      map[string]distribution.Mixture `mapstructure:"building_loss"`
	Eirp              []eirpOverride                  `mapstructure:"eirp"`
	Height            []heightOverride                `mapstructure:"height"`
}

func decode(input interface{}, result interface{}) error {
	dec, err := ms.NewDecoder(&ms.DecoderConfig{
		DecodeHook: ms.ComposeDecodeHookFunc(
			ms.TextUnmarshallerHookFunc(),
			ms.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func readSettings(path string) (map[string]interface{}, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return v.AllSettings(), nil
}

// LoadRegistry returns DefaultRegistry with the overrides of path applied.
// An empty path returns the defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	settings, err := readSettings(path)
	if err != nil {
		return nil, configErrorf("registry_file", err, "reading %q", path)
	}
	var o Overrides
	if err := decode(settings, &o); err != nil {
		return nil, configErrorf("registry_file", err, "decoding %q", path)
	}
	r, err := o.Apply(DefaultRegistry())
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"file": path, "eirp": len(o.Eirp), "height": len(o.Height)}).Info("registry overrides applied")
	return r, nil
}

// Apply merges o onto a copy of base and validates the result. base is not
// modified.
func (o *Overrides) Apply(base *Registry) (*Registry, error) {
	r := base.clone()
	if o.MarketPenetration != nil {
		r.marketPenetration = *o.MarketPenetration
	}
	if o.ChannelScaling != nil {
		r.channelScaling = *o.ChannelScaling
	}
	for name, table := range map[string]struct {
		in  map[string]float64
		out map[landcover.RegionType]float64
	}{
		"loading_fraction":   {o.LoadingFraction, r.loading},
		"indoor_fraction":    {o.IndoorFraction, r.indoorFraction},
		"population_density": {o.PopulationDensity, r.populationDensity},
	} {
		for k, v := range table.in {
			region, err := landcover.ParseRegionType(k)
			if err != nil {
				return nil, configErrorf(name, err, "bad key")
			}
			table.out[region] = v
		}
	}
	for k, v := range o.FractionServed {
		c, err := cbsd.ParseCategory(k)
		if err != nil {
			return nil, configErrorf("fraction_served", err, "bad key")
		}
		r.fractionServed[c] = v
	}
	for ck, regions := range o.UEsPerAP {
		c, err := cbsd.ParseCategory(ck)
		if err != nil {
			return nil, configErrorf("ues_per_ap", err, "bad key")
		}
		for rk, v := range regions {
			region, err := landcover.ParseRegionType(rk)
			if err != nil {
				return nil, configErrorf("ues_per_ap", err, "bad key")
			}
			r.uesPerAP[categoryRegion{c, region}] = v
		}
	}
	for name, m := range o.BuildingLoss {
		r.buildingLoss[name] = m
	}
	for _, e := range o.Eirp {
		r.eirp[EirpKey{Type: e.Type, Category: e.Category, Region: e.Region, Indoor: e.Indoor}] = e.Mixture
	}
	for _, h := range o.Height {
		r.height[HeightKey{Category: h.Category, Type: h.Type, Indoor: h.Indoor, Region: h.Region}] = h.Mixture
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDPAs builds the DPA registry from the built-in sites and the "dpas"
// list of path, if any.
func LoadDPAs(path string) (*DPARegistry, error) {
	if path == "" {
		return NewDPARegistry()
	}
	settings, err := readSettings(path)
	if err != nil {
		return nil, configErrorf("dpa_file", err, "reading %q", path)
	}
	var file struct {
		DPAs []DPA `mapstructure:"dpas"`
	}
	if err := decode(settings, &file); err != nil {
		return nil, configErrorf("dpa_file", err, "decoding %q", path)
	}
	return NewDPARegistry(file.DPAs...)
}
