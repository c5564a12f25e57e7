package config

import (
	"errors"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/wiless/neighborhood/antenna"
	"github.com/wiless/neighborhood/cbsd"
	"github.com/wiless/neighborhood/landcover"
)

// EnvPrefix is prepended to every key when read from the environment, e.g.
// NEIGHBORHOOD_ITERATIONS.
const EnvPrefix = "NEIGHBORHOOD"

const (
	PopulationRegion   = "region"
	PopulationOverride = "override"
)

// Building loss scopes. Empty means all.
const (
	BuildingLossAll    = "all"
	BuildingLossIndoor = "indoor"
)

// RunConfig is what a single neighborhood run needs besides the registries.
type RunConfig struct {
	DPAName              string `mapstructure:"dpa_name"`
	Iterations           int    `mapstructure:"iterations"`
	CategoryARadiusKm    int    `mapstructure:"category_a_radius_km"`
	CategoryBRadiusKm    int    `mapstructure:"category_b_radius_km"`
	IncludeUERuns        bool   `mapstructure:"include_ue_runs"`
	NeighborhoodCategory string `mapstructure:"neighborhood_category"`

	// Optional; nil falls back to the DPA entry or a time based seed.
	InterferenceThreshold *float64 `mapstructure:"interference_threshold"`
	Beamwidth             *float64 `mapstructure:"beamwidth"`
	Seed                  *uint64  `mapstructure:"seed"`

	Percentile          float64 `mapstructure:"percentile"`
	Workers             int     `mapstructure:"workers"`
	SearchStepKm        int     `mapstructure:"search_step_km"`
	BuildingLossModel   string  `mapstructure:"building_loss_model"`
	BuildingLossScope   string  `mapstructure:"building_loss_scope"`
	PopulationMode      string  `mapstructure:"population_mode"`
	PopulationOverride  int     `mapstructure:"population_override"`
	RedeployPerDistance bool    `mapstructure:"redeploy_per_distance"`
	RxGainMode          string  `mapstructure:"rx_gain_mode"`
	RegionType          string  `mapstructure:"region_type"`

	DPAFile      string `mapstructure:"dpa_file"`
	RegistryFile string `mapstructure:"registry_file"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
}

// keys lists every RunConfig key so that environment variables are seen by
// Unmarshal even without a config file.
var keys = []string{
	"dpa_name", "iterations", "category_a_radius_km", "category_b_radius_km",
	"include_ue_runs", "neighborhood_category", "interference_threshold",
	"beamwidth", "seed", "percentile", "workers", "search_step_km",
	"building_loss_model", "building_loss_scope", "population_mode", "population_override",
	"redeploy_per_distance", "rx_gain_mode", "region_type", "dpa_file", "registry_file", "log_level", "log_format",
}

// SetDefaults installs the default of every key that has one. Optional keys
// (threshold, beamwidth, seed) have none.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dpa_name", "HatCreek")
	v.SetDefault("iterations", 2000)
	v.SetDefault("category_a_radius_km", 150)
	v.SetDefault("category_b_radius_km", 200)
	v.SetDefault("include_ue_runs", false)
	v.SetDefault("neighborhood_category", "")
	v.SetDefault("percentile", 95)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("search_step_km", 1)
	v.SetDefault("building_loss_model", BuildingLossPoint)
	v.SetDefault("building_loss_scope", BuildingLossAll)
	v.SetDefault("population_mode", PopulationRegion)
	v.SetDefault("population_override", 0)
	v.SetDefault("redeploy_per_distance", false)
	v.SetDefault("rx_gain_mode", antenna.Auto.String())
	v.SetDefault("region_type", landcover.Rural.String())
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// LoadRunConfig reads defaults, the optional config file and the environment
// into a RunConfig. A missing config file is not an error.
func LoadRunConfig(v *viper.Viper, configFile string) (*RunConfig, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("neighborhood")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, configErrorf("config", err, "reading %q", configFile)
		}
		log.WithField("error", err).Debug("no config file, using defaults")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, configErrorf(k, err, "binding environment")
		}
	}

	var rc RunConfig
	if err := v.Unmarshal(&rc); err != nil {
		return nil, configErrorf("config", err, "decoding run configuration")
	}
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (rc *RunConfig) Validate() error {
	if rc.Iterations < 1 {
		return configErrorf("iterations", nil, "%d, want >= 1", rc.Iterations)
	}
	if rc.CategoryARadiusKm < 0 {
		return configErrorf("category_a_radius_km", nil, "%d, want >= 0", rc.CategoryARadiusKm)
	}
	if rc.CategoryBRadiusKm < 0 {
		return configErrorf("category_b_radius_km", nil, "%d, want >= 0", rc.CategoryBRadiusKm)
	}
	if rc.NeighborhoodCategory != "" {
		if _, err := cbsd.ParseCategory(rc.NeighborhoodCategory); err != nil {
			return configErrorf("neighborhood_category", err, "want A, B or empty")
		}
	}
	if rc.Beamwidth != nil && *rc.Beamwidth <= 0 {
		return configErrorf("beamwidth", nil, "%v, want > 0", *rc.Beamwidth)
	}
	if rc.Percentile < 0 || rc.Percentile > 100 {
		return configErrorf("percentile", nil, "%v, want [0,100]", rc.Percentile)
	}
	if rc.Workers < 0 {
		return configErrorf("workers", nil, "%d, want >= 0", rc.Workers)
	}
	if rc.SearchStepKm < 1 {
		return configErrorf("search_step_km", nil, "%d, want >= 1", rc.SearchStepKm)
	}
	switch rc.BuildingLossModel {
	case BuildingLossPoint, BuildingLossMixture:
	default:
		return configErrorf("building_loss_model", nil, "%q, want %q or %q", rc.BuildingLossModel, BuildingLossPoint, BuildingLossMixture)
	}
	switch rc.BuildingLossScope {
	case "", BuildingLossAll, BuildingLossIndoor:
	default:
		return configErrorf("building_loss_scope", nil, "%q, want %q or %q", rc.BuildingLossScope, BuildingLossAll, BuildingLossIndoor)
	}
	switch rc.PopulationMode {
	case PopulationRegion:
	case PopulationOverride:
		if rc.PopulationOverride < 0 {
			return configErrorf("population_override", nil, "%d, want >= 0", rc.PopulationOverride)
		}
	default:
		return configErrorf("population_mode", nil, "%q, want %q or %q", rc.PopulationMode, PopulationRegion, PopulationOverride)
	}
	if _, err := antenna.ParseGainMode(rc.RxGainMode); err != nil {
		return configErrorf("rx_gain_mode", err, "want auto, pattern or cosine")
	}
	if _, err := landcover.ParseRegionType(rc.RegionType); err != nil {
		return configErrorf("region_type", err, "want RURAL, SUBURBAN, URBAN or DENSE_URBAN")
	}
	if _, err := log.ParseLevel(rc.LogLevel); err != nil {
		return configErrorf("log_level", err, "want one of panic, fatal, error, warn, info, debug, trace")
	}
	switch rc.LogFormat {
	case "text", "json":
	default:
		return configErrorf("log_format", nil, "%q, want text or json", rc.LogFormat)
	}
	return nil
}

// Categories returns the categories to compute neighborhoods for.
func (rc *RunConfig) Categories() []cbsd.Category {
	if rc.NeighborhoodCategory == "" {
		return cbsd.AllCategories
	}
	c, _ := cbsd.ParseCategory(rc.NeighborhoodCategory)
	return []cbsd.Category{c}
}

// Types returns AP, plus UE when UE runs are included.
func (rc *RunConfig) Types() []cbsd.Type {
	if rc.IncludeUERuns {
		return []cbsd.Type{cbsd.AP, cbsd.UE}
	}
	return []cbsd.Type{cbsd.AP}
}

func (rc *RunConfig) RadiusKm(c cbsd.Category) int {
	if c == cbsd.CategoryB {
		return rc.CategoryBRadiusKm
	}
	return rc.CategoryARadiusKm
}

// Region returns the region type of the DPA site.
func (rc *RunConfig) Region() landcover.RegionType {
	r, _ := landcover.ParseRegionType(rc.RegionType)
	return r
}
