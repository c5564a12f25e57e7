// Command neighborhood computes the neighborhood distance of a DPA and
// prints the result record as JSON.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wiless/neighborhood"
	"github.com/wiless/neighborhood/config"
	"github.com/wiless/neighborhood/montecarlo"
)

type output struct {
	DPA       string  `json:"dpa"`
	Seed      uint64  `json:"seed"`
	Threshold float64 `json:"threshold_dbm"`
	*neighborhood.Record
	Results []neighborhood.NeighborhoodResult `json:"results"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// flagKeys maps flags to RunConfig keys. Flags without a default are set
// only when given, see optionalFlags.
var flagKeys = map[string]string{
	"dpa":             "dpa_name",
	"iterations":      "iterations",
	"cat-a-radius":    "category_a_radius_km",
	"cat-b-radius":    "category_b_radius_km",
	"ue":              "include_ue_runs",
	"category":        "neighborhood_category",
	"percentile":      "percentile",
	"workers":         "workers",
	"step":            "search_step_km",
	"building-loss":   "building_loss_model",
	"loss-scope":      "building_loss_scope",
	"population-mode": "population_mode",
	"population":      "population_override",
	"redeploy":        "redeploy_per_distance",
	"rx-gain-mode":    "rx_gain_mode",
	"region":          "region_type",
	"dpa-file":        "dpa_file",
	"registry-file":   "registry_file",
	"log-level":       "log_level",
	"log-format":      "log_format",
}

var optionalFlags = map[string]string{
	"threshold": "interference_threshold",
	"beamwidth": "beamwidth",
	"seed":      "seed",
}

func rootCmd() *cobra.Command {
	var (
		configFile  string
		outputFile  string
		metricsAddr string
	)
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "neighborhood",
		Short:         "Monte-Carlo neighborhood distance of a DPA",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for flag, key := range optionalFlags {
				if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
					v.Set(key, f.Value.String())
				}
			}
			rc, err := config.LoadRunConfig(v, configFile)
			if err != nil {
				log.WithError(err).Error("invalid configuration")
				return err
			}
			setupLogging(rc)
			return run(cmd.Context(), rc, outputFile, metricsAddr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "config file (default ./neighborhood.{yaml,json,toml} if present)")
	f.StringVarP(&outputFile, "output", "o", "", "output file for the result record (default: stdout)")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	f.String("dpa", "HatCreek", "DPA name")
	f.Int("iterations", 2000, "Monte-Carlo trials per probed distance")
	f.Int("cat-a-radius", 150, "Category A deployment radius in km")
	f.Int("cat-b-radius", 200, "Category B deployment radius in km")
	f.Bool("ue", false, "also compute UE neighborhoods")
	f.String("category", "", "A, B or empty for both")
	f.Float64("percentile", 95, "percentile of the aggregate interference")
	f.Int("workers", 0, "parallel trials, 0 for one per CPU")
	f.Int("step", 1, "search step in km")
	f.String("building-loss", config.BuildingLossPoint, "building loss model: point or mixture")
	f.String("loss-scope", config.BuildingLossAll, "CBSDs given building loss: all or indoor")
	f.String("population-mode", config.PopulationRegion, "population source: region or override")
	f.Int("population", 0, "population when population-mode is override")
	f.Bool("redeploy", false, "redeploy CBSDs for every probed distance")
	f.String("rx-gain-mode", "auto", "DPA receive gain: auto, pattern or cosine")
	f.String("region", "RURAL", "region type of the DPA site")
	f.String("dpa-file", "", "extra DPA definitions")
	f.String("registry-file", "", "registry table overrides")
	f.String("log-level", "info", "log level")
	f.String("log-format", "text", "log format: text or json")

	f.Float64("threshold", 0, "interference threshold in dBm/10MHz (default: the DPA's)")
	f.Float64("beamwidth", 0, "DPA beamwidth override in degrees")
	f.Uint64("seed", 0, "run seed (default: time based)")

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
	return cmd
}

func setupLogging(rc *config.RunConfig) {
	level, _ := log.ParseLevel(rc.LogLevel)
	log.SetLevel(level)
	if rc.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func run(ctx context.Context, rc *config.RunConfig, outputFile, metricsAddr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	registry, err := config.LoadRegistry(rc.RegistryFile)
	if err != nil {
		log.WithError(err).Error("invalid registry")
		return err
	}
	dpas, err := config.LoadDPAs(rc.DPAFile)
	if err != nil {
		log.WithError(err).Error("invalid DPA definitions")
		return err
	}

	var seed uint64
	if rc.Seed != nil {
		seed = *rc.Seed
	} else {
		seed = uint64(time.Now().UnixNano())
		log.WithField("seed", seed).Info("no seed given, using a time based one")
	}

	sim, err := neighborhood.NewSimulator(rc, registry, dpas, seed)
	if err != nil {
		log.WithError(err).Error("cannot set up the simulation")
		return err
	}

	promRegistry := prometheus.NewRegistry()
	sim.Metrics, err = montecarlo.NewMetrics(promRegistry)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, promRegistry)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	start := time.Now()
	record, results, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(start).String()).Info("neighborhood run complete")

	var w io.Writer = os.Stdout
	if outputFile != "" {
		fid, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer fid.Close()
		w = fid
	}
	data, err := json.MarshalIndent(output{
		DPA:       sim.DPA.Name,
		Seed:      seed,
		Threshold: sim.Threshold(),
		Record:    record,
		Results:   results,
	}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func serveMetrics(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics server exited")
		}
	}()
	log.WithField("addr", addr).Info("serving Prometheus metrics")
	return srv
}
