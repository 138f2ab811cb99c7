package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	luci "github.com/lofar-astron/LOFAR-calculator"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// This code reads an observation scenario, computes its plan and prints it.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02"
)

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "observation scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "log every target at debug level")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	conf := luci.GlobalConfig()
	if verbose {
		conf.LogLevel = "debug"
	}
	logger, closer, err := luci.NewLoggerFromConfig(conf)
	if err != nil {
		log.Fatalf("logger: %s", err)
	}
	defer closer.Close()

	obs, err := readObservation()
	if err != nil {
		log.Fatalf("./%s.toml: %s", scenario, err)
	}
	if err := obs.Validate(); err != nil {
		log.Fatal(err)
	}
	eph, err := conf.NewEphemeris(logger)
	if err != nil {
		log.Fatalf("ephemeris: %s", err)
	}

	res, err := luci.NewPlan(obs, eph, logger).Compute(context.Background())
	var capErr *luci.CapacityError
	switch {
	case errors.As(err, &capErr):
		log.Fatalf("too many beamlets: %s", capErr)
	case errors.Is(err, luci.ErrUnresolved):
		log.Fatalf("target setup: %s", err)
	case err != nil:
		log.Fatal(err)
	}
	printResult(obs, res)

	export := luci.ExportConfig{
		Filename:  viper.GetString("export.filename"),
		OutputDir: viper.GetString("export.directory"),
		Timestamp: viper.GetBool("export.timestamp"),
	}
	files, err := export.Export(res)
	if err != nil {
		log.Fatalf("export: %s", err)
	}
	for _, f := range files {
		fmt.Printf("Saved %s\n", f)
	}
}

func readObservation() (obs luci.Observation, err error) {
	obs.Name = viper.GetString("observation.name")
	if viper.IsSet("observation.date") {
		obs.Date = confReadJDEorTime("observation.date")
	} else {
		obs.Date = time.Now().UTC()
	}

	set, err := luci.AntennaSetFromString(viper.GetString("array.antennaSet"))
	if err != nil {
		return obs, err
	}
	obs.Array = luci.ArrayConfiguration{
		NCore:      viper.GetInt("array.core"),
		NRemote:    viper.GetInt("array.remote"),
		NInt:       viper.GetInt("array.international"),
		AntennaSet: set,
	}

	pipeline, err := luci.PipelineTypeFromString(viper.GetString("pipeline.type"))
	if err != nil {
		return obs, err
	}
	viper.SetDefault("correlator.channels", 64)
	viper.SetDefault("pipeline.timeAvg", 1)
	viper.SetDefault("pipeline.freqAvg", 1)
	obs.Correlator = luci.CorrelatorConfiguration{
		ObsTime:            viper.GetDuration("correlator.obsTime"),
		IntTime:            viper.GetDuration("correlator.intTime"),
		ChannelsPerSubband: viper.GetInt("correlator.channels"),
		Subbands:           viper.GetInt("correlator.subbands"),
		Pipeline:           pipeline,
		TimeAvg:            viper.GetInt("pipeline.timeAvg"),
		FreqAvg:            viper.GetInt("pipeline.freqAvg"),
		Compress:           viper.GetBool("pipeline.compress"),
	}
	obs.Demix = viper.GetStringSlice("pipeline.demix")

	if obs.Calibrators, err = luci.CatalogueSources(viper.GetStringSlice("calibrators.names")); err != nil {
		return obs, err
	}
	obs.CalibratorScans = viper.GetInt("calibrators.scans")
	obs.CalibratorTime = viper.GetDuration("calibrators.time")

	names := viper.GetStringSlice("targets.names")
	if len(names) > 0 {
		coords := viper.GetStringSlice("targets.coords")
		if len(coords) == 0 {
			// Catalogue sources only.
			coords = make([]string, len(names))
		}
		if obs.Targets, err = luci.ParseTargets(names, coords); err != nil {
			return obs, err
		}
	}
	return obs, nil
}

func printResult(obs luci.Observation, res *luci.Result) {
	fmt.Printf("== %s (%s) ==\n", obs.Name, obs.Date.Format(dateFormat))
	fmt.Printf("Array:              %s\n", obs.Array)
	fmt.Printf("Baselines:          %d\n", res.Baselines)
	fmt.Printf("Sensitivity:        %s µJy/beam\n", res.Sensitivity)
	fmt.Printf("Raw data volume:    %s GB\n", res.RawVolume)
	if res.HasProcessed {
		fmt.Printf("Processed volume:   %s GB\n", res.ProcessedVolume)
		fmt.Printf("Pipeline time:      %.2f h\n", res.PipelineHours)
	}
	if res.Visibility == nil {
		return
	}
	fmt.Println("\nVisibility (fraction of the day above the horizon):")
	for _, s := range res.Visibility.Targets {
		fmt.Printf("  %-12s %5.1f%%\n", s.Name, 100*s.VisibleFraction())
	}
	for _, sw := range res.Visibility.Shading {
		fmt.Printf("  Sun shading %s -> %s UTC\n", sw.Start.Format("15:04"), sw.End.Format("15:04"))
	}
	fmt.Println("\nBeams:")
	for _, c := range res.Beams.Circles {
		fmt.Printf("  %s\n", c)
	}
	fmt.Println("\nDistances (deg):")
	fmt.Printf("  %-12s %s\n", "Sources", strings.Join(luci.SeparationColumns, "\t"))
	for _, r := range res.Separations.Rows {
		fmt.Printf("  %-12s %s\n", r.Target, strings.Join(r.Strings(), "\t"))
	}
}

func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		dt = viper.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
