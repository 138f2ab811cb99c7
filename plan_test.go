package luci

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gonum/floats"
)

func lotssObservation() Observation {
	return Observation{
		Name:  "lotss",
		Array: ArrayConfiguration{24, 14, 14, HBADual},
		Correlator: CorrelatorConfiguration{
			ObsTime:            8 * time.Hour,
			IntTime:            time.Second,
			ChannelsPerSubband: 64,
			Subbands:           488,
			Pipeline:           Preprocessing,
			TimeAvg:            4,
			FreqAvg:            4,
		},
		Targets: []Target{{"P164+55", MustParseEquatorial("10h58m04.7s +55d06m15s")}},
		Demix:   []string{"CasA", "CygA"},
		Date:    testDate,
	}
}

func TestPlanCompute(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(&buf, "debug")
	obs := lotssObservation()
	if err := obs.Validate(); err != nil {
		t.Fatal(err)
	}
	res, err := NewPlan(obs, testEphemeris(t), logger).Compute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Baselines != 2926 {
		t.Fatalf("expected 2926 baselines, got %d", res.Baselines)
	}
	if !floats.EqualWithinRel(float64(res.Sensitivity), 553.9253195860794, 1e-12) {
		t.Fatalf("incorrect sensitivity %f", res.Sensitivity)
	}
	if !floats.EqualWithinRel(float64(res.RawVolume), 83488.79161864519, 1e-12) {
		t.Fatalf("incorrect raw volume %f", res.RawVolume)
	}
	if !res.HasProcessed || !floats.EqualWithinRel(float64(res.ProcessedVolume), 9381.937233507633, 1e-12) {
		t.Fatalf("incorrect processed volume %f", res.ProcessedVolume)
	}
	if !floats.EqualWithinRel(res.PipelineHours, 0.005422222222222222, 1e-12) {
		t.Fatalf("incorrect pipeline time %g", res.PipelineHours)
	}

	// Demixed sources are plotted next to the target.
	if len(res.Visibility.Targets) != 3 || res.Visibility.Targets[1].Name != "CasA" {
		t.Fatalf("unexpected visibility series %d", len(res.Visibility.Targets))
	}
	if len(res.Visibility.Sites) != 3 {
		t.Fatal("international stations require all sites")
	}
	if len(res.Beams.StationBeams()) != 1 {
		t.Fatal("only targets get a station beam")
	}
	if _, ok := res.Beams.TileBeam(); !ok {
		t.Fatal("HBA needs a tile beam")
	}
	if len(res.Separations.Rows) != 1 || res.Separations.Rows[0].Target != "P164+55" {
		t.Fatalf("unexpected separation rows %+v", res.Separations.Rows)
	}

	out := buf.String()
	for _, exp := range []string{"plan=lotss", "subsys=array", "baselines=2926", "subsys=volume", "subsys=visibility", "level=debug"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("`%s` not logged:\n%s", exp, out)
		}
	}
}

func TestPlanPointingsAndCalibrators(t *testing.T) {
	obs := lotssObservation()
	obs.Correlator.Subbands = 244
	obs.Targets = append(obs.Targets, Target{"P169+55", MustParseEquatorial("11h16m44.2s +55d06m15s")})
	obs.Demix = nil
	res, err := NewPlan(obs, testEphemeris(t), nil).Compute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	c := obs.Correlator
	one := RawVolume(c.ObsTime, c.IntTime, 2926, c.ChannelsPerSubband, c.Subbands)
	if !floats.EqualWithinRel(float64(res.RawVolume), 2*float64(one), 1e-12) {
		t.Fatalf("each pointing records its own data: %f vs %f", res.RawVolume, one)
	}

	obs.CalibratorScans = 2
	obs.CalibratorTime = 10 * time.Minute
	obs.Calibrators = []Target{Calibrators[1]}
	withCal, err := NewPlan(obs, testEphemeris(t), nil).Compute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	cal := RawVolume(obs.CalibratorTime, c.IntTime, 2926, c.ChannelsPerSubband, c.Subbands)
	if !floats.EqualWithinRel(float64(withCal.RawVolume), float64(res.RawVolume)+2*float64(cal), 1e-12) {
		t.Fatalf("calibrator scans not accounted for: %f", withCal.RawVolume)
	}
	expHours := PipelineHours(c.ObsTime, c.Subbands, HBADual, nil, Preprocessing)*2 +
		PipelineHours(obs.CalibratorTime, c.Subbands, HBADual, nil, Preprocessing)*2
	if !floats.EqualWithinRel(withCal.PipelineHours, expHours, 1e-12) {
		t.Fatalf("incorrect pipeline time %g vs %g", withCal.PipelineHours, expHours)
	}
	// Calibrators are plotted but get no beam.
	if len(withCal.Visibility.Targets) != 3 || len(withCal.Beams.StationBeams()) != 2 {
		t.Fatal("calibrators mishandled")
	}
}

func TestPlanErrors(t *testing.T) {
	obs := lotssObservation()
	obs.Targets = append(obs.Targets, obs.Targets[0])
	_, err := NewPlan(obs, testEphemeris(t), nil).Compute(context.Background())
	var capErr *CapacityError
	if !errors.As(err, &capErr) || capErr.Targets != 2 || capErr.Subbands != 488 {
		t.Fatalf("expected a capacity error, got %v", err)
	}

	obs = lotssObservation()
	if _, err := NewPlan(obs, nil, nil).Compute(context.Background()); err == nil {
		t.Fatal("targets cannot be planned without an ephemeris")
	}

	obs.Demix = []string{"Vela"}
	if _, err := NewPlan(obs, testEphemeris(t), nil).Compute(context.Background()); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPlan(lotssObservation(), testEphemeris(t), nil).Compute(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected a cancellation, got %v", err)
	}
}

func TestPlanWithoutTargets(t *testing.T) {
	obs := lotssObservation()
	obs.Targets = nil
	res, err := NewPlan(obs, nil, nil).Compute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Visibility != nil || res.Beams != nil || res.Separations != nil {
		t.Fatal("no target should produce no target products")
	}
	if res.Baselines != 2926 || res.RawVolume == 0 {
		t.Fatal("array figures missing")
	}
}

func TestObservationValidate(t *testing.T) {
	if err := lotssObservation().Validate(); err != nil {
		t.Fatal(err)
	}
	obs := lotssObservation()
	obs.Array.NCore = 30
	obs.Correlator.Subbands = 0
	obs.Demix = []string{"CasA", "CygA", "Vela"}
	obs.CalibratorScans = -1
	obs.Targets = append(obs.Targets, Target{"far", Equatorial{200, 55}})
	err := obs.Validate()
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a *ConfigError, got %v", err)
	}
	// Core, subbands, calibrator scans, demix count, Vela and spread.
	if len(cerr.Problems) != 6 {
		t.Fatalf("expected 6 problems, got %d: %s", len(cerr.Problems), cerr)
	}

	// The spread only matters in the high band.
	obs = lotssObservation()
	obs.Array.AntennaSet = LBA
	obs.Targets = append(obs.Targets, Target{"far", Equatorial{200, 55}})
	if err := obs.Validate(); err != nil {
		t.Fatalf("wide LBA fields are allowed: %s", err)
	}
	if err := CheckTargetSpread(obs.Targets); err == nil {
		t.Fatal("targets are more than 10 degrees apart")
	}

	obs = lotssObservation()
	obs.CalibratorScans = 1
	if err := obs.Validate(); err == nil {
		t.Fatal("calibrator scans need a duration")
	}
}

func TestPointings(t *testing.T) {
	obs := lotssObservation()
	if obs.Pointings() != 1 {
		t.Fatal("expected one pointing")
	}
	obs.Targets = nil
	if obs.Pointings() != 1 {
		t.Fatal("at least one pointing is always recorded")
	}
}
