package luci

import (
	"context"
	"fmt"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxDemixSources is the number of A-team sources a pipeline can remove.
	MaxDemixSources = 2
	// MaxHBASpread is the largest distance in degrees between the first
	// target and any other in the high band, so they share a tile beam.
	MaxHBASpread = 10.
)

// Observation is everything needed to plan an observation.
type Observation struct {
	Name        string
	Array       ArrayConfiguration
	Correlator  CorrelatorConfiguration
	Targets     []Target
	Calibrators []Target
	// Demix lists the A-team sources removed by the pipeline.
	Demix []string
	Date  time.Time
	// CalibratorScans of CalibratorTime each are recorded besides the targets.
	CalibratorScans int
	CalibratorTime  time.Duration
}

// Validate checks the whole setup, reporting every problem found.
func (o Observation) Validate() error {
	cerr := &ConfigError{}
	o.Array.validate(cerr)
	o.Correlator.validate(cerr)
	if o.CalibratorScans < 0 {
		cerr.add("number of calibrator scans cannot be negative")
	}
	if o.CalibratorScans > 0 && o.CalibratorTime <= 0 {
		cerr.add("calibrator scan time cannot be zero or negative")
	}
	if o.Correlator.Pipeline != PipelineNone && len(o.Demix) > MaxDemixSources {
		cerr.add("cannot demix more than %d A-team sources", MaxDemixSources)
	}
	for _, name := range o.Demix {
		if !isATeam(name) {
			cerr.add("`%s` is not an A-team source", name)
		}
	}
	if o.Array.AntennaSet.Band() == HighBand {
		checkTargetSpread(o.Targets, cerr)
	}
	return cerr.orNil()
}

func isATeam(name string) bool {
	for _, src := range ATeam {
		if strings.EqualFold(src.Name, name) {
			return true
		}
	}
	return false
}

// CheckTargetSpread returns a *ConfigError if any target lies further than
// MaxHBASpread from the first one.
func CheckTargetSpread(targets []Target) error {
	cerr := &ConfigError{}
	checkTargetSpread(targets, cerr)
	return cerr.orNil()
}

func checkTargetSpread(targets []Target, cerr *ConfigError) {
	for i := 1; i < len(targets); i++ {
		if d := Separation(targets[0].Coord, targets[i].Coord); d > MaxHBASpread {
			cerr.add("in HBA, targets must lie within %.0f degrees of the first one (%s is %.2f degrees away)", MaxHBASpread, targets[i].Name, d)
		}
	}
}

// Pointings returns the number of simultaneous beams (at least one).
func (o Observation) Pointings() int {
	if len(o.Targets) == 0 {
		return 1
	}
	return len(o.Targets)
}

// Result holds every figure computed for an observation.
type Result struct {
	Baselines   int
	Sensitivity MicroJansky
	RawVolume   Gigabytes

	// ProcessedVolume is only meaningful if HasProcessed.
	ProcessedVolume Gigabytes
	HasProcessed    bool
	PipelineHours   float64

	// Only set when targets are provided.
	Visibility  *VisibilityPlot
	Beams       *Layout
	Separations *Table
}

// Plan computes the feasibility figures of an observation.
type Plan struct {
	obs    Observation
	eph    *Ephemeris
	logger kitlog.Logger
}

// NewPlan returns a new plan. The observation is expected to be valid.
func NewPlan(obs Observation, eph *Ephemeris, logger kitlog.Logger) *Plan {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	name := obs.Name
	if name == "" {
		name = "observation"
	}
	return &Plan{obs, eph, kitlog.With(logger, "plan", name)}
}

// volumes returns the raw and processed volumes of all pointings and
// calibrator scans.
func (p *Plan) volumes(baselines int) (raw, proc Gigabytes, hasProc bool) {
	c := p.obs.Correlator
	scan := func(obsTime time.Duration, scans int) {
		raw += RawVolume(obsTime, c.IntTime, baselines, c.ChannelsPerSubband, c.Subbands) * Gigabytes(scans)
		pv, ok := ProcessedVolume(obsTime, c.IntTime, baselines, c.ChannelsPerSubband, c.Subbands, c.Pipeline, c.TimeAvg, c.FreqAvg, c.Compress)
		proc += pv * Gigabytes(scans)
		hasProc = ok
	}
	scan(c.ObsTime, p.obs.Pointings())
	if p.obs.CalibratorScans > 0 {
		scan(p.obs.CalibratorTime, p.obs.CalibratorScans)
	}
	return
}

func (p *Plan) pipelineHours() float64 {
	c := p.obs.Correlator
	set := p.obs.Array.AntennaSet
	hours := PipelineHours(c.ObsTime, c.Subbands, set, p.obs.Demix, c.Pipeline) * float64(p.obs.Pointings())
	if p.obs.CalibratorScans > 0 {
		hours += PipelineHours(p.obs.CalibratorTime, c.Subbands, set, p.obs.Demix, c.Pipeline) * float64(p.obs.CalibratorScans)
	}
	return hours
}

// Compute returns the figures of the observation. The target dependent
// products are computed concurrently once the beamlet capacity is checked.
func (p *Plan) Compute(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	arr, c := p.obs.Array, p.obs.Correlator
	res := &Result{
		Baselines:   arr.Baselines(),
		Sensitivity: Sensitivity(arr, c.ObsTime, c.Subbands),
	}
	res.RawVolume, res.ProcessedVolume, res.HasProcessed = p.volumes(res.Baselines)
	res.PipelineHours = p.pipelineHours()
	level.Info(p.logger).Log("subsys", "array", "stations", arr, "baselines", res.Baselines, "sensitivity(µJy)", res.Sensitivity)
	level.Info(p.logger).Log("subsys", "volume", "raw(GB)", res.RawVolume, "processed(GB)", res.ProcessedVolume, "pipeline(h)", fmt.Sprintf("%.4f", res.PipelineHours))

	if len(p.obs.Targets) == 0 {
		return res, nil
	}
	if err := CheckBeamlets(len(p.obs.Targets), c.Subbands); err != nil {
		return nil, err
	}
	if p.eph == nil {
		return nil, fmt.Errorf("an ephemeris is required to plan targets")
	}
	demix, err := CatalogueSources(p.obs.Demix)
	if err != nil {
		return nil, err
	}
	// Calibrators and demixed sources are plotted with the targets.
	plotted := append(append(append([]Target{}, p.obs.Targets...), p.obs.Calibrators...), demix...)

	eg, gctx := errgroup.WithContext(ctx)
	run := func(f func() error) {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return f()
		})
	}
	run(func() (err error) {
		res.Visibility, err = VisibilitySeries(plotted, p.obs.Date, arr.NInt, p.eph)
		return
	})
	run(func() (err error) {
		res.Beams, err = BeamLayout(p.obs.Targets, arr)
		return
	})
	run(func() (err error) {
		res.Separations, err = SeparationTable(p.obs.Targets, p.obs.Date, p.eph)
		return
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logTargets(res)
	return res, nil
}

func (p *Plan) logTargets(res *Result) {
	for _, s := range res.Visibility.Targets {
		peak, up := s.PeakElevation()
		if !up {
			level.Warn(p.logger).Log("subsys", "visibility", "target", s.Name, "msg", "never above the horizon")
			continue
		}
		level.Debug(p.logger).Log("subsys", "visibility", "target", s.Name, "peak(deg)", fmt.Sprintf("%.2f", peak), "up", fmt.Sprintf("%.0f%%", 100*s.VisibleFraction()))
	}
	if res.Beams.Wrapped {
		level.Debug(p.logger).Log("subsys", "beam", "msg", "field straddles RA=0, circles mirrored")
	}
}
