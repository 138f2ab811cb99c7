package luci

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gonum/floats"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/rise"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"golang.org/x/sync/errgroup"
)

const (
	// SampleInterval is the cadence of the elevation series.
	SampleInterval = 5 * time.Minute
	// ShadeMargin pads each sunrise and sunset window.
	ShadeMargin = 30 * time.Minute
)

// Elevation is an elevation in degrees, or nothing when below the horizon.
type Elevation struct {
	Degrees float64
	Valid   bool
}

func (e Elevation) String() string {
	if !e.Valid {
		return ""
	}
	return fmt.Sprintf("%.2f", e.Degrees)
}

// Sample is one point of an elevation series.
type Sample struct {
	Time      time.Time
	Elevation Elevation
}

// Series is the elevation of one object over a day.
type Series struct {
	Name    string
	Samples []Sample
}

// VisibleFraction returns the fraction of samples above the horizon.
func (s Series) VisibleFraction() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	visible := 0
	for _, smp := range s.Samples {
		if smp.Elevation.Valid {
			visible++
		}
	}
	return float64(visible) / float64(len(s.Samples))
}

// ShadeWindow is a period around a sunrise or a sunset.
type ShadeWindow struct {
	Start, End time.Time
}

// VisibilityPlot holds the elevation of every target and bright solar system
// body over the observing day.
type VisibilityPlot struct {
	Date    time.Time
	Sites   []Site // sites which must all see a target
	Targets []Series
	Bodies  []Series
	Shading []ShadeWindow
}

// Series returns the series of a target or a body from its name.
func (p *VisibilityPlot) Series(name string) (Series, bool) {
	for _, list := range [][]Series{p.Targets, p.Bodies} {
		for _, s := range list {
			if s.Name == name {
				return s, true
			}
		}
	}
	return Series{}, false
}

// Visible returns the fraction of the day during which the named object is up.
func (p *VisibilityPlot) Visible(name string) float64 {
	s, ok := p.Series(name)
	if !ok {
		return 0
	}
	return s.VisibleFraction()
}

// startOfDay returns 00:00 UTC of the date.
func startOfDay(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleTimes returns the instants from 00:00 UTC of the date up to, but
// excluding, the next midnight.
func SampleTimes(date time.Time, step time.Duration) []time.Time {
	start := startOfDay(date)
	end := start.Add(24 * time.Hour)
	times := make([]time.Time, 0, int(24*time.Hour/step))
	for dt := start; dt.Before(end); dt = dt.Add(step) {
		times = append(times, dt)
	}
	return times
}

// JointElevation returns the lowest elevation of a position over all sites,
// which is only valid if every site has it above the horizon.
func JointElevation(sites []Site, eq Equatorial, dt time.Time) Elevation {
	els := make([]float64, len(sites))
	for i, s := range sites {
		els[i] = s.Elevation(eq, dt)
	}
	lowest := floats.Min(els)
	if lowest < 0 {
		return Elevation{}
	}
	return Elevation{lowest, true}
}

// visibilitySites returns the sites which must all see a target.
func visibilitySites(nInt int) []Site {
	if nInt > 0 {
		return InternationalSites()
	}
	return []Site{CoreSite}
}

func targetSeries(tgt Target, times []time.Time, sites []Site) Series {
	s := Series{Name: tgt.Name, Samples: make([]Sample, len(times))}
	for i, dt := range times {
		s.Samples[i] = Sample{dt, JointElevation(sites, tgt.Coord, dt)}
	}
	return s
}

func bodySeries(b Body, times []time.Time, eph *Ephemeris) (Series, error) {
	s := Series{Name: b.String(), Samples: make([]Sample, len(times))}
	for i, dt := range times {
		eq, err := eph.Position(b, dt)
		if err != nil {
			return Series{}, err
		}
		s.Samples[i] = Sample{dt, JointElevation([]Site{CoreSite}, eq, dt)}
	}
	return s, nil
}

// VisibilitySeries computes the elevation of the targets and of the Sun, Moon
// and Jupiter every five minutes over the day of date. With international
// stations a target is only visible when it is up at every site. The bodies
// are always computed from the core.
func VisibilitySeries(targets []Target, date time.Time, nInt int, eph *Ephemeris) (*VisibilityPlot, error) {
	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	times := SampleTimes(date, SampleInterval)
	plot := &VisibilityPlot{
		Date:    startOfDay(date),
		Sites:   visibilitySites(nInt),
		Targets: make([]Series, len(targets)),
		Bodies:  make([]Series, len(SolarSystemBodies)),
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, tgt := range targets {
		i, tgt := i, tgt
		eg.Go(func() error {
			plot.Targets[i] = targetSeries(tgt, times, plot.Sites)
			return nil
		})
	}
	for i, b := range SolarSystemBodies {
		i, b := i, b
		eg.Go(func() (err error) {
			plot.Bodies[i], err = bodySeries(b, times, eph)
			return
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	plot.Shading = ShadeWindows(date, plot.Sites)
	return plot, nil
}

// SunEvents returns the sunrise and sunset at a site on the day of date. The
// boolean is false if the Sun does not cross the horizon that day.
func SunEvents(site Site, date time.Time) (sunrise, sunset time.Time, ok bool) {
	start := startOfDay(date)
	jd := julian.TimeToJD(start)
	α, δ := solar.ApparentEquatorial(jd)
	tRise, _, tSet, err := rise.ApproxTimes(site.globe(), rise.Stdh0Solar, sidereal.Apparent0UT(jd), α, δ)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	sunrise = start.Add(time.Duration(float64(tRise) * float64(time.Second)))
	sunset = start.Add(time.Duration(float64(tSet) * float64(time.Second)))
	return sunrise, sunset, true
}

// ShadeWindows returns the sunrise and sunset windows over a set of sites:
// from the earliest event minus ShadeMargin to the latest plus ShadeMargin.
// Sites without a sunrise or sunset that day are ignored.
func ShadeWindows(date time.Time, sites []Site) []ShadeWindow {
	var rises, sets *ShadeWindow
	extend := func(w **ShadeWindow, event time.Time) {
		if *w == nil {
			*w = &ShadeWindow{event, event}
			return
		}
		if event.Before((*w).Start) {
			(*w).Start = event
		}
		if event.After((*w).End) {
			(*w).End = event
		}
	}
	for _, s := range sites {
		r, st, ok := SunEvents(s, date)
		if !ok {
			continue
		}
		extend(&rises, r)
		extend(&sets, st)
	}
	if rises == nil {
		return nil
	}
	windows := []ShadeWindow{*rises, *sets}
	for i := range windows {
		windows[i].Start = windows[i].Start.Add(-ShadeMargin)
		windows[i].End = windows[i].End.Add(ShadeMargin)
	}
	return windows
}

// PeakElevation returns the highest elevation of a series. The boolean is
// false if the object never rises.
func (s Series) PeakElevation() (float64, bool) {
	var peak Elevation
	for _, smp := range s.Samples {
		if smp.Elevation.Valid && (!peak.Valid || smp.Elevation.Degrees > peak.Degrees) {
			peak = smp.Elevation
		}
	}
	return peak.Degrees, peak.Valid
}
