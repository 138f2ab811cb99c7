package luci

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gonum/floats"
	"golang.org/x/sync/errgroup"
)

// SeparationInterval is the sampling of the solar system bodies over the day.
const SeparationInterval = time.Hour

// SeparationColumns are the headers of the separation table, after the target name.
var SeparationColumns = []string{"CasA", "CygA", "TauA", "VirA", "Sun", "Moon(min,max)", "Jupiter"}

// Row holds the distances in degrees between a target and the bright sources.
type Row struct {
	Target           string
	ATeam            []float64 // in the order of ATeam
	Sun              float64   // daily mean
	MoonMin, MoonMax float64
	Jupiter          float64 // daily mean
}

// Strings renders the row cells with two decimals, the Moon as `min,max`.
func (r Row) Strings() []string {
	cells := make([]string, 0, len(SeparationColumns))
	for _, d := range r.ATeam {
		cells = append(cells, fmt.Sprintf("%0.2f", d))
	}
	return append(cells,
		fmt.Sprintf("%0.2f", r.Sun),
		fmt.Sprintf("%0.2f,%0.2f", r.MoonMin, r.MoonMax),
		fmt.Sprintf("%0.2f", r.Jupiter))
}

// Table is the separation of every target from the bright sources.
type Table struct {
	Date time.Time
	Rows []Row
}

// Row returns the row of a target from its name.
func (t *Table) Row(name string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Target == name {
			return r, true
		}
	}
	return Row{}, false
}

// BodySeparations returns the distance between a position and a body at each instant.
func BodySeparations(eq Equatorial, b Body, times []time.Time, eph *Ephemeris) ([]float64, error) {
	seps := make([]float64, len(times))
	for i, dt := range times {
		pos, err := eph.Position(b, dt)
		if err != nil {
			return nil, err
		}
		seps[i] = Separation(eq, pos)
	}
	return seps, nil
}

func separationRow(tgt Target, times []time.Time, eph *Ephemeris) (Row, error) {
	row := Row{Target: tgt.Name, ATeam: make([]float64, len(ATeam))}
	for i, src := range ATeam {
		row.ATeam[i] = Separation(tgt.Coord, src.Coord)
	}
	sun, err := BodySeparations(tgt.Coord, Sun, times, eph)
	if err != nil {
		return Row{}, err
	}
	moon, err := BodySeparations(tgt.Coord, Moon, times, eph)
	if err != nil {
		return Row{}, err
	}
	jupiter, err := BodySeparations(tgt.Coord, Jupiter, times, eph)
	if err != nil {
		return Row{}, err
	}
	row.Sun = mean(sun)
	row.MoonMin, row.MoonMax = floats.Min(moon), floats.Max(moon)
	row.Jupiter = mean(jupiter)
	return row, nil
}

// SeparationTable computes, for each target, the distance to the A-team
// sources and the daily mean distance to the Sun and Jupiter and the range of
// distances to the Moon, sampled hourly from 00:00 UTC of date.
func SeparationTable(targets []Target, date time.Time, eph *Ephemeris) (*Table, error) {
	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	times := SampleTimes(date, SeparationInterval)
	tab := &Table{Date: startOfDay(date), Rows: make([]Row, len(targets))}
	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, tgt := range targets {
		i, tgt := i, tgt
		eg.Go(func() (err error) {
			tab.Rows[i], err = separationRow(tgt, times, eph)
			return
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tab, nil
}
