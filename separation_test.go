package luci

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSeparationTable(t *testing.T) {
	eph := testEphemeris(t)
	noon, _ := eph.Position(Sun, testDate.Truncate(24*time.Hour).Add(12*time.Hour))
	targets := []Target{ATeam[1], {"NCP", Equatorial{0, 90}}, {"sunny", noon}}
	tab, err := SeparationTable(targets, testDate, eph)
	if err != nil {
		t.Fatal(err)
	}
	if len(tab.Rows) != 3 || !tab.Date.Equal(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected table %+v", tab)
	}

	cyg, ok := tab.Row("CygA")
	if !ok {
		t.Fatal("CygA row missing")
	}
	if len(cyg.ATeam) != len(ATeam) || cyg.ATeam[1] > 1e-9 {
		t.Fatalf("CygA should be at zero distance from itself: %v", cyg.ATeam)
	}
	if !closeTo(cyg.ATeam[0], Separation(ATeam[1].Coord, ATeam[0].Coord), 1e-12) {
		t.Fatal("incorrect CygA-CasA distance")
	}

	// From the pole every distance is the complement of the declination.
	ncp, _ := tab.Row("NCP")
	var sunDec, jupDec float64
	times := SampleTimes(testDate, SeparationInterval)
	for _, dt := range times {
		s, _ := eph.Position(Sun, dt)
		j, _ := eph.Position(Jupiter, dt)
		sunDec += s.Dec / float64(len(times))
		jupDec += j.Dec / float64(len(times))
	}
	if !closeTo(ncp.Sun, 90-sunDec, 1e-6) || !closeTo(ncp.Jupiter, 90-jupDec, 1e-6) {
		t.Fatalf("incorrect pole distances %+v", ncp)
	}
	for i, src := range ATeam {
		if !closeTo(ncp.ATeam[i], 90-src.Coord.Dec, 1e-9) {
			t.Fatalf("incorrect pole distance to %s", src.Name)
		}
	}

	sunny, _ := tab.Row("sunny")
	if sunny.Sun > 1 {
		t.Fatalf("the Sun moves about a degree a day, mean distance is %f", sunny.Sun)
	}
	for i, r := range tab.Rows {
		moon, err := BodySeparations(targets[i].Coord, Moon, times, eph)
		if err != nil {
			t.Fatal(err)
		}
		if m := mean(moon); r.MoonMin > m || m > r.MoonMax || r.MoonMin < 0 || r.MoonMax > 180 {
			t.Fatalf("%s: invalid Moon range %f <= %f <= %f", r.Target, r.MoonMin, m, r.MoonMax)
		}
	}
	if _, ok := tab.Row("nothing"); ok {
		t.Fatal("unknown row found")
	}
}

func TestRowStrings(t *testing.T) {
	r := Row{Target: "x", ATeam: []float64{1, 2.345, 3, 4}, Sun: 90, MoonMin: 10.5, MoonMax: 20.25, Jupiter: 45.678}
	cells := r.Strings()
	if len(cells) != len(SeparationColumns) {
		t.Fatalf("expected %d cells, got %d", len(SeparationColumns), len(cells))
	}
	if exp := "1.00 2.35 3.00 4.00 90.00 10.50,20.25 45.68"; strings.Join(cells, " ") != exp {
		t.Fatalf("expected `%s`, got `%s`", exp, strings.Join(cells, " "))
	}
}

func TestBodySeparations(t *testing.T) {
	eph := testEphemeris(t)
	times := SampleTimes(testDate, 6*time.Hour)
	seps, err := BodySeparations(Equatorial{0, -90}, Moon, times, eph)
	if err != nil {
		t.Fatal(err)
	}
	for i, dt := range times {
		m, _ := eph.Position(Moon, dt)
		if !closeTo(seps[i], 90+m.Dec, 1e-9) {
			t.Fatalf("%s: expected %f, got %f", dt, 90+m.Dec, seps[i])
		}
	}
	if _, err := BodySeparations(Equatorial{}, Body(0), times, eph); err == nil {
		t.Fatal("undefined body accepted")
	}
	if _, err := SeparationTable(nil, testDate, eph); !errors.Is(err, ErrUnresolved) {
		t.Fatal("no target should be unresolved")
	}
}
