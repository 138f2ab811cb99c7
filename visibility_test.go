package luci

import (
	"errors"
	"testing"
	"time"
)

var testDate = time.Date(2024, 3, 21, 15, 42, 0, 0, time.UTC)

func TestSampleTimes(t *testing.T) {
	times := SampleTimes(testDate, SampleInterval)
	if len(times) != 288 {
		t.Fatalf("expected 288 samples, got %d", len(times))
	}
	if !times[0].Equal(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first sample should be at midnight, got %s", times[0])
	}
	if last := times[len(times)-1]; !last.Equal(time.Date(2024, 3, 21, 23, 55, 0, 0, time.UTC)) {
		t.Fatalf("last sample should be at 23:55, got %s", last)
	}
	if n := len(SampleTimes(testDate, SeparationInterval)); n != 24 {
		t.Fatalf("expected 24 hourly samples, got %d", n)
	}
	// Dates in another zone are taken on their UTC day.
	cet := time.FixedZone("CET", 3600)
	if st := SampleTimes(time.Date(2024, 3, 22, 0, 30, 0, 0, cet), time.Hour); !st[0].Equal(times[0]) {
		t.Fatalf("expected the 21st, got %s", st[0])
	}
}

func TestJointElevation(t *testing.T) {
	sites := InternationalSites()
	eq := Equatorial{120, 20}
	for _, dt := range SampleTimes(testDate, time.Hour) {
		joint := JointElevation(sites, eq, dt)
		lowest := 90.
		for _, s := range sites {
			if el := s.Elevation(eq, dt); el < lowest {
				lowest = el
			}
		}
		if lowest < 0 {
			if joint.Valid {
				t.Fatalf("%s: below the horizon at one site but valid", dt)
			}
			continue
		}
		if !joint.Valid || !closeTo(joint.Degrees, lowest, 1e-12) {
			t.Fatalf("%s: expected %f, got %+v", dt, lowest, joint)
		}
	}
}

func TestVisibilitySeries(t *testing.T) {
	targets := []Target{
		{"south", Equatorial{100, -60}},
		{"polar", Equatorial{30, 80}},
		{"equator", Equatorial{200, 0}},
	}
	plot, err := VisibilitySeries(targets, testDate, 0, testEphemeris(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(plot.Sites) != 1 || plot.Sites[0] != CoreSite {
		t.Fatal("without international stations only the core counts")
	}
	if len(plot.Targets) != 3 || len(plot.Bodies) != 3 {
		t.Fatalf("expected 3 targets and 3 bodies, got %d and %d", len(plot.Targets), len(plot.Bodies))
	}
	for i, s := range append(plot.Targets, plot.Bodies...) {
		if len(s.Samples) != 288 {
			t.Fatalf("series %d (%s) has %d samples", i, s.Name, len(s.Samples))
		}
	}
	if plot.Targets[0].Name != "south" || plot.Bodies[0].Name != "Sun" || plot.Bodies[2].Name != "Jupiter" {
		t.Fatal("series out of order")
	}

	south, _ := plot.Series("south")
	if south.VisibleFraction() != 0 {
		t.Fatal("a source at -60 never rises in the Netherlands")
	}
	if _, up := south.PeakElevation(); up {
		t.Fatal("south should have no peak")
	}
	if s := south.Samples[0].Elevation.String(); s != "" {
		t.Fatalf("an invisible elevation should render empty, got `%s`", s)
	}
	if f := plot.Visible("polar"); f != 1 {
		t.Fatalf("a source at +80 is circumpolar, visible %f", f)
	}
	if f := plot.Visible("equator"); !closeTo(f, 0.5, 0.02) {
		t.Fatalf("an equatorial source is up half of the time, got %f", f)
	}
	peak, _ := plot.Targets[1].PeakElevation()
	if !closeTo(peak, 90-(80-CoreSite.Lat()), 0.2) {
		t.Fatalf("incorrect polar peak %f", peak)
	}
	if plot.Visible("nothing") != 0 {
		t.Fatal("unknown series should not be visible")
	}
	if len(plot.Shading) != 2 {
		t.Fatalf("expected sunrise and sunset windows, got %d", len(plot.Shading))
	}
}

func TestVisibilityInternational(t *testing.T) {
	targets := []Target{{"t", Equatorial{60, 30}}}
	local, err := VisibilitySeries(targets, testDate, 0, testEphemeris(t))
	if err != nil {
		t.Fatal(err)
	}
	intl, err := VisibilitySeries(targets, testDate, 3, testEphemeris(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(intl.Sites) != 3 {
		t.Fatal("all international extremes must see the target")
	}
	if intl.Visible("t") >= local.Visible("t") {
		t.Fatalf("the joint visibility (%f) should be shorter than the core one (%f)", intl.Visible("t"), local.Visible("t"))
	}
	// The bodies are always seen from the core.
	for i := range local.Bodies {
		for j, smp := range local.Bodies[i].Samples {
			if smp.Elevation != intl.Bodies[i].Samples[j].Elevation {
				t.Fatalf("%s differs at %s", local.Bodies[i].Name, smp.Time)
			}
		}
	}
}

func TestSunElevation(t *testing.T) {
	plot, err := VisibilitySeries([]Target{{"x", Equatorial{0, 0}}}, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 0, testEphemeris(t))
	if err != nil {
		t.Fatal(err)
	}
	sun, _ := plot.Series("Sun")
	noon := sun.Samples[11*12+30/5] // 11:30 UTC
	if !noon.Elevation.Valid || !closeTo(noon.Elevation.Degrees, 90-CoreSite.Lat()+23.44, 1) {
		t.Fatalf("incorrect noon Sun: %+v", noon)
	}
	if midnight := sun.Samples[23*12+30/5]; midnight.Elevation.Valid {
		t.Fatalf("the Sun is up at midnight: %+v", midnight)
	}
}

func TestVisibilitySeriesErrors(t *testing.T) {
	if _, err := VisibilitySeries(nil, testDate, 0, testEphemeris(t)); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestSunEvents(t *testing.T) {
	rise, set, ok := SunEvents(CoreSite, testDate)
	if !ok {
		t.Fatal("the Sun rises at the equinox")
	}
	day := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)
	if rise.Before(day.Add(5*time.Hour)) || rise.After(day.Add(6*time.Hour)) {
		t.Fatalf("incorrect sunrise %s", rise)
	}
	if set.Before(day.Add(17*time.Hour)) || set.After(day.Add(18*time.Hour)) {
		t.Fatalf("incorrect sunset %s", set)
	}
	// Close to twelve hours of day.
	if d := set.Sub(rise); d < 11*time.Hour+50*time.Minute || d > 12*time.Hour+30*time.Minute {
		t.Fatalf("day length %s", d)
	}
	svalbard := NewSite("Svalbard", 78.2, 15.6, 0)
	if _, _, ok := SunEvents(svalbard, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatal("midnight Sun has no sunset")
	}
}

func TestShadeWindows(t *testing.T) {
	single := ShadeWindows(testDate, []Site{CoreSite})
	if len(single) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(single))
	}
	rise, set, _ := SunEvents(CoreSite, testDate)
	if !single[0].Start.Equal(rise.Add(-ShadeMargin)) || !single[0].End.Equal(rise.Add(ShadeMargin)) {
		t.Fatalf("incorrect sunrise window %+v", single[0])
	}
	if !single[1].Start.Equal(set.Add(-ShadeMargin)) || !single[1].End.Equal(set.Add(ShadeMargin)) {
		t.Fatalf("incorrect sunset window %+v", single[1])
	}

	multi := ShadeWindows(testDate, InternationalSites())
	lvRise, _, _ := SunEvents(LatviaSite, testDate)
	_, ieSet, _ := SunEvents(IrelandSite, testDate)
	if !multi[0].Start.Equal(lvRise.Add(-ShadeMargin)) {
		t.Fatalf("the sunrise window should open with Latvia: %+v", multi[0])
	}
	if !multi[1].End.Equal(ieSet.Add(ShadeMargin)) {
		t.Fatalf("the sunset window should close with Ireland: %+v", multi[1])
	}
	for i := range multi {
		if multi[i].End.Sub(multi[i].Start) <= single[i].End.Sub(single[i].Start) {
			t.Fatal("international windows should be wider")
		}
	}

	svalbard := NewSite("Svalbard", 78.2, 15.6, 0)
	june := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	if w := ShadeWindows(june, []Site{svalbard}); w != nil {
		t.Fatalf("no window expected during the midnight Sun, got %+v", w)
	}
	mixed := ShadeWindows(june, []Site{svalbard, CoreSite})
	core := ShadeWindows(june, []Site{CoreSite})
	if len(mixed) != 2 || mixed[0] != core[0] || mixed[1] != core[1] {
		t.Fatal("sites without events should be ignored")
	}
}
