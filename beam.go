package luci

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
)

const (
	// TileBeamWidth is the FWHM of the HBA tile beam in degrees.
	TileBeamWidth = 20.
	// WrapThreshold is the right ascension jump between consecutive targets
	// beyond which the field is taken to straddle RA = 0.
	WrapThreshold = 50.
	// AxisMargin pads the plotted area in degrees.
	AxisMargin = 2.
	// labelOffset places labels above their circle.
	labelOffset = 0.5
	// TileBeamLabel names the tile beam circle.
	TileBeamLabel = "Tile beam"
)

// stationBeamWidths holds the station beam FWHM in degrees.
var stationBeamWidths = map[Band]map[StationClass]float64{
	LowBand:  {Core: 5.16, Remote: 5.16, International: 6.46},
	HighBand: {Core: 3.80, Remote: 2.85, International: 2.07},
}

// StationBeamWidth returns the FWHM in degrees of the station beam, which is
// set by the largest stations in the array. In the low band every station
// has the core beam.
func StationBeamWidth(arr ArrayConfiguration) float64 {
	band := arr.AntennaSet.Band()
	class := Core
	if band == HighBand {
		switch {
		case arr.NInt > 0:
			class = International
		case arr.NRemote > 0 && !arr.AntennaSet.Tapered():
			class = Remote
		}
	}
	return stationBeamWidths[band][class]
}

// Circle is a beam on the sky, in degrees.
type Circle struct {
	Label    string
	RA, Dec  float64
	Radius   float64
	Tile     bool
	Mirrored bool
}

// Bounds returns the bounding box of the circle.
func (c Circle) Bounds() (x0, x1, y0, y1 float64) {
	return c.RA - c.Radius, c.RA + c.Radius, c.Dec - c.Radius, c.Dec + c.Radius
}

// mirror returns the copy of the circle on the other side of the RA = 0 seam.
func (c Circle) mirror() Circle {
	m := c
	m.Mirrored = true
	if c.RA > 180 {
		m.RA -= 360
	} else {
		m.RA += 360
	}
	return m
}

// label returns the text annotation of the circle.
func (c Circle) label() Label {
	return Label{c.Label, c.RA, c.Dec + c.Radius + labelOffset}
}

func (c Circle) String() string {
	return fmt.Sprintf("%s: (%.2f, %+.2f) r=%.2f", c.Label, c.RA, c.Dec, c.Radius)
}

// Label is a text annotation placed on the sky plane.
type Label struct {
	Text    string
	RA, Dec float64
}

// Layout is the sky-plane geometry of the beams of an observation.
type Layout struct {
	Circles []Circle
	Labels  []Label
	// RARange is inverted so that right ascension increases to the left.
	RARange  [2]float64
	DecRange [2]float64
	Wrapped  bool
}

// TileBeamCentre returns the mean position of the pointings. Right ascensions
// are averaged as offsets from the first one so that a field across RA = 0 is
// not pulled to the opposite side of the sky. Widely separated pointings make
// this midpoint ill-defined, which is accepted.
func TileBeamCentre(coords []Equatorial) Equatorial {
	if len(coords) == 0 {
		return Equatorial{}
	}
	ref := coords[0].RA
	offsets := make([]float64, len(coords))
	decs := make([]float64, len(coords))
	for i, c := range coords {
		offsets[i] = Wrap180(c.RA - ref)
		decs[i] = c.Dec
	}
	return Equatorial{Wrap360(ref + mean(offsets)), mean(decs)}
}

// BeamLayout returns one station beam circle per target and, in the high
// band, the tile beam circle. When the targets straddle RA = 0 every circle is
// duplicated on the other side of the seam.
func BeamLayout(targets []Target, arr ArrayConfiguration) (*Layout, error) {
	if err := validateTargets(targets); err != nil {
		return nil, err
	}
	radius := StationBeamWidth(arr) / 2
	coords := make([]Equatorial, len(targets))
	ras := make([]float64, len(targets))
	for i, tgt := range targets {
		coords[i] = tgt.Coord
		ras[i] = tgt.Coord.RA
	}

	layout := &Layout{Wrapped: maxAbsDiff(ras) > WrapThreshold}
	add := func(c Circle) {
		layout.Circles = append(layout.Circles, c)
		layout.Labels = append(layout.Labels, c.label())
		if layout.Wrapped {
			m := c.mirror()
			layout.Circles = append(layout.Circles, m)
			if !c.Tile {
				layout.Labels = append(layout.Labels, m.label())
			}
		}
	}
	for _, tgt := range targets {
		add(Circle{Label: tgt.Name, RA: tgt.Coord.RA, Dec: tgt.Coord.Dec, Radius: radius})
	}
	if arr.AntennaSet.Band() == HighBand {
		centre := TileBeamCentre(coords)
		add(Circle{Label: TileBeamLabel, RA: centre.RA, Dec: centre.Dec, Radius: TileBeamWidth / 2, Tile: true})
	}

	x0s := make([]float64, len(layout.Circles))
	x1s := make([]float64, len(layout.Circles))
	y0s := make([]float64, len(layout.Circles))
	y1s := make([]float64, len(layout.Circles))
	for i, c := range layout.Circles {
		x0s[i], x1s[i], y0s[i], y1s[i] = c.Bounds()
	}
	xmin, xmax := math.Trunc(floats.Min(x0s)), math.Trunc(floats.Max(x1s))
	ymin, ymax := math.Trunc(floats.Min(y0s)), math.Trunc(floats.Max(y1s))
	layout.RARange = [2]float64{xmax + AxisMargin, xmin - AxisMargin}
	layout.DecRange = [2]float64{ymin - AxisMargin, ymax + AxisMargin}
	return layout, nil
}

// StationBeams returns the non-mirrored station beam circles.
func (l *Layout) StationBeams() []Circle {
	var beams []Circle
	for _, c := range l.Circles {
		if !c.Tile && !c.Mirrored {
			beams = append(beams, c)
		}
	}
	return beams
}

// TileBeam returns the non-mirrored tile beam circle, if any.
func (l *Layout) TileBeam() (Circle, bool) {
	for _, c := range l.Circles {
		if c.Tile && !c.Mirrored {
			return c, true
		}
	}
	return Circle{}, false
}
