package luci

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

var (
	// CoreSite is the centre of the Dutch array.
	CoreSite = NewSite("NL", 52.915129, 6.869882, 15)
	// LatviaSite is the easternmost international station.
	LatviaSite = NewSite("LV", 57.553493, 21.854916, 0)
	// IrelandSite is the westernmost international station.
	IrelandSite = NewSite("IE", 53.094967, -7.921790, 0)
)

// Site defines an observing location.
type Site struct {
	Name     string
	LatΦ     float64 // stored in radians!
	Longθ    float64 // stored in radians, east positive
	Altitude float64 // meters
}

// NewSite returns a new site. Angles in degrees, east longitudes positive.
func NewSite(name string, latΦ, longθ, altitude float64) Site {
	return Site{name, latΦ * d2r, longθ * d2r, altitude}
}

// Lat returns the latitude in degrees.
func (s Site) Lat() float64 { return s.LatΦ * r2d }

// Lon returns the east longitude in degrees.
func (s Site) Lon() float64 { return s.Longθ * r2d }

// globe returns the meeus coordinates of this site, where longitudes are
// measured positively westward.
func (s Site) globe() globe.Coord {
	return globe.Coord{Lat: unit.Angle(s.LatΦ), Lon: unit.Angle(-s.Longθ)}
}

// localSiderealTime returns the local apparent sidereal time in radians.
func (s Site) localSiderealTime(dt time.Time) float64 {
	return sidereal.Apparent(julian.TimeToJD(dt)).Rad() + s.Longθ
}

// ElAz returns the geometric elevation and azimuth (in degrees) of a celestial
// position at the given instant.
func (s Site) ElAz(eq Equatorial, dt time.Time) (el, az float64) {
	rSEZ := Equatorial2SEZ(eq.direction(), s.LatΦ, s.localSiderealTime(dt))
	el = math.Asin(math.Max(-1, math.Min(1, rSEZ[2]))) * r2d
	az = Wrap360(math.Atan2(rSEZ[1], -rSEZ[0]) * r2d)
	return
}

// Elevation returns the geometric elevation in degrees of a celestial position
// at the given instant. Atmospheric refraction is ignored.
func (s Site) Elevation(eq Equatorial, dt time.Time) float64 {
	el, _ := s.ElAz(eq, dt)
	return el
}

func (s Site) String() string {
	return fmt.Sprintf("%s (%f,%f); alt = %.0f m", s.Name, s.Lat(), s.Lon(), s.Altitude)
}

// InternationalSites returns the sites at the extremes of the international array.
func InternationalSites() []Site {
	return []Site{CoreSite, LatviaSite, IrelandSite}
}

// BuiltinSiteFromName returns the site from its name.
func BuiltinSiteFromName(name string) (Site, error) {
	switch strings.ToLower(name) {
	case "nl", "core":
		return CoreSite, nil
	case "lv", "latvia":
		return LatviaSite, nil
	case "ie", "ireland":
		return IrelandSite, nil
	default:
		return Site{}, fmt.Errorf("unknown site `%s`", name)
	}
}
