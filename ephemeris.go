package luci

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/elliptic"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/planetelements"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// DefaultEphemerisCacheSize is the number of positions kept in memory: enough
// for a full day of five minute samples of every body.
const DefaultEphemerisCacheSize = 1024

// Body is a bright solar system object.
type Body uint8

const (
	// Sun is our closest star.
	Sun Body = iota + 1
	// Moon is bright and fast.
	Moon
	// Jupiter is big, and loud in the decametric band.
	Jupiter
)

// SolarSystemBodies lists the bodies reported next to the targets.
var SolarSystemBodies = []Body{Sun, Moon, Jupiter}

func (b Body) String() string {
	switch b {
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	case Jupiter:
		return "Jupiter"
	default:
		return fmt.Sprintf("Body(%d)", b)
	}
}

// BodyFromString returns the body from its name.
func BodyFromString(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "moon":
		return Moon, nil
	case "jupiter":
		return Jupiter, nil
	default:
		return 0, fmt.Errorf("undefined body '%s'", name)
	}
}

type ephemerisKey struct {
	body Body
	unix int64
}

// Ephemeris computes geocentric apparent positions of the solar system bodies.
// It is safe for concurrent use.
type Ephemeris struct {
	cache     *lru.Cache[ephemerisKey, Equatorial]
	vsop87Dir string
	logger    kitlog.Logger

	loadOnce       sync.Once
	earth, jupiter *pp.V87Planet
}

// NewEphemeris returns an ephemeris memoising up to cacheSize positions.
// If vsop87Dir is not empty, Jupiter is computed from the VSOP87 files in
// that directory, otherwise from its mean orbital elements.
func NewEphemeris(cacheSize int, vsop87Dir string, logger kitlog.Logger) (*Ephemeris, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultEphemerisCacheSize
	}
	cache, err := lru.New[ephemerisKey, Equatorial](cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Ephemeris{cache: cache, vsop87Dir: vsop87Dir, logger: kitlog.With(logger, "component", "ephemeris")}, nil
}

// Position returns the apparent equatorial position of a body at the given instant.
func (e *Ephemeris) Position(b Body, dt time.Time) (Equatorial, error) {
	key := ephemerisKey{b, dt.Unix()}
	if eq, ok := e.cache.Get(key); ok {
		return eq, nil
	}
	// The ΔT correction (about a minute) is below the precision we need.
	jde := julian.TimeToJD(dt)
	var eq Equatorial
	switch b {
	case Sun:
		eq = NewEquatorial(solar.ApparentEquatorial(jde))
	case Moon:
		eq = moonApparent(jde)
	case Jupiter:
		if e.loadVSOP87() {
			eq = NewEquatorial(elliptic.Position(e.jupiter, e.earth, jde))
		} else {
			eq = jupiterFromElements(jde)
		}
	default:
		return Equatorial{}, fmt.Errorf("undefined body %d", b)
	}
	e.cache.Add(key, eq)
	return eq, nil
}

// loadVSOP87 loads the planetary theories on first use and returns whether
// they are available.
func (e *Ephemeris) loadVSOP87() bool {
	if e.vsop87Dir == "" {
		return false
	}
	e.loadOnce.Do(func() {
		earth, err := pp.LoadPlanetPath(pp.Earth, e.vsop87Dir)
		if err != nil {
			level.Warn(e.logger).Log("msg", "VSOP87 unavailable, using mean elements", "dir", e.vsop87Dir, "err", err)
			return
		}
		jupiter, err := pp.LoadPlanetPath(pp.Jupiter, e.vsop87Dir)
		if err != nil {
			level.Warn(e.logger).Log("msg", "VSOP87 unavailable, using mean elements", "dir", e.vsop87Dir, "err", err)
			return
		}
		e.earth, e.jupiter = earth, jupiter
		level.Debug(e.logger).Log("msg", "VSOP87 loaded", "dir", e.vsop87Dir)
	})
	return e.jupiter != nil
}

// trueObliquity returns the sine and cosine of the obliquity of the ecliptic
// and the nutation in longitude.
func trueObliquity(jde float64) (sε, cε float64, Δψ unit.Angle) {
	Δψ, Δε := nutation.Nutation(jde)
	sε, cε = math.Sincos((nutation.MeanObliquity(jde) + Δε).Rad())
	return
}

func moonApparent(jde float64) Equatorial {
	λ, β, _ := moonposition.Position(jde)
	sε, cε, Δψ := trueObliquity(jde)
	return NewEquatorial(coord.EclToEq(λ+Δψ, β, sε, cε))
}

// jupiterFromElements returns the geometric position of Jupiter from the
// mean orbital elements of Jupiter and the Earth. Accurate to a fraction of
// a degree, which is plenty for a separation table.
func jupiterFromElements(jde float64) Equatorial {
	var jup, earth planetelements.Elements
	planetelements.Mean(planetelements.Jupiter, jde, &jup)
	planetelements.Mean(planetelements.Earth, jde, &earth)
	rJ, rE := heliocentric(&jup), heliocentric(&earth)
	geo := []float64{rJ[0] - rE[0], rJ[1] - rE[1], rJ[2] - rE[2]}
	λ, β := Cartesian2Spherical(geo)
	sε, cε, _ := trueObliquity(jde)
	return NewEquatorial(coord.EclToEq(unit.Angle(λ), unit.Angle(β), sε, cε))
}

// heliocentric returns the ecliptic position vector (AU) described by the elements.
func heliocentric(el *planetelements.Elements) []float64 {
	ϖ, Ω := el.Peri.Rad(), el.Node.Rad()
	E := eccentricAnomaly(el.Lon.Rad()-ϖ, el.Ecc)
	ν := 2 * math.Atan2(math.Sqrt(1+el.Ecc)*math.Sin(E/2), math.Sqrt(1-el.Ecc)*math.Cos(E/2))
	r := el.Axis * (1 - el.Ecc*math.Cos(E))
	// Argument of latitude
	u := ν + ϖ - Ω
	return Rot313Vec(-u, -el.Inc.Rad(), -Ω, []float64{r, 0, 0})
}

// eccentricAnomaly solves Kepler's equation with Newton iterations.
func eccentricAnomaly(M, e float64) float64 {
	M = math.Mod(M, 2*math.Pi)
	E := M
	for i := 0; i < 50; i++ {
		δ := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= δ
		if math.Abs(δ) < 1e-12 {
			break
		}
	}
	return E
}
