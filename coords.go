package luci

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/soniakeys/meeus/v3/angle"
	"github.com/soniakeys/unit"
)

// Equatorial is a J2000 celestial position in degrees.
type Equatorial struct {
	RA, Dec float64
}

// NewEquatorial returns the position from meeus angles.
func NewEquatorial(α unit.RA, δ unit.Angle) Equatorial {
	return Equatorial{Wrap360(unit.Angle(α).Deg()), δ.Deg()}
}

func (e Equatorial) ra() unit.Angle  { return unit.AngleFromDeg(e.RA) }
func (e Equatorial) dec() unit.Angle { return unit.AngleFromDeg(e.Dec) }

// direction returns the unit vector of this position.
func (e Equatorial) direction() []float64 {
	return Spherical2Cartesian(e.RA*d2r, e.Dec*d2r)
}

func (e Equatorial) String() string {
	return fmt.Sprintf("%.6f %+.6f", e.RA, e.Dec)
}

// Separation returns the great-circle distance between two positions in degrees.
func Separation(a, b Equatorial) float64 {
	return angle.Sep(a.ra(), a.dec(), b.ra(), b.dec()).Deg()
}

var (
	hmsRe = regexp.MustCompile(`^(\d{1,2})h(\d{1,2})m(\d+(?:\.\d*)?)s?$`)
	dmsRe = regexp.MustCompile(`^([+-]?)(\d{1,2})d(\d{1,2})m(\d+(?:\.\d*)?)s?$`)
	colRe = regexp.MustCompile(`^([+-]?)(\d{1,3}):(\d{1,2}):(\d+(?:\.\d*)?)$`)
)

// ParseEquatorial reads a position written as `01h37m41.2994s +33d09m35.134s`,
// `01:37:41.3 +33:09:35.1` or decimal degrees `24.42 33.16`.
func ParseEquatorial(s string) (Equatorial, error) {
	fields := strings.Fields(strings.Replace(s, ",", " ", -1))
	if len(fields) != 2 {
		return Equatorial{}, fmt.Errorf("%w: `%s` must have a right ascension and a declination", ErrUnresolved, s)
	}
	ra, err := parseRA(fields[0])
	if err != nil {
		return Equatorial{}, fmt.Errorf("%w: `%s`: %s", ErrUnresolved, s, err)
	}
	dec, err := parseDec(fields[1])
	if err != nil {
		return Equatorial{}, fmt.Errorf("%w: `%s`: %s", ErrUnresolved, s, err)
	}
	if dec.Deg() < -90 || dec.Deg() > 90 {
		return Equatorial{}, fmt.Errorf("%w: `%s`: declination out of range", ErrUnresolved, s)
	}
	return NewEquatorial(ra, dec), nil
}

// MustParseEquatorial is like ParseEquatorial but panics on failure.
// Only used for built-in catalogue entries.
func MustParseEquatorial(s string) Equatorial {
	eq, err := ParseEquatorial(s)
	if err != nil {
		panic(err)
	}
	return eq
}

func parseRA(s string) (unit.RA, error) {
	if m := hmsRe.FindStringSubmatch(s); m != nil {
		h, mi, sec := atoi(m[1]), atoi(m[2]), atof(m[3])
		if h > 23 || mi > 59 || sec >= 60 {
			return 0, fmt.Errorf("invalid right ascension `%s`", s)
		}
		return unit.NewRA(h, mi, sec), nil
	}
	if m := colRe.FindStringSubmatch(s); m != nil && m[1] == "" {
		h, mi, sec := atoi(m[2]), atoi(m[3]), atof(m[4])
		if h > 23 || mi > 59 || sec >= 60 {
			return 0, fmt.Errorf("invalid right ascension `%s`", s)
		}
		return unit.NewRA(h, mi, sec), nil
	}
	deg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid right ascension `%s`", s)
	}
	if deg < 0 || deg >= 360 {
		return 0, fmt.Errorf("right ascension `%s` out of [0, 360)", s)
	}
	return unit.RA(unit.AngleFromDeg(deg)), nil
}

func parseDec(s string) (unit.Angle, error) {
	m := dmsRe.FindStringSubmatch(s)
	if m == nil {
		m = colRe.FindStringSubmatch(s)
	}
	if m != nil {
		d, mi, sec := atoi(m[2]), atoi(m[3]), atof(m[4])
		if mi > 59 || sec >= 60 {
			return 0, fmt.Errorf("invalid declination `%s`", s)
		}
		neg := byte('+')
		if m[1] == "-" {
			neg = '-'
		}
		return unit.NewAngle(neg, d, mi, sec), nil
	}
	deg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid declination `%s`", s)
	}
	return unit.AngleFromDeg(deg), nil
}

// atoi and atof are only called on regexp-validated digits.
func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// Target is a named sky position.
type Target struct {
	Name  string
	Coord Equatorial
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Coord)
}

// ParseTargets pairs names with coordinates. An empty coordinate is looked up
// in the built-in catalogue. Any failure aborts the whole batch.
func ParseTargets(names, coords []string) ([]Target, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no target provided", ErrUnresolved)
	}
	if len(names) != len(coords) {
		return nil, fmt.Errorf("%w: %d names for %d coordinates", ErrUnresolved, len(names), len(coords))
	}
	targets := make([]Target, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if strings.TrimSpace(coords[i]) == "" {
			src, err := CatalogueSource(name)
			if err != nil {
				return nil, err
			}
			targets[i] = src
			continue
		}
		eq, err := ParseEquatorial(coords[i])
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", name, err)
		}
		targets[i] = Target{name, eq}
	}
	return targets, nil
}

// validateTargets checks a batch before any computation starts.
func validateTargets(targets []Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: no target provided", ErrUnresolved)
	}
	for _, tgt := range targets {
		// Written so that NaN coordinates are rejected too.
		if !(tgt.Coord.Dec >= -90 && tgt.Coord.Dec <= 90 && tgt.Coord.RA >= 0 && tgt.Coord.RA < 360) {
			return fmt.Errorf("%w: target %s has invalid coordinates %s", ErrUnresolved, tgt.Name, tgt.Coord)
		}
	}
	return nil
}
