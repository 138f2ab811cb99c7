package luci

import (
	"math"

	"github.com/gonum/floats"
)

const (
	r2d = 180 / math.Pi
	d2r = 1 / r2d
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// fmod is the floored modulo: the result has the sign of y.
func fmod(x, y float64) float64 {
	m := math.Mod(x, y)
	if m != 0 && (m < 0) != (y < 0) {
		m += y
	}
	if m == y {
		// Rounding of a tiny negative x.
		return 0
	}
	return m
}

// Wrap360 returns the angle in degrees within [0, 360).
func Wrap360(a float64) float64 {
	return fmod(a, 360)
}

// Wrap180 returns the angle in degrees within [-180, 180).
func Wrap180(a float64) float64 {
	return fmod(a+180, 360) - 180
}

// Spherical2Cartesian returns the unit vector pointing at the provided
// longitude and latitude (radians).
func Spherical2Cartesian(lon, lat float64) []float64 {
	sLon, cLon := math.Sincos(lon)
	sLat, cLat := math.Sincos(lat)
	return []float64{cLat * cLon, cLat * sLon, sLat}
}

// Cartesian2Spherical returns the longitude in [0, 2π) and latitude (radians)
// of a vector.
func Cartesian2Spherical(a []float64) (lon, lat float64) {
	if norm(a) == 0 {
		return 0, 0
	}
	lon = math.Atan2(a[1], a[0])
	if lon < 0 {
		lon += 2 * math.Pi
	}
	lat = math.Atan2(a[2], math.Hypot(a[0], a[1]))
	return
}

// mean returns the arithmetic mean of the values.
func mean(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return floats.Sum(x) / float64(len(x))
}

// maxAbsDiff returns the largest absolute difference between consecutive values.
func maxAbsDiff(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	diffs := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		diffs[i-1] = math.Abs(x[i] - x[i-1])
	}
	return floats.Max(diffs)
}
