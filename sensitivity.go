package luci

import (
	"fmt"
	"math"
	"time"

	"github.com/gonum/matrix/mat64"
)

// SubbandWidth is the width of one subband in kHz.
const SubbandWidth = 195.3125

// StationClass is a geographically distinct group of stations.
type StationClass uint8

const (
	// Core stations are co-located in the array centre.
	Core StationClass = iota
	// Remote stations are spread regionally.
	Remote
	// International stations span the continent.
	International
)

var stationClasses = [...]StationClass{Core, Remote, International}

func (c StationClass) String() string {
	switch c {
	case Core:
		return "core"
	case Remote:
		return "remote"
	case International:
		return "international"
	default:
		return fmt.Sprintf("StationClass(%d)", c)
	}
}

// sefdTable holds the System Equivalent Flux Density of a station in Jy.
var sefdTable = map[Band]map[StationClass]float64{
	LowBand:  {Core: 38160, Remote: 38160, International: 18840},
	HighBand: {Core: 2820, Remote: 1410, International: 710},
}

// SEFD returns the System Equivalent Flux Density (Jy) of a station class in a given band.
func SEFD(band Band, class StationClass) float64 {
	byClass, ok := sefdTable[band]
	if !ok {
		panic(fmt.Errorf("no SEFD defined for band %d", band))
	}
	return byClass[class]
}

// stationSEFD returns the SEFD of a station class for an antenna set.
// Tapered remote stations have the core station footprint.
func stationSEFD(set AntennaSet, class StationClass) float64 {
	if class == Remote && set.Tapered() {
		class = Core
	}
	return SEFD(set.Band(), class)
}

// MicroJansky is an image noise level in µJy.
type MicroJansky float64

func (m MicroJansky) String() string {
	return fmt.Sprintf("%0.2f", float64(m))
}

// BaselineCount returns the number of baselines, autocorrelations included,
// formed by the provided stations.
func BaselineCount(nCore, nRemote, nInt int, set AntennaSet) int {
	n := ArrayConfiguration{nCore, nRemote, nInt, set}.EffectiveStations()
	return n * (n + 1) / 2
}

// classCounts returns the number of correlated elements per station class.
func classCounts(arr ArrayConfiguration) []float64 {
	return []float64{
		float64(arr.AntennaSet.coreMultiplier() * arr.NCore),
		float64(arr.NRemote),
		float64(arr.NInt),
	}
}

// PairBaselines returns the number of cross-correlation baselines between each
// pair of station classes, indexed by StationClass.
func PairBaselines(arr ArrayConfiguration) *mat64.SymDense {
	n := classCounts(arr)
	pairs := mat64.NewSymDense(len(stationClasses), nil)
	for i := range stationClasses {
		pairs.SetSym(i, i, n[i]*(n[i]-1)/2)
		for j := i + 1; j < len(stationClasses); j++ {
			pairs.SetSym(i, j, n[i]*n[j])
		}
	}
	return pairs
}

// Sensitivity returns the theoretical image noise of an observation using the
// radiometer equation for an array of heterogeneous stations.
func Sensitivity(arr ArrayConfiguration, obsTime time.Duration, subbands int) MicroJansky {
	n := classCounts(arr)
	// Inverse SEFD products per pair of classes.
	weights := mat64.NewSymDense(len(stationClasses), nil)
	for i, ci := range stationClasses {
		for j := i; j < len(stationClasses); j++ {
			cj := stationClasses[j]
			weights.SetSym(i, j, 1/(stationSEFD(arr.AntennaSet, ci)*stationSEFD(arr.AntennaSet, cj)))
		}
	}
	// Σ_{i<j} n_i n_j w_ij + Σ_i n_i (n_i-1)/2 w_ii
	nVec := mat64.NewVector(len(n), n)
	sum := mat64.Inner(nVec, weights, nVec)
	for i := range n {
		sum -= n[i] * weights.At(i, i)
	}
	sum /= 2

	bandwidth := float64(subbands) * SubbandWidth * 1e3 / 1e6 // MHz
	denom := 4 * bandwidth * obsTime.Hours() * 1e6 * sum
	return MicroJansky(1e6 / math.Sqrt(denom))
}
