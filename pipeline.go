package luci

import (
	"fmt"
	"time"
)

// maxDemixTable is the largest demix count with its own processing rate.
const maxDemixTable = 2

// processingRates are empirical pipeline costs in seconds per subband per
// observed hour, keyed by the number of sources to demix.
var processingRates = map[Band]map[int]float64{
	HighBand: {0: 0.002, 1: 0.0025, 2: 0.005},
	LowBand:  {0: 0.004, 1: 0.004, 2: 0.014},
}

// ProcessingRate returns the processing rate for a band and number of demixed
// sources. Two or more sources share the same rate.
func ProcessingRate(band Band, nDemix int) float64 {
	if nDemix > maxDemixTable {
		nDemix = maxDemixTable
	}
	if nDemix < 0 {
		nDemix = 0
	}
	rates, ok := processingRates[band]
	if !ok {
		panic(fmt.Errorf("no processing rate for band %d", band))
	}
	return rates[nDemix]
}

// PipelineHours returns the expected pipeline processing time in hours.
func PipelineHours(obsTime time.Duration, subbands int, set AntennaSet, demix []string, pipeline PipelineType) float64 {
	if pipeline != Preprocessing {
		return 0
	}
	rate := ProcessingRate(set.Band(), len(demix))
	return rate * float64(subbands) * obsTime.Hours() / 3600.
}
