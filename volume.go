package luci

import (
	"fmt"
	"strings"
	"time"
)

// compressionFactor is the empirical size reduction of lossy visibility compression.
const compressionFactor = 3.

const bytesPerGB = 1024 * 1024 * 1024

// PipelineType is the post-processing applied to the correlated data.
type PipelineType uint8

const (
	// PipelineNone keeps the raw correlator output.
	PipelineNone PipelineType = iota
	// Preprocessing flags, averages and optionally compresses the data.
	Preprocessing
)

func (p PipelineType) String() string {
	switch p {
	case PipelineNone:
		return "none"
	case Preprocessing:
		return "preprocessing"
	default:
		return fmt.Sprintf("PipelineType(%d)", p)
	}
}

// PipelineTypeFromString returns the pipeline from its name.
func PipelineTypeFromString(name string) (PipelineType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return PipelineNone, nil
	case "preprocessing":
		return Preprocessing, nil
	default:
		return PipelineNone, fmt.Errorf("undefined pipeline '%s'", name)
	}
}

// Gigabytes is a data volume in GB (1024³ bytes).
type Gigabytes float64

func (g Gigabytes) String() string {
	return fmt.Sprintf("%0.2f", float64(g))
}

// rows returns the number of correlator output rows; the first integration
// of every baseline does not produce a row.
func rows(obsTime, intTime time.Duration, baselines int) float64 {
	perBaseline := obsTime.Seconds() / intTime.Seconds()
	return float64(int(float64(baselines)*perBaseline) - baselines)
}

// rawRowBytes is the footprint of one raw row: a 32 bit sequence number,
// 16 bit weight/sigma samples per channel, and 2 polarizations x 2 correlations
// of complex float data per channel.
func rawRowBytes(nChan int) float64 {
	return float64(4 + 2*nChan + 4*nChan*2*4)
}

// averagedRowBytes is the footprint of one row of an averaged measurement set.
func averagedRowBytes(nChan int) float64 {
	return float64(7*8 + // time, interval, exposure, time centroid, uvw
		(4 + 4*nChan) + // flag row and flags
		4*11 + // antenna, feed, field, array, observation, processor, scan and state ids
		8*1 + // sigma
		4 + // data description id
		4*(8+8*nChan+4*nChan)) // weights, complex data and weight spectrum for 4 correlations
}

// RawVolume returns the size of the raw correlator output.
func RawVolume(obsTime, intTime time.Duration, baselines, chanPerSb, subbands int) Gigabytes {
	perSubband := rows(obsTime, intTime, baselines) * rawRowBytes(chanPerSb) / bytesPerGB
	return Gigabytes(perSubband * float64(subbands))
}

// ProcessedVolume returns the size of the pipeline output. The boolean is
// false when the pipeline does not produce a measurement set.
func ProcessedVolume(obsTime, intTime time.Duration, baselines, chanPerSb, subbands int, pipeline PipelineType, tAvg, fAvg int, compress bool) (Gigabytes, bool) {
	if pipeline != Preprocessing {
		return 0, false
	}
	nChan := chanPerSb / fAvg
	intTime *= time.Duration(tAvg)
	perSubband := rows(obsTime, intTime, baselines) * averagedRowBytes(nChan) / bytesPerGB
	total := perSubband * float64(subbands)
	if compress {
		total /= compressionFactor
	}
	return Gigabytes(total), true
}
