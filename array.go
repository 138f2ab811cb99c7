package luci

import (
	"fmt"
	"strings"
	"time"
)

// Physical limits of the array and correlator.
const (
	MaxCoreStations          = 24
	MaxRemoteStations        = 14
	MaxInternationalStations = 14
	MaxSubbands              = 488
	// MaxBeamlets is the number of simultaneous (target, subband) pairs the
	// station hardware can form.
	MaxBeamlets = 488
	// MinIntegrationTime is the correlator hardware floor.
	MinIntegrationTime = 160 * time.Millisecond
)

// Band is the receiver frequency regime.
type Band uint8

const (
	// LowBand is the LBA regime.
	LowBand Band = iota + 1
	// HighBand is the HBA regime.
	HighBand
)

func (b Band) String() string {
	switch b {
	case LowBand:
		return "lba"
	case HighBand:
		return "hba"
	default:
		panic(fmt.Errorf("unknown band %d", b))
	}
}

// AntennaSet selects which receiving elements are correlated.
type AntennaSet uint8

const (
	// LBA uses the low band antennas.
	LBA AntennaSet = iota + 1
	// HBADual splits each core station into two independently correlated fields.
	HBADual
	// HBADualInner is HBADual with remote stations tapered to the core station
	// footprint, so remote stations behave electrically like core stations.
	HBADualInner
)

// Band returns the frequency regime of this antenna set.
func (a AntennaSet) Band() Band {
	if a == LBA {
		return LowBand
	}
	return HighBand
}

// Tapered returns whether remote stations are tapered to the core footprint.
func (a AntennaSet) Tapered() bool {
	return a == HBADualInner
}

// coreMultiplier returns the number of correlated sub-elements per core station.
func (a AntennaSet) coreMultiplier() int {
	if a.Band() == HighBand {
		return 2
	}
	return 1
}

func (a AntennaSet) String() string {
	switch a {
	case LBA:
		return "lba"
	case HBADual:
		return "hbadual"
	case HBADualInner:
		return "hbadualinner"
	default:
		return fmt.Sprintf("AntennaSet(%d)", a)
	}
}

// AntennaSetFromString returns the antenna set from its name.
func AntennaSetFromString(name string) (AntennaSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lba", "lbaouter", "lbainner":
		return LBA, nil
	case "hba", "hbadual":
		return HBADual, nil
	case "hbadualinner":
		return HBADualInner, nil
	default:
		return 0, fmt.Errorf("undefined antenna set '%s'", name)
	}
}

// ArrayConfiguration defines which stations take part in an observation.
type ArrayConfiguration struct {
	NCore, NRemote, NInt int
	AntennaSet           AntennaSet
}

// EffectiveStations returns the number of correlated elements.
// In the high band each core station counts twice.
func (a ArrayConfiguration) EffectiveStations() int {
	return a.AntennaSet.coreMultiplier()*a.NCore + a.NRemote + a.NInt
}

// Baselines returns the number of baselines formed by this array.
func (a ArrayConfiguration) Baselines() int {
	return BaselineCount(a.NCore, a.NRemote, a.NInt, a.AntennaSet)
}

// Validate checks the station counts against the physical array.
func (a ArrayConfiguration) Validate() error {
	cerr := &ConfigError{}
	a.validate(cerr)
	return cerr.orNil()
}

func (a ArrayConfiguration) validate(cerr *ConfigError) {
	if a.NCore < 0 || a.NCore > MaxCoreStations {
		cerr.add("number of core stations must be between 0 and %d", MaxCoreStations)
	}
	if a.NRemote < 0 || a.NRemote > MaxRemoteStations {
		cerr.add("number of remote stations must be between 0 and %d", MaxRemoteStations)
	}
	if a.NInt < 0 || a.NInt > MaxInternationalStations {
		cerr.add("number of international stations must be between 0 and %d", MaxInternationalStations)
	}
	if a.NCore+a.NRemote+a.NInt < 2 {
		cerr.add("at least 2 stations must be included")
	}
	if a.AntennaSet < LBA || a.AntennaSet > HBADualInner {
		cerr.add("unknown antenna set %d", a.AntennaSet)
	}
}

func (a ArrayConfiguration) String() string {
	return fmt.Sprintf("%d core, %d remote, %d international (%s)", a.NCore, a.NRemote, a.NInt, a.AntennaSet)
}

// CorrelatorConfiguration defines the correlator and post-processing setup.
type CorrelatorConfiguration struct {
	ObsTime            time.Duration
	IntTime            time.Duration
	ChannelsPerSubband int
	Subbands           int
	Pipeline           PipelineType
	TimeAvg, FreqAvg   int
	Compress           bool
}

// Validate checks the correlator setup.
func (c CorrelatorConfiguration) Validate() error {
	cerr := &ConfigError{}
	c.validate(cerr)
	return cerr.orNil()
}

func (c CorrelatorConfiguration) validate(cerr *ConfigError) {
	if c.ObsTime <= 0 {
		cerr.add("observation time cannot be zero or negative")
	}
	if c.IntTime < MinIntegrationTime {
		cerr.add("integration time must be >= %s", MinIntegrationTime)
	}
	if c.ChannelsPerSubband < 1 {
		cerr.add("number of channels per subband must be at least 1")
	}
	if c.Subbands < 1 {
		cerr.add("number of subbands cannot be less than 1")
	}
	if c.Subbands > MaxSubbands {
		cerr.add("number of subbands cannot be larger than %d", MaxSubbands)
	}
	if c.Pipeline == Preprocessing {
		if c.TimeAvg < 1 {
			cerr.add("time averaging factor must be at least 1")
		}
		if c.FreqAvg < 1 {
			cerr.add("frequency averaging factor must be at least 1")
		} else if c.FreqAvg > c.ChannelsPerSubband {
			cerr.add("frequency averaging factor (%d) exceeds the number of channels per subband (%d)", c.FreqAvg, c.ChannelsPerSubband)
		}
	}
}
