// Package telemetry holds the logger-path data model: the semantic
// channel set, channel mapping, laps, and vehicle/engine/tyre
// configuration.
package telemetry

// ChannelName identifies one of the semantic channels a logger session
// can carry.
type ChannelName string

const (
	ChTime        ChannelName = "time"
	ChEngineRPM   ChannelName = "engineRpm"
	ChGPSSpeed    ChannelName = "gpsSpeed"
	ChLonAccel    ChannelName = "lonAccel"
	ChLatAccel    ChannelName = "latAccel"
	ChDistance    ChannelName = "distance"
	ChSlope       ChannelName = "slope"
	ChHeadTemp    ChannelName = "headTemp"
	ChCoolantTemp ChannelName = "coolantTemp"
	ChExhaustTemp ChannelName = "exhaustTemp"
	ChLambda      ChannelName = "lambda"
	ChThrottle    ChannelName = "throttle"
	ChLapIndex    ChannelName = "lapIndex"
)

// RequiredChannels lists the four channels every logger session must
// resolve for the pipeline to accept any samples.
var RequiredChannels = []ChannelName{ChTime, ChEngineRPM, ChGPSSpeed, ChLonAccel}

// OptionalChannels lists the remaining semantic channels.
var OptionalChannels = []ChannelName{
	ChLatAccel, ChDistance, ChSlope,
	ChHeadTemp, ChCoolantTemp, ChExhaustTemp,
	ChLambda, ChThrottle, ChLapIndex,
}

// MappingStatus reports how a semantic channel came to be mapped.
type MappingStatus string

const (
	AutoMatched  MappingStatus = "auto-matched"
	ManuallySet  MappingStatus = "manually-set"
	Unmatched    MappingStatus = "unmatched"
)

// ChannelMapping binds one semantic channel to a source column header.
type ChannelMapping struct {
	Header     string        `json:"header"`
	Status     MappingStatus `json:"status"`
	Multiplier float64       `json:"multiplier"`
}

// ChannelMap is the full mapping produced by the channel resolver.
type ChannelMap map[ChannelName]ChannelMapping

// Channels holds the materialized, equal-length numeric channel arrays
// for one session. Optional channels are nil/empty when not present —
// that is a legitimate value, never a special case.
type Channels struct {
	Time        []float64
	EngineRPM   []float64
	GPSSpeedKmh []float64
	LonAccelG   []float64
	LatAccelG   []float64
	Distance    []float64
	Slope       []float64
	HeadTemp    []float64
	CoolantTemp []float64
	ExhaustTemp []float64
	Lambda      []float64
	Throttle    []float64
	LapIndex    []float64
}

// Len returns the common sample count (length of Time).
func (c *Channels) Len() int {
	return len(c.Time)
}

// at returns arr[i] if i is within range, else 0 — used for optional
// channels which are zero-substituted when missing.
func at(arr []float64, i int) float64 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}
