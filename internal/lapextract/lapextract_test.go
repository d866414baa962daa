package lapextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kartpower/internal/csvdecoder"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

func timeChannel(step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

func TestExtract_PrefersLapChannelOverMetadata(t *testing.T) {
	channels := telemetry.Channels{
		Time:     timeChannel(1, 10),
		LapIndex: []float64{1, 1, 1, 2, 2, 2, 3, 3, 3, 3},
	}
	meta := csvdecoder.Metadata{BeaconMarkers: []float64{5}}

	laps := Extract(channels, meta)
	require.Len(t, laps, 3)
	assert.Equal(t, telemetry.Lap{Start: 0, End: 3, TimeSec: 2, IsOutLap: true}, laps[0])
	assert.Equal(t, 3, laps[1].Start)
	assert.Equal(t, 6, laps[1].End)
	assert.Equal(t, 6, laps[2].Start)
	assert.Equal(t, 10, laps[2].End)
}

func TestExtract_BeaconMarkersScenario(t *testing.T) {
	// Beacon markers at 60.0, 125.3, 188.1s over a 1Hz-equivalent time
	// channel produce three laps of 60.0, 65.3, 62.8 seconds.
	n := 189
	channels := telemetry.Channels{Time: timeChannel(1, n)}
	meta := csvdecoder.Metadata{BeaconMarkers: []float64{60.0, 125.3, 188.1}}

	laps := Extract(channels, meta)
	require.Len(t, laps, 3)
	assert.InDelta(t, 60.0, laps[0].TimeSec, 1.0)
	assert.InDelta(t, 65.3, laps[1].TimeSec, 1.0)
	assert.InDelta(t, 62.8, laps[2].TimeSec, 1.0)
	assert.True(t, laps[0].IsOutLap)
}

func TestExtract_SegmentTimesCumulative(t *testing.T) {
	channels := telemetry.Channels{Time: timeChannel(1, 200)}
	meta := csvdecoder.Metadata{SegmentTimes: []float64{50, 100, 160}}

	laps := Extract(channels, meta)
	require.Len(t, laps, 3)
	assert.InDelta(t, 50, laps[0].TimeSec, 1.0)
	assert.InDelta(t, 50, laps[1].TimeSec, 1.0)
	assert.InDelta(t, 60, laps[2].TimeSec, 1.0)
}

func TestExtract_SegmentTimesPerLapDeltas(t *testing.T) {
	channels := telemetry.Channels{Time: timeChannel(1, 200)}
	// Non-monotone input: per-lap deltas, not cumulative.
	meta := csvdecoder.Metadata{SegmentTimes: []float64{55, 48, 62}}

	laps := Extract(channels, meta)
	require.Len(t, laps, 3)
	assert.InDelta(t, 55, laps[0].TimeSec, 1.0)
	assert.InDelta(t, 48, laps[1].TimeSec, 1.0)
	assert.InDelta(t, 62, laps[2].TimeSec, 1.0)
}

func TestExtract_NoMarkersFallsBackToSingleLap(t *testing.T) {
	channels := telemetry.Channels{Time: timeChannel(1, 50)}
	laps := Extract(channels, csvdecoder.Metadata{})
	require.Len(t, laps, 1)
	assert.Equal(t, 0, laps[0].Start)
	assert.Equal(t, 50, laps[0].End)
	assert.False(t, laps[0].IsOutLap)
	assert.False(t, laps[0].IsInLap)
}

func TestExtract_EmptySessionReturnsNoLaps(t *testing.T) {
	laps := Extract(telemetry.Channels{}, csvdecoder.Metadata{})
	assert.Empty(t, laps)
}

func TestFlagOutAndIn_LongFinalLapIsInLap(t *testing.T) {
	channels := telemetry.Channels{
		Time:     timeChannel(1, 300),
		LapIndex: append(make([]float64, 200, 300), func() []float64 {
			out := make([]float64, 100)
			for i := range out {
				out[i] = 2
			}
			return out
		}()...),
	}
	for i := range channels.LapIndex[:200] {
		channels.LapIndex[i] = 1
	}

	laps := FromLapChannel(channels.LapIndex, channels.Time)
	require.Len(t, laps, 2)
	assert.True(t, laps[len(laps)-1].IsInLap)
}
