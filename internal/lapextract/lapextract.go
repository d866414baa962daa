// Package lapextract derives per-lap index ranges and lap times from a
// lap-marker channel or metadata beacons.
package lapextract

import (
	"github.com/relabs-tech/kartpower/internal/csvdecoder"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

// Extract picks the highest-precedence lap source available: a lap
// channel, then beacon markers, then segment times, then a single
// whole-session lap.
func Extract(channels telemetry.Channels, meta csvdecoder.Metadata) []telemetry.Lap {
	if len(channels.LapIndex) > 0 {
		return FromLapChannel(channels.LapIndex, channels.Time)
	}
	if len(meta.BeaconMarkers) > 0 {
		return FromCumulativeBoundaries(meta.BeaconMarkers, diffs(meta.BeaconMarkers), channels.Time)
	}
	if len(meta.SegmentTimes) > 0 {
		cumulative, perLap := normalizeSegmentTimes(meta.SegmentTimes)
		return FromCumulativeBoundaries(cumulative, perLap, channels.Time)
	}
	return Single(channels.Time)
}

// FromLapChannel derives laps from indices where the lap channel's
// value changes.
func FromLapChannel(lapIndex, time []float64) []telemetry.Lap {
	if len(lapIndex) == 0 {
		return nil
	}

	boundaries := []int{0}
	for i := 1; i < len(lapIndex); i++ {
		if lapIndex[i] != lapIndex[i-1] {
			boundaries = append(boundaries, i)
		}
	}
	boundaries = append(boundaries, len(lapIndex))

	laps := make([]telemetry.Lap, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		start, end := boundaries[i], boundaries[i+1]
		laps = append(laps, telemetry.Lap{
			Start:   start,
			End:     end,
			TimeSec: spanTime(time, start, end),
		})
	}
	flagOutAndIn(laps)
	return laps
}

// FromCumulativeBoundaries builds laps by walking the time channel
// until it reaches each cumulative boundary in seconds, using
// explicit per-lap times when supplied.
func FromCumulativeBoundaries(cumulative, perLap []float64, time []float64) []telemetry.Lap {
	if len(cumulative) == 0 {
		return Single(time)
	}

	boundaries := make([]int, 0, len(cumulative)+1)
	boundaries = append(boundaries, 0)
	for _, c := range cumulative {
		boundaries = append(boundaries, firstIndexAtOrAfter(time, c))
	}

	laps := make([]telemetry.Lap, 0, len(cumulative))
	for i := 0; i < len(cumulative); i++ {
		start, end := boundaries[i], boundaries[i+1]
		lapTime := spanTime(time, start, end)
		if i < len(perLap) {
			lapTime = perLap[i]
		}
		laps = append(laps, telemetry.Lap{Start: start, End: end, TimeSec: lapTime})
	}
	flagOutAndIn(laps)
	return laps
}

// Single returns one lap spanning the whole session, flagged neither
// out- nor in-lap.
func Single(time []float64) []telemetry.Lap {
	if len(time) == 0 {
		return nil
	}
	return []telemetry.Lap{{
		Start:   0,
		End:     len(time),
		TimeSec: spanTime(time, 0, len(time)),
	}}
}

func spanTime(time []float64, start, end int) float64 {
	if len(time) == 0 {
		return 0
	}
	last := end - 1
	if last >= len(time) {
		last = len(time) - 1
	}
	if last < start {
		last = start
	}
	if start >= len(time) {
		start = len(time) - 1
	}
	return time[last] - time[start]
}

func firstIndexAtOrAfter(time []float64, boundary float64) int {
	for i, t := range time {
		if t >= boundary {
			return i
		}
	}
	return len(time)
}

// flagOutAndIn marks laps[0] as the out-lap, and the final lap as an
// in-lap iff its time exceeds the default threshold.
func flagOutAndIn(laps []telemetry.Lap) {
	if len(laps) == 0 {
		return
	}
	laps[0].IsOutLap = true
	last := &laps[len(laps)-1]
	last.IsInLap = last.TimeSec > telemetry.InLapTimeThresholdSec
}

// diffs returns successive differences of a cumulative sequence,
// treating index -1 as zero.
func diffs(cumulative []float64) []float64 {
	out := make([]float64, len(cumulative))
	prev := 0.0
	for i, c := range cumulative {
		out[i] = c - prev
		prev = c
	}
	return out
}

func isMonotoneNonDecreasing(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return false
		}
	}
	return true
}

func prefixSum(vals []float64) []float64 {
	out := make([]float64, len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		out[i] = sum
	}
	return out
}

// normalizeSegmentTimes decides whether metadata segment times are
// already cumulative (monotone non-decreasing) or per-lap deltas that
// need a prefix sum.
func normalizeSegmentTimes(segmentTimes []float64) (cumulative, perLap []float64) {
	if isMonotoneNonDecreasing(segmentTimes) {
		return segmentTimes, diffs(segmentTimes)
	}
	return prefixSum(segmentTimes), segmentTimes
}
