// Package channelmap resolves ambiguous logger column headers to the
// semantic channel set.
package channelmap

import (
	"regexp"
	"strings"

	"github.com/relabs-tech/kartpower/internal/telemetry"
)

// CanonicalOrder is the tie-break order used when one header matches
// more than one still-unmatched channel's alias list: the earliest
// channel in this list wins.
var CanonicalOrder = []telemetry.ChannelName{
	telemetry.ChTime,
	telemetry.ChEngineRPM,
	telemetry.ChGPSSpeed,
	telemetry.ChLonAccel,
	telemetry.ChLatAccel,
	telemetry.ChDistance,
	telemetry.ChSlope,
	telemetry.ChHeadTemp,
	telemetry.ChCoolantTemp,
	telemetry.ChExhaustTemp,
	telemetry.ChLambda,
	telemetry.ChThrottle,
	telemetry.ChLapIndex,
}

// Aliases holds, per semantic channel, the canonical lowercase alias
// strings a header equals or contains.
var Aliases = map[telemetry.ChannelName][]string{
	telemetry.ChTime:        {"time (s)", "timestamp", "time"},
	telemetry.ChEngineRPM:   {"engine rpm", "engine speed", "enginespeed", "rpm"},
	telemetry.ChGPSSpeed:    {"gps speed", "gps_speed", "vehicle speed", "ground speed", "speed"},
	telemetry.ChLonAccel:    {"longitudinal acceleration", "lonaccel", "lon_acc", "lonacc", "accel x", "ax"},
	telemetry.ChLatAccel:    {"lateral acceleration", "lataccel", "lat_acc", "latacc", "accel y", "ay"},
	telemetry.ChDistance:    {"distance", "odometer", "dist"},
	telemetry.ChSlope:       {"slope", "gradient", "incline"},
	telemetry.ChHeadTemp:    {"cylinder head temp", "head temp", "cht"},
	telemetry.ChCoolantTemp: {"coolant temp", "water temp", "engine temp"},
	telemetry.ChExhaustTemp: {"exhaust temp", "egt"},
	telemetry.ChLambda:      {"lambda", "air fuel", "afr"},
	telemetry.ChThrottle:    {"throttle position", "throttle", "tps"},
	telemetry.ChLapIndex:    {"lap number", "lap index", "lap idx", "lap"},
}

var timeLikePattern = regexp.MustCompile(`\d+:\d+`)

// normalize trims surrounding quotes/whitespace and lowercases h.
func normalize(h string) string {
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"'`)
	h = strings.TrimSpace(h)
	return strings.ToLower(h)
}

func matchesChannel(h string, channel telemetry.ChannelName) bool {
	for _, alias := range Aliases[channel] {
		if h == alias || strings.Contains(h, alias) {
			return true
		}
	}
	return false
}

// IsKnownAlias reports whether the normalized header matches any
// channel's alias list — used by the CSV decoder's header-row heuristic.
func IsKnownAlias(header string) bool {
	h := normalize(header)
	if h == "" || timeLikePattern.MatchString(h) {
		return false
	}
	for _, c := range CanonicalOrder {
		if matchesChannel(h, c) {
			return true
		}
	}
	return false
}

// Resolve maps raw header strings to the semantic channel set,
// following the discovery-order, first-match-wins, canonical-order
// tie-break rule. It never fails: unmatched headers simply leave
// their channel unmatched.
func Resolve(headers []string) telemetry.ChannelMap {
	out := telemetry.ChannelMap{}
	matched := map[telemetry.ChannelName]bool{}

	for _, h := range headers {
		norm := normalize(h)
		if norm == "" || timeLikePattern.MatchString(norm) {
			continue
		}

		for _, c := range CanonicalOrder {
			if matched[c] {
				continue
			}
			if matchesChannel(norm, c) {
				out[c] = telemetry.ChannelMapping{
					Header:     h,
					Status:     telemetry.AutoMatched,
					Multiplier: 1,
				}
				matched[c] = true
				break
			}
		}
	}

	return out
}

// WithOverride sets channel c's mapping to the given header with
// status manually-set, e.g. after a user correction in the UI. It is
// a pure function: it returns a new map, leaving m untouched.
func WithOverride(m telemetry.ChannelMap, c telemetry.ChannelName, header string, multiplier float64) telemetry.ChannelMap {
	out := make(telemetry.ChannelMap, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if multiplier == 0 {
		multiplier = 1
	}
	out[c] = telemetry.ChannelMapping{
		Header:     header,
		Status:     telemetry.ManuallySet,
		Multiplier: multiplier,
	}
	return out
}
