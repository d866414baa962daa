package channelmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/kartpower/internal/telemetry"
)

func TestResolve_ExactAliases(t *testing.T) {
	headers := []string{"Time (s)", "Engine RPM", "GPS Speed", "Longitudinal Acceleration"}
	m := Resolve(headers)

	assert.Equal(t, "Time (s)", m[telemetry.ChTime].Header)
	assert.Equal(t, telemetry.AutoMatched, m[telemetry.ChTime].Status)
	assert.Equal(t, "Engine RPM", m[telemetry.ChEngineRPM].Header)
	assert.Equal(t, "GPS Speed", m[telemetry.ChGPSSpeed].Header)
	assert.Equal(t, "Longitudinal Acceleration", m[telemetry.ChLonAccel].Header)
}

func TestResolve_FirstMatchWinsPerChannel(t *testing.T) {
	// Two headers both alias Speed; only the first occurrence should bind.
	headers := []string{"GPS Speed", "Vehicle Speed"}
	m := Resolve(headers)
	assert.Equal(t, "GPS Speed", m[telemetry.ChGPSSpeed].Header)
	assert.Len(t, m, 1)
}

func TestResolve_UnmatchedHeaderIsIgnored(t *testing.T) {
	headers := []string{"Suspension Travel FL"}
	m := Resolve(headers)
	assert.Empty(t, m)
}

func TestResolve_TimeLikeHeaderNeverMatches(t *testing.T) {
	headers := []string{"12:34"}
	m := Resolve(headers)
	assert.Empty(t, m)
}

func TestWithOverride_LeavesOriginalUntouched(t *testing.T) {
	base := Resolve([]string{"Engine RPM"})
	overridden := WithOverride(base, telemetry.ChGPSSpeed, "Custom Speed Column", 3.6)

	assert.NotContains(t, base, telemetry.ChGPSSpeed)
	assert.Equal(t, "Custom Speed Column", overridden[telemetry.ChGPSSpeed].Header)
	assert.Equal(t, telemetry.ManuallySet, overridden[telemetry.ChGPSSpeed].Status)
	assert.Equal(t, 3.6, overridden[telemetry.ChGPSSpeed].Multiplier)
}

func TestWithOverride_DefaultsZeroMultiplierToOne(t *testing.T) {
	base := telemetry.ChannelMap{}
	overridden := WithOverride(base, telemetry.ChThrottle, "Throttle", 0)
	assert.Equal(t, 1.0, overridden[telemetry.ChThrottle].Multiplier)
}

func TestIsKnownAlias(t *testing.T) {
	assert.True(t, IsKnownAlias("RPM"))
	assert.True(t, IsKnownAlias("Lap Number"))
	assert.False(t, IsKnownAlias("Suspension Travel FL"))
	assert.False(t, IsKnownAlias("12:34"))
}
