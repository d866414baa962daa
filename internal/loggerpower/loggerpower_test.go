package loggerpower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kartpower/internal/envmodel"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

func directDriveConfig() telemetry.VehicleConfig {
	cfg := telemetry.DefaultVehicleConfig()
	cfg.Engine.Primary = telemetry.GearRatio{In: 1, Out: 1}
	cfg.FinalDrive = telemetry.FinalDrive{FrontTeeth: 10, RearTeeth: 30}
	return cfg
}

func defaultDensity() envmodel.Density {
	return envmodel.FromConditions(telemetry.RunConditions{PressureMbar: 1013, TemperatureC: 20, HumidityPct: 50})
}

func oneSampleChannels(speedKmh, lonAccelG, rpm float64) telemetry.Channels {
	return telemetry.Channels{
		Time:        []float64{1.0},
		EngineRPM:   []float64{rpm},
		GPSSpeedKmh: []float64{speedKmh},
		LonAccelG:   []float64{lonAccelG},
	}
}

func oneLap(n int) []telemetry.Lap {
	return []telemetry.Lap{{Start: 0, End: n}}
}

func baseRequest() telemetry.LoggerRunRequest {
	return telemetry.LoggerRunRequest{MinRPM: 8000, MaxRPM: 15000, FilterLevel: 50}
}

func TestCompute_AcceptsValidAcceleratingSample(t *testing.T) {
	cfg := directDriveConfig()
	ch := oneSampleChannels(72, 0.2, 9000)
	samples := Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())

	require.Len(t, samples, 1)
	s := samples[0]
	assert.Equal(t, 0, s.SampleIndex)
	assert.Equal(t, 1, s.Gear)
	assert.Equal(t, 9000.0, s.EngineRPM)
	assert.Greater(t, s.WheelPowerCV, 0.0)
}

func TestCompute_RejectsLowSpeedSamples(t *testing.T) {
	cfg := directDriveConfig()
	ch := oneSampleChannels(2, 0.2, 9000) // 2 km/h, below the 5 km/h floor
	samples := Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())
	assert.Empty(t, samples)
}

func TestCompute_RejectsBrakingUnlessRetained(t *testing.T) {
	cfg := directDriveConfig()
	// A light deceleration (a < 0) that drag and rolling resistance still
	// outweigh, so wheel power stays positive once the braking check is off.
	ch := oneSampleChannels(72, -0.02, 9000)

	samples := Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())
	assert.Empty(t, samples)

	cfg.Params.RetainCoastingSamples = true
	samples = Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())
	assert.Len(t, samples, 1)
}

func TestCompute_RejectsOutOfRangeRPM(t *testing.T) {
	cfg := directDriveConfig()
	ch := oneSampleChannels(72, 0.2, 5000)
	samples := Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())
	assert.Empty(t, samples)
}

func TestCompute_RejectsSampleWithNoMatchingGear(t *testing.T) {
	cfg := telemetry.DefaultVehicleConfig()
	cfg.FinalDrive = telemetry.FinalDrive{FrontTeeth: 10, RearTeeth: 39}
	cfg.Engine.Primary = telemetry.GearRatio{In: 21, Out: 61}
	cfg.Engine.Gears = []telemetry.GearRatio{
		{In: 13, Out: 33}, {In: 16, Out: 29}, {In: 18, Out: 26},
		{In: 21, Out: 25}, {In: 22, Out: 23}, {In: 23, Out: 22},
	}
	// Low rpm with high speed implies a ratio far below every gear.
	ch := oneSampleChannels(200, 0.2, 8100)
	samples := Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())
	assert.Empty(t, samples)
}

func TestCompute_RejectsAbovePowerSanityBound(t *testing.T) {
	cfg := directDriveConfig()
	cfg.Params.MaxWheelPowerCV = 0.01
	ch := oneSampleChannels(72, 0.2, 9000)
	samples := Compute(ch, oneLap(1), nil, cfg, baseRequest(), defaultDensity())
	assert.Empty(t, samples)
}

func TestCompute_SelectedLapsFiltersRange(t *testing.T) {
	cfg := directDriveConfig()
	ch := telemetry.Channels{
		Time:        []float64{0, 1, 2, 3},
		EngineRPM:   []float64{9000, 9000, 9000, 9000},
		GPSSpeedKmh: []float64{72, 72, 72, 72},
		LonAccelG:   []float64{0.2, 0.2, 0.2, 0.2},
	}
	laps := []telemetry.Lap{{Start: 0, End: 2}, {Start: 2, End: 4}}

	samples := Compute(ch, laps, []int{1}, cfg, baseRequest(), defaultDensity())
	require.Len(t, samples, 2)
	for _, s := range samples {
		assert.Equal(t, 1, s.LapIndex)
		assert.GreaterOrEqual(t, s.SampleIndex, 2)
	}
}
