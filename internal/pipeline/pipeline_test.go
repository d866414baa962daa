package pipeline

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kartpower/internal/apperr"
	"github.com/relabs-tech/kartpower/internal/calibration"
	"github.com/relabs-tech/kartpower/internal/sensor"
	"github.com/relabs-tech/kartpower/internal/sensorpower"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

func syntheticCSV(n int) []byte {
	var b strings.Builder
	b.WriteString("Time (s),Engine RPM,GPS Speed,Longitudinal Acceleration\n")
	for i := 0; i < n; i++ {
		t := float64(i) * 0.1
		rpm := 8000 + float64(i)*10
		speed := 60.0 + float64(i)*0.2
		accel := 0.3
		fmt.Fprintf(&b, "%.2f,%.1f,%.2f,%.2f\n", t, rpm, speed, accel)
	}
	return []byte(b.String())
}

func directDriveConfig() telemetry.VehicleConfig {
	cfg := telemetry.DefaultVehicleConfig()
	cfg.Engine.Primary = telemetry.GearRatio{In: 1, Out: 1}
	cfg.FinalDrive = telemetry.FinalDrive{FrontTeeth: 10, RearTeeth: 30}
	return cfg
}

func TestRunLogger_EndToEndProducesBinsAndStatistics(t *testing.T) {
	cfg := directDriveConfig()
	req := telemetry.LoggerRunRequest{MinRPM: 8000, MaxRPM: 15000, FilterLevel: 0}

	analysis, err := RunLogger(syntheticCSV(100), cfg, req, time.Unix(100, 0))
	require.NoError(t, err)

	assert.Greater(t, analysis.RawAcceptedCount, 0)
	assert.NotEmpty(t, analysis.RPMBins)
	require.Len(t, analysis.LapTraces, 1)
	assert.NotEmpty(t, analysis.LapTraces[0].PowerCV)
	assert.Equal(t, time.Unix(100, 0), analysis.Timestamp)
	assert.Equal(t, analysis.RawAcceptedCount, analysis.Statistics.AcceptedSamples)
	assert.Greater(t, analysis.Statistics.MaxRPM, analysis.Statistics.MinRPM)
}

func TestRunLogger_MalformedCSVReturnsError(t *testing.T) {
	cfg := directDriveConfig()
	req := telemetry.LoggerRunRequest{MinRPM: 8000, MaxRPM: 15000}

	_, err := RunLogger([]byte("not,a,valid,log\n"), cfg, req, time.Now())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.MalformedInput))
}

func TestRunLogger_InvalidConfigReturnsError(t *testing.T) {
	cfg := telemetry.DefaultVehicleConfig() // no final drive teeth set
	req := telemetry.LoggerRunRequest{MinRPM: 8000, MaxRPM: 15000}

	_, err := RunLogger(syntheticCSV(10), cfg, req, time.Now())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigurationInvalid))
}

func TestRunLogger_InvalidRequestReturnsError(t *testing.T) {
	cfg := directDriveConfig()
	req := telemetry.LoggerRunRequest{MinRPM: 0, MaxRPM: 15000}

	_, err := RunLogger(syntheticCSV(10), cfg, req, time.Now())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigurationInvalid))
}

func gravitySamples(n int) []calibration.Vec3 {
	out := make([]calibration.Vec3, n)
	for i := range out {
		out[i] = calibration.Vec3{X: 0, Y: 0, Z: 9.81}
	}
	return out
}

func forwardSamples(n int) []calibration.Vec3 {
	out := make([]calibration.Vec3, n)
	for i := range out {
		x := 3.0 * math.Sin(float64(i)*0.11)
		y := 0.05 * math.Sin(float64(i)*0.3)
		z := 9.81 + 0.05*math.Cos(float64(i)*0.2)
		out[i] = calibration.Vec3{X: x, Y: y, Z: z}
	}
	return out
}

func TestRunSensor_EndToEndCompletesCalibrationAndAnalysis(t *testing.T) {
	samples := []sensor.Sample{
		{AccelX: 2, AccelZ: 9.81, GPS: &sensor.GPSSample{SpeedMps: 20}},
		{AccelX: 2, AccelZ: 9.81, GPS: &sensor.GPSSample{SpeedMps: 20}},
		{AccelX: 2, AccelZ: 9.81, GPS: &sensor.GPSSample{SpeedMps: 20}},
	}
	cfg := sensorpower.Config{MassKg: 175}
	runConditions := telemetry.DefaultVehicleConfig().RunConditions

	analysis, cal, err := RunSensor(
		gravitySamples(calibration.MinGravitySamples),
		forwardSamples(calibration.MinForwardSamples),
		samples, cfg, runConditions, 0, time.Unix(200, 0),
	)
	require.NoError(t, err)
	require.NotNil(t, cal)
	assert.Equal(t, time.Unix(200, 0), analysis.Timestamp)
	assert.Equal(t, 3, analysis.Statistics.ValidSpeedSamples)
}

func TestRunSensor_InsufficientSamplesReturnsError(t *testing.T) {
	cfg := sensorpower.Config{MassKg: 175}
	runConditions := telemetry.DefaultVehicleConfig().RunConditions

	_, _, err := RunSensor(
		gravitySamples(10),
		forwardSamples(calibration.MinForwardSamples),
		nil, cfg, runConditions, 0, time.Now(),
	)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InsufficientSamples))
}
