// Package pipeline wires the channel resolver, CSV decoder, lap
// extractor, environment model, gear detector, logger power engine,
// RPM binner, calibration engine, and sensor power engine into the two
// end-to-end flows. It performs no I/O.
package pipeline

import (
	"time"

	"github.com/relabs-tech/kartpower/internal/apperr"
	"github.com/relabs-tech/kartpower/internal/binning"
	"github.com/relabs-tech/kartpower/internal/calibration"
	"github.com/relabs-tech/kartpower/internal/channelmap"
	"github.com/relabs-tech/kartpower/internal/csvdecoder"
	"github.com/relabs-tech/kartpower/internal/envmodel"
	"github.com/relabs-tech/kartpower/internal/lapextract"
	"github.com/relabs-tech/kartpower/internal/loggerpower"
	"github.com/relabs-tech/kartpower/internal/result"
	"github.com/relabs-tech/kartpower/internal/sensor"
	"github.com/relabs-tech/kartpower/internal/sensorpower"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

const component = "pipeline"

// lapPowerMinSpeedMps and the else-zero rule implement the coarse
// per-sample lap-power estimate: (m*a*v)/735.5 when v>1, gear>0, a>0,
// else 0.
const lapPowerMinSpeedMps = 1.0
const standardGravity = 9.80665
const cvPerWatt = 735.5

// RunLogger decodes a logger CSV, resolves channels, extracts laps,
// runs the logger power engine over the selected laps, bins and
// smooths the result, and assembles the full analysis document.
func RunLogger(csvBytes []byte, cfg telemetry.VehicleConfig, req telemetry.LoggerRunRequest, now time.Time) (*result.LoggerAnalysisResult, error) {
	telemetry.ApplyDefaults(&cfg)
	if err := telemetry.Validate(cfg); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	decoded, err := csvdecoder.Decode(csvBytes)
	if err != nil {
		return nil, err
	}

	mapping := channelmap.Resolve(decoded.Headers)
	channels := csvdecoder.Materialize(decoded.Headers, decoded.Rows, mapping)

	laps := lapextract.Extract(channels, decoded.Metadata)
	density := envmodel.FromConditions(cfg.RunConditions)

	samples := loggerpower.Compute(channels, laps, req.SelectedLaps, cfg, req, density)
	bins := binning.BuildRPMBins(samples, req.FilterLevel)

	lapTraces := buildLapTraces(channels, laps, samples, cfg)
	stats := computeLoggerStatistics(samples, bins)

	return &result.LoggerAnalysisResult{
		RPMBins:          bins,
		RawAcceptedCount: len(samples),
		LapTraces:        lapTraces,
		Statistics:       stats,
		Timestamp:        now,
	}, nil
}

// RunSensor drives a calibration engine to completion over the given
// gravity/forward sample buffers, then runs the sensor power engine
// over the sample stream and assembles the sensor analysis document.
func RunSensor(gravitySamples, forwardSamples []calibration.Vec3, samples []sensor.Sample, cfg sensorpower.Config, runConditions telemetry.RunConditions, filterLevel float64, now time.Time) (*result.SensorAnalysisResult, *calibration.Data, error) {
	engine := calibration.New()
	for _, v := range gravitySamples {
		engine.PushSample(v)
	}
	if err := engine.AdvancePhase(now); err != nil {
		return nil, nil, err
	}
	for _, v := range forwardSamples {
		engine.PushSample(v)
	}
	if err := engine.AdvancePhase(now); err != nil {
		return nil, nil, err
	}

	cal, ok := engine.Result()
	if !ok {
		return nil, nil, apperr.New(apperr.InsufficientSamples, component, "calibration did not complete")
	}

	density := envmodel.FromConditions(runConditions)
	analysis := sensorpower.Compute(samples, cal, cfg, density, filterLevel)
	analysis.Timestamp = now
	return &analysis, &cal, nil
}

// buildLapTraces rebases each lap's accepted-sample timeline to the
// lap's own start and computes the coarse per-sample lap-power
// estimate.
func buildLapTraces(channels telemetry.Channels, laps []telemetry.Lap, samples []result.SamplePoint, cfg telemetry.VehicleConfig) []result.LapTrace {
	byLap := make(map[int][]result.SamplePoint, len(laps))
	for _, s := range samples {
		byLap[s.LapIndex] = append(byLap[s.LapIndex], s)
	}

	traces := make([]result.LapTrace, 0, len(laps))
	for i, lap := range laps {
		lapSamples := byLap[i]
		trace := result.LapTrace{
			LapIndex: i,
			IsOutLap: lap.IsOutLap,
			IsInLap:  lap.IsInLap,
			TimeSec:  make([]float64, len(lapSamples)),
			Gear:     make([]int, len(lapSamples)),
			PowerCV:  make([]float64, len(lapSamples)),
		}

		lapStartTime := at(channels.Time, lap.Start)
		for j, s := range lapSamples {
			trace.TimeSec[j] = s.TimeSec - lapStartTime
			trace.Gear[j] = s.Gear

			vMps := s.WheelSpeedKm / 3.6
			aMps2 := at(channels.LonAccelG, s.SampleIndex) * standardGravity
			if vMps > lapPowerMinSpeedMps && s.Gear > 0 && aMps2 > 0 {
				trace.PowerCV[j] = (cfg.Kart.MassKg * aMps2 * vMps) / cvPerWatt
			}
		}
		traces = append(traces, trace)
	}
	return traces
}

func computeLoggerStatistics(samples []result.SamplePoint, bins []result.RPMBinResult) result.LoggerStatistics {
	var stats result.LoggerStatistics
	stats.AcceptedSamples = len(samples)

	if len(samples) == 0 {
		return stats
	}

	stats.MinRPM = samples[0].EngineRPM
	stats.MaxRPM = samples[0].EngineRPM
	var powerSum, torqueSum float64
	for _, s := range samples {
		if s.EngineRPM < stats.MinRPM {
			stats.MinRPM = s.EngineRPM
		}
		if s.EngineRPM > stats.MaxRPM {
			stats.MaxRPM = s.EngineRPM
		}
		powerSum += s.WheelPowerCV
		torqueSum += s.WheelTorqueN
	}
	stats.MeanPowerCV = powerSum / float64(len(samples))
	stats.MeanTorqueNm = torqueSum / float64(len(samples))

	for _, b := range bins {
		if b.MeanPowerCV > stats.PeakPowerCV.Value {
			stats.PeakPowerCV = result.PeakPoint{Value: b.MeanPowerCV, At: b.CentreRPM}
		}
		if b.MeanTorqueNm > stats.PeakTorqueNm.Value {
			stats.PeakTorqueNm = result.PeakPoint{Value: b.MeanTorqueNm, At: b.CentreRPM}
		}
	}

	return stats
}

func at(arr []float64, i int) float64 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}
