// Package sensorpower rotates device-frame acceleration into the
// kart frame via a calibration, computes force-balance power against
// GPS speed, and bins the result by speed.
package sensorpower

import (
	"math"
	"sort"

	"github.com/relabs-tech/kartpower/internal/binning"
	"github.com/relabs-tech/kartpower/internal/calibration"
	"github.com/relabs-tech/kartpower/internal/envmodel"
	"github.com/relabs-tech/kartpower/internal/result"
	"github.com/relabs-tech/kartpower/internal/sensor"
)

const standardGravity = 9.80665
const cvPerWatt = 735.5

const minGPSSpeedMps = 0.5
const speedBinWidthKmh = 5.0
const minSamplesPerBin = 3

// Config carries the sensor-path vehicle parameters. Zero fields take
// the baseline defaults when passed through ApplyDefaults.
type Config struct {
	MassKg             float64
	FrontalAreaM2      float64
	DragCoefficient    float64
	RollingCoefficient float64
}

// ApplyDefaults fills zero fields with the baseline defaults: frontal
// area 0.5 m^2, Cd 0.8, rolling coefficient 0.02.
func ApplyDefaults(cfg *Config) {
	if cfg.FrontalAreaM2 == 0 {
		cfg.FrontalAreaM2 = 0.5
	}
	if cfg.DragCoefficient == 0 {
		cfg.DragCoefficient = 0.8
	}
	if cfg.RollingCoefficient == 0 {
		cfg.RollingCoefficient = 0.02
	}
}

type accepted struct {
	speedMps  float64
	powerCV   float64
	forwardA  float64
}

// Compute transforms each sample with GPS speed above the minimum
// threshold into a force-balance power estimate, bins by speed, and
// assembles the full sensor analysis document.
func Compute(samples []sensor.Sample, cal calibration.Data, cfg Config, density envmodel.Density, filterLevel float64) result.SensorAnalysisResult {
	ApplyDefaults(&cfg)

	validSpeedCount := 0
	acceptedList := make([]accepted, 0, len(samples))

	for _, s := range samples {
		if s.GPS == nil {
			continue
		}
		vMps := s.GPS.SpeedMps
		if vMps <= minGPSSpeedMps {
			continue
		}
		validSpeedCount++

		raw := calibration.Vec3{X: s.AccelX, Y: s.AccelY, Z: s.AccelZ}
		linear := raw.Sub(cal.Gravity)
		rotated := cal.Rotation.Apply(linear)
		aForward := rotated.X

		fInertial := cfg.MassKg * aForward
		fDrag := 0.5 * float64(density) * cfg.FrontalAreaM2 * cfg.DragCoefficient * vMps * vMps
		fRoll := cfg.MassKg * standardGravity * cfg.RollingCoefficient

		fTotal := fInertial + fDrag + fRoll
		powerW := fTotal * vMps
		powerCV := powerW / cvPerWatt

		if powerCV <= 0 {
			continue
		}

		acceptedList = append(acceptedList, accepted{speedMps: vMps, powerCV: powerCV, forwardA: aForward})
	}

	bins := buildSpeedBins(acceptedList, filterLevel)
	stats := computeStatistics(acceptedList, bins, len(samples), validSpeedCount)

	return result.SensorAnalysisResult{
		SpeedBins:  bins,
		Statistics: stats,
	}
}

func buildSpeedBins(acceptedList []accepted, filterLevel float64) []result.SpeedBinResult {
	type accum struct {
		powerSum, forwardSum float64
		count                int
	}

	bins := map[float64]*accum{}
	for _, a := range acceptedList {
		speedKmh := a.speedMps * 3.6
		centre := (math.Floor(speedKmh/speedBinWidthKmh) + 0.5) * speedBinWidthKmh
		acc, ok := bins[centre]
		if !ok {
			acc = &accum{}
			bins[centre] = acc
		}
		acc.powerSum += a.powerCV
		acc.forwardSum += a.forwardA
		acc.count++
	}

	centres := make([]float64, 0, len(bins))
	for c := range bins {
		centres = append(centres, c)
	}
	sort.Float64s(centres)

	out := make([]result.SpeedBinResult, 0, len(centres))
	for _, c := range centres {
		acc := bins[c]
		if acc.count < minSamplesPerBin {
			continue
		}
		meanPowerCV := acc.powerSum / float64(acc.count)
		out = append(out, result.SpeedBinResult{
			CentreSpeedKmh:  c,
			CentreSpeedMps:  c / 3.6,
			MeanPowerCV:     meanPowerCV,
			MeanPowerW:      meanPowerCV * cvPerWatt,
			MeanForwardAccl: acc.forwardSum / float64(acc.count),
			SampleCount:     acc.count,
		})
	}

	smoothBins(out, filterLevel)
	return out
}

func smoothBins(bins []result.SpeedBinResult, filterLevel float64) {
	if len(bins) == 0 {
		return
	}
	power := make([]float64, len(bins))
	for i, b := range bins {
		power[i] = b.MeanPowerCV
	}
	power = binning.SensorLadder(power, filterLevel)
	for i := range bins {
		bins[i].MeanPowerCV = power[i]
		bins[i].MeanPowerW = power[i] * cvPerWatt
	}
}

func computeStatistics(acceptedList []accepted, bins []result.SpeedBinResult, totalSamples, validSpeedSamples int) result.SensorStatistics {
	var stats result.SensorStatistics
	stats.TotalSamples = totalSamples
	stats.ValidSpeedSamples = validSpeedSamples

	var peak result.PeakPoint
	for _, b := range bins {
		if b.MeanPowerCV > peak.Value {
			peak = result.PeakPoint{Value: b.MeanPowerCV, At: b.CentreSpeedKmh}
		}
	}
	stats.PeakPowerCV = peak

	for _, a := range acceptedList {
		speedKmh := a.speedMps * 3.6
		if speedKmh > stats.MaxSpeedKmh {
			stats.MaxSpeedKmh = speedKmh
		}
		aG := a.forwardA / standardGravity
		if aG > stats.MaxForwardAccelG {
			stats.MaxForwardAccelG = aG
		}
		if -aG > stats.MaxDecelerationG {
			stats.MaxDecelerationG = -aG
		}
	}

	return stats
}
