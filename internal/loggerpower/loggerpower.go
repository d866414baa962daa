// Package loggerpower computes instantaneous wheel force, power, and
// torque for every accepted logger sample.
package loggerpower

import (
	"github.com/relabs-tech/kartpower/internal/envmodel"
	"github.com/relabs-tech/kartpower/internal/gear"
	"github.com/relabs-tech/kartpower/internal/result"
	"github.com/relabs-tech/kartpower/internal/telemetry"
)

// standardGravity is the g used both to convert g-units to m/s^2 and
// in the rolling-resistance term.
const standardGravity = 9.80665

// cvPerWatt converts watts to metric horsepower.
const cvPerWatt = 735.5

// minWheelSpeedMps is the low-speed rejection threshold (5 km/h).
const minWheelSpeedMps = 5.0 / 3.6

func at(arr []float64, i int) float64 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}

// Compute iterates the selected laps' sample ranges and returns every
// accepted sample point, applying the rejection rules and force model.
// selectedLaps holds indices into laps; an empty selection means "all
// laps".
func Compute(ch telemetry.Channels, laps []telemetry.Lap, selectedLaps []int, cfg telemetry.VehicleConfig, req telemetry.LoggerRunRequest, density envmodel.Density) []result.SamplePoint {
	lapIndices := selectedLaps
	if len(lapIndices) == 0 {
		lapIndices = make([]int, len(laps))
		for i := range laps {
			lapIndices[i] = i
		}
	}

	radiusM := cfg.Tyre.RadiusM()
	finalRatio := cfg.FinalDrive.Ratio()

	out := make([]result.SamplePoint, 0)
	for _, lapIdx := range lapIndices {
		if lapIdx < 0 || lapIdx >= len(laps) {
			continue
		}
		lap := laps[lapIdx]
		for i := lap.Start; i < lap.End && i < ch.Len(); i++ {
			vMps := at(ch.GPSSpeedKmh, i) / 3.6
			aMps2 := at(ch.LonAccelG, i) * standardGravity
			rpmVal := at(ch.EngineRPM, i)

			if vMps < minWheelSpeedMps {
				continue
			}
			if aMps2 <= 0 && !cfg.Params.RetainCoastingSamples {
				continue
			}
			if rpmVal < req.MinRPM || rpmVal > req.MaxRPM {
				continue
			}

			g, totalRatio := gear.Detect(rpmVal, vMps, radiusM, finalRatio, cfg.Engine)
			if g == 0 {
				continue
			}

			fDrag := 0.5 * float64(density) * cfg.Kart.FrontalAreaM2 * cfg.Kart.DragCoefficient * vMps * vMps
			fRoll := cfg.Kart.MassKg * standardGravity * (cfg.Tyre.RollingC1 + cfg.Tyre.RollingC2*vMps*vMps)
			fLinear := cfg.Kart.MassKg * aMps2
			fWheel := 2 * cfg.Tyre.InertiaKgM2 * (aMps2 / radiusM) / radiusM
			fEngine := cfg.Engine.InertiaKgM2 * (aMps2 / radiusM) * totalRatio * totalRatio / radiusM

			fTotal := fLinear + fDrag + fRoll + fWheel + fEngine
			powerW := fTotal * vMps
			powerCV := powerW / cvPerWatt
			torqueNm := fTotal * radiusM

			maxPowerCV := cfg.Params.MaxWheelPowerCV
			if powerCV < 0 || (maxPowerCV > 0 && powerCV > maxPowerCV) {
				continue
			}

			out = append(out, result.SamplePoint{
				SampleIndex:  i,
				LapIndex:     lapIdx,
				TimeSec:      at(ch.Time, i),
				EngineRPM:    rpmVal,
				WheelSpeedKm: at(ch.GPSSpeedKmh, i),
				WheelPowerCV: powerCV,
				WheelTorqueN: torqueNm,
				Gear:         g,
				HeadTemp:     at(ch.HeadTemp, i),
				CoolantTemp:  at(ch.CoolantTemp, i),
				ExhaustTemp:  at(ch.ExhaustTemp, i),
				Lambda:       at(ch.Lambda, i),
			})
		}
	}
	return out
}
