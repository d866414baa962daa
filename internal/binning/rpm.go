package binning

import (
	"math"
	"sort"

	"github.com/relabs-tech/kartpower/internal/result"
)

const rpmBinWidth = 100.0

// BuildRPMBins groups accepted logger samples into 100-rpm bins,
// drops empty or non-positive-power bins, sorts ascending by bin
// centre, and smooths the power and torque arrays independently.
func BuildRPMBins(samples []result.SamplePoint, filterLevel float64) []result.RPMBinResult {
	type accum struct {
		speedSum, powerSum, torqueSum     float64
		headSum, coolantSum, exhaustSum   float64
		headN, coolantN, exhaustN         int
		lambdaSum                         float64
		lambdaN                           int
		count                             int
	}

	bins := map[float64]*accum{}
	for _, s := range samples {
		bin := math.Floor(s.EngineRPM/rpmBinWidth) * rpmBinWidth
		a, ok := bins[bin]
		if !ok {
			a = &accum{}
			bins[bin] = a
		}
		a.speedSum += s.WheelSpeedKm
		a.powerSum += s.WheelPowerCV
		a.torqueSum += s.WheelTorqueN
		a.count++
		if s.HeadTemp > 0 {
			a.headSum += s.HeadTemp
			a.headN++
		}
		if s.CoolantTemp > 0 {
			a.coolantSum += s.CoolantTemp
			a.coolantN++
		}
		if s.ExhaustTemp > 0 {
			a.exhaustSum += s.ExhaustTemp
			a.exhaustN++
		}
		if s.Lambda > 0 {
			a.lambdaSum += s.Lambda
			a.lambdaN++
		}
	}

	binCentres := make([]float64, 0, len(bins))
	for bin := range bins {
		binCentres = append(binCentres, bin)
	}
	sort.Float64s(binCentres)

	out := make([]result.RPMBinResult, 0, len(binCentres))
	for _, bin := range binCentres {
		a := bins[bin]
		if a.count == 0 {
			continue
		}
		meanPower := a.powerSum / float64(a.count)
		if meanPower <= 0 {
			continue
		}
		out = append(out, result.RPMBinResult{
			CentreRPM:    bin + 50,
			MeanSpeedKmh: a.speedSum / float64(a.count),
			MeanPowerCV:  meanPower,
			MeanTorqueNm: a.torqueSum / float64(a.count),
			MeanHeadTemp: meanOrZero(a.headSum, a.headN),
			MeanCoolant:  meanOrZero(a.coolantSum, a.coolantN),
			MeanExhaust:  meanOrZero(a.exhaustSum, a.exhaustN),
			MeanLambda:   meanOrZero(a.lambdaSum, a.lambdaN),
			SampleCount:  a.count,
		})
	}

	smoothBinArrays(out, filterLevel)
	return out
}

func meanOrZero(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func smoothBinArrays(bins []result.RPMBinResult, filterLevel float64) {
	if len(bins) == 0 {
		return
	}
	power := make([]float64, len(bins))
	torque := make([]float64, len(bins))
	for i, b := range bins {
		power[i] = b.MeanPowerCV
		torque[i] = b.MeanTorqueNm
	}
	power = Ladder(power, filterLevel)
	torque = Ladder(torque, filterLevel)
	for i := range bins {
		bins[i].MeanPowerCV = power[i]
		bins[i].MeanTorqueNm = torque[i]
	}
}
