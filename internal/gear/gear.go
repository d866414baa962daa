// Package gear infers the engaged gear from the observed engine-speed
// to wheel-speed ratio.
package gear

import (
	"math"

	"github.com/relabs-tech/kartpower/internal/telemetry"
)

// relativeErrorThreshold is the maximum relative error between the
// observed and a candidate gear ratio for a detection to be accepted.
const relativeErrorThreshold = 0.15

// minWheelSpeedMps is the speed below which detection is not
// attempted at all.
const minWheelSpeedMps = 1.0

// Detect returns the 1-based gear index and the total drivetrain
// ratio used to reach it, or (0, 0) if no gear matches within
// relativeErrorThreshold or the engine is not turning the wheel fast
// enough to measure.
//
// A direct-drive engine (empty gear list) always returns gear 1 with
// the primary-reduction-times-final-drive ratio.
func Detect(rpm, wheelSpeedMps, wheelRadiusM, finalRatio float64, engine telemetry.EngineConfig) (gear int, totalRatio float64) {
	if engine.IsDirectDrive() {
		return 1, engine.Primary.Ratio() * finalRatio
	}

	if wheelSpeedMps < minWheelSpeedMps {
		return 0, 0
	}

	observed := (rpm * math.Pi / 30) / (wheelSpeedMps / wheelRadiusM)

	bestGear := 0
	bestErr := math.Inf(1)
	bestRatio := 0.0

	for i, g := range engine.Gears {
		candidate := engine.Primary.Ratio() * g.Ratio() * finalRatio
		if candidate == 0 {
			continue
		}
		relErr := math.Abs(observed-candidate) / candidate
		if relErr < bestErr {
			bestErr = relErr
			bestGear = i + 1
			bestRatio = candidate
		}
	}

	if bestGear == 0 || bestErr >= relativeErrorThreshold {
		return 0, 0
	}
	return bestGear, bestRatio
}
