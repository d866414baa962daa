package gear

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/kartpower/internal/telemetry"
)

func sixSpeedEngine() telemetry.EngineConfig {
	return telemetry.EngineConfig{
		Primary: telemetry.GearRatio{In: 21, Out: 61},
		Gears: []telemetry.GearRatio{
			{In: 13, Out: 33},
			{In: 16, Out: 29},
			{In: 18, Out: 26},
			{In: 21, Out: 25},
			{In: 22, Out: 23},
			{In: 23, Out: 22},
		},
	}
}

func TestDetect_DirectDriveAlwaysGearOne(t *testing.T) {
	engine := telemetry.EngineConfig{Primary: telemetry.GearRatio{In: 1, Out: 5}}
	g, ratio := Detect(12000, 10, 0.14, 4.0, engine)
	assert.Equal(t, 1, g)
	assert.Equal(t, 5.0*4.0, ratio)
}

func TestDetect_BelowSpeedFloorReturnsNoGear(t *testing.T) {
	engine := sixSpeedEngine()
	g, ratio := Detect(12000, 0.5, 0.14, 3.9, engine)
	assert.Equal(t, 0, g)
	assert.Equal(t, 0.0, ratio)
}

func TestDetect_PicksClosestGearWithinThreshold(t *testing.T) {
	engine := sixSpeedEngine()
	finalRatio := 3.92
	wheelRadiusM := 0.139

	// Synthesize an observed ratio that matches gear 3 exactly, so the
	// implied rpm/wheelSpeed ratio should resolve unambiguously to gear 3.
	primary := engine.Primary.Ratio()
	gear3 := engine.Gears[2].Ratio()
	totalRatio := primary * gear3 * finalRatio

	wheelSpeedMps := 15.0
	omegaWheel := wheelSpeedMps / wheelRadiusM
	rpm := totalRatio * omegaWheel * 30 / 3.14159265358979

	g, ratio := Detect(rpm, wheelSpeedMps, wheelRadiusM, finalRatio, engine)
	assert.Equal(t, 3, g)
	assert.InDelta(t, totalRatio, ratio, 0.05)
}

func TestDetect_NoGearWithinThresholdReturnsZero(t *testing.T) {
	engine := sixSpeedEngine()
	// A low rpm paired with a high wheel speed implies a ratio far below
	// even top gear's, so no candidate should fall within the threshold.
	g, ratio := Detect(2000, 30, 0.139, 3.92, engine)
	assert.Equal(t, 0, g)
	assert.Equal(t, 0.0, ratio)
}
