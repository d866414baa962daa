package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/kartpower/internal/apperr"
)

func TestApplyDefaults_OnlyFillsZeroFields(t *testing.T) {
	cfg := VehicleConfig{Kart: KartConfig{MassKg: 200}}
	ApplyDefaults(&cfg)

	assert.Equal(t, 200.0, cfg.Kart.MassKg)
	assert.Equal(t, DefaultVehicleConfig().Kart.FrontalAreaM2, cfg.Kart.FrontalAreaM2)
	assert.Equal(t, DefaultVehicleConfig().Tyre.DiameterMm, cfg.Tyre.DiameterMm)
}

func TestValidate_RejectsNonPositiveMass(t *testing.T) {
	cfg := DefaultVehicleConfig()
	cfg.FinalDrive = FinalDrive{FrontTeeth: 10, RearTeeth: 40}
	cfg.Kart.MassKg = 0
	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigurationInvalid))
}

func TestValidate_RejectsZeroFinalDriveTeeth(t *testing.T) {
	cfg := DefaultVehicleConfig()
	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigurationInvalid))
}

func TestValidate_DirectDriveSkipsGearboxChecks(t *testing.T) {
	cfg := DefaultVehicleConfig()
	cfg.FinalDrive = FinalDrive{FrontTeeth: 10, RearTeeth: 40}
	require.NoError(t, Validate(cfg))
}

func TestValidate_RejectsInvalidGearTeeth(t *testing.T) {
	cfg := DefaultVehicleConfig()
	cfg.FinalDrive = FinalDrive{FrontTeeth: 10, RearTeeth: 40}
	cfg.Engine.Primary = GearRatio{In: 20, Out: 60}
	cfg.Engine.Gears = []GearRatio{{In: 0, Out: 30}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigurationInvalid))
}

func TestGearRatio_RatioHandlesZeroIn(t *testing.T) {
	assert.Equal(t, 0.0, GearRatio{}.Ratio())
	assert.Equal(t, 2.0, GearRatio{In: 10, Out: 20}.Ratio())
}

func TestEngineConfig_IsDirectDrive(t *testing.T) {
	assert.True(t, EngineConfig{}.IsDirectDrive())
	assert.False(t, EngineConfig{Gears: []GearRatio{{In: 1, Out: 2}}}.IsDirectDrive())
}

func TestTyreConfig_RadiusM(t *testing.T) {
	assert.Equal(t, 0.14, TyreConfig{DiameterMm: 280}.RadiusM())
}

func TestLoggerRunRequest_Validate(t *testing.T) {
	require.NoError(t, LoggerRunRequest{MinRPM: 8000, MaxRPM: 15000}.Validate())

	err := LoggerRunRequest{MinRPM: 0, MaxRPM: 15000}.Validate()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ConfigurationInvalid))

	err = LoggerRunRequest{MinRPM: 16000, MaxRPM: 15000}.Validate()
	require.Error(t, err)
}
