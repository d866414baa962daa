package vconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vehicle.conf")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad_ParsesKnownKeysAndDefaultsTheRest(t *testing.T) {
	path := writeConfig(t, `# comment
KART_MASS_KG=180
FINAL_DRIVE_FRONT_TEETH=10
FINAL_DRIVE_REAR_TEETH=38
ENGINE_PRIMARY_IN=21
ENGINE_PRIMARY_OUT=61
ENGINE_GEARS=13:33,16:29,18:26,21:25,22:23,23:22
PARAM_RETAIN_COASTING_SAMPLES=true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 180.0, cfg.Kart.MassKg)
	assert.Equal(t, 10, cfg.FinalDrive.FrontTeeth)
	assert.Equal(t, 38, cfg.FinalDrive.RearTeeth)
	assert.Equal(t, 21, cfg.Engine.Primary.In)
	require.Len(t, cfg.Engine.Gears, 6)
	assert.Equal(t, 13, cfg.Engine.Gears[0].In)
	assert.Equal(t, 33, cfg.Engine.Gears[0].Out)
	assert.True(t, cfg.Params.RetainCoastingSamples)

	// Fields left unset still get the baseline defaults.
	assert.Greater(t, cfg.Kart.FrontalAreaM2, 0.0)
}

func TestLoad_UnknownKeyIsAnError(t *testing.T) {
	path := writeConfig(t, "NOT_A_KEY=1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoad_MalformedLineIsAnError(t *testing.T) {
	path := writeConfig(t, "KART_MASS_KG\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	require.Error(t, err)
}

func TestLoad_InvalidEngineGearsListIsAnError(t *testing.T) {
	path := writeConfig(t, "ENGINE_GEARS=13-33\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENGINE_GEARS")
}
