// Package vconfig loads a vehicle/engine/tyre/run-conditions
// configuration file for the analyze CLI. The core never reads files
// itself; this is an external collaborator.
package vconfig

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/relabs-tech/kartpower/internal/telemetry"
)

// Load reads a KEY=VALUE vehicle configuration file, applies the
// baseline defaults to any field left unset, and validates the result.
func Load(path string) (telemetry.VehicleConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return telemetry.VehicleConfig{}, fmt.Errorf("failed to open vehicle config file: %w", err)
	}
	defer file.Close()

	cfg := telemetry.VehicleConfig{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return telemetry.VehicleConfig{}, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := setValue(&cfg, key, value); err != nil {
			return telemetry.VehicleConfig{}, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return telemetry.VehicleConfig{}, fmt.Errorf("error reading vehicle config file: %w", err)
	}

	telemetry.ApplyDefaults(&cfg)
	if err := telemetry.Validate(cfg); err != nil {
		return telemetry.VehicleConfig{}, err
	}
	return cfg, nil
}

func setValue(c *telemetry.VehicleConfig, key, value string) error {
	switch key {
	case "KART_MASS_KG":
		return setFloat(&c.Kart.MassKg, key, value)
	case "KART_FRONTAL_AREA_M2":
		return setFloat(&c.Kart.FrontalAreaM2, key, value)
	case "KART_DRAG_COEFFICIENT":
		return setFloat(&c.Kart.DragCoefficient, key, value)

	case "ENGINE_INERTIA_KGM2":
		return setFloat(&c.Engine.InertiaKgM2, key, value)
	case "ENGINE_PRIMARY_IN":
		return setInt(&c.Engine.Primary.In, key, value)
	case "ENGINE_PRIMARY_OUT":
		return setInt(&c.Engine.Primary.Out, key, value)
	case "ENGINE_GEARS":
		gears, err := parseGearList(value)
		if err != nil {
			return fmt.Errorf("invalid ENGINE_GEARS %q: %w", value, err)
		}
		c.Engine.Gears = gears

	case "TYRE_DIAMETER_MM":
		return setFloat(&c.Tyre.DiameterMm, key, value)
	case "TYRE_INERTIA_KGM2":
		return setFloat(&c.Tyre.InertiaKgM2, key, value)
	case "TYRE_ROLLING_C1":
		return setFloat(&c.Tyre.RollingC1, key, value)
	case "TYRE_ROLLING_C2":
		return setFloat(&c.Tyre.RollingC2, key, value)

	case "FINAL_DRIVE_FRONT_TEETH":
		return setInt(&c.FinalDrive.FrontTeeth, key, value)
	case "FINAL_DRIVE_REAR_TEETH":
		return setInt(&c.FinalDrive.RearTeeth, key, value)

	case "RUN_PRESSURE_MBAR":
		return setFloat(&c.RunConditions.PressureMbar, key, value)
	case "RUN_TEMPERATURE_C":
		return setFloat(&c.RunConditions.TemperatureC, key, value)
	case "RUN_HUMIDITY_PCT":
		return setFloat(&c.RunConditions.HumidityPct, key, value)
	case "RUN_TRACK_GRIP":
		return setFloat(&c.RunConditions.TrackGrip, key, value)

	case "PARAM_MAX_WHEEL_POWER_CV":
		return setFloat(&c.Params.MaxWheelPowerCV, key, value)
	case "PARAM_RETAIN_COASTING_SAMPLES":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		c.Params.RetainCoastingSamples = b

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return nil
}

func setFloat(field *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*field = v
	return nil
}

func setInt(field *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*field = v
	return nil
}

// parseGearList parses "in:out,in:out,..." into an ordered gear list.
func parseGearList(value string) ([]telemetry.GearRatio, error) {
	fields := strings.Split(value, ",")
	out := make([]telemetry.GearRatio, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		pair := strings.SplitN(f, ":", 2)
		if len(pair) != 2 {
			return nil, fmt.Errorf("expected in:out, got %q", f)
		}
		in, err := strconv.Atoi(strings.TrimSpace(pair[0]))
		if err != nil {
			return nil, err
		}
		out2, err := strconv.Atoi(strings.TrimSpace(pair[1]))
		if err != nil {
			return nil, err
		}
		out = append(out, telemetry.GearRatio{In: in, Out: out2})
	}
	return out, nil
}
