// Package envmodel computes humid-air density from ambient pressure,
// temperature, and relative humidity.
package envmodel

import (
	"math"

	"github.com/relabs-tech/kartpower/internal/telemetry"
)

// Gas constants in J/(kg*K).
const (
	dryAirGasConstant   = 287.05
	waterVapourConstant = 461.495
)

// Density is the humid-air mass density in kg/m^3.
type Density float64

// saturationVapourPressurePa returns the Magnus-formula saturation
// vapour pressure in pascals for temperature tC in Celsius.
func saturationVapourPressurePa(tC float64) float64 {
	return 610.78 * math.Exp(17.27*tC/(237.7+tC))
}

// FromConditions computes humid-air density from the run conditions
// (pressure in mbar, temperature in Celsius, relative humidity in
// percent) via the Magnus-formula saturation vapour pressure model.
func FromConditions(rc telemetry.RunConditions) Density {
	pPa := rc.PressureMbar * 100
	tKelvin := rc.TemperatureC + 273.15

	pSat := saturationVapourPressurePa(rc.TemperatureC)
	pVapour := (rc.HumidityPct / 100) * pSat
	pDry := pPa - pVapour

	rho := pDry/(dryAirGasConstant*tKelvin) + pVapour/(waterVapourConstant*tKelvin)
	return Density(rho)
}
