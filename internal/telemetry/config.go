package telemetry

import "github.com/relabs-tech/kartpower/internal/apperr"

// GearRatio is an (in,out) tooth-count or reduction pair.
type GearRatio struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// Ratio returns Out/In, or 0 if In is zero.
func (g GearRatio) Ratio() float64 {
	if g.In == 0 {
		return 0
	}
	return float64(g.Out) / float64(g.In)
}

// EngineConfig describes the engine's inertia and drivetrain reductions.
// An empty Gears list means the engine is direct-drive.
type EngineConfig struct {
	InertiaKgM2 float64     `json:"inertiaKgM2"`
	Primary     GearRatio   `json:"primary"`
	Gears       []GearRatio `json:"gears"`
}

// IsDirectDrive reports whether the engine has no selectable gearbox.
func (e EngineConfig) IsDirectDrive() bool {
	return len(e.Gears) == 0
}

// KartConfig describes the chassis mass and aerodynamics.
type KartConfig struct {
	MassKg          float64 `json:"massKg"`
	FrontalAreaM2   float64 `json:"frontalAreaM2"`
	DragCoefficient float64 `json:"dragCoefficient"`
}

// TyreConfig describes the driven wheel geometry and rolling model.
type TyreConfig struct {
	DiameterMm  float64 `json:"diameterMm"`
	InertiaKgM2 float64 `json:"inertiaKgM2"`
	RollingC1   float64 `json:"rollingC1"`
	RollingC2   float64 `json:"rollingC2"`
}

// RadiusM returns the wheel radius in meters.
func (t TyreConfig) RadiusM() float64 {
	return t.DiameterMm / 2000.0
}

// FinalDrive is the rear/front sprocket tooth count pair.
type FinalDrive struct {
	FrontTeeth int `json:"frontTeeth"`
	RearTeeth  int `json:"rearTeeth"`
}

// Ratio returns RearTeeth/FrontTeeth, or 0 if FrontTeeth is zero.
func (f FinalDrive) Ratio() float64 {
	if f.FrontTeeth == 0 {
		return 0
	}
	return float64(f.RearTeeth) / float64(f.FrontTeeth)
}

// RunConditions describes ambient conditions for one session.
type RunConditions struct {
	PressureMbar float64 `json:"pressureMbar"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
	TrackGrip    float64 `json:"trackGrip"`
}

// Params carries thresholds that are configurable rather than
// hard-coded constants.
type Params struct {
	// MaxWheelPowerCV is the sanity-bound upper limit on accepted wheel
	// power. loggerpower.Compute applies no upper bound when it is 0;
	// ApplyDefaults replaces a 0 with the default of 100.
	MaxWheelPowerCV float64 `json:"maxWheelPowerCv"`
	// RetainCoastingSamples, when true, retains logger samples where
	// a<=0 instead of rejecting them as braking. Default false preserves
	// the reference behavior exactly.
	RetainCoastingSamples bool `json:"retainCoastingSamples"`
}

// VehicleConfig aggregates the configuration the pipeline needs for one
// logger-path or sensor-path run.
type VehicleConfig struct {
	Kart          KartConfig    `json:"kart"`
	Engine        EngineConfig  `json:"engine"`
	Tyre          TyreConfig    `json:"tyre"`
	FinalDrive    FinalDrive    `json:"finalDrive"`
	RunConditions RunConditions `json:"runConditions"`
	Params        Params        `json:"params"`
}

// DefaultVehicleConfig returns the baseline vehicle defaults.
func DefaultVehicleConfig() VehicleConfig {
	return VehicleConfig{
		Kart: KartConfig{
			MassKg:          175,
			FrontalAreaM2:   0.5784,
			DragCoefficient: 0.804,
		},
		Engine: EngineConfig{
			InertiaKgM2: 0.003,
		},
		Tyre: TyreConfig{
			DiameterMm:  280,
			InertiaKgM2: 0.027,
			RollingC1:   0.03,
			RollingC2:   1e-5,
		},
		RunConditions: RunConditions{
			PressureMbar: 1013,
			TemperatureC: 20,
			HumidityPct:  50,
			TrackGrip:    0.8,
		},
		Params: Params{
			MaxWheelPowerCV: 100,
		},
	}
}

// ApplyDefaults fills zero-valued fields of cfg with the baseline
// defaults, in place. It never overwrites a field the caller already
// set to a non-zero value.
func ApplyDefaults(cfg *VehicleConfig) {
	def := DefaultVehicleConfig()

	if cfg.Kart.MassKg == 0 {
		cfg.Kart.MassKg = def.Kart.MassKg
	}
	if cfg.Kart.FrontalAreaM2 == 0 {
		cfg.Kart.FrontalAreaM2 = def.Kart.FrontalAreaM2
	}
	if cfg.Kart.DragCoefficient == 0 {
		cfg.Kart.DragCoefficient = def.Kart.DragCoefficient
	}
	if cfg.Engine.InertiaKgM2 == 0 {
		cfg.Engine.InertiaKgM2 = def.Engine.InertiaKgM2
	}
	if cfg.Tyre.DiameterMm == 0 {
		cfg.Tyre.DiameterMm = def.Tyre.DiameterMm
	}
	if cfg.Tyre.InertiaKgM2 == 0 {
		cfg.Tyre.InertiaKgM2 = def.Tyre.InertiaKgM2
	}
	if cfg.Tyre.RollingC1 == 0 {
		cfg.Tyre.RollingC1 = def.Tyre.RollingC1
	}
	if cfg.Tyre.RollingC2 == 0 {
		cfg.Tyre.RollingC2 = def.Tyre.RollingC2
	}
	if cfg.RunConditions.PressureMbar == 0 {
		cfg.RunConditions.PressureMbar = def.RunConditions.PressureMbar
	}
	if cfg.RunConditions.TemperatureC == 0 {
		cfg.RunConditions.TemperatureC = def.RunConditions.TemperatureC
	}
	if cfg.RunConditions.HumidityPct == 0 {
		cfg.RunConditions.HumidityPct = def.RunConditions.HumidityPct
	}
	if cfg.RunConditions.TrackGrip == 0 {
		cfg.RunConditions.TrackGrip = def.RunConditions.TrackGrip
	}
	if cfg.Params.MaxWheelPowerCV == 0 {
		cfg.Params.MaxWheelPowerCV = def.Params.MaxWheelPowerCV
	}
}

// Validate checks the vehicle config invariants: all teeth counts
// positive, diameter > 0, mass > 0.
func Validate(cfg VehicleConfig) error {
	const component = "telemetry.VehicleConfig"

	if cfg.Kart.MassKg <= 0 {
		return apperr.Newf(apperr.ConfigurationInvalid, component,
			"kart mass must be positive, got %v", cfg.Kart.MassKg)
	}
	if cfg.Tyre.DiameterMm <= 0 {
		return apperr.Newf(apperr.ConfigurationInvalid, component,
			"tyre diameter must be positive, got %v", cfg.Tyre.DiameterMm)
	}
	if cfg.FinalDrive.FrontTeeth <= 0 || cfg.FinalDrive.RearTeeth <= 0 {
		return apperr.Newf(apperr.ConfigurationInvalid, component,
			"final drive teeth counts must be positive, got front=%d rear=%d",
			cfg.FinalDrive.FrontTeeth, cfg.FinalDrive.RearTeeth)
	}
	if !cfg.Engine.IsDirectDrive() {
		if cfg.Engine.Primary.In <= 0 || cfg.Engine.Primary.Out <= 0 {
			return apperr.Newf(apperr.ConfigurationInvalid, component,
				"primary reduction teeth counts must be positive")
		}
		for i, g := range cfg.Engine.Gears {
			if g.In <= 0 || g.Out <= 0 {
				return apperr.Newf(apperr.ConfigurationInvalid, component,
					"gear %d teeth counts must be positive", i+1)
			}
		}
	}
	return nil
}

// LoggerRunRequest carries the per-invocation selections that are not
// part of the vehicle configuration: which laps to process, the
// accepted RPM window, and the smoothing filter level.
type LoggerRunRequest struct {
	SelectedLaps []int   `json:"selectedLaps"`
	MinRPM       float64 `json:"minRpm"`
	MaxRPM       float64 `json:"maxRpm"`
	FilterLevel  float64 `json:"filterLevel"`
}

// Validate checks that min_rpm and max_rpm are positive and min<max.
func (r LoggerRunRequest) Validate() error {
	const component = "telemetry.LoggerRunRequest"
	if r.MinRPM <= 0 || r.MaxRPM <= 0 {
		return apperr.Newf(apperr.ConfigurationInvalid, component,
			"min_rpm and max_rpm must be positive, got min=%v max=%v", r.MinRPM, r.MaxRPM)
	}
	if r.MinRPM >= r.MaxRPM {
		return apperr.Newf(apperr.ConfigurationInvalid, component,
			"min_rpm must be less than max_rpm, got min=%v max=%v", r.MinRPM, r.MaxRPM)
	}
	return nil
}
