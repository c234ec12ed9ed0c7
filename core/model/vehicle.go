package model

import "fmt"

// Physical constants of the consumption model.
const (
	// Standard atmospheric pressure at sea level, in Pascal (N/m²).
	atmosphericPressurePa = 101325
	// Specific gas constant for dry air, in J/(K·kg).
	dryAirGasConstant = 287.053
	// 0°C in Kelvin.
	zeroCelsiusKelvin = 273.15
	// Gravity at Earth's surface, in m/s².
	standardGravity = 9.81
	// 1 N = 1 Ws/m = (100/3600) kWh/100km.
	newtonToKWhPer100Km = 100.0 / 3600.0
)

// AirDensity returns the air density in kg/m³ at the given temperature,
// using the ideal gas law rho = P / (R·T) at standard sea-level pressure.
func AirDensity(temperatureC float64) float64 {
	return atmosphericPressurePa / (dryAirGasConstant * (zeroCelsiusKelvin + temperatureC))
}

// KmhToMs converts a speed from km/h to m/s.
func KmhToMs(speedKmh float64) float64 {
	return speedKmh * (1000.0 / 3600.0)
}

// Vehicle holds the static physical parameters of an electric vehicle.
// MKS units unless noted otherwise.
type Vehicle struct {
	Mass                   float64 // kg, total weight including passengers and load
	DragArea               float64 // CdA, m²
	RollingResistanceCoeff float64 // dimensionless
	DrivetrainEfficiency   float64 // dimensionless, in (0,1]
	IdlePowerW             float64 // W, speed-independent draw (e.g. battery cooling)
}

// Validate checks that the vehicle configuration is physically sound.
func (v Vehicle) Validate() error {
	if v.Mass <= 0 {
		return fmt.Errorf("vehicle mass must be positive")
	}
	if v.DragArea <= 0 {
		return fmt.Errorf("drag area must be positive")
	}
	if v.RollingResistanceCoeff < 0 {
		return fmt.Errorf("rolling resistance coefficient must not be negative")
	}
	if v.DrivetrainEfficiency <= 0 || v.DrivetrainEfficiency > 1 {
		return fmt.Errorf("drivetrain efficiency must be in (0,1]")
	}
	if v.IdlePowerW < 0 {
		return fmt.Errorf("idle power must not be negative")
	}
	return nil
}

func (v Vehicle) rollingResistanceForce() float64 {
	normalForce := v.Mass * standardGravity
	return v.RollingResistanceCoeff * normalForce
}

func (v Vehicle) airDragForce(speedMs, temperatureC float64) float64 {
	speedSq := speedMs * speedMs
	return 0.5 * AirDensity(temperatureC) * v.DragArea * speedSq
}

// ConsumptionKWhPer100Km returns the energy consumption in kWh/100km at a
// constant speed (km/h) on a flat surface at the given ambient temperature
// (°C). Idle power contributes an equivalent force of P/v (1 W = 1 N·m/s)
// outside the drivetrain term, since it does not pass through the drivetrain.
func (v Vehicle) ConsumptionKWhPer100Km(speedKmh, temperatureC float64) float64 {
	speedMs := KmhToMs(speedKmh)
	force := (v.rollingResistanceForce()+v.airDragForce(speedMs, temperatureC))/v.DrivetrainEfficiency +
		v.IdlePowerW/speedMs
	return force * newtonToKWhPer100Km
}
