// Package params resolves the user-supplied subset of physical parameters
// into a complete vehicle description, applying documented defaults and the
// drag-area fallback chain.
package params

import (
	"fmt"
	"strings"

	"github.com/kilianp07/evcurve/core/model"
)

// Defaults applied when the corresponding parameter is absent.
const (
	DefaultDragCoefficient        = 0.27
	DefaultRollingResistanceCoeff = 0.01
	DefaultDrivetrainEfficiency   = 0.9
	DefaultIdlePowerKW            = 0.5
	DefaultTemperatureC           = 20.0
	DefaultMaxSpeedKmh            = 200
	// Extra load assumed on top of the curb weight (driver plus luggage), kg.
	DefaultLoadWeightKg = 90.0
)

// Frontal area is not a rectangle; the 0.8 correction factor comes from
// "Prediction of vehicle reference frontal area" (OSTI 6602653).
const frontalAreaFactor = 0.8

// Input carries the raw user-supplied parameters. A nil field means the
// parameter was not provided.
type Input struct {
	WeightKg               *float64
	CurbWeightKg           *float64
	DragAreaM2             *float64
	DragCoefficient        *float64
	FrontalAreaM2          *float64
	WidthM                 *float64
	HeightM                *float64
	RollingResistanceCoeff *float64
	DrivetrainEfficiency   *float64
	IdlePowerKW            *float64
	HighwayConsumptionWhKm *float64
	TemperatureC           *float64
	MaxSpeedKmh            *float64
}

// Resolved is the complete parameter set produced by Resolve.
type Resolved struct {
	Vehicle      model.Vehicle
	TemperatureC float64
	MaxSpeedKmh  int
	// HighwayConsumptionKWh100Km is the optional calibration target at
	// 110 km/h and 23°C, converted to kWh/100km. Nil when not requested.
	HighwayConsumptionKWh100Km *float64
}

// MissingParameterError reports parameters that are required but could not
// be resolved from any fallback.
type MissingParameterError struct {
	Parameters []string
}

func (e *MissingParameterError) Error() string {
	return "missing parameter(s): " + strings.Join(e.Parameters, ", ")
}

// ConflictError reports mutually exclusive parameters given together.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// RangeError reports a parameter outside its plausible physical range.
type RangeError struct {
	Parameter string
	Value     float64
	Min, Max  float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%v is out of range [%v, %v]", e.Parameter, e.Value, e.Min, e.Max)
}

func checkRange(name string, v *float64, min, max float64) error {
	if v == nil {
		return nil
	}
	if *v < min || *v > max {
		return &RangeError{Parameter: name, Value: *v, Min: min, Max: max}
	}
	return nil
}

func validateRanges(in Input) error {
	checks := []struct {
		name     string
		value    *float64
		min, max float64
	}{
		{"weight", in.WeightKg, 200, 80000},
		{"curb-weight", in.CurbWeightKg, 200, 80000},
		{"drag-area", in.DragAreaM2, 0.1, 4.0},
		{"drag-coefficient", in.DragCoefficient, 0.03, 5.0},
		{"frontal-area", in.FrontalAreaM2, 0.5, 8.0},
		{"width", in.WidthM, 0.5, 4.0},
		{"height", in.HeightM, 0.5, 4.0},
		{"rolling-resistance-coefficient", in.RollingResistanceCoeff, 0.003, 0.05},
		{"drivetrain-efficiency", in.DrivetrainEfficiency, 0, 1},
		{"idle-power", in.IdlePowerKW, 0, 6},
		{"highway-consumption", in.HighwayConsumptionWhKm, 50, 1000},
		{"temperature", in.TemperatureC, -90, 60},
		{"max-speed", in.MaxSpeedKmh, 20, 250},
	}
	for _, c := range checks {
		if err := checkRange(c.name, c.value, c.min, c.max); err != nil {
			return err
		}
	}
	return nil
}

func validateConflicts(in Input) error {
	if in.WeightKg != nil && in.CurbWeightKg != nil {
		return &ConflictError{Reason: "cannot have both weight and curb-weight"}
	}
	if in.DragAreaM2 != nil &&
		(in.DragCoefficient != nil || in.FrontalAreaM2 != nil || in.WidthM != nil || in.HeightM != nil) {
		return &ConflictError{Reason: "if drag-area is given, cannot use drag-coefficient, frontal-area, width, or height"}
	}
	if in.FrontalAreaM2 != nil && (in.WidthM != nil || in.HeightM != nil) {
		return &ConflictError{Reason: "if frontal-area is given, cannot use width or height"}
	}
	if (in.WidthM == nil) != (in.HeightM == nil) {
		return &ConflictError{Reason: "width and height must be given together"}
	}
	return nil
}

// dragArea resolves the drag area in priority order: explicit drag area,
// else drag coefficient times frontal area, where the frontal area may in
// turn be derived from width and height.
func dragArea(in Input) (float64, error) {
	if in.DragAreaM2 != nil {
		return *in.DragAreaM2, nil
	}
	cd := DefaultDragCoefficient
	if in.DragCoefficient != nil {
		cd = *in.DragCoefficient
	}
	switch {
	case in.FrontalAreaM2 != nil:
		return cd * *in.FrontalAreaM2, nil
	case in.WidthM != nil && in.HeightM != nil:
		return cd * frontalAreaFactor * *in.WidthM * *in.HeightM, nil
	}
	return 0, &MissingParameterError{Parameters: []string{"drag-area", "frontal-area", "width", "height"}}
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// Resolve derives the full parameter set from the given input. It fails
// with MissingParameterError when the weight or every drag-area derivation
// path is absent, ConflictError on mutually exclusive inputs, and
// RangeError on values outside their plausible physical ranges.
func Resolve(in Input) (Resolved, error) {
	if err := validateRanges(in); err != nil {
		return Resolved{}, err
	}
	if err := validateConflicts(in); err != nil {
		return Resolved{}, err
	}

	var weight float64
	switch {
	case in.WeightKg != nil:
		weight = *in.WeightKg
	case in.CurbWeightKg != nil:
		weight = *in.CurbWeightKg + DefaultLoadWeightKg
	default:
		return Resolved{}, &MissingParameterError{Parameters: []string{"weight"}}
	}

	cda, err := dragArea(in)
	if err != nil {
		return Resolved{}, err
	}

	vehicle := model.Vehicle{
		Mass:                   weight,
		DragArea:               cda,
		RollingResistanceCoeff: orDefault(in.RollingResistanceCoeff, DefaultRollingResistanceCoeff),
		DrivetrainEfficiency:   orDefault(in.DrivetrainEfficiency, DefaultDrivetrainEfficiency),
		IdlePowerW:             1000 * orDefault(in.IdlePowerKW, DefaultIdlePowerKW),
	}
	if err := vehicle.Validate(); err != nil {
		return Resolved{}, err
	}

	res := Resolved{
		Vehicle:      vehicle,
		TemperatureC: orDefault(in.TemperatureC, DefaultTemperatureC),
		MaxSpeedKmh:  int(orDefault(in.MaxSpeedKmh, DefaultMaxSpeedKmh)),
	}
	if in.HighwayConsumptionWhKm != nil {
		// Wh/km -> kWh/100km.
		target := *in.HighwayConsumptionWhKm / 10
		res.HighwayConsumptionKWh100Km = &target
	}
	return res, nil
}
