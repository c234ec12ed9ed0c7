// Package curve evaluates and formats constant-speed consumption curves in
// the piecewise-linear form used by routing APIs.
package curve

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/interp"

	"github.com/kilianp07/evcurve/core/model"
)

const (
	minSpeedKmh  = 10
	speedStepKmh = 10

	// Reference point for highway-consumption calibration.
	calibrationSpeedKmh = 110
	calibrationTempC    = 23
)

// Point is one constant-speed consumption sample.
type Point struct {
	SpeedKmh    int     `json:"speed_kmh"`
	KWhPer100Km float64 `json:"kwh_per_100km"`
}

// Curve is an ordered sequence of samples with strictly increasing speeds.
type Curve []Point

// Generate evaluates the vehicle's consumption every 10 km/h from 10 km/h
// up to maxSpeedKmh inclusive. The result is deterministic for fixed inputs.
func Generate(v model.Vehicle, temperatureC float64, maxSpeedKmh int) Curve {
	var c Curve
	for s := minSpeedKmh; s <= maxSpeedKmh; s += speedStepKmh {
		c = append(c, Point{
			SpeedKmh:    s,
			KWhPer100Km: v.ConsumptionKWhPer100Km(float64(s), temperatureC),
		})
	}
	return c
}

// Scale returns a copy of the curve with every consumption multiplied by
// factor.
func (c Curve) Scale(factor float64) Curve {
	out := make(Curve, len(c))
	for i, p := range c {
		out[i] = Point{SpeedKmh: p.SpeedKmh, KWhPer100Km: p.KWhPer100Km * factor}
	}
	return out
}

// CalibrationFactor returns the factor that makes the vehicle's consumption
// at 110 km/h and 23°C match the given target in kWh/100km. Measured highway
// consumption figures are stated under those reference conditions.
func CalibrationFactor(v model.Vehicle, targetKWh100Km float64) float64 {
	return targetKWh100Km / v.ConsumptionKWhPer100Km(calibrationSpeedKmh, calibrationTempC)
}

// At returns the consumption at an arbitrary speed by piecewise-linear
// interpolation between samples, the same way routing engines read the
// curve. Speeds outside the sampled range clamp to the nearest endpoint.
func (c Curve) At(speedKmh float64) (float64, error) {
	if len(c) < 2 {
		return 0, fmt.Errorf("curve needs at least two points, has %d", len(c))
	}
	xs := make([]float64, len(c))
	ys := make([]float64, len(c))
	for i, p := range c {
		xs[i] = float64(p.SpeedKmh)
		ys[i] = p.KWhPer100Km
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return 0, fmt.Errorf("fit curve: %w", err)
	}
	if speedKmh < xs[0] {
		speedKmh = xs[0]
	}
	if speedKmh > xs[len(xs)-1] {
		speedKmh = xs[len(xs)-1]
	}
	return pl.Predict(speedKmh), nil
}

// String formats the curve as "speed1,consumption1:speed2,consumption2:..."
// with speeds as integers and consumption rounded to two fraction digits.
func (c Curve) String() string {
	parts := make([]string, len(c))
	for i, p := range c {
		parts[i] = fmt.Sprintf("%d,%.2f", p.SpeedKmh, p.KWhPer100Km)
	}
	return strings.Join(parts, ":")
}
