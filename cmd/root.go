package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evcurve/config"
	"github.com/kilianp07/evcurve/core/curve"
	"github.com/kilianp07/evcurve/core/params"
	"github.com/kilianp07/evcurve/infra/logger"
	"github.com/kilianp07/evcurve/pkg/export"
)

const longHelp = `Calculate the constant-speed consumption curve of an electric car from its
physical parameters. The curve indicates the consumption at a given constant
speed on a flat surface, formatted as "speed1,consumption1:speed2,consumption2:..."
with speed in km/h and consumption in kWh/100km, as consumed by routing APIs'
piecewise-linear consumption model.

Recommended usage:
  * Specify the total weight, or the curb weight.
  * Specify the drag area.
    * If the drag area is not available, specify drag coefficient and frontal area.
      * If the frontal area is not available, specify width and height.
  * Consider specifying rolling resistance coefficient, drivetrain efficiency,
    and idle power, if information on them is available.
  * Consider using different curves for different temperatures.

Example:
  evcurve --weight=1812 --width=1.805 --height=1.570`

func newRootCmd() *cobra.Command {
	var (
		cfgPath    string
		presetName string
		format     string
	)
	root := &cobra.Command{
		Use:          "evcurve",
		Short:        "Estimate an electric vehicle's constant-speed consumption curve",
		Long:         longHelp,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCurve(cmd, cfgPath, presetName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "line":
				_, err = fmt.Fprintln(out, c.String())
				return err
			case "json":
				return export.WriteJSON(out, c)
			case "csv":
				return export.WriteCSV(out, c)
			default:
				return fmt.Errorf("unknown format %q (want line, json or csv)", format)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.Float64("weight", 0, "total vehicle weight (kg), including passengers and load, typically 1400-2300")
	pf.Float64("curb-weight", 0, fmt.Sprintf("vehicle curb weight (kg), typically 1300-2200; assumes an extra load of %.0fkg", params.DefaultLoadWeightKg))
	pf.Float64("drag-area", 0, "drag area (CdA, m²), typically 0.4-1.0")
	pf.Float64("drag-coefficient", 0, fmt.Sprintf("drag coefficient (Cd, dimensionless), typically 0.2-0.4 (default %v)", params.DefaultDragCoefficient))
	pf.Float64("frontal-area", 0, "frontal area (m²), typically 2.0-2.7")
	pf.Float64("width", 0, "vehicle width (m), typically 1.7-2.0")
	pf.Float64("height", 0, "vehicle height (m), typically 1.4-1.8")
	pf.Float64("rolling-resistance-coefficient", 0, fmt.Sprintf("rolling resistance coefficient (dimensionless), typically 0.007-0.013 (default %v)", params.DefaultRollingResistanceCoeff))
	pf.Float64("drivetrain-efficiency", 0, fmt.Sprintf("drivetrain efficiency (dimensionless), typically 0.8-0.95 (default %v)", params.DefaultDrivetrainEfficiency))
	pf.Float64("idle-power", 0, fmt.Sprintf("idle power (kW), typically 0.5-1.5 (default %v)", params.DefaultIdlePowerKW))
	pf.Float64("highway-consumption", 0, "measured consumption at 110km/h and 23°C, without auxiliary consumption, in Wh/km; scales the curve so the 110km/h point matches")
	pf.Float64("temperature", 0, fmt.Sprintf("ambient temperature (°C), typically -15-35 (default %v)", params.DefaultTemperatureC))
	pf.Float64("max-speed", 0, fmt.Sprintf("maximum speed (km/h) of the curve (default %v)", params.DefaultMaxSpeedKmh))
	pf.StringVarP(&cfgPath, "config", "c", "", "vehicle preset file (YAML or JSON)")
	pf.StringVar(&presetName, "preset", "", "preset name from the config file")
	root.Flags().StringVar(&format, "format", "line", "output format: line, json or csv")

	root.AddCommand(newAtCmd(&cfgPath, &presetName))
	return root
}

// Execute runs the CLI.
func Execute() error { return newRootCmd().Execute() }

// resolveCurve turns flags and an optional preset into a resolved parameter
// set and its consumption curve, applying highway-consumption calibration
// when requested.
func resolveCurve(cmd *cobra.Command, cfgPath, presetName string) (curve.Curve, error) {
	logg := logger.New("evcurve")

	in := inputFromFlags(cmd)
	if presetName != "" && cfgPath == "" {
		return nil, fmt.Errorf("--preset requires --config")
	}
	if cfgPath != "" {
		f, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if presetName == "" {
			return nil, fmt.Errorf("--config requires --preset")
		}
		p, err := f.Preset(presetName)
		if err != nil {
			return nil, err
		}
		applyPreset(&in, p)
	}

	res, err := params.Resolve(in)
	if err != nil {
		return nil, err
	}
	logg.Debugf("resolved vehicle: mass=%.0fkg dragArea=%.4fm² crr=%v eff=%v idle=%.0fW temp=%v°C",
		res.Vehicle.Mass, res.Vehicle.DragArea, res.Vehicle.RollingResistanceCoeff,
		res.Vehicle.DrivetrainEfficiency, res.Vehicle.IdlePowerW, res.TemperatureC)

	c := curve.Generate(res.Vehicle, res.TemperatureC, res.MaxSpeedKmh)
	if res.HighwayConsumptionKWh100Km != nil {
		factor := curve.CalibrationFactor(res.Vehicle, *res.HighwayConsumptionKWh100Km)
		if factor < 0.5 || factor > 2 {
			logg.Warnf("highway-consumption calibration factor %.2f is far from 1; check the physical parameters", factor)
		}
		c = c.Scale(factor)
	}
	return c, nil
}

// inputFromFlags collects only the flags the user actually set, so the
// resolver can tell absent parameters from zero values.
func inputFromFlags(cmd *cobra.Command) params.Input {
	return params.Input{
		WeightKg:               floatFlag(cmd, "weight"),
		CurbWeightKg:           floatFlag(cmd, "curb-weight"),
		DragAreaM2:             floatFlag(cmd, "drag-area"),
		DragCoefficient:        floatFlag(cmd, "drag-coefficient"),
		FrontalAreaM2:          floatFlag(cmd, "frontal-area"),
		WidthM:                 floatFlag(cmd, "width"),
		HeightM:                floatFlag(cmd, "height"),
		RollingResistanceCoeff: floatFlag(cmd, "rolling-resistance-coefficient"),
		DrivetrainEfficiency:   floatFlag(cmd, "drivetrain-efficiency"),
		IdlePowerKW:            floatFlag(cmd, "idle-power"),
		HighwayConsumptionWhKm: floatFlag(cmd, "highway-consumption"),
		TemperatureC:           floatFlag(cmd, "temperature"),
		MaxSpeedKmh:            floatFlag(cmd, "max-speed"),
	}
}

func floatFlag(cmd *cobra.Command, name string) *float64 {
	fl := cmd.Flags().Lookup(name)
	if fl == nil || !fl.Changed {
		return nil
	}
	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		// Only reachable if the flag was registered with the wrong type.
		panic(err)
	}
	return &v
}

// applyPreset fills input fields the user left unset from the preset. Flags
// always win; within the weight and drag-area groups the preset is only
// consulted when the user set none of the group's flags, so a preset cannot
// conflict with an explicit flag.
func applyPreset(in *params.Input, p config.Preset) {
	setIf := func(dst **float64, v float64) {
		if v > 0 {
			val := v
			*dst = &val
		}
	}

	if in.WeightKg == nil && in.CurbWeightKg == nil {
		if p.WeightKg > 0 {
			setIf(&in.WeightKg, p.WeightKg)
		} else {
			setIf(&in.CurbWeightKg, p.CurbWeightKg)
		}
	}
	if in.DragAreaM2 == nil && in.DragCoefficient == nil && in.FrontalAreaM2 == nil &&
		in.WidthM == nil && in.HeightM == nil {
		if p.DragAreaM2 > 0 {
			setIf(&in.DragAreaM2, p.DragAreaM2)
		} else {
			setIf(&in.DragCoefficient, p.DragCoefficient)
			if p.FrontalAreaM2 > 0 {
				setIf(&in.FrontalAreaM2, p.FrontalAreaM2)
			} else if p.WidthM > 0 && p.HeightM > 0 {
				setIf(&in.WidthM, p.WidthM)
				setIf(&in.HeightM, p.HeightM)
			}
		}
	}
	if in.RollingResistanceCoeff == nil {
		setIf(&in.RollingResistanceCoeff, p.RollingResistanceCoeff)
	}
	if in.DrivetrainEfficiency == nil {
		setIf(&in.DrivetrainEfficiency, p.DrivetrainEfficiency)
	}
	if in.IdlePowerKW == nil {
		setIf(&in.IdlePowerKW, p.IdlePowerKW)
	}
	// Temperature is the one parameter where zero is a meaningful value; a
	// preset cannot distinguish 0°C from unset, so presets treat 0 as unset.
	if in.TemperatureC == nil && p.TemperatureC != 0 {
		val := p.TemperatureC
		in.TemperatureC = &val
	}
}
