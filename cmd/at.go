package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAtCmd reports the consumption at one arbitrary speed, interpolated
// between curve samples the same way a routing engine would.
func newAtCmd(cfgPath, presetName *string) *cobra.Command {
	var speed float64
	at := &cobra.Command{
		Use:   "at",
		Short: "Interpolate the consumption at a single speed",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCurve(cmd, *cfgPath, *presetName)
			if err != nil {
				return err
			}
			cons, err := c.At(speed)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", cons)
			return err
		},
	}
	at.Flags().Float64Var(&speed, "speed", 0, "speed in km/h")
	if err := at.MarkFlagRequired("speed"); err != nil {
		panic(err)
	}
	return at
}
