package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-gci/contour"
)

func regionsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "regions <contour>",
		Short: "List the voiced regions of a contour file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := contour.LoadFile(args[0])
			if err != nil {
				return err
			}

			regions := table.VoicedRegions()
			out := cmd.OutOrStdout()

			if jsonOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(struct {
					Regions   []contour.Region `json:"regions"`
					MeanPitch float64          `json:"mean_pitch"`
				}{regions, table.MeanVoicedPitch()})
			}

			for _, r := range regions {
				fmt.Fprintf(out, "%.3f %.3f %.3f\n", r.Start, r.End, r.Duration())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	return cmd
}
