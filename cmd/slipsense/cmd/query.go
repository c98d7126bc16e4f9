package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/slipsense/internal/service/query"
)

var (
	// queryOptions collects the flags of the query subcommand.
	queryOptions query.Options

	// queryCmd looks up the zone at a geographic position.
	queryCmd = &cobra.Command{
		Use:   "query <hazard.asc>",
		Short: "Report the hazard zone at a longitude/latitude.",
		Long: `Converts a WGS84 position to the grid cell that contains it and prints the
zone of that cell. Positions outside the grid are reported as an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			queryOptions.HazardPath = args[0]
			queryOptions.Out = cmd.OutOrStdout()

			return query.Run(ctx, &queryOptions)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	queryCmd.Flags().Float64Var(&queryOptions.Lon, "lon", 0, "longitude in degrees")
	queryCmd.Flags().Float64Var(&queryOptions.Lat, "lat", 0, "latitude in degrees")
	queryCmd.Flags().StringVarP(&queryOptions.SusceptibilityPath, "susceptibility", "s", "",
		"optional susceptibility grid to sample as well")

	_ = queryCmd.MarkFlagRequired("lon")
	_ = queryCmd.MarkFlagRequired("lat")

	rootCmd.AddCommand(queryCmd)
}
