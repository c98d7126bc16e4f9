package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/slipsense/internal/service/colorize"
)

var (
	// colorizeOptions collects the flags of the colorize subcommand.
	colorizeOptions colorize.Options

	// colorizeCmd renders a hazard grid as an image.
	colorizeCmd = &cobra.Command{
		Use:   "colorize <hazard.asc>",
		Short: "Render a hazard grid as a PNG.",
		Long: `Paints each cell with the tile palette: Safe transparent, Deposition yellow,
Transit orange, Failure red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			colorizeOptions.HazardPath = args[0]

			return colorize.Run(ctx, &colorizeOptions)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	colorizeCmd.Flags().StringVarP(&colorizeOptions.OutputPath, "output", "o", "hazard_zonation.png", "PNG file to write")
	colorizeCmd.Flags().IntVar(&colorizeOptions.Scale, "scale", 1, "pixels per cell")

	rootCmd.AddCommand(colorizeCmd)
}
