package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/slipsense/internal/service/inspect"
)

// inspectCmd prints raster summaries.
var inspectCmd = &cobra.Command{
	Use:   "inspect <grid.asc>...",
	Short: "Summarize raster files.",
	Long: `Prints the size, coordinate reference, transform, no-data value and value
range of each raster. Layers with few distinct integer values, such as the
hazard grid or the masks, also get per-value cell counts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		return inspect.Run(ctx, &inspect.Options{Paths: args, Out: cmd.OutOrStdout()})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(inspectCmd)
}
