package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/slipsense/internal/config"
	"github.com/oshokin/slipsense/internal/service/pipeline"
)

var (
	// runOptions collects the flags of the run subcommand.
	runOptions pipeline.Options

	// runCmd executes one zonation run.
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the hazard zonation pipeline.",
		Long: `Loads the four input rasters named in the settings file, traces runout paths
from the unstable source areas and writes the fused hazard grid, the transit
and deposition masks, the runout paths as GeoJSON and a run report.

Outputs are written together: if any input is missing or misaligned, or any
threshold is invalid, nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			runOptions.LogLevel = logLevel

			return pipeline.Run(ctx, &runOptions)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().StringVarP(&runOptions.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	runCmd.Flags().StringVarP(&runOptions.OutputDir, "output-dir", "o", "", "override outputs.dir")
	runCmd.Flags().BoolVarP(&runOptions.Progress, "progress", "p", false, "show a tracing progress bar")

	rootCmd.AddCommand(runCmd)
}
