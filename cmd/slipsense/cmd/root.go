package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/version"
)

var (
	// logLevel overrides the configured log level for every subcommand.
	logLevel string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "slipsense",
		Short: "Map landslide hazard zones from terrain rasters.",
		Long: `slipsense turns a susceptibility raster and its terrain stack (elevation,
slope, flow accumulation) into a categorical hazard map.

Unstable source areas are extracted from the susceptibility grid, their
runout is traced downslope along D8 flow directions, and the corridor and
settling areas are fused with the failure cells into one grid:
0 Safe, 1 Deposition, 2 Transit, 3 Failure.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Configure(logLevel)
		},
	}
)

// Execute runs the slipsense CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")
}
