package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/slipsense/internal/config"
	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/logger"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
)

// Options contains inputs for the pipeline entry point.
type Options struct {
	// ConfigPath is the YAML settings file (defaults to slipsense.yaml).
	ConfigPath string
	// OutputDir overrides outputs.dir when set.
	OutputDir string
	// LogLevel overrides log_level when set.
	LogLevel string
	// Progress shows a tracing progress bar on the terminal.
	Progress bool
}

// Run loads the settings and executes one zonation run.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "pipeline")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.OutputDir != "" {
		cfg.Outputs.Dir = opts.OutputDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", hazard.ErrConfiguration, err)
	}

	report, err := Execute(ctx, cfg, opts.Progress)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Run completed",
		"run_id", report.RunID,
		"paths", report.Paths,
		"elapsed", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)

	return nil
}

// Execute runs the pipeline with already validated settings and returns the
// run report. Configuration problems are reported before anything is written.
func Execute(ctx context.Context, cfg *config.Config, progress bool) (*hazard.Report, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	report := &hazard.Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Settings:  cfg.Settings(),
	}

	ctx = logger.WithKV(ctx, "run_id", report.RunID)
	store := rasterrepo.NewFileStore()

	in, err := loadInputs(ctx, store, cfg)
	if err != nil {
		return nil, err
	}

	res, err := compute(ctx, cfg, in, progress)
	if err != nil {
		return nil, err
	}

	res.fill(report)

	if err = writeOutputs(ctx, store, cfg, in, res, report); err != nil {
		return nil, err
	}

	return report, nil
}
