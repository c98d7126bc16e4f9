package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/slipsense/internal/config"
	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/flow"
	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/raster"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
)

// inputs is the loaded and validated raster stack of a run.
type inputs struct {
	// stack holds the four aligned input grids.
	stack *raster.Stack
	// flowCodes is the optional precomputed D8 raster.
	flowCodes *raster.Grid
	// encoding is the D8 convention of flowCodes and of the written directions.
	encoding flow.Encoding
}

// loadInputs reads every configured grid concurrently and checks alignment.
func loadInputs(ctx context.Context, store *rasterrepo.FileStore, cfg *config.Config) (*inputs, error) {
	encoding, err := flow.ParseEncoding(cfg.Inputs.FlowDirectionEncoding)
	if err != nil {
		return nil, err
	}

	paths := []string{
		cfg.Inputs.Elevation,
		cfg.Inputs.Slope,
		cfg.Inputs.FlowAccumulation,
		cfg.Inputs.Susceptibility,
	}
	if cfg.Inputs.FlowDirection != "" {
		paths = append(paths, cfg.Inputs.FlowDirection)
	}

	grids := make([]*raster.Grid, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, path := range paths {
		group.Go(func() error {
			g, readErr := store.Read(groupCtx, filepath.Clean(path))
			if readErr != nil {
				return readErr
			}

			if cfg.Inputs.CRS != "" {
				g.CRS = cfg.Inputs.CRS
			}

			grids[i] = g

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}

	stack, err := raster.NewStack(grids[0], grids[1], grids[2], grids[3])
	if err != nil {
		return nil, err
	}

	in := &inputs{stack: stack, encoding: encoding}

	if len(grids) > 4 {
		in.flowCodes = grids[4]
		if err = stack.Elevation.Aligned(in.flowCodes.Geometry); err != nil {
			return nil, fmt.Errorf("flow direction vs elevation: %w", err)
		}
	}

	rows, cols := stack.Elevation.Dims()
	logger.InfoKV(ctx, "Inputs loaded",
		"rows", rows,
		"cols", cols,
		"crs", stack.Geometry().CRS != "",
		"external_flow_direction", in.flowCodes != nil,
	)

	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: input grids have no cells", hazard.ErrConfiguration)
	}

	return in, nil
}
