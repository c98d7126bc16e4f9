package flow

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/slipsense/internal/raster"
)

// errEmpty is returned for grids without cells.
var errEmpty = errors.New("grid has no cells")

// Compute derives the D8 direction of every cell from the elevation grid.
// Rows are split into bands processed by up to workers goroutines; each
// band writes a disjoint part of the output, so no locking is needed.
// No-data cells get None and no-data neighbors are ignored.
func Compute(ctx context.Context, elevation *raster.Grid, workers int) (*Grid, error) {
	rows, cols := elevation.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("flow: %w", errEmpty)
	}

	workers = max(1, min(workers, rows))
	out := newGrid(rows, cols)
	band := (rows + workers - 1) / workers

	group, groupCtx := errgroup.WithContext(ctx)

	for start := 0; start < rows; start += band {
		end := min(start+band, rows)

		group.Go(func() error {
			for r := start; r < end; r++ {
				if err := groupCtx.Err(); err != nil {
					return err
				}

				for c := range cols {
					out.dirs[r*cols+c] = steepest(elevation, r, c)
				}
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("compute flow directions: %w", err)
	}

	return out, nil
}

// steepest returns the neighbor with the strictly greatest positive descent.
func steepest(elevation *raster.Grid, r, c int) Direction {
	center, ok := elevation.CellAt(r, c)
	if !ok {
		return None
	}

	best, bestSlope := None, 0.0

	for _, d := range Order {
		dr, dc := d.Offset()

		neighbor, ok := elevation.CellAt(r+dr, c+dc)
		if !ok || neighbor >= center {
			continue
		}

		if s := (center - neighbor) / d.Distance(); s > bestSlope {
			best, bestSlope = d, s
		}
	}

	return best
}
