package query

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/raster"
	"github.com/oshokin/slipsense/internal/reproject"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
)

// Options contains inputs for the query entry point.
type Options struct {
	// HazardPath is the fused hazard grid.
	HazardPath string
	// SusceptibilityPath is an optional susceptibility grid aligned with it.
	SusceptibilityPath string
	// Lon and Lat locate the point in WGS84.
	Lon, Lat float64
	// Out receives the answer.
	Out io.Writer
}

// Answer is the result of one lookup.
type Answer struct {
	Cell hazard.Cell
	Zone hazard.Zone
	// Susceptibility is set when a susceptibility grid was given and the
	// cell holds data.
	Susceptibility *float64
}

// Run loads the grids, answers one lookup and prints it.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "query")
	store := rasterrepo.NewFileStore()

	fused, err := store.Read(ctx, opts.HazardPath)
	if err != nil {
		return err
	}

	var susceptibility *raster.Grid
	if opts.SusceptibilityPath != "" {
		if susceptibility, err = store.Read(ctx, opts.SusceptibilityPath); err != nil {
			return err
		}

		if err = fused.Aligned(susceptibility.Geometry); err != nil {
			return fmt.Errorf("susceptibility vs hazard: %w", err)
		}
	}

	answer, err := Lookup(fused, susceptibility, opts.Lon, opts.Lat)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Point resolved", "lon", opts.Lon, "lat", opts.Lat, "cell", answer.Cell.String())

	line := fmt.Sprintf("%.6f,%.6f cell %s zone %s", opts.Lon, opts.Lat, answer.Cell, answer.Zone)
	if answer.Susceptibility != nil {
		line += fmt.Sprintf(" susceptibility %.4f", *answer.Susceptibility)
	}

	if _, err = fmt.Fprintln(opts.Out, line); err != nil {
		return fmt.Errorf("write answer: %w", err)
	}

	return nil
}

// Lookup resolves a WGS84 position to its cell and zone. Positions outside
// the grid fail with hazard.ErrOutOfBounds.
func Lookup(fused, susceptibility *raster.Grid, lon, lat float64) (*Answer, error) {
	reprojector, err := reproject.New(fused.Geometry)
	if err != nil {
		return nil, err
	}

	cell, err := reprojector.ToGridCoordinates(lon, lat)
	if err != nil {
		return nil, err
	}

	answer := &Answer{Cell: cell, Zone: hazard.Safe}

	if v, ok := fused.CellAt(cell.Row, cell.Col); ok {
		zone := hazard.Zone(v)
		if v < 0 || float64(zone) != v || !zone.Valid() {
			return nil, fmt.Errorf("cell %s holds %g, which is not a hazard zone", cell, v)
		}

		answer.Zone = zone
	}

	if susceptibility != nil {
		if v, ok := susceptibility.CellAt(cell.Row, cell.Col); ok {
			answer.Susceptibility = &v
		}
	}

	return answer, nil
}
