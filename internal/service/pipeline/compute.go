package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ctessum/geom"
	"github.com/gosuri/uiprogress"

	"github.com/oshokin/slipsense/internal/config"
	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/flow"
	"github.com/oshokin/slipsense/internal/logger"
	"github.com/oshokin/slipsense/internal/raster"
	"github.com/oshokin/slipsense/internal/repository/postgis"
	"github.com/oshokin/slipsense/internal/reproject"
	"github.com/oshokin/slipsense/internal/runout"
	"github.com/oshokin/slipsense/internal/source"
	"github.com/oshokin/slipsense/internal/zonation"
)

// result holds every in-memory product of a run.
type result struct {
	directions *flow.Grid
	sources    source.Result
	trace      *runout.Result
	transit    *raster.Mask
	deposition *raster.Mask
	hazard     *zonation.HazardGrid
	// lines are the path geometries, index-aligned with trace.Paths.
	lines []geom.LineString
	// geographic tells whether lines hold WGS84 coordinates.
	geographic bool
}

// compute runs every algorithmic stage on loaded inputs.
func compute(ctx context.Context, cfg *config.Config, in *inputs, progress bool) (*result, error) {
	stack := in.stack
	rows, cols := stack.Elevation.Dims()
	thresholds := cfg.Thresholds
	res := new(result)

	// Reject an unusable reference before any heavy work.
	reprojector, err := reproject.New(stack.Geometry())
	if err != nil {
		return nil, err
	}

	if cfg.PostGIS.DSN != "" && reprojector.Passthrough() {
		return nil, postgis.ErrNotGeographic
	}

	if in.flowCodes != nil {
		res.directions, err = flow.Decode(in.flowCodes, in.encoding)
	} else {
		workers := cfg.Workers
		if workers == 0 {
			workers = runtime.NumCPU()
		}

		res.directions, err = flow.Compute(ctx, stack.Elevation, workers)
	}

	if err != nil {
		return nil, err
	}

	res.sources = source.Extract(stack.Susceptibility, source.Options{
		Threshold: thresholds.Failure,
		MinSize:   thresholds.MinSourceSize,
	})

	logger.InfoKV(ctx, "Sources extracted",
		"threshold_cells", res.sources.ThresholdCells,
		"denoised_cells", res.sources.DenoisedCells,
		"components", res.sources.Components,
		"seeds", len(res.sources.Seeds),
	)

	if len(res.sources.Seeds) == 0 {
		logger.Warn(ctx, "No source seeds survived denoising, only the failure layer will be mapped")
	}

	maxSteps := cfg.Tracing.MaxSteps
	if maxSteps == 0 {
		maxSteps = cfg.Tracing.MaxStepsFactor * max(rows, cols)
	}

	tracer, err := runout.NewTracer(res.directions, stack.FlowAccumulation, runout.NewVisitedMask(rows, cols), runout.Options{
		StreamThreshold: thresholds.Stream,
		MaxSteps:        maxSteps,
	})
	if err != nil {
		return nil, err
	}

	if res.trace, err = traceSeeds(ctx, tracer, res.sources.Seeds, progress); err != nil {
		return nil, err
	}

	for _, p := range res.trace.Paths {
		logger.DebugKV(ctx, "Path traced",
			"id", p.ID,
			"seed", p.Seed.Cell.String(),
			"cells", p.Len(),
			"termination", p.Termination.String(),
		)
	}

	logger.InfoKV(ctx, "Runout traced",
		"paths", len(res.trace.Paths),
		"discarded", res.trace.Discarded,
		"terminations", terminationTally(res.trace.Terminations),
	)

	res.transit = zonation.Transit(res.trace.Paths, rows, cols, thresholds.TransitBuffer)
	res.deposition = zonation.Deposition(stack, res.transit, zonation.DepositionOptions{
		StreamThreshold:    thresholds.Stream,
		AccumulationFactor: thresholds.DepositionFactor,
		MaxSlope:           thresholds.MaxDepositionSlope,
	})
	res.hazard = zonation.Fuse(stack.Susceptibility, thresholds.Failure, res.transit, res.deposition)

	logger.InfoKV(ctx, "Zones fused",
		"transit_cells", res.transit.Count(),
		"deposition_cells", res.deposition.Count(),
		"zones", zoneTally(res.hazard.Counts()),
	)

	if res.lines, err = reprojector.GeographicLines(res.trace.Paths); err != nil {
		return nil, err
	}

	res.geographic = !reprojector.Passthrough()
	if !res.geographic {
		logger.Warn(ctx, "Grids carry no coordinate reference, runout paths stay in map coordinates")
	}

	return res, nil
}

// traceSeeds runs the tracer, optionally behind a terminal progress bar.
func traceSeeds(ctx context.Context, tracer *runout.Tracer, seeds []hazard.Seed, progress bool) (*runout.Result, error) {
	if !progress || len(seeds) == 0 {
		return tracer.TraceAll(ctx, seeds, nil)
	}

	bars := uiprogress.New()
	bars.Start()

	defer bars.Stop()

	bar := bars.AddBar(len(seeds)).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("tracing %d/%d", b.Current(), len(seeds))
	})

	return tracer.TraceAll(ctx, seeds, func() { bar.Incr() })
}

// fill copies the run counts into the report.
func (r *result) fill(report *hazard.Report) {
	rows, cols := r.directions.Dims()

	report.Rows, report.Cols = rows, cols
	report.Seeds = len(r.sources.Seeds)
	report.Paths = len(r.trace.Paths)
	report.Discarded = r.trace.Discarded
	report.Terminations = r.trace.Terminations
	report.Zones = r.hazard.Counts()
	report.TransitCells = r.transit.Count()
	report.DepositionCells = r.deposition.Count()
	report.Reprojected = r.geographic
}

func terminationTally(counts map[hazard.Termination]int) map[string]int {
	out := make(map[string]int, len(counts))
	for reason, n := range counts {
		out[reason.String()] = n
	}

	return out
}

func zoneTally(counts map[hazard.Zone]int) map[string]int {
	out := make(map[string]int, len(counts))
	for zone, n := range counts {
		out[zone.String()] = n
	}

	return out
}
