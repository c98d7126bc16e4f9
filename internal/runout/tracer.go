package runout

import (
	"context"
	"fmt"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/flow"
	"github.com/oshokin/slipsense/internal/raster"
)

// DefaultStepFactor multiplies the larger grid dimension into the step cap.
const DefaultStepFactor = 10

// Options configures a Tracer.
type Options struct {
	// StreamThreshold is the flow accumulation at which a cell is a stream.
	StreamThreshold float64
	// MaxSteps caps the number of steps per trace; zero selects
	// DefaultStepFactor times the larger grid dimension.
	MaxSteps int
}

// Tracer follows flow directions from seeds.
type Tracer struct {
	// directions is the D8 field being followed.
	directions *flow.Grid
	// accumulation decides when a trace reaches the stream network.
	accumulation *raster.Grid
	// visited is shared by every trace of one pass.
	visited *VisitedMask
	// opts holds the thresholds.
	opts Options
}

// NewTracer wires a tracer over one flow field and one visited mask.
func NewTracer(directions *flow.Grid, accumulation *raster.Grid, visited *VisitedMask, opts Options) (*Tracer, error) {
	rows, cols := directions.Dims()
	if accRows, accCols := accumulation.Dims(); accRows != rows || accCols != cols {
		return nil, fmt.Errorf("%w: flow directions %dx%d do not match accumulation %dx%d",
			hazard.ErrConfiguration, rows, cols, accRows, accCols)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultStepFactor * max(rows, cols)
	}

	return &Tracer{
		directions:   directions,
		accumulation: accumulation,
		visited:      visited,
		opts:         opts,
	}, nil
}

// Trace follows one seed and returns its path. The path always starts at
// the seed cell; a seed already claimed by an earlier trace stops at once
// with AlreadyVisited.
func (t *Tracer) Trace(seed hazard.Seed) hazard.Path {
	path := hazard.Path{Seed: seed, Cells: []hazard.Cell{seed.Cell}}

	if !t.visited.Claim(seed.Cell) {
		path.Termination = hazard.AlreadyVisited

		return path
	}

	current := seed.Cell

	for steps := 1; ; steps++ {
		if steps > t.opts.MaxSteps {
			path.Termination = hazard.MaxStepsExceeded

			return path
		}

		dir := t.directions.At(current)
		if dir == flow.None {
			path.Termination = hazard.NoDescent

			return path
		}

		next := dir.Next(current)
		if !t.accumulation.InBounds(next.Row, next.Col) {
			path.Termination = hazard.OutOfBounds

			return path
		}

		if t.accumulation.AtLeast(next.Row, next.Col, t.opts.StreamThreshold) {
			path.Cells = append(path.Cells, next)
			path.Termination = hazard.ReachedStream

			return path
		}

		if !t.visited.Claim(next) {
			path.Termination = hazard.AlreadyVisited

			return path
		}

		path.Cells = append(path.Cells, next)
		current = next
	}
}

// Result collects the paths of one tracing pass.
type Result struct {
	// Paths holds every path with at least two cells, in seed order.
	Paths []hazard.Path
	// Discarded counts single-cell traces dropped for lack of geometry.
	Discarded int
	// Terminations tallies the reasons of all traces, discarded included.
	Terminations map[hazard.Termination]int
}

// TraceAll traces the seeds in order. Paths are numbered from zero in the
// order they are kept. onSeed, when set, is called after every seed.
func (t *Tracer) TraceAll(ctx context.Context, seeds []hazard.Seed, onSeed func()) (*Result, error) {
	result := &Result{Terminations: make(map[hazard.Termination]int)}

	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("trace runout paths: %w", err)
		}

		path := t.Trace(seed)
		result.Terminations[path.Termination]++

		if path.Len() > 1 {
			path.ID = len(result.Paths)
			result.Paths = append(result.Paths, path)
		} else {
			result.Discarded++
		}

		if onSeed != nil {
			onSeed()
		}
	}

	return result, nil
}
