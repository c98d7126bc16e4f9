package runout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/flow"
	"github.com/oshokin/slipsense/internal/raster"
)

const (
	E  = flow.East
	SE = flow.SouthEast
	S  = flow.South
	W  = flow.West
	N  = flow.North
	NE = flow.NorthEast
	X  = flow.None
)

// accumulation returns a rows x cols grid of zeros with optional overrides.
func accumulation(t *testing.T, rows, cols int, set map[hazard.Cell]float64) *raster.Grid {
	t.Helper()

	values := make([][]float64, rows)
	for r := range values {
		values[r] = make([]float64, cols)
	}

	for c, v := range set {
		values[c.Row][c.Col] = v
	}

	g, err := raster.FromRows("flow_accumulation", values)
	require.NoError(t, err)

	return g
}

func newTracer(t *testing.T, dirs [][]flow.Direction, acc *raster.Grid, opts Options) *Tracer {
	t.Helper()

	grid, err := flow.FromRows(dirs)
	require.NoError(t, err)

	rows, cols := grid.Dims()

	tracer, err := NewTracer(grid, acc, NewVisitedMask(rows, cols), opts)
	require.NoError(t, err)

	return tracer
}

func seedAt(row, col int) hazard.Seed {
	return hazard.Seed{Cell: hazard.Cell{Row: row, Col: col}}
}

func requireUnique(t *testing.T, cells []hazard.Cell) {
	t.Helper()

	seen := make(map[hazard.Cell]bool, len(cells))
	for _, c := range cells {
		require.False(t, seen[c], "cell %s repeated", c)
		seen[c] = true
	}
}

// TestTrace_DiagonalToCorner follows a 4x4 field pointing to the lower
// right until the step off the corner leaves the grid.
func TestTrace_DiagonalToCorner(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{
		{SE, SE, SE, SE},
		{SE, SE, SE, SE},
		{SE, SE, SE, SE},
		{SE, SE, SE, SE},
	}
	tracer := newTracer(t, dirs, accumulation(t, 4, 4, nil), Options{StreamThreshold: 5000})

	path := tracer.Trace(seedAt(0, 0))
	require.Equal(t, hazard.OutOfBounds, path.Termination)
	require.Equal(t, []hazard.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}, {Row: 3, Col: 3}}, path.Cells)
	requireUnique(t, path.Cells)
}

// TestTrace_ComputedFieldEndsInPit traces a field derived from elevation;
// the lower-right corner is a pit.
func TestTrace_ComputedFieldEndsInPit(t *testing.T) {
	t.Parallel()

	elevation, err := raster.FromRows("elevation", [][]float64{
		{7, 6, 5, 4},
		{6, 5, 4, 3},
		{5, 4, 3, 2},
		{4, 3, 2, 1},
	})
	require.NoError(t, err)

	dirs, err := flow.Compute(context.Background(), elevation, 2)
	require.NoError(t, err)

	tracer, err := NewTracer(dirs, accumulation(t, 4, 4, nil), NewVisitedMask(4, 4), Options{StreamThreshold: 5000})
	require.NoError(t, err)

	path := tracer.Trace(seedAt(0, 0))
	require.Equal(t, hazard.NoDescent, path.Termination)
	require.Equal(t, 4, path.Len())
	require.Equal(t, hazard.Cell{Row: 3, Col: 3}, path.Last())
}

// TestTrace_EdgeSeedPointingOutward stops with OutOfBounds at the seed.
func TestTrace_EdgeSeedPointingOutward(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{
		{X, N, X},
		{X, X, X},
	}
	tracer := newTracer(t, dirs, accumulation(t, 2, 3, nil), Options{StreamThreshold: 10})

	path := tracer.Trace(seedAt(0, 1))
	require.Equal(t, hazard.OutOfBounds, path.Termination)
	require.Equal(t, 1, path.Len())
	require.Equal(t, hazard.Cell{Row: 0, Col: 1}, path.Last())
}

// TestTrace_ReachedStreamIncludesStreamCell checks the stream cell is the last point.
func TestTrace_ReachedStreamIncludesStreamCell(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{{E, E, E, E, E}}
	acc := accumulation(t, 1, 5, map[hazard.Cell]float64{{Row: 0, Col: 2}: 6000})
	tracer := newTracer(t, dirs, acc, Options{StreamThreshold: 5000})

	path := tracer.Trace(seedAt(0, 0))
	require.Equal(t, hazard.ReachedStream, path.Termination)
	require.Equal(t, 3, path.Len())
	require.Equal(t, hazard.Cell{Row: 0, Col: 2}, path.Last())
}

// TestTrace_CycleStops breaks a two-cell direction loop.
func TestTrace_CycleStops(t *testing.T) {
	t.Parallel()

	tracer := newTracer(t, [][]flow.Direction{{E, W}}, accumulation(t, 1, 2, nil), Options{StreamThreshold: 1})

	path := tracer.Trace(seedAt(0, 0))
	require.Equal(t, hazard.AlreadyVisited, path.Termination)
	require.Equal(t, 2, path.Len())
	requireUnique(t, path.Cells)
}

// TestTrace_MaxSteps bounds long traces.
func TestTrace_MaxSteps(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{{E, E, E, E, E, E, E, E, E, E}}
	tracer := newTracer(t, dirs, accumulation(t, 1, 10, nil), Options{StreamThreshold: 1e9, MaxSteps: 2})

	path := tracer.Trace(seedAt(0, 0))
	require.Equal(t, hazard.MaxStepsExceeded, path.Termination)
	require.Equal(t, 3, path.Len())
}

// TestTraceAll_ConvergingSeeds stops the second trace at the shared cell.
func TestTraceAll_ConvergingSeeds(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{
		{SE, X, X, X, X, X},
		{X, E, E, E, E, E},
		{X, E, NE, X, X, X},
	}
	tracer := newTracer(t, dirs, accumulation(t, 3, 6, nil), Options{StreamThreshold: 5000})

	result, err := tracer.TraceAll(context.Background(), []hazard.Seed{seedAt(0, 0), seedAt(2, 1)}, nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)

	first, second := result.Paths[0], result.Paths[1]
	require.Equal(t, hazard.OutOfBounds, first.Termination)
	require.Equal(t, 6, first.Len())

	require.Equal(t, hazard.AlreadyVisited, second.Termination)
	require.Equal(t, []hazard.Cell{{Row: 2, Col: 1}, {Row: 2, Col: 2}}, second.Cells)
	require.Equal(t, 1, second.ID)

	requireUnique(t, append(append([]hazard.Cell(nil), first.Cells...), second.Cells...))
}

// TestTraceAll_DiscardsSingleCellPaths counts dropped traces and tallies reasons.
func TestTraceAll_DiscardsSingleCellPaths(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{
		{X, S, X},
		{X, X, X},
	}
	tracer := newTracer(t, dirs, accumulation(t, 2, 3, nil), Options{StreamThreshold: 5000})

	calls := 0
	seeds := []hazard.Seed{seedAt(0, 0), seedAt(0, 1), seedAt(0, 1)}

	result, err := tracer.TraceAll(context.Background(), seeds, func() { calls++ })
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Len(t, result.Paths, 1)
	require.Equal(t, 0, result.Paths[0].ID)
	require.Equal(t, 2, result.Discarded)
	require.Equal(t, 2, result.Terminations[hazard.NoDescent])
	require.Equal(t, 1, result.Terminations[hazard.AlreadyVisited])
}

// TestTraceAll_Deterministic traces twice with fresh masks and compares.
func TestTraceAll_Deterministic(t *testing.T) {
	t.Parallel()

	dirs := [][]flow.Direction{
		{SE, S, S, X},
		{E, SE, S, W},
		{NE, E, SE, S},
		{E, E, E, X},
	}
	seeds := []hazard.Seed{seedAt(0, 0), seedAt(0, 2), seedAt(2, 0)}

	run := func() *Result {
		tracer := newTracer(t, dirs, accumulation(t, 4, 4, nil), Options{StreamThreshold: 5000})

		result, err := tracer.TraceAll(context.Background(), seeds, nil)
		require.NoError(t, err)

		return result
	}

	require.Equal(t, run(), run())
}

// TestTraceAll_Canceled stops between seeds.
func TestTraceAll_Canceled(t *testing.T) {
	t.Parallel()

	tracer := newTracer(t, [][]flow.Direction{{E, X}}, accumulation(t, 1, 2, nil), Options{StreamThreshold: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tracer.TraceAll(ctx, []hazard.Seed{seedAt(0, 0)}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

// TestNewTracer_ShapeMismatch rejects misaligned inputs.
func TestNewTracer_ShapeMismatch(t *testing.T) {
	t.Parallel()

	dirs, err := flow.FromRows([][]flow.Direction{{E, E}})
	require.NoError(t, err)

	_, err = NewTracer(dirs, accumulation(t, 2, 2, nil), NewVisitedMask(1, 2), Options{})
	require.ErrorIs(t, err, hazard.ErrConfiguration)
}

// TestVisitedMask_ConcurrentClaims lets exactly one goroutine win each cell.
func TestVisitedMask_ConcurrentClaims(t *testing.T) {
	t.Parallel()

	mask := NewVisitedMask(4, 4)
	cell := hazard.Cell{Row: 2, Col: 3}

	var (
		wins atomic.Int32
		wg   sync.WaitGroup
	)

	for range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if mask.Claim(cell) {
				wins.Add(1)
			}
		}()
	}

	wg.Wait()
	require.Equal(t, int32(1), wins.Load())
	require.True(t, mask.Visited(cell))
	require.False(t, mask.Claim(hazard.Cell{Row: -1, Col: 0}))
	require.False(t, mask.Visited(hazard.Cell{Row: 9, Col: 9}))
}
