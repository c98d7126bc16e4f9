package zonation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
)

// filled returns a rows x cols grid holding v everywhere.
func filled(t *testing.T, name string, rows, cols int, v float64) *raster.Grid {
	t.Helper()

	values := make([][]float64, rows)
	for r := range values {
		values[r] = make([]float64, cols)
		for c := range values[r] {
			values[r][c] = v
		}
	}

	g, err := raster.FromRows(name, values)
	require.NoError(t, err)

	return g
}

func stack(t *testing.T, rows, cols int, slope, acc, sus float64) *raster.Stack {
	t.Helper()

	s, err := raster.NewStack(
		filled(t, "elevation", rows, cols, 100),
		filled(t, "slope", rows, cols, slope),
		filled(t, "flow_accumulation", rows, cols, acc),
		filled(t, "susceptibility", rows, cols, sus),
	)
	require.NoError(t, err)

	return s
}

// TestTransit_BuffersPaths dilates burned cells by the radius.
func TestTransit_BuffersPaths(t *testing.T) {
	t.Parallel()

	paths := []hazard.Path{{Cells: []hazard.Cell{{Row: 5, Col: 5}, {Row: 5, Col: 6}}}}

	burned := Rasterize(paths, 11, 11)
	require.Equal(t, 2, burned.Count())

	transit := Transit(paths, 11, 11, 2)
	require.Equal(t, 5*6, transit.Count())
	require.True(t, transit.Get(3, 8))
	require.False(t, transit.Get(2, 5))

	require.True(t, Transit(nil, 4, 4, 5).Empty())
}

// TestDeposition_RequiresTransit keeps deposition empty without transit even
// where accumulation and slope qualify everywhere.
func TestDeposition_RequiresTransit(t *testing.T) {
	t.Parallel()

	s := stack(t, 6, 6, 10, 10000, 0)
	opts := DepositionOptions{StreamThreshold: 5000, AccumulationFactor: 2, MaxSlope: 15}

	require.True(t, Deposition(s, raster.NewMask(6, 6), opts).Empty())

	transit := raster.NewMask(6, 6)
	transit.Set(2, 3, true)

	deposition := Deposition(s, transit, opts)
	require.Equal(t, 1, deposition.Count())
	require.True(t, deposition.Get(2, 3))
}

// TestDeposition_Thresholds checks the accumulation and slope bounds.
func TestDeposition_Thresholds(t *testing.T) {
	t.Parallel()

	opts := DepositionOptions{StreamThreshold: 5000, AccumulationFactor: 2, MaxSlope: 15}
	transit := Transit([]hazard.Path{{Cells: []hazard.Cell{{Row: 1, Col: 1}}}}, 3, 3, 1)

	require.True(t, Deposition(stack(t, 3, 3, 15, 10000, 0), transit, opts).Get(1, 1))
	require.False(t, Deposition(stack(t, 3, 3, 15.5, 10000, 0), transit, opts).Get(1, 1))
	require.False(t, Deposition(stack(t, 3, 3, 5, 9999, 0), transit, opts).Get(1, 1))
}

// TestFuse_Precedence verifies Failure > Transit > Deposition > Safe.
func TestFuse_Precedence(t *testing.T) {
	t.Parallel()

	sus, err := raster.FromRows("susceptibility", [][]float64{
		{0.9, 0.9, 0.1, 0.1},
		{0.25, 0.1, 0.1, 0.1},
	})
	require.NoError(t, err)

	transit := raster.MaskFromRows([][]uint8{
		{1, 0, 1, 1},
		{1, 0, 0, 0},
	})
	deposition := raster.MaskFromRows([][]uint8{
		{1, 1, 0, 1},
		{0, 0, 1, 0},
	})

	fused := Fuse(sus, 0.25, transit, deposition)

	want := [][]hazard.Zone{
		{hazard.Failure, hazard.Failure, hazard.Transit, hazard.Transit},
		{hazard.Failure, hazard.Safe, hazard.Deposition, hazard.Safe},
	}
	for r, row := range want {
		for c, zone := range row {
			require.Equal(t, zone, fused.At(r, c), "cell (%d,%d)", r, c)
			require.True(t, fused.At(r, c).Valid())
		}
	}

	counts := fused.Counts()
	require.Equal(t, 3, counts[hazard.Failure])
	require.Equal(t, 2, counts[hazard.Transit])
	require.Equal(t, 1, counts[hazard.Deposition])
	require.Equal(t, 2, counts[hazard.Safe])
}

// TestFuse_FailureMatchesThreshold checks Failure cells equal the threshold set.
func TestFuse_FailureMatchesThreshold(t *testing.T) {
	t.Parallel()

	sus, err := raster.FromRows("susceptibility", [][]float64{
		{0.24, 0.25, 0.26, -1},
	})
	require.NoError(t, err)
	sus.SetNoData(-1)

	full := raster.MaskFromRows([][]uint8{{1, 1, 1, 1}})
	fused := Fuse(sus, 0.25, full, full)

	for c := range 4 {
		want := sus.AtLeast(0, c, 0.25)
		require.Equal(t, want, fused.At(0, c) == hazard.Failure, "col %d", c)
	}

	require.Equal(t, hazard.Transit, fused.At(0, 3))
}
