package flow

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
)

func mustGrid(t *testing.T, rows [][]float64) *raster.Grid {
	t.Helper()

	g, err := raster.FromRows("elevation", rows)
	require.NoError(t, err)

	return g
}

// TestCompute_SteepestDescent checks diagonal distance weighting.
func TestCompute_SteepestDescent(t *testing.T) {
	t.Parallel()

	// Center 10: S drops 3 (slope 3), SE drops 4 (slope 4/sqrt2 = 2.83).
	elevation := mustGrid(t, [][]float64{
		{10, 10, 10},
		{10, 10, 10},
		{10, 7, 6},
	})

	dirs, err := Compute(context.Background(), elevation, 2)
	require.NoError(t, err)
	require.Equal(t, South, dirs.At(hazard.Cell{Row: 1, Col: 1}))

	// Pits and flats have no descent.
	require.Equal(t, None, dirs.At(hazard.Cell{Row: 2, Col: 2}))
	require.Equal(t, None, dirs.At(hazard.Cell{Row: 0, Col: 9}))
}

// TestCompute_TieBreakOrder verifies ties keep the first neighbor in E, SE, S, ... order.
func TestCompute_TieBreakOrder(t *testing.T) {
	t.Parallel()

	elevation := mustGrid(t, [][]float64{
		{5, 5, 5},
		{4, 5, 4},
		{5, 4, 5},
	})

	dirs, err := Compute(context.Background(), elevation, 1)
	require.NoError(t, err)
	// E, S and W all drop by 1; E comes first.
	require.Equal(t, East, dirs.At(hazard.Cell{Row: 1, Col: 1}))
}

// TestCompute_NoData ignores missing neighbors and marks missing centers None.
func TestCompute_NoData(t *testing.T) {
	t.Parallel()

	elevation := mustGrid(t, [][]float64{
		{9, -9999, 8},
		{math.NaN(), 9, 9},
	})
	elevation.SetNoData(-9999)

	dirs, err := Compute(context.Background(), elevation, 4)
	require.NoError(t, err)
	require.Equal(t, None, dirs.At(hazard.Cell{Row: 0, Col: 1}))
	require.Equal(t, None, dirs.At(hazard.Cell{Row: 1, Col: 0}))
	require.Equal(t, NorthEast, dirs.At(hazard.Cell{Row: 1, Col: 1}))
}

// TestCompute_Deterministic compares outputs for different worker counts.
func TestCompute_Deterministic(t *testing.T) {
	t.Parallel()

	rows := make([][]float64, 40)
	for r := range rows {
		rows[r] = make([]float64, 30)
		for c := range rows[r] {
			rows[r][c] = math.Sin(float64(r)*0.3) + math.Cos(float64(c)*0.2) + float64(r+c)*0.01
		}
	}

	elevation := mustGrid(t, rows)

	one, err := Compute(context.Background(), elevation, 1)
	require.NoError(t, err)

	many, err := Compute(context.Background(), elevation, 7)
	require.NoError(t, err)
	require.Equal(t, one.dirs, many.dirs)
}

// TestCompute_Canceled returns the context error.
func TestCompute_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(ctx, mustGrid(t, [][]float64{{1, 2}}), 1)
	require.ErrorIs(t, err, context.Canceled)
}

// TestDecode covers both external encodings and invalid codes.
func TestDecode(t *testing.T) {
	t.Parallel()

	codes := mustGrid(t, [][]float64{{1, 2, 128, 3, 2.5, -9999}})
	codes.SetNoData(-9999)

	bitmask, err := Decode(codes, Bitmask)
	require.NoError(t, err)

	want := []Direction{East, SouthEast, NorthEast, None, None, None}
	for c, d := range want {
		require.Equal(t, d, bitmask.At(hazard.Cell{Row: 0, Col: c}), "col %d", c)
	}

	index, err := Decode(codes, Index)
	require.NoError(t, err)
	require.Equal(t, NorthEast, index.At(hazard.Cell{Row: 0, Col: 0}))
	require.Equal(t, North, index.At(hazard.Cell{Row: 0, Col: 1}))
	require.Equal(t, None, index.At(hazard.Cell{Row: 0, Col: 2}))
	require.Equal(t, NorthWest, index.At(hazard.Cell{Row: 0, Col: 3}))
}

// TestEncoded round-trips directions through external codes.
func TestEncoded(t *testing.T) {
	t.Parallel()

	dirs, err := FromRows([][]Direction{{East, None, NorthEast, South}})
	require.NoError(t, err)

	for _, enc := range []Encoding{Bitmask, Index} {
		band := dirs.Encoded(enc)

		codes, err := raster.FromRows("codes", [][]float64{{
			band.Value(0, 0), band.Value(0, 1), band.Value(0, 2), band.Value(0, 3),
		}})
		require.NoError(t, err)

		decoded, err := Decode(codes, enc)
		require.NoError(t, err)
		require.Equal(t, dirs.dirs, decoded.dirs, string(enc))
	}

	require.InDelta(t, float64(NoneCode), dirs.Encoded(Index).Value(0, 1), 0)
}

// TestParseEncoding accepts known names and rejects others as configuration errors.
func TestParseEncoding(t *testing.T) {
	t.Parallel()

	enc, err := ParseEncoding("")
	require.NoError(t, err)
	require.Equal(t, Bitmask, enc)

	enc, err = ParseEncoding(" INDEX ")
	require.NoError(t, err)
	require.Equal(t, Index, enc)

	_, err = ParseEncoding("dinf")
	require.ErrorIs(t, err, hazard.ErrConfiguration)
}
