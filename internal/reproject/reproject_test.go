package reproject

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
)

const utm43 = "+proj=utm +zone=43 +datum=WGS84 +units=m +no_defs"

// TestPassthrough keeps map coordinates when no reference is declared.
func TestPassthrough(t *testing.T) {
	t.Parallel()

	geometry := raster.Geometry{Rows: 10, Cols: 10, Transform: raster.NorthUp(76, 10, 0.01)}

	r, err := New(geometry)
	require.NoError(t, err)
	require.True(t, r.Passthrough())

	line, err := r.GeographicLine(hazard.Path{Cells: []hazard.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 2}}})
	require.NoError(t, err)
	require.Len(t, line, 2)
	require.InDelta(t, 76.005, line[0].X, 1e-9)
	require.InDelta(t, 9.995, line[0].Y, 1e-9)
	require.InDelta(t, 76.025, line[1].X, 1e-9)

	cell, err := r.ToGridCoordinates(76.025, 9.985)
	require.NoError(t, err)
	require.Equal(t, hazard.Cell{Row: 1, Col: 2}, cell)

	_, err = r.ToGridCoordinates(80, 9.985)
	require.ErrorIs(t, err, hazard.ErrOutOfBounds)
}

// TestUTMToWGS84 reprojects a point on the zone's central meridian and back.
func TestUTMToWGS84(t *testing.T) {
	t.Parallel()

	// Cell (0,0) is centered on easting 500000, northing 1000000.
	geometry := raster.Geometry{
		Rows:      20,
		Cols:      20,
		Transform: raster.NorthUp(499985, 1000015, 30),
		CRS:       utm43,
	}

	r, err := New(geometry)
	require.NoError(t, err)
	require.False(t, r.Passthrough())

	lines, err := r.GeographicLines([]hazard.Path{{Cells: []hazard.Cell{{Row: 0, Col: 0}, {Row: 5, Col: 7}}}})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	start := lines[0][0]
	require.InDelta(t, 75.0, start.X, 1e-6)
	require.InDelta(t, 9.04, start.Y, 0.02)

	end := lines[0][1]
	cell, err := r.ToGridCoordinates(end.X, end.Y)
	require.NoError(t, err)
	require.Equal(t, hazard.Cell{Row: 5, Col: 7}, cell)
}

// TestNew_InvalidReference reports a configuration error.
func TestNew_InvalidReference(t *testing.T) {
	t.Parallel()

	_, err := New(raster.Geometry{Rows: 1, Cols: 1, Transform: raster.Identity(), CRS: "+proj=doesnotexist +units=m"})
	require.ErrorIs(t, err, hazard.ErrConfiguration)
}
