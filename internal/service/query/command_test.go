package query

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
	rasterrepo "github.com/oshokin/slipsense/internal/repository/raster"
)

// plainGrid has no reference, so lon/lat are read as map coordinates.
func plainGrid(t *testing.T, name string, values [][]float64) *raster.Grid {
	t.Helper()

	geometry := raster.Geometry{Rows: len(values), Cols: len(values[0]), Transform: raster.NorthUp(100, 200, 10)}
	g, err := raster.NewGrid(name, geometry)
	require.NoError(t, err)

	for r, row := range values {
		for c, v := range row {
			g.Set(r, c, v)
		}
	}

	return g
}

func TestLookup(t *testing.T) {
	t.Parallel()

	fused := plainGrid(t, "hazard", [][]float64{
		{0, 1},
		{2, 3},
	})
	sus := plainGrid(t, "sus", [][]float64{
		{0.1, 0.2},
		{0.3, 0.9},
	})

	answer, err := Lookup(fused, sus, 115, 185)
	require.NoError(t, err)
	require.Equal(t, hazard.Cell{Row: 1, Col: 1}, answer.Cell)
	require.Equal(t, hazard.Failure, answer.Zone)
	require.NotNil(t, answer.Susceptibility)
	require.InDelta(t, 0.9, *answer.Susceptibility, 1e-12)

	answer, err = Lookup(fused, nil, 105, 195)
	require.NoError(t, err)
	require.Equal(t, hazard.Safe, answer.Zone)
	require.Nil(t, answer.Susceptibility)

	_, err = Lookup(fused, nil, 500, 500)
	require.ErrorIs(t, err, hazard.ErrOutOfBounds)
}

func TestLookup_RejectsNonZoneValues(t *testing.T) {
	t.Parallel()

	_, err := Lookup(plainGrid(t, "hazard", [][]float64{{7}}), nil, 101, 199)
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	fused := plainGrid(t, "hazard", [][]float64{{2}})
	path := filepath.Join(t.TempDir(), "hazard.asc")
	require.NoError(t, rasterrepo.NewFileStore().Write(context.Background(), path, fused, fused.Geometry,
		rasterrepo.WriteOptions{Integer: true}))

	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), &Options{HazardPath: path, Lon: 105, Lat: 195, Out: &out}))
	require.Contains(t, out.String(), "zone Transit")
}
