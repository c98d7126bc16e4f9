package paths

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// TestNewCollection tags features with path attributes and the WGS84 name.
func TestNewCollection(t *testing.T) {
	t.Parallel()

	paths := []hazard.Path{{
		ID:          3,
		Seed:        hazard.Seed{Cell: hazard.Cell{Row: 1, Col: 2}},
		Cells:       []hazard.Cell{{Row: 1, Col: 2}, {Row: 2, Col: 3}},
		Termination: hazard.ReachedStream,
	}}
	lines := []geom.LineString{{{X: 76.1, Y: 10.2}, {X: 76.2, Y: 10.1}}}

	fc, err := NewCollection(paths, lines, true)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	require.Equal(t, "EPSG:4326", fc.CRS.Properties["name"])

	f := fc.Features[0]
	require.Equal(t, "LineString", f.Geometry.Type)
	line, err := f.Line()
	require.NoError(t, err)
	require.Equal(t, lines[0], line)
	require.True(t, fc.Geographic())
	require.Equal(t, Properties{ID: 3, Termination: "ReachedStream", SeedRow: 1, SeedCol: 2, Cells: 2}, f.Properties)

	_, err = NewCollection(paths, nil, true)
	require.Error(t, err)

	native, err := NewCollection(nil, nil, false)
	require.NoError(t, err)
	require.Nil(t, native.CRS)
	require.False(t, native.Geographic())
}

// TestFileRepository_SaveLoadLine reads back the same line coordinates.
func TestFileRepository_SaveLoadLine(t *testing.T) {
	t.Parallel()

	paths := []hazard.Path{{
		ID:          0,
		Cells:       []hazard.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
		Termination: hazard.OutOfBounds,
	}}
	lines := []geom.LineString{{{X: 500005, Y: 999995}, {X: 500015, Y: 999985}, {X: 500025, Y: 999975}}}

	fc, err := NewCollection(paths, lines, false)
	require.NoError(t, err)

	repo := NewFileRepository(filepath.Join(t.TempDir(), "runout_paths.geojson"))
	require.NoError(t, repo.Save(context.Background(), fc))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded.Features, 1)
	require.False(t, loaded.Geographic())

	line, err := loaded.Features[0].Line()
	require.NoError(t, err)
	require.Equal(t, lines[0], line)

	loaded.Features[0].Geometry.Type = "Point"
	_, err = loaded.Features[0].Line()
	require.Error(t, err)
}

// TestFileRepository_EmptyCollection writes an empty features array.
func TestFileRepository_EmptyCollection(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runout_paths.geojson")
	repo := NewFileRepository(path)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)

	fc, err := NewCollection(nil, nil, true)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), fc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"features":[]`)

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, loaded.Features)
	require.Equal(t, "FeatureCollection", loaded.Type)
}
