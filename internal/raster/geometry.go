package raster

import (
	"fmt"
	"math"
	"strings"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// Geometry is the shape and georeference shared by co-registered grids.
type Geometry struct {
	// Rows is the grid height in cells.
	Rows int
	// Cols is the grid width in cells.
	Cols int
	// Transform maps cell indices to map coordinates.
	Transform Transform
	// CRS is the PROJ4 or WKT definition of the native reference.
	// Empty means the reference is unknown.
	CRS string
}

// Dims returns the number of rows and columns.
func (g Geometry) Dims() (rows, cols int) {
	return g.Rows, g.Cols
}

// InBounds reports whether the cell lies in [0,Rows)x[0,Cols).
func (g Geometry) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Center returns the map coordinates of the cell center.
func (g Geometry) Center(c hazard.Cell) (x, y float64) {
	return g.Transform.Apply(float64(c.Col)+0.5, float64(c.Row)+0.5)
}

// Index locates the cell containing the map coordinate (x, y).
// It fails with hazard.ErrOutOfBounds outside the grid.
func (g Geometry) Index(x, y float64) (hazard.Cell, error) {
	col, row, err := g.Transform.Invert(x, y)
	if err != nil {
		return hazard.Cell{}, err
	}

	cell := hazard.Cell{Row: int(math.Floor(row)), Col: int(math.Floor(col))}
	if !g.InBounds(cell.Row, cell.Col) {
		return cell, fmt.Errorf("%w: %s outside %dx%d", hazard.ErrOutOfBounds, cell, g.Rows, g.Cols)
	}

	return cell, nil
}

// Aligned checks that other has the same dimensions, transform and reference.
// Misalignment is a configuration error.
func (g Geometry) Aligned(other Geometry) error {
	switch {
	case g.Rows != other.Rows || g.Cols != other.Cols:
		return fmt.Errorf("%w: grid size %dx%d differs from %dx%d",
			hazard.ErrConfiguration, other.Rows, other.Cols, g.Rows, g.Cols)
	case !g.Transform.Equal(other.Transform):
		return fmt.Errorf("%w: grid transforms differ", hazard.ErrConfiguration)
	case strings.TrimSpace(g.CRS) != strings.TrimSpace(other.CRS):
		return fmt.Errorf("%w: grid coordinate references differ", hazard.ErrConfiguration)
	default:
		return nil
	}
}
