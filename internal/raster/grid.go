package raster

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Band is a read-only view of one raster layer, as consumed by writers.
type Band interface {
	Dims() (rows, cols int)
	Value(row, col int) float64
}

// Grid is one band of floating point cells with its geometry.
type Grid struct {
	Geometry

	// Name identifies the layer in logs and errors.
	Name string
	// NoData is the sentinel marking missing cells when HasNoData is set.
	NoData float64
	// HasNoData tells whether NoData is meaningful.
	HasNoData bool

	// data holds the cell values, one matrix row per grid row.
	data *mat.Dense
}

// ErrEmptyGrid is returned for grids without rows or columns.
var ErrEmptyGrid = errors.New("grid must have at least one row and one column")

// NewGrid allocates a zero-filled grid with the given geometry.
func NewGrid(name string, geometry Geometry) (*Grid, error) {
	if geometry.Rows <= 0 || geometry.Cols <= 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyGrid)
	}

	return &Grid{
		Geometry: geometry,
		Name:     name,
		data:     mat.NewDense(geometry.Rows, geometry.Cols, nil),
	}, nil
}

// FromRows builds a grid from row slices. All rows must have equal length.
// The transform is the identity and no reference is declared.
func FromRows(name string, rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyGrid)
	}

	g, err := NewGrid(name, Geometry{Rows: len(rows), Cols: len(rows[0]), Transform: Identity()})
	if err != nil {
		return nil, err
	}

	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, fmt.Errorf("%s: row %d has %d cells, want %d", name, r, len(row), g.Cols)
		}

		g.data.SetRow(r, row)
	}

	return g, nil
}

// Value returns the raw stored value, no-data sentinel included.
func (g *Grid) Value(row, col int) float64 {
	return g.data.At(row, col)
}

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.data.Set(row, col, v)
}

// SetNoData declares the no-data sentinel.
func (g *Grid) SetNoData(v float64) {
	g.NoData, g.HasNoData = v, true
}

// IsNoData reports whether v is missing: NaN or equal to the sentinel.
func (g *Grid) IsNoData(v float64) bool {
	return math.IsNaN(v) || (g.HasNoData && v == g.NoData)
}

// CellAt returns the value at (row, col). The boolean is false when the
// cell is out of bounds or holds no data.
func (g *Grid) CellAt(row, col int) (float64, bool) {
	if !g.InBounds(row, col) {
		return 0, false
	}

	v := g.data.At(row, col)
	if g.IsNoData(v) {
		return 0, false
	}

	return v, true
}

// AtLeast reports whether the cell holds data and v >= threshold.
func (g *Grid) AtLeast(row, col int, threshold float64) bool {
	v, ok := g.CellAt(row, col)

	return ok && v >= threshold
}

// Values returns a copy of the valid cells, no-data excluded.
func (g *Grid) Values() []float64 {
	out := make([]float64, 0, g.Rows*g.Cols)

	for r := range g.Rows {
		for _, v := range g.data.RawRowView(r) {
			if !g.IsNoData(v) {
				out = append(out, v)
			}
		}
	}

	return out
}
