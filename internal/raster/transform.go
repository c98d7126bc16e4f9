package raster

import (
	"errors"
	"math"
)

// Transform is an affine mapping from (col, row) to map coordinates:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// Integer (col, row) address the upper-left corner of a cell.
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// errSingularTransform is returned when the transform cannot be inverted.
var errSingularTransform = errors.New("affine transform is not invertible")

// NorthUp builds the transform of an axis-aligned grid whose upper-left
// corner sits at (originX, originY) with square cells of the given size.
func NorthUp(originX, originY, cellSize float64) Transform {
	return Transform{A: cellSize, C: originX, E: -cellSize, F: originY}
}

// Identity returns the transform that maps cell indices onto themselves.
func Identity() Transform {
	return Transform{A: 1, E: 1}
}

// Apply maps fractional (col, row) to map coordinates.
func (t Transform) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Invert maps map coordinates back to fractional (col, row).
func (t Transform) Invert(x, y float64) (col, row float64, err error) {
	det := t.A*t.E - t.B*t.D
	if det == 0 {
		return 0, 0, errSingularTransform
	}

	dx, dy := x-t.C, y-t.F

	return (t.E*dx - t.B*dy) / det, (-t.D*dx + t.A*dy) / det, nil
}

// CellSize returns the absolute pixel width and height.
func (t Transform) CellSize() (width, height float64) {
	return math.Hypot(t.A, t.D), math.Hypot(t.B, t.E)
}

// Equal compares two transforms with a tolerance relative to the cell size.
func (t Transform) Equal(o Transform) bool {
	w, _ := t.CellSize()

	tol := 1e-9 * math.Max(1, w)
	pairs := [][2]float64{{t.A, o.A}, {t.B, o.B}, {t.C, o.C}, {t.D, o.D}, {t.E, o.E}, {t.F, o.F}}

	for _, p := range pairs {
		if math.Abs(p[0]-p[1]) > tol*math.Max(1, math.Abs(p[0])) {
			return false
		}
	}

	return true
}
