package flow

import (
	"math"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// Direction is one of the eight D8 neighbors or None.
type Direction uint8

const (
	// None marks pits, flats and no-data cells.
	None Direction = iota
	// East points to (row, col+1).
	East
	// SouthEast points to (row+1, col+1).
	SouthEast
	// South points to (row+1, col).
	South
	// SouthWest points to (row+1, col-1).
	SouthWest
	// West points to (row, col-1).
	West
	// NorthWest points to (row-1, col-1).
	NorthWest
	// North points to (row-1, col).
	North
	// NorthEast points to (row-1, col+1).
	NorthEast
)

// Order is the fixed enumeration used for tie-breaking.
//
//nolint:gochecknoglobals // Read-only lookup table.
var Order = [8]Direction{East, SouthEast, South, SouthWest, West, NorthWest, North, NorthEast}

// offsets maps a direction to its (dRow, dCol), indexed by Direction.
//
//nolint:gochecknoglobals // Read-only lookup table.
var offsets = [9][2]int{
	None:      {0, 0},
	East:      {0, 1},
	SouthEast: {1, 1},
	South:     {1, 0},
	SouthWest: {1, -1},
	West:      {0, -1},
	NorthWest: {-1, -1},
	North:     {-1, 0},
	NorthEast: {-1, 1},
}

// Offset returns the row and column step of d.
func (d Direction) Offset() (dRow, dCol int) {
	if d > NorthEast {
		return 0, 0
	}

	o := offsets[d]

	return o[0], o[1]
}

// Next returns the neighbor of c in direction d.
func (d Direction) Next(c hazard.Cell) hazard.Cell {
	dr, dc := d.Offset()

	return hazard.Cell{Row: c.Row + dr, Col: c.Col + dc}
}

// Distance returns 1 for cardinal and sqrt(2) for diagonal directions.
func (d Direction) Distance() float64 {
	dr, dc := d.Offset()
	if dr != 0 && dc != 0 {
		return math.Sqrt2
	}

	return 1
}

// String returns the compass abbreviation.
func (d Direction) String() string {
	names := [9]string{"None", "E", "SE", "S", "SW", "W", "NW", "N", "NE"}
	if d > NorthEast {
		return "Invalid"
	}

	return names[d]
}
