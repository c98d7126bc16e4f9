package flow

import (
	"fmt"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// Grid holds one Direction per cell. It is immutable once returned by
// Compute or Decode.
type Grid struct {
	rows, cols int
	dirs       []Direction
}

func newGrid(rows, cols int) *Grid {
	return &Grid{rows: rows, cols: cols, dirs: make([]Direction, rows*cols)}
}

// FromRows builds a grid from explicit directions, mostly for tests.
func FromRows(rows [][]Direction) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("flow: %w", errEmpty)
	}

	g := newGrid(len(rows), len(rows[0]))

	for r, row := range rows {
		if len(row) != g.cols {
			return nil, fmt.Errorf("flow: row %d has %d cells, want %d", r, len(row), g.cols)
		}

		copy(g.dirs[r*g.cols:], row)
	}

	return g, nil
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) {
	return g.rows, g.cols
}

// At returns the direction of cell c; cells outside the grid are None.
func (g *Grid) At(c hazard.Cell) Direction {
	if c.Row < 0 || c.Row >= g.rows || c.Col < 0 || c.Col >= g.cols {
		return None
	}

	return g.dirs[c.Row*g.cols+c.Col]
}

// Counts tallies cells per direction, used for run diagnostics.
func (g *Grid) Counts() map[Direction]int {
	out := make(map[Direction]int, len(offsets))
	for _, d := range g.dirs {
		out[d]++
	}

	return out
}
