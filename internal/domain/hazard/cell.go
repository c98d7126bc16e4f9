package hazard

import "fmt"

// Cell addresses one grid cell by row and column.
type Cell struct {
	// Row is the zero-based row index, growing southwards.
	Row int
	// Col is the zero-based column index, growing eastwards.
	Col int
}

// String renders the cell as "(row,col)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Seed is the representative cell of one connected blob of source cells.
type Seed struct {
	Cell

	// Label is the component label the seed was derived from.
	Label int
	// Size is the number of cells in the component.
	Size int
}
