package morphology

import "github.com/oshokin/slipsense/internal/domain/hazard"

// neighbors8 enumerates the 8-connected offsets as (dRow, dCol).
//
//nolint:gochecknoglobals // Read-only lookup table.
var neighbors8 = [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}

// Component is one 8-connected blob of set cells.
type Component struct {
	// Label is the 1-based component id, ascending in raster scan order.
	Label int
	// Cells lists the member cells in discovery order.
	Cells []hazard.Cell
}

// Mask is the subset of raster.Mask needed for labeling.
type Mask interface {
	Dims() (rows, cols int)
	Get(row, col int) bool
}

// Label finds the 8-connected components of set cells. Labels are assigned
// in the order each component's first cell is met in a row-major scan, so
// the result is deterministic.
//
// Time: O(rows*cols*8), memory: O(rows*cols).
func Label(m Mask) []Component {
	rows, cols := m.Dims()
	seen := make([]bool, rows*cols)

	var comps []Component

	for r := range rows {
		for c := range cols {
			if !m.Get(r, c) || seen[r*cols+c] {
				continue
			}

			// BFS over the blob.
			seen[r*cols+c] = true
			queue := []hazard.Cell{{Row: r, Col: c}}

			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]

				for _, d := range neighbors8 {
					vr, vc := u.Row+d[0], u.Col+d[1]
					if vr < 0 || vr >= rows || vc < 0 || vc >= cols {
						continue
					}

					if !m.Get(vr, vc) || seen[vr*cols+vc] {
						continue
					}

					seen[vr*cols+vc] = true
					queue = append(queue, hazard.Cell{Row: vr, Col: vc})
				}
			}

			comps = append(comps, Component{Label: len(comps) + 1, Cells: queue})
		}
	}

	return comps
}
