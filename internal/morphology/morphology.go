package morphology

import "github.com/oshokin/slipsense/internal/raster"

// windowCounts returns a function counting set cells and in-bounds cells of
// the (2r+1)x(2r+1) window centered on (row, col), using a summed-area table.
func windowCounts(m *raster.Mask, r int) func(row, col int) (set, inside int) {
	rows, cols := m.Dims()
	stride := cols + 1
	sat := make([]int, (rows+1)*stride)

	for i := range rows {
		for j := range cols {
			v := 0
			if m.Get(i, j) {
				v = 1
			}

			sat[(i+1)*stride+j+1] = v + sat[i*stride+j+1] + sat[(i+1)*stride+j] - sat[i*stride+j]
		}
	}

	return func(row, col int) (int, int) {
		r0, c0 := max(row-r, 0), max(col-r, 0)
		r1, c1 := min(row+r, rows-1), min(col+r, cols-1)

		set := sat[(r1+1)*stride+c1+1] - sat[r0*stride+c1+1] - sat[(r1+1)*stride+c0] + sat[r0*stride+c0]

		return set, (r1 - r0 + 1) * (c1 - c0 + 1)
	}
}

// Erode keeps a cell only if every cell of its square neighborhood of the
// given radius is set and inside the grid.
func Erode(m *raster.Mask, radius int) *raster.Mask {
	rows, cols := m.Dims()
	out := raster.NewMask(rows, cols)

	if radius <= 0 {
		copyMask(out, m)

		return out
	}

	side := 2*radius + 1
	count := windowCounts(m, radius)

	for i := range rows {
		for j := range cols {
			if !m.Get(i, j) {
				continue
			}

			set, _ := count(i, j)
			out.Set(i, j, set == side*side)
		}
	}

	return out
}

// Dilate sets every cell within the square neighborhood of the given
// radius around a set cell.
func Dilate(m *raster.Mask, radius int) *raster.Mask {
	rows, cols := m.Dims()
	out := raster.NewMask(rows, cols)

	if radius <= 0 {
		copyMask(out, m)

		return out
	}

	count := windowCounts(m, radius)

	for i := range rows {
		for j := range cols {
			set, _ := count(i, j)
			out.Set(i, j, set > 0)
		}
	}

	return out
}

// Open is erosion followed by dilation with the same neighborhood.
// It removes features narrower than the structuring square.
func Open(m *raster.Mask, radius int) *raster.Mask {
	return Dilate(Erode(m, radius), radius)
}

func copyMask(dst, src *raster.Mask) {
	rows, cols := src.Dims()

	for i := range rows {
		for j := range cols {
			dst.Set(i, j, src.Get(i, j))
		}
	}
}
