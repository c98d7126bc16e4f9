package zonation

import (
	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/morphology"
	"github.com/oshokin/slipsense/internal/raster"
)

// Rasterize burns every path cell into a binary mask.
func Rasterize(paths []hazard.Path, rows, cols int) *raster.Mask {
	mask := raster.NewMask(rows, cols)

	for _, p := range paths {
		for _, c := range p.Cells {
			if mask.InBounds(c.Row, c.Col) {
				mask.Set(c.Row, c.Col, true)
			}
		}
	}

	return mask
}

// Transit rasterizes the paths and dilates them with a square of the given
// radius in cells.
func Transit(paths []hazard.Path, rows, cols, radius int) *raster.Mask {
	return morphology.Dilate(Rasterize(paths, rows, cols), radius)
}
