package zonation

import (
	"github.com/oshokin/slipsense/internal/raster"
)

// DepositionOptions holds the deposition thresholds.
type DepositionOptions struct {
	// StreamThreshold is the stream flow accumulation threshold.
	StreamThreshold float64
	// AccumulationFactor scales StreamThreshold into the deposition threshold.
	AccumulationFactor float64
	// MaxSlope is the steepest slope, in degrees, where debris settles.
	MaxSlope float64
}

// Deposition marks transit cells whose flow accumulation is at least
// StreamThreshold*AccumulationFactor and whose slope is at most MaxSlope.
// Cells outside the transit mask are never deposition.
func Deposition(stack *raster.Stack, transit *raster.Mask, opts DepositionOptions) *raster.Mask {
	rows, cols := stack.Geometry().Dims()
	mask := raster.NewMask(rows, cols)
	minAccumulation := opts.StreamThreshold * opts.AccumulationFactor

	for r := range rows {
		for c := range cols {
			if !transit.Get(r, c) {
				continue
			}

			slope, ok := stack.Slope.CellAt(r, c)
			if !ok || slope > opts.MaxSlope {
				continue
			}

			mask.Set(r, c, stack.FlowAccumulation.AtLeast(r, c, minAccumulation))
		}
	}

	return mask
}
