// Package source turns the susceptibility grid into runout seeds.
//
// Cells at or above the failure threshold are opened with a 3x3 square to
// drop speckle, grouped into 8-connected components, filtered by size, and
// each surviving component contributes the rounded mean of its cell
// coordinates as its seed. The centroid of a concave blob may fall outside
// the blob; it is used as is.
package source

import (
	"math"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/morphology"
	"github.com/oshokin/slipsense/internal/raster"
)

// denoiseRadius gives the 3x3 structuring square of the opening.
const denoiseRadius = 1

// Options configures the extractor.
type Options struct {
	// Threshold is the failure threshold applied to susceptibility.
	Threshold float64
	// MinSize is the smallest component, in cells, that yields a seed.
	MinSize int
}

// Result is the outcome of one extraction.
type Result struct {
	// Seeds are ordered by ascending component label.
	Seeds []hazard.Seed
	// ThresholdCells counts cells at or above the threshold before denoising.
	ThresholdCells int
	// DenoisedCells counts cells left after the opening.
	DenoisedCells int
	// Components counts the labeled components before size filtering.
	Components int
}

// Extract runs threshold, opening, labeling, size filtering and centroid
// seeding over the susceptibility grid.
func Extract(susceptibility *raster.Grid, opts Options) Result {
	rows, cols := susceptibility.Dims()
	mask := raster.NewMask(rows, cols)

	for r := range rows {
		for c := range cols {
			if susceptibility.AtLeast(r, c, opts.Threshold) {
				mask.Set(r, c, true)
			}
		}
	}

	opened := morphology.Open(mask, denoiseRadius)
	comps := morphology.Label(opened)

	result := Result{
		ThresholdCells: mask.Count(),
		DenoisedCells:  opened.Count(),
		Components:     len(comps),
	}

	for _, comp := range comps {
		if len(comp.Cells) < opts.MinSize {
			continue
		}

		result.Seeds = append(result.Seeds, hazard.Seed{
			Cell:  Centroid(comp.Cells),
			Label: comp.Label,
			Size:  len(comp.Cells),
		})
	}

	return result
}

// Centroid returns the mean row and column, each rounded half to even.
func Centroid(cells []hazard.Cell) hazard.Cell {
	var sumRow, sumCol float64

	for _, c := range cells {
		sumRow += float64(c.Row)
		sumCol += float64(c.Col)
	}

	n := float64(len(cells))

	return hazard.Cell{
		Row: int(math.RoundToEven(sumRow / n)),
		Col: int(math.RoundToEven(sumCol / n)),
	}
}
