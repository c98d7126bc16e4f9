package zonation

import (
	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
)

// HazardGrid is the fused categorical grid, one Zone per cell.
type HazardGrid struct {
	rows, cols int
	zones      []hazard.Zone
}

// Dims returns the number of rows and columns.
func (h *HazardGrid) Dims() (rows, cols int) {
	return h.rows, h.cols
}

// At returns the zone of (row, col).
func (h *HazardGrid) At(row, col int) hazard.Zone {
	return h.zones[row*h.cols+col]
}

// Value implements raster.Band.
func (h *HazardGrid) Value(row, col int) float64 {
	return float64(h.At(row, col))
}

// Counts tallies cells per zone.
func (h *HazardGrid) Counts() map[hazard.Zone]int {
	out := make(map[hazard.Zone]int, len(hazard.Zones()))
	for _, z := range hazard.Zones() {
		out[z] = 0
	}

	for _, z := range h.zones {
		out[z]++
	}

	return out
}

// Fuse merges the layers per cell: Failure where susceptibility reaches the
// failure threshold, else Transit inside the transit mask, else Deposition
// inside the deposition mask, else Safe.
func Fuse(susceptibility *raster.Grid, failureThreshold float64, transit, deposition *raster.Mask) *HazardGrid {
	rows, cols := susceptibility.Dims()
	out := &HazardGrid{rows: rows, cols: cols, zones: make([]hazard.Zone, rows*cols)}

	for r := range rows {
		for c := range cols {
			var zone hazard.Zone

			switch {
			case susceptibility.AtLeast(r, c, failureThreshold):
				zone = hazard.Failure
			case transit.Get(r, c):
				zone = hazard.Transit
			case deposition.Get(r, c):
				zone = hazard.Deposition
			default:
				zone = hazard.Safe
			}

			out.zones[r*cols+c] = zone
		}
	}

	return out
}
