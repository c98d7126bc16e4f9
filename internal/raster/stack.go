package raster

import (
	"fmt"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// Stack owns the four co-registered input grids of one run.
type Stack struct {
	// Elevation is the terrain height in map units.
	Elevation *Grid
	// Slope is the terrain gradient in degrees.
	Slope *Grid
	// FlowAccumulation counts upslope contributing cells.
	FlowAccumulation *Grid
	// Susceptibility is the failure probability in [0,1].
	Susceptibility *Grid
}

// NewStack validates that all four grids are present and aligned.
// Every problem is reported as hazard.ErrConfiguration.
func NewStack(elevation, slope, flowAccumulation, susceptibility *Grid) (*Stack, error) {
	s := &Stack{
		Elevation:        elevation,
		Slope:            slope,
		FlowAccumulation: flowAccumulation,
		Susceptibility:   susceptibility,
	}

	named := []struct {
		name string
		grid *Grid
	}{
		{"elevation", elevation},
		{"slope", slope},
		{"flow accumulation", flowAccumulation},
		{"susceptibility", susceptibility},
	}

	for _, n := range named {
		if n.grid == nil {
			return nil, fmt.Errorf("%w: %s grid is missing", hazard.ErrConfiguration, n.name)
		}
	}

	for _, n := range named[1:] {
		if err := elevation.Aligned(n.grid.Geometry); err != nil {
			return nil, fmt.Errorf("%s vs elevation: %w", n.name, err)
		}
	}

	return s, nil
}

// Geometry returns the geometry shared by the stack.
func (s *Stack) Geometry() Geometry {
	return s.Elevation.Geometry
}
