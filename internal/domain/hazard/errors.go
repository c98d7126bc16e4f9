package hazard

import "errors"

var (
	// ErrConfiguration is the root of every fatal configuration problem:
	// misaligned or missing grids, invalid thresholds, unusable references.
	// A run that returns it has written no output.
	ErrConfiguration = errors.New("configuration error")
	// ErrOutOfBounds is returned when a coordinate maps outside the grid.
	ErrOutOfBounds = errors.New("coordinates out of grid bounds")
)
