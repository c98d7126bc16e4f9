package hazard

import "time"

// Report summarizes one pipeline run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string
	// StartedAt is when the run began.
	StartedAt time.Time
	// FinishedAt is when every output had been written.
	FinishedAt time.Time
	// Rows and Cols give the grid dimensions.
	Rows, Cols int
	// Seeds counts the extracted source seeds.
	Seeds int
	// Paths counts the kept runout paths.
	Paths int
	// Discarded counts single-cell traces.
	Discarded int
	// Terminations tallies trace termination reasons.
	Terminations map[Termination]int
	// Zones tallies fused grid cells per zone.
	Zones map[Zone]int
	// TransitCells and DepositionCells count the mask cells.
	TransitCells, DepositionCells int
	// Reprojected tells whether paths were converted to WGS84.
	Reprojected bool
	// Settings echoes the thresholds the run used.
	Settings map[string]float64
}
