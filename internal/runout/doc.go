// Package runout traces debris runout paths down the D8 flow field.
//
// Each seed is followed cell by cell until one rule fires: the cell has no
// descent, the next step leaves the grid, the next cell is on the stream
// network (included as the last point), the next cell was already claimed
// by a trace, or the step cap is hit. Claims live in a VisitedMask created
// by the caller for one tracing pass and shared by every seed of that pass.
package runout
