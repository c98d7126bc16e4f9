package hazard

// Termination explains why a runout trace stopped.
type Termination uint8

const (
	// NoDescent means the current cell has no downslope neighbor.
	NoDescent Termination = iota
	// OutOfBounds means the next step would leave the grid.
	OutOfBounds
	// ReachedStream means the last cell reached the stream network.
	ReachedStream
	// AlreadyVisited means the next cell was claimed by an earlier trace.
	AlreadyVisited
	// MaxStepsExceeded means the step cap fired.
	MaxStepsExceeded
)

// Terminations lists every reason in declaration order.
func Terminations() []Termination {
	return []Termination{NoDescent, OutOfBounds, ReachedStream, AlreadyVisited, MaxStepsExceeded}
}

// String returns the reason name used in logs, reports and GeoJSON.
func (t Termination) String() string {
	switch t {
	case NoDescent:
		return "NoDescent"
	case OutOfBounds:
		return "OutOfBounds"
	case ReachedStream:
		return "ReachedStream"
	case AlreadyVisited:
		return "AlreadyVisited"
	case MaxStepsExceeded:
		return "MaxStepsExceeded"
	default:
		return "Unknown"
	}
}

// Path is the ordered cell sequence traced from one seed.
// Paths are never mutated after the tracer returns them.
type Path struct {
	// ID is the stable identifier, assigned in seed order.
	ID int
	// Seed is the seed the trace started from.
	Seed Seed
	// Cells holds the traced cells; Cells[0] is the seed cell.
	Cells []Cell
	// Termination records which rule ended the trace.
	Termination Termination
}

// Len returns the number of cells on the path.
func (p *Path) Len() int {
	return len(p.Cells)
}

// Last returns the terminal cell of the path.
func (p *Path) Last() Cell {
	return p.Cells[len(p.Cells)-1]
}
