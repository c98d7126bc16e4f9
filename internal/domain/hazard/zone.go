package hazard

// Zone is the categorical value of one fused hazard cell.
type Zone uint8

const (
	// Safe marks cells outside every hazard layer.
	Safe Zone = 0
	// Deposition marks low-gradient valley cells inside the transit zone.
	Deposition Zone = 1
	// Transit marks the buffered corridor around runout paths.
	Transit Zone = 2
	// Failure marks cells at or above the failure threshold.
	Failure Zone = 3
)

// Zones lists the zones in ascending code order.
func Zones() []Zone {
	return []Zone{Safe, Deposition, Transit, Failure}
}

// String returns the zone name.
func (z Zone) String() string {
	switch z {
	case Safe:
		return "Safe"
	case Deposition:
		return "Deposition"
	case Transit:
		return "Transit"
	case Failure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// Valid reports whether z is one of the four defined codes.
func (z Zone) Valid() bool {
	return z <= Failure
}
