package runout

import (
	"sync"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// VisitedMask records which cells have been claimed by a trace.
// Claim is a check-and-set under one lock, so concurrent tracers never
// claim the same cell twice.
type VisitedMask struct {
	// mu guards bits.
	mu sync.Mutex
	// rows and cols give the mask shape.
	rows, cols int
	// bits holds one flag per cell, row-major.
	bits []bool
}

// NewVisitedMask returns an empty mask for a rows x cols grid.
func NewVisitedMask(rows, cols int) *VisitedMask {
	return &VisitedMask{rows: rows, cols: cols, bits: make([]bool, rows*cols)}
}

// Claim marks c as visited. It returns false if c was already claimed or
// lies outside the mask.
func (v *VisitedMask) Claim(c hazard.Cell) bool {
	if !v.inBounds(c) {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	i := c.Row*v.cols + c.Col
	if v.bits[i] {
		return false
	}

	v.bits[i] = true

	return true
}

// Visited reports whether c has been claimed.
func (v *VisitedMask) Visited(c hazard.Cell) bool {
	if !v.inBounds(c) {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return v.bits[c.Row*v.cols+c.Col]
}

func (v *VisitedMask) inBounds(c hazard.Cell) bool {
	return c.Row >= 0 && c.Row < v.rows && c.Col >= 0 && c.Col < v.cols
}
