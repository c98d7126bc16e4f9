package raster

// Mask is a binary layer with the dimensions of a geometry.
type Mask struct {
	rows, cols int
	bits       []bool
}

// NewMask returns an all-false mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{rows: rows, cols: cols, bits: make([]bool, rows*cols)}
}

// MaskFromRows builds a mask from 0/1 rows, mostly for tests.
func MaskFromRows(rows [][]uint8) *Mask {
	m := NewMask(len(rows), len(rows[0]))

	for r, row := range rows {
		for c, v := range row {
			m.bits[r*m.cols+c] = v != 0
		}
	}

	return m
}

// Dims returns the number of rows and columns.
func (m *Mask) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// InBounds reports whether (row, col) is inside the mask.
func (m *Mask) InBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// Get returns the bit at (row, col); out of bounds reads as false.
func (m *Mask) Get(row, col int) bool {
	if !m.InBounds(row, col) {
		return false
	}

	return m.bits[row*m.cols+col]
}

// Set assigns the bit at (row, col).
func (m *Mask) Set(row, col int, v bool) {
	m.bits[row*m.cols+col] = v
}

// Value implements Band with 1 for set cells and 0 elsewhere.
func (m *Mask) Value(row, col int) float64 {
	if m.bits[row*m.cols+col] {
		return 1
	}

	return 0
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0

	for _, b := range m.bits {
		if b {
			n++
		}
	}

	return n
}

// Empty reports whether no cell is set.
func (m *Mask) Empty() bool {
	for _, b := range m.bits {
		if b {
			return false
		}
	}

	return true
}

// Equal reports whether both masks have the same shape and bits.
func (m *Mask) Equal(o *Mask) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}

	for i := range m.bits {
		if m.bits[i] != o.bits[i] {
			return false
		}
	}

	return true
}
