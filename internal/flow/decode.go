package flow

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
)

// Encoding names an external D8 code convention.
type Encoding string

const (
	// Bitmask is 1=E, 2=SE, 4=S, 8=SW, 16=W, 32=NW, 64=N, 128=NE.
	Bitmask Encoding = "bitmask"
	// Index is 0=E, 1=NE, 2=N, 3=NW, 4=W, 5=SW, 6=S, 7=SE.
	Index Encoding = "index"
)

// errUnknownEncoding is returned by ParseEncoding for unsupported names.
var errUnknownEncoding = errors.New("unknown flow direction encoding")

// ParseEncoding validates an encoding name; empty means Bitmask.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case "", Bitmask:
		return Bitmask, nil
	case Index:
		return Index, nil
	default:
		return "", fmt.Errorf("%w: %w %q", hazard.ErrConfiguration, errUnknownEncoding, s)
	}
}

// NoneCode is written for None cells when exporting directions.
const NoneCode = 255

// Code converts a direction to its external code; None maps to NoneCode.
func (e Encoding) Code(d Direction) int {
	for code, dir := range e.table() {
		if dir == d {
			return code
		}
	}

	return NoneCode
}

// table returns the code-to-direction mapping of the encoding.
func (e Encoding) table() map[int]Direction {
	if e == Index {
		return map[int]Direction{
			0: East, 1: NorthEast, 2: North, 3: NorthWest,
			4: West, 5: SouthWest, 6: South, 7: SouthEast,
		}
	}

	return map[int]Direction{
		1: East, 2: SouthEast, 4: South, 8: SouthWest,
		16: West, 32: NorthWest, 64: North, 128: NorthEast,
	}
}

// Decode converts an external D8 raster into the internal enumeration.
// No-data, fractional and unknown codes decode to None.
func Decode(codes *raster.Grid, enc Encoding) (*Grid, error) {
	rows, cols := codes.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("flow: %w", errEmpty)
	}

	table := enc.table()
	out := newGrid(rows, cols)

	for r := range rows {
		for c := range cols {
			v, ok := codes.CellAt(r, c)
			if !ok || v != math.Trunc(v) {
				continue
			}

			out.dirs[r*cols+c] = table[int(v)]
		}
	}

	return out, nil
}

// Encoded exposes the grid as a raster band of external codes.
func (g *Grid) Encoded(enc Encoding) raster.Band {
	var codes [9]int
	for _, d := range append([]Direction{None}, Order[:]...) {
		codes[d] = enc.Code(d)
	}

	return encodedBand{grid: g, codes: codes}
}

// encodedBand adapts Grid to raster.Band.
type encodedBand struct {
	grid  *Grid
	codes [9]int
}

func (b encodedBand) Dims() (rows, cols int) {
	return b.grid.Dims()
}

func (b encodedBand) Value(row, col int) float64 {
	return float64(b.codes[b.grid.dirs[row*b.grid.cols+col]])
}
