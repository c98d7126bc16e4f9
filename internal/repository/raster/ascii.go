package raster

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	grid "github.com/oshokin/slipsense/internal/raster"
)

// DefaultFilePermissions is used for every written grid and sidecar.
const DefaultFilePermissions = 0o644

var (
	// ErrMalformed is returned for files that are not valid ASCII grids.
	ErrMalformed = errors.New("malformed ASCII grid")
	// ErrNotNorthUp is returned when a rotated grid is written.
	ErrNotNorthUp = errors.New("ASCII grids must be north-up with square cells")
)

// WriteOptions controls how a band is written.
type WriteOptions struct {
	// Integer writes values without a fractional part.
	Integer bool
	// NoData, when set, is written as NODATA_value.
	NoData *float64
}

// FileStore reads and writes ASCII grids on the local filesystem.
type FileStore struct{}

// NewFileStore returns a filesystem grid store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// header collects the ASCII grid header fields.
type header struct {
	cols, rows     int
	x, y, cellSize float64
	centered       bool
	noData         *float64
}

// Read loads one grid and its optional ".prj" sidecar.
// Missing or unreadable files are configuration errors.
func (s *FileStore) Read(ctx context.Context, path string) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path = filepath.Clean(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open grid: %w", hazard.ErrConfiguration, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file.

	g, err := decode(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", hazard.ErrConfiguration, path, err)
	}

	crs, err := os.ReadFile(sidecar(path))

	switch {
	case err == nil:
		g.CRS = strings.TrimSpace(string(crs))
	case errors.Is(err, os.ErrNotExist):
		// No reference declared.
	default:
		return nil, fmt.Errorf("%w: read reference: %w", hazard.ErrConfiguration, err)
	}

	return g, nil
}

// Write stores a band with the given geometry and, when the geometry has a
// reference, a ".prj" sidecar.
func (s *FileStore) Write(ctx context.Context, path string, band grid.Band, geometry grid.Geometry, opts WriteOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := geometry.Transform
	if t.B != 0 || t.D != 0 || t.A <= 0 || t.A != -t.E {
		return ErrNotNorthUp
	}

	path = filepath.Clean(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("create grid file: %w", err)
	}

	if err = encode(f, band, geometry, opts); err != nil {
		_ = f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	if strings.TrimSpace(geometry.CRS) == "" {
		return nil
	}

	if err = os.WriteFile(sidecar(path), []byte(geometry.CRS+"\n"), DefaultFilePermissions); err != nil {
		return fmt.Errorf("write reference: %w", err)
	}

	return nil
}

// sidecar returns the ".prj" path belonging to a grid file.
func sidecar(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
}

func decode(r io.Reader, name string) (*grid.Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	h, first, err := readHeader(scanner)
	if err != nil {
		return nil, err
	}

	originX, originY := h.x, h.y+float64(h.rows)*h.cellSize
	if h.centered {
		originX -= h.cellSize / 2
		originY -= h.cellSize / 2
	}

	g, err := grid.NewGrid(name, grid.Geometry{
		Rows:      h.rows,
		Cols:      h.cols,
		Transform: grid.NorthUp(originX, originY, h.cellSize),
	})
	if err != nil {
		return nil, err
	}

	if h.noData != nil {
		g.SetNoData(*h.noData)
	}

	token, pending := first, true

	for r := range h.rows {
		for c := range h.cols {
			if !pending {
				if !scanner.Scan() {
					return nil, fmt.Errorf("%w: expected %d values, got %d", ErrMalformed, h.rows*h.cols, r*h.cols+c)
				}

				token = scanner.Text()
			}

			pending = false

			v, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: value at (%d,%d): %w", ErrMalformed, r, c, err)
			}

			g.Set(r, c, v)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if scanner.Scan() {
		return nil, fmt.Errorf("%w: trailing data after %d values", ErrMalformed, h.rows*h.cols)
	}

	return g, nil
}

// readHeader consumes header key/value pairs and returns the first data token.
func readHeader(scanner *bufio.Scanner) (header, string, error) {
	var (
		h    header
		seen = make(map[string]bool)
	)

	for scanner.Scan() {
		key := strings.ToLower(scanner.Text())

		switch key {
		case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		default:
			for _, required := range []string{"ncols", "nrows", "cellsize"} {
				if !seen[required] {
					return h, "", fmt.Errorf("%w: missing %s", ErrMalformed, required)
				}
			}

			if h.rows <= 0 || h.cols <= 0 || h.cellSize <= 0 {
				return h, "", fmt.Errorf("%w: non-positive size", ErrMalformed)
			}

			return h, scanner.Text(), nil
		}

		if !scanner.Scan() {
			return h, "", fmt.Errorf("%w: missing value for %s", ErrMalformed, key)
		}

		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return h, "", fmt.Errorf("%w: %s: %w", ErrMalformed, key, err)
		}

		seen[key] = true

		switch key {
		case "ncols":
			h.cols = int(v)
		case "nrows":
			h.rows = int(v)
		case "xllcorner":
			h.x = v
		case "yllcorner":
			h.y = v
		case "xllcenter":
			h.x, h.centered = v, true
		case "yllcenter":
			h.y, h.centered = v, true
		case "cellsize":
			h.cellSize = v
		case "nodata_value":
			h.noData = &v
		}
	}

	if err := scanner.Err(); err != nil {
		return h, "", err
	}

	return h, "", fmt.Errorf("%w: no data values", ErrMalformed)
}

func encode(w io.Writer, band grid.Band, geometry grid.Geometry, opts WriteOptions) error {
	rows, cols := band.Dims()
	if rows != geometry.Rows || cols != geometry.Cols {
		return fmt.Errorf("band %dx%d does not match geometry %dx%d", rows, cols, geometry.Rows, geometry.Cols)
	}

	bw := bufio.NewWriter(w)
	t := geometry.Transform

	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", cols, rows)
	fmt.Fprintf(bw, "xllcorner %s\nyllcorner %s\n", formatFloat(t.C), formatFloat(t.F+t.E*float64(rows)))
	fmt.Fprintf(bw, "cellsize %s\n", formatFloat(t.A))

	if opts.NoData != nil {
		fmt.Fprintf(bw, "NODATA_value %s\n", formatFloat(*opts.NoData))
	}

	for r := range rows {
		for c := range cols {
			if c > 0 {
				_ = bw.WriteByte(' ')
			}

			v := band.Value(r, c)
			if opts.Integer && !math.IsNaN(v) {
				_, _ = bw.WriteString(strconv.FormatInt(int64(v), 10))
			} else {
				_, _ = bw.WriteString(formatFloat(v))
			}
		}

		_ = bw.WriteByte('\n')
	}

	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
