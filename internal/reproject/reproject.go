// Package reproject converts traced paths between the native grid reference
// and geographic longitude/latitude (WGS84).
//
// Grids without a declared reference are passed through unchanged: their
// map coordinates are assumed to already be longitude/latitude. Callers can
// check Passthrough to surface that assumption.
package reproject

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/raster"
)

// WGS84 is the geographic reference of every vector output.
const WGS84 = "+proj=longlat +datum=WGS84 +no_defs"

// Reprojector maps cells of one grid geometry to WGS84 and back.
type Reprojector struct {
	// geometry is the grid the cells belong to.
	geometry raster.Geometry
	// toGeographic maps native coordinates to lon/lat; nil means passthrough.
	toGeographic proj.Transformer
	// toNative maps lon/lat to native coordinates; nil means passthrough.
	toNative proj.Transformer
}

// New parses the geometry reference and prepares both transformers.
// An unparsable reference is a configuration error.
func New(geometry raster.Geometry) (*Reprojector, error) {
	r := &Reprojector{geometry: geometry}

	if strings.TrimSpace(geometry.CRS) == "" {
		return r, nil
	}

	native, err := proj.Parse(geometry.CRS)
	if err != nil {
		return nil, fmt.Errorf("%w: parse grid reference: %w", hazard.ErrConfiguration, err)
	}

	geographic, err := proj.Parse(WGS84)
	if err != nil {
		return nil, fmt.Errorf("parse WGS84: %w", err)
	}

	if r.toGeographic, err = native.NewTransform(geographic); err != nil {
		return nil, fmt.Errorf("%w: native to WGS84 transform: %w", hazard.ErrConfiguration, err)
	}

	if r.toNative, err = geographic.NewTransform(native); err != nil {
		return nil, fmt.Errorf("%w: WGS84 to native transform: %w", hazard.ErrConfiguration, err)
	}

	return r, nil
}

// Passthrough reports whether no reference was declared.
func (r *Reprojector) Passthrough() bool {
	return r.toGeographic == nil
}

// MapLine converts a path to a line of cell centers in native map coordinates.
func (r *Reprojector) MapLine(p hazard.Path) geom.LineString {
	line := make(geom.LineString, 0, p.Len())

	for _, c := range p.Cells {
		x, y := r.geometry.Center(c)
		line = append(line, geom.Point{X: x, Y: y})
	}

	return line
}

// GeographicLine converts a path to a line in WGS84 longitude/latitude.
func (r *Reprojector) GeographicLine(p hazard.Path) (geom.LineString, error) {
	line := r.MapLine(p)
	if r.Passthrough() {
		return line, nil
	}

	projected, err := line.Transform(r.toGeographic)
	if err != nil {
		return nil, fmt.Errorf("reproject path %d: %w", p.ID, err)
	}

	out, ok := projected.(geom.LineString)
	if !ok {
		return nil, fmt.Errorf("reproject path %d: unexpected geometry %T", p.ID, projected)
	}

	return out, nil
}

// GeographicLines converts every path, keeping their order.
func (r *Reprojector) GeographicLines(paths []hazard.Path) ([]geom.LineString, error) {
	out := make([]geom.LineString, 0, len(paths))

	for _, p := range paths {
		line, err := r.GeographicLine(p)
		if err != nil {
			return nil, err
		}

		out = append(out, line)
	}

	return out, nil
}

// ToGridCoordinates locates the cell containing a WGS84 position.
// It fails with hazard.ErrOutOfBounds outside the grid.
func (r *Reprojector) ToGridCoordinates(lon, lat float64) (hazard.Cell, error) {
	x, y := lon, lat

	if r.toNative != nil {
		var err error

		if x, y, err = r.toNative(lon, lat); err != nil {
			return hazard.Cell{}, fmt.Errorf("project (%f, %f): %w", lon, lat, err)
		}
	}

	return r.geometry.Index(x, y)
}
