package paths

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"

	"github.com/oshokin/slipsense/internal/domain/hazard"
)

// DefaultFilePermissions is used for written GeoJSON files.
const DefaultFilePermissions = 0o644

// geographicCRS names the reference of reprojected collections.
const geographicCRS = "EPSG:4326"

var (
	// ErrNotFound is returned when the GeoJSON file does not exist.
	ErrNotFound = errors.New("runout paths not found")
	// errNotLine is returned when a feature geometry is not a LineString.
	errNotLine = errors.New("geometry is not a line")
)

// Properties are the attributes attached to each path.
type Properties struct {
	ID          int    `json:"id"`
	Termination string `json:"termination"`
	SeedRow     int    `json:"seed_row"`
	SeedCol     int    `json:"seed_col"`
	Cells       int    `json:"cells"`
}

// Feature is one runout path.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties Properties        `json:"properties"`
}

// Line decodes the feature geometry back into a line.
func (f *Feature) Line() (geom.LineString, error) {
	if f.Geometry == nil {
		return nil, fmt.Errorf("path %d: %w", f.Properties.ID, errNotLine)
	}

	data, err := json.Marshal(f.Geometry)
	if err != nil {
		return nil, fmt.Errorf("encode path %d geometry: %w", f.Properties.ID, err)
	}

	g, err := geojson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode path %d geometry: %w", f.Properties.ID, err)
	}

	line, ok := g.(geom.LineString)
	if !ok {
		return nil, fmt.Errorf("path %d: %w, got %T", f.Properties.ID, errNotLine, g)
	}

	return line, nil
}

// namedCRS is the legacy GeoJSON "crs" member.
type namedCRS struct {
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties"`
}

// Geographic reports whether the coordinates are WGS84 longitude/latitude.
func (fc *FeatureCollection) Geographic() bool {
	return fc.CRS != nil && fc.CRS.Properties["name"] == geographicCRS
}

// FeatureCollection is the file-level GeoJSON object.
type FeatureCollection struct {
	Type     string    `json:"type"`
	CRS      *namedCRS `json:"crs,omitempty"`
	Features []Feature `json:"features"`
}

// NewCollection builds a collection from paths and their lines, which must
// be index-aligned. geographic marks coordinates as WGS84 longitude/latitude.
func NewCollection(paths []hazard.Path, lines []geom.LineString, geographic bool) (*FeatureCollection, error) {
	if len(paths) != len(lines) {
		return nil, fmt.Errorf("got %d paths and %d lines", len(paths), len(lines))
	}

	fc := &FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(paths))}
	if geographic {
		fc.CRS = &namedCRS{Type: "name", Properties: map[string]string{"name": geographicCRS}}
	}

	for i, p := range paths {
		geometry, err := geojson.ToGeoJSON(lines[i])
		if err != nil {
			return nil, fmt.Errorf("encode path %d geometry: %w", p.ID, err)
		}

		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: geometry,
			Properties: Properties{
				ID:          p.ID,
				Termination: p.Termination.String(),
				SeedRow:     p.Seed.Row,
				SeedCol:     p.Seed.Col,
				Cells:       p.Len(),
			},
		})
	}

	return fc, nil
}

// FileRepository reads and writes a GeoJSON file.
type FileRepository struct {
	// path is the filesystem location of the GeoJSON file.
	path string
}

// NewFileRepository creates a repository for the given file.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: filepath.Clean(path)}
}

// Save writes the collection.
func (r *FileRepository) Save(_ context.Context, fc *FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode runout paths: %w", err)
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write runout paths: %w", err)
	}

	return nil
}

// Load reads the collection back.
func (r *FileRepository) Load(_ context.Context) (*FeatureCollection, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read runout paths: %w", err)
	}

	var fc FeatureCollection
	if err = json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode runout paths: %w", err)
	}

	return &fc, nil
}
