// Package paths persists runout paths as a GeoJSON FeatureCollection of
// LineString features, one per path, tagged with the path id, the
// termination reason and the seed cell.
package paths
