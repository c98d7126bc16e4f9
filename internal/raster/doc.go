// Package raster is the grid store of the pipeline.
//
// A Grid keeps one band of floating point cells in a gonum dense matrix
// together with its Geometry: dimensions, the affine cell-to-map Transform
// and the coordinate reference. A Stack owns the four co-registered input
// grids (elevation, slope, flow accumulation, susceptibility) and refuses
// to exist unless they share one geometry. Masks hold the derived binary
// layers. Everything is read-only once the producing stage returns.
package raster
