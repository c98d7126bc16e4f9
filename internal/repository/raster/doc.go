// Package raster implements grid persistence in the ESRI ASCII grid format.
//
// The coordinate reference travels in a ".prj" sidecar next to the grid
// file, holding a PROJ4 or WKT definition. Only north-up grids with square
// cells can be stored.
package raster
