// Package inspect summarizes raster files: geometry, reference, value range
// and, for categorical layers, per-value cell counts.
package inspect
