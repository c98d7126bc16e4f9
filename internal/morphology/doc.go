// Package morphology implements binary morphology on raster masks with square
// structuring neighborhoods, and 8-connected component labeling.
//
// Cells outside the mask read as background, so erosion strips cells on the
// grid edge and dilation never grows from outside.
package morphology
