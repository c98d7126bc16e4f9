// Package zonation turns traced runout paths and terrain layers into the
// transit, deposition and fused hazard grids.
//
// Fusion precedence is Failure > Transit > Deposition > Safe: a cell at or
// above the failure threshold stays Failure even when a path crosses it.
package zonation
