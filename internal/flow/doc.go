// Package flow derives single-direction (D8) steepest-descent pointers.
//
// Every cell points at the neighbor with the strictly greatest positive
// descent slope, (center - neighbor) / distance with distance 1 for cardinal
// and sqrt(2) for diagonal neighbors. Ties keep the first neighbor in the
// fixed order E, SE, S, SW, W, NW, N, NE. Pits and flats get None; they are
// not filled. External D8 rasters are decoded once into the same
// enumeration by Decode.
package flow
