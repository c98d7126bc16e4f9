// Package pipeline runs one hazard zonation pass: load and validate the
// input stack, derive flow directions, extract source seeds, trace runout
// paths, build the transit and deposition zones, fuse them and write every
// output. Outputs appear all together or not at all.
package pipeline
