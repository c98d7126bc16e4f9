// Package query answers point lookups against a fused hazard grid, the way
// an alerting consumer samples zones at geographic positions.
package query
