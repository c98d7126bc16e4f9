// Package colorize renders a fused hazard grid as a PNG with the fixed
// tile palette: Safe is transparent, Deposition yellow, Transit orange and
// Failure red.
package colorize
