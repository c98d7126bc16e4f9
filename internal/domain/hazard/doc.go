// Package hazard holds the domain types shared by the zonation pipeline:
// grid cells, source seeds, traced runout paths with their termination
// reasons, the categorical hazard zones and the error taxonomy.
package hazard
