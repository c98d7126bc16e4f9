// Package postgis mirrors runout paths into a PostGIS table so they can be
// queried next to other spatial layers. The sink is optional and only used
// when a DSN is configured.
package postgis
