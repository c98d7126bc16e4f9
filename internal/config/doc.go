// Package config defines the pipeline settings and provides helpers to load,
// validate and save them in YAML format.
//
// Load starts from Default so a settings file only needs the inputs and the
// values it overrides.
package config
