package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/slipsense/internal/domain/hazard"
	"github.com/oshokin/slipsense/internal/flow"
	"github.com/oshokin/slipsense/internal/logger"
)

// Config holds every setting of a zonation run.
type Config struct {
	// Inputs lists the raster files to read.
	Inputs Inputs `yaml:"inputs"`
	// Outputs controls where results are written.
	Outputs Outputs `yaml:"outputs"`
	// Thresholds holds the numeric parameters of the model.
	Thresholds Thresholds `yaml:"thresholds"`
	// Tracing tunes the runout tracer.
	Tracing Tracing `yaml:"tracing"`
	// PostGIS enables the optional database sink.
	PostGIS PostGIS `yaml:"postgis"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Workers bounds parallel raster work. Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// Inputs names the input rasters.
type Inputs struct {
	Elevation        string `yaml:"elevation"`
	Slope            string `yaml:"slope"`
	FlowAccumulation string `yaml:"flow_accumulation"`
	Susceptibility   string `yaml:"susceptibility"`
	// FlowDirection is an optional precomputed D8 raster.
	FlowDirection string `yaml:"flow_direction"`
	// FlowDirectionEncoding is bitmask or index.
	FlowDirectionEncoding string `yaml:"flow_direction_encoding"`
	// CRS overrides the projection read from .prj sidecars.
	CRS string `yaml:"crs"`
}

// Outputs names the output files, relative to Dir.
type Outputs struct {
	Dir           string `yaml:"dir"`
	Hazard        string `yaml:"hazard"`
	Transit       string `yaml:"transit"`
	Deposition    string `yaml:"deposition"`
	Paths         string `yaml:"paths"`
	Report        string `yaml:"report"`
	FlowDirection string `yaml:"flow_direction"`
}

// Thresholds holds the model parameters.
type Thresholds struct {
	// Failure is the susceptibility at or above which a cell fails.
	Failure float64 `yaml:"failure"`
	// Stream is the accumulation marking the stream network.
	Stream float64 `yaml:"stream"`
	// DepositionFactor scales Stream for the deposition test.
	DepositionFactor float64 `yaml:"deposition_factor"`
	// MaxDepositionSlope is the slope, in degrees, below which material settles.
	MaxDepositionSlope float64 `yaml:"max_deposition_slope"`
	// TransitBuffer is the Chebyshev radius around runout paths.
	TransitBuffer int `yaml:"transit_buffer"`
	// MinSourceSize drops source components with fewer cells.
	MinSourceSize int `yaml:"min_source_size"`
}

// Tracing tunes the runout tracer.
type Tracing struct {
	// MaxSteps caps each trace. Zero derives it from the grid size.
	MaxSteps int `yaml:"max_steps"`
	// MaxStepsFactor multiplies max(rows, cols) when MaxSteps is zero.
	MaxStepsFactor int `yaml:"max_steps_factor"`
}

// PostGIS configures the optional database sink.
type PostGIS struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

const (
	// DefaultConfigFilename is the default settings filename.
	DefaultConfigFilename = "slipsense.yaml"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns the settings used when a file leaves a value out.
func Default() *Config {
	return &Config{
		Inputs: Inputs{
			FlowDirectionEncoding: string(flow.Bitmask),
		},
		Outputs: Outputs{
			Dir:           "output",
			Hazard:        "hazard_zonation.asc",
			Transit:       "transit_zone.asc",
			Deposition:    "deposition_zone.asc",
			Paths:         "runout_paths.geojson",
			Report:        "report.json",
			FlowDirection: "",
		},
		Thresholds: Thresholds{
			Failure:            0.25,
			Stream:             5000,
			DepositionFactor:   2,
			MaxDepositionSlope: 15,
			TransitBuffer:      5,
			MinSourceSize:      10,
		},
		Tracing: Tracing{
			MaxStepsFactor: 10,
		},
		PostGIS: PostGIS{
			Table: "runout_paths",
		},
		LogLevel: "info",
	}
}

// Load reads configuration from the provided path over the defaults and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: read settings: %w", hazard.ErrConfiguration, err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal settings: %w", hazard.ErrConfiguration, err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required inputs and parameter ranges.
// Every failure wraps hazard.ErrConfiguration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	required := map[string]string{
		"inputs.elevation":         cfg.Inputs.Elevation,
		"inputs.slope":             cfg.Inputs.Slope,
		"inputs.flow_accumulation": cfg.Inputs.FlowAccumulation,
		"inputs.susceptibility":    cfg.Inputs.Susceptibility,
		"outputs.dir":              cfg.Outputs.Dir,
		"outputs.hazard":           cfg.Outputs.Hazard,
		"outputs.transit":          cfg.Outputs.Transit,
		"outputs.deposition":       cfg.Outputs.Deposition,
		"outputs.paths":            cfg.Outputs.Paths,
		"outputs.report":           cfg.Outputs.Report,
	}

	for _, key := range []string{
		"inputs.elevation", "inputs.slope", "inputs.flow_accumulation", "inputs.susceptibility",
		"outputs.dir", "outputs.hazard", "outputs.transit", "outputs.deposition",
		"outputs.paths", "outputs.report",
	} {
		if required[key] == "" {
			return fmt.Errorf("%w: %s must be provided", hazard.ErrConfiguration, key)
		}
	}

	if _, err := flow.ParseEncoding(cfg.Inputs.FlowDirectionEncoding); err != nil {
		return err
	}

	t := cfg.Thresholds

	switch {
	case t.Failure <= 0 || t.Failure > 1:
		return fmt.Errorf("%w: thresholds.failure %v is outside (0, 1]", hazard.ErrConfiguration, t.Failure)
	case t.Stream <= 0:
		return fmt.Errorf("%w: thresholds.stream must be positive", hazard.ErrConfiguration)
	case t.DepositionFactor <= 0:
		return fmt.Errorf("%w: thresholds.deposition_factor must be positive", hazard.ErrConfiguration)
	case t.MaxDepositionSlope <= 0 || t.MaxDepositionSlope > 90:
		return fmt.Errorf("%w: thresholds.max_deposition_slope %v is outside (0, 90]",
			hazard.ErrConfiguration, t.MaxDepositionSlope)
	case t.TransitBuffer < 0:
		return fmt.Errorf("%w: thresholds.transit_buffer must not be negative", hazard.ErrConfiguration)
	case t.MinSourceSize < 1:
		return fmt.Errorf("%w: thresholds.min_source_size must be at least 1", hazard.ErrConfiguration)
	}

	if cfg.Tracing.MaxSteps < 0 {
		return fmt.Errorf("%w: tracing.max_steps must not be negative", hazard.ErrConfiguration)
	}

	if cfg.Tracing.MaxStepsFactor < 1 {
		return fmt.Errorf("%w: tracing.max_steps_factor must be at least 1", hazard.ErrConfiguration)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", hazard.ErrConfiguration)
	}

	if cfg.PostGIS.DSN != "" && cfg.PostGIS.Table == "" {
		return fmt.Errorf("%w: postgis.table must be provided with postgis.dsn", hazard.ErrConfiguration)
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); cfg.LogLevel != "" && !ok {
		return fmt.Errorf("%w: unknown log_level %q", hazard.ErrConfiguration, cfg.LogLevel)
	}

	return nil
}

// Settings flattens the thresholds for the run report.
func (c *Config) Settings() map[string]float64 {
	return map[string]float64{
		"failure_threshold":    c.Thresholds.Failure,
		"stream_threshold":     c.Thresholds.Stream,
		"deposition_factor":    c.Thresholds.DepositionFactor,
		"max_deposition_slope": c.Thresholds.MaxDepositionSlope,
		"transit_buffer":       float64(c.Thresholds.TransitBuffer),
		"min_source_size":      float64(c.Thresholds.MinSourceSize),
		"max_steps":            float64(c.Tracing.MaxSteps),
		"max_steps_factor":     float64(c.Tracing.MaxStepsFactor),
	}
}
