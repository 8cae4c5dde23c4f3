package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/orbits/internal/units"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/orbits.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration for simulation, data sources and plots.
// Unset fields fall back to the defaults returned by the Get* methods, so
// partial files are safe.
type Config struct {
	// Simulation params
	Timestep              *string  `json:"timestep,omitempty" yaml:"timestep,omitempty"` // duration string like "15m"
	Steps                 *int     `json:"steps,omitempty" yaml:"steps,omitempty"`
	GravitationalConstant *float64 `json:"gravitational_constant,omitempty" yaml:"gravitational_constant,omitempty"`

	// Data sources
	DataDir *string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	DBPath  *string `json:"db_path,omitempty" yaml:"db_path,omitempty"`

	// Rendering
	DistanceUnits *string  `json:"distance_units,omitempty" yaml:"distance_units,omitempty"`
	TimeUnits     *string  `json:"time_units,omitempty" yaml:"time_units,omitempty"`
	WidthInches   *float64 `json:"width_inches,omitempty" yaml:"width_inches,omitempty"`
	HeightInches  *float64 `json:"height_inches,omitempty" yaml:"height_inches,omitempty"`

	Bodies []BodyConfig `json:"bodies,omitempty" yaml:"bodies,omitempty"`
}

// BodyConfig is the initial state of one simulated body, SI units.
type BodyConfig struct {
	Name     string     `json:"name" yaml:"name"`
	Mass     float64    `json:"mass" yaml:"mass"`
	Position [3]float64 `json:"position" yaml:"position"`
	Velocity [3]float64 `json:"velocity" yaml:"velocity"`
}

// EmptyConfig returns a Config with all fields unset.
func EmptyConfig() *Config {
	return &Config{}
}

// DefaultBodies is the sun/earth system the bundled data was generated from.
func DefaultBodies() []BodyConfig {
	return []BodyConfig{
		{Name: "sun", Mass: 4.385e30},
		{Name: "earth", Mass: 5.972e24, Position: [3]float64{1.49e11, 0, 0}, Velocity: [3]float64{0, 45000, 0}},
	}
}

// LoadConfig loads a Config from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent
// directories so it works from package test directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *Config {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/orbits/ or deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.Timestep != nil && *c.Timestep != "" {
		d, err := time.ParseDuration(*c.Timestep)
		if err != nil {
			return fmt.Errorf("invalid timestep '%s': %w", *c.Timestep, err)
		}
		if d <= 0 {
			return fmt.Errorf("timestep must be positive, got %s", d)
		}
	}

	if c.Steps != nil && *c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", *c.Steps)
	}

	if c.GravitationalConstant != nil && *c.GravitationalConstant <= 0 {
		return fmt.Errorf("gravitational_constant must be positive, got %g", *c.GravitationalConstant)
	}

	if c.DistanceUnits != nil && !units.IsValidDistance(*c.DistanceUnits) {
		return fmt.Errorf("distance_units must be one of %s, got %q", units.GetValidDistanceUnitsString(), *c.DistanceUnits)
	}
	if c.TimeUnits != nil && !units.IsValidTime(*c.TimeUnits) {
		return fmt.Errorf("time_units must be one of %s, got %q", units.GetValidTimeUnitsString(), *c.TimeUnits)
	}

	if c.WidthInches != nil && *c.WidthInches <= 0 {
		return fmt.Errorf("width_inches must be positive, got %g", *c.WidthInches)
	}
	if c.HeightInches != nil && *c.HeightInches <= 0 {
		return fmt.Errorf("height_inches must be positive, got %g", *c.HeightInches)
	}

	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return fmt.Errorf("bodies[%d]: name is required", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("bodies[%d]: duplicate body name %q", i, b.Name)
		}
		seen[b.Name] = true
		if b.Mass <= 0 {
			return fmt.Errorf("bodies[%d] %s: mass must be positive, got %g", i, b.Name, b.Mass)
		}
	}

	return nil
}

// GetTimestep parses and returns the Timestep as a time.Duration.
func (c *Config) GetTimestep() time.Duration {
	if c.Timestep == nil || *c.Timestep == "" {
		return 15 * time.Minute // default
	}
	d, err := time.ParseDuration(*c.Timestep)
	if err != nil || d <= 0 {
		return 15 * time.Minute // default on parse error
	}
	return d
}

// GetSteps returns the steps value or the default (one year of 15 minute steps).
func (c *Config) GetSteps() int {
	if c.Steps == nil {
		return 35064
	}
	return *c.Steps
}

// GetGravitationalConstant returns G in m^3 kg^-1 s^-2.
func (c *Config) GetGravitationalConstant() float64 {
	if c.GravitationalConstant == nil {
		return 6.67430e-11
	}
	return *c.GravitationalConstant
}

// GetDataDir returns the data_dir value or the default.
func (c *Config) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return "data"
	}
	return *c.DataDir
}

// GetDBPath returns the db_path value or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "orbits.db"
	}
	return *c.DBPath
}

// GetDistanceUnits returns the distance_units value or the default.
func (c *Config) GetDistanceUnits() string {
	if c.DistanceUnits == nil {
		return units.Meters
	}
	return *c.DistanceUnits
}

// GetTimeUnits returns the time_units value or the default.
func (c *Config) GetTimeUnits() string {
	if c.TimeUnits == nil {
		return units.Seconds
	}
	return *c.TimeUnits
}

// GetWidthInches returns the width_inches value or the default.
func (c *Config) GetWidthInches() float64 {
	if c.WidthInches == nil {
		return 14
	}
	return *c.WidthInches
}

// GetHeightInches returns the height_inches value or the default.
func (c *Config) GetHeightInches() float64 {
	if c.HeightInches == nil {
		return 6
	}
	return *c.HeightInches
}

// GetBodies returns the configured bodies or DefaultBodies.
func (c *Config) GetBodies() []BodyConfig {
	if len(c.Bodies) == 0 {
		return DefaultBodies()
	}
	out := make([]BodyConfig, len(c.Bodies))
	copy(out, c.Bodies)
	return out
}
