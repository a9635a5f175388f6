package stock

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the run parameters for the cleaning pipeline.
type Config struct {
	// Tolerance is the minimum allowed spacing between consecutive ring
	// coordinates. Defaults to DefaultTolerance.
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`

	// ShadingBuffer is the radius around the core footprints within which
	// context footprints are kept as shading. Zero or negative keeps all
	// of them.
	ShadingBuffer float64 `yaml:"shadingBuffer,omitempty" json:"shadingBuffer,omitempty"`

	// IDProperty is the GeoJSON property carrying the footprint
	// identifier. Defaults to "osgb".
	IDProperty string `yaml:"idProperty,omitempty" json:"idProperty,omitempty"`

	// ShadingProperty is the GeoJSON property marking shading-only
	// footprints. Defaults to "shading".
	ShadingProperty string `yaml:"shadingProperty,omitempty" json:"shadingProperty,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Tolerance:       DefaultTolerance,
		IDProperty:      "osgb",
		ShadingProperty: "shading",
	}
}

// LoadConfig loads the pipeline configuration from a YAML file and fills
// in defaults for omitted fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if config.Tolerance < 0 {
		return nil, fmt.Errorf("tolerance must not be negative")
	}
	if config.Tolerance == 0 {
		config.Tolerance = DefaultTolerance
	}
	if config.IDProperty == "" {
		config.IDProperty = "osgb"
	}
	if config.ShadingProperty == "" {
		config.ShadingProperty = "shading"
	}
	return config, nil
}

// SaveConfig writes the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
