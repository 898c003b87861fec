// Package config loads .stepgraph/config.yaml, fills unset values from
// the defaults and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the project directory holding the
// configuration file and the metrics cache.
const ConfigDirName = ".stepgraph"

// Config holds all stepgraph configuration.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Palette PaletteConfig `yaml:"palette"`
	Rank    RankConfig    `yaml:"rank"`
	Check   CheckConfig   `yaml:"check"`
	Export  ExportConfig  `yaml:"export"`
	Output  OutputConfig  `yaml:"output"`
}

// RenderConfig holds the defaults of the render command. Pointer fields
// distinguish an explicit zero or false from an absent key.
type RenderConfig struct {
	Format       string `yaml:"format,omitempty"` // empty: from the output extension
	Radius       *int   `yaml:"radius"`
	Direction    string `yaml:"direction"`
	ShowDangling *bool  `yaml:"show_dangling"`
	WrapWidth    int    `yaml:"wrap_width"`
	Height       string `yaml:"height"`
	Width        string `yaml:"width"`
	Physics      *bool  `yaml:"physics"`
	Theme        string `yaml:"theme"`
}

// PaletteConfig overrides node colors.
type PaletteConfig struct {
	Types    map[string]string `yaml:"types,omitempty"`  // type name -> color, merged over the built-in table
	Colors   []string          `yaml:"colors,omitempty"` // hash palette; empty keeps the built-in one
	Entry    string            `yaml:"entry"`
	Dangling string            `yaml:"dangling"`
}

// RankConfig holds configuration for entity ranking.
type RankConfig struct {
	PageRankDamping     float64 `yaml:"pagerank_damping"`
	PageRankIterations  int     `yaml:"pagerank_iterations"`
	Top                 int     `yaml:"top"`
	KeystoneThreshold   float64 `yaml:"keystone_threshold"`
	BottleneckThreshold float64 `yaml:"bottleneck_threshold"`
}

// CheckConfig holds configuration for directory checks.
type CheckConfig struct {
	Exclude []string `yaml:"exclude"`
}

// ExportConfig holds configuration for database export.
type ExportConfig struct {
	Backend string `yaml:"backend"`
}

// OutputConfig holds configuration for report formatting.
type OutputConfig struct {
	Format  string `yaml:"format"`
	Density string `yaml:"density"`
}

// ErrConfigNotFound is returned when no config directory can be found.
var ErrConfigNotFound = errors.New("config directory not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads the config found by walking up from workDir, falling back
// to defaults when there is none.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path, merges it with the
// defaults and validates the result. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .stepgraph directory by walking up from
// startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .stepgraph directory in workDir if it
// doesn't exist and returns its path.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Valid option values.
var (
	ValidRenderFormats = []string{"", "html", "d2", "mermaid", "json", "yaml"}
	ValidDirections    = []string{"both", "out", "in"}
	ValidBackends      = []string{"sqlite", "dolt"}
	ValidOutputFormats = []string{"yaml", "json"}
	ValidDensities     = []string{"sparse", "medium", "dense"}
)

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	r := cfg.Render
	if !slices.Contains(ValidRenderFormats, r.Format) {
		return fmt.Errorf("%w: render.format must be one of html, d2, mermaid, json, yaml, got %q",
			ErrInvalidConfig, r.Format)
	}
	if !slices.Contains(ValidDirections, r.Direction) {
		return fmt.Errorf("%w: render.direction must be one of %v, got %q",
			ErrInvalidConfig, ValidDirections, r.Direction)
	}
	if r.WrapWidth <= 0 {
		return fmt.Errorf("%w: render.wrap_width must be positive, got %d", ErrInvalidConfig, r.WrapWidth)
	}

	for name, color := range cfg.Palette.Types {
		if color == "" {
			return fmt.Errorf("%w: palette.types.%s has an empty color", ErrInvalidConfig, name)
		}
	}
	if slices.Contains(cfg.Palette.Colors, "") {
		return fmt.Errorf("%w: palette.colors contains an empty color", ErrInvalidConfig)
	}

	m := cfg.Rank
	if m.PageRankDamping < 0 || m.PageRankDamping > 1 {
		return fmt.Errorf("%w: rank.pagerank_damping must be between 0 and 1, got %f",
			ErrInvalidConfig, m.PageRankDamping)
	}
	if m.PageRankIterations <= 0 {
		return fmt.Errorf("%w: rank.pagerank_iterations must be positive, got %d",
			ErrInvalidConfig, m.PageRankIterations)
	}
	if m.Top < 0 {
		return fmt.Errorf("%w: rank.top must be non-negative, got %d", ErrInvalidConfig, m.Top)
	}
	if m.KeystoneThreshold < 0 || m.KeystoneThreshold > 1 {
		return fmt.Errorf("%w: rank.keystone_threshold must be between 0 and 1, got %f",
			ErrInvalidConfig, m.KeystoneThreshold)
	}
	if m.BottleneckThreshold < 0 || m.BottleneckThreshold > 1 {
		return fmt.Errorf("%w: rank.bottleneck_threshold must be between 0 and 1, got %f",
			ErrInvalidConfig, m.BottleneckThreshold)
	}

	if !slices.Contains(ValidBackends, cfg.Export.Backend) {
		return fmt.Errorf("%w: export.backend must be one of %v, got %q",
			ErrInvalidConfig, ValidBackends, cfg.Export.Backend)
	}
	if !slices.Contains(ValidOutputFormats, cfg.Output.Format) {
		return fmt.Errorf("%w: output.format must be one of %v, got %q",
			ErrInvalidConfig, ValidOutputFormats, cfg.Output.Format)
	}
	if !slices.Contains(ValidDensities, cfg.Output.Density) {
		return fmt.Errorf("%w: output.density must be one of %v, got %q",
			ErrInvalidConfig, ValidDensities, cfg.Output.Density)
	}
	return nil
}

// SaveDefault writes the default configuration to
// .stepgraph/config.yaml in workDir and returns its path.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	data = append([]byte("# stepgraph configuration\n\n"), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return configPath, nil
}
