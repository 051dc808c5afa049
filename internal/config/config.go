package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source modes. The BRIDGE_ENV variable switches between them.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// Config holds all bridge configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Cache   CacheConfig   `yaml:"cache"`
	Paper   PaperConfig   `yaml:"paper"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig configures where the ARC catalogue is read from.
type SourceConfig struct {
	Mode        string `yaml:"mode"`       // production, development
	Repository  string `yaml:"repository"` // owner/name
	APIBaseURL  string `yaml:"api_base_url"`
	RawBaseURL  string `yaml:"raw_base_url"`
	Branch      string `yaml:"branch"` // ref used in development mode
	Token       string `yaml:"token"`
	LocalDir    string `yaml:"local_dir"` // local mirror, takes precedence over GitHub
	Watch       bool   `yaml:"watch"`     // evict cache entries when the local mirror changes
	Timeout     string `yaml:"timeout"`
	Parallelism int    `yaml:"parallelism"`

	S3 S3Config `yaml:"s3"`
}

// S3Config configures an S3 mirror of the catalogue repository.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// CacheConfig configures the fetch cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // SQLite file; empty keeps the cache in memory only
}

// PaperConfig configures the paper-form layout engine.
type PaperConfig struct {
	TableWidth int `yaml:"table_width"` // characters across the full table
}

// OutputConfig configures where artefacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Mode:        ModeProduction,
			Repository:  "ISARICResearch/ARC",
			APIBaseURL:  "https://api.github.com",
			RawBaseURL:  "https://raw.githubusercontent.com",
			Branch:      "main",
			Timeout:     "60s",
			Parallelism: 8,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Paper: PaperConfig{
			TableWidth: 120,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults when the file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// BRIDGE_ENV is the production/development toggle.
	if env := os.Getenv("BRIDGE_ENV"); env != "" {
		if strings.EqualFold(env, ModeDevelopment) {
			c.Source.Mode = ModeDevelopment
		} else {
			c.Source.Mode = ModeProduction
		}
	}
	if dir := os.Getenv("BRIDGE_LOCAL_DIR"); dir != "" {
		c.Source.LocalDir = dir
	}
	if bucket := os.Getenv("BRIDGE_S3_BUCKET"); bucket != "" {
		c.Source.S3.Bucket = bucket
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.Source.Token = token
	}
	if path := os.Getenv("BRIDGE_CACHE_PATH"); path != "" {
		c.Cache.Path = path
	}
	if level := os.Getenv("BRIDGE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if p := os.Getenv("BRIDGE_PARALLELISM"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			c.Source.Parallelism = n
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Source.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("invalid source mode %q (want %s or %s)", c.Source.Mode, ModeProduction, ModeDevelopment)
	}
	if c.Source.LocalDir == "" && c.Source.S3.Bucket == "" && c.Source.Repository == "" {
		return fmt.Errorf("source.repository is required when no mirror is configured")
	}
	if c.Source.Parallelism <= 0 {
		return fmt.Errorf("source.parallelism must be positive, got %d", c.Source.Parallelism)
	}
	if c.Source.Timeout != "" {
		if _, err := time.ParseDuration(c.Source.Timeout); err != nil {
			return fmt.Errorf("invalid source.timeout: %w", err)
		}
	}
	if c.Paper.TableWidth < 12 {
		return fmt.Errorf("paper.table_width must be at least 12, got %d", c.Paper.TableWidth)
	}
	return nil
}

// IsDevelopment reports whether the catalogue is read from the main-branch layout.
func (c *Config) IsDevelopment() bool {
	return c.Source.Mode == ModeDevelopment
}

// GetSourceTimeout returns the per-request source timeout as a duration.
func (c *Config) GetSourceTimeout() time.Duration {
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
