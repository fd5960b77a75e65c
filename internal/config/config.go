// Package config loads and validates the project configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/paninibuild/panini/internal/errors"
)

// Config represents the project configuration.
type Config struct {
	// Input is the project root folder all content paths are relative to.
	Input string `yaml:"input"`

	// Engine names the templating engine adapter to use.
	Engine string `yaml:"engine"`

	Paths   PathsConfig   `yaml:"paths"`
	Layouts LayoutsConfig `yaml:"layouts"`
	Output  OutputConfig  `yaml:"output"`
	Stream  StreamConfig  `yaml:"stream,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Builtins toggles injection of the built-in helper set. Defaults to true.
	Builtins *bool `yaml:"builtins,omitempty"`
}

// PathsConfig holds content folder names, relative to Input.
type PathsConfig struct {
	Pages       string `yaml:"pages"`
	Data        string `yaml:"data"`
	Locales     string `yaml:"locales"`
	Collections string `yaml:"collections"`
	Layouts     string `yaml:"layouts"`
}

// LayoutsConfig controls layout resolution.
type LayoutsConfig struct {
	// Default is the project-wide default layout name.
	Default string `yaml:"default"`

	// PerFolder maps a pages subfolder name to the layout its pages use when
	// front matter does not override it.
	PerFolder map[string]string `yaml:"per_folder,omitempty"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
}

// StreamConfig configures the optional NATS push-stream sink.
type StreamConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// StoreConfig configures the optional build event store.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"` // SQLite database path, ":memory:" allowed
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// BuiltinsEnabled reports whether built-in helpers are injected into pages.
func (c *Config) BuiltinsEnabled() bool {
	return c.Builtins == nil || *c.Builtins
}

// PagesDir returns the absolute pages folder.
func (c *Config) PagesDir() string { return filepath.Join(c.Input, c.Paths.Pages) }

// DataDir returns the absolute data folder.
func (c *Config) DataDir() string { return filepath.Join(c.Input, c.Paths.Data) }

// LocalesDir returns the absolute locales folder.
func (c *Config) LocalesDir() string { return filepath.Join(c.Input, c.Paths.Locales) }

// CollectionsDir returns the absolute collections folder.
func (c *Config) CollectionsDir() string { return filepath.Join(c.Input, c.Paths.Collections) }

// LayoutsDir returns the absolute layouts folder.
func (c *Config) LayoutsDir() string { return filepath.Join(c.Input, c.Paths.Layouts) }

// Load loads configuration from the specified file.
//
// Environment variables referenced in the YAML (${VAR} or $VAR) are expanded
// after .env / .env.local files are applied, so secrets stay out of the file.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env", ".env.local") // optional, absence is fine

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Input:  ".",
		Engine: "gotemplate",
		Paths: PathsConfig{
			Pages:       "pages",
			Data:        "data",
			Locales:     "locales",
			Collections: "collections",
			Layouts:     "layouts",
		},
		Layouts: LayoutsConfig{
			Default: "default",
			PerFolder: map[string]string{
				"blog": "post",
			},
		},
		Output: OutputConfig{
			Directory: "./site",
			Clean:     true,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Input == "" {
		c.Input = "."
	}
	if c.Engine == "" {
		c.Engine = "gotemplate"
	}
	if c.Paths.Pages == "" {
		c.Paths.Pages = "pages"
	}
	if c.Paths.Data == "" {
		c.Paths.Data = "data"
	}
	if c.Paths.Locales == "" {
		c.Paths.Locales = "locales"
	}
	if c.Paths.Collections == "" {
		c.Paths.Collections = "collections"
	}
	if c.Paths.Layouts == "" {
		c.Paths.Layouts = "layouts"
	}
	if c.Layouts.Default == "" {
		c.Layouts.Default = "default"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
}

// Validate checks construction-time requirements. Failures are fatal: the
// pipeline never becomes usable with an invalid configuration.
func (c *Config) Validate() error {
	if info, err := os.Stat(c.Input); err != nil || !info.IsDir() {
		return errors.InputFolderMissing(c.Input)
	}
	if info, err := os.Stat(c.PagesDir()); err != nil || !info.IsDir() {
		return errors.ValidationFailed("paths.pages", "pages folder does not exist").
			WithContext("path", c.PagesDir())
	}
	if c.Stream.URL != "" && c.Stream.Subject == "" {
		return errors.ValidationFailed("stream.subject", "required when stream.url is set")
	}
	return nil
}
