package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Graph    GraphConfig       `yaml:"graph"`
	Output   OutputConfig      `yaml:"output"`
	Publish  PublishConfig     `yaml:"publish"`
	Manifest ManifestConfig    `yaml:"manifest"`
	Watch    WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Publish.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration. An empty Token leaves the
// /api routes unauthenticated.
type HTTPConfig struct {
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// GraphConfig points at the directory holding pages/ and journals/.
type GraphConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// OutputConfig holds the directory exported documents are written to.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// PublishConfig controls rendering of exported pages.
type PublishConfig struct {
	NotesURL      string `yaml:"notes_url"`
	Language      string `yaml:"language"`
	MaxEmbedDepth int    `yaml:"max_embed_depth"`
}

// Validate validates the publish configuration.
func (c *PublishConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.NotesURL, validation.Required),
		validation.Field(&c.Language, validation.By(func(any) error {
			if c.Language == "" {
				return nil
			}
			_, err := language.Parse(c.Language)
			return err
		})),
		validation.Field(&c.MaxEmbedDepth, validation.Min(0)),
	)
}

// Tag returns the language used for slug lower-casing.
func (c *PublishConfig) Tag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und
	}
	return tag
}

// ManifestConfig holds the SQLite export manifest location. An empty Path
// disables pruning of stale output files.
type ManifestConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig controls rebuilds on graph changes.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Graph: GraphConfig{
			Path: "./graph",
		},
		Output: OutputConfig{
			Path: "./content/notes",
		},
		Publish: PublishConfig{
			NotesURL:      "/notes",
			Language:      "und",
			MaxEmbedDepth: 8,
		},
		Manifest: ManifestConfig{
			Path: "./.logpub.db",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
