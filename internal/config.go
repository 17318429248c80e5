package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hlts/internal/annotation"
	"github.com/starford/hlts/internal/apperr"
	pkgconfig "github.com/starford/hlts/pkg/config"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Annotations annotation.Config `yaml:"annotations"`
	AppleBooks  AppleBooksConfig  `yaml:"apple_books"`
}

// Validate validates the configuration. Every error wraps
// apperr.ErrConfigurationInvalid.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w: %w", apperr.ErrConfigurationInvalid, err)
	}
	if err := c.Annotations.Validate(); err != nil {
		return err
	}
	if err := c.AppleBooks.Validate(); err != nil {
		return fmt.Errorf("apple_books: %w: %w", apperr.ErrConfigurationInvalid, err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	RootDir  string     `yaml:"root_dir"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RootDir, validation.Required),
	)
}

// Root returns the workspace root with "~" expanded.
func (c *ApplicationConfig) Root() string {
	return pkgconfig.ExpandHome(c.RootDir)
}

// ExportDir returns the workspace directory of one export day, relative to Root.
func (c *ApplicationConfig) ExportDir(day time.Time) string {
	return filepath.Join(day.Format(time.DateOnly), "applebooks")
}

// AppleBooksConfig locates the Apple Books container on disk.
type AppleBooksConfig struct {
	SourceDir   string `yaml:"source_dir"`
	ProcessName string `yaml:"process_name"`
}

// Validate validates the Apple Books configuration.
func (c *AppleBooksConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.ProcessName, validation.Required),
	)
}

// Source returns the Apple Books documents directory with "~" expanded.
func (c *AppleBooksConfig) Source() string {
	return pkgconfig.ExpandHome(c.SourceDir)
}

// DefaultConfigPath is where the CLI looks for its configuration.
const DefaultConfigPath = "~/.hlts-data/config.yaml"

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			RootDir:  "~/.hlts-data",
		},
		Annotations: annotation.DefaultConfig(),
		AppleBooks: AppleBooksConfig{
			SourceDir:   "~/Library/Containers/com.apple.iBooksX/Data/Documents",
			ProcessName: "Books",
		},
	}
}
