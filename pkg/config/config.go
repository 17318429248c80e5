// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	if err := decode(filename, data, target); err != nil {
		return err
	}
	return validate(target)
}

// LoadOrInit loads filename into a value created by newDefault.
//
// A missing file is created from the defaults. A file that cannot be parsed
// is moved aside to <name>.bak and replaced by the defaults. A file that
// parses but fails validation is an error: it is kept untouched.
func LoadOrInit[T any](filename string, newDefault func() *T) (*T, error) {
	target := newDefault()

	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("config: creating default configuration", slog.String("path", filename))
		if err := Save(filename, target); err != nil {
			return nil, err
		}
		return target, validate(target)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := decode(filename, data, target); err != nil {
		backup := BackupPath(filename)
		slog.Error("config: unreadable, restoring defaults",
			slog.String("path", filename),
			slog.String("backup", backup),
			slog.String("error", err.Error()))
		if err := os.Rename(filename, backup); err != nil {
			return nil, fmt.Errorf("failed to back up config file %s: %w", filename, err)
		}
		target = newDefault()
		if err := Save(filename, target); err != nil {
			return nil, err
		}
	}

	return target, validate(target)
}

// Save writes v to filename as YAML, creating parent directories.
func Save[T any](filename string, v *T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}
	return nil
}

// BackupPath returns the path an unreadable config file is moved to.
func BackupPath(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".bak"
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

func decode[T any](filename string, data []byte, target *T) error {
	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

func validate[T any](target *T) error {
	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
