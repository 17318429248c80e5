package internal

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	logger   *slog.Logger
	now      func() time.Time
	force    bool
	debounce time.Duration
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON stdout logger built from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithClock sets the source of the export date.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}

// WithForce skips the check that Apple Books is not running.
func WithForce(force bool) Option {
	return func(a *application) {
		a.force = force
	}
}

// WithDebounce sets how long Watch waits for database writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(a *application) {
		a.debounce = d
	}
}
